// internal/models/common.go
package models

// Pagination mirrors the pagination block returned by list endpoints.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// HasNext reports whether a page after CurrentPage exists.
func (p Pagination) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// Enums
type UserRole string

const (
	UserRoleBuyer  UserRole = "buyer"
	UserRoleSeller UserRole = "seller"
	UserRoleAdmin  UserRole = "admin"
)

type ProductStatus string

const (
	ProductStatusPending  ProductStatus = "pending"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusApproved ProductStatus = "approved"
	ProductStatusRejected ProductStatus = "rejected"
	ProductStatusDeleted  ProductStatus = "deleted"
)

type PurchaseStatus string

const (
	PurchaseStatusCompleted         PurchaseStatus = "completed"
	PurchaseStatusConfirmed         PurchaseStatus = "confirmed"
	PurchaseStatusDisputeRequested  PurchaseStatus = "dispute_requested"
	PurchaseStatusDisputeProcessing PurchaseStatus = "dispute_processing"
	PurchaseStatusDisputeResolved   PurchaseStatus = "dispute_resolved"
	PurchaseStatusRefunded          PurchaseStatus = "refunded"
	PurchaseStatusFailed            PurchaseStatus = "failed"
	PurchaseStatusPending           PurchaseStatus = "pending"
	PurchaseStatusCancelled         PurchaseStatus = "cancelled"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)
