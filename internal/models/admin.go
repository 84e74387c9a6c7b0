// internal/models/admin.go
package models

import "time"

type AdminStats struct {
	TotalUsers      int     `json:"totalUsers"`
	TotalProducts   int     `json:"totalProducts"`
	TotalSales      int     `json:"totalSales"`
	TotalRevenue    float64 `json:"totalRevenue"`
	PendingProducts int     `json:"pendingProducts"`
	MonthlyGrowth   float64 `json:"monthlyGrowth,omitempty"`
}

type UserList struct {
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}

type SaleRecord struct {
	ID            string         `json:"id"`
	OrderID       string         `json:"orderId"`
	Price         float64        `json:"price"`
	Status        PurchaseStatus `json:"status,omitempty"`
	PaymentMethod string         `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	Customer      *DisputeUser   `json:"customer,omitempty"`
	User          *DisputeUser   `json:"user,omitempty"`
	Product       ProductSummary `json:"product"`
}

// Buyer returns whichever buyer reference the endpoint filled.
func (s SaleRecord) Buyer() *DisputeUser {
	if s.Customer != nil {
		return s.Customer
	}
	return s.User
}

type SaleList struct {
	Sales      []SaleRecord `json:"sales"`
	Pagination Pagination   `json:"pagination"`
}

type DisputeUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type DisputedPurchase struct {
	ID                      string         `json:"id"`
	OrderID                 string         `json:"orderId"`
	Price                   float64        `json:"price"`
	Status                  PurchaseStatus `json:"status"`
	DisplayStatus           string         `json:"displayStatus,omitempty"`
	DisputeReason           string         `json:"disputeReason"`
	DisputeRequestedAt      *time.Time     `json:"disputeRequestedAt,omitempty"`
	ShouldPlatformIntervene bool           `json:"shouldPlatformIntervene"`
	PlatformInterventionAt  *time.Time     `json:"platformInterventionAt,omitempty"`
	User                    DisputeUser    `json:"user"`
	Product                 ProductSummary `json:"product"`
}

type DisputeList struct {
	Disputes   []DisputedPurchase `json:"disputes"`
	Pagination Pagination         `json:"pagination"`
}

type ResolveDisputeRequest struct {
	Resolution string `json:"resolution" validate:"required,min=10,max=1000"`
	Refund     bool   `json:"refund"`
}

type RoleUpdateRequest struct {
	Role UserRole `json:"role" validate:"required,user_role"`
}

type ProductStatusRequest struct {
	Status ProductStatus `json:"status" validate:"required,moderation_status"`
}

type SellerStats struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalSales    int     `json:"totalSales"`
	TotalProducts int     `json:"totalProducts"`
	AvgRating     float64 `json:"avgRating"`
}

type SellerProductStats struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Category  string        `json:"category"`
	Price     float64       `json:"price"`
	Sales     int           `json:"sales"`
	Revenue   float64       `json:"revenue"`
	Views     int           `json:"views"`
	Downloads int           `json:"downloads"`
	Status    ProductStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

type SellerDashboard struct {
	Stats    SellerStats          `json:"stats"`
	Products []SellerProductStats `json:"products"`
}

// SellerAnalytics is passed through as returned; the backend shape is not fixed.
type SellerAnalytics map[string]interface{}
