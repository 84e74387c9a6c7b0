// internal/models/purchase.go
package models

import "time"

// ProductSummary is the product reference embedded in purchases and disputes.
type ProductSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl,omitempty"`
	Author   string `json:"author,omitempty"`
}

type Purchase struct {
	ID                   string         `json:"id"`
	OrderID              string         `json:"orderId"`
	PurchaseDate         time.Time      `json:"purchaseDate"`
	Price                float64        `json:"price"`
	Status               PurchaseStatus `json:"status"`
	DisplayStatus        string         `json:"displayStatus,omitempty"`
	PaymentMethod        string         `json:"paymentMethod,omitempty"`
	CanRequestDispute    bool           `json:"canRequestDispute"`
	DaysUntilAutoConfirm *int           `json:"daysUntilAutoConfirm,omitempty"`
	DisputeReason        string         `json:"disputeReason,omitempty"`
	DownloadURL          string         `json:"downloadUrl,omitempty"`
	LicenseKey           string         `json:"licenseKey,omitempty"`
	Product              ProductSummary `json:"product"`
}

type PurchaseHistory struct {
	Purchases  []Purchase `json:"purchases"`
	Pagination Pagination `json:"pagination"`
}

type PurchaseStats struct {
	TotalPurchases     int     `json:"totalPurchases"`
	CompletedPurchases int     `json:"completedPurchases"`
	TotalSpent         float64 `json:"totalSpent"`
}

type DownloadInfo struct {
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type LicenseInfo struct {
	LicenseKey string `json:"licenseKey"`
	Message    string `json:"message,omitempty"`
}

type PurchaseCheck struct {
	Purchased   bool   `json:"purchased"`
	PurchaseID  string `json:"purchaseId,omitempty"`
	LicenseKey  string `json:"licenseKey,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

type DisputeRequest struct {
	Reason string `json:"reason" validate:"required,min=10,max=500"`
}

// VerifiedPurchase is the purchase record returned by payment verification.
type VerifiedPurchase struct {
	ID          string         `json:"id"`
	OrderID     string         `json:"orderId"`
	Status      PurchaseStatus `json:"status"`
	DownloadURL string         `json:"downloadUrl,omitempty"`
	LicenseKey  string         `json:"licenseKey,omitempty"`
	Product     ProductSummary `json:"product"`
}

type PaymentVerification struct {
	Verified  bool              `json:"verified"`
	PaymentID string            `json:"paymentId"`
	Amount    float64           `json:"amount"`
	Status    string            `json:"status"`
	Purchase  *VerifiedPurchase `json:"purchase,omitempty"`
}
