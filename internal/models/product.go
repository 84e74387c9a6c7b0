// internal/models/product.go
package models

import "time"

type Product struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Price         float64       `json:"price"`
	OriginalPrice float64       `json:"originalPrice,omitempty"`
	ImageURL      string        `json:"imageUrl,omitempty"`
	Author        string        `json:"author,omitempty"`
	AuthorID      string        `json:"authorId,omitempty"`
	SellerID      string        `json:"sellerId,omitempty"`
	Category      string        `json:"category"`
	Tags          []string      `json:"tags"`
	DownloadURL   string        `json:"downloadUrl,omitempty"`
	DemoURL       string        `json:"demoUrl,omitempty"`
	GithubURL     string        `json:"githubUrl,omitempty"`
	Documentation string        `json:"documentation,omitempty"`
	Version       string        `json:"version,omitempty"`
	FileSize      string        `json:"fileSize,omitempty"`
	Downloads     int           `json:"downloads"`
	Rating        float64       `json:"rating"`
	ReviewCount   int           `json:"reviewCount"`
	IsPro         bool          `json:"isPro"`
	IsPremium     bool          `json:"isPremium"`
	Featured      bool          `json:"featured"`
	Status        ProductStatus `json:"status,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// OwnerID returns the seller identifier, whichever field the backend filled.
func (p *Product) OwnerID() string {
	if p.SellerID != "" {
		return p.SellerID
	}
	return p.AuthorID
}

// ProductQuery is the query string accepted by GET /products.
type ProductQuery struct {
	Category string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	SortBy   string
	Page     int
	Limit    int
}

type ProductList struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

type ProductForm struct {
	Title         string   `json:"title" validate:"required,min=3,max=200"`
	Description   string   `json:"description" validate:"required,min=10,max=5000"`
	Price         float64  `json:"price" validate:"gte=0"`
	Category      string   `json:"category" validate:"required,product_category"`
	Tags          []string `json:"tags" validate:"max=10,dive,min=1,max=30"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	DemoURL       string   `json:"demoUrl,omitempty" validate:"omitempty,url"`
	GithubURL     string   `json:"githubUrl,omitempty" validate:"omitempty,url"`
	Documentation string   `json:"documentation,omitempty"`
	Version       string   `json:"version,omitempty"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type LikeResponse struct {
	Liked bool   `json:"liked"`
	Likes int    `json:"likes"`
	Msg   string `json:"message,omitempty"`
}

// ProductCategories is the fixed set of category IDs a product may carry.
var ProductCategories = []string{
	"libraries", "cli-tools", "web-templates", "mobile", "desktop",
	"design", "database", "ai-ml", "security",
}

func IsProductCategory(id string) bool {
	for _, c := range ProductCategories {
		if c == id {
			return true
		}
	}
	return false
}
