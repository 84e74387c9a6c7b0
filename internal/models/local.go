// internal/models/local.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// LocalEntry is one key/value pair of the client's local storage.
type LocalEntry struct {
	Key       string    `gorm:"primaryKey;size:128"`
	Value     []byte    `gorm:"not null"`
	Sealed    bool      `gorm:"not null;default:false"`
	UpdatedAt time.Time `gorm:"not null"`
}

// CachedListing is the last product page fetched for a selection.
type CachedListing struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SelectionKey string     `gorm:"uniqueIndex;size:512;not null"`
	Products     []Product  `gorm:"serializer:json"`
	Pagination   Pagination `gorm:"serializer:json"`
	FetchedAt    time.Time  `gorm:"index;not null"`
}
