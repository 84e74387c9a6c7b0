// internal/store/store.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vibing/vibing-client/internal/config"
	"github.com/vibing/vibing-client/internal/database"
	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/utils"
)

const saltKey = "__store-salt"

// Store is the client's persistent local storage: a key/value table plus a
// cache of product listings. When a secret is configured, values written
// with SetSealed are encrypted at rest.
type Store struct {
	db  *gorm.DB
	key *[32]byte
	log *logrus.Entry
}

// Open connects to the configured database, migrates it and returns a Store.
func Open(cfg config.StoreConfig, secret string) (*Store, error) {
	db, err := database.Initialize(cfg)
	if err != nil {
		return nil, err
	}
	s, err := New(db, secret)
	if err != nil {
		database.Close(db)
		return nil, err
	}
	return s, nil
}

// New wraps an open database.
func New(db *gorm.DB, secret string) (*Store, error) {
	if err := database.RunMigrations(db); err != nil {
		return nil, err
	}

	s := &Store{db: db, log: logrus.WithField("component", "store")}
	if secret == "" {
		return s, nil
	}

	salt, err := s.salt()
	if err != nil {
		return nil, err
	}
	key, err := utils.DeriveKey(secret, salt)
	if err != nil {
		return nil, err
	}
	s.key = key
	return s, nil
}

func (s *Store) salt() ([]byte, error) {
	var entry models.LocalEntry
	err := s.db.Where("key = ?", saltKey).First(&entry).Error
	if err == nil {
		return entry.Value, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to read store salt: %w", err)
	}

	salt, err := utils.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate store salt: %w", err)
	}
	entry = models.LocalEntry{Key: saltKey, Value: salt, UpdatedAt: time.Now()}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to save store salt: %w", err)
	}
	return salt, nil
}

// Encrypted reports whether sealed values are actually encrypted.
func (s *Store) Encrypted() bool {
	return s.key != nil
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.LocalEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if !entry.Sealed {
		return string(entry.Value), true, nil
	}
	if s.key == nil {
		return "", false, fmt.Errorf("%s is encrypted and no secret is configured: %w", key, utils.ErrDecrypt)
	}
	plain, err := utils.Open(s.key, entry.Value)
	if err != nil {
		return "", false, fmt.Errorf("failed to open %s: %w", key, err)
	}
	return string(plain), true, nil
}

// Set stores value in plain text.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.put(ctx, key, []byte(value), false)
}

// SetSealed stores value encrypted when a secret is configured, in plain
// text otherwise.
func (s *Store) SetSealed(ctx context.Context, key, value string) error {
	if s.key == nil {
		return s.put(ctx, key, []byte(value), false)
	}
	sealed, err := utils.Seal(s.key, []byte(value))
	if err != nil {
		return fmt.Errorf("failed to seal %s: %w", key, err)
	}
	return s.put(ctx, key, sealed, true)
}

func (s *Store) put(ctx context.Context, key string, value []byte, sealed bool) error {
	entry := models.LocalEntry{Key: key, Value: value, Sealed: sealed, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "sealed", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes keys; missing keys are ignored.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("key IN ?", keys).Delete(&models.LocalEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

// GetJSON decodes the JSON value under key into out.
func (s *Store) GetJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v as JSON and stores it sealed.
func (s *Store) SetJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.SetSealed(ctx, key, string(data))
}

// CacheListing remembers the product page fetched for selectionKey.
func (s *Store) CacheListing(ctx context.Context, selectionKey string, list *models.ProductList) error {
	row := models.CachedListing{
		ID:           uuid.New(),
		SelectionKey: selectionKey,
		Products:     list.Products,
		Pagination:   list.Pagination,
		FetchedAt:    time.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "selection_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"products", "pagination", "fetched_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to cache listing: %w", err)
	}
	return nil
}

// CachedListing returns the cached page for selectionKey and when it was fetched.
func (s *Store) CachedListing(ctx context.Context, selectionKey string) (*models.ProductList, time.Time, bool, error) {
	var row models.CachedListing
	err := s.db.WithContext(ctx).Where("selection_key = ?", selectionKey).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("failed to read cached listing: %w", err)
	}
	return &models.ProductList{Products: row.Products, Pagination: row.Pagination}, row.FetchedAt, true, nil
}

// PruneListings drops cached pages older than maxAge.
func (s *Store) PruneListings(ctx context.Context, maxAge time.Duration) (int64, error) {
	res := s.db.WithContext(ctx).Where("fetched_at < ?", time.Now().Add(-maxAge)).Delete(&models.CachedListing{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune listings: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) Close() {
	database.Close(s.db)
}
