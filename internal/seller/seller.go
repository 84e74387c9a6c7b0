// internal/seller/seller.go
package seller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/observer"
	"github.com/vibing/vibing-client/internal/utils"
)

// ErrArchiveUpload wraps a failed zip upload for a product that was created.
var ErrArchiveUpload = errors.New("product created but archive upload failed")

type ProductAPI interface {
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, form models.ProductForm) (*models.Product, error)
	Update(ctx context.Context, id string, form models.ProductForm) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

type SellerAPI interface {
	Dashboard(ctx context.Context) (*models.SellerDashboard, error)
	Products(ctx context.Context, page, limit int, status string) (*models.ProductList, error)
	Sales(ctx context.Context, page, limit int) (*models.SaleList, error)
	Analytics(ctx context.Context, period string) (models.SellerAnalytics, error)
}

type Uploader interface {
	Image(ctx context.Context, path string) (*models.UploadedImage, error)
	ProductArchive(ctx context.Context, productID, path string) (*models.UploadedFile, error)
}

// Listing is a product form plus the local files to upload with it.
type Listing struct {
	Form        models.ProductForm
	ImagePath   string
	ArchivePath string
}

type State struct {
	Dashboard   *models.SellerDashboard
	Uploading   bool
	LastCreated *models.Product
	Err         string
}

// Seller manages the signed-in seller's products.
type Seller struct {
	products ProductAPI
	seller   SellerAPI
	uploads  Uploader
	log      *logrus.Entry

	mu    sync.Mutex
	state State

	subject observer.Subject[State]
}

func New(products ProductAPI, sellerAPI SellerAPI, uploads Uploader) *Seller {
	return &Seller{
		products: products,
		seller:   sellerAPI,
		uploads:  uploads,
		log:      logrus.WithField("component", "seller"),
	}
}

func (s *Seller) Subscribe(fn func(State)) func() {
	return s.subject.Subscribe(fn)
}

func (s *Seller) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Seller) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.state
	s.mu.Unlock()
	s.subject.Publish(snap)
}

// NormalizeTags trims tags and drops empty and repeated ones.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

func prepare(l Listing) (models.ProductForm, error) {
	f := l.Form
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Tags = NormalizeTags(f.Tags)
	if err := utils.ValidateStruct(f); err != nil {
		return models.ProductForm{}, err
	}
	return f, nil
}

// Create validates the listing, uploads its image, creates the product and
// then uploads its archive.
func (s *Seller) Create(ctx context.Context, l Listing) (*models.Product, error) {
	form, err := prepare(l)
	if err != nil {
		return nil, err
	}

	s.update(func(st *State) {
		st.Uploading = true
		st.Err = ""
	})
	product, err := s.create(ctx, form, l)
	s.update(func(st *State) {
		st.Uploading = false
		if err != nil {
			st.Err = err.Error()
		}
		if product != nil {
			st.LastCreated = product
		}
	})
	if product != nil {
		s.refresh(ctx)
	}
	return product, err
}

func (s *Seller) create(ctx context.Context, form models.ProductForm, l Listing) (*models.Product, error) {
	if l.ImagePath != "" {
		img, err := s.uploads.Image(ctx, l.ImagePath)
		if err != nil {
			return nil, err
		}
		form.ImageURL = img.ImageURL
	}

	product, err := s.products.Create(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	log := s.log.WithField("product_id", product.ID)
	log.Info("Product created")

	if l.ArchivePath != "" {
		if _, err := s.uploads.ProductArchive(ctx, product.ID, l.ArchivePath); err != nil {
			log.WithError(err).Warn("Archive upload failed")
			return product, fmt.Errorf("%w: %v", ErrArchiveUpload, err)
		}
	}
	return product, nil
}

// Update replaces the product's fields, uploading a new image or archive
// when given.
func (s *Seller) Update(ctx context.Context, id string, l Listing) (*models.Product, error) {
	form, err := prepare(l)
	if err != nil {
		return nil, err
	}
	if l.ImagePath != "" {
		img, err := s.uploads.Image(ctx, l.ImagePath)
		if err != nil {
			return nil, err
		}
		form.ImageURL = img.ImageURL
	}

	product, err := s.products.Update(ctx, id, form)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if l.ArchivePath != "" {
		if _, err := s.uploads.ProductArchive(ctx, id, l.ArchivePath); err != nil {
			return product, fmt.Errorf("failed to upload product file: %w", err)
		}
	}
	s.refresh(ctx)
	return product, nil
}

// Edit loads a product into a listing for Update.
func (s *Seller) Edit(ctx context.Context, id string) (*Listing, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Listing{Form: models.ProductForm{
		Title:         p.Title,
		Description:   p.Description,
		Price:         p.Price,
		Category:      p.Category,
		Tags:          p.Tags,
		ImageURL:      p.ImageURL,
		DemoURL:       p.DemoURL,
		GithubURL:     p.GithubURL,
		Documentation: p.Documentation,
		Version:       p.Version,
	}}, nil
}

func (s *Seller) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.refresh(ctx)
	return nil
}

func (s *Seller) refresh(ctx context.Context) {
	if _, err := s.Dashboard(ctx); err != nil {
		s.log.WithError(err).Warn("Failed to refresh seller dashboard")
	}
}

func (s *Seller) Dashboard(ctx context.Context) (*models.SellerDashboard, error) {
	d, err := s.seller.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	s.update(func(st *State) { st.Dashboard = d })
	return d, nil
}

func (s *Seller) Products(ctx context.Context, page int, status string) (*models.ProductList, error) {
	return s.seller.Products(ctx, page, 0, status)
}

func (s *Seller) Sales(ctx context.Context, page int) (*models.SaleList, error) {
	return s.seller.Sales(ctx, page, 0)
}

func (s *Seller) Analytics(ctx context.Context, period string) (models.SellerAnalytics, error) {
	return s.seller.Analytics(ctx, period)
}
