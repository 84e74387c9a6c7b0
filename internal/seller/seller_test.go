// internal/seller/seller_test.go
package seller

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/utils"
)

type fakeBackend struct {
	created      []models.ProductForm
	deleted      []string
	archives     []string
	dashboards   int
	archiveErr   error
	imageUploads int
}

func (f *fakeBackend) Get(ctx context.Context, id string) (*models.Product, error) {
	return &models.Product{ID: id, Title: "JWT Kit", Description: "Token helpers for Go APIs", Price: 9.99, Category: "libraries", Tags: []string{"jwt"}}, nil
}

func (f *fakeBackend) Create(ctx context.Context, form models.ProductForm) (*models.Product, error) {
	f.created = append(f.created, form)
	return &models.Product{ID: "prod-new", Title: form.Title, ImageURL: form.ImageURL, Status: models.ProductStatusPending}, nil
}

func (f *fakeBackend) Update(ctx context.Context, id string, form models.ProductForm) (*models.Product, error) {
	return &models.Product{ID: id, Title: form.Title}, nil
}

func (f *fakeBackend) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) Dashboard(ctx context.Context) (*models.SellerDashboard, error) {
	f.dashboards++
	return &models.SellerDashboard{Stats: models.SellerStats{TotalProducts: f.dashboards}}, nil
}

func (f *fakeBackend) Products(ctx context.Context, page, limit int, status string) (*models.ProductList, error) {
	return &models.ProductList{}, nil
}

func (f *fakeBackend) Sales(ctx context.Context, page, limit int) (*models.SaleList, error) {
	return &models.SaleList{}, nil
}

func (f *fakeBackend) Analytics(ctx context.Context, period string) (models.SellerAnalytics, error) {
	return models.SellerAnalytics{"period": period}, nil
}

func (f *fakeBackend) Image(ctx context.Context, path string) (*models.UploadedImage, error) {
	f.imageUploads++
	return &models.UploadedImage{ImageURL: "https://cdn.test/" + path}, nil
}

func (f *fakeBackend) ProductArchive(ctx context.Context, productID, path string) (*models.UploadedFile, error) {
	if f.archiveErr != nil {
		return nil, f.archiveErr
	}
	f.archives = append(f.archives, productID+":"+path)
	return &models.UploadedFile{}, nil
}

func validListing() Listing {
	return Listing{
		Form: models.ProductForm{
			Title:       "  JWT Kit  ",
			Description: "Token helpers for Go APIs",
			Price:       9.99,
			Category:    "libraries",
			Tags:        []string{"jwt", " JWT ", "", "auth"},
		},
		ImagePath:   "cover.png",
		ArchivePath: "kit.zip",
	}
}

func TestCreateUploadsImageThenArchive(t *testing.T) {
	f := &fakeBackend{}
	s := New(f, f, f)

	p, err := s.Create(context.Background(), validListing())
	require.NoError(t, err)
	assert.Equal(t, "prod-new", p.ID)

	require.Len(t, f.created, 1)
	assert.Equal(t, "JWT Kit", f.created[0].Title)
	assert.Equal(t, []string{"jwt", "auth"}, f.created[0].Tags)
	assert.Equal(t, "https://cdn.test/cover.png", f.created[0].ImageURL)
	assert.Equal(t, []string{"prod-new:kit.zip"}, f.archives)

	st := s.State()
	assert.False(t, st.Uploading)
	assert.Equal(t, "prod-new", st.LastCreated.ID)
	require.NotNil(t, st.Dashboard)
}

func TestCreateValidatesFirst(t *testing.T) {
	f := &fakeBackend{}
	s := New(f, f, f)

	cases := map[string]func(*Listing){
		"short title":     func(l *Listing) { l.Form.Title = "ab" },
		"short body":      func(l *Listing) { l.Form.Description = "too short" },
		"negative price":  func(l *Listing) { l.Form.Price = -1 },
		"unknown section": func(l *Listing) { l.Form.Category = "games" },
		"too many tags": func(l *Listing) {
			l.Form.Tags = strings.Split("a,b,c,d,e,f,g,h,i,j,k", ",")
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			l := validListing()
			mutate(&l)
			_, err := s.Create(context.Background(), l)
			assert.True(t, utils.IsValidationError(err))
		})
	}
	assert.Empty(t, f.created)
	assert.Zero(t, f.imageUploads)
}

func TestCreateArchiveFailureKeepsProduct(t *testing.T) {
	f := &fakeBackend{archiveErr: errors.New("file too large")}
	s := New(f, f, f)

	p, err := s.Create(context.Background(), validListing())
	assert.ErrorIs(t, err, ErrArchiveUpload)
	require.NotNil(t, p)
	assert.Equal(t, "prod-new", p.ID)
	assert.NotEmpty(t, s.State().Err)
}

func TestEditUpdateDelete(t *testing.T) {
	f := &fakeBackend{}
	s := New(f, f, f)
	ctx := context.Background()

	l, err := s.Edit(ctx, "prod-1")
	require.NoError(t, err)
	l.Form.Title = "JWT Kit v2"

	p, err := s.Update(ctx, "prod-1", *l)
	require.NoError(t, err)
	assert.Equal(t, "JWT Kit v2", p.Title)

	require.NoError(t, s.Delete(ctx, "prod-1"))
	assert.Equal(t, []string{"prod-1"}, f.deleted)
	assert.Equal(t, 2, f.dashboards)

	a, err := s.Analytics(ctx, "30d")
	require.NoError(t, err)
	assert.Equal(t, "30d", a["period"])
}
