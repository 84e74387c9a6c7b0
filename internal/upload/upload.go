// internal/upload/upload.go
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"github.com/vibing/vibing-client/internal/models"
)

const (
	MaxImageSize   = 20 << 20
	MaxArchiveSize = 200 << 20
)

var (
	ErrUnsupportedImage   = errors.New("only JPEG, PNG, and WebP images are allowed")
	ErrImageTooLarge      = errors.New("image file size must be less than 20MB")
	ErrNotZip             = errors.New("only ZIP files are allowed")
	ErrArchiveTooLarge    = errors.New("file is too large, maximum size is 200MB")
	ErrProductIDRequired  = errors.New("product ID is required for file upload")
	ErrEmptyFile          = errors.New("no file provided for upload")
	allowedImageMIMETypes = []string{"image/jpeg", "image/png", "image/webp"}
)

type UploadAPI interface {
	Image(ctx context.Context, filename, contentType string, r io.Reader) (*models.UploadedImage, error)
	ChatImage(ctx context.Context, filename, contentType string, r io.Reader) (*models.UploadedImage, error)
	ProductFile(ctx context.Context, productID, filename, contentType string, r io.Reader) (*models.UploadedFile, error)
	SignedURL(ctx context.Context, filename, contentType string) (*models.SignedUpload, error)
	PutSigned(ctx context.Context, uploadURL, contentType string, r io.Reader, size int64) error
}

// TokenChecker reports ErrAuthRequired when no bearer token is stored.
type TokenChecker interface {
	RequireToken() error
}

// Uploader validates local files before handing them to the upload API.
type Uploader struct {
	api  UploadAPI
	auth TokenChecker
	log  *logrus.Entry
}

func New(uploadAPI UploadAPI, auth TokenChecker) *Uploader {
	return &Uploader{
		api:  uploadAPI,
		auth: auth,
		log:  logrus.WithField("component", "upload"),
	}
}

// localFile is an opened file with its sniffed content type.
type localFile struct {
	*os.File
	name string
	size int64
	mime *mimetype.MIME
}

func openLocal(path string) (*localFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		f.Close()
		return nil, ErrEmptyFile
	}
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	return &localFile{File: f, name: filepath.Base(path), size: info.Size(), mime: mt}, nil
}

// ContentType is the sniffed MIME type without parameters.
func (f *localFile) ContentType() string {
	ct := f.mime.String()
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

func (f *localFile) isImage() bool {
	for _, allowed := range allowedImageMIMETypes {
		if f.mime.Is(allowed) {
			return true
		}
	}
	return false
}

func (f *localFile) isZip() bool {
	for m := f.mime; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return strings.HasSuffix(strings.ToLower(f.name), ".zip")
}

func (u *Uploader) openImage(path string) (*localFile, error) {
	f, err := openLocal(path)
	if err != nil {
		return nil, err
	}
	if !f.isImage() {
		f.Close()
		return nil, ErrUnsupportedImage
	}
	if f.size > MaxImageSize {
		f.Close()
		return nil, ErrImageTooLarge
	}
	if err := u.auth.RequireToken(); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Image uploads a product image.
func (u *Uploader) Image(ctx context.Context, path string) (*models.UploadedImage, error) {
	f, err := u.openImage(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := u.api.Image(ctx, f.name, f.ContentType(), f)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	u.log.WithField("url", img.ImageURL).Info("Image uploaded")
	return img, nil
}

// ChatImage uploads an image for a chat message.
func (u *Uploader) ChatImage(ctx context.Context, path string) (*models.UploadedImage, error) {
	f, err := u.openImage(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := u.api.ChatImage(ctx, f.name, f.ContentType(), f)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	return img, nil
}

// ProductArchive uploads the downloadable zip for productID.
func (u *Uploader) ProductArchive(ctx context.Context, productID, path string) (*models.UploadedFile, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, ErrProductIDRequired
	}
	if err := u.auth.RequireToken(); err != nil {
		return nil, err
	}
	f, err := openLocal(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !f.isZip() {
		return nil, fmt.Errorf("%w: %q is not a valid ZIP file", ErrNotZip, f.name)
	}
	if f.size > MaxArchiveSize {
		return nil, fmt.Errorf("%w: %q", ErrArchiveTooLarge, f.name)
	}

	uploaded, err := u.api.ProductFile(ctx, productID, f.name, "application/zip", f)
	if err != nil {
		return nil, fmt.Errorf("failed to upload product file: %w", err)
	}
	u.log.WithFields(logrus.Fields{
		"product_id": productID,
		"size":       uploaded.File.Size,
	}).Info("Product file uploaded")
	return uploaded, nil
}

// Direct uploads path straight to object storage through a presigned URL and
// returns the object key.
func (u *Uploader) Direct(ctx context.Context, path string) (string, error) {
	if err := u.auth.RequireToken(); err != nil {
		return "", err
	}
	f, err := openLocal(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	contentType := f.ContentType()
	signed, err := u.api.SignedURL(ctx, f.name, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to get upload URL: %w", err)
	}
	if err := u.api.PutSigned(ctx, signed.UploadURL, contentType, f, f.size); err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return signed.Key, nil
}
