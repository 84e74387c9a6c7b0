// internal/api/upload.go
package api

import (
	"context"
	"io"
	"net/url"

	"github.com/vibing/vibing-client/internal/models"
)

type UploadService struct {
	c *Client
}

func (s *UploadService) Image(ctx context.Context, filename, contentType string, r io.Reader) (*models.UploadedImage, error) {
	return s.image(ctx, "/upload/image", filename, contentType, r)
}

func (s *UploadService) ChatImage(ctx context.Context, filename, contentType string, r io.Reader) (*models.UploadedImage, error) {
	return s.image(ctx, "/upload/chat-image", filename, contentType, r)
}

func (s *UploadService) image(ctx context.Context, path, filename, contentType string, r io.Reader) (*models.UploadedImage, error) {
	var resp models.UploadedImage
	files := []FilePart{{Field: "image", Filename: filename, ContentType: contentType, Reader: r}}
	if err := s.c.PostMultipart(ctx, path, nil, files, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *UploadService) ProductFile(ctx context.Context, productID, filename, contentType string, r io.Reader) (*models.UploadedFile, error) {
	var resp models.UploadedFile
	fields := map[string]string{"productId": productID}
	files := []FilePart{{Field: "file", Filename: filename, ContentType: contentType, Reader: r}}
	if err := s.c.PostMultipart(ctx, "/upload/product-files", fields, files, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *UploadService) SignedURL(ctx context.Context, filename, contentType string) (*models.SignedUpload, error) {
	var resp models.SignedUpload
	q := url.Values{}
	q.Set("filename", filename)
	q.Set("contentType", contentType)
	if err := s.c.Get(ctx, "/upload/signed-url", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PutSigned uploads r to a presigned URL.
func (s *UploadService) PutSigned(ctx context.Context, uploadURL, contentType string, r io.Reader, size int64) error {
	return s.c.PutRaw(ctx, uploadURL, contentType, r, size)
}
