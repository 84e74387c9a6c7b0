// internal/archive/sink.go
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vibing/vibing-client/internal/config"
)

// Sink stores a downloaded product archive and returns where it ended up.
type Sink interface {
	Save(ctx context.Context, name string, r io.Reader) (location string, err error)
}

// NewSink returns the sink selected by cfg.Sink.
func NewSink(cfg config.AWSConfig) (Sink, error) {
	switch cfg.Sink {
	case "s3":
		return NewS3Sink(cfg)
	case "file", "":
		return NewFileSink(cfg.ArchiveDir), nil
	default:
		return nil, fmt.Errorf("unsupported archive sink %q", cfg.Sink)
	}
}

// FileSink writes archives into a local directory.
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

func (s *FileSink) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	path := filepath.Join(s.Dir, safeName(name))
	tmp, err := os.CreateTemp(s.Dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r}); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}
	return path, nil
}

// S3Sink uploads archives to an S3 bucket.
type S3Sink struct {
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
	log      *logrus.Entry
}

func NewS3Sink(cfg config.AWSConfig) (*S3Sink, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}

	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.S3Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.S3Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Sink{
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.S3Bucket,
		prefix:   strings.Trim(cfg.S3Prefix, "/"),
		log:      logrus.WithField("component", "archive"),
	}, nil
}

func (s *S3Sink) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	key := s.generateKey(name)
	result, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"bucket": s.bucket,
		"key":    key,
	}).Info("Archive uploaded")
	return result.Location, nil
}

func (s *S3Sink) generateKey(name string) string {
	id := uuid.New()
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(safeName(name), ext)
	filename := fmt.Sprintf("%s/%s_%s%s", time.Now().Format("20060102"), base, id.String()[:8], ext)
	if s.prefix != "" {
		return s.prefix + "/" + filename
	}
	return filename
}

func safeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "download.zip"
	}
	return name
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
