// internal/archive/downloader.go
package archive

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// Downloader streams a product download into a Sink.
type Downloader struct {
	fetcher Fetcher
	sink    Sink
	log     *logrus.Entry
}

func NewDownloader(fetcher Fetcher, sink Sink) *Downloader {
	return &Downloader{
		fetcher: fetcher,
		sink:    sink,
		log:     logrus.WithField("component", "archive"),
	}
}

// Save downloads rawURL and stores it under name.
func (d *Downloader) Save(ctx context.Context, rawURL, name string) (string, error) {
	body, err := d.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	location, err := d.sink.Save(ctx, name, body)
	if err != nil {
		return "", fmt.Errorf("failed to store download: %w", err)
	}
	d.log.WithField("location", location).Info("Download saved")
	return location, nil
}
