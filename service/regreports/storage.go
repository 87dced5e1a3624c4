package regreports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/surveilops/surveilops/resilience"
)

// ErrUpload wraps object store upload failures.
var ErrUpload = errors.New("regreports: upload failed")

// StorageClient uploads report documents to a bucketed object store
// and derives their public URLs.
type StorageClient struct {
	http   *resty.Client
	base   string
	bucket string
	exec   *resilience.Executor
}

// NewStorageClient builds a client from config.
func NewStorageClient(cfg Config) *StorageClient {
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "reports"
	}
	base := strings.TrimRight(cfg.StorageURL, "/")

	client := resty.New().
		SetHeader("apikey", cfg.StorageKey).
		SetAuthToken(cfg.StorageKey).
		SetHeader("x-upsert", "true")

	return &StorageClient{
		http:   client,
		base:   base,
		bucket: bucket,
		exec:   cfg.Policy.Build(),
	}
}

// Upload stores v as JSON at path inside the bucket and returns the
// public URL.
func (c *StorageClient) Upload(ctx context.Context, path string, v any) (string, error) {
	err := c.exec.Execute(ctx, func(ctx context.Context) error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(v).
			Post(fmt.Sprintf("%s/storage/v1/object/%s/%s", c.base, c.bucket, path))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUpload, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: HTTP %d: %s", ErrUpload, resp.StatusCode(), resp.String())
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return c.PublicURL(path), nil
}

// PublicURL returns the public object URL for a stored path.
func (c *StorageClient) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.base, c.bucket, path)
}
