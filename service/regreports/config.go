package regreports

import (
	"errors"

	"github.com/surveilops/surveilops/resilience"
)

// Sentinel errors for configuration validation.
var (
	ErrMissingStorageURL = errors.New("regreports: storage url is required")
	ErrMissingStorageKey = errors.New("regreports: storage key is required")
)

// Config holds the service configuration.
type Config struct {
	// StorageURL is the object store base URL.
	StorageURL string `yaml:"storage_url"`

	// StorageKey authenticates uploads.
	StorageKey string `yaml:"storage_key"`

	// Bucket is the target bucket, default "reports".
	Bucket string `yaml:"bucket"`

	// Policy shapes retry/timeout behavior for uploads.
	Policy resilience.PolicyConfig `yaml:"policy"`
}

// Validate checks the config can reach an object store.
func (c Config) Validate() error {
	if c.StorageURL == "" {
		return ErrMissingStorageURL
	}
	if c.StorageKey == "" {
		return ErrMissingStorageKey
	}
	return nil
}
