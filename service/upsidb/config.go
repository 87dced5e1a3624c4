package upsidb

import (
	"errors"

	"github.com/surveilops/surveilops/resilience"
)

// Sentinel errors for configuration validation.
var (
	ErrMissingStoreURL = errors.New("upsidb: store url is required")
	ErrMissingStoreKey = errors.New("upsidb: store key is required")
)

// Config holds the service configuration.
type Config struct {
	// StoreURL is the REST store base URL.
	StoreURL string `yaml:"store_url"`

	// StoreKey authenticates requests.
	StoreKey string `yaml:"store_key"`

	// Policy shapes retry/timeout behavior for store queries.
	Policy resilience.PolicyConfig `yaml:"policy"`
}

// Validate checks the config can reach the store.
func (c Config) Validate() error {
	if c.StoreURL == "" {
		return ErrMissingStoreURL
	}
	if c.StoreKey == "" {
		return ErrMissingStoreKey
	}
	return nil
}
