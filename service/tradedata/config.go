package tradedata

import (
	"errors"

	"github.com/surveilops/surveilops/resilience"
)

// ErrMissingAPIKey reports a config without market data credentials.
var ErrMissingAPIKey = errors.New("tradedata: market data api key is required")

// Config holds the service configuration.
type Config struct {
	// APIKey authenticates against the market data provider.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider endpoint, used in tests.
	BaseURL string `yaml:"base_url"`

	// Policy shapes retry/timeout behavior for quote fetches.
	Policy resilience.PolicyConfig `yaml:"policy"`
}

// Validate checks the config can fetch quotes.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
