package anomaly

import (
	"errors"

	"github.com/surveilops/surveilops/resilience"
)

// Sentinel errors for configuration validation.
var (
	ErrMissingMarketKey = errors.New("anomaly: market data api key is required")
	ErrMissingRSISecret = errors.New("anomaly: rsi api secret is required")
)

// Config holds the service configuration. The dashboard fields are
// optional; without them detections still run but push nowhere.
type Config struct {
	MarketAPIKey  string `yaml:"market_api_key"`
	MarketBaseURL string `yaml:"market_base_url"`

	RSISecret  string `yaml:"rsi_secret"`
	RSIBaseURL string `yaml:"rsi_base_url"`

	DashboardURL    string `yaml:"dashboard_url"`
	DashboardAPIKey string `yaml:"dashboard_api_key"`

	// Policy shapes retry/timeout behavior for upstream calls. The RSI
	// provider rate-limits aggressively, so a rate_per_second entry
	// here is the usual deployment shape.
	Policy resilience.PolicyConfig `yaml:"policy"`
}

// Validate checks the config can reach its market data upstreams.
func (c Config) Validate() error {
	if c.MarketAPIKey == "" {
		return ErrMissingMarketKey
	}
	if c.RSISecret == "" {
		return ErrMissingRSISecret
	}
	return nil
}
