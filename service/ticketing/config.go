package ticketing

import (
	"errors"

	"github.com/surveilops/surveilops/resilience"
)

// Sentinel errors for configuration validation.
var (
	ErrMissingTrackerURL  = errors.New("ticketing: tracker url is required")
	ErrMissingTrackerAuth = errors.New("ticketing: tracker email and api token are required")
	ErrMissingProjectKey  = errors.New("ticketing: project key is required")
)

// Config holds the service configuration.
type Config struct {
	// BaseURL is the tracker site, e.g. https://example.atlassian.net.
	BaseURL string `yaml:"base_url"`

	// Email pairs with APIToken for basic auth.
	Email string `yaml:"email"`

	// APIToken authenticates requests.
	APIToken string `yaml:"api_token"`

	// ProjectKey is the project new tickets land in.
	ProjectKey string `yaml:"project_key"`

	// DefaultIssueType is used when a tool call gives none.
	// Defaults to Task.
	DefaultIssueType string `yaml:"default_issue_type"`

	// Policy shapes retry/timeout behavior for tracker calls.
	Policy resilience.PolicyConfig `yaml:"policy"`
}

// Validate checks the config can reach the tracker.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingTrackerURL
	}
	if c.Email == "" || c.APIToken == "" {
		return ErrMissingTrackerAuth
	}
	if c.ProjectKey == "" {
		return ErrMissingProjectKey
	}
	return nil
}
