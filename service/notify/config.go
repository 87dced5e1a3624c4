package notify

import "github.com/surveilops/surveilops/resilience"

// Config holds the service configuration. An empty WebhookURL is
// valid: the service stays up and reports every send as not
// configured, so the rest of the platform never blocks on chat.
type Config struct {
	// WebhookURL is the incoming webhook endpoint.
	WebhookURL string `yaml:"webhook_url"`

	// DefaultChannel labels messages when the caller gives none.
	DefaultChannel string `yaml:"default_channel"`

	// Policy shapes retry/timeout behavior for webhook posts.
	Policy resilience.PolicyConfig `yaml:"policy"`
}
