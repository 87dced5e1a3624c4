package entityrel

import (
	"errors"

	"github.com/surveilops/surveilops/resilience"
)

// Sentinel errors for configuration validation.
var (
	ErrMissingGraphURI  = errors.New("entityrel: graph uri is required")
	ErrMissingGraphAuth = errors.New("entityrel: graph credentials are required")
)

// Config holds the service configuration. Credential fields are
// expected to have passed through secret resolution already.
type Config struct {
	// GraphURI is the Neo4j endpoint. neo4j+s:// and neo4j:// schemes
	// are rewritten to their HTTP equivalents for the tx/commit API.
	GraphURI      string `yaml:"graph_uri"`
	GraphUser     string `yaml:"graph_user"`
	GraphPassword string `yaml:"graph_password"`

	// Policy shapes retry/timeout behavior for graph queries.
	Policy resilience.PolicyConfig `yaml:"policy"`
}

// Validate checks that the config can reach a graph store.
func (c Config) Validate() error {
	if c.GraphURI == "" {
		return ErrMissingGraphURI
	}
	if c.GraphUser == "" || c.GraphPassword == "" {
		return ErrMissingGraphAuth
	}
	return nil
}
