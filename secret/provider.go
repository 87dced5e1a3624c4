package secret

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves refs as environment variable names.
//
// Ref format: the variable name, e.g. "NEO4J_PASSWORD".
type EnvProvider struct{}

func (EnvProvider) Name() string { return "env" }

func (EnvProvider) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("env secret ref is empty")
	}
	value, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("environment variable %q is not set", ref)
	}
	return value, nil
}

func (EnvProvider) Close() error { return nil }

// FileProvider resolves refs as file paths, reading the secret from
// disk. Trailing whitespace is trimmed so mounted secret files may end
// with a newline.
//
// Ref format: an absolute path, e.g. "/run/secrets/quote_api_key".
type FileProvider struct{}

func (FileProvider) Name() string { return "file" }

func (FileProvider) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("file secret ref is empty")
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("read secret file: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (FileProvider) Close() error { return nil }

var (
	_ Provider = EnvProvider{}
	_ Provider = FileProvider{}
)
