package secret

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestEnvProvider_Resolve(t *testing.T) {
	t.Setenv("NEO4J_PASSWORD", "graph-pass")

	got, err := EnvProvider{}.Resolve(context.Background(), "NEO4J_PASSWORD")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "graph-pass" {
		t.Fatalf("Resolve() = %q, want %q", got, "graph-pass")
	}

	if _, err := (EnvProvider{}).Resolve(context.Background(), "SURVEILOPS_UNSET_VAR"); err == nil {
		t.Fatalf("expected error for unset variable")
	}
}

func TestFileProvider_Resolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote_api_key")
	if err := os.WriteFile(path, []byte("qk-file-1\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := FileProvider{}.Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "qk-file-1" {
		t.Fatalf("trailing newline must be trimmed, got %q", got)
	}

	if _, err := (FileProvider{}).Resolve(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDefaultResolver_ResolvesEnvRef(t *testing.T) {
	t.Setenv("ALERT_WEBHOOK_TOKEN", "tok-env")

	r := NewDefaultResolver()
	got, err := r.ResolveValue(context.Background(), "secretref:env:ALERT_WEBHOOK_TOKEN")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "tok-env" {
		t.Fatalf("ResolveValue() = %q, want %q", got, "tok-env")
	}
}
