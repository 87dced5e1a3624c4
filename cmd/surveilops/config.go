package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/surveilops/surveilops/auth"
	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/secret"
	"github.com/surveilops/surveilops/service/anomaly"
	"github.com/surveilops/surveilops/service/entityrel"
	"github.com/surveilops/surveilops/service/notify"
	"github.com/surveilops/surveilops/service/regreports"
	"github.com/surveilops/surveilops/service/ticketing"
	"github.com/surveilops/surveilops/service/tradedata"
	"github.com/surveilops/surveilops/service/upsidb"
)

// appConfig is the full platform configuration. One file configures
// every service; each process reads only its own section.
type appConfig struct {
	Observe    telemetryConfig   `yaml:"observe"`
	EntityRel  entityrel.Config  `yaml:"entityrel"`
	TradeData  tradedata.Config  `yaml:"tradedata"`
	Anomaly    anomaly.Config    `yaml:"anomaly"`
	RegReports regreports.Config `yaml:"regreports"`
	CaseMgmt   caseMgmtConfig    `yaml:"casemgmt"`
	UPSIDB     upsidb.Config     `yaml:"upsidb"`
	Ticketing  ticketing.Config  `yaml:"ticketing"`
	Notify     notify.Config     `yaml:"notify"`
	Dashboard  dashboardConfig   `yaml:"dashboard"`
}

type telemetryConfig struct {
	Tracing struct {
		Enabled   bool    `yaml:"enabled"`
		Exporter  string  `yaml:"exporter"`
		SamplePct float64 `yaml:"sample_pct"`
	} `yaml:"tracing"`
	Metrics struct {
		Enabled  bool   `yaml:"enabled"`
		Exporter string `yaml:"exporter"`
	} `yaml:"metrics"`
	Logging struct {
		Enabled bool   `yaml:"enabled"`
		Level   string `yaml:"level"`
	} `yaml:"logging"`
}

func (t telemetryConfig) observeConfig(serviceName string) observe.Config {
	return observe.Config{
		ServiceName: serviceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   t.Tracing.Enabled,
			Exporter:  t.Tracing.Exporter,
			SamplePct: t.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  t.Metrics.Enabled,
			Exporter: t.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: t.Logging.Enabled,
			Level:   t.Logging.Level,
		},
	}
}

type caseMgmtConfig struct {
	DashboardURL    string `yaml:"dashboard_url"`
	DashboardAPIKey string `yaml:"dashboard_api_key"`
}

type dashboardConfig struct {
	ListenAddr string         `yaml:"listen_addr"`
	JWTSecret  string         `yaml:"jwt_secret"`
	APIKeys    []apiKeyConfig `yaml:"api_keys"`
}

type apiKeyConfig struct {
	ID        string   `yaml:"id"`
	Key       string   `yaml:"key"`
	Principal string   `yaml:"principal"`
	Roles     []string `yaml:"roles"`
}

func (d dashboardConfig) authenticators() ([]auth.Authenticator, error) {
	var auths []auth.Authenticator
	if d.JWTSecret != "" {
		auths = append(auths, auth.NewJWTAuthenticator(auth.JWTConfig{Secret: []byte(d.JWTSecret)}))
	}
	if len(d.APIKeys) > 0 {
		store := auth.NewMemoryAPIKeyStore()
		for _, k := range d.APIKeys {
			store.Add(&auth.APIKeyInfo{
				ID:        k.ID,
				KeyHash:   auth.HashAPIKey(k.Key),
				Principal: k.Principal,
				Roles:     k.Roles,
			})
		}
		auths = append(auths, auth.NewAPIKeyAuthenticator(store))
	}
	if len(auths) == 0 {
		return nil, errors.New("dashboard requires a jwt_secret or at least one api key")
	}
	return auths, nil
}

// loadConfig reads the YAML file, expands environment variables and
// secret references in the raw text, then unmarshals. Credentials in
// the file are expected to be ${ENV} or secretref values, never
// literals.
func loadConfig(ctx context.Context, path string) (*appConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	resolved, err := secret.NewDefaultResolver().ResolveValue(ctx, string(raw))
	if err != nil {
		return nil, fmt.Errorf("resolve config secrets: %w", err)
	}

	var cfg appConfig
	if err := yaml.Unmarshal([]byte(resolved), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
