// Package secret resolves credentials referenced from service
// configuration: graph store passwords, market data API keys, alert
// webhook tokens.
//
// It supports:
//   - Strict environment expansion (see ExpandEnvStrict)
//   - Pluggable secret providers (see Provider + Registry)
//   - Resolving secret references in configuration values (see Resolver)
//
// References use the prefix "secretref:":
//   - Full value:  secretref:env:NEO4J_PASSWORD
//   - Inline use:  Bearer secretref:file:/run/secrets/alert_token
//
// Resolved values must never appear in logs; the observe package
// redacts the well-known credential field names.
package secret
