// Package auth authenticates callers of the compliance dashboard.
//
// Two methods are supported: HMAC-signed JWT bearer tokens for analyst
// sessions, and API keys for automated clients. The Middleware tries
// each configured authenticator in order and attaches the resulting
// Identity to the request context.
package auth
