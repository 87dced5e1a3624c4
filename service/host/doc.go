// Package host carries the shared plumbing for the MCP tool services.
//
// Every surveillance service is hosted the same way: an MCP server over
// stdio, tool handlers instrumented through observe.Middleware, and a
// get_context tool exposing the service's reference-resolution cache to
// the calling agent. This package holds that wiring once so the service
// packages contain only domain logic.
package host
