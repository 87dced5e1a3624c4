// Package observe provides observability for the surveillance tool
// services: structured logging, OpenTelemetry metrics and tracing, and a
// monitor for reference-resolution outcomes.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Services wire the observer into their tool
// handlers and into their resolution cache hook.
package observe
