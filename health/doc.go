// Package health reports liveness and readiness for surveillance
// services and their upstreams.
//
// A Checker is any component that can report its health status. The
// Aggregator combines checkers and computes an overall status:
// unhealthy dominates degraded, degraded dominates healthy.
//
//	agg := health.NewAggregator()
//	agg.Register("graph_store", health.NewUpstreamChecker("graph_store", client, url))
//	agg.Register("ref_cache", health.NewCacheChecker("ref_cache", rc))
//
// HTTP handlers expose the standard probe endpoints:
//
//	r.Get("/healthz", health.LivenessHandler())
//	r.Get("/readyz", health.ReadinessHandler(agg))
//	r.Get("/health", health.DetailedHandler(agg))
package health
