// Package casemgmt hosts the surveillance case management service.
//
// Cases live in an in-memory store keyed by sequential IDs; evidence,
// notes and status transitions append to a per-case timeline. Every
// change mirrors to the dashboard when one is configured. The service
// keeps a reference-resolution cache over case, entity and UPSI
// identifiers so follow-up calls can use fragments.
package casemgmt
