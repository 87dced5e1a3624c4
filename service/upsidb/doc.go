// Package upsidb hosts the UPSI compliance store service.
//
// Unpublished price sensitive information records, their access logs
// and per-company trading windows live in a PostgREST style REST
// store. The tools answer the questions insider trading
// investigations ask: who touched which record, when, and whether the
// trading window was closed at the time.
package upsidb
