// Package regreports hosts the regulatory report generator.
//
// Reports (STRs, surveillance summaries, compliance, risk, GSM/ESM
// watchlists, investigation files) are rendered to JSON and uploaded
// to an object store; callers get back the public URL. The service
// keeps a four kind reference-resolution cache so report, case and
// entity identifiers resolve from fragments across the generate,
// review and submit steps.
package regreports
