// Package tradedata hosts the trade data service.
//
// Live quotes come from the Alpha Vantage GLOBAL_QUOTE endpoint; the
// trade tape itself is synthesized deterministically around the quoted
// price and volume, so repeated calls for the same symbol return the
// same trades. The service keeps a reference-resolution cache so the
// agent can say "that account" or pass a bare symbol fragment.
package tradedata
