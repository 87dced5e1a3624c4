// Package refcontext provides a bounded, in-memory reference resolution
// cache for tool-serving endpoints.
//
// It remembers recent resolved calls so that a partial or approximate
// identifier supplied by an upstream agent ("REL", "that company", "SUS")
// can be turned into the canonical identifier a previous call already
// established, and so that several related identifiers can be resolved
// consistently from the same remembered interaction.
//
// Resolution is fail-open: every lookup returns a usable string and never
// an error. State lives only for the process lifetime.
package refcontext
