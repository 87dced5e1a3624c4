package refcontext

import "strings"

// Resolve turns a partial identifier into the best-guess canonical value
// for kind. Tiers are checked in a fixed order, most recently inserted
// record winning within each tier:
//
//  1. empty partial           -> last-seen value
//  2. last-seen contains it   -> last-seen value
//  3. field substring match   -> that record's field
//  4. prompt substring match  -> that record's field, if non-empty
//  5. no match                -> the partial, unchanged
//
// The final tier is a deliberate fail-open passthrough: the partial is
// treated as already canonical and any "not found" surfaces one layer up.
func (c *Context) Resolve(kind Kind, partial string) string {
	c.mu.RLock()
	value, tier := c.resolveLocked(kind, partial)
	c.mu.RUnlock()

	c.emit(ResolveEvent{Kind: kind, Partial: partial, Resolved: value, Tier: tier})
	return value
}

// ResolveMany resolves several partials at once, preferring to pull all of
// them from one single remembered interaction over resolving each
// independently. When a history record matches any supplied partial (by
// field or by prompt), every requested kind with a non-empty field in that
// record takes its value from it; the rest fall back to single-field
// resolution. If no record matches, every kind resolves independently and
// cross-field consistency is not guaranteed.
func (c *Context) ResolveMany(partials map[Kind]string) map[Kind]string {
	c.mu.RLock()
	result, events := c.resolveManyLocked(partials)
	c.mu.RUnlock()

	for _, ev := range events {
		c.emit(ev)
	}
	return result
}

// resolveLocked implements single-field resolution. Callers hold c.mu.
func (c *Context) resolveLocked(kind Kind, partial string) (string, Tier) {
	if partial == "" {
		return c.last[kind], TierLastSeen
	}

	lower := strings.ToLower(partial)

	if strings.Contains(strings.ToLower(c.last[kind]), lower) {
		return c.last[kind], TierLastSeen
	}

	for i := c.count - 1; i >= 0; i-- {
		v := c.at(i).Fields[kind]
		if v != "" && strings.Contains(strings.ToLower(v), lower) {
			return v, TierField
		}
	}

	for i := c.count - 1; i >= 0; i-- {
		rec := c.at(i)
		if strings.Contains(strings.ToLower(rec.Prompt), lower) && rec.Fields[kind] != "" {
			return rec.Fields[kind], TierPrompt
		}
	}

	return partial, TierPassthrough
}

// resolveManyLocked implements cross-field resolution. Callers hold c.mu.
func (c *Context) resolveManyLocked(partials map[Kind]string) (map[Kind]string, []ResolveEvent) {
	result := make(map[Kind]string, len(partials))
	events := make([]ResolveEvent, 0, len(partials))

	for i := c.count - 1; i >= 0; i-- {
		rec := c.at(i)
		if !recordMatches(rec, partials) {
			continue
		}

		// First matching record wins, whether the match came from a
		// field or from prompt text: recency over specificity.
		for kind, partial := range partials {
			if v := rec.Fields[kind]; v != "" {
				result[kind] = v
				events = append(events, ResolveEvent{Kind: kind, Partial: partial, Resolved: v, Tier: TierConsistent})
			} else {
				v, tier := c.resolveLocked(kind, partial)
				result[kind] = v
				events = append(events, ResolveEvent{Kind: kind, Partial: partial, Resolved: v, Tier: tier})
			}
		}
		return result, events
	}

	for kind, partial := range partials {
		v, tier := c.resolveLocked(kind, partial)
		result[kind] = v
		events = append(events, ResolveEvent{Kind: kind, Partial: partial, Resolved: v, Tier: tier})
	}
	return result, events
}

// recordMatches reports whether any supplied non-empty partial matches the
// record's corresponding field or its prompt, case-insensitively.
func recordMatches(rec *Record, partials map[Kind]string) bool {
	promptLower := strings.ToLower(rec.Prompt)
	for kind, partial := range partials {
		if partial == "" {
			continue
		}
		lower := strings.ToLower(partial)
		if v := rec.Fields[kind]; v != "" && strings.Contains(strings.ToLower(v), lower) {
			return true
		}
		if strings.Contains(promptLower, lower) {
			return true
		}
	}
	return false
}
