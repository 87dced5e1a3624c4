package refcontext

// Record remembers a resolved call. It deduplicates against the configured
// key kinds, evicts the oldest record once the history is at capacity, and
// unconditionally refreshes the last-seen index for every non-empty
// incoming value. The index update is not gated by dedup, so a value
// survives even when its call was deduplicated away from the history.
//
// Record has no failure mode and no side effects beyond in-memory state.
func (c *Context) Record(method string, fields map[Kind]string, prompt string) {
	c.record(method, fields, prompt, 0)
}

func (c *Context) record(method string, fields map[Kind]string, prompt string, seq uint64) {
	norm := c.normalize(fields)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isDuplicate(norm) {
		if seq == 0 {
			// Length at the moment of insertion, not a monotonic
			// counter. At capacity this repeats capacity+1.
			seq = uint64(c.count) + 1
		}
		if c.count == c.capacity {
			c.head = (c.head + 1) % c.capacity
			c.count--
		}
		c.history[(c.head+c.count)%c.capacity] = Record{
			Method:   method,
			Fields:   norm,
			Sequence: seq,
			Prompt:   prompt,
		}
		c.count++
	}

	for k, v := range norm {
		if v != "" {
			c.last[k] = v
		}
	}
}

// isDuplicate reports whether an existing record matches the incoming
// fields on every dedup key kind. An all-empty key never deduplicates.
// Callers hold c.mu.
func (c *Context) isDuplicate(fields map[Kind]string) bool {
	anySet := false
	for _, k := range c.dedup {
		if fields[k] != "" {
			anySet = true
			break
		}
	}
	if !anySet {
		return false
	}

	for i := 0; i < c.count; i++ {
		rec := c.at(i)
		match := true
		for _, k := range c.dedup {
			if rec.Fields[k] != fields[k] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
