package refcontext

// Record is one remembered resolved call. Every kind declared by the
// owning Context has an entry in Fields (possibly empty).
type Record struct {
	// Method is the name of the service method that produced the record.
	Method string `json:"method_name"`

	// Fields maps each declared kind to the value the call resolved for
	// it, or "" if the call did not involve that kind.
	Fields map[Kind]string `json:"fields"`

	// Sequence is assigned at insertion from the history length at that
	// moment, not from a monotonic counter. Once the history is at
	// capacity, new records repeatedly receive capacity+1; ordering
	// beyond FIFO position is positional, not by Sequence.
	Sequence uint64 `json:"sequence"`

	// Prompt is a short human-readable description of the operation,
	// used later for prompt-substring matching.
	Prompt string `json:"prompt"`
}

// clone returns a deep copy of the record.
func (r Record) clone() Record {
	fields := make(map[Kind]string, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Record{
		Method:   r.Method,
		Fields:   fields,
		Sequence: r.Sequence,
		Prompt:   r.Prompt,
	}
}

// Snapshot is a read-only copy of the cache state, exposed to the calling
// agent through each service's get_context tool.
type Snapshot struct {
	// History holds the remembered records in insertion order, oldest
	// first.
	History []Record `json:"recent_queries"`

	// Last maps each declared kind to the most recent non-empty value
	// ever supplied for it. Values persist even after their originating
	// history record is evicted.
	Last map[Kind]string `json:"last_seen"`
}
