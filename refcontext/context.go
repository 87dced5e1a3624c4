package refcontext

import (
	"errors"
	"sync"
)

// DefaultCapacity is the history bound used when Config.Capacity is zero.
const DefaultCapacity = 10

// Sentinel errors for context construction.
var (
	ErrNoKinds         = errors.New("refcontext: at least one kind is required")
	ErrDuplicateKind   = errors.New("refcontext: kind declared twice")
	ErrUndeclaredDedup = errors.New("refcontext: dedup key kind is not declared")
	ErrEmptyDedupKey   = errors.New("refcontext: dedup key is required")
)

// ResolveEvent describes one resolution outcome. Misresolution is not
// detectable by the cache itself, so hosts should log these events.
type ResolveEvent struct {
	Kind     Kind
	Partial  string
	Resolved string
	Tier     Tier
}

// Hook receives resolution events. It is called synchronously on the
// resolving goroutine and must not block.
type Hook func(ev ResolveEvent)

// Config configures a Context.
type Config struct {
	// Kinds is the fixed set of identifier kinds this service resolves.
	// Required.
	Kinds []Kind

	// DedupKey is the subset of Kinds whose equality determines whether
	// an incoming call is a repeat of an already-cached record. Required.
	DedupKey []Kind

	// Capacity bounds the history. Default: DefaultCapacity.
	Capacity int

	// Seed pre-populates the history for cold-start usability. Seeds are
	// applied through the normal write path; a seed's Sequence is kept
	// when non-zero.
	Seed []Record

	// OnResolve, if set, observes every resolution outcome.
	OnResolve Hook
}

// Context is a bounded history of past calls plus a last-seen index per
// kind. One instance is owned exclusively by its hosting service and is
// mutated only through Record.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: Record, Resolve and ResolveMany are total; they never fail.
// - Lifecycle: no teardown; state reverts to the seed set on restart.
type Context struct {
	mu       sync.RWMutex
	kinds    []Kind
	declared map[Kind]bool
	dedup    []Kind
	capacity int
	onHook   Hook

	// history is a fixed-capacity ring: head indexes the oldest record,
	// count is the number of live records.
	history []Record
	head    int
	count   int

	last map[Kind]string
}

// New creates a Context for the declared kind set.
func New(cfg Config) (*Context, error) {
	if len(cfg.Kinds) == 0 {
		return nil, ErrNoKinds
	}
	if len(cfg.DedupKey) == 0 {
		return nil, ErrEmptyDedupKey
	}

	declared := make(map[Kind]bool, len(cfg.Kinds))
	for _, k := range cfg.Kinds {
		if declared[k] {
			return nil, ErrDuplicateKind
		}
		declared[k] = true
	}
	for _, k := range cfg.DedupKey {
		if !declared[k] {
			return nil, ErrUndeclaredDedup
		}
	}

	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	c := &Context{
		kinds:    append([]Kind(nil), cfg.Kinds...),
		declared: declared,
		dedup:    append([]Kind(nil), cfg.DedupKey...),
		capacity: capacity,
		onHook:   cfg.OnResolve,
		history:  make([]Record, capacity),
		last:     make(map[Kind]string, len(cfg.Kinds)),
	}

	for _, seed := range cfg.Seed {
		c.record(seed.Method, seed.Fields, seed.Prompt, seed.Sequence)
	}

	return c, nil
}

// Kinds returns the declared kind set.
func (c *Context) Kinds() []Kind {
	return append([]Kind(nil), c.kinds...)
}

// Len returns the current history length.
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count
}

// Last returns the most recent non-empty value seen for kind, or "".
func (c *Context) Last(kind Kind) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last[kind]
}

// Snapshot returns a deep copy of the ordered history and last-seen index.
func (c *Context) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	history := make([]Record, 0, c.count)
	for i := 0; i < c.count; i++ {
		history = append(history, c.history[(c.head+i)%c.capacity].clone())
	}

	last := make(map[Kind]string, len(c.kinds))
	for _, k := range c.kinds {
		last[k] = c.last[k]
	}

	return Snapshot{History: history, Last: last}
}

// at returns the i-th record in insertion order. Callers hold c.mu.
func (c *Context) at(i int) *Record {
	return &c.history[(c.head+i)%c.capacity]
}

// normalize drops undeclared kinds and fills every declared kind,
// so stored records always carry the full field set.
func (c *Context) normalize(fields map[Kind]string) map[Kind]string {
	out := make(map[Kind]string, len(c.kinds))
	for _, k := range c.kinds {
		out[k] = fields[k]
	}
	return out
}

func (c *Context) emit(ev ResolveEvent) {
	if c.onHook != nil {
		c.onHook(ev)
	}
}
