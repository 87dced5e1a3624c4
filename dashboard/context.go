package dashboard

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/surveilops/surveilops/refcontext"
)

// ContextSource exposes one service's resolution cache to the gateway.
type ContextSource interface {
	Name() string
	GetContext(ctx context.Context) (refcontext.Snapshot, error)
}

// ServiceContext is one service's slice of the aggregated view.
type ServiceContext struct {
	Service  string               `json:"service"`
	Snapshot *refcontext.Snapshot `json:"snapshot,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// ContextAggregator fans get_context out across all registered
// sources. A slow or failing service degrades to an error entry
// rather than failing the whole view.
type ContextAggregator struct {
	sources []ContextSource
	timeout time.Duration
	limit   int
}

// NewContextAggregator builds an aggregator over the given sources.
func NewContextAggregator(sources []ContextSource) *ContextAggregator {
	return &ContextAggregator{
		sources: sources,
		timeout: 10 * time.Second,
		limit:   4,
	}
}

// Aggregate collects every source's snapshot concurrently. Results
// keep source registration order.
func (a *ContextAggregator) Aggregate(ctx context.Context) []ServiceContext {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	out := make([]ServiceContext, len(a.sources))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.limit)
	for i, src := range a.sources {
		g.Go(func() error {
			snap, err := src.GetContext(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out[i] = ServiceContext{Service: src.Name(), Error: err.Error()}
				return nil
			}
			out[i] = ServiceContext{Service: src.Name(), Snapshot: &snap}
			return nil
		})
	}
	g.Wait()
	return out
}

// LocalSource adapts an in-process cache into a ContextSource, used by
// services colocated with the gateway and by tests.
type LocalSource struct {
	name  string
	cache *refcontext.Context
}

// NewLocalSource wraps a cache under a service name.
func NewLocalSource(name string, cache *refcontext.Context) *LocalSource {
	return &LocalSource{name: name, cache: cache}
}

func (l *LocalSource) Name() string { return l.name }

func (l *LocalSource) GetContext(ctx context.Context) (refcontext.Snapshot, error) {
	return l.cache.Snapshot(), nil
}
