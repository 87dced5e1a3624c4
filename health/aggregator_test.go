package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func staticChecker(name string, result Result) Checker {
	return NewCheckerFunc(name, func(ctx context.Context) Result {
		return result
	})
}

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator()
	agg.Register("graph_store", staticChecker("graph_store", Healthy("up")))
	agg.Register("quote_feed", staticChecker("quote_feed", Degraded("slow")))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results["graph_store"].Status != StatusHealthy {
		t.Errorf("graph_store = %v, want healthy", results["graph_store"].Status)
	}
	if results["quote_feed"].Status != StatusDegraded {
		t.Errorf("quote_feed = %v, want degraded", results["quote_feed"].Status)
	}
}

func TestAggregator_OverallStatusPrecedence(t *testing.T) {
	agg := NewAggregator()

	results := map[string]Result{
		"a": Healthy("ok"),
		"b": Degraded("slow"),
	}
	if got := agg.OverallStatus(results); got != StatusDegraded {
		t.Errorf("OverallStatus = %v, want degraded", got)
	}

	results["c"] = Unhealthy("down", errors.New("boom"))
	if got := agg.OverallStatus(results); got != StatusUnhealthy {
		t.Errorf("OverallStatus = %v, want unhealthy", got)
	}

	if got := agg.OverallStatus(nil); got != StatusHealthy {
		t.Errorf("OverallStatus(nil) = %v, want healthy", got)
	}
}

func TestAggregator_SlowCheckTimesOut(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 10 * time.Millisecond})
	agg.Register("stuck", NewCheckerFunc("stuck", func(ctx context.Context) Result {
		<-ctx.Done()
		time.Sleep(time.Second)
		return Healthy("too late")
	}))

	results := agg.CheckAll(context.Background())
	if results["stuck"].Status != StatusUnhealthy {
		t.Errorf("stuck = %v, want unhealthy", results["stuck"].Status)
	}
	if !errors.Is(results["stuck"].Error, ErrCheckTimeout) {
		t.Errorf("error = %v, want ErrCheckTimeout", results["stuck"].Error)
	}
}

func TestAggregator_CheckUnknownName(t *testing.T) {
	agg := NewAggregator()
	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_CheckerNamesKeepOrder(t *testing.T) {
	agg := NewAggregator()
	agg.Register("b", staticChecker("b", Healthy("")))
	agg.Register("a", staticChecker("a", Healthy("")))
	agg.Register("b", staticChecker("b", Healthy("")))

	names := agg.CheckerNames()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Errorf("CheckerNames = %v, want [b a]", names)
	}
}
