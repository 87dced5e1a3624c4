package refcontext

import (
	"fmt"
	"testing"
)

func newTestContext(t *testing.T, cfg Config) *Context {
	t.Helper()
	if cfg.Kinds == nil {
		cfg.Kinds = []Kind{KindEntityID, KindCompanySymbol}
	}
	if cfg.DedupKey == nil {
		cfg.DedupKey = []Kind{KindEntityID, KindCompanySymbol}
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{DedupKey: []Kind{KindEntityID}}); err != ErrNoKinds {
		t.Errorf("missing kinds: got %v, want ErrNoKinds", err)
	}

	if _, err := New(Config{Kinds: []Kind{KindEntityID}}); err != ErrEmptyDedupKey {
		t.Errorf("missing dedup key: got %v, want ErrEmptyDedupKey", err)
	}

	_, err := New(Config{
		Kinds:    []Kind{KindEntityID, KindEntityID},
		DedupKey: []Kind{KindEntityID},
	})
	if err != ErrDuplicateKind {
		t.Errorf("duplicate kind: got %v, want ErrDuplicateKind", err)
	}

	_, err = New(Config{
		Kinds:    []Kind{KindEntityID},
		DedupKey: []Kind{KindSymbol},
	})
	if err != ErrUndeclaredDedup {
		t.Errorf("undeclared dedup kind: got %v, want ErrUndeclaredDedup", err)
	}
}

func TestNew_DefaultCapacity(t *testing.T) {
	c := newTestContext(t, Config{})
	if c.capacity != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", c.capacity, DefaultCapacity)
	}
}

func TestRecord_UpdatesLastSeen(t *testing.T) {
	c := newTestContext(t, Config{})

	c.Record("get_entity", map[Kind]string{
		KindEntityID:      "ENT-REL-001",
		KindCompanySymbol: "RELIANCE",
	}, "Get Mukesh Ambani entity")

	if got := c.Last(KindEntityID); got != "ENT-REL-001" {
		t.Errorf("Last(entity_id) = %q, want %q", got, "ENT-REL-001")
	}
	if got := c.Last(KindCompanySymbol); got != "RELIANCE" {
		t.Errorf("Last(company_symbol) = %q, want %q", got, "RELIANCE")
	}

	// Empty incoming values never clobber the index.
	c.Record("search_entities", map[Kind]string{KindEntityID: "ENT-X-002"}, "search")
	if got := c.Last(KindCompanySymbol); got != "RELIANCE" {
		t.Errorf("Last(company_symbol) after empty update = %q, want %q", got, "RELIANCE")
	}
}

func TestRecord_DedupIsIdempotent(t *testing.T) {
	c := newTestContext(t, Config{})

	fields := map[Kind]string{
		KindEntityID:      "ENT-001",
		KindCompanySymbol: "INFY",
	}
	c.Record("get_entity", fields, "first call")
	c.Record("get_entity", fields, "repeat call")

	if got := c.Len(); got != 1 {
		t.Errorf("Len after duplicate record = %d, want 1", got)
	}
	// Last-seen update is not gated by dedup.
	if got := c.Last(KindEntityID); got != "ENT-001" {
		t.Errorf("Last(entity_id) = %q, want %q", got, "ENT-001")
	}
}

func TestRecord_DedupComparesOnlyKeyKinds(t *testing.T) {
	c, err := New(Config{
		Kinds:    []Kind{KindEntityID, KindCompanySymbol, KindCaseID},
		DedupKey: []Kind{KindEntityID, KindCaseID},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	c.Record("m1", map[Kind]string{KindEntityID: "E1", KindCompanySymbol: "RELIANCE"}, "p1")
	// Same key kinds, different non-key kind: still a duplicate.
	c.Record("m2", map[Kind]string{KindEntityID: "E1", KindCompanySymbol: "INFY"}, "p2")
	if got := c.Len(); got != 1 {
		t.Errorf("Len = %d, want 1 (non-key field must not defeat dedup)", got)
	}

	// Different key kind value: a new record.
	c.Record("m3", map[Kind]string{KindEntityID: "E1", KindCaseID: "CASE-9"}, "p3")
	if got := c.Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
}

func TestRecord_AllEmptyKeyNeverDeduplicates(t *testing.T) {
	c := newTestContext(t, Config{})

	c.Record("m1", map[Kind]string{}, "first empty")
	c.Record("m2", map[Kind]string{}, "second empty")

	if got := c.Len(); got != 2 {
		t.Errorf("Len = %d, want 2 (all-empty dedup key must append)", got)
	}
}

func TestRecord_CapacityBoundAndFIFO(t *testing.T) {
	c := newTestContext(t, Config{})

	for i := 1; i <= 11; i++ {
		c.Record("get_entity", map[Kind]string{
			KindEntityID: fmt.Sprintf("ENT-%03d", i),
		}, fmt.Sprintf("call %d", i))
	}

	if got := c.Len(); got != 10 {
		t.Errorf("Len after 11 distinct records = %d, want 10", got)
	}

	snap := c.Snapshot()
	for _, rec := range snap.History {
		if rec.Fields[KindEntityID] == "ENT-001" {
			t.Error("oldest record should have been evicted from history")
		}
	}
	if snap.History[0].Fields[KindEntityID] != "ENT-002" {
		t.Errorf("oldest surviving record = %q, want ENT-002", snap.History[0].Fields[KindEntityID])
	}
	if snap.History[9].Fields[KindEntityID] != "ENT-011" {
		t.Errorf("newest record = %q, want ENT-011", snap.History[9].Fields[KindEntityID])
	}
}

func TestLastSeen_SurvivesEviction(t *testing.T) {
	c, err := New(Config{
		Kinds:    []Kind{KindEntityID, KindCompanySymbol},
		DedupKey: []Kind{KindEntityID},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Only the very first record carries a company symbol.
	c.Record("m", map[Kind]string{KindEntityID: "ENT-001", KindCompanySymbol: "RELIANCE"}, "seed")
	for i := 2; i <= 12; i++ {
		c.Record("m", map[Kind]string{KindEntityID: fmt.Sprintf("ENT-%03d", i)}, "churn")
	}

	snap := c.Snapshot()
	for _, rec := range snap.History {
		if rec.Fields[KindCompanySymbol] == "RELIANCE" {
			t.Fatal("originating record should be evicted")
		}
	}
	// The last-seen value is never rolled back.
	if got := c.Last(KindCompanySymbol); got != "RELIANCE" {
		t.Errorf("Last(company_symbol) = %q, want RELIANCE", got)
	}
}

func TestRecord_SequenceFromHistoryLength(t *testing.T) {
	c := newTestContext(t, Config{Capacity: 3})

	for i := 1; i <= 5; i++ {
		c.Record("m", map[Kind]string{KindEntityID: fmt.Sprintf("E%d", i)}, "p")
	}

	snap := c.Snapshot()
	// At capacity, every new record gets capacity+1.
	want := []uint64{4, 4, 4}
	for i, rec := range snap.History {
		if rec.Sequence != want[i] {
			t.Errorf("History[%d].Sequence = %d, want %d", i, rec.Sequence, want[i])
		}
	}
}

func TestSeed_AppliedThroughWritePath(t *testing.T) {
	c := newTestContext(t, Config{
		Seed: []Record{
			{
				Method:   "detect_wash_trading",
				Fields:   map[Kind]string{KindEntityID: "TRADER-001", KindCompanySymbol: "INFY"},
				Sequence: 1736709000,
				Prompt:   "Check if TRADER-001 did wash trades on INFY",
			},
		},
	})

	if got := c.Len(); got != 1 {
		t.Fatalf("Len = %d, want 1", got)
	}
	snap := c.Snapshot()
	if snap.History[0].Sequence != 1736709000 {
		t.Errorf("seed Sequence = %d, want 1736709000", snap.History[0].Sequence)
	}
	if got := c.Last(KindEntityID); got != "TRADER-001" {
		t.Errorf("Last(entity_id) = %q, want TRADER-001", got)
	}
}

func TestSnapshot_IsADeepCopy(t *testing.T) {
	c := newTestContext(t, Config{})
	c.Record("m", map[Kind]string{KindEntityID: "E1"}, "p")

	snap := c.Snapshot()
	snap.History[0].Fields[KindEntityID] = "TAMPERED"
	snap.Last[KindEntityID] = "TAMPERED"

	if got := c.Last(KindEntityID); got != "E1" {
		t.Errorf("Last(entity_id) = %q, want E1 (snapshot must not alias state)", got)
	}
	if got := c.Snapshot().History[0].Fields[KindEntityID]; got != "E1" {
		t.Errorf("History field = %q, want E1", got)
	}
}

func TestSnapshot_CoversEveryDeclaredKind(t *testing.T) {
	c := newTestContext(t, Config{})
	c.Record("m", map[Kind]string{KindEntityID: "E1"}, "p")

	snap := c.Snapshot()
	for _, kind := range c.Kinds() {
		if _, ok := snap.Last[kind]; !ok {
			t.Errorf("Last missing declared kind %q", kind)
		}
		if _, ok := snap.History[0].Fields[kind]; !ok {
			t.Errorf("record Fields missing declared kind %q", kind)
		}
	}
}

func TestRecord_DropsUndeclaredKinds(t *testing.T) {
	c := newTestContext(t, Config{})
	c.Record("m", map[Kind]string{KindEntityID: "E1", KindReportID: "RPT-1"}, "p")

	snap := c.Snapshot()
	if _, ok := snap.History[0].Fields[KindReportID]; ok {
		t.Error("undeclared kind should be dropped from the stored record")
	}
	if got := c.Last(KindReportID); got != "" {
		t.Errorf("Last(report_id) = %q, want \"\"", got)
	}
}
