package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"

	"github.com/surveilops/surveilops/refcontext"
)

func TestUpstreamChecker(t *testing.T) {
	cases := []struct {
		name string
		code int
		want Status
	}{
		{"ok", http.StatusOK, StatusHealthy},
		{"auth required still up", http.StatusUnauthorized, StatusHealthy},
		{"server error", http.StatusBadGateway, StatusUnhealthy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
			}))
			defer srv.Close()

			checker := NewUpstreamChecker("graph_store", resty.New(), srv.URL)
			result := checker.Check(context.Background())
			if result.Status != tc.want {
				t.Errorf("status = %v, want %v", result.Status, tc.want)
			}
			if result.Details["status_code"] != tc.code {
				t.Errorf("status_code detail = %v, want %d", result.Details["status_code"], tc.code)
			}
		})
	}
}

func TestUpstreamChecker_Unreachable(t *testing.T) {
	checker := NewUpstreamChecker("graph_store", resty.New(), "http://127.0.0.1:1/nothing")
	result := checker.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("status = %v, want unhealthy", result.Status)
	}
	if result.Error == nil {
		t.Error("expected a transport error")
	}
}

func TestCacheChecker(t *testing.T) {
	rc, err := refcontext.New(refcontext.Config{
		Kinds:    []refcontext.Kind{refcontext.KindEntityID, refcontext.KindSymbol},
		DedupKey: []refcontext.Kind{refcontext.KindEntityID},
	})
	if err != nil {
		t.Fatalf("refcontext.New failed: %v", err)
	}
	rc.Record("get_entity", map[refcontext.Kind]string{refcontext.KindEntityID: "ENT-001"}, "p")

	result := NewCacheChecker("ref_cache", rc).Check(context.Background())
	if result.Status != StatusHealthy {
		t.Fatalf("status = %v, want healthy", result.Status)
	}
	if result.Details["history_len"] != 1 {
		t.Errorf("history_len = %v, want 1", result.Details["history_len"])
	}
	if result.Details["tracked_kinds"] != 2 {
		t.Errorf("tracked_kinds = %v, want 2", result.Details["tracked_kinds"])
	}
	if result.Details["last_seen_set"] != 1 {
		t.Errorf("last_seen_set = %v, want 1", result.Details["last_seen_set"])
	}
}
