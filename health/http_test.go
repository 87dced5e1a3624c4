package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", rec.Body.String())
	}
}

func TestReadinessHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("graph_store", staticChecker("graph_store", Healthy("up")))

	rec := httptest.NewRecorder()
	ReadinessHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthy: status = %d, want 200", rec.Code)
	}

	agg.Register("quote_feed", staticChecker("quote_feed", Unhealthy("down", errors.New("503"))))

	rec = httptest.NewRecorder()
	ReadinessHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy: status = %d, want 503", rec.Code)
	}
	if rec.Body.String() != "UNHEALTHY" {
		t.Errorf("body = %q, want UNHEALTHY", rec.Body.String())
	}
}

func TestDetailedHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("graph_store", staticChecker("graph_store", Healthy("up")))
	agg.Register("quote_feed", staticChecker("quote_feed", Degraded("slow")))

	rec := httptest.NewRecorder()
	DetailedHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for degraded", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("status = %q, want degraded", resp.Status)
	}
	if len(resp.Checks) != 2 {
		t.Errorf("got %d checks, want 2", len(resp.Checks))
	}
	if resp.Checks["quote_feed"].Message != "slow" {
		t.Errorf("quote_feed message = %q, want slow", resp.Checks["quote_feed"].Message)
	}
}

func TestDetailedHandler_Unhealthy503(t *testing.T) {
	agg := NewAggregator()
	agg.Register("graph_store", staticChecker("graph_store", Unhealthy("down", context.DeadlineExceeded)))

	rec := httptest.NewRecorder()
	DetailedHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
