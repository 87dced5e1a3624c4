package anomaly

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/surveilops/surveilops/dashboard"
	"github.com/surveilops/surveilops/refcontext"
)

// marketStub serves both the quote and RSI endpoints.
type marketStub struct {
	price   string
	volume  string
	change  string
	rsi     float64
}

func (m *marketStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/query":
			json.NewEncoder(w).Encode(map[string]map[string]string{
				"Global Quote": {
					"05. price":          m.price,
					"06. volume":         m.volume,
					"10. change percent": m.change,
				},
			})
		case "/rsi":
			json.NewEncoder(w).Encode(map[string]float64{"value": m.rsi})
		default:
			http.NotFound(w, r)
		}
	}
}

// dashStub records every ingest push by path.
type dashStub struct {
	mu    sync.Mutex
	paths []string
}

func (d *dashStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		d.paths = append(d.paths, r.URL.Path)
		d.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"workflow_id": "WF-TEST"})
	}
}

func (d *dashStub) count(path string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, p := range d.paths {
		if p == path {
			n++
		}
	}
	return n
}

func newTestService(t *testing.T, market *marketStub, dash *dashStub) *Service {
	t.Helper()

	ms := httptest.NewServer(market.handler())
	t.Cleanup(ms.Close)

	dashURL := ""
	if dash != nil {
		ds := httptest.NewServer(dash.handler())
		t.Cleanup(ds.Close)
		dashURL = ds.URL
	}

	client := NewMarketClient(Config{
		MarketAPIKey:  "test",
		MarketBaseURL: ms.URL,
		RSISecret:     "test",
		RSIBaseURL:    ms.URL,
	})
	svc, err := NewService(client, dashboard.NewClient(dashURL, ""), nil, nil)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestDetectSpoofing_LargeOrderOnThinVolume(t *testing.T) {
	dash := &dashStub{}
	svc := newTestService(t, &marketStub{price: "2500", volume: "50000"}, dash)

	result, err := svc.DetectSpoofing(context.Background(), "TRADER-001", "RELIANCE", "qty: 50000 at limit")
	if err != nil {
		t.Fatalf("DetectSpoofing() error = %v", err)
	}
	if !result.IsAnomaly {
		t.Fatal("IsAnomaly = false, want spoofing flagged")
	}
	if result.Severity != "HIGH" || result.RiskScore != 75 {
		t.Errorf("severity/score = %s/%f, want HIGH/75", result.Severity, result.RiskScore)
	}
	if result.CaseID == "" || result.WorkflowID == "" {
		t.Error("case and workflow IDs should be set for a confirmed anomaly")
	}

	// Alert, workflow, case, risk and the scan history entry all push.
	for path, want := range map[string]int{
		"/api/alerts":  1,
		"/api/cases":   1,
		"/api/risk":    1,
		"/api/history": 1,
	} {
		if got := dash.count(path); got != want {
			t.Errorf("pushes to %s = %d, want %d", path, got, want)
		}
	}
}

func TestDetectSpoofing_HealthyVolumeIsClean(t *testing.T) {
	dash := &dashStub{}
	svc := newTestService(t, &marketStub{price: "2500", volume: "5000000"}, dash)

	result, err := svc.DetectSpoofing(context.Background(), "TRADER-001", "RELIANCE", "qty: 50000")
	if err != nil {
		t.Fatalf("DetectSpoofing() error = %v", err)
	}
	if result.IsAnomaly {
		t.Error("IsAnomaly = true on healthy volume")
	}
	if got := dash.count("/api/alerts"); got != 0 {
		t.Errorf("alert pushes = %d, want 0 for clean scan", got)
	}
	if got := dash.count("/api/history"); got != 1 {
		t.Errorf("history pushes = %d, want 1 (clean scans still log)", got)
	}
}

func TestDetectWashTrading_SameEntityBothSides(t *testing.T) {
	svc := newTestService(t, &marketStub{price: "100", volume: "100000"}, nil)

	// Both partials resolve to the seeded TRADER-001.
	result, err := svc.DetectWashTrading(context.Background(), "TRADER-001", "DER-001")
	if err != nil {
		t.Fatalf("DetectWashTrading() error = %v", err)
	}
	if !result.IsAnomaly {
		t.Fatal("IsAnomaly = false, want wash trading flagged")
	}
	if result.RiskScore != 80 {
		t.Errorf("risk score = %f, want 80", result.RiskScore)
	}
}

func TestDetectPumpDump_ThresholdAtTenPercent(t *testing.T) {
	svc := newTestService(t, &marketStub{price: "500", volume: "100000", change: "12.5%"}, nil)

	result, err := svc.DetectPumpDump(context.Background(), "INFY")
	if err != nil {
		t.Fatalf("DetectPumpDump() error = %v", err)
	}
	if !result.IsAnomaly || result.Severity != "CRITICAL" {
		t.Errorf("result = %+v, want CRITICAL anomaly above 10%% change", result)
	}
	if result.SentimentScore != 85 {
		t.Errorf("sentiment = %f, want 85 when flagged", result.SentimentScore)
	}
}

func TestDetectFrontRunning_WindowUnderTwoSeconds(t *testing.T) {
	svc := newTestService(t, &marketStub{price: "100", volume: "100000"}, nil)

	result, err := svc.DetectFrontRunning(context.Background(), "BROKER-XYZ", "WIPRO", 1000, 2500)
	if err != nil {
		t.Fatalf("DetectFrontRunning() error = %v", err)
	}
	if !result.IsAnomaly || result.RiskScore != 90 {
		t.Errorf("result = %+v, want CRITICAL 90 inside the window", result)
	}

	clean, err := svc.DetectFrontRunning(context.Background(), "BROKER-XYZ", "WIPRO", 1000, 5000)
	if err != nil {
		t.Fatalf("DetectFrontRunning() error = %v", err)
	}
	if clean.IsAnomaly {
		t.Error("IsAnomaly = true outside the two second window")
	}
}

func TestCheckRSILevels_Bands(t *testing.T) {
	tests := []struct {
		rsi   float64
		level string
		score float64
	}{
		{82.1, "OVERBOUGHT", 70},
		{21.4, "OVERSOLD", 50},
		{55.0, "NEUTRAL", 0},
	}
	for _, tt := range tests {
		svc := newTestService(t, &marketStub{price: "100", volume: "100000", rsi: tt.rsi}, nil)
		level, err := svc.CheckRSILevels(context.Background(), "HDFCBANK")
		if err != nil {
			t.Fatalf("CheckRSILevels(%f) error = %v", tt.rsi, err)
		}
		if level.Level != tt.level || level.Score != tt.score {
			t.Errorf("rsi %f: level = %s/%f, want %s/%f", tt.rsi, level.Level, level.Score, tt.level, tt.score)
		}
	}
}

func TestAnalyzeVolumeAnomaly_MarketEntity(t *testing.T) {
	svc := newTestService(t, &marketStub{price: "100", volume: "2000000"}, nil)

	result, err := svc.AnalyzeVolumeAnomaly(context.Background(), "TCS")
	if err != nil {
		t.Fatalf("AnalyzeVolumeAnomaly() error = %v", err)
	}
	if !result.IsAnomaly || result.EntityID != "MARKET" {
		t.Errorf("result = %+v, want MARKET anomaly above threshold", result)
	}
	if result.Confidence != 80 {
		t.Errorf("confidence = %f, want 80 when flagged", result.Confidence)
	}
}

func TestScanEntityAnomalies_EmptyButRecorded(t *testing.T) {
	svc := newTestService(t, &marketStub{price: "100", volume: "100000"}, nil)

	results, err := svc.ScanEntityAnomalies(context.Background(), "TRADER-009")
	if err != nil {
		t.Fatalf("ScanEntityAnomalies() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want 0 from a bare scan", len(results))
	}
	if got := svc.Cache().Resolve(refcontext.KindEntityID, "009"); got != "TRADER-009" {
		t.Errorf("Resolve(009) = %q, want the scanned entity remembered", got)
	}
}

func TestSeeds_LastSeenPair(t *testing.T) {
	svc := newTestService(t, &marketStub{price: "100", volume: "100000"}, nil)

	snap := svc.Cache().Snapshot()
	if len(snap.History) != 10 {
		t.Errorf("history = %d, want 10 seeds", len(snap.History))
	}
	if got := snap.Last[refcontext.KindEntityID]; got != "TRADER-001" {
		t.Errorf("last entity = %q, want TRADER-001", got)
	}
	if got := snap.Last[refcontext.KindSymbol]; got != "RELIANCE" {
		t.Errorf("last symbol = %q, want RELIANCE", got)
	}
}
