package regreports

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/surveilops/surveilops/refcontext"
)

// storageStub records uploaded object paths.
type storageStub struct {
	mu    sync.Mutex
	paths []string
}

func (s *storageStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.paths = append(s.paths, r.URL.Path)
		s.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}
}

func (s *storageStub) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.paths) == 0 {
		return ""
	}
	return s.paths[len(s.paths)-1]
}

func newTestService(t *testing.T) (*Service, *storageStub) {
	t.Helper()
	stub := &storageStub{}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	storage := NewStorageClient(Config{StorageURL: srv.URL, StorageKey: "sk-test"})
	svc, err := NewService(storage, nil)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, stub
}

func TestGenerateSTR_EscalatesAtSeventy(t *testing.T) {
	svc, stub := newTestService(t)

	report, err := svc.GenerateSTR(context.Background(),
		"SUS-001", "RELIANCE", "CASE-001", "Suspect One", "insider trading before results", 75)
	if err != nil {
		t.Fatalf("GenerateSTR() error = %v", err)
	}
	if report.Recommendation != "ESCALATE TO SEBI" {
		t.Errorf("recommendation = %q, want ESCALATE TO SEBI at score 75", report.Recommendation)
	}
	if !strings.HasPrefix(report.ReportID, "STR-") {
		t.Errorf("report ID = %q, want STR prefix", report.ReportID)
	}
	if !strings.HasPrefix(stub.last(), "/storage/v1/object/reports/str/") {
		t.Errorf("upload path = %q, want the str directory", stub.last())
	}

	low, err := svc.GenerateSTR(context.Background(),
		"SUS-002", "INFY", "", "Suspect Two", "minor irregularity", 40)
	if err != nil {
		t.Fatalf("GenerateSTR() error = %v", err)
	}
	if low.Recommendation != "MONITOR" {
		t.Errorf("recommendation = %q, want MONITOR at score 40", low.Recommendation)
	}
}

func TestGenerateSTR_ResolvesAllPartials(t *testing.T) {
	svc, _ := newTestService(t)

	// Empty args fall back to the seeded last-seen identifiers.
	report, err := svc.GenerateSTR(context.Background(), "", "", "", "Suspect", "summary", 80)
	if err != nil {
		t.Fatalf("GenerateSTR() error = %v", err)
	}
	if report.EntityID != "SUS-001" || report.CompanySymbol != "RELIANCE" || report.CaseID != "CASE-001" {
		t.Errorf("resolved = %s/%s/%s, want seeded SUS-001/RELIANCE/CASE-001",
			report.EntityID, report.CompanySymbol, report.CaseID)
	}
}

func TestPendingSTRLifecycle(t *testing.T) {
	svc, _ := newTestService(t)

	report, err := svc.GenerateSTR(context.Background(), "SUS-003", "TCS", "CASE-009", "S", "sum", 72)
	if err != nil {
		t.Fatalf("GenerateSTR() error = %v", err)
	}
	if got := len(svc.GetPendingSTRs(0)); got != 1 {
		t.Fatalf("pending = %d, want 1", got)
	}

	sub, err := svc.SubmitSTR(report.ReportID)
	if err != nil {
		t.Fatalf("SubmitSTR() error = %v", err)
	}
	if sub.Status != "SUBMITTED" || sub.ReportID != report.ReportID {
		t.Errorf("submission = %+v", sub)
	}
	if got := len(svc.GetPendingSTRs(0)); got != 0 {
		t.Errorf("pending = %d after submit, want 0", got)
	}

	if _, err := svc.SubmitSTR(report.ReportID); !errors.Is(err, ErrNotPending) {
		t.Errorf("second submit error = %v, want ErrNotPending", err)
	}
}

func TestSubmitSTR_ResolvesPartialReportID(t *testing.T) {
	svc, _ := newTestService(t)

	report, err := svc.GenerateSTR(context.Background(), "SUS-003", "TCS", "CASE-009", "S", "sum", 72)
	if err != nil {
		t.Fatalf("GenerateSTR() error = %v", err)
	}

	// The uuid tail is enough to resolve the full report ID.
	tail := strings.TrimPrefix(report.ReportID, "STR-")
	if _, err := svc.SubmitSTR(tail); err != nil {
		t.Errorf("SubmitSTR(partial) error = %v", err)
	}
}

func TestGetReportURL_RoutesByPrefix(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		reportID string
		wantDir  string
	}{
		{"STR-2026-0001", "str"},
		{"SURV-2026-0001", "surveillance"},
		{"RISK-2026-0001", "risk"},
	}
	for _, tt := range tests {
		url, err := svc.GetReportURL(tt.reportID)
		if err != nil {
			t.Fatalf("GetReportURL(%s) error = %v", tt.reportID, err)
		}
		want := "/storage/v1/object/public/reports/" + tt.wantDir + "/" + tt.reportID + ".json"
		if !strings.HasSuffix(url, want) {
			t.Errorf("url = %q, want suffix %q", url, want)
		}
	}

	if _, err := svc.GetReportURL("XYZ-0001"); !errors.Is(err, ErrUnknownReportType) {
		t.Errorf("unknown prefix error = %v, want ErrUnknownReportType", err)
	}
}

func TestWatchlistsAndInvestigation_UploadPaths(t *testing.T) {
	svc, stub := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GenerateGSMReport(ctx, "2026-08-24", "3 symbols graded"); err != nil {
		t.Fatalf("GenerateGSMReport() error = %v", err)
	}
	if !strings.Contains(stub.last(), "/reports/gsm/GSM-") {
		t.Errorf("gsm path = %q", stub.last())
	}

	if _, err := svc.GenerateESMReport(ctx, "2026-08-24", "1 symbol enhanced"); err != nil {
		t.Fatalf("GenerateESMReport() error = %v", err)
	}
	if !strings.Contains(stub.last(), "/reports/esm/ESM-") {
		t.Errorf("esm path = %q", stub.last())
	}

	if _, err := svc.GenerateInvestigationReport(ctx, "CASE-001", "closed, no action"); err != nil {
		t.Fatalf("GenerateInvestigationReport() error = %v", err)
	}
	if !strings.Contains(stub.last(), "/reports/investigation/INV-") {
		t.Errorf("investigation path = %q", stub.last())
	}
}

func TestSeeds_LastSeenReportChain(t *testing.T) {
	svc, _ := newTestService(t)

	snap := svc.Cache().Snapshot()
	if got := snap.Last[refcontext.KindReportID]; got != "STR-2026-0001" {
		t.Errorf("last report = %q, want STR-2026-0001", got)
	}
	if got := snap.Last[refcontext.KindCaseID]; got != "CASE-001" {
		t.Errorf("last case = %q, want CASE-001", got)
	}
}
