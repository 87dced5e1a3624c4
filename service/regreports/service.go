package regreports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/surveilops/surveilops/refcontext"
)

// Sentinel errors for report lookups.
var (
	ErrUnknownReportType = errors.New("regreports: unknown report type prefix")
	ErrNotPending        = errors.New("regreports: no pending report with that id")
)

// Report is one generated regulatory document. Unused fields stay
// empty depending on the report type.
type Report struct {
	ReportID       string  `json:"report_id"`
	ReportType     string  `json:"report_type"`
	EntityID       string  `json:"entity_id,omitempty"`
	EntityName     string  `json:"entity_name,omitempty"`
	CompanySymbol  string  `json:"company_symbol,omitempty"`
	CaseID         string  `json:"case_id,omitempty"`
	Period         string  `json:"period,omitempty"`
	RiskScore      float64 `json:"risk_score,omitempty"`
	Summary        string  `json:"summary,omitempty"`
	Recommendation string  `json:"recommendation,omitempty"`
	GeneratedAt    string  `json:"generated_at"`
	URL            string  `json:"url"`
}

// Submission acknowledges a filed STR.
type Submission struct {
	ReportID       string `json:"report_id"`
	Status         string `json:"status"`
	Acknowledgment string `json:"acknowledgment"`
}

// Report type prefixes map to storage directories.
var reportDirs = map[string]string{
	"STR":  "str",
	"SURV": "surveillance",
	"COMP": "compliance",
	"RISK": "risk",
	"GSM":  "gsm",
	"ESM":  "esm",
	"INV":  "investigation",
}

// Service generates, stores and tracks regulatory reports.
type Service struct {
	storage *StorageClient
	cache   *refcontext.Context

	mu      sync.Mutex
	pending []Report
}

// NewService builds the service and its four kind resolution cache.
func NewService(storage *StorageClient, hook refcontext.Hook) (*Service, error) {
	cache, err := refcontext.New(refcontext.Config{
		Kinds: []refcontext.Kind{
			refcontext.KindEntityID,
			refcontext.KindCompanySymbol,
			refcontext.KindCaseID,
			refcontext.KindReportID,
		},
		DedupKey: []refcontext.Kind{
			refcontext.KindEntityID,
			refcontext.KindCaseID,
			refcontext.KindReportID,
		},
		Seed: []refcontext.Record{
			{
				Method: "generate_str",
				Fields: map[refcontext.Kind]string{
					refcontext.KindEntityID:      "SUS-001",
					refcontext.KindCompanySymbol: "RELIANCE",
					refcontext.KindCaseID:        "CASE-001",
					refcontext.KindReportID:      "STR-2026-0001",
				},
				Prompt: "Generate STR for SUS-001 insider trading",
			},
			{
				Method: "generate_surveillance_report",
				Fields: map[refcontext.Kind]string{
					refcontext.KindReportID: "SURV-2026-0001",
				},
				Prompt: "Generate weekly surveillance report",
			},
			{
				Method: "generate_entity_risk_report",
				Fields: map[refcontext.Kind]string{
					refcontext.KindEntityID:      "ENT-REL-001",
					refcontext.KindCompanySymbol: "RELIANCE",
					refcontext.KindReportID:      "RISK-2026-0001",
				},
				Prompt: "Risk report for Mukesh Ambani",
			},
			{
				Method: "generate_str",
				Fields: map[refcontext.Kind]string{
					refcontext.KindEntityID:      "SUS-001",
					refcontext.KindCompanySymbol: "RELIANCE",
					refcontext.KindCaseID:        "CASE-001",
					refcontext.KindReportID:      "STR-2026-0001",
				},
				Prompt: "Generate STR for SUS-001 insider trading",
			},
		},
		OnResolve: hook,
	})
	if err != nil {
		return nil, err
	}
	return &Service{storage: storage, cache: cache}, nil
}

// Cache exposes the resolution cache for the get_context tool.
func (s *Service) Cache() *refcontext.Context { return s.cache }

func newReportID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

func (s *Service) upload(ctx context.Context, report *Report) error {
	dir := reportDirs[reportPrefix(report.ReportID)]
	url, err := s.storage.Upload(ctx, fmt.Sprintf("%s/%s.json", dir, report.ReportID), report)
	if err != nil {
		return err
	}
	report.URL = url
	return nil
}

// GenerateSTR files a suspicious transaction report for an entity. A
// risk score of 70 or above recommends escalation to the regulator;
// anything lower stays on monitoring. The report joins the pending
// queue until submitted.
func (s *Service) GenerateSTR(ctx context.Context, entityID, companySymbol, caseID, entityName, anomalySummary string, riskScore float64) (*Report, error) {
	resolved := s.cache.ResolveMany(map[refcontext.Kind]string{
		refcontext.KindEntityID:      entityID,
		refcontext.KindCompanySymbol: companySymbol,
		refcontext.KindCaseID:        caseID,
	})

	recommendation := "MONITOR"
	if riskScore >= 70 {
		recommendation = "ESCALATE TO SEBI"
	}

	report := &Report{
		ReportID:       newReportID("STR"),
		ReportType:     "SUSPICIOUS_TRANSACTION",
		EntityID:       resolved[refcontext.KindEntityID],
		EntityName:     entityName,
		CompanySymbol:  resolved[refcontext.KindCompanySymbol],
		CaseID:         resolved[refcontext.KindCaseID],
		RiskScore:      riskScore,
		Summary:        anomalySummary,
		Recommendation: recommendation,
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.upload(ctx, report); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pending = append(s.pending, *report)
	s.mu.Unlock()

	s.cache.Record("generate_str", map[refcontext.Kind]string{
		refcontext.KindEntityID:      report.EntityID,
		refcontext.KindCompanySymbol: report.CompanySymbol,
		refcontext.KindCaseID:        report.CaseID,
		refcontext.KindReportID:      report.ReportID,
	}, fmt.Sprintf("Generate STR for %s", report.EntityID))
	return report, nil
}

// GenerateSurveillanceReport summarizes surveillance activity for a
// period.
func (s *Service) GenerateSurveillanceReport(ctx context.Context, period, summary string) (*Report, error) {
	report := &Report{
		ReportID:    newReportID("SURV"),
		ReportType:  "SURVEILLANCE",
		Period:      period,
		Summary:     summary,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.upload(ctx, report); err != nil {
		return nil, err
	}

	s.cache.Record("generate_surveillance_report", map[refcontext.Kind]string{
		refcontext.KindReportID: report.ReportID,
	}, fmt.Sprintf("Generate %s surveillance report", period))
	return report, nil
}

// GenerateComplianceScorecard files a per-entity compliance report for a
// period.
func (s *Service) GenerateComplianceScorecard(ctx context.Context, entityID, period, summary string) (*Report, error) {
	entity := s.cache.Resolve(refcontext.KindEntityID, entityID)

	report := &Report{
		ReportID:    newReportID("COMP"),
		ReportType:  "COMPLIANCE",
		EntityID:    entity,
		Period:      period,
		Summary:     summary,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.upload(ctx, report); err != nil {
		return nil, err
	}

	s.cache.Record("generate_compliance_scorecard", map[refcontext.Kind]string{
		refcontext.KindEntityID: entity,
		refcontext.KindReportID: report.ReportID,
	}, fmt.Sprintf("Compliance report for %s (%s)", entity, period))
	return report, nil
}

// GenerateEntityRiskReport files a risk assessment for an entity.
func (s *Service) GenerateEntityRiskReport(ctx context.Context, entityID, companySymbol string, riskScore float64, summary string) (*Report, error) {
	resolved := s.cache.ResolveMany(map[refcontext.Kind]string{
		refcontext.KindEntityID:      entityID,
		refcontext.KindCompanySymbol: companySymbol,
	})

	report := &Report{
		ReportID:      newReportID("RISK"),
		ReportType:    "ENTITY_RISK",
		EntityID:      resolved[refcontext.KindEntityID],
		CompanySymbol: resolved[refcontext.KindCompanySymbol],
		RiskScore:     riskScore,
		Summary:       summary,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.upload(ctx, report); err != nil {
		return nil, err
	}

	s.cache.Record("generate_entity_risk_report", map[refcontext.Kind]string{
		refcontext.KindEntityID:      report.EntityID,
		refcontext.KindCompanySymbol: report.CompanySymbol,
		refcontext.KindReportID:      report.ReportID,
	}, fmt.Sprintf("Risk report for %s", report.EntityID))
	return report, nil
}

// GenerateGSMReport files the graded surveillance measures watchlist
// for a date.
func (s *Service) GenerateGSMReport(ctx context.Context, date, summary string) (*Report, error) {
	return s.generateWatchlist(ctx, "GSM", "GSM_WATCHLIST", date, summary)
}

// GenerateESMReport files the enhanced surveillance measures
// watchlist for a date.
func (s *Service) GenerateESMReport(ctx context.Context, date, summary string) (*Report, error) {
	return s.generateWatchlist(ctx, "ESM", "ESM_WATCHLIST", date, summary)
}

func (s *Service) generateWatchlist(ctx context.Context, prefix, reportType, date, summary string) (*Report, error) {
	report := &Report{
		ReportID:    newReportID(prefix),
		ReportType:  reportType,
		Period:      date,
		Summary:     summary,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.upload(ctx, report); err != nil {
		return nil, err
	}

	s.cache.Record("generate_"+strings.ToLower(prefix)+"_report", map[refcontext.Kind]string{
		refcontext.KindReportID: report.ReportID,
	}, fmt.Sprintf("Generate %s watchlist for %s", prefix, date))
	return report, nil
}

// GenerateInvestigationReport files the investigation record for a
// case.
func (s *Service) GenerateInvestigationReport(ctx context.Context, caseID, summary string) (*Report, error) {
	resolved := s.cache.Resolve(refcontext.KindCaseID, caseID)

	report := &Report{
		ReportID:    newReportID("INV"),
		ReportType:  "INVESTIGATION",
		CaseID:      resolved,
		Summary:     summary,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.upload(ctx, report); err != nil {
		return nil, err
	}

	s.cache.Record("generate_investigation_report", map[refcontext.Kind]string{
		refcontext.KindCaseID:   resolved,
		refcontext.KindReportID: report.ReportID,
	}, fmt.Sprintf("Investigation report for %s", resolved))
	return report, nil
}

// GetReportURL derives the public URL for a stored report from its ID
// prefix.
func (s *Service) GetReportURL(reportID string) (string, error) {
	resolved := s.cache.Resolve(refcontext.KindReportID, reportID)
	dir, ok := reportDirs[reportPrefix(resolved)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownReportType, resolved)
	}
	return s.storage.PublicURL(fmt.Sprintf("%s/%s.json", dir, resolved)), nil
}

// GetPendingSTRs returns STRs generated but not yet submitted, oldest
// first. A non-positive limit returns the whole queue.
func (s *Service) GetPendingSTRs(limit int) []Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]Report(nil), s.pending...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SubmitSTR files a pending STR with the regulator and removes it
// from the queue. The report ID may be partial.
func (s *Service) SubmitSTR(reportID string) (*Submission, error) {
	resolved := s.cache.Resolve(refcontext.KindReportID, reportID)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rep := range s.pending {
		if rep.ReportID == resolved {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			s.cache.Record("submit_str", map[refcontext.Kind]string{
				refcontext.KindEntityID: rep.EntityID,
				refcontext.KindCaseID:   rep.CaseID,
				refcontext.KindReportID: rep.ReportID,
			}, fmt.Sprintf("Submit %s", rep.ReportID))
			return &Submission{
				ReportID:       rep.ReportID,
				Status:         "SUBMITTED",
				Acknowledgment: "ACK-" + uuid.NewString()[:8],
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotPending, resolved)
}

func reportPrefix(reportID string) string {
	prefix, _, _ := strings.Cut(reportID, "-")
	return prefix
}
