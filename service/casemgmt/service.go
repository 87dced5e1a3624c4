package casemgmt

import (
	"context"
	"fmt"

	"github.com/surveilops/surveilops/dashboard"
	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/refcontext"
)

// Service wraps the case store with reference resolution and
// dashboard mirroring.
type Service struct {
	store  *Store
	dash   *dashboard.Client
	cache  *refcontext.Context
	logger observe.Logger
}

// NewService builds the service and its resolution cache.
func NewService(dash *dashboard.Client, logger observe.Logger, hook refcontext.Hook) (*Service, error) {
	if dash == nil {
		dash = dashboard.NewClient("", "")
	}
	if logger == nil {
		logger = observe.NopLogger()
	}

	cache, err := refcontext.New(refcontext.Config{
		Kinds: []refcontext.Kind{
			refcontext.KindCaseID,
			refcontext.KindEntityID,
			refcontext.KindUPSIID,
		},
		DedupKey: []refcontext.Kind{
			refcontext.KindCaseID,
			refcontext.KindEntityID,
			refcontext.KindUPSIID,
		},
		Seed: []refcontext.Record{
			{
				Method: "create_case",
				Fields: map[refcontext.Kind]string{
					refcontext.KindCaseID:   "CASE-000001",
					refcontext.KindEntityID: "TRADER-001",
				},
				Prompt: "Open spoofing case for TRADER-001",
			},
			{
				Method: "create_case",
				Fields: map[refcontext.Kind]string{
					refcontext.KindCaseID:   "CASE-000002",
					refcontext.KindEntityID: "SUS-001",
					refcontext.KindUPSIID:   "UPSI-2026-001",
				},
				Prompt: "Open insider trading case for SUS-001 on UPSI-2026-001",
			},
		},
		OnResolve: hook,
	})
	if err != nil {
		return nil, err
	}
	return &Service{store: NewStore(), dash: dash, cache: cache, logger: logger}, nil
}

// Cache exposes the resolution cache for the get_context tool.
func (s *Service) Cache() *refcontext.Context { return s.cache }

func (s *Service) mirror(ctx context.Context, c *Case) {
	if err := s.dash.UpsertCase(ctx, dashboard.CaseRecord{
		CaseID:        c.CaseID,
		CaseType:      c.CaseType,
		Status:        c.Status,
		Priority:      c.Priority,
		SubjectEntity: c.SubjectEntity,
		Symbol:        c.Symbol,
		RiskScore:     c.RiskScore,
		Summary:       c.Summary,
	}); err != nil {
		s.logger.Warn(ctx, "dashboard mirror failed",
			observe.Field{Key: "case_id", Value: c.CaseID},
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
}

// CreateCase opens a case against a subject entity. The entity and
// UPSI references may be partial.
func (s *Service) CreateCase(ctx context.Context, caseType, priority, entityID, symbol, upsiID, summary string, riskScore float64) (*Case, error) {
	entity := s.cache.Resolve(refcontext.KindEntityID, entityID)

	// The UPSI link is optional; only a non-empty fragment resolves,
	// otherwise unrelated cases would inherit the last-seen record.
	upsi := ""
	if upsiID != "" {
		upsi = s.cache.Resolve(refcontext.KindUPSIID, upsiID)
	}

	c := s.store.Create(Case{
		CaseType:      caseType,
		Priority:      priority,
		SubjectEntity: entity,
		Symbol:        symbol,
		UPSIID:        upsi,
		RiskScore:     riskScore,
		Summary:       summary,
	})
	s.mirror(ctx, c)

	s.cache.Record("create_case", map[refcontext.Kind]string{
		refcontext.KindCaseID:   c.CaseID,
		refcontext.KindEntityID: c.SubjectEntity,
		refcontext.KindUPSIID:   c.UPSIID,
	}, fmt.Sprintf("Open %s case for %s", caseType, c.SubjectEntity))
	return c, nil
}

// GetCase returns a case by (possibly partial) ID.
func (s *Service) GetCase(ctx context.Context, caseID string) (*Case, error) {
	resolved := s.cache.Resolve(refcontext.KindCaseID, caseID)
	c, err := s.store.Get(resolved)
	if err != nil {
		return nil, err
	}

	s.cache.Record("get_case", map[refcontext.Kind]string{
		refcontext.KindCaseID:   c.CaseID,
		refcontext.KindEntityID: c.SubjectEntity,
		refcontext.KindUPSIID:   c.UPSIID,
	}, fmt.Sprintf("Get case %s", c.CaseID))
	return c, nil
}

// UpdateCaseStatus transitions a case and mirrors the change.
func (s *Service) UpdateCaseStatus(ctx context.Context, caseID, status string) (*Case, error) {
	resolved := s.cache.Resolve(refcontext.KindCaseID, caseID)
	c, err := s.store.UpdateStatus(resolved, status)
	if err != nil {
		return nil, err
	}
	s.mirror(ctx, c)

	s.cache.Record("update_case_status", map[refcontext.Kind]string{
		refcontext.KindCaseID:   c.CaseID,
		refcontext.KindEntityID: c.SubjectEntity,
	}, fmt.Sprintf("Move case %s to %s", c.CaseID, status))
	return c, nil
}

// AssignCase hands a case to an analyst.
func (s *Service) AssignCase(ctx context.Context, caseID, analyst string) (*Case, error) {
	resolved := s.cache.Resolve(refcontext.KindCaseID, caseID)
	c, err := s.store.Assign(resolved, analyst)
	if err != nil {
		return nil, err
	}

	s.cache.Record("assign_case", map[refcontext.Kind]string{
		refcontext.KindCaseID:   c.CaseID,
		refcontext.KindEntityID: c.SubjectEntity,
	}, fmt.Sprintf("Assign case %s to %s", c.CaseID, analyst))
	return c, nil
}

// AddEvidence attaches evidence to a case.
func (s *Service) AddEvidence(ctx context.Context, caseID, detail, addedBy string) (*TimelineEntry, error) {
	resolved := s.cache.Resolve(refcontext.KindCaseID, caseID)
	entry, err := s.store.AddEvidence(resolved, detail, addedBy)
	if err != nil {
		return nil, err
	}

	s.cache.Record("add_evidence", map[refcontext.Kind]string{
		refcontext.KindCaseID: resolved,
	}, fmt.Sprintf("Add evidence to %s", resolved))
	return entry, nil
}

// AddNote attaches an analyst note to a case.
func (s *Service) AddNote(ctx context.Context, caseID, detail, addedBy string) (*TimelineEntry, error) {
	resolved := s.cache.Resolve(refcontext.KindCaseID, caseID)
	entry, err := s.store.AddNote(resolved, detail, addedBy)
	if err != nil {
		return nil, err
	}

	s.cache.Record("add_note", map[refcontext.Kind]string{
		refcontext.KindCaseID: resolved,
	}, fmt.Sprintf("Add note to %s", resolved))
	return entry, nil
}

// GetCaseTimeline returns a case's full history.
func (s *Service) GetCaseTimeline(ctx context.Context, caseID string) ([]TimelineEntry, error) {
	resolved := s.cache.Resolve(refcontext.KindCaseID, caseID)
	return s.store.Timeline(resolved)
}

// ListOpenCases returns non-closed cases, most urgent first.
func (s *Service) ListOpenCases(ctx context.Context, priority string) []Case {
	return s.store.ListOpen(priority)
}

// GetEntityCases returns all cases against a (possibly partial)
// entity.
func (s *Service) GetEntityCases(ctx context.Context, entityID string) []Case {
	resolved := s.cache.Resolve(refcontext.KindEntityID, entityID)
	cases := s.store.ByEntity(resolved)

	s.cache.Record("get_entity_cases", map[refcontext.Kind]string{
		refcontext.KindEntityID: resolved,
	}, fmt.Sprintf("Get cases for %s", resolved))
	return cases
}

// GetCaseStats aggregates the store by status and priority.
func (s *Service) GetCaseStats(ctx context.Context) CaseStats {
	return s.store.Stats()
}
