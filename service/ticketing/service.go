package ticketing

import (
	"context"
	"errors"
	"fmt"

	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/refcontext"
)

// ErrTicketNotFound reports a lookup for a key the tracker does not
// know.
var ErrTicketNotFound = errors.New("ticketing: ticket not found")

// Workflow transition IDs for the standard board columns.
const (
	transitionToDo       = "11"
	transitionInProgress = "21"
	transitionDone       = "31"
)

// Ticket is one tracker issue.
type Ticket struct {
	TicketID  string `json:"ticket_id"`
	Key       string `json:"key"`
	Summary   string `json:"summary"`
	Status    string `json:"status"`
	IssueType string `json:"issue_type"`
	Priority  string `json:"priority"`
	Assignee  string `json:"assignee"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	URL       string `json:"url"`
}

// TicketResult reports what happened to one write. Success is false
// with a populated Error when the tracker rejects the request.
type TicketResult struct {
	Success   bool   `json:"success"`
	TicketKey string `json:"ticket_key"`
	TicketURL string `json:"ticket_url"`
	Error     string `json:"error,omitempty"`
}

// Service files and manages investigation tickets on the tracker.
type Service struct {
	tracker          *TrackerClient
	defaultIssueType string
	cache            *refcontext.Context
	logger           observe.Logger
}

// NewService builds the service and its resolution cache.
func NewService(cfg Config, logger observe.Logger, hook refcontext.Hook) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observe.NopLogger()
	}
	issueType := cfg.DefaultIssueType
	if issueType == "" {
		issueType = "Task"
	}

	seed := func(caseID, entityID, prompt string) refcontext.Record {
		return refcontext.Record{
			Method: "create_case_ticket",
			Fields: map[refcontext.Kind]string{
				refcontext.KindCaseID:   caseID,
				refcontext.KindEntityID: entityID,
			},
			Prompt: prompt,
		}
	}

	cache, err := refcontext.New(refcontext.Config{
		Kinds: []refcontext.Kind{
			refcontext.KindCaseID,
			refcontext.KindEntityID,
		},
		DedupKey: []refcontext.Kind{
			refcontext.KindCaseID,
			refcontext.KindEntityID,
		},
		Seed: []refcontext.Record{
			seed("CASE-2026-0001", "TRADER-001", "Open a ticket for CASE-2026-0001 against TRADER-001"),
			seed("CASE-2026-0002", "DIR-002", "Ticket the Infosys insider case for DIR-002"),
			seed("CASE-2026-0001", "TRADER-001", "Open a ticket for CASE-2026-0001 against TRADER-001"),
		},
		OnResolve: hook,
	})
	if err != nil {
		return nil, err
	}

	return &Service{
		tracker:          NewTrackerClient(cfg),
		defaultIssueType: issueType,
		cache:            cache,
		logger:           logger,
	}, nil
}

// Cache exposes the resolution cache for the get_context tool.
func (s *Service) Cache() *refcontext.Context { return s.cache }

// CreateTicket files a plain ticket. Defaults: priority Medium, issue
// type from config.
func (s *Service) CreateTicket(ctx context.Context, summary, description, priority, issueType string) TicketResult {
	if description == "" {
		description = "Created via Surveillance MCP"
	}
	if priority == "" {
		priority = "Medium"
	}
	if issueType == "" {
		issueType = s.defaultIssueType
	}

	ref, err := s.tracker.CreateIssue(ctx, summary, description, priority, issueType)
	if err != nil {
		s.logger.Warn(ctx, "ticket create failed", observe.Field{Key: "error", Value: err.Error()})
		return TicketResult{Error: err.Error()}
	}
	return TicketResult{
		Success:   true,
		TicketKey: ref.Key,
		TicketURL: s.tracker.BrowseURL(ref.Key),
	}
}

// CreateCaseTicket files the investigation ticket for a surveillance
// case. Case and entity accept partial identifiers.
func (s *Service) CreateCaseTicket(ctx context.Context, caseID, subjectEntity, caseSummary, priority string) TicketResult {
	resolved := s.cache.ResolveMany(map[refcontext.Kind]string{
		refcontext.KindCaseID:   caseID,
		refcontext.KindEntityID: subjectEntity,
	})
	cid := resolved[refcontext.KindCaseID]
	entity := resolved[refcontext.KindEntityID]

	summary := fmt.Sprintf("[CASE %s] Investigation: %s", cid, entity)
	description := fmt.Sprintf(
		"Surveillance Case Investigation\n\n- Case ID: %s\n- Subject Entity: %s\n- Summary: %s\n\nThis ticket was auto-created from the Market Surveillance System.",
		cid, entity, caseSummary)

	result := s.CreateTicket(ctx, summary, description, priority, "Task")

	s.cache.Record("create_case_ticket", map[refcontext.Kind]string{
		refcontext.KindCaseID:   cid,
		refcontext.KindEntityID: entity,
	}, fmt.Sprintf("Open a ticket for %s against %s", cid, entity))
	return result
}

// CloseTicket records the resolution as a comment, then transitions
// the ticket to Done.
func (s *Service) CloseTicket(ctx context.Context, ticketKey, resolution string) TicketResult {
	if resolution == "" {
		resolution = "Done"
	}
	if err := s.tracker.AddComment(ctx, ticketKey, "Resolution: "+resolution); err != nil {
		s.logger.Warn(ctx, "resolution comment failed",
			observe.Field{Key: "ticket_key", Value: ticketKey},
			observe.Field{Key: "error", Value: err.Error()})
	}
	if err := s.tracker.Transition(ctx, ticketKey, transitionDone); err != nil {
		return TicketResult{TicketKey: ticketKey, Error: err.Error()}
	}
	return TicketResult{
		Success:   true,
		TicketKey: ticketKey,
		TicketURL: s.tracker.BrowseURL(ticketKey),
	}
}

// GetTicket fetches one ticket by key.
func (s *Service) GetTicket(ctx context.Context, ticketKey string) (*Ticket, error) {
	detail, ok, err := s.tracker.GetIssue(ctx, ticketKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketKey)
	}

	assignee := detail.Fields.Assignee.DisplayName
	if assignee == "" {
		assignee = "Unassigned"
	}
	return &Ticket{
		TicketID:  detail.ID,
		Key:       detail.Key,
		Summary:   detail.Fields.Summary,
		Status:    detail.Fields.Status.Name,
		IssueType: detail.Fields.IssueType.Name,
		Priority:  detail.Fields.Priority.Name,
		Assignee:  assignee,
		CreatedAt: parseTrackerTime(detail.Fields.Created),
		UpdatedAt: parseTrackerTime(detail.Fields.Updated),
		URL:       s.tracker.BrowseURL(detail.Key),
	}, nil
}

// AddComment appends a comment to a ticket.
func (s *Service) AddComment(ctx context.Context, ticketKey, comment string) TicketResult {
	if err := s.tracker.AddComment(ctx, ticketKey, comment); err != nil {
		return TicketResult{TicketKey: ticketKey, Error: err.Error()}
	}
	return TicketResult{
		Success:   true,
		TicketKey: ticketKey,
		TicketURL: s.tracker.BrowseURL(ticketKey),
	}
}

// UpdateTicketStatus transitions a ticket toward the named status.
// Unknown statuses fall back to In Progress.
func (s *Service) UpdateTicketStatus(ctx context.Context, ticketKey, newStatus string) TicketResult {
	var transitionID string
	switch newStatus {
	case "To Do":
		transitionID = transitionToDo
	case "Done":
		transitionID = transitionDone
	default:
		transitionID = transitionInProgress
	}

	if err := s.tracker.Transition(ctx, ticketKey, transitionID); err != nil {
		return TicketResult{TicketKey: ticketKey, Error: err.Error()}
	}
	return TicketResult{
		Success:   true,
		TicketKey: ticketKey,
		TicketURL: s.tracker.BrowseURL(ticketKey),
	}
}
