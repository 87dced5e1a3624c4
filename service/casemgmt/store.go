package casemgmt

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store failure sentinels.
var (
	ErrCaseNotFound  = errors.New("casemgmt: case not found")
	ErrInvalidStatus = errors.New("casemgmt: invalid case status")
)

// Valid case statuses in lifecycle order.
var validStatuses = []string{"OPEN", "INVESTIGATING", "ESCALATED", "CLOSED"}

// priorityRank orders priorities for listing; unknown priorities sink
// to the bottom.
var priorityRank = map[string]int{"CRITICAL": 0, "HIGH": 1, "MEDIUM": 2}

// Case is one surveillance case.
type Case struct {
	CaseID        string  `json:"case_id"`
	CaseType      string  `json:"case_type"`
	Status        string  `json:"status"`
	Priority      string  `json:"priority"`
	SubjectEntity string  `json:"subject_entity"`
	Symbol        string  `json:"symbol"`
	UPSIID        string  `json:"upsi_id,omitempty"`
	RiskScore     float64 `json:"risk_score"`
	AssignedTo    string  `json:"assigned_to,omitempty"`
	Summary       string  `json:"summary"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// TimelineEntry is one event in a case's history.
type TimelineEntry struct {
	EntryID   string `json:"entry_id"`
	EntryType string `json:"entry_type"`
	Detail    string `json:"detail"`
	AddedBy   string `json:"added_by,omitempty"`
	Timestamp string `json:"timestamp"`
}

// CaseStats aggregates the store by status.
type CaseStats struct {
	Total         int `json:"total"`
	Open          int `json:"open"`
	Investigating int `json:"investigating"`
	Escalated     int `json:"escalated"`
	Closed        int `json:"closed"`
	Critical      int `json:"critical"`
}

// Store is the in-memory case store.
type Store struct {
	mu        sync.Mutex
	counter   int
	cases     map[string]*Case
	timelines map[string][]TimelineEntry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		cases:     make(map[string]*Case),
		timelines: make(map[string][]TimelineEntry),
	}
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// ValidStatus reports whether s is a known case status.
func ValidStatus(s string) bool {
	for _, v := range validStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Create opens a new case with the next sequential ID.
func (s *Store) Create(c Case) *Case {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	c.CaseID = fmt.Sprintf("CASE-%06d", s.counter)
	c.Status = "OPEN"
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	s.cases[c.CaseID] = &c

	s.appendLocked(c.CaseID, "CREATED", c.Summary, "")
	out := c
	return &out
}

// Get returns a case by ID.
func (s *Store) Get(caseID string) (*Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[caseID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}
	out := *c
	return &out, nil
}

// UpdateStatus transitions a case to a new status.
func (s *Store) UpdateStatus(caseID, status string) (*Case, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[caseID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}
	c.Status = status
	c.UpdatedAt = now()
	s.appendLocked(caseID, "STATUS", "status changed to "+status, "")
	out := *c
	return &out, nil
}

// Assign sets the investigating analyst.
func (s *Store) Assign(caseID, analyst string) (*Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[caseID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}
	c.AssignedTo = analyst
	c.UpdatedAt = now()
	s.appendLocked(caseID, "ASSIGNED", "assigned to "+analyst, analyst)
	out := *c
	return &out, nil
}

// AddEvidence appends an evidence entry to the case timeline.
func (s *Store) AddEvidence(caseID, detail, addedBy string) (*TimelineEntry, error) {
	return s.appendEntry(caseID, "EVIDENCE", "EV", detail, addedBy)
}

// AddNote appends an analyst note to the case timeline.
func (s *Store) AddNote(caseID, detail, addedBy string) (*TimelineEntry, error) {
	return s.appendEntry(caseID, "NOTE", "NOTE", detail, addedBy)
}

func (s *Store) appendEntry(caseID, entryType, idPrefix, detail, addedBy string) (*TimelineEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cases[caseID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}

	entry := TimelineEntry{
		EntryID:   fmt.Sprintf("%s-%s-%d", idPrefix, caseID, len(s.timelines[caseID])+1),
		EntryType: entryType,
		Detail:    detail,
		AddedBy:   addedBy,
		Timestamp: now(),
	}
	s.timelines[caseID] = append(s.timelines[caseID], entry)
	c.UpdatedAt = entry.Timestamp
	return &entry, nil
}

func (s *Store) appendLocked(caseID, entryType, detail, addedBy string) {
	s.timelines[caseID] = append(s.timelines[caseID], TimelineEntry{
		EntryID:   fmt.Sprintf("TL-%s-%d", caseID, len(s.timelines[caseID])+1),
		EntryType: entryType,
		Detail:    detail,
		AddedBy:   addedBy,
		Timestamp: now(),
	})
}

// Timeline returns a case's history in insertion order.
func (s *Store) Timeline(caseID string) ([]TimelineEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[caseID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}
	return append([]TimelineEntry(nil), s.timelines[caseID]...), nil
}

// ListOpen returns non-closed cases, optionally filtered by priority,
// ordered most urgent first.
func (s *Store) ListOpen(priority string) []Case {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Case
	for _, c := range s.cases {
		if c.Status == "CLOSED" {
			continue
		}
		if priority != "" && priority != "ALL" && c.Priority != priority {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, iok := priorityRank[out[i].Priority]
		rj, jok := priorityRank[out[j].Priority]
		if !iok {
			ri = len(priorityRank)
		}
		if !jok {
			rj = len(priorityRank)
		}
		if ri != rj {
			return ri < rj
		}
		return out[i].CaseID < out[j].CaseID
	})
	return out
}

// ByEntity returns every case whose subject is the entity.
func (s *Store) ByEntity(entityID string) []Case {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Case
	for _, c := range s.cases {
		if c.SubjectEntity == entityID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CaseID < out[j].CaseID })
	return out
}

// Stats aggregates the store.
func (s *Store) Stats() CaseStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := CaseStats{Total: len(s.cases)}
	for _, c := range s.cases {
		switch c.Status {
		case "OPEN":
			stats.Open++
		case "INVESTIGATING":
			stats.Investigating++
		case "ESCALATED":
			stats.Escalated++
		case "CLOSED":
			stats.Closed++
		}
		if c.Priority == "CRITICAL" {
			stats.Critical++
		}
	}
	return stats
}
