package dashboard

import (
	"sync"

	"github.com/google/uuid"
)

// Alert is one pushed surveillance alert.
type Alert struct {
	AlertID     string  `json:"alert_id"`
	AlertType   string  `json:"alert_type"`
	Severity    string  `json:"severity"`
	Symbol      string  `json:"symbol"`
	EntityID    string  `json:"entity_id"`
	RiskScore   float64 `json:"risk_score"`
	Description string  `json:"description"`
	Timestamp   int64   `json:"timestamp"`
}

// ScanEntry is one completed detection scan, alert or clean.
type ScanEntry struct {
	EntryID   string `json:"entry_id"`
	Symbol    string `json:"symbol"`
	CheckType string `json:"check_type"`
	Status    string `json:"status"`
	Detail    string `json:"detail"`
	Timestamp int64  `json:"timestamp"`
}

// WorkflowExecution tracks a multi-step detection workflow.
type WorkflowExecution struct {
	WorkflowID   string `json:"workflow_id"`
	WorkflowType string `json:"workflow_type"`
	Status       string `json:"status"`
	CurrentStep  int    `json:"current_step"`
	TotalSteps   int    `json:"total_steps"`
	Detail       string `json:"detail"`
	Timestamp    int64  `json:"timestamp"`
}

// CaseRecord mirrors a case pushed from the case service.
type CaseRecord struct {
	CaseID        string  `json:"case_id"`
	CaseType      string  `json:"case_type"`
	Status        string  `json:"status"`
	Priority      string  `json:"priority"`
	SubjectEntity string  `json:"subject_entity"`
	Symbol        string  `json:"symbol"`
	RiskScore     float64 `json:"risk_score"`
	Summary       string  `json:"summary"`
	Timestamp     int64   `json:"timestamp"`
}

// RiskEntity is an entity flagged with an elevated risk score.
type RiskEntity struct {
	EntityID  string  `json:"entity_id"`
	RiskScore float64 `json:"risk_score"`
	Reason    string  `json:"reason"`
	Timestamp int64   `json:"timestamp"`
}

// Stats is the aggregate dashboard view.
type Stats struct {
	TotalAlerts     int `json:"total_alerts"`
	OpenCases       int `json:"open_cases"`
	HighRiskCount   int `json:"high_risk_count"`
	WorkflowCount   int `json:"workflow_count"`
	ComplianceScore int `json:"compliance_score"`
}

// Store holds the live dashboard state in memory.
type Store struct {
	mu        sync.RWMutex
	alerts    []Alert
	history   []ScanEntry
	workflows []WorkflowExecution
	cases     []CaseRecord
	risks     []RiskEntity
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// PushAlert appends an alert, assigning an ID when none is set.
func (s *Store) PushAlert(a Alert) Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.AlertID == "" {
		a.AlertID = "ALERT-" + uuid.NewString()[:8]
	}
	s.alerts = append(s.alerts, a)
	return a
}

// PushHistory appends a scan entry, assigning an ID when none is set.
func (s *Store) PushHistory(e ScanEntry) ScanEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.EntryID == "" {
		e.EntryID = "SCAN-" + uuid.NewString()[:8]
	}
	s.history = append(s.history, e)
	return e
}

// LogWorkflowStart records a new workflow in RUNNING state.
func (s *Store) LogWorkflowStart(w WorkflowExecution) WorkflowExecution {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.WorkflowID == "" {
		w.WorkflowID = "WF-" + uuid.NewString()[:8]
	}
	if w.Status == "" {
		w.Status = "RUNNING"
	}
	s.workflows = append(s.workflows, w)
	return w
}

// UpdateWorkflowProgress advances a workflow's step and status.
func (s *Store) UpdateWorkflowProgress(workflowID string, step int, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.workflows {
		if s.workflows[i].WorkflowID == workflowID {
			s.workflows[i].CurrentStep = step
			if status != "" {
				s.workflows[i].Status = status
			}
			return true
		}
	}
	return false
}

// UpsertCase replaces a case with the same ID or appends a new one.
func (s *Store) UpsertCase(c CaseRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cases {
		if s.cases[i].CaseID == c.CaseID {
			s.cases[i] = c
			return
		}
	}
	s.cases = append(s.cases, c)
}

// RegisterRiskEntity replaces an entity with the same ID or appends.
func (s *Store) RegisterRiskEntity(r RiskEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.risks {
		if s.risks[i].EntityID == r.EntityID {
			s.risks[i] = r
			return
		}
	}
	s.risks = append(s.risks, r)
}

// LiveAlerts returns the newest alerts first, optionally filtered by
// severity. A zero limit defaults to 20.
func (s *Store) LiveAlerts(severity string, limit int) []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}

	out := make([]Alert, 0, limit)
	for i := len(s.alerts) - 1; i >= 0 && len(out) < limit; i-- {
		a := s.alerts[i]
		if severity != "" && severity != "ALL" && a.Severity != severity {
			continue
		}
		out = append(out, a)
	}
	return out
}

// WorkflowHistory returns the newest workflows first.
func (s *Store) WorkflowHistory(limit int) []WorkflowExecution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}

	out := make([]WorkflowExecution, 0, limit)
	for i := len(s.workflows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.workflows[i])
	}
	return out
}

// CasesByStatus filters cases; "ALL" or empty returns everything.
func (s *Store) CasesByStatus(status string) []CaseRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CaseRecord, 0, len(s.cases))
	for _, c := range s.cases {
		if status != "" && status != "ALL" && c.Status != status {
			continue
		}
		out = append(out, c)
	}
	return out
}

// CaseDetails returns one case by ID.
func (s *Store) CaseDetails(caseID string) (CaseRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cases {
		if c.CaseID == caseID {
			return c, true
		}
	}
	return CaseRecord{}, false
}

// EntityAlerts returns all alerts mentioning an entity, newest first.
func (s *Store) EntityAlerts(entityID string) []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Alert
	for i := len(s.alerts) - 1; i >= 0; i-- {
		if s.alerts[i].EntityID == entityID {
			out = append(out, s.alerts[i])
		}
	}
	return out
}

// HighRiskEntities returns entities at or above a minimum score. A
// zero minimum defaults to 70.
func (s *Store) HighRiskEntities(minScore float64) []RiskEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if minScore <= 0 {
		minScore = 70
	}

	var out []RiskEntity
	for _, r := range s.risks {
		if r.RiskScore >= minScore {
			out = append(out, r)
		}
	}
	return out
}

// Snapshot computes the aggregate stats. Open cases count both OPEN
// and INVESTIGATING; the compliance score drops one point per alert,
// floored at zero.
func (s *Store) Snapshot() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalAlerts:   len(s.alerts),
		WorkflowCount: len(s.workflows),
	}
	for _, c := range s.cases {
		if c.Status == "OPEN" || c.Status == "INVESTIGATING" {
			stats.OpenCases++
		}
	}
	for _, r := range s.risks {
		if r.RiskScore > 70 {
			stats.HighRiskCount++
		}
	}
	stats.ComplianceScore = 100 - len(s.alerts)
	if stats.ComplianceScore < 0 {
		stats.ComplianceScore = 0
	}
	return stats
}
