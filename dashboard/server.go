package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/surveilops/surveilops/auth"
	"github.com/surveilops/surveilops/health"
	"github.com/surveilops/surveilops/observe"
)

// RoleIngest marks credentials allowed to write alerts, scan history,
// workflows, cases and risk registrations. Service API keys carry it;
// analyst dashboard credentials need not.
const RoleIngest = "ingest"

// Server is the dashboard HTTP gateway.
type Server struct {
	store      *Store
	contexts   *ContextAggregator
	aggregator *health.Aggregator
	auths      []auth.Authenticator
	logger     observe.Logger
}

// NewServer wires the gateway. Authenticators guard everything under
// /api; mutating ingest routes additionally require the ingest role,
// so a read-only dashboard credential cannot fabricate alerts or
// cases. Health endpoints stay open for probes.
func NewServer(store *Store, contexts *ContextAggregator, agg *health.Aggregator, auths []auth.Authenticator, logger observe.Logger) *Server {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &Server{
		store:      store,
		contexts:   contexts,
		aggregator: agg,
		auths:      auths,
		logger:     logger,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(s.aggregator))
	r.Get("/health", health.DetailedHandler(s.aggregator))

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(s.auths...))

		r.Get("/context", s.handleContext)
		r.Get("/stats", s.handleStats)

		r.Get("/alerts", s.handleLiveAlerts)
		r.Get("/alerts/entity/{entityID}", s.handleEntityAlerts)
		r.Get("/workflows", s.handleWorkflowHistory)
		r.Get("/cases", s.handleCasesByStatus)
		r.Get("/cases/{caseID}", s.handleCaseDetails)
		r.Get("/risk", s.handleHighRisk)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(RoleIngest))

			r.Post("/alerts", s.handlePushAlert)
			r.Post("/history", s.handlePushHistory)
			r.Post("/workflows", s.handleWorkflowStart)
			r.Put("/workflows/{workflowID}", s.handleWorkflowProgress)
			r.Post("/cases", s.handleUpsertCase)
			r.Post("/risk", s.handleRegisterRisk)
		})
	})

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(context.Background(), "encode response", observe.Field{Key: "error", Value: err.Error()})
	}
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"services": s.contexts.Aggregate(r.Context()),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handlePushAlert(w http.ResponseWriter, r *http.Request) {
	var a Alert
	if !s.decodeJSON(w, r, &a) {
		return
	}
	if a.Timestamp == 0 {
		a.Timestamp = time.Now().UnixMilli()
	}
	a = s.store.PushAlert(a)
	s.logger.Info(r.Context(), "alert pushed",
		observe.Field{Key: "alert_id", Value: a.AlertID},
		observe.Field{Key: "severity", Value: a.Severity},
		observe.Field{Key: "principal", Value: auth.PrincipalFromContext(r.Context())},
	)
	s.writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleLiveAlerts(w http.ResponseWriter, r *http.Request) {
	severity := r.URL.Query().Get("severity")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	s.writeJSON(w, http.StatusOK, s.store.LiveAlerts(severity, limit))
}

func (s *Server) handleEntityAlerts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.EntityAlerts(chi.URLParam(r, "entityID")))
}

func (s *Server) handlePushHistory(w http.ResponseWriter, r *http.Request) {
	var e ScanEntry
	if !s.decodeJSON(w, r, &e) {
		return
	}
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}
	s.writeJSON(w, http.StatusCreated, s.store.PushHistory(e))
}

func (s *Server) handleWorkflowStart(w http.ResponseWriter, r *http.Request) {
	var wf WorkflowExecution
	if !s.decodeJSON(w, r, &wf) {
		return
	}
	if wf.Timestamp == 0 {
		wf.Timestamp = time.Now().UnixMilli()
	}
	s.writeJSON(w, http.StatusCreated, s.store.LogWorkflowStart(wf))
}

func (s *Server) handleWorkflowProgress(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CurrentStep int    `json:"current_step"`
		Status      string `json:"status"`
	}
	if !s.decodeJSON(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "workflowID")
	if !s.store.UpdateWorkflowProgress(id, body.CurrentStep, body.Status) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "workflow not found: " + id})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"workflow_id": id})
}

func (s *Server) handleWorkflowHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	s.writeJSON(w, http.StatusOK, s.store.WorkflowHistory(limit))
}

func (s *Server) handleUpsertCase(w http.ResponseWriter, r *http.Request) {
	var c CaseRecord
	if !s.decodeJSON(w, r, &c) {
		return
	}
	if c.CaseID == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "case_id is required"})
		return
	}
	if c.Timestamp == 0 {
		c.Timestamp = time.Now().UnixMilli()
	}
	s.store.UpsertCase(c)
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCasesByStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.CasesByStatus(r.URL.Query().Get("status")))
}

func (s *Server) handleCaseDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "caseID")
	c, ok := s.store.CaseDetails(id)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "case not found: " + id})
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleRegisterRisk(w http.ResponseWriter, r *http.Request) {
	var re RiskEntity
	if !s.decodeJSON(w, r, &re) {
		return
	}
	if re.Timestamp == 0 {
		re.Timestamp = time.Now().UnixMilli()
	}
	s.store.RegisterRiskEntity(re)
	s.writeJSON(w, http.StatusOK, re)
}

func (s *Server) handleHighRisk(w http.ResponseWriter, r *http.Request) {
	min, _ := strconv.ParseFloat(r.URL.Query().Get("min_score"), 64)
	s.writeJSON(w, http.StatusOK, s.store.HighRiskEntities(min))
}
