package dashboard

import "testing"

func TestStore_LiveAlertsNewestFirstWithSeverityFilter(t *testing.T) {
	s := NewStore()
	s.PushAlert(Alert{AlertType: "SPOOFING", Severity: "HIGH", Symbol: "RELIANCE"})
	s.PushAlert(Alert{AlertType: "PUMP_DUMP", Severity: "CRITICAL", Symbol: "INFY"})
	s.PushAlert(Alert{AlertType: "WASH_TRADING", Severity: "HIGH", Symbol: "TCS"})

	all := s.LiveAlerts("ALL", 0)
	if len(all) != 3 {
		t.Fatalf("alerts = %d, want 3", len(all))
	}
	if all[0].Symbol != "TCS" {
		t.Errorf("first alert = %s, want newest (TCS)", all[0].Symbol)
	}

	high := s.LiveAlerts("HIGH", 0)
	if len(high) != 2 {
		t.Fatalf("HIGH alerts = %d, want 2", len(high))
	}
}

func TestStore_UpsertCaseReplacesByID(t *testing.T) {
	s := NewStore()
	s.UpsertCase(CaseRecord{CaseID: "CASE-000001", Status: "OPEN"})
	s.UpsertCase(CaseRecord{CaseID: "CASE-000001", Status: "ESCALATED"})
	s.UpsertCase(CaseRecord{CaseID: "CASE-000002", Status: "OPEN"})

	cases := s.CasesByStatus("ALL")
	if len(cases) != 2 {
		t.Fatalf("cases = %d, want 2", len(cases))
	}
	c, ok := s.CaseDetails("CASE-000001")
	if !ok || c.Status != "ESCALATED" {
		t.Errorf("case = %+v, want ESCALATED", c)
	}
}

func TestStore_RegisterRiskEntityReplacesByID(t *testing.T) {
	s := NewStore()
	s.RegisterRiskEntity(RiskEntity{EntityID: "TRADER-001", RiskScore: 75})
	s.RegisterRiskEntity(RiskEntity{EntityID: "TRADER-001", RiskScore: 90})

	high := s.HighRiskEntities(0)
	if len(high) != 1 {
		t.Fatalf("high risk entities = %d, want 1", len(high))
	}
	if high[0].RiskScore != 90 {
		t.Errorf("risk score = %f, want 90 after replacement", high[0].RiskScore)
	}
}

func TestStore_WorkflowProgress(t *testing.T) {
	s := NewStore()
	wf := s.LogWorkflowStart(WorkflowExecution{WorkflowType: "SPOOFING", TotalSteps: 3})
	if wf.Status != "RUNNING" {
		t.Errorf("status = %q, want RUNNING", wf.Status)
	}

	if !s.UpdateWorkflowProgress(wf.WorkflowID, 3, "COMPLETED") {
		t.Fatal("UpdateWorkflowProgress() = false for known workflow")
	}
	if s.UpdateWorkflowProgress("WF-missing", 1, "") {
		t.Error("UpdateWorkflowProgress() = true for unknown workflow")
	}

	hist := s.WorkflowHistory(0)
	if hist[0].Status != "COMPLETED" || hist[0].CurrentStep != 3 {
		t.Errorf("workflow = %+v, want COMPLETED step 3", hist[0])
	}
}

func TestStore_StatsComplianceFloor(t *testing.T) {
	s := NewStore()
	for i := 0; i < 120; i++ {
		s.PushAlert(Alert{Severity: "LOW"})
	}
	s.UpsertCase(CaseRecord{CaseID: "CASE-000001", Status: "OPEN"})
	s.UpsertCase(CaseRecord{CaseID: "CASE-000002", Status: "INVESTIGATING"})
	s.UpsertCase(CaseRecord{CaseID: "CASE-000003", Status: "CLOSED"})
	s.RegisterRiskEntity(RiskEntity{EntityID: "TRADER-001", RiskScore: 85})
	s.RegisterRiskEntity(RiskEntity{EntityID: "TRADER-002", RiskScore: 40})

	stats := s.Snapshot()
	if stats.ComplianceScore != 0 {
		t.Errorf("compliance = %d, want floored at 0", stats.ComplianceScore)
	}
	if stats.OpenCases != 2 {
		t.Errorf("open cases = %d, want 2 (OPEN plus INVESTIGATING)", stats.OpenCases)
	}
	if stats.HighRiskCount != 1 {
		t.Errorf("high risk = %d, want 1", stats.HighRiskCount)
	}
}

func TestStore_EntityAlerts(t *testing.T) {
	s := NewStore()
	s.PushAlert(Alert{EntityID: "TRADER-001", AlertType: "SPOOFING"})
	s.PushAlert(Alert{EntityID: "TRADER-002", AlertType: "WASH_TRADING"})
	s.PushAlert(Alert{EntityID: "TRADER-001", AlertType: "PUMP_DUMP"})

	alerts := s.EntityAlerts("TRADER-001")
	if len(alerts) != 2 {
		t.Fatalf("alerts = %d, want 2", len(alerts))
	}
	if alerts[0].AlertType != "PUMP_DUMP" {
		t.Errorf("first alert = %s, want newest", alerts[0].AlertType)
	}
}
