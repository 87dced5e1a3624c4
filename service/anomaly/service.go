package anomaly

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/surveilops/surveilops/dashboard"
	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/refcontext"
)

// Rule thresholds. Scores express how certain the rule is on its own;
// anything at or above riskRegistrationFloor also lands in the risk
// register.
const (
	spoofingScore     = 75
	washTradingScore  = 80
	pumpDumpScore     = 85
	frontRunningScore = 90
	volumeScore       = 60

	pumpChangeThreshold   = 10.0
	thinVolumeThreshold   = 100000
	marketVolumeThreshold = 1000000
	frontRunWindowMS      = 2000

	rsiOverbought = 70.0
	rsiOversold   = 30.0

	riskRegistrationFloor = 70
)

// AnomalyResult is the outcome of one detection rule.
type AnomalyResult struct {
	AnomalyType    string  `json:"anomaly_type"`
	IsAnomaly      bool    `json:"is_anomaly"`
	Severity       string  `json:"severity"`
	RiskScore      float64 `json:"risk_score"`
	Confidence     float64 `json:"confidence"`
	EntityID       string  `json:"entity_id"`
	Symbol         string  `json:"symbol"`
	Description    string  `json:"description"`
	SentimentScore float64 `json:"sentiment_score,omitempty"`
	CaseID         string  `json:"case_id,omitempty"`
	WorkflowID     string  `json:"workflow_id,omitempty"`
}

// RSILevel is the banded RSI reading for a symbol.
type RSILevel struct {
	Symbol   string  `json:"symbol"`
	RSI      float64 `json:"rsi"`
	Level    string  `json:"level"`
	Severity string  `json:"severity"`
	Score    float64 `json:"score"`
	Message  string  `json:"message"`
}

// Service runs the detection rules. Confirmed anomalies push to the
// dashboard best effort; a push failure is logged and never fails the
// detection itself.
type Service struct {
	market *MarketClient
	dash   *dashboard.Client
	cache  *refcontext.Context
	logger observe.Logger
}

// NewService builds the service and its resolution cache, seeded with
// a recent surveillance session.
func NewService(market *MarketClient, dash *dashboard.Client, logger observe.Logger, hook refcontext.Hook) (*Service, error) {
	if dash == nil {
		dash = dashboard.NewClient("", "")
	}
	if logger == nil {
		logger = observe.NopLogger()
	}

	seed := func(method, entity, symbol, prompt string) refcontext.Record {
		return refcontext.Record{
			Method: method,
			Fields: map[refcontext.Kind]string{
				refcontext.KindEntityID: entity,
				refcontext.KindSymbol:   symbol,
			},
			Prompt: prompt,
		}
	}

	cache, err := refcontext.New(refcontext.Config{
		Kinds: []refcontext.Kind{
			refcontext.KindEntityID,
			refcontext.KindSymbol,
		},
		DedupKey: []refcontext.Kind{
			refcontext.KindEntityID,
			refcontext.KindSymbol,
		},
		Seed: []refcontext.Record{
			seed("detect_spoofing", "TRADER-001", "RELIANCE", "Check spoofing for TRADER-001 on RELIANCE"),
			seed("detect_pump_dump", "", "INFY", "Any pump and dump in Infosys?"),
			seed("detect_wash_trading", "TRADER-001", "RELIANCE", "Wash trading check for TRADER-001"),
			seed("analyze_volume_anomaly", "", "TCS", "Analyze TCS volume anomaly"),
			seed("check_rsi_levels", "", "HDFCBANK", "RSI levels for HDFC Bank"),
			seed("detect_front_running", "BROKER-XYZ", "WIPRO", "Front running check for BROKER-XYZ on WIPRO"),
			seed("scan_entity_anomalies", "TRADER-002", "", "Scan TRADER-002 for anomalies"),
			seed("detect_spoofing", "TRADER-003", "SBIN", "Spoofing check for TRADER-003 on SBI"),
			seed("detect_pump_dump", "", "BHARTIARTL", "Pump and dump check on Airtel"),
			seed("detect_wash_trading", "TRADER-001", "INFY", "Wash trading for TRADER-001 on INFY"),
			seed("detect_spoofing", "TRADER-001", "RELIANCE", "Check spoofing for TRADER-001 on RELIANCE"),
		},
		OnResolve: hook,
	})
	if err != nil {
		return nil, err
	}
	return &Service{market: market, dash: dash, cache: cache, logger: logger}, nil
}

// Cache exposes the resolution cache for the get_context tool.
func (s *Service) Cache() *refcontext.Context { return s.cache }

// GetQuote returns the live quote for a (possibly partial) symbol.
func (s *Service) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	resolved := s.cache.Resolve(refcontext.KindSymbol, symbol)
	quote, err := s.market.GetQuote(ctx, resolved)
	if err != nil {
		return Quote{}, err
	}
	s.cache.Record("get_quote", map[refcontext.Kind]string{
		refcontext.KindSymbol: resolved,
	}, fmt.Sprintf("Get %s quote", resolved))
	return quote, nil
}

// GetRSI returns the one hour RSI for a (possibly partial) symbol.
func (s *Service) GetRSI(ctx context.Context, symbol string) (RSILevel, error) {
	resolved := s.cache.Resolve(refcontext.KindSymbol, symbol)
	value, err := s.market.GetRSI(ctx, resolved)
	if err != nil {
		return RSILevel{}, err
	}
	s.cache.Record("get_rsi", map[refcontext.Kind]string{
		refcontext.KindSymbol: resolved,
	}, fmt.Sprintf("Get %s RSI", resolved))
	return bandRSI(resolved, value), nil
}

// DetectSpoofing flags a large order on thin volume. The order is
// large when its details mention a 50000 share quantity or say so
// outright.
func (s *Service) DetectSpoofing(ctx context.Context, entityID, symbol, orderDetails string) (*AnomalyResult, error) {
	resolved := s.cache.ResolveMany(map[refcontext.Kind]string{
		refcontext.KindEntityID: entityID,
		refcontext.KindSymbol:   symbol,
	})
	entity := resolved[refcontext.KindEntityID]
	sym := resolved[refcontext.KindSymbol]

	quote, err := s.market.GetQuote(ctx, sym)
	if err != nil {
		return nil, err
	}

	large := strings.Contains(orderDetails, "qty: 50000") ||
		strings.Contains(strings.ToLower(orderDetails), "large")

	result := &AnomalyResult{
		AnomalyType: "SPOOFING",
		EntityID:    entity,
		Symbol:      sym,
		Description: fmt.Sprintf("No spoofing pattern for %s on %s", entity, sym),
	}
	if large && quote.Volume < thinVolumeThreshold {
		result.IsAnomaly = true
		result.Severity = "HIGH"
		result.RiskScore = spoofingScore
		result.Confidence = spoofingScore
		result.Description = fmt.Sprintf(
			"Large order from %s on %s against thin volume %d", entity, sym, quote.Volume)
		result.WorkflowID = "WF-SPOOF-" + shortID()
		result.CaseID = s.raiseAnomaly(ctx, result, 3)
	}
	s.pushScan(ctx, sym, "SPOOFING", result.IsAnomaly, result.Description)

	s.cache.Record("detect_spoofing", map[refcontext.Kind]string{
		refcontext.KindEntityID: entity,
		refcontext.KindSymbol:   sym,
	}, fmt.Sprintf("Check spoofing for %s on %s", entity, sym))
	return result, nil
}

// DetectWashTrading flags trades where both sides resolve to the same
// entity.
func (s *Service) DetectWashTrading(ctx context.Context, entityID, counterpartyID string) (*AnomalyResult, error) {
	entity := s.cache.Resolve(refcontext.KindEntityID, entityID)
	counterparty := s.cache.Resolve(refcontext.KindEntityID, counterpartyID)

	result := &AnomalyResult{
		AnomalyType: "WASH_TRADING",
		EntityID:    entity,
		Description: fmt.Sprintf("%s and %s are distinct entities", entity, counterparty),
	}
	if entity != "" && entity == counterparty {
		result.IsAnomaly = true
		result.Severity = "HIGH"
		result.RiskScore = washTradingScore
		result.Confidence = washTradingScore
		result.Description = fmt.Sprintf("Both trade sides resolve to %s", entity)
		result.CaseID = s.raiseAnomaly(ctx, result, 0)
	}
	s.pushScan(ctx, "", "WASH_TRADING", result.IsAnomaly, result.Description)

	s.cache.Record("detect_wash_trading", map[refcontext.Kind]string{
		refcontext.KindEntityID: entity,
	}, fmt.Sprintf("Wash trading check for %s", entity))
	return result, nil
}

// DetectPumpDump flags a symbol whose day change exceeds ten percent.
func (s *Service) DetectPumpDump(ctx context.Context, symbol string) (*AnomalyResult, error) {
	sym := s.cache.Resolve(refcontext.KindSymbol, symbol)
	quote, err := s.market.GetQuote(ctx, sym)
	if err != nil {
		return nil, err
	}

	result := &AnomalyResult{
		AnomalyType:    "PUMP_DUMP",
		Symbol:         sym,
		SentimentScore: 40,
		Description: fmt.Sprintf("%s day change %.2f%% within normal range",
			sym, quote.ChangePercent),
	}
	if quote.ChangePercent > pumpChangeThreshold {
		result.IsAnomaly = true
		result.Severity = "CRITICAL"
		result.RiskScore = pumpDumpScore
		result.Confidence = pumpDumpScore
		result.SentimentScore = 85
		result.Description = fmt.Sprintf("%s moved %.2f%% in a day with elevated chatter",
			sym, quote.ChangePercent)
		result.CaseID = s.raiseAnomaly(ctx, result, 0)
	}
	s.pushScan(ctx, sym, "PUMP_DUMP", result.IsAnomaly, result.Description)

	s.cache.Record("detect_pump_dump", map[refcontext.Kind]string{
		refcontext.KindSymbol: sym,
	}, fmt.Sprintf("Pump and dump check on %s", sym))
	return result, nil
}

// DetectFrontRunning flags a proprietary order placed just ahead of a
// client order in the same symbol.
func (s *Service) DetectFrontRunning(ctx context.Context, entityID, symbol string, propTS, clientTS int64) (*AnomalyResult, error) {
	resolved := s.cache.ResolveMany(map[refcontext.Kind]string{
		refcontext.KindEntityID: entityID,
		refcontext.KindSymbol:   symbol,
	})
	entity := resolved[refcontext.KindEntityID]
	sym := resolved[refcontext.KindSymbol]

	result := &AnomalyResult{
		AnomalyType: "FRONT_RUNNING",
		EntityID:    entity,
		Symbol:      sym,
		Description: fmt.Sprintf("Order timing for %s on %s looks clean", entity, sym),
	}
	if propTS < clientTS && clientTS-propTS < frontRunWindowMS {
		result.IsAnomaly = true
		result.Severity = "CRITICAL"
		result.RiskScore = frontRunningScore
		result.Confidence = frontRunningScore
		result.Description = fmt.Sprintf(
			"Proprietary order %dms ahead of client order on %s", clientTS-propTS, sym)
		result.CaseID = s.raiseAnomaly(ctx, result, 0)
	}
	s.pushScan(ctx, sym, "FRONT_RUNNING", result.IsAnomaly, result.Description)

	s.cache.Record("detect_front_running", map[refcontext.Kind]string{
		refcontext.KindEntityID: entity,
		refcontext.KindSymbol:   sym,
	}, fmt.Sprintf("Front running check for %s on %s", entity, sym))
	return result, nil
}

// AnalyzeVolumeAnomaly flags unusually heavy market-wide volume in a
// symbol. No single entity owns the flow, so the alert entity is the
// MARKET placeholder.
func (s *Service) AnalyzeVolumeAnomaly(ctx context.Context, symbol string) (*AnomalyResult, error) {
	sym := s.cache.Resolve(refcontext.KindSymbol, symbol)
	quote, err := s.market.GetQuote(ctx, sym)
	if err != nil {
		return nil, err
	}

	result := &AnomalyResult{
		AnomalyType: "VOLUME",
		EntityID:    "MARKET",
		Symbol:      sym,
		Confidence:  20,
		Description: fmt.Sprintf("%s volume %d unremarkable", sym, quote.Volume),
	}
	if quote.Volume > marketVolumeThreshold {
		result.IsAnomaly = true
		result.Severity = "MEDIUM"
		result.RiskScore = volumeScore
		result.Confidence = 80
		result.Description = fmt.Sprintf("%s volume %d above market threshold", sym, quote.Volume)
		s.pushAlert(ctx, result)
	}
	s.pushScan(ctx, sym, "VOLUME", result.IsAnomaly, result.Description)

	s.cache.Record("analyze_volume_anomaly", map[refcontext.Kind]string{
		refcontext.KindSymbol: sym,
	}, fmt.Sprintf("Analyze %s volume anomaly", sym))
	return result, nil
}

// CheckRSILevels bands the RSI reading for a symbol.
func (s *Service) CheckRSILevels(ctx context.Context, symbol string) (RSILevel, error) {
	sym := s.cache.Resolve(refcontext.KindSymbol, symbol)
	value, err := s.market.GetRSI(ctx, sym)
	if err != nil {
		return RSILevel{}, err
	}

	level := bandRSI(sym, value)
	s.pushScan(ctx, sym, "RSI", level.Level != "NEUTRAL", level.Message)

	s.cache.Record("check_rsi_levels", map[refcontext.Kind]string{
		refcontext.KindSymbol: sym,
	}, fmt.Sprintf("RSI levels for %s", sym))
	return level, nil
}

// ScanEntityAnomalies sweeps an entity across the detection rules.
// Rules needing order or counterparty context cannot run from an ID
// alone, so a bare scan reports clean.
func (s *Service) ScanEntityAnomalies(ctx context.Context, entityID string) ([]AnomalyResult, error) {
	entity := s.cache.Resolve(refcontext.KindEntityID, entityID)

	s.cache.Record("scan_entity_anomalies", map[refcontext.Kind]string{
		refcontext.KindEntityID: entity,
	}, fmt.Sprintf("Scan %s for anomalies", entity))
	return []AnomalyResult{}, nil
}

// raiseAnomaly pushes the full fan-out for a confirmed anomaly: alert,
// optional workflow, case and a risk registration when the score
// clears the floor. Returns the created case ID.
func (s *Service) raiseAnomaly(ctx context.Context, result *AnomalyResult, workflowSteps int) string {
	s.pushAlert(ctx, result)

	if result.WorkflowID != "" && workflowSteps > 0 {
		if _, err := s.dash.LogWorkflowStart(ctx, dashboard.WorkflowExecution{
			WorkflowID:   result.WorkflowID,
			WorkflowType: result.AnomalyType,
			TotalSteps:   workflowSteps,
			Detail:       result.Description,
		}); err != nil {
			s.logger.Warn(ctx, "workflow push failed", observe.Field{Key: "error", Value: err.Error()})
		} else if err := s.dash.UpdateWorkflowProgress(ctx, result.WorkflowID, workflowSteps, "COMPLETED"); err != nil {
			s.logger.Warn(ctx, "workflow progress push failed", observe.Field{Key: "error", Value: err.Error()})
		}
	}

	caseID := "CASE-" + shortID()
	if err := s.dash.UpsertCase(ctx, dashboard.CaseRecord{
		CaseID:        caseID,
		CaseType:      result.AnomalyType,
		Status:        "OPEN",
		Priority:      casePriority(result.RiskScore),
		SubjectEntity: result.EntityID,
		Symbol:        result.Symbol,
		RiskScore:     result.RiskScore,
		Summary:       result.Description,
	}); err != nil {
		s.logger.Warn(ctx, "case push failed", observe.Field{Key: "error", Value: err.Error()})
	}

	if result.RiskScore >= riskRegistrationFloor && result.EntityID != "" {
		if err := s.dash.RegisterRiskEntity(ctx, dashboard.RiskEntity{
			EntityID:  result.EntityID,
			RiskScore: result.RiskScore,
			Reason:    result.AnomalyType,
		}); err != nil {
			s.logger.Warn(ctx, "risk push failed", observe.Field{Key: "error", Value: err.Error()})
		}
	}
	return caseID
}

func (s *Service) pushAlert(ctx context.Context, result *AnomalyResult) {
	if err := s.dash.PushAlert(ctx, dashboard.Alert{
		AlertType:   result.AnomalyType,
		Severity:    result.Severity,
		Symbol:      result.Symbol,
		EntityID:    result.EntityID,
		RiskScore:   result.RiskScore,
		Description: result.Description,
		Timestamp:   time.Now().UnixMilli(),
	}); err != nil {
		s.logger.Warn(ctx, "alert push failed", observe.Field{Key: "error", Value: err.Error()})
	}
}

func (s *Service) pushScan(ctx context.Context, symbol, checkType string, alerted bool, detail string) {
	status := "OK"
	if alerted {
		status = "ALERT"
	}
	if err := s.dash.PushHistory(ctx, dashboard.ScanEntry{
		Symbol:    symbol,
		CheckType: checkType,
		Status:    status,
		Detail:    detail,
		Timestamp: time.Now().UnixMilli(),
	}); err != nil {
		s.logger.Warn(ctx, "scan push failed", observe.Field{Key: "error", Value: err.Error()})
	}
}

func bandRSI(symbol string, value float64) RSILevel {
	level := RSILevel{Symbol: symbol, RSI: value, Level: "NEUTRAL"}
	switch {
	case value > rsiOverbought:
		level.Level = "OVERBOUGHT"
		level.Severity = "HIGH"
		level.Score = 70
	case value < rsiOversold:
		level.Level = "OVERSOLD"
		level.Severity = "MEDIUM"
		level.Score = 50
	}
	level.Message = fmt.Sprintf("%s is %s (RSI: %.2f)", symbol, level.Level, value)
	return level
}

func casePriority(score float64) string {
	switch {
	case score >= 80:
		return "CRITICAL"
	case score >= 60:
		return "HIGH"
	default:
		return "MEDIUM"
	}
}

func shortID() string {
	return uuid.NewString()[:8]
}
