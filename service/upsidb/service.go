package upsidb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/refcontext"
)

// Sentinel errors for lookups.
var (
	ErrUPSINotFound   = errors.New("upsidb: upsi record not found")
	ErrWindowNotFound = errors.New("upsidb: no trading window on file")
)

const defaultDaysBack = 30

// AccessCheck is the answer to "did this person see inside information
// about this company before the trade".
type AccessCheck struct {
	EntityID      string       `json:"entity_id"`
	CompanySymbol string       `json:"company_symbol"`
	Before        int64        `json:"before_timestamp"`
	HadAccess     bool         `json:"had_access"`
	Accesses      []AccessLog  `json:"matching_accesses"`
	Records       []UPSIRecord `json:"matching_records"`
}

// WindowCheck is the answer to "was the trading window closed when
// this trade executed".
type WindowCheck struct {
	EntityID       string `json:"entity_id,omitempty"`
	CompanySymbol  string `json:"company_symbol"`
	TradeTimestamp int64  `json:"trade_timestamp"`
	WindowStatus   string `json:"window_status"`
	Violation      bool   `json:"violation"`
	Detail         string `json:"detail"`
}

// Service answers UPSI compliance queries against the REST store.
type Service struct {
	store  *StoreClient
	cache  *refcontext.Context
	logger observe.Logger
}

// NewService builds the service and its resolution cache.
func NewService(cfg Config, logger observe.Logger, hook refcontext.Hook) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observe.NopLogger()
	}

	cache, err := refcontext.New(refcontext.Config{
		Kinds: []refcontext.Kind{
			refcontext.KindUPSIID,
			refcontext.KindCompanySymbol,
			refcontext.KindEntityID,
		},
		DedupKey: []refcontext.Kind{
			refcontext.KindUPSIID,
			refcontext.KindCompanySymbol,
			refcontext.KindEntityID,
		},
		Seed: []refcontext.Record{
			{
				Method: "get_upsi",
				Fields: map[refcontext.Kind]string{
					refcontext.KindUPSIID:        "UPSI-2026-001",
					refcontext.KindCompanySymbol: "RELIANCE",
				},
				Prompt: "Get UPSI-2026-001 details",
			},
			{
				Method: "get_active_upsi",
				Fields: map[refcontext.Kind]string{
					refcontext.KindUPSIID:        "UPSI-2026-002",
					refcontext.KindCompanySymbol: "INFY",
				},
				Prompt: "List active UPSI for Infosys",
			},
			{
				Method: "get_upsi",
				Fields: map[refcontext.Kind]string{
					refcontext.KindUPSIID:        "UPSI-2026-001",
					refcontext.KindCompanySymbol: "RELIANCE",
				},
				Prompt: "Get UPSI-2026-001 details",
			},
		},
		OnResolve: hook,
	})
	if err != nil {
		return nil, err
	}

	return &Service{store: NewStoreClient(cfg), cache: cache, logger: logger}, nil
}

// Cache exposes the resolution cache for the get_context tool.
func (s *Service) Cache() *refcontext.Context { return s.cache }

// GetUPSI returns one UPSI record by (possibly partial) ID.
func (s *Service) GetUPSI(ctx context.Context, upsiID string) (*UPSIRecord, error) {
	resolved := s.cache.Resolve(refcontext.KindUPSIID, upsiID)
	records, err := s.store.GetUPSI(ctx, resolved)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUPSINotFound, resolved)
	}
	rec := records[0]

	s.cache.Record("get_upsi", map[refcontext.Kind]string{
		refcontext.KindUPSIID:        rec.UPSIID,
		refcontext.KindCompanySymbol: rec.CompanySymbol,
	}, fmt.Sprintf("Get %s details", rec.UPSIID))
	return &rec, nil
}

// GetActiveUPSI returns a company's still-unpublished records.
func (s *Service) GetActiveUPSI(ctx context.Context, symbol string) ([]UPSIRecord, error) {
	resolved := s.cache.Resolve(refcontext.KindCompanySymbol, symbol)
	records, err := s.store.GetActiveUPSI(ctx, resolved)
	if err != nil {
		return nil, err
	}

	fields := map[refcontext.Kind]string{refcontext.KindCompanySymbol: resolved}
	if len(records) > 0 {
		fields[refcontext.KindUPSIID] = records[0].UPSIID
	}
	s.cache.Record("get_active_upsi", fields, fmt.Sprintf("List active UPSI for %s", resolved))
	return records, nil
}

// LogUPSIAccess records that a person accessed a UPSI record.
func (s *Service) LogUPSIAccess(ctx context.Context, upsiID, entityID, name, designation, reason, mode string, timestamp int64) (*AccessLog, error) {
	resolved := s.cache.Resolve(refcontext.KindUPSIID, upsiID)
	if mode == "" {
		mode = "VIEW"
	}
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	entry, err := s.store.LogAccess(ctx, AccessLog{
		AccessID:            "ACCESS-" + uuid.NewString()[:8],
		UPSIID:              resolved,
		AccessorEntityID:    entityID,
		AccessorName:        name,
		AccessorDesignation: designation,
		AccessTimestamp:     timestamp,
		AccessReason:        reason,
		AccessMode:          mode,
	})
	if err != nil {
		return nil, err
	}

	s.cache.Record("log_upsi_access", map[refcontext.Kind]string{
		refcontext.KindUPSIID:   resolved,
		refcontext.KindEntityID: entityID,
	}, fmt.Sprintf("Log %s access to %s by %s", mode, resolved, entityID))
	return &entry, nil
}

// GetUPSIAccessLog returns who touched a record, optionally bounded by
// an inclusive timestamp range.
func (s *Service) GetUPSIAccessLog(ctx context.Context, upsiID string, from, to int64) ([]AccessLog, error) {
	resolved := s.cache.Resolve(refcontext.KindUPSIID, upsiID)
	entries, err := s.store.AccessLogByUPSI(ctx, resolved, from, to)
	if err != nil {
		return nil, err
	}

	s.cache.Record("get_upsi_access_log", map[refcontext.Kind]string{
		refcontext.KindUPSIID: resolved,
	}, fmt.Sprintf("Get access log for %s", resolved))
	return entries, nil
}

// GetUPSIAccessors returns everyone who ever accessed a record.
func (s *Service) GetUPSIAccessors(ctx context.Context, upsiID string) ([]AccessLog, error) {
	resolved := s.cache.Resolve(refcontext.KindUPSIID, upsiID)
	entries, err := s.store.AccessLogByUPSI(ctx, resolved, 0, 0)
	if err != nil {
		return nil, err
	}

	s.cache.Record("get_upsi_accessors", map[refcontext.Kind]string{
		refcontext.KindUPSIID: resolved,
	}, fmt.Sprintf("Get accessors of %s", resolved))
	return entries, nil
}

// GetAccessByPerson returns a person's UPSI accesses over the last
// daysBack days. A non-positive daysBack returns everything.
func (s *Service) GetAccessByPerson(ctx context.Context, entityID string, daysBack int) ([]AccessLog, error) {
	resolved := s.cache.Resolve(refcontext.KindEntityID, entityID)

	var since int64
	if daysBack > 0 {
		since = time.Now().AddDate(0, 0, -daysBack).UnixMilli()
	}
	entries, err := s.store.AccessLogByPerson(ctx, resolved, since)
	if err != nil {
		return nil, err
	}

	s.cache.Record("get_access_by_person", map[refcontext.Kind]string{
		refcontext.KindEntityID: resolved,
	}, fmt.Sprintf("Get UPSI accesses by %s", resolved))
	return entries, nil
}

// CheckUPSIAccessBefore reports whether a person accessed any UPSI
// record of the given company strictly before a timestamp. This is the
// core insider trading check: access first, trade second. Each access
// entry is joined to its record client-side; the store exposes no
// server-side join.
func (s *Service) CheckUPSIAccessBefore(ctx context.Context, entityID, symbol string, before int64) (*AccessCheck, error) {
	person := s.cache.Resolve(refcontext.KindEntityID, entityID)
	company := s.cache.Resolve(refcontext.KindCompanySymbol, symbol)

	entries, err := s.store.AccessLogBefore(ctx, person, before)
	if err != nil {
		return nil, err
	}

	check := &AccessCheck{
		EntityID:      person,
		CompanySymbol: company,
		Before:        before,
		Accesses:      []AccessLog{},
		Records:       []UPSIRecord{},
	}
	seen := make(map[string]bool)
	for _, entry := range entries {
		records, err := s.store.GetUPSI(ctx, entry.UPSIID)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 || records[0].CompanySymbol != company {
			continue
		}
		check.HadAccess = true
		check.Accesses = append(check.Accesses, entry)
		if !seen[entry.UPSIID] {
			seen[entry.UPSIID] = true
			check.Records = append(check.Records, records[0])
		}
	}

	s.cache.Record("check_upsi_access_before", map[refcontext.Kind]string{
		refcontext.KindEntityID:      person,
		refcontext.KindCompanySymbol: company,
	}, fmt.Sprintf("Check %s access to %s UPSI before trade", person, company))
	return check, nil
}

// GetTradingWindow returns a company's current window state.
func (s *Service) GetTradingWindow(ctx context.Context, symbol string) (*TradingWindow, error) {
	resolved := s.cache.Resolve(refcontext.KindCompanySymbol, symbol)
	windows, err := s.store.GetTradingWindow(ctx, resolved)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrWindowNotFound, resolved)
	}
	win := windows[0]

	s.cache.Record("get_trading_window", map[refcontext.Kind]string{
		refcontext.KindCompanySymbol: resolved,
	}, fmt.Sprintf("Get trading window for %s", resolved))
	return &win, nil
}

// CheckWindowViolation reports whether a trade executed while the
// company's window was closed. A company with no window on file is
// treated as open.
func (s *Service) CheckWindowViolation(ctx context.Context, entityID, symbol string, tradeTS int64) (*WindowCheck, error) {
	person := ""
	if entityID != "" {
		person = s.cache.Resolve(refcontext.KindEntityID, entityID)
	}
	resolved := s.cache.Resolve(refcontext.KindCompanySymbol, symbol)
	windows, err := s.store.GetTradingWindow(ctx, resolved)
	if err != nil {
		return nil, err
	}

	check := &WindowCheck{EntityID: person, CompanySymbol: resolved, TradeTimestamp: tradeTS}
	if len(windows) == 0 {
		check.WindowStatus = "UNKNOWN"
		check.Detail = "no trading window on file, treating as open"
	} else {
		win := windows[0]
		check.WindowStatus = win.WindowStatus
		if win.WindowStatus == "CLOSED" && tradeTS >= win.ClosureStart && tradeTS < win.ExpectedOpening {
			check.Violation = true
			check.Detail = fmt.Sprintf("trade at %d falls inside the closed window starting %d", tradeTS, win.ClosureStart)
		} else {
			check.Detail = "trade falls outside any window closure"
		}
	}

	s.cache.Record("check_window_violation", map[refcontext.Kind]string{
		refcontext.KindCompanySymbol: resolved,
		refcontext.KindEntityID:      person,
	}, fmt.Sprintf("Check window violation for %s", resolved))
	return check, nil
}
