package upsidb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/surveilops/surveilops/resilience"
)

// ErrStoreQuery wraps failures reported by the REST store.
var ErrStoreQuery = errors.New("upsidb: store query failed")

// UPSIRecord is one piece of unpublished price sensitive information.
type UPSIRecord struct {
	UPSIID        string `json:"upsi_id"`
	CompanySymbol string `json:"company_symbol"`
	UPSIType      string `json:"upsi_type"`
	Description   string `json:"description"`
	Nature        string `json:"nature"`
	CreatedDate   int64  `json:"created_date"`
	PublicDate    int64  `json:"public_date"`
	IsPublic      bool   `json:"is_public"`
}

// AccessLog is one recorded access to a UPSI record.
type AccessLog struct {
	AccessID            string `json:"access_id"`
	UPSIID              string `json:"upsi_id"`
	AccessorEntityID    string `json:"accessor_entity_id"`
	AccessorName        string `json:"accessor_name,omitempty"`
	AccessorDesignation string `json:"accessor_designation,omitempty"`
	AccessTimestamp     int64  `json:"access_timestamp"`
	AccessReason        string `json:"access_reason,omitempty"`
	AccessMode          string `json:"access_mode,omitempty"`
}

// TradingWindow is a company's current window state.
type TradingWindow struct {
	CompanySymbol   string `json:"company_symbol"`
	WindowStatus    string `json:"window_status"`
	ClosureReason   string `json:"closure_reason,omitempty"`
	ClosureStart    int64  `json:"closure_start,omitempty"`
	ExpectedOpening int64  `json:"expected_opening,omitempty"`
}

// StoreClient talks to the PostgREST style compliance store. Filters
// ride in the query string as column=op.value pairs; a column may
// repeat for range bounds.
type StoreClient struct {
	http *resty.Client
	exec *resilience.Executor
}

// NewStoreClient builds a client from config.
func NewStoreClient(cfg Config) *StoreClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.StoreURL, "/")).
		SetHeader("apikey", cfg.StoreKey).
		SetAuthToken(cfg.StoreKey).
		SetHeader("Prefer", "return=representation")

	return &StoreClient{http: client, exec: cfg.Policy.Build()}
}

func (c *StoreClient) get(ctx context.Context, table string, filters url.Values, out any) error {
	return c.exec.Execute(ctx, func(ctx context.Context) error {
		req := c.http.R().SetContext(ctx).SetResult(out).SetQueryParam("select", "*")
		req.SetQueryParamsFromValues(filters)
		resp, err := req.Get("/rest/v1/" + table)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreQuery, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: HTTP %d: %s", ErrStoreQuery, resp.StatusCode(), resp.String())
		}
		return nil
	})
}

func (c *StoreClient) post(ctx context.Context, table string, body, out any) error {
	return c.exec.Execute(ctx, func(ctx context.Context) error {
		resp, err := c.http.R().SetContext(ctx).SetBody(body).SetResult(out).Post("/rest/v1/" + table)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStoreQuery, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: HTTP %d: %s", ErrStoreQuery, resp.StatusCode(), resp.String())
		}
		return nil
	})
}

// GetUPSI fetches one record by ID.
func (c *StoreClient) GetUPSI(ctx context.Context, upsiID string) ([]UPSIRecord, error) {
	var out []UPSIRecord
	err := c.get(ctx, "upsi_records", url.Values{"upsi_id": {"eq." + upsiID}}, &out)
	return out, err
}

// GetActiveUPSI fetches a company's still-unpublished records.
func (c *StoreClient) GetActiveUPSI(ctx context.Context, symbol string) ([]UPSIRecord, error) {
	var out []UPSIRecord
	err := c.get(ctx, "upsi_records", url.Values{
		"company_symbol": {"eq." + symbol},
		"is_public":      {"eq.false"},
	}, &out)
	return out, err
}

// LogAccess records a person touching a UPSI record.
func (c *StoreClient) LogAccess(ctx context.Context, entry AccessLog) (AccessLog, error) {
	var out []AccessLog
	if err := c.post(ctx, "upsi_access_log", entry, &out); err != nil {
		return AccessLog{}, err
	}
	if len(out) > 0 {
		return out[0], nil
	}
	return entry, nil
}

// AccessLogByUPSI fetches access entries for a record, optionally
// bounded by an inclusive timestamp range.
func (c *StoreClient) AccessLogByUPSI(ctx context.Context, upsiID string, from, to int64) ([]AccessLog, error) {
	filters := url.Values{"upsi_id": {"eq." + upsiID}}
	if from > 0 {
		filters.Add("access_timestamp", "gte."+strconv.FormatInt(from, 10))
	}
	if to > 0 {
		filters.Add("access_timestamp", "lte."+strconv.FormatInt(to, 10))
	}
	var out []AccessLog
	err := c.get(ctx, "upsi_access_log", filters, &out)
	return out, err
}

// AccessLogByPerson fetches a person's access entries at or after the
// given timestamp. A zero bound fetches everything.
func (c *StoreClient) AccessLogByPerson(ctx context.Context, entityID string, since int64) ([]AccessLog, error) {
	filters := url.Values{"accessor_entity_id": {"eq." + entityID}}
	if since > 0 {
		filters.Add("access_timestamp", "gte."+strconv.FormatInt(since, 10))
	}
	var out []AccessLog
	err := c.get(ctx, "upsi_access_log", filters, &out)
	return out, err
}

// AccessLogBefore fetches a person's access entries strictly before a
// timestamp.
func (c *StoreClient) AccessLogBefore(ctx context.Context, entityID string, before int64) ([]AccessLog, error) {
	var out []AccessLog
	err := c.get(ctx, "upsi_access_log", url.Values{
		"accessor_entity_id": {"eq." + entityID},
		"access_timestamp":   {"lt." + strconv.FormatInt(before, 10)},
	}, &out)
	return out, err
}

// GetTradingWindow fetches a company's window state.
func (c *StoreClient) GetTradingWindow(ctx context.Context, symbol string) ([]TradingWindow, error) {
	var out []TradingWindow
	err := c.get(ctx, "trading_windows", url.Values{"company_symbol": {"eq." + symbol}}, &out)
	return out, err
}
