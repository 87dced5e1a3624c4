package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/surveilops/surveilops/auth"
)

// ErrPushFailed wraps ingest failures reported by the gateway.
var ErrPushFailed = errors.New("dashboard: push failed")

// Client pushes state to a remote dashboard gateway. A client built
// from an empty base URL is disabled: every push becomes a silent
// no-op so services run fine without a dashboard.
type Client struct {
	http    *resty.Client
	enabled bool
}

// NewClient builds a client. apiKey is sent on every push when set.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		return &Client{}
	}
	c := resty.New().SetBaseURL(strings.TrimRight(baseURL, "/"))
	if apiKey != "" {
		c.SetHeader(auth.APIKeyHeader, apiKey)
	}
	return &Client{http: c, enabled: true}
}

// Enabled reports whether pushes reach a gateway.
func (c *Client) Enabled() bool { return c.enabled }

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if !c.enabled {
		return nil
	}
	req := c.http.R().SetContext(ctx).SetBody(body)
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Post(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPushFailed, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: HTTP %d: %s", ErrPushFailed, resp.StatusCode(), resp.String())
	}
	return nil
}

// PushAlert sends an alert to the gateway.
func (c *Client) PushAlert(ctx context.Context, a Alert) error {
	return c.post(ctx, "/api/alerts", a, nil)
}

// PushHistory records a completed scan.
func (c *Client) PushHistory(ctx context.Context, e ScanEntry) error {
	return c.post(ctx, "/api/history", e, nil)
}

// LogWorkflowStart registers a workflow and returns its ID. A
// disabled client returns the ID it was given.
func (c *Client) LogWorkflowStart(ctx context.Context, w WorkflowExecution) (string, error) {
	if !c.enabled {
		return w.WorkflowID, nil
	}
	var created WorkflowExecution
	if err := c.post(ctx, "/api/workflows", w, &created); err != nil {
		return "", err
	}
	return created.WorkflowID, nil
}

// UpdateWorkflowProgress advances a workflow.
func (c *Client) UpdateWorkflowProgress(ctx context.Context, workflowID string, step int, status string) error {
	if !c.enabled {
		return nil
	}
	body := map[string]any{"current_step": step, "status": status}
	resp, err := c.http.R().SetContext(ctx).SetBody(body).Put("/api/workflows/" + workflowID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPushFailed, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: HTTP %d", ErrPushFailed, resp.StatusCode())
	}
	return nil
}

// UpsertCase mirrors a case to the gateway.
func (c *Client) UpsertCase(ctx context.Context, cr CaseRecord) error {
	return c.post(ctx, "/api/cases", cr, nil)
}

// RegisterRiskEntity flags an entity with a risk score.
func (c *Client) RegisterRiskEntity(ctx context.Context, r RiskEntity) error {
	return c.post(ctx, "/api/risk", r, nil)
}
