package ticketing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/surveilops/surveilops/resilience"
)

// ErrTrackerRequest wraps failures reported by the tracker API.
var ErrTrackerRequest = errors.New("ticketing: tracker request failed")

// Timestamps in issue payloads, e.g. 2026-01-17T09:30:00.000+0530.
const trackerTimeLayout = "2006-01-02T15:04:05.000-0700"

type issueRef struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

type issueDetail struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Status  struct {
			Name string `json:"name"`
		} `json:"status"`
		IssueType struct {
			Name string `json:"name"`
		} `json:"issuetype"`
		Priority struct {
			Name string `json:"name"`
		} `json:"priority"`
		Assignee struct {
			DisplayName string `json:"displayName"`
		} `json:"assignee"`
		Created string `json:"created"`
		Updated string `json:"updated"`
	} `json:"fields"`
}

// adfDoc wraps plain text in the Atlassian Document Format the v3 API
// requires for descriptions and comments.
func adfDoc(text string) map[string]any {
	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": []map[string]any{{
			"type":    "paragraph",
			"content": []map[string]any{{"type": "text", "text": text}},
		}},
	}
}

// TrackerClient talks to the Jira Cloud REST v3 API.
type TrackerClient struct {
	http    *resty.Client
	exec    *resilience.Executor
	baseURL string
	project string
}

// NewTrackerClient builds a client from config.
func NewTrackerClient(cfg Config) *TrackerClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	client := resty.New().
		SetBaseURL(base + "/rest/api/3").
		SetBasicAuth(cfg.Email, cfg.APIToken).
		SetHeader("Content-Type", "application/json")

	return &TrackerClient{
		http:    client,
		exec:    cfg.Policy.Build(),
		baseURL: base,
		project: cfg.ProjectKey,
	}
}

// BrowseURL is the human-facing link for a ticket key.
func (c *TrackerClient) BrowseURL(key string) string {
	return c.baseURL + "/browse/" + key
}

func (c *TrackerClient) post(ctx context.Context, path string, body, out any) error {
	return c.exec.Execute(ctx, func(ctx context.Context) error {
		req := c.http.R().SetContext(ctx).SetBody(body)
		if out != nil {
			req.SetResult(out)
		}
		resp, err := req.Post(path)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTrackerRequest, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: HTTP %d: %s", ErrTrackerRequest, resp.StatusCode(), resp.String())
		}
		return nil
	})
}

// CreateIssue files a new issue and returns its reference.
func (c *TrackerClient) CreateIssue(ctx context.Context, summary, description, priority, issueType string) (issueRef, error) {
	payload := map[string]any{
		"fields": map[string]any{
			"project":     map[string]string{"key": c.project},
			"summary":     summary,
			"description": adfDoc(description),
			"issuetype":   map[string]string{"name": issueType},
			"priority":    map[string]string{"name": priority},
		},
	}
	var ref issueRef
	err := c.post(ctx, "/issue", payload, &ref)
	return ref, err
}

// GetIssue fetches one issue by key. ok is false when the tracker has
// no such issue.
func (c *TrackerClient) GetIssue(ctx context.Context, key string) (detail issueDetail, ok bool, err error) {
	err = c.exec.Execute(ctx, func(ctx context.Context) error {
		resp, err := c.http.R().SetContext(ctx).SetResult(&detail).Get("/issue/" + key)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTrackerRequest, err)
		}
		if resp.StatusCode() == http.StatusNotFound {
			return nil
		}
		if resp.IsError() {
			return fmt.Errorf("%w: HTTP %d: %s", ErrTrackerRequest, resp.StatusCode(), resp.String())
		}
		ok = true
		return nil
	})
	return detail, ok, err
}

// Transition moves an issue through its workflow.
func (c *TrackerClient) Transition(ctx context.Context, key, transitionID string) error {
	payload := map[string]any{
		"transition": map[string]string{"id": transitionID},
	}
	return c.post(ctx, "/issue/"+key+"/transitions", payload, nil)
}

// AddComment appends a comment to an issue.
func (c *TrackerClient) AddComment(ctx context.Context, key, comment string) error {
	payload := map[string]any{"body": adfDoc(comment)}
	return c.post(ctx, "/issue/"+key+"/comment", payload, nil)
}

// parseTrackerTime converts an issue timestamp to epoch millis, zero
// when absent or malformed.
func parseTrackerTime(s string) int64 {
	if s == "" {
		return 0
	}
	t, err := time.Parse(trackerTimeLayout, s)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
