package entityrel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/surveilops/surveilops/resilience"
)

// ErrGraphQuery wraps failures reported by the graph store.
var ErrGraphQuery = errors.New("entityrel: graph query failed")

// Entity is a node in the surveillance graph.
type Entity struct {
	EntityID       string `json:"entity_id"`
	EntityType     string `json:"entity_type"`
	Name           string `json:"name"`
	PANNumber      string `json:"pan_number"`
	RegistrationID string `json:"registration_id"`
}

// Relationship is a directed edge between two entities.
type Relationship struct {
	SourceEntityID     string `json:"source_entity_id"`
	TargetEntityID     string `json:"target_entity_id"`
	RelationshipType   string `json:"relationship_type"`
	RelationshipDetail string `json:"relationship_detail"`
	Strength           int    `json:"strength"`
	Verified           bool   `json:"verified"`
}

// EntityConnection describes a path between two entities.
type EntityConnection struct {
	EntityID          string `json:"entity_id"`
	ConnectedEntityID string `json:"connected_entity_id"`
	ConnectionPath    string `json:"connection_path"`
	Hops              int    `json:"hops"`
	RelationshipTypes string `json:"relationship_types"`
}

// InsiderStatus is the result of an insider check against a company.
type InsiderStatus struct {
	EntityID      string `json:"entity_id"`
	CompanySymbol string `json:"company_symbol"`
	IsInsider     bool   `json:"is_insider"`
	InsiderType   string `json:"insider_type"`
	Designation   string `json:"designation"`
	WindowStatus  string `json:"window_status"`
}

// Transactional Cypher API wire types.
type cypherStatement struct {
	Statement  string         `json:"statement"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type cypherRequest struct {
	Statements []cypherStatement `json:"statements"`
}

type cypherResponse struct {
	Results []cypherResult `json:"results"`
	Errors  []cypherError  `json:"errors"`
}

type cypherResult struct {
	Columns []string    `json:"columns"`
	Data    []cypherRow `json:"data"`
}

type cypherRow struct {
	Row []any `json:"row"`
}

type cypherError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GraphClient runs Cypher statements against the Neo4j tx/commit HTTP
// endpoint with basic auth.
type GraphClient struct {
	http *resty.Client
	url  string
	exec *resilience.Executor
}

// NewGraphClient builds a client from config. Bolt-style schemes are
// rewritten to HTTP since the transactional endpoint speaks HTTPS.
func NewGraphClient(cfg Config) *GraphClient {
	uri := strings.NewReplacer(
		"neo4j+s://", "https://",
		"neo4j://", "http://",
	).Replace(cfg.GraphURI)

	client := resty.New().
		SetBasicAuth(cfg.GraphUser, cfg.GraphPassword).
		SetHeader("Content-Type", "application/json")

	return &GraphClient{
		http: client,
		url:  strings.TrimRight(uri, "/") + "/db/neo4j/tx/commit",
		exec: cfg.Policy.Build(),
	}
}

// Query runs a single parameterized statement and returns the first
// result set. Statement-level errors from the store surface as
// ErrGraphQuery.
func (g *GraphClient) Query(ctx context.Context, statement string, params map[string]any) (*cypherResult, error) {
	body := cypherRequest{Statements: []cypherStatement{{
		Statement:  statement,
		Parameters: params,
	}}}

	var out cypherResponse
	err := g.exec.Execute(ctx, func(ctx context.Context) error {
		resp, err := g.http.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&out).
			Post(g.url)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrGraphQuery, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: HTTP %d: %s", ErrGraphQuery, resp.StatusCode(), resp.String())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrGraphQuery, out.Errors[0].Message)
	}
	if len(out.Results) == 0 {
		return &cypherResult{}, nil
	}
	return &out.Results[0], nil
}

// Row value helpers. The tx/commit API returns untyped JSON rows; a
// missing or differently typed cell reads as the zero value.

func rowString(row []any, i int) string {
	if i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return s
}

func rowInt(row []any, i int) int {
	if i >= len(row) {
		return 0
	}
	f, _ := row[i].(float64)
	return int(f)
}

func rowBool(row []any, i int) bool {
	if i >= len(row) {
		return false
	}
	b, _ := row[i].(bool)
	return b
}

func rowStrings(row []any, i int) []string {
	if i >= len(row) {
		return nil
	}
	arr, _ := row[i].([]any)
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
