package health

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// UpstreamChecker probes an HTTP upstream such as the entity graph
// store or a market data feed.
//
// Any completed response below 500 counts as reachable: an upstream
// that answers 401 to an unauthenticated probe is still up.
type UpstreamChecker struct {
	name   string
	client *resty.Client
	url    string
}

// NewUpstreamChecker creates a checker that probes url with a GET.
func NewUpstreamChecker(name string, client *resty.Client, url string) *UpstreamChecker {
	if client == nil {
		client = resty.New()
	}
	return &UpstreamChecker{name: name, client: client, url: url}
}

func (u *UpstreamChecker) Name() string { return u.name }

func (u *UpstreamChecker) Check(ctx context.Context) Result {
	resp, err := u.client.R().SetContext(ctx).Get(u.url)
	if err != nil {
		return Unhealthy(fmt.Sprintf("%s unreachable", u.name), err)
	}

	details := map[string]any{
		"url":         u.url,
		"status_code": resp.StatusCode(),
	}

	if resp.StatusCode() >= 500 {
		return Unhealthy(
			fmt.Sprintf("%s returned %d", u.name, resp.StatusCode()),
			ErrCheckFailed,
		).WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%s reachable", u.name)).WithDetails(details)
}
