package tradedata

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/surveilops/surveilops/resilience"
)

const defaultBaseURL = "https://www.alphavantage.co"

// Fallbacks when the provider returns no usable quote, so the synthetic
// tape stays available offline.
const (
	fallbackPrice  = 100.0
	fallbackVolume = int64(100000)
)

// ErrQuoteFetch wraps transport failures from the market data provider.
var ErrQuoteFetch = errors.New("tradedata: quote fetch failed")

// Quote is the current price and day volume for a symbol.
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Volume int64   `json:"volume"`
}

type globalQuoteResponse struct {
	GlobalQuote map[string]string `json:"Global Quote"`
}

// QuoteClient fetches GLOBAL_QUOTE data.
type QuoteClient struct {
	http   *resty.Client
	apiKey string
	exec   *resilience.Executor
}

// NewQuoteClient builds a client from config.
func NewQuoteClient(cfg Config) *QuoteClient {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &QuoteClient{
		http:   resty.New().SetBaseURL(strings.TrimRight(base, "/")),
		apiKey: cfg.APIKey,
		exec:   cfg.Policy.Build(),
	}
}

// GetQuote returns the latest quote for a symbol. Missing or malformed
// price and volume fields fall back to fixed defaults rather than
// failing, matching the best-effort nature of the synthetic tape.
func (q *QuoteClient) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	var out globalQuoteResponse
	err := q.exec.Execute(ctx, func(ctx context.Context) error {
		resp, err := q.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"function": "GLOBAL_QUOTE",
				"symbol":   symbol,
				"apikey":   q.apiKey,
			}).
			SetResult(&out).
			Get("/query")
		if err != nil {
			return fmt.Errorf("%w: %v", ErrQuoteFetch, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: HTTP %d", ErrQuoteFetch, resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return Quote{}, err
	}

	quote := Quote{Symbol: symbol, Price: fallbackPrice, Volume: fallbackVolume}
	if p, err := strconv.ParseFloat(out.GlobalQuote["05. price"], 64); err == nil && p > 0 {
		quote.Price = p
	}
	if v, err := strconv.ParseInt(out.GlobalQuote["06. volume"], 10, 64); err == nil && v > 0 {
		quote.Volume = v
	}
	return quote, nil
}
