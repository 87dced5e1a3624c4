package tradedata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/surveilops/surveilops/refcontext"
)

// ErrTradeNotFound reports a trade ID that matches nothing on the tape.
var ErrTradeNotFound = errors.New("tradedata: trade not found")

// Symbols mixed into multi-symbol views when only an account is known.
var defaultSymbols = []string{"IBM", "AAPL", "MSFT"}

// profileSymbols adds GOOGL for the broader account profile view.
var profileSymbols = []string{"IBM", "AAPL", "MSFT", "GOOGL"}

// VolumeAnalysis aggregates a symbol's recent tape.
type VolumeAnalysis struct {
	Symbol      string                 `json:"symbol"`
	TotalVolume int64                  `json:"total_volume"`
	BuyVolume   int64                  `json:"buy_volume"`
	SellVolume  int64                  `json:"sell_volume"`
	HighPrice   float64                `json:"high_price"`
	LowPrice    float64                `json:"low_price"`
	AvgPrice    float64                `json:"avg_price"`
	TradeCount  int                    `json:"trade_count"`
	TopAccounts []AccountConcentration `json:"top_accounts"`
}

// AccountConcentration is one account's share of analyzed volume.
type AccountConcentration struct {
	AccountID        string  `json:"account_id"`
	Volume           int64   `json:"volume"`
	ConcentrationPct float64 `json:"concentration_pct"`
}

// VolumeAnomaly is the result of comparing current volume to baseline.
type VolumeAnomaly struct {
	Symbol        string  `json:"symbol"`
	CurrentVolume int64   `json:"current_volume"`
	AvgVolume30D  int64   `json:"avg_volume_30d"`
	VolumeRatio   float64 `json:"volume_ratio"`
	IsAnomaly     bool    `json:"is_anomaly"`
	AnomalyScore  float64 `json:"anomaly_score"`
}

// TraderActivity summarizes one account's buy and sell volume.
type TraderActivity struct {
	AccountID   string `json:"account_id"`
	BuyVolume   int64  `json:"buy_volume"`
	SellVolume  int64  `json:"sell_volume"`
	TotalVolume int64  `json:"total_volume"`
	TradeCount  int    `json:"trade_count"`
}

// AccountProfile is the cross-symbol view of one account.
type AccountProfile struct {
	AccountID  string   `json:"account_id"`
	TradeCount int      `json:"trade_count"`
	TotalValue uint64   `json:"total_value"`
	BuyCount   int      `json:"buy_count"`
	SellCount  int      `json:"sell_count"`
	Symbols    []string `json:"symbols"`
}

// Service answers trade tape questions. Symbol and account partials
// resolve through the cache before any tape is synthesized.
type Service struct {
	quotes *QuoteClient
	cache  *refcontext.Context
}

// NewService builds the service and its resolution cache, seeded with
// a plausible recent session so a cold agent can use loose references.
func NewService(quotes *QuoteClient, hook refcontext.Hook) (*Service, error) {
	cache, err := refcontext.New(refcontext.Config{
		Kinds: []refcontext.Kind{
			refcontext.KindSymbol,
			refcontext.KindAccountID,
		},
		DedupKey: []refcontext.Kind{
			refcontext.KindSymbol,
			refcontext.KindAccountID,
		},
		Seed: []refcontext.Record{
			{
				Method: "get_trades_by_symbol",
				Fields: map[refcontext.Kind]string{
					refcontext.KindSymbol:    "IBM",
					refcontext.KindAccountID: "ACC017",
				},
				Prompt: "Get IBM trades",
			},
			{
				Method: "analyze_volume",
				Fields: map[refcontext.Kind]string{refcontext.KindSymbol: "AAPL"},
				Prompt: "Analyze Apple stock volume",
			},
			{
				Method: "get_top_traders",
				Fields: map[refcontext.Kind]string{
					refcontext.KindSymbol:    "MSFT",
					refcontext.KindAccountID: "ACC025",
				},
				Prompt: "Who are top Microsoft traders?",
			},
			{
				Method: "detect_volume_anomaly",
				Fields: map[refcontext.Kind]string{refcontext.KindSymbol: "GOOGL"},
				Prompt: "Any anomalies in Google trading?",
			},
			{
				Method: "get_trades_by_account",
				Fields: map[refcontext.Kind]string{
					refcontext.KindSymbol:    "TSLA",
					refcontext.KindAccountID: "ACC042",
				},
				Prompt: "Tesla trades today",
			},
			{
				Method: "get_trades_by_symbol",
				Fields: map[refcontext.Kind]string{
					refcontext.KindSymbol:    "IBM",
					refcontext.KindAccountID: "ACC017",
				},
				Prompt: "Get IBM trades for ACC017",
			},
		},
		OnResolve: hook,
	})
	if err != nil {
		return nil, err
	}
	return &Service{quotes: quotes, cache: cache}, nil
}

// Cache exposes the resolution cache for the get_context tool.
func (s *Service) Cache() *refcontext.Context { return s.cache }

func (s *Service) tape(ctx context.Context, symbol string, limit int, account string) ([]Trade, error) {
	quote, err := s.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return synthesizeTrades(symbol, quote, limit, account), nil
}

// GetTrade looks up a single trade by its composite ID. The symbol
// segment of the ID may be partial.
func (s *Service) GetTrade(ctx context.Context, tradeID string) (*Trade, error) {
	parts := strings.SplitN(tradeID, "_", 2)
	symbol := s.cache.Resolve(refcontext.KindSymbol, parts[0])

	trades, err := s.tape(ctx, symbol, 10, "")
	if err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTradeNotFound, tradeID)
	}

	trade := trades[0]
	for _, t := range trades {
		if t.TradeID == tradeID {
			trade = t
			break
		}
	}

	s.cache.Record("get_trade", map[refcontext.Kind]string{
		refcontext.KindSymbol:    symbol,
		refcontext.KindAccountID: trade.AccountID,
	}, fmt.Sprintf("Get trade %s", trade.TradeID))
	return &trade, nil
}

// GetTradesBySymbol returns the recent tape for a symbol.
func (s *Service) GetTradesBySymbol(ctx context.Context, symbol string, limit int) ([]Trade, error) {
	resolved := s.cache.Resolve(refcontext.KindSymbol, symbol)
	trades, err := s.tape(ctx, resolved, limit, "")
	if err != nil {
		return nil, err
	}

	s.cache.Record("get_trades_by_symbol", map[refcontext.Kind]string{
		refcontext.KindSymbol: resolved,
	}, fmt.Sprintf("Get %s trades", resolved))
	return trades, nil
}

// GetTradesByAccount returns an account's trades across the default
// symbol set, newest first.
func (s *Service) GetTradesByAccount(ctx context.Context, accountID string, limit int) ([]Trade, error) {
	account := s.cache.Resolve(refcontext.KindAccountID, accountID)
	if limit <= 0 {
		limit = 30
	}

	per := limit / len(defaultSymbols)
	if per < 1 {
		per = 1
	}

	var trades []Trade
	for _, sym := range defaultSymbols {
		batch, err := s.tape(ctx, sym, per, account)
		if err != nil {
			return nil, err
		}
		trades = append(trades, batch...)
	}
	sortByTimestampDesc(trades)
	if len(trades) > limit {
		trades = trades[:limit]
	}

	s.cache.Record("get_trades_by_account", map[refcontext.Kind]string{
		refcontext.KindAccountID: account,
	}, fmt.Sprintf("Get trades for account %s", account))
	return trades, nil
}

// GetTradesByAccounts returns trades for a comma-separated account
// list, 50 per account.
func (s *Service) GetTradesByAccounts(ctx context.Context, accountsCSV string) (map[string][]Trade, error) {
	out := make(map[string][]Trade)
	for _, raw := range strings.Split(accountsCSV, ",") {
		account := s.cache.Resolve(refcontext.KindAccountID, strings.TrimSpace(raw))
		trades, err := s.GetTradesByAccount(ctx, account, 50)
		if err != nil {
			return nil, err
		}
		out[account] = trades
	}
	return out, nil
}

// AnalyzeVolume aggregates 500 trades of a symbol's tape, including
// the top five accounts by volume share.
func (s *Service) AnalyzeVolume(ctx context.Context, symbol string) (*VolumeAnalysis, error) {
	resolved := s.cache.Resolve(refcontext.KindSymbol, symbol)
	trades, err := s.tape(ctx, resolved, 500, "")
	if err != nil {
		return nil, err
	}

	analysis := &VolumeAnalysis{Symbol: resolved, TradeCount: len(trades)}
	byAccount := make(map[string]int64)
	var priceSum float64
	for i, t := range trades {
		analysis.TotalVolume += t.Quantity
		if t.Side == "BUY" {
			analysis.BuyVolume += t.Quantity
		} else {
			analysis.SellVolume += t.Quantity
		}
		if i == 0 || t.Price > analysis.HighPrice {
			analysis.HighPrice = t.Price
		}
		if i == 0 || t.Price < analysis.LowPrice {
			analysis.LowPrice = t.Price
		}
		priceSum += t.Price
		byAccount[t.AccountID] += t.Quantity
	}
	if len(trades) > 0 {
		analysis.AvgPrice = priceSum / float64(len(trades))
	}

	for account, volume := range byAccount {
		pct := 0.0
		if analysis.TotalVolume > 0 {
			pct = float64(volume) / float64(analysis.TotalVolume) * 100
		}
		analysis.TopAccounts = append(analysis.TopAccounts, AccountConcentration{
			AccountID:        account,
			Volume:           volume,
			ConcentrationPct: pct,
		})
	}
	sort.Slice(analysis.TopAccounts, func(i, j int) bool {
		if analysis.TopAccounts[i].Volume != analysis.TopAccounts[j].Volume {
			return analysis.TopAccounts[i].Volume > analysis.TopAccounts[j].Volume
		}
		return analysis.TopAccounts[i].AccountID < analysis.TopAccounts[j].AccountID
	})
	if len(analysis.TopAccounts) > 5 {
		analysis.TopAccounts = analysis.TopAccounts[:5]
	}

	s.cache.Record("analyze_volume", map[refcontext.Kind]string{
		refcontext.KindSymbol: resolved,
	}, fmt.Sprintf("Analyze %s volume", resolved))
	return analysis, nil
}

// DetectVolumeAnomaly compares current volume against a 30 day
// baseline. A ratio above 2.5 flags an anomaly.
func (s *Service) DetectVolumeAnomaly(ctx context.Context, symbol string) (*VolumeAnomaly, error) {
	resolved := s.cache.Resolve(refcontext.KindSymbol, symbol)
	trades, err := s.tape(ctx, resolved, 200, "")
	if err != nil {
		return nil, err
	}

	var current int64
	for _, t := range trades {
		current += t.Quantity
	}
	baseline := current / 2
	ratio := 0.0
	if baseline > 0 {
		ratio = float64(current) / float64(baseline)
	}

	anomaly := &VolumeAnomaly{
		Symbol:        resolved,
		CurrentVolume: current,
		AvgVolume30D:  baseline,
		VolumeRatio:   ratio,
	}
	if ratio > 2.5 {
		anomaly.IsAnomaly = true
		anomaly.AnomalyScore = (ratio - 1) * 100
	}

	s.cache.Record("detect_volume_anomaly", map[refcontext.Kind]string{
		refcontext.KindSymbol: resolved,
	}, fmt.Sprintf("Any volume anomalies in %s?", resolved))
	return anomaly, nil
}

// GetTopTraders ranks accounts on a symbol's tape by total volume.
func (s *Service) GetTopTraders(ctx context.Context, symbol string, limit int) ([]TraderActivity, error) {
	resolved := s.cache.Resolve(refcontext.KindSymbol, symbol)
	if limit <= 0 {
		limit = 10
	}
	trades, err := s.tape(ctx, resolved, 500, "")
	if err != nil {
		return nil, err
	}

	byAccount := make(map[string]*TraderActivity)
	for _, t := range trades {
		act := byAccount[t.AccountID]
		if act == nil {
			act = &TraderActivity{AccountID: t.AccountID}
			byAccount[t.AccountID] = act
		}
		if t.Side == "BUY" {
			act.BuyVolume += t.Quantity
		} else {
			act.SellVolume += t.Quantity
		}
		act.TotalVolume += t.Quantity
		act.TradeCount++
	}

	traders := make([]TraderActivity, 0, len(byAccount))
	for _, act := range byAccount {
		traders = append(traders, *act)
	}
	sort.Slice(traders, func(i, j int) bool {
		if traders[i].TotalVolume != traders[j].TotalVolume {
			return traders[i].TotalVolume > traders[j].TotalVolume
		}
		return traders[i].AccountID < traders[j].AccountID
	})
	if len(traders) > limit {
		traders = traders[:limit]
	}

	top := ""
	if len(traders) > 0 {
		top = traders[0].AccountID
	}
	s.cache.Record("get_top_traders", map[refcontext.Kind]string{
		refcontext.KindSymbol:    resolved,
		refcontext.KindAccountID: top,
	}, fmt.Sprintf("Who are top %s traders?", resolved))
	return traders, nil
}

// GetLargeOrders filters the default symbol tapes down to trades at or
// above a value threshold, largest first. An empty symbol widens the
// scan to the default set plus the last-seen symbol.
func (s *Service) GetLargeOrders(ctx context.Context, symbol string, minValue uint64) ([]Trade, error) {
	symbols := append([]string(nil), defaultSymbols...)
	if resolved := s.cache.Resolve(refcontext.KindSymbol, symbol); resolved != "" {
		symbols = mergeSymbol(symbols, resolved)
	}

	var large []Trade
	for _, sym := range symbols {
		trades, err := s.tape(ctx, sym, 100, "")
		if err != nil {
			return nil, err
		}
		for _, t := range trades {
			if t.Value >= minValue {
				large = append(large, t)
			}
		}
	}
	sort.Slice(large, func(i, j int) bool { return large[i].Value > large[j].Value })

	s.cache.Record("get_large_orders", map[refcontext.Kind]string{},
		fmt.Sprintf("Find orders above %d", minValue))
	return large, nil
}

// GetAccountProfile summarizes an account across the profile symbols.
func (s *Service) GetAccountProfile(ctx context.Context, accountID string) (*AccountProfile, error) {
	account := s.cache.Resolve(refcontext.KindAccountID, accountID)

	profile := &AccountProfile{AccountID: account}
	for _, sym := range profileSymbols {
		trades, err := s.tape(ctx, sym, 50, account)
		if err != nil {
			return nil, err
		}
		if len(trades) > 0 {
			profile.Symbols = append(profile.Symbols, sym)
		}
		for _, t := range trades {
			profile.TradeCount++
			profile.TotalValue += t.Value
			if t.Side == "BUY" {
				profile.BuyCount++
			} else {
				profile.SellCount++
			}
		}
	}

	s.cache.Record("get_account_profile", map[refcontext.Kind]string{
		refcontext.KindAccountID: account,
	}, fmt.Sprintf("Profile account %s", account))
	return profile, nil
}

func sortByTimestampDesc(trades []Trade) {
	sort.Slice(trades, func(i, j int) bool { return trades[i].Timestamp > trades[j].Timestamp })
}

func mergeSymbol(symbols []string, symbol string) []string {
	for _, s := range symbols {
		if s == symbol {
			return symbols
		}
	}
	return append(symbols, symbol)
}
