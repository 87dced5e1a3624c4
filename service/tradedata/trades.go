package tradedata

import "fmt"

// Trade is one synthesized execution on the tape.
type Trade struct {
	TradeID    string  `json:"trade_id"`
	OrderID    string  `json:"order_id"`
	Symbol     string  `json:"symbol"`
	AccountID  string  `json:"account_id"`
	Side       string  `json:"side"`
	Exchange   string  `json:"exchange"`
	Segment    string  `json:"segment"`
	Price      float64 `json:"price"`
	Quantity   int64   `json:"quantity"`
	Value      uint64  `json:"value"`
	Timestamp  int64   `json:"timestamp"`
}

// baseTimestamp anchors the synthetic tape; trades step back one
// minute per position from here.
const baseTimestamp = int64(1737225600000)

// synthesizeTrades derives a deterministic tape for a symbol around a
// quoted price and day volume. The per-trade seed is the byte sum of
// the symbol plus the position, so the same inputs always produce the
// same trades. An accountFilter pins every trade to that account.
func synthesizeTrades(symbol string, quote Quote, limit int, accountFilter string) []Trade {
	if limit <= 0 {
		limit = 10
	}

	seedBase := 0
	for _, b := range []byte(symbol) {
		seedBase += int(b)
	}

	priceRange := quote.Price * 0.02
	volPerTrade := quote.Volume / int64(limit)
	if volPerTrade < 100 {
		volPerTrade = 100
	}

	trades := make([]Trade, 0, limit)
	for i := 0; i < limit; i++ {
		seed := seedBase + i
		ts := baseTimestamp - int64(i)*60000

		account := accountFilter
		if account == "" {
			account = fmt.Sprintf("ACC%03d", (seed%100)+1)
		}

		side := "BUY"
		exchange := "NYSE"
		if seed%2 == 1 {
			side = "SELL"
			exchange = "NASDAQ"
		}

		offset := float64(seed%100) / 100 * priceRange
		price := quote.Price - priceRange/2 + offset

		trades = append(trades, Trade{
			TradeID:   fmt.Sprintf("%s_%d_%s", symbol, ts, account),
			OrderID:   fmt.Sprintf("ORD%d", seed),
			Symbol:    symbol,
			AccountID: account,
			Side:      side,
			Exchange:  exchange,
			Segment:   "EQUITY",
			Price:     price,
			Quantity:  volPerTrade,
			Value:     uint64(price * float64(volPerTrade)),
			Timestamp: ts,
		})
	}
	return trades
}
