package groww

import (
	"strings"
	"time"

	"github.com/akshaybhat/equiscan/internal/domain"
)

// Wire-format types. Groww nests payloads and omits fields freely, so all
// defaulting happens here, once, at the boundary.

type holdingsResponse struct {
	Holdings []rawHolding `json:"holdings"`
}

type rawHolding struct {
	TradingSymbol string  `json:"trading_symbol"`
	ISIN          string  `json:"isin"`
	Exchange      string  `json:"exchange"`
	Quantity      float64 `json:"quantity"`
	AveragePrice  float64 `json:"average_price"`
	LastPrice     float64 `json:"last_price"`
}

type rawQuote struct {
	LastPrice     float64 `json:"last_price"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	DayChangePerc float64 `json:"day_change_perc"`
	Volume        int64   `json:"volume"`
}

type candlesResponse struct {
	// Each candle is [epoch_seconds, open, high, low, close, volume].
	Candles [][]float64 `json:"candles"`
}

type orderRequest struct {
	Symbol         string  `json:"trading_symbol"`
	Side           string  `json:"transaction_type"`
	Quantity       int     `json:"quantity"`
	Price          float64 `json:"price,omitempty"`
	OrderType      string  `json:"order_type"`
	Exchange       string  `json:"exchange"`
	ClientOrderRef string  `json:"client_order_ref"`
}

type rawOrderResult struct {
	OrderID string  `json:"groww_order_id"`
	Status  string  `json:"order_status"`
	Price   float64 `json:"price"`
}

// normalizeSymbol strips Yahoo-style exchange suffixes so universe files in
// either convention work against the Groww API.
func normalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimSuffix(s, ".NS")
	s = strings.TrimSuffix(s, ".BO")
	return s
}

// transformHolding converts a raw holding into the domain model, computing
// investment value, current value and P&L. When the broker omits a last
// price the average price is used so values stay internally consistent.
func transformHolding(raw rawHolding) domain.Holding {
	currentPrice := raw.LastPrice
	if currentPrice <= 0 {
		currentPrice = raw.AveragePrice
	}

	investment := raw.Quantity * raw.AveragePrice
	current := raw.Quantity * currentPrice
	pnl := current - investment

	pnlPercent := 0.0
	if investment > 0 {
		pnlPercent = pnl / investment * 100
	}

	exchange := raw.Exchange
	if exchange == "" {
		exchange = "NSE"
	}

	return domain.Holding{
		Symbol:          normalizeSymbol(raw.TradingSymbol),
		ISIN:            raw.ISIN,
		Exchange:        exchange,
		Quantity:        raw.Quantity,
		AveragePrice:    raw.AveragePrice,
		CurrentPrice:    currentPrice,
		InvestmentValue: investment,
		CurrentValue:    current,
		PnL:             pnl,
		PnLPercent:      pnlPercent,
	}
}

// transformQuote converts a raw quote into a PriceSnapshot, backfilling OHLC
// fields from the last price when the broker omits them.
func transformQuote(symbol string, raw rawQuote) domain.PriceSnapshot {
	open := raw.Open
	if open <= 0 {
		open = raw.LastPrice
	}
	high := raw.High
	if high <= 0 {
		high = raw.LastPrice
	}
	low := raw.Low
	if low <= 0 {
		low = raw.LastPrice
	}
	close := raw.Close
	if close <= 0 {
		close = raw.LastPrice
	}

	return domain.PriceSnapshot{
		FetchedAt:     time.Now(),
		Symbol:        normalizeSymbol(symbol),
		CurrentPrice:  raw.LastPrice,
		OpenPrice:     open,
		HighPrice:     high,
		LowPrice:      low,
		ClosePrice:    close,
		ChangePercent: raw.DayChangePerc,
		Volume:        raw.Volume,
	}
}

// transformCandles converts [ts, o, h, l, c, v] rows into Candles, dropping
// malformed rows.
func transformCandles(rows [][]float64) []domain.Candle {
	candles := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		candles = append(candles, domain.Candle{
			Time:   time.Unix(int64(row[0]), 0),
			Open:   row[1],
			High:   row[2],
			Low:    row[3],
			Close:  row[4],
			Volume: int64(row[5]),
		})
	}
	return candles
}

func transformOrderResult(raw rawOrderResult, symbol, side string, quantity int) *domain.OrderResult {
	status := raw.Status
	if status == "" {
		status = "PLACED"
	}
	return &domain.OrderResult{
		OrderID:  raw.OrderID,
		Symbol:   normalizeSymbol(symbol),
		Side:     side,
		Quantity: quantity,
		Price:    raw.Price,
		Status:   status,
	}
}
