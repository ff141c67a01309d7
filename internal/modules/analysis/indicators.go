// Package analysis implements per-symbol technical analysis: indicators
// derived from the current trading day, a heuristic return predictor, and
// the analyzer service that assembles full StockAnalysis records.
package analysis

import (
	"github.com/markcheno/go-talib"

	"github.com/akshaybhat/equiscan/internal/domain"
)

// minHistoryBars is the minimum daily candle count needed for the
// history-based indicators (bounded by the slow SMA window).
const minHistoryBars = 20

// ComputeIndicators derives intraday technical indicators from a snapshot.
// All outputs are clamped: MomentumScore to [0,100], PricePosition to [0,1].
func ComputeIndicators(snap domain.PriceSnapshot) domain.TechnicalIndicators {
	if snap.CurrentPrice <= 0 {
		return domain.TechnicalIndicators{
			PricePosition: 0.5,
			MomentumScore: 50,
		}
	}

	dayRange := 0.0
	if snap.HighPrice > 0 && snap.LowPrice > 0 {
		dayRange = snap.HighPrice - snap.LowPrice
	}

	pricePosition := 0.5
	if dayRange > 0 {
		pricePosition = clamp((snap.CurrentPrice-snap.LowPrice)/dayRange, 0, 1)
	}

	priceVsOpen := 0.0
	if snap.OpenPrice > 0 {
		priceVsOpen = (snap.CurrentPrice - snap.OpenPrice) / snap.OpenPrice
	}

	return domain.TechnicalIndicators{
		DayRange:       dayRange,
		PricePosition:  pricePosition,
		PriceVsOpen:    priceVsOpen,
		ChangeFraction: snap.ChangePercent / 100,
		Volatility:     dayRange / snap.CurrentPrice,
		MomentumScore:  momentumScore(snap),
	}
}

// momentumScore scores the day's price action on a 0-100 scale with a
// neutral baseline of 50. Three factors contribute: the day's percent change
// (up to ±20 points), the position within the day's range (±15) and the
// price relative to open (±15).
func momentumScore(snap domain.PriceSnapshot) float64 {
	if snap.CurrentPrice <= 0 {
		return 50
	}

	score := 50.0

	score += clamp(snap.ChangePercent, -20, 20)

	if dayRange := snap.HighPrice - snap.LowPrice; dayRange > 0 {
		position := (snap.CurrentPrice - snap.LowPrice) / dayRange
		score += (position - 0.5) * 30
	}

	if snap.OpenPrice > 0 {
		vsOpen := (snap.CurrentPrice - snap.OpenPrice) / snap.OpenPrice * 100
		score += clamp(vsOpen*3, -15, 15)
	}

	return clamp(score, 0, 100)
}

// ComputeHistoryIndicators derives RSI(14) and an SMA trend strength from
// daily candle history. Returns nil when there is not enough history, which
// degrades the analysis to the snapshot-only path.
func ComputeHistoryIndicators(candles []domain.Candle) *domain.HistoryIndicators {
	if len(candles) < minHistoryBars {
		return nil
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	rsi := talib.Rsi(closes, 14)
	smaFast := talib.Sma(closes, 5)
	smaSlow := talib.Sma(closes, 20)

	last := len(closes) - 1
	trend := 0.0
	if smaSlow[last] > 0 {
		trend = clamp((smaFast[last]-smaSlow[last])/smaSlow[last]*10, -1, 1)
	}

	return &domain.HistoryIndicators{
		RSI:           rsi[last],
		TrendStrength: trend,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
