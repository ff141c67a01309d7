// Package domain provides core domain models and types.
package domain

import "time"

// Recommendation is the discrete trade signal for a symbol.
type Recommendation string

const (
	RecommendationStrongBuy  Recommendation = "STRONG_BUY"
	RecommendationBuy        Recommendation = "BUY"
	RecommendationHold       Recommendation = "HOLD"
	RecommendationSell       Recommendation = "SELL"
	RecommendationStrongSell Recommendation = "STRONG_SELL"
)

// IsBuy reports whether the recommendation is on the buy side.
func (r Recommendation) IsBuy() bool {
	return r == RecommendationBuy || r == RecommendationStrongBuy
}

// IsSell reports whether the recommendation is on the sell side.
func (r Recommendation) IsSell() bool {
	return r == RecommendationSell || r == RecommendationStrongSell
}

// Confidence describes how much weight an analysis deserves.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Polarity is a coarse sentiment bucket.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNeutral  Polarity = "neutral"
	PolarityNegative Polarity = "negative"
)

// PriceSnapshot holds the current trading-day quote for a symbol.
// Immutable once fetched; staleness is governed by the price cache TTL.
type PriceSnapshot struct {
	FetchedAt     time.Time `json:"fetched_at"`
	Symbol        string    `json:"symbol"`
	CurrentPrice  float64   `json:"current_price"`
	OpenPrice     float64   `json:"open_price"`
	HighPrice     float64   `json:"high_price"`
	LowPrice      float64   `json:"low_price"`
	ClosePrice    float64   `json:"close_price"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
}

// Candle is a single daily OHLCV bar, used for history-based indicators.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// TechnicalIndicators are derived from a single PriceSnapshot.
// MomentumScore is clamped to [0,100] and PricePosition to [0,1].
type TechnicalIndicators struct {
	DayRange       float64 `json:"day_range"`
	PricePosition  float64 `json:"price_position"`
	PriceVsOpen    float64 `json:"price_vs_open"`
	ChangeFraction float64 `json:"change_fraction"`
	Volatility     float64 `json:"volatility"`
	MomentumScore  float64 `json:"momentum_score"`
}

// HistoryIndicators are optional indicators computed from daily candle
// history. They are absent (nil pointer on StockAnalysis) when the gateway
// cannot supply enough history.
type HistoryIndicators struct {
	RSI           float64 `json:"rsi"`
	TrendStrength float64 `json:"trend_strength"`
}

// MarketContext annotates an analysis with how it sits against prevailing
// market sentiment. It never changes the recommendation itself.
type MarketContext struct {
	Alignment      string  `json:"market_alignment"` // favorable, challenging, neutral
	SentimentBoost float64 `json:"sentiment_boost"`
	RiskAdjustment float64 `json:"risk_adjustment"`
}

// StockAnalysis is the per-symbol analysis record. It is created fresh per
// analysis call. The scorer enriches it additively (OverallScore,
// MarketContext, appended Reasoning); nothing else mutates it afterwards.
type StockAnalysis struct {
	Symbol         string         `json:"symbol"`
	CurrentPrice   float64        `json:"current_price"`
	OpenPrice      float64        `json:"open_price"`
	HighPrice      float64        `json:"high_price"`
	LowPrice       float64        `json:"low_price"`
	Volume         int64          `json:"volume"`
	ChangePercent  float64        `json:"change_percent"`
	DayRange       float64        `json:"day_range"`
	PricePosition  float64        `json:"price_position"`
	PriceVsOpen    float64        `json:"price_vs_open"`
	Volatility     float64        `json:"volatility"`
	MomentumScore  float64        `json:"momentum_score"`
	PredictedReturn float64       `json:"predicted_return"`
	HorizonDays    int            `json:"horizon_days"`
	TechnicalScore float64        `json:"technical_score"` // [-1,1]
	RiskScore      float64        `json:"risk_score"`      // [0,1]
	Confidence     Confidence     `json:"analysis_confidence"`
	Recommendation Recommendation `json:"recommendation"`
	Reasoning      []string       `json:"reasoning"`

	History *HistoryIndicators `json:"history_indicators,omitempty"`

	// Enrichment fields, set by the scorer.
	OverallScore  float64        `json:"overall_score"`
	MarketContext *MarketContext `json:"market_context,omitempty"`
}

// GlobalEvent is a market-moving event carried in the sentiment snapshot.
type GlobalEvent struct {
	Event     string `json:"event"`
	Impact    string `json:"impact"`
	Sentiment string `json:"sentiment"`
}

// SourceFragment is the raw sentiment contribution of one news source.
type SourceFragment struct {
	Source          string            `json:"source"`
	SentimentScore  float64           `json:"sentiment_score"`
	PositiveSignals int               `json:"positive_signals"`
	NegativeSignals int               `json:"negative_signals"`
	Themes          []string          `json:"themes"`
	SectorSentiment map[string]string `json:"sector_sentiment,omitempty"`
	SampleHeadlines []string          `json:"sample_headlines,omitempty"`
}

// MarketSentimentSnapshot is the aggregated market mood at a point in time.
// Scoring components treat it as read-only input.
type MarketSentimentSnapshot struct {
	FetchedAt        time.Time         `json:"fetched_at"`
	OverallSentiment Polarity          `json:"overall_sentiment"`
	SentimentScore   float64           `json:"sentiment_score"`
	KeyThemes        []string          `json:"key_themes"`
	SectorSentiment  map[string]string `json:"sector_sentiment"`
	GlobalEvents     []GlobalEvent     `json:"global_events"`
	SourceSummaries  []SourceFragment  `json:"news_summary"`
}

// Holding is a position currently held in the brokerage account.
// The core reads holdings; it never mutates them directly.
type Holding struct {
	Symbol          string  `json:"symbol"`
	ISIN            string  `json:"isin"`
	Exchange        string  `json:"exchange"`
	Quantity        float64 `json:"quantity"`
	AveragePrice    float64 `json:"avg_price"`
	CurrentPrice    float64 `json:"current_price"`
	InvestmentValue float64 `json:"investment_value"`
	CurrentValue    float64 `json:"current_value"`
	PnL             float64 `json:"pnl"`
	PnLPercent      float64 `json:"pnl_percent"`
}

// OrderResult is the gateway's acknowledgement of a placed order.
type OrderResult struct {
	OrderID  string  `json:"order_id"`
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Status   string  `json:"status"`
}
