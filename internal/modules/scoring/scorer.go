// Package scoring combines per-symbol analysis with the market-sentiment
// snapshot into a single overall score and market-context annotation.
package scoring

import (
	"fmt"
	"math"

	"github.com/akshaybhat/equiscan/internal/domain"
)

// Composite weights. The overall score is clamped to [0,1] after summing.
const (
	weightTechnical = 0.4
	weightReturn    = 0.3
	weightRisk      = 0.2
	weightSentiment = 0.1
)

// maxReturnAdequacy caps the return component so an outsized prediction
// cannot crowd out the other factors.
const maxReturnAdequacy = 2.0

// Scorer enriches StockAnalysis records. It is a pure transform: it sets
// OverallScore and MarketContext and appends to Reasoning, nothing else.
type Scorer struct {
	targetReturn float64
}

// NewScorer creates a scorer referenced to the configured target return.
func NewScorer(targetReturn float64) *Scorer {
	return &Scorer{targetReturn: targetReturn}
}

// Score enriches the analysis in place with the composite overall score and
// market-context annotation. The sentiment snapshot is read-only input; the
// recommendation itself is never changed.
func (s *Scorer) Score(analysis *domain.StockAnalysis, snap domain.MarketSentimentSnapshot) {
	ctx := marketContext(analysis.Recommendation, snap.OverallSentiment)
	analysis.MarketContext = ctx
	analysis.OverallScore = s.overallScore(analysis, ctx)

	switch ctx.Alignment {
	case "favorable":
		analysis.Reasoning = append(analysis.Reasoning, "Market sentiment aligns favorably with recommendation")
	case "challenging":
		analysis.Reasoning = append(analysis.Reasoning, "Market sentiment presents challenges to the recommendation")
	}

	if n := len(snap.GlobalEvents); n > 0 {
		analysis.Reasoning = append(analysis.Reasoning,
			fmt.Sprintf("Global events consideration: %d major events monitored", n))
	}
}

func (s *Scorer) overallScore(analysis *domain.StockAnalysis, ctx *domain.MarketContext) float64 {
	// TechnicalScore lives in [-1,1]; rescale so a neutral signal lands at
	// 0.5 rather than zeroing the component.
	score := (analysis.TechnicalScore + 1) / 2 * weightTechnical

	if s.targetReturn > 0 {
		score += math.Min(analysis.PredictedReturn/s.targetReturn, maxReturnAdequacy) * weightReturn
	}

	score += math.Max(0, 1-analysis.RiskScore) * weightRisk
	score += ctx.SentimentBoost * weightSentiment

	return math.Max(0, math.Min(1, score))
}

// marketContext derives the alignment annotation. It never alters the
// recommendation, only flags how it sits against prevailing sentiment.
func marketContext(rec domain.Recommendation, mood domain.Polarity) *domain.MarketContext {
	ctx := &domain.MarketContext{Alignment: "neutral"}

	switch {
	case mood == domain.PolarityPositive && rec.IsBuy():
		ctx.Alignment = "favorable"
		ctx.SentimentBoost = 0.2
	case mood == domain.PolarityNegative && rec.IsSell():
		ctx.Alignment = "favorable"
		ctx.SentimentBoost = 0.1
	case mood == domain.PolarityNegative && rec.IsBuy():
		ctx.Alignment = "challenging"
		ctx.RiskAdjustment = 0.1
	}

	return ctx
}
