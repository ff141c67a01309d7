// Package screening drives the multi-iteration screening engine: batched
// parallel symbol analysis over a universe, bounded candidate pools
// aggregated across iterations, and a budget-constrained allocation plan.
package screening

import (
	"time"

	"github.com/akshaybhat/equiscan/internal/domain"
)

// Candidate pool bounds. Later iterations compete against earlier ones for
// a slot; the pools are re-sorted and truncated on every merge.
const (
	maxBuyPool  = 20
	maxSellPool = 10
)

// Finalization depth: only the strongest pool entries are considered for
// allocation and sell recommendations.
const (
	maxBuyAllocations      = 10
	maxSellRecommendations = 5
)

// Stats summarizes one batch's analysis outcome.
type Stats struct {
	TotalAnalyzed int     `json:"total_analyzed"`
	BuyCount      int     `json:"buy_candidates"`
	SellCount     int     `json:"sell_candidates"`
	SuccessRate   float64 `json:"success_rate"`
}

// BatchResult is the outcome of analyzing one batch of symbols.
type BatchResult struct {
	Analyzed       []domain.StockAnalysis `json:"analyzed"`
	BuyCandidates  []domain.StockAnalysis `json:"buy_candidates"`
	SellCandidates []domain.StockAnalysis `json:"sell_candidates"`
	Stats          Stats                  `json:"analysis_stats"`
}

// Iteration records one screening iteration. Immutable once appended to the
// run's iteration sequence.
type Iteration struct {
	Index          int                    `json:"iteration"`
	Symbols        []string               `json:"symbols"`
	BuyCandidates  []domain.StockAnalysis `json:"buy_candidates"`
	SellCandidates []domain.StockAnalysis `json:"sell_candidates"`
	Stats          Stats                  `json:"analysis_stats"`
}

// Allocation is one budget slice in the final plan.
type Allocation struct {
	Symbol           string   `json:"symbol"`
	Shares           int      `json:"shares"`
	InvestmentAmount float64  `json:"investment"`
	ExpectedReturn   float64  `json:"expected_return"`
	OverallScore     float64  `json:"overall_score"`
	Reasoning        []string `json:"reasoning"`
}

// SellRecommendation is an informational exit suggestion; it consumes no
// budget.
type SellRecommendation struct {
	Symbol          string   `json:"symbol"`
	PredictedReturn float64  `json:"predicted_return"`
	Reasoning       []string `json:"reasoning"`
}

// AllocationPlan is the finalized budget split across buy candidates.
// Invariant: TotalInvested + RemainingBudget equals the input budget within
// integer-share rounding.
type AllocationPlan struct {
	Allocations      []Allocation         `json:"recommended_buys"`
	RecommendedSells []SellRecommendation `json:"recommended_sells"`
	TotalInvested    float64              `json:"total_buy_investment"`
	RemainingBudget  float64              `json:"remaining_budget"`
	Diversification  int                  `json:"diversification"`
}

// Summary aggregates run-level screening statistics.
type Summary struct {
	TotalAnalyzed       int     `json:"total_stocks_analyzed"`
	TotalIterations     int     `json:"total_iterations"`
	BuyCandidatesFound  int     `json:"buy_candidates_found"`
	SellCandidatesFound int     `json:"sell_candidates_found"`
	MarketSentiment     string  `json:"market_sentiment"`
	ScreeningEfficiency float64 `json:"screening_efficiency"`
	FinalBuyCount       int     `json:"final_buy_recommendations"`
	FinalSellCount      int     `json:"final_sell_recommendations"`
}

// Result is the full outcome of a screening run.
type Result struct {
	RunID             string                         `json:"run_id"`
	StartedAt         time.Time                      `json:"started_at"`
	FinishedAt        time.Time                      `json:"finished_at"`
	Budget            float64                        `json:"budget"`
	Sentiment         domain.MarketSentimentSnapshot `json:"market_sentiment"`
	Iterations        []Iteration                    `json:"screening_iterations"`
	TopBuyCandidates  []domain.StockAnalysis         `json:"top_buy_candidates"`
	TopSellCandidates []domain.StockAnalysis         `json:"top_sell_candidates"`
	Plan              AllocationPlan                 `json:"final_recommendations"`
	Summary           Summary                        `json:"summary"`
}
