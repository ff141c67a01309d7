package screening

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/akshaybhat/equiscan/internal/domain"
)

// fakeAnalyzer serves preset analyses and errors for failSymbols.
type fakeAnalyzer struct {
	analyses    map[string]domain.StockAnalysis
	failSymbols map[string]bool
}

func (f *fakeAnalyzer) AnalyzeSymbol(_ context.Context, symbol string) (*domain.StockAnalysis, error) {
	if f.failSymbols[symbol] {
		return nil, domain.ErrSourceUnavailable
	}
	if a, ok := f.analyses[symbol]; ok {
		a.Symbol = symbol
		return &a, nil
	}
	return &domain.StockAnalysis{Symbol: symbol, Recommendation: domain.RecommendationHold}, nil
}

// passthroughEnricher leaves preset overall scores untouched.
type passthroughEnricher struct{}

func (passthroughEnricher) Score(_ *domain.StockAnalysis, _ domain.MarketSentimentSnapshot) {}

type fakeSentiment struct {
	calls int
}

func (f *fakeSentiment) Snapshot(_ context.Context) domain.MarketSentimentSnapshot {
	f.calls++
	return domain.MarketSentimentSnapshot{OverallSentiment: domain.PolarityNeutral}
}

func newTestScreener(analyzer SymbolAnalyzer, sentiment SnapshotProvider) *Screener {
	batch := NewBatchAnalyzer(analyzer, passthroughEnricher{}, 0.15, zerolog.Nop())
	return NewScreener(batch, sentiment, zerolog.Nop(),
		WithPacer(rate.NewLimiter(rate.Inf, 1)))
}

func TestBatchClassification(t *testing.T) {
	analyzer := &fakeAnalyzer{analyses: map[string]domain.StockAnalysis{
		"ALPHA": {Recommendation: domain.RecommendationBuy, PredictedReturn: 0.20, OverallScore: 0.8},
		"BETA":  {Recommendation: domain.RecommendationSell, PredictedReturn: -0.10},
		"GAMMA": {Recommendation: domain.RecommendationHold, PredictedReturn: 0.05},
	}}
	batch := NewBatchAnalyzer(analyzer, passthroughEnricher{}, 0.15, zerolog.Nop())

	result := batch.AnalyzeBatch(context.Background(), []string{"ALPHA", "BETA", "GAMMA"}, domain.MarketSentimentSnapshot{})

	require.Len(t, result.BuyCandidates, 1)
	assert.Equal(t, "ALPHA", result.BuyCandidates[0].Symbol)
	require.Len(t, result.SellCandidates, 1)
	assert.Equal(t, "BETA", result.SellCandidates[0].Symbol)
	assert.Equal(t, 3, result.Stats.TotalAnalyzed)
	assert.Equal(t, 1.0, result.Stats.SuccessRate)
}

func TestBatchBuyRequiresTargetReturn(t *testing.T) {
	// A BUY recommendation below the target return is not a candidate.
	analyzer := &fakeAnalyzer{analyses: map[string]domain.StockAnalysis{
		"ALPHA": {Recommendation: domain.RecommendationBuy, PredictedReturn: 0.12},
	}}
	batch := NewBatchAnalyzer(analyzer, passthroughEnricher{}, 0.15, zerolog.Nop())

	result := batch.AnalyzeBatch(context.Background(), []string{"ALPHA"}, domain.MarketSentimentSnapshot{})

	assert.Empty(t, result.BuyCandidates)
	assert.Len(t, result.Analyzed, 1)
}

func TestBatchPartialFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{
		analyses: map[string]domain.StockAnalysis{
			"ALPHA": {Recommendation: domain.RecommendationHold},
			"GAMMA": {Recommendation: domain.RecommendationHold},
		},
		failSymbols: map[string]bool{"BETA": true, "DELTA": true},
	}
	batch := NewBatchAnalyzer(analyzer, passthroughEnricher{}, 0.15, zerolog.Nop())

	result := batch.AnalyzeBatch(context.Background(), []string{"ALPHA", "BETA", "GAMMA", "DELTA"}, domain.MarketSentimentSnapshot{})

	assert.Equal(t, 2, result.Stats.TotalAnalyzed)
	assert.Equal(t, 0.5, result.Stats.SuccessRate)
}

func TestBatchDeterministicOrdering(t *testing.T) {
	analyses := make(map[string]domain.StockAnalysis)
	symbols := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		symbol := fmt.Sprintf("SYM%02d", i)
		symbols = append(symbols, symbol)
		analyses[symbol] = domain.StockAnalysis{
			Recommendation:  domain.RecommendationBuy,
			PredictedReturn: 0.15 + float64(i%7)*0.01,
			OverallScore:    0.5 + float64(i%5)*0.05,
		}
	}
	batch := NewBatchAnalyzer(&fakeAnalyzer{analyses: analyses}, passthroughEnricher{}, 0.15, zerolog.Nop())

	first := batch.AnalyzeBatch(context.Background(), symbols, domain.MarketSentimentSnapshot{})
	second := batch.AnalyzeBatch(context.Background(), symbols, domain.MarketSentimentSnapshot{})

	require.Equal(t, len(first.BuyCandidates), len(second.BuyCandidates))
	for i := range first.BuyCandidates {
		assert.Equal(t, first.BuyCandidates[i].Symbol, second.BuyCandidates[i].Symbol)
	}
	for i := 1; i < len(first.BuyCandidates); i++ {
		assert.GreaterOrEqual(t, first.BuyCandidates[i-1].OverallScore, first.BuyCandidates[i].OverallScore)
	}
}

func TestWindowSlice(t *testing.T) {
	universe := []string{"A", "B", "C", "D", "E"}

	assert.Equal(t, []string{"A", "B", "C"}, windowSlice(universe, 0, 3))
	assert.Equal(t, []string{"D", "E", "A"}, windowSlice(universe, 3, 3))
	// Offset wraps modulo the universe length.
	assert.Equal(t, []string{"B", "C", "D"}, windowSlice(universe, 6, 3))
	// Window size capped at the universe length.
	assert.Equal(t, universe, windowSlice(universe, 0, 10))
}

func TestScreenSingleSentimentSnapshot(t *testing.T) {
	sentiment := &fakeSentiment{}
	screener := newTestScreener(&fakeAnalyzer{}, sentiment)

	universe := make([]string, 60)
	for i := range universe {
		universe[i] = fmt.Sprintf("SYM%02d", i)
	}

	result, err := screener.Screen(context.Background(), universe, 100_000, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, sentiment.calls)
	assert.Len(t, result.Iterations, 3)
	assert.NotEmpty(t, result.RunID)
}

func TestScreenEmptyUniverse(t *testing.T) {
	screener := newTestScreener(&fakeAnalyzer{}, &fakeSentiment{})

	_, err := screener.Screen(context.Background(), nil, 100_000, 3)
	require.ErrorIs(t, err, domain.ErrNoData)
}

func TestScreenPoolsBounded(t *testing.T) {
	analyses := make(map[string]domain.StockAnalysis)
	universe := make([]string, 80)
	for i := range universe {
		symbol := fmt.Sprintf("SYM%02d", i)
		universe[i] = symbol
		if i%2 == 0 {
			analyses[symbol] = domain.StockAnalysis{
				Recommendation:  domain.RecommendationStrongBuy,
				PredictedReturn: 0.16 + float64(i)*0.001,
				OverallScore:    0.5 + float64(i)*0.005,
				CurrentPrice:    100,
			}
		} else {
			analyses[symbol] = domain.StockAnalysis{
				Recommendation:  domain.RecommendationSell,
				PredictedReturn: -0.01 - float64(i)*0.001,
			}
		}
	}
	screener := newTestScreener(&fakeAnalyzer{analyses: analyses}, &fakeSentiment{})

	result, err := screener.Screen(context.Background(), universe, 100_000, 4)
	require.NoError(t, err)

	assert.Len(t, result.TopBuyCandidates, maxBuyPool)
	assert.Len(t, result.TopSellCandidates, maxSellPool)

	for i := 1; i < len(result.TopBuyCandidates); i++ {
		assert.GreaterOrEqual(t, result.TopBuyCandidates[i-1].OverallScore, result.TopBuyCandidates[i].OverallScore)
	}
	for i := 1; i < len(result.TopSellCandidates); i++ {
		assert.LessOrEqual(t, result.TopSellCandidates[i-1].PredictedReturn, result.TopSellCandidates[i].PredictedReturn)
	}
}

func TestBuildAllocationPlanSingleCandidate(t *testing.T) {
	buys := []domain.StockAnalysis{{
		Symbol:          "ALPHA",
		CurrentPrice:    500,
		OverallScore:    1.0,
		PredictedReturn: 0.20,
	}}

	plan := BuildAllocationPlan(buys, nil, 100_000)

	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, 30, plan.Allocations[0].Shares)
	assert.InDelta(t, 15_000, plan.Allocations[0].InvestmentAmount, 1e-9)
	assert.InDelta(t, 85_000, plan.RemainingBudget, 1e-9)
	assert.InDelta(t, 15_000, plan.TotalInvested, 1e-9)
}

func TestBuildAllocationPlanBudgetConserved(t *testing.T) {
	buys := make([]domain.StockAnalysis, 10)
	for i := range buys {
		buys[i] = domain.StockAnalysis{
			Symbol:          fmt.Sprintf("SYM%02d", i),
			CurrentPrice:    float64(73 + i*31),
			OverallScore:    1.0 - float64(i)*0.05,
			PredictedReturn: 0.18,
		}
	}
	budget := 100_000.0

	plan := BuildAllocationPlan(buys, nil, budget)

	total := 0.0
	for _, alloc := range plan.Allocations {
		total += alloc.InvestmentAmount
		// Stricter of the two caps applies at allocation time.
		assert.LessOrEqual(t, alloc.InvestmentAmount, budget*maxTotalFraction+1e-9)
	}
	assert.InDelta(t, budget, total+plan.RemainingBudget, 1e-9)
	assert.InDelta(t, plan.TotalInvested, total, 1e-9)
}

func TestBuildAllocationPlanSkipsUnusableCandidates(t *testing.T) {
	buys := []domain.StockAnalysis{
		{Symbol: "NOPRICE", CurrentPrice: 0, OverallScore: 1.0},
		// Price above the per-stock cap, so integer shares round to zero.
		{Symbol: "PRICEY", CurrentPrice: 20_000, OverallScore: 0.9},
		{Symbol: "OK", CurrentPrice: 100, OverallScore: 0.8, PredictedReturn: 0.2},
	}

	plan := BuildAllocationPlan(buys, nil, 100_000)

	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, "OK", plan.Allocations[0].Symbol)
}

func TestBuildAllocationPlanSellRecommendations(t *testing.T) {
	sells := make([]domain.StockAnalysis, 8)
	for i := range sells {
		sells[i] = domain.StockAnalysis{
			Symbol:          fmt.Sprintf("SELL%d", i),
			PredictedReturn: -0.05 - float64(i)*0.01,
		}
	}

	plan := BuildAllocationPlan(nil, sells, 100_000)

	assert.Len(t, plan.RecommendedSells, maxSellRecommendations)
	assert.Zero(t, plan.TotalInvested)
	assert.InDelta(t, 100_000, plan.RemainingBudget, 1e-9)
}
