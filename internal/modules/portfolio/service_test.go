package portfolio

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshaybhat/equiscan/internal/domain"
)

type fakeBroker struct {
	holdings []domain.Holding
	err      error
}

func (f *fakeBroker) GetHoldings(_ context.Context) ([]domain.Holding, error) {
	return f.holdings, f.err
}

type fakeAnalyzer struct {
	returns     map[string]float64
	failSymbols map[string]bool
}

func (f *fakeAnalyzer) AnalyzeSymbol(_ context.Context, symbol string) (*domain.StockAnalysis, error) {
	if f.failSymbols[symbol] {
		return nil, domain.ErrSourceUnavailable
	}
	return &domain.StockAnalysis{
		Symbol:          symbol,
		PredictedReturn: f.returns[symbol],
		Recommendation:  domain.RecommendationHold,
	}, nil
}

func analyzedHolding(symbol string, quantity, value, predicted float64) AnalyzedHolding {
	return AnalyzedHolding{
		Holding: domain.Holding{Symbol: symbol, Quantity: quantity, CurrentValue: value},
		Analysis: &domain.StockAnalysis{
			Symbol:          symbol,
			PredictedReturn: predicted,
		},
	}
}

func TestAnalyzePerformanceRollup(t *testing.T) {
	broker := &fakeBroker{holdings: []domain.Holding{
		{Symbol: "RELIANCE", Quantity: 10, CurrentValue: 28_000, PnL: 3_000},
		{Symbol: "SUZLON", Quantity: 100, CurrentValue: 5_000, PnL: -1_000},
	}}
	analyzer := &fakeAnalyzer{returns: map[string]float64{"RELIANCE": 0.10, "SUZLON": -0.05}}
	svc := NewService(broker, analyzer, 50_000, zerolog.Nop())

	report, err := svc.AnalyzePerformance(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalHoldings)
	assert.InDelta(t, 33_000, report.TotalValue, 1e-9)
	assert.InDelta(t, 2_000, report.TotalPnL, 1e-9)
	// Invested = 33000 - 2000 = 31000.
	assert.InDelta(t, 2_000.0/31_000.0*100, report.PnLPercent, 1e-9)

	require.Len(t, report.Underperformers, 1)
	assert.Equal(t, "SUZLON", report.Underperformers[0].Symbol)
}

func TestAnalyzePerformanceBrokerFailure(t *testing.T) {
	svc := NewService(&fakeBroker{err: domain.ErrAuth}, &fakeAnalyzer{}, 50_000, zerolog.Nop())

	_, err := svc.AnalyzePerformance(context.Background())
	require.ErrorIs(t, err, domain.ErrAuth)
}

func TestAnalyzePerformanceAnalysisFailureRanksNeutral(t *testing.T) {
	broker := &fakeBroker{holdings: []domain.Holding{
		{Symbol: "FLAKY", Quantity: 10, CurrentValue: 10_000},
	}}
	analyzer := &fakeAnalyzer{failSymbols: map[string]bool{"FLAKY": true}}
	svc := NewService(broker, analyzer, 50_000, zerolog.Nop())

	report, err := svc.AnalyzePerformance(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Holdings, 1)
	assert.Nil(t, report.Holdings[0].Analysis)
	assert.Zero(t, report.Holdings[0].PredictedReturn())
	assert.Empty(t, report.Underperformers)
}

func TestSelectSellCandidatesWorstFirst(t *testing.T) {
	holdings := []AnalyzedHolding{
		analyzedHolding("GOOD", 10, 20_000, 0.10),
		analyzedHolding("WORST", 10, 15_000, -0.12),
		analyzedHolding("BAD", 10, 10_000, -0.04),
	}

	candidates, total := SelectSellCandidates(holdings, 30_000)

	require.Len(t, candidates, 2)
	assert.Equal(t, "WORST", candidates[0].Symbol)
	assert.Equal(t, "BAD", candidates[1].Symbol)
	assert.InDelta(t, 25_000, total, 1e-9)
	assert.Equal(t, SaleFull, candidates[0].SaleType)
}

func TestSelectSellCandidatesPartialSale(t *testing.T) {
	holdings := []AnalyzedHolding{
		analyzedHolding("BIG", 60, 60_000, -0.10),
	}

	candidates, total := SelectSellCandidates(holdings, 50_000)

	require.Len(t, candidates, 1)
	assert.Equal(t, SalePartial, candidates[0].SaleType)
	// floor(50000/60000 * 60) = 50 shares, sale value pinned to the budget.
	assert.Equal(t, 50, candidates[0].Quantity)
	assert.InDelta(t, 50_000, candidates[0].SaleValue, 1e-9)
	assert.InDelta(t, 50_000, total, 1e-9)
}

func TestSelectSellCandidatesStopsAfterPartial(t *testing.T) {
	holdings := []AnalyzedHolding{
		analyzedHolding("WORST", 100, 80_000, -0.15),
		analyzedHolding("NEXT", 10, 5_000, -0.05),
	}

	candidates, total := SelectSellCandidates(holdings, 50_000)

	require.Len(t, candidates, 1)
	assert.Equal(t, "WORST", candidates[0].Symbol)
	assert.LessOrEqual(t, total, 50_000.0)
}

func TestSelectSellCandidatesNoMinimumReturnFilter(t *testing.T) {
	// Positive-return holdings are still rank-eligible when budget allows.
	holdings := []AnalyzedHolding{
		analyzedHolding("WINNER", 5, 5_000, 0.20),
		analyzedHolding("LOSER", 5, 5_000, -0.20),
	}

	candidates, _ := SelectSellCandidates(holdings, 50_000)

	require.Len(t, candidates, 2)
	assert.Equal(t, "LOSER", candidates[0].Symbol)
	assert.Equal(t, "WINNER", candidates[1].Symbol)
}

func TestSelectSellCandidatesTinyPartialSkipped(t *testing.T) {
	// A partial sale that rounds to zero shares is skipped entirely.
	holdings := []AnalyzedHolding{
		analyzedHolding("CHUNKY", 1, 100_000, -0.10),
	}

	candidates, total := SelectSellCandidates(holdings, 50_000)

	assert.Empty(t, candidates)
	assert.Zero(t, total)
}
