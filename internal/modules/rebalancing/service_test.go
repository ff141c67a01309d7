package rebalancing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshaybhat/equiscan/internal/domain"
	"github.com/akshaybhat/equiscan/internal/modules/portfolio"
	"github.com/akshaybhat/equiscan/internal/modules/screening"
)

type fakeBroker struct {
	failSymbols map[string]bool
	sells       []string
	buys        []string
}

func (f *fakeBroker) PlaceSellOrder(_ context.Context, symbol string, quantity int, _ float64) (*domain.OrderResult, error) {
	if f.failSymbols[symbol] {
		return nil, domain.ErrSourceUnavailable
	}
	f.sells = append(f.sells, symbol)
	return &domain.OrderResult{OrderID: uuid.NewString(), Symbol: symbol, Side: "SELL", Quantity: quantity, Status: "OPEN"}, nil
}

func (f *fakeBroker) PlaceBuyOrder(_ context.Context, symbol string, quantity int, _ float64) (*domain.OrderResult, error) {
	if f.failSymbols[symbol] {
		return nil, domain.ErrSourceUnavailable
	}
	f.buys = append(f.buys, symbol)
	return &domain.OrderResult{OrderID: uuid.NewString(), Symbol: symbol, Side: "BUY", Quantity: quantity, Status: "OPEN"}, nil
}

type fakePortfolio struct {
	report *portfolio.PerformanceReport
	err    error
}

func (f *fakePortfolio) AnalyzePerformance(_ context.Context) (*portfolio.PerformanceReport, error) {
	return f.report, f.err
}

type fakeScreener struct {
	allocations []screening.Allocation
	err         error
	gotBudget   float64
}

func (f *fakeScreener) Screen(_ context.Context, _ []string, budget float64, _ int) (*screening.Result, error) {
	f.gotBudget = budget
	if f.err != nil {
		return nil, f.err
	}
	return &screening.Result{
		RunID: uuid.NewString(),
		Plan:  screening.AllocationPlan{Allocations: f.allocations},
	}, nil
}

func sellCandidate(symbol string, quantity int, value float64) portfolio.SellCandidate {
	return portfolio.SellCandidate{
		Symbol:    symbol,
		Quantity:  quantity,
		SaleValue: value,
		SaleType:  portfolio.SaleFull,
	}
}

func newTestService(broker *fakeBroker, p *fakePortfolio, s *fakeScreener) *Service {
	return NewService(broker, p, s, []string{"ALPHA", "BETA"}, 50_000, 3, zerolog.Nop())
}

func TestRebalanceBudgetIsActualProceeds(t *testing.T) {
	broker := &fakeBroker{failSymbols: map[string]bool{"FAILSELL": true}}
	p := &fakePortfolio{report: &portfolio.PerformanceReport{
		SellCandidates: []portfolio.SellCandidate{
			sellCandidate("WORST", 10, 20_000),
			sellCandidate("FAILSELL", 5, 10_000),
		},
	}}
	s := &fakeScreener{}

	report, err := newTestService(broker, p, s).Rebalance(context.Background())
	require.NoError(t, err)

	// Only the successful sell contributes to the buy budget.
	assert.InDelta(t, 20_000, report.SellProceeds, 1e-9)
	assert.InDelta(t, 20_000, s.gotBudget, 1e-9)
}

func TestRebalanceMixedOutcome(t *testing.T) {
	broker := &fakeBroker{failSymbols: map[string]bool{"FAILBUY": true}}
	p := &fakePortfolio{report: &portfolio.PerformanceReport{
		SellCandidates: []portfolio.SellCandidate{sellCandidate("WORST", 10, 30_000)},
	}}
	s := &fakeScreener{allocations: []screening.Allocation{
		{Symbol: "GOOD", Shares: 10, InvestmentAmount: 5_000},
		{Symbol: "FAILBUY", Shares: 10, InvestmentAmount: 5_000},
		{Symbol: "ALSO_GOOD", Shares: 10, InvestmentAmount: 5_000},
	}}

	report, err := newTestService(broker, p, s).Rebalance(context.Background())
	require.NoError(t, err)

	// The failed buy is captured but does not halt the remaining orders.
	require.Len(t, report.BuyOrders, 3)
	assert.Equal(t, StatusPlaced, report.BuyOrders[0].Status)
	assert.Equal(t, StatusFailed, report.BuyOrders[1].Status)
	assert.NotEmpty(t, report.BuyOrders[1].Error)
	assert.Equal(t, StatusPlaced, report.BuyOrders[2].Status)

	assert.InDelta(t, 10_000, report.TotalInvested, 1e-9)
	assert.InDelta(t, 20_000, report.RemainingBudget, 1e-9)
}

func TestRebalanceBuyCapEnforced(t *testing.T) {
	broker := &fakeBroker{}
	p := &fakePortfolio{report: &portfolio.PerformanceReport{
		SellCandidates: []portfolio.SellCandidate{sellCandidate("WORST", 10, 40_000)},
	}}
	// Allocation above 25% of the 50,000 configured amount gets trimmed.
	s := &fakeScreener{allocations: []screening.Allocation{
		{Symbol: "BIG", Shares: 150, InvestmentAmount: 15_000},
	}}

	report, err := newTestService(broker, p, s).Rebalance(context.Background())
	require.NoError(t, err)

	require.Len(t, report.BuyOrders, 1)
	assert.Equal(t, 125, report.BuyOrders[0].Quantity)
	assert.InDelta(t, 12_500, report.BuyOrders[0].Value, 1e-9)
}

func TestRebalanceNoProceedsSkipsBuySide(t *testing.T) {
	broker := &fakeBroker{failSymbols: map[string]bool{"WORST": true}}
	p := &fakePortfolio{report: &portfolio.PerformanceReport{
		SellCandidates: []portfolio.SellCandidate{sellCandidate("WORST", 10, 20_000)},
	}}
	s := &fakeScreener{}

	report, err := newTestService(broker, p, s).Rebalance(context.Background())
	require.NoError(t, err)

	assert.Zero(t, s.gotBudget)
	assert.Empty(t, report.BuyOrders)
	assert.NotEmpty(t, report.Warnings)
}

func TestRebalanceScreeningFailureKeepsSellReport(t *testing.T) {
	broker := &fakeBroker{}
	p := &fakePortfolio{report: &portfolio.PerformanceReport{
		SellCandidates: []portfolio.SellCandidate{sellCandidate("WORST", 10, 20_000)},
	}}
	s := &fakeScreener{err: domain.ErrNoData}

	report, err := newTestService(broker, p, s).Rebalance(context.Background())
	require.NoError(t, err)

	require.Len(t, report.SellOrders, 1)
	assert.Equal(t, StatusPlaced, report.SellOrders[0].Status)
	assert.NotEmpty(t, report.Warnings)
	assert.InDelta(t, 20_000, report.RemainingBudget, 1e-9)
}

func TestRebalancePortfolioFailure(t *testing.T) {
	p := &fakePortfolio{err: domain.ErrAuth}

	_, err := newTestService(&fakeBroker{}, p, &fakeScreener{}).Rebalance(context.Background())
	require.ErrorIs(t, err, domain.ErrAuth)
}
