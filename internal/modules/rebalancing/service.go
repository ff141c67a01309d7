// Package rebalancing turns the portfolio's sell side and the screener's
// buy side into an executed order set: exit the worst predicted performers,
// then redeploy the realized cash into screened candidates.
package rebalancing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/akshaybhat/equiscan/internal/domain"
	"github.com/akshaybhat/equiscan/internal/modules/portfolio"
	"github.com/akshaybhat/equiscan/internal/modules/screening"
)

// maxBuyFraction caps each buy at 25% of the configured investment amount,
// independently of the screener's own allocation caps. The stricter cap
// wins at order time.
const maxBuyFraction = 0.25

// OrderStatus values recorded on outcomes.
const (
	StatusPlaced = "placed"
	StatusFailed = "failed"
)

// OrderPlacer is the slice of the brokerage gateway the rebalancer needs.
type OrderPlacer interface {
	PlaceBuyOrder(ctx context.Context, symbol string, quantity int, limitPrice float64) (*domain.OrderResult, error)
	PlaceSellOrder(ctx context.Context, symbol string, quantity int, limitPrice float64) (*domain.OrderResult, error)
}

// PerformanceAnalyzer supplies the sell side.
type PerformanceAnalyzer interface {
	AnalyzePerformance(ctx context.Context) (*portfolio.PerformanceReport, error)
}

// ScreenRunner supplies the buy side.
type ScreenRunner interface {
	Screen(ctx context.Context, universe []string, budget float64, iterations int) (*screening.Result, error)
}

// OrderOutcome records one attempted order. Failed orders carry the error
// text; they never halt the remaining plan.
type OrderOutcome struct {
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
	Status   string  `json:"status"`
	OrderID  string  `json:"order_id,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Report is the mixed-outcome summary of a rebalance run. Partial success
// is the normal case, not the exceptional one.
type Report struct {
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      time.Time      `json:"finished_at"`
	SellOrders      []OrderOutcome `json:"sell_orders"`
	BuyOrders       []OrderOutcome `json:"buy_orders"`
	SellProceeds    float64        `json:"sell_proceeds"`
	TotalInvested   float64        `json:"total_invested"`
	RemainingBudget float64        `json:"remaining_budget"`
	ScreeningRunID  string         `json:"screening_run_id,omitempty"`
	Warnings        []string       `json:"warnings,omitempty"`
}

// Service executes portfolio rebalancing.
type Service struct {
	broker        OrderPlacer
	portfolio     PerformanceAnalyzer
	screener      ScreenRunner
	universe      []string
	maxInvestment float64
	iterations    int
	log           zerolog.Logger
}

// NewService creates a rebalancing service.
func NewService(
	broker OrderPlacer,
	portfolioSvc PerformanceAnalyzer,
	screener ScreenRunner,
	universe []string,
	maxInvestment float64,
	iterations int,
	log zerolog.Logger,
) *Service {
	return &Service{
		broker:        broker,
		portfolio:     portfolioSvc,
		screener:      screener,
		universe:      universe,
		maxInvestment: maxInvestment,
		iterations:    iterations,
		log:           log.With().Str("service", "rebalancing").Logger(),
	}
}

// Rebalance sells the selected worst performers, screens the universe with
// the realized proceeds as budget, and places the resulting buy orders. Buy
// exposure never exceeds realized cash. Every planned order is attempted;
// individual failures are captured per order.
func (s *Service) Rebalance(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: time.Now()}

	performance, err := s.portfolio.AnalyzePerformance(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebalance: %w", err)
	}

	report.SellProceeds = s.executeSells(ctx, report, performance.SellCandidates)

	if report.SellProceeds <= 0 {
		report.Warnings = append(report.Warnings, "no sell proceeds realized, skipping buy side")
		report.RemainingBudget = 0
		report.FinishedAt = time.Now()
		return report, nil
	}

	result, err := s.screener.Screen(ctx, s.universe, report.SellProceeds, s.iterations)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("screening failed: %v", err))
		report.RemainingBudget = report.SellProceeds
		report.FinishedAt = time.Now()
		return report, nil
	}
	report.ScreeningRunID = result.RunID

	s.executeBuys(ctx, report, result.Plan.Allocations)
	report.RemainingBudget = report.SellProceeds - report.TotalInvested
	report.FinishedAt = time.Now()

	s.log.Info().
		Int("sell_orders", len(report.SellOrders)).
		Int("buy_orders", len(report.BuyOrders)).
		Float64("proceeds", report.SellProceeds).
		Float64("invested", report.TotalInvested).
		Msg("Rebalance complete")
	return report, nil
}

// executeSells attempts every planned sell and returns the realized
// proceeds. Only successful sells contribute cash to the buy side.
func (s *Service) executeSells(ctx context.Context, report *Report, candidates []portfolio.SellCandidate) float64 {
	proceeds := 0.0

	for _, candidate := range candidates {
		outcome := OrderOutcome{
			Symbol:   candidate.Symbol,
			Side:     "SELL",
			Quantity: candidate.Quantity,
			Price:    candidate.CurrentPrice,
			Value:    candidate.SaleValue,
		}

		result, err := s.broker.PlaceSellOrder(ctx, candidate.Symbol, candidate.Quantity, 0)
		if err != nil {
			outcome.Status = StatusFailed
			outcome.Error = err.Error()
			s.log.Warn().Err(err).Str("symbol", candidate.Symbol).Msg("Sell order failed")
		} else {
			outcome.Status = StatusPlaced
			outcome.OrderID = result.OrderID
			proceeds += candidate.SaleValue
		}

		report.SellOrders = append(report.SellOrders, outcome)
	}

	return proceeds
}

func (s *Service) executeBuys(ctx context.Context, report *Report, allocations []screening.Allocation) {
	for _, alloc := range allocations {
		quantity := alloc.Shares
		investment := alloc.InvestmentAmount

		// The rebalancer's own diversification ceiling, applied on top of
		// whatever the screener already enforced.
		if buyCap := s.maxInvestment * maxBuyFraction; investment > buyCap && alloc.InvestmentAmount > 0 {
			price := alloc.InvestmentAmount / float64(alloc.Shares)
			quantity = int(buyCap / price)
			investment = float64(quantity) * price
		}
		if quantity <= 0 {
			continue
		}

		outcome := OrderOutcome{
			Symbol:   alloc.Symbol,
			Side:     "BUY",
			Quantity: quantity,
			Value:    investment,
		}

		result, err := s.broker.PlaceBuyOrder(ctx, alloc.Symbol, quantity, 0)
		if err != nil {
			outcome.Status = StatusFailed
			outcome.Error = err.Error()
			s.log.Warn().Err(err).Str("symbol", alloc.Symbol).Msg("Buy order failed")
		} else {
			outcome.Status = StatusPlaced
			outcome.OrderID = result.OrderID
			report.TotalInvested += investment
		}

		report.BuyOrders = append(report.BuyOrders, outcome)
	}
}
