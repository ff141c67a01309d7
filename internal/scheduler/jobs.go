package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/akshaybhat/equiscan/internal/modules/rebalancing"
	"github.com/akshaybhat/equiscan/internal/modules/reports"
	"github.com/akshaybhat/equiscan/internal/modules/screening"
)

// jobTimeout bounds one scheduled run end to end. A full screening pass
// with pacing stays well under this.
const jobTimeout = 15 * time.Minute

// ScreenRunner runs a screening pass over the universe.
type ScreenRunner interface {
	Screen(ctx context.Context, universe []string, budget float64, iterations int) (*screening.Result, error)
}

// RebalanceRunner executes a portfolio rebalance.
type RebalanceRunner interface {
	Rebalance(ctx context.Context) (*rebalancing.Report, error)
}

// ReportSaver persists run reports.
type ReportSaver interface {
	Save(id, kind, summary string, payload any) error
}

// ScreeningJob runs a scheduled screening pass and persists the result.
type ScreeningJob struct {
	screener   ScreenRunner
	store      ReportSaver
	universe   []string
	budget     float64
	iterations int
	log        zerolog.Logger
}

// NewScreeningJob creates the scheduled screening job.
func NewScreeningJob(screener ScreenRunner, store ReportSaver, universe []string, budget float64, iterations int, log zerolog.Logger) *ScreeningJob {
	return &ScreeningJob{
		screener:   screener,
		store:      store,
		universe:   universe,
		budget:     budget,
		iterations: iterations,
		log:        log.With().Str("job", "screening").Logger(),
	}
}

// Name implements Job.
func (j *ScreeningJob) Name() string { return "screening" }

// Run implements Job.
func (j *ScreeningJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := j.screener.Screen(ctx, j.universe, j.budget, j.iterations)
	if err != nil {
		return fmt.Errorf("screening job: %w", err)
	}

	summary := fmt.Sprintf("%d buy recommendations, %.0f invested",
		len(result.Plan.Allocations), result.Plan.TotalInvested)
	if err := j.store.Save(result.RunID, reports.KindScreening, summary, result); err != nil {
		return fmt.Errorf("screening job: %w", err)
	}

	j.log.Info().Str("run_id", result.RunID).Msg("Scheduled screening complete")
	return nil
}

// RebalanceJob runs a scheduled portfolio rebalance and persists the
// report.
type RebalanceJob struct {
	rebalancer RebalanceRunner
	store      ReportSaver
	log        zerolog.Logger
}

// NewRebalanceJob creates the scheduled rebalance job.
func NewRebalanceJob(rebalancer RebalanceRunner, store ReportSaver, log zerolog.Logger) *RebalanceJob {
	return &RebalanceJob{
		rebalancer: rebalancer,
		store:      store,
		log:        log.With().Str("job", "rebalance").Logger(),
	}
}

// Name implements Job.
func (j *RebalanceJob) Name() string { return "rebalance" }

// Run implements Job.
func (j *RebalanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := j.rebalancer.Rebalance(ctx)
	if err != nil {
		return fmt.Errorf("rebalance job: %w", err)
	}

	id := report.ScreeningRunID
	if id == "" {
		id = "rebalance-" + report.StartedAt.Format("20060102-150405")
	}
	summary := fmt.Sprintf("%d sells, %d buys, %.0f proceeds",
		len(report.SellOrders), len(report.BuyOrders), report.SellProceeds)
	if err := j.store.Save(id, reports.KindRebalance, summary, report); err != nil {
		return fmt.Errorf("rebalance job: %w", err)
	}

	j.log.Info().
		Int("sell_orders", len(report.SellOrders)).
		Int("buy_orders", len(report.BuyOrders)).
		Msg("Scheduled rebalance complete")
	return nil
}
