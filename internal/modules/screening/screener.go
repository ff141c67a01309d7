package screening

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/akshaybhat/equiscan/internal/domain"
)

// minBatchSize keeps tiny universes from degenerating into single-symbol
// iterations.
const minBatchSize = 20

// iterationInterval spaces iterations out of politeness toward rate-limited
// market-data sources. It delays between iterations, not before the first.
const iterationInterval = 2 * time.Second

// SnapshotProvider supplies the market-sentiment snapshot shared by a run.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) domain.MarketSentimentSnapshot
}

// Screener drives batched analysis across successive slices of the
// universe, aggregating bounded top-buy and top-sell candidate pools, and
// finalizes a budget-constrained allocation plan. Iterations are strictly
// sequential; only the per-symbol analysis inside a batch is parallel.
type Screener struct {
	batch     *BatchAnalyzer
	sentiment SnapshotProvider
	pacer     *rate.Limiter
	log       zerolog.Logger
}

// ScreenerOption configures a Screener.
type ScreenerOption func(*Screener)

// WithPacer overrides the inter-iteration limiter. Tests use an unlimited
// pacer to avoid real sleeps.
func WithPacer(pacer *rate.Limiter) ScreenerOption {
	return func(s *Screener) { s.pacer = pacer }
}

// NewScreener creates a screener.
func NewScreener(batch *BatchAnalyzer, sentiment SnapshotProvider, log zerolog.Logger, opts ...ScreenerOption) *Screener {
	s := &Screener{
		batch:     batch,
		sentiment: sentiment,
		pacer:     rate.NewLimiter(rate.Every(iterationInterval), 1),
		log:       log.With().Str("service", "screening").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Screen runs the full multi-iteration screening over the universe. The
// sentiment snapshot is fetched once and shared by every iteration so the
// run stays internally consistent. The loop is bounded: it always runs
// exactly iterations batches and terminates in predictable time.
func (s *Screener) Screen(ctx context.Context, universe []string, budget float64, iterations int) (*Result, error) {
	if len(universe) == 0 {
		return nil, fmt.Errorf("screen: %w: empty universe", domain.ErrNoData)
	}
	if iterations <= 0 {
		iterations = 1
	}

	result := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Budget:    budget,
		Sentiment: s.sentiment.Snapshot(ctx),
	}

	batchSize := len(universe) / iterations
	if batchSize < minBatchSize {
		batchSize = minBatchSize
	}
	if batchSize > len(universe) {
		batchSize = len(universe)
	}

	s.log.Info().
		Str("run_id", result.RunID).
		Int("universe", len(universe)).
		Int("iterations", iterations).
		Int("batch_size", batchSize).
		Float64("budget", budget).
		Msg("Starting screening run")

	for i := 0; i < iterations; i++ {
		if err := s.pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("screen: %w", err)
		}

		symbols := windowSlice(universe, i*batchSize, batchSize)
		batch := s.batch.AnalyzeBatch(ctx, symbols, result.Sentiment)

		result.Iterations = append(result.Iterations, Iteration{
			Index:          i + 1,
			Symbols:        symbols,
			BuyCandidates:  batch.BuyCandidates,
			SellCandidates: batch.SellCandidates,
			Stats:          batch.Stats,
		})
		s.mergeCandidates(result, batch)

		s.log.Info().
			Int("iteration", i+1).
			Int("analyzed", batch.Stats.TotalAnalyzed).
			Int("buys", batch.Stats.BuyCount).
			Int("sells", batch.Stats.SellCount).
			Msg("Iteration complete")
	}

	result.Plan = BuildAllocationPlan(result.TopBuyCandidates, result.TopSellCandidates, budget)
	result.FinishedAt = time.Now()
	result.Summary = buildSummary(result, len(universe))

	s.log.Info().
		Str("run_id", result.RunID).
		Int("buy_recommendations", len(result.Plan.Allocations)).
		Float64("total_invested", result.Plan.TotalInvested).
		Msg("Screening run finished")
	return result, nil
}

// windowSlice returns size symbols starting at offset, wrapping modulo the
// universe length. Iterations beyond the natural partition count revisit
// earlier symbols instead of erroring.
func windowSlice(universe []string, offset, size int) []string {
	n := len(universe)
	start := offset % n

	window := make([]string, 0, size)
	for i := 0; i < size && i < n; i++ {
		window = append(window, universe[(start+i)%n])
	}
	return window
}

// mergeCandidates folds a batch's candidates into the bounded run-level
// pools: re-sort, then truncate.
func (s *Screener) mergeCandidates(result *Result, batch BatchResult) {
	result.TopBuyCandidates = append(result.TopBuyCandidates, batch.BuyCandidates...)
	SortBuyCandidates(result.TopBuyCandidates)
	if len(result.TopBuyCandidates) > maxBuyPool {
		result.TopBuyCandidates = result.TopBuyCandidates[:maxBuyPool]
	}

	result.TopSellCandidates = append(result.TopSellCandidates, batch.SellCandidates...)
	SortSellCandidates(result.TopSellCandidates)
	if len(result.TopSellCandidates) > maxSellPool {
		result.TopSellCandidates = result.TopSellCandidates[:maxSellPool]
	}
}

func buildSummary(result *Result, universeSize int) Summary {
	summary := Summary{
		TotalIterations: len(result.Iterations),
		MarketSentiment: string(result.Sentiment.OverallSentiment),
		FinalBuyCount:   len(result.Plan.Allocations),
		FinalSellCount:  len(result.Plan.RecommendedSells),
	}
	for _, iter := range result.Iterations {
		summary.TotalAnalyzed += iter.Stats.TotalAnalyzed
		summary.BuyCandidatesFound += iter.Stats.BuyCount
		summary.SellCandidatesFound += iter.Stats.SellCount
	}
	if universeSize > 0 {
		summary.ScreeningEfficiency = float64(summary.TotalAnalyzed) / float64(universeSize)
	}
	return summary
}
