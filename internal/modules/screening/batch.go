package screening

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/akshaybhat/equiscan/internal/domain"
)

const (
	defaultWorkers   = 5
	perSymbolTimeout = 30 * time.Second
)

// SymbolAnalyzer produces an analysis record for a single symbol.
type SymbolAnalyzer interface {
	AnalyzeSymbol(ctx context.Context, symbol string) (*domain.StockAnalysis, error)
}

// Enricher attaches overall score and market context to an analysis.
type Enricher interface {
	Score(analysis *domain.StockAnalysis, snap domain.MarketSentimentSnapshot)
}

// BatchAnalyzer analyzes a batch of symbols in parallel with a bounded
// worker pool. A symbol whose analysis fails or times out is dropped from
// the batch without aborting it; partial failure is the expected case with
// flaky market-data sources.
type BatchAnalyzer struct {
	analyzer     SymbolAnalyzer
	enricher     Enricher
	targetReturn float64
	workers      int
	timeout      time.Duration
	log          zerolog.Logger
}

// NewBatchAnalyzer creates a batch analyzer.
func NewBatchAnalyzer(analyzer SymbolAnalyzer, enricher Enricher, targetReturn float64, log zerolog.Logger) *BatchAnalyzer {
	return &BatchAnalyzer{
		analyzer:     analyzer,
		enricher:     enricher,
		targetReturn: targetReturn,
		workers:      defaultWorkers,
		timeout:      perSymbolTimeout,
		log:          log.With().Str("component", "batch_analyzer").Logger(),
	}
}

type job struct {
	index  int
	symbol string
}

type jobResult struct {
	index    int
	analysis *domain.StockAnalysis
}

// AnalyzeBatch analyzes symbols in parallel and classifies the survivors
// into buy and sell candidates. Candidate lists are deterministically
// sorted; worker completion order never leaks into output ordering.
func (b *BatchAnalyzer) AnalyzeBatch(ctx context.Context, symbols []string, snap domain.MarketSentimentSnapshot) BatchResult {
	if len(symbols) == 0 {
		return BatchResult{}
	}

	jobs := make(chan job, len(symbols))
	results := make(chan jobResult, len(symbols))

	workers := b.workers
	if len(symbols) < workers {
		workers = len(symbols)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.worker(ctx, jobs, results, snap)
		}()
	}

	for idx, symbol := range symbols {
		jobs <- job{index: idx, symbol: symbol}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Index-correlated collection keeps input order before classification.
	ordered := make([]*domain.StockAnalysis, len(symbols))
	for res := range results {
		ordered[res.index] = res.analysis
	}

	return b.classify(symbols, ordered)
}

func (b *BatchAnalyzer) worker(ctx context.Context, jobs <-chan job, results chan<- jobResult, snap domain.MarketSentimentSnapshot) {
	for j := range jobs {
		symbolCtx, cancel := context.WithTimeout(ctx, b.timeout)
		analysis, err := b.analyzer.AnalyzeSymbol(symbolCtx, j.symbol)
		cancel()

		if err != nil {
			b.log.Warn().Err(err).Str("symbol", j.symbol).Msg("Dropping symbol from batch")
			results <- jobResult{index: j.index}
			continue
		}

		b.enricher.Score(analysis, snap)
		results <- jobResult{index: j.index, analysis: analysis}
	}
}

func (b *BatchAnalyzer) classify(symbols []string, ordered []*domain.StockAnalysis) BatchResult {
	result := BatchResult{}

	for _, analysis := range ordered {
		if analysis == nil {
			continue
		}
		result.Analyzed = append(result.Analyzed, *analysis)

		switch {
		case analysis.Recommendation.IsBuy() && analysis.PredictedReturn >= b.targetReturn:
			result.BuyCandidates = append(result.BuyCandidates, *analysis)
		case analysis.Recommendation.IsSell():
			// No return-threshold gate on the sell side; any sufficiently
			// negative signal qualifies.
			result.SellCandidates = append(result.SellCandidates, *analysis)
		}
	}

	SortBuyCandidates(result.BuyCandidates)
	SortSellCandidates(result.SellCandidates)

	result.Stats = Stats{
		TotalAnalyzed: len(result.Analyzed),
		BuyCount:      len(result.BuyCandidates),
		SellCount:     len(result.SellCandidates),
		SuccessRate:   float64(len(result.Analyzed)) / float64(len(symbols)),
	}
	return result
}

// SortBuyCandidates orders buys best-first: descending overall score, then
// descending predicted return, then symbol for a stable total order.
func SortBuyCandidates(candidates []domain.StockAnalysis) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].OverallScore != candidates[j].OverallScore {
			return candidates[i].OverallScore > candidates[j].OverallScore
		}
		if candidates[i].PredictedReturn != candidates[j].PredictedReturn {
			return candidates[i].PredictedReturn > candidates[j].PredictedReturn
		}
		return candidates[i].Symbol < candidates[j].Symbol
	})
}

// SortSellCandidates orders sells worst-first: ascending predicted return,
// then symbol.
func SortSellCandidates(candidates []domain.StockAnalysis) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].PredictedReturn != candidates[j].PredictedReturn {
			return candidates[i].PredictedReturn < candidates[j].PredictedReturn
		}
		return candidates[i].Symbol < candidates[j].Symbol
	})
}
