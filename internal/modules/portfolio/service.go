// Package portfolio analyzes current brokerage holdings and selects the
// sell side of a rebalance: worst predicted performers first, capped by the
// configured investment amount.
package portfolio

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/akshaybhat/equiscan/internal/domain"
)

// HoldingsProvider is the slice of the brokerage gateway the portfolio
// service needs.
type HoldingsProvider interface {
	GetHoldings(ctx context.Context) ([]domain.Holding, error)
}

// SymbolAnalyzer produces an analysis record for a single symbol.
type SymbolAnalyzer interface {
	AnalyzeSymbol(ctx context.Context, symbol string) (*domain.StockAnalysis, error)
}

// Sale types for sell candidates.
const (
	SaleFull    = "full"
	SalePartial = "partial"
)

// AnalyzedHolding pairs a holding with its analysis. Analysis is nil when
// the symbol could not be analyzed; such holdings still count toward
// portfolio totals but rank as zero predicted return.
type AnalyzedHolding struct {
	domain.Holding
	Analysis *domain.StockAnalysis `json:"analysis,omitempty"`
}

// PredictedReturn returns the holding's predicted return, zero without an
// analysis.
func (h AnalyzedHolding) PredictedReturn() float64 {
	if h.Analysis == nil {
		return 0
	}
	return h.Analysis.PredictedReturn
}

// SellCandidate is one planned exit. For a partial sale, Quantity is scaled
// so SaleValue consumes exactly the remaining sell budget.
type SellCandidate struct {
	Symbol          string  `json:"symbol"`
	Quantity        int     `json:"quantity"`
	CurrentPrice    float64 `json:"current_price"`
	SaleValue       float64 `json:"sale_value"`
	SaleType        string  `json:"sale_type"`
	PredictedReturn float64 `json:"predicted_return"`
}

// PerformanceReport is the portfolio rollup with the selected sell side.
type PerformanceReport struct {
	AnalyzedAt      time.Time         `json:"analyzed_at"`
	TotalHoldings   int               `json:"total_holdings"`
	TotalValue      float64           `json:"total_portfolio_value"`
	TotalPnL        float64           `json:"total_pnl"`
	PnLPercent      float64           `json:"pnl_percentage"`
	Holdings        []AnalyzedHolding `json:"analyzed_holdings"`
	Underperformers []AnalyzedHolding `json:"underperformers"`
	SellCandidates  []SellCandidate   `json:"sell_candidates"`
	TotalSellValue  float64           `json:"total_sell_value"`
}

// Service analyzes portfolio performance.
type Service struct {
	broker        HoldingsProvider
	analyzer      SymbolAnalyzer
	maxInvestment float64
	log           zerolog.Logger
}

// NewService creates a portfolio service. maxInvestment caps the cumulative
// value of selected sell candidates.
func NewService(broker HoldingsProvider, analyzer SymbolAnalyzer, maxInvestment float64, log zerolog.Logger) *Service {
	return &Service{
		broker:        broker,
		analyzer:      analyzer,
		maxInvestment: maxInvestment,
		log:           log.With().Str("service", "portfolio").Logger(),
	}
}

// AnalyzePerformance fetches holdings, analyzes each, and selects sell
// candidates worst-first. All holdings are rank-eligible for selling; there
// is no minimum-return filter on the sell side.
func (s *Service) AnalyzePerformance(ctx context.Context) (*PerformanceReport, error) {
	holdings, err := s.broker.GetHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("portfolio analysis: %w", err)
	}

	report := &PerformanceReport{AnalyzedAt: time.Now()}

	for _, holding := range holdings {
		if holding.Symbol == "" {
			continue
		}

		analyzed := AnalyzedHolding{Holding: holding}
		if analysis, err := s.analyzer.AnalyzeSymbol(ctx, holding.Symbol); err != nil {
			s.log.Warn().Err(err).Str("symbol", holding.Symbol).Msg("Holding analysis failed, ranking as neutral")
		} else {
			analyzed.Analysis = analysis
		}

		report.Holdings = append(report.Holdings, analyzed)
		report.TotalValue += holding.CurrentValue
		report.TotalPnL += holding.PnL

		if analyzed.PredictedReturn() < 0 {
			report.Underperformers = append(report.Underperformers, analyzed)
		}
	}

	report.TotalHoldings = len(report.Holdings)
	if invested := report.TotalValue - report.TotalPnL; invested > 0 {
		report.PnLPercent = report.TotalPnL / invested * 100
	}

	report.SellCandidates, report.TotalSellValue = SelectSellCandidates(report.Holdings, s.maxInvestment)

	s.log.Info().
		Int("holdings", report.TotalHoldings).
		Int("sell_candidates", len(report.SellCandidates)).
		Float64("total_sell_value", report.TotalSellValue).
		Msg("Portfolio analyzed")
	return report, nil
}

// SelectSellCandidates picks a worst-first prefix of holdings whose
// cumulative current value fits within budget. A holding that would
// overshoot the remaining budget becomes a partial sale sized to consume it
// exactly, and selection stops there. The sell side never exceeds budget.
func SelectSellCandidates(holdings []AnalyzedHolding, budget float64) ([]SellCandidate, float64) {
	ranked := make([]AnalyzedHolding, len(holdings))
	copy(ranked, holdings)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].PredictedReturn() != ranked[j].PredictedReturn() {
			return ranked[i].PredictedReturn() < ranked[j].PredictedReturn()
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})

	var candidates []SellCandidate
	totalSellValue := 0.0

	for _, holding := range ranked {
		if totalSellValue >= budget {
			break
		}

		value := holding.CurrentValue
		if value <= 0 {
			continue
		}
		remaining := budget - totalSellValue

		if value <= remaining {
			candidates = append(candidates, SellCandidate{
				Symbol:          holding.Symbol,
				Quantity:        int(holding.Quantity),
				CurrentPrice:    holding.CurrentPrice,
				SaleValue:       value,
				SaleType:        SaleFull,
				PredictedReturn: holding.PredictedReturn(),
			})
			totalSellValue += value
			continue
		}

		quantity := int(remaining / value * holding.Quantity)
		if quantity > 0 {
			candidates = append(candidates, SellCandidate{
				Symbol:          holding.Symbol,
				Quantity:        quantity,
				CurrentPrice:    holding.CurrentPrice,
				SaleValue:       remaining,
				SaleType:        SalePartial,
				PredictedReturn: holding.PredictedReturn(),
			})
			totalSellValue += remaining
		}
		break
	}

	return candidates, totalSellValue
}
