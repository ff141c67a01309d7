package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/akshaybhat/equiscan/internal/cache"
	"github.com/akshaybhat/equiscan/internal/domain"
)

// maxRiskForStrongBuy gates strong-buy signals on acceptable volatility.
const maxRiskForStrongBuy = 0.7

// QuoteProvider is the slice of the brokerage gateway the analyzer needs.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (*domain.PriceSnapshot, error)
	GetCandles(ctx context.Context, symbol string, days int) ([]domain.Candle, error)
}

// Analyzer produces StockAnalysis records for single symbols. Quotes are
// cached with a short TTL so a screening run does not hammer the gateway for
// symbols revisited across iterations.
type Analyzer struct {
	quotes       QuoteProvider
	priceCache   *cache.TTLCache[domain.PriceSnapshot]
	predictor    *Predictor
	targetReturn float64
	horizonDays  int
	fetchHistory bool
	log          zerolog.Logger
}

// NewAnalyzer creates an analyzer. fetchHistory enables the best-effort
// candle-history enrichment (RSI / trend strength).
func NewAnalyzer(
	quotes QuoteProvider,
	predictor *Predictor,
	targetReturn float64,
	horizonDays int,
	fetchHistory bool,
	log zerolog.Logger,
) *Analyzer {
	return &Analyzer{
		quotes:       quotes,
		priceCache:   cache.New[domain.PriceSnapshot](cache.TTLPriceSnapshot),
		predictor:    predictor,
		targetReturn: targetReturn,
		horizonDays:  horizonDays,
		fetchHistory: fetchHistory,
		log:          log.With().Str("service", "analysis").Logger(),
	}
}

// AnalyzeSymbol fetches the symbol's snapshot and produces a full analysis
// record. A failed quote fetch returns an error (the batch analyzer drops
// and logs the symbol); a fetched snapshot without a usable price yields a
// neutral HOLD analysis flagged low confidence rather than an error.
func (a *Analyzer) AnalyzeSymbol(ctx context.Context, symbol string) (*domain.StockAnalysis, error) {
	snap, err := a.fetchSnapshot(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("analysis of %s: %w", symbol, err)
	}

	if snap.CurrentPrice <= 0 {
		a.log.Warn().Str("symbol", symbol).Msg("Snapshot has no usable price, returning neutral analysis")
		return &domain.StockAnalysis{
			Symbol:         symbol,
			HorizonDays:    a.horizonDays,
			PricePosition:  0.5,
			MomentumScore:  50,
			Confidence:     domain.ConfidenceLow,
			Recommendation: domain.RecommendationHold,
			Reasoning:      []string{"No usable price data available"},
		}, nil
	}

	ind := ComputeIndicators(snap)
	predicted := a.predictor.PredictReturn(snap, a.horizonDays)
	technicalScore := (ind.MomentumScore - 50) / 50

	// 5% intraday range is treated as maximum risk.
	riskScore := math.Min(ind.Volatility/0.05, 1.0)

	result := &domain.StockAnalysis{
		Symbol:          snap.Symbol,
		CurrentPrice:    snap.CurrentPrice,
		OpenPrice:       snap.OpenPrice,
		HighPrice:       snap.HighPrice,
		LowPrice:        snap.LowPrice,
		Volume:          snap.Volume,
		ChangePercent:   snap.ChangePercent,
		DayRange:        ind.DayRange,
		PricePosition:   ind.PricePosition,
		PriceVsOpen:     ind.PriceVsOpen,
		Volatility:      ind.Volatility,
		MomentumScore:   ind.MomentumScore,
		PredictedReturn: predicted,
		HorizonDays:     a.horizonDays,
		TechnicalScore:  technicalScore,
		RiskScore:       riskScore,
		Confidence:      domain.ConfidenceMedium,
		Recommendation:  a.recommend(predicted, technicalScore, riskScore),
	}
	result.Reasoning = a.buildReasoning(result)

	if a.fetchHistory {
		a.enrichFromHistory(ctx, result)
	}

	return result, nil
}

func (a *Analyzer) fetchSnapshot(ctx context.Context, symbol string) (domain.PriceSnapshot, error) {
	if snap, ok := a.priceCache.Get(symbol); ok {
		return snap, nil
	}

	snap, err := a.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return domain.PriceSnapshot{}, err
	}

	a.priceCache.Set(symbol, *snap)
	return *snap, nil
}

// recommend applies the discrete decision rule in priority order; the first
// matching rule wins.
func (a *Analyzer) recommend(predicted, technical, risk float64) domain.Recommendation {
	target := a.targetReturn

	switch {
	case predicted >= target && technical > 0.2 && risk < maxRiskForStrongBuy:
		return domain.RecommendationStrongBuy
	case predicted >= target*0.7 && technical > 0.1:
		return domain.RecommendationBuy
	case predicted < -target*0.5 && technical < -0.2:
		return domain.RecommendationStrongSell
	case predicted < -target*0.3 || technical < -0.1:
		return domain.RecommendationSell
	default:
		return domain.RecommendationHold
	}
}

func (a *Analyzer) buildReasoning(r *domain.StockAnalysis) []string {
	var reasoning []string

	switch {
	case r.PredictedReturn >= a.targetReturn:
		reasoning = append(reasoning, fmt.Sprintf(
			"Predicted return of %.2f%% in %d days meets target of %.2f%%",
			r.PredictedReturn*100, r.HorizonDays, a.targetReturn*100))
	case r.PredictedReturn > 0:
		reasoning = append(reasoning, fmt.Sprintf(
			"Positive predicted return of %.2f%% in %d days, but below target",
			r.PredictedReturn*100, r.HorizonDays))
	default:
		reasoning = append(reasoning, fmt.Sprintf(
			"Negative predicted return of %.2f%% in %d days",
			r.PredictedReturn*100, r.HorizonDays))
	}

	switch {
	case r.TechnicalScore > 0.2:
		reasoning = append(reasoning, "Strong positive technical indicators")
	case r.TechnicalScore > 0:
		reasoning = append(reasoning, "Moderately positive technical signals")
	case r.TechnicalScore < -0.2:
		reasoning = append(reasoning, "Strong negative technical indicators")
	default:
		reasoning = append(reasoning, "Mixed technical signals")
	}

	switch {
	case r.RiskScore > 0.8:
		reasoning = append(reasoning, "High volatility - elevated risk")
	case r.RiskScore < 0.3:
		reasoning = append(reasoning, "Low volatility - stable stock")
	default:
		reasoning = append(reasoning, "Moderate volatility")
	}

	return reasoning
}

// enrichFromHistory adds RSI and trend-strength context when the gateway can
// serve enough daily candles. History failures are silent downgrades, never
// analysis failures.
func (a *Analyzer) enrichFromHistory(ctx context.Context, r *domain.StockAnalysis) {
	candles, err := a.quotes.GetCandles(ctx, r.Symbol, 60)
	if err != nil {
		a.log.Debug().Err(err).Str("symbol", r.Symbol).Msg("Candle history unavailable")
		return
	}

	hist := ComputeHistoryIndicators(candles)
	if hist == nil {
		return
	}
	r.History = hist

	switch {
	case hist.RSI < 30:
		r.Reasoning = append(r.Reasoning, "Stock is oversold (RSI < 30) - potential buying opportunity")
	case hist.RSI > 70:
		r.Reasoning = append(r.Reasoning, "Stock is overbought (RSI > 70) - momentum may reverse")
	}

	switch {
	case hist.TrendStrength > 0.3:
		r.Reasoning = append(r.Reasoning, "Strong upward trend detected")
	case hist.TrendStrength < -0.3:
		r.Reasoning = append(r.Reasoning, "Strong downward trend detected")
	}
}

// AssessConfidence grades an analysis by data quality, volatility and signal
// strength. Used by the single-symbol deep analysis operation.
func AssessConfidence(r *domain.StockAnalysis) domain.Confidence {
	factors := make([]float64, 0, 3)

	switch r.Confidence {
	case domain.ConfidenceHigh:
		factors = append(factors, 1.0)
	case domain.ConfidenceMedium:
		factors = append(factors, 0.7)
	default:
		factors = append(factors, 0.3)
	}

	switch {
	case r.Volatility < 0.02:
		factors = append(factors, 0.9)
	case r.Volatility < 0.04:
		factors = append(factors, 0.7)
	default:
		factors = append(factors, 0.4)
	}

	if math.Abs(r.TechnicalScore) > 0.3 {
		factors = append(factors, 0.8)
	} else {
		factors = append(factors, 0.5)
	}

	switch avg := stat.Mean(factors, nil); {
	case avg > 0.8:
		return domain.ConfidenceHigh
	case avg > 0.6:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// Summary renders a one-line human-readable summary of an analysis.
func Summary(r *domain.StockAnalysis) string {
	s := fmt.Sprintf("%s: %s recommendation with %.2f%% predicted return in %d days. ",
		r.Symbol, r.Recommendation, r.PredictedReturn*100, r.HorizonDays)

	switch {
	case r.OverallScore > 0.7:
		s += "Strong fundamentals and technical indicators."
	case r.OverallScore > 0.5:
		s += "Moderate potential with mixed signals."
	default:
		s += "Weak fundamentals or high risk factors."
	}
	return s
}
