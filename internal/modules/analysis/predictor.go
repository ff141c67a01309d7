package analysis

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/akshaybhat/equiscan/internal/domain"
)

// Prediction clamp bounds. Single noisy inputs must not dominate downstream
// ranking, so predictions never leave this range.
const (
	minPredictedReturn = -0.20
	maxPredictedReturn = 0.25
)

// maxTimeFactor caps horizon extrapolation: predicting further than 1.5x the
// reference horizon adds no signal.
const maxTimeFactor = 1.5

// Predictor produces point-estimate return predictions from a price
// snapshot. It is a heuristic, not a trained model: momentum maps roughly
// linearly onto expected return, scaled by the time horizon.
type Predictor struct {
	horizonDays int
	noise       bool
}

// PredictorOption configures a Predictor.
type PredictorOption func(*Predictor)

// WithoutNoise disables the volatility-proportional noise term. The noise
// only exists to break discretized ties in ranking; callers that need
// reproducible output (tests, fixtures) disable it.
func WithoutNoise() PredictorOption {
	return func(p *Predictor) { p.noise = false }
}

// NewPredictor creates a predictor referenced to the given horizon in days.
func NewPredictor(horizonDays int, opts ...PredictorOption) *Predictor {
	if horizonDays <= 0 {
		horizonDays = 30
	}
	p := &Predictor{horizonDays: horizonDays, noise: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PredictReturn predicts the fractional return for the snapshot's symbol
// over days. It never fails: a snapshot without a usable price yields 0.0,
// which the caller treats as a no-data signal and flags low confidence.
// Output is clamped to [minPredictedReturn, maxPredictedReturn].
func (p *Predictor) PredictReturn(snap domain.PriceSnapshot, days int) float64 {
	if snap.CurrentPrice <= 0 {
		return 0.0
	}

	ind := ComputeIndicators(snap)

	// Momentum 50 is neutral; 75 maps to roughly +4%, 25 to -4%, before the
	// time factor.
	baseReturn := (ind.MomentumScore - 50) / 50 * 0.08

	// Being near the day's high suggests strength, near the low weakness.
	positionAdjustment := (ind.PricePosition - 0.5) * 0.02

	changeAdjustment := ind.ChangeFraction * 0.15

	timeFactor := float64(days) / float64(p.horizonDays)
	if timeFactor > maxTimeFactor {
		timeFactor = maxTimeFactor
	}

	predicted := (baseReturn + positionAdjustment + changeAdjustment) * timeFactor

	if p.noise && ind.Volatility > 0 {
		dist := distuv.Normal{Mu: 0, Sigma: ind.Volatility * 0.3}
		predicted += dist.Rand()
	}

	return clamp(predicted, minPredictedReturn, maxPredictedReturn)
}
