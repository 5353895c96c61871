package strategy

import (
	"github.com/rs/zerolog"

	"binai-trading-bot/internal/binance"
	"binai-trading-bot/internal/params"
)

// Analysis is the full outcome of analyzing one symbol: the signal plus
// the context the risk engine needs (price, ATR) and the routing decision.
type Analysis struct {
	Symbol        string   `json:"symbol"`
	Signal        Signal   `json:"signal"`
	Regime        Regime   `json:"regime,omitempty"`
	TrendStrength float64  `json:"trend_strength"`
	Price         float64  `json:"price"`
	ATR           float64  `json:"atr"`

	snapshot *Snapshot
}

// Snapshot exposes the computed indicator snapshot, nil when the candle
// window was too short
func (a *Analysis) Snapshot() *Snapshot {
	return a.snapshot
}

// Analyzer routes each symbol to the evaluator matching its market regime
type Analyzer struct {
	logger zerolog.Logger
}

// NewAnalyzer creates an Analyzer
func NewAnalyzer(logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		logger: logger.With().Str("component", "Analyzer").Logger(),
	}
}

// classifyRegime is a pure function of trend strength and threshold
func classifyRegime(trendStrength, threshold float64) Regime {
	if trendStrength > threshold {
		return RegimeTrend
	}
	return RegimeRanging
}

// Analyze computes the indicator snapshot once and dispatches to the
// regime-matching evaluator. It never fails: too little data yields a
// neutral verdict, and an uncomputable trend strength falls back to the
// trending evaluator, the stricter of the two.
func (a *Analyzer) Analyze(symbol string, klines []binance.Kline, p params.ParameterSet) Analysis {
	analysis := Analysis{
		Symbol: symbol,
		Signal: Neutral(),
	}
	if n := len(klines); n > 0 {
		analysis.Price = klines[n-1].Close
	}

	snapshot := ComputeSnapshot(klines, p)
	if snapshot == nil {
		a.logger.Debug().Str("symbol", symbol).Int("candles", len(klines)).
			Msg("Not enough candles for analysis")
		return analysis
	}

	analysis.snapshot = snapshot
	analysis.Price = snapshot.Price
	analysis.ATR = snapshot.ATR
	analysis.TrendStrength = snapshot.TrendStrength

	if snapshot.TrendStrength <= 0 {
		// ADX could not be derived from this window; treat the market as
		// trending so entries still require a confirmed crossover.
		analysis.Regime = RegimeTrend
	} else {
		analysis.Regime = classifyRegime(snapshot.TrendStrength, p.ADXTrendThreshold)
	}

	switch analysis.Regime {
	case RegimeTrend:
		analysis.Signal = EvaluateTrending(snapshot, p)
	case RegimeRanging:
		analysis.Signal = EvaluateRanging(snapshot, p)
	}

	if analysis.Signal.Direction != DirectionNeutral {
		a.logger.Debug().
			Str("symbol", symbol).
			Str("regime", string(analysis.Regime)).
			Str("direction", string(analysis.Signal.Direction)).
			Float64("confidence", analysis.Signal.Confidence).
			Float64("adx", snapshot.TrendStrength).
			Msg("Signal generated")
	}

	return analysis
}
