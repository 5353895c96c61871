package portfolio

import (
	"math"

	"github.com/rs/zerolog"

	"binai-trading-bot/internal/binance"
	"binai-trading-bot/internal/strategy"
)

// KlineSource fetches the candle history the guard correlates over
type KlineSource interface {
	GetFuturesKlines(symbol, interval string, limit int) ([]binance.Kline, error)
}

// Verdict is the guard's answer for one candidate entry
type Verdict struct {
	Blocked     bool    `json:"blocked"`
	Against     string  `json:"against,omitempty"`
	Correlation float64 `json:"correlation,omitempty"`
}

// CorrelationGuard blocks a new entry when its close-price series is too
// correlated with an already open position on the same side. Two highly
// correlated longs are one double-sized long in disguise.
type CorrelationGuard struct {
	source    KlineSource
	enabled   bool
	threshold float64
	interval  string
	limit     int
	logger    zerolog.Logger
}

// NewCorrelationGuard creates a guard. A disabled guard allows everything.
func NewCorrelationGuard(source KlineSource, enabled bool, threshold float64, interval string, limit int, logger zerolog.Logger) *CorrelationGuard {
	return &CorrelationGuard{
		source:    source,
		enabled:   enabled,
		threshold: threshold,
		interval:  interval,
		limit:     limit,
		logger:    logger.With().Str("component", "CorrelationGuard").Logger(),
	}
}

// Check correlates the candidate symbol against every same-direction open
// position. Fetch failures and degenerate series skip the pair rather than
// block the entry.
func (g *CorrelationGuard) Check(symbol string, direction strategy.Direction, open []OpenPosition) Verdict {
	if !g.enabled || len(open) == 0 {
		return Verdict{}
	}

	candidate, err := g.closes(symbol)
	if err != nil {
		g.logger.Warn().Str("symbol", symbol).Err(err).
			Msg("Could not fetch candles for correlation check, allowing entry")
		return Verdict{}
	}

	for _, pos := range open {
		if pos.Symbol == symbol || pos.Side != direction {
			continue
		}

		other, err := g.closes(pos.Symbol)
		if err != nil {
			g.logger.Warn().Str("symbol", pos.Symbol).Err(err).
				Msg("Could not fetch candles for correlation check, skipping pair")
			continue
		}

		corr, ok := pearson(candidate, other)
		if !ok {
			continue
		}

		if corr > g.threshold {
			g.logger.Info().
				Str("symbol", symbol).
				Str("against", pos.Symbol).
				Float64("correlation", corr).
				Msg("Entry blocked by correlation")
			return Verdict{Blocked: true, Against: pos.Symbol, Correlation: corr}
		}
	}

	return Verdict{}
}

func (g *CorrelationGuard) closes(symbol string) ([]float64, error) {
	klines, err := g.source.GetFuturesKlines(symbol, g.interval, g.limit)
	if err != nil {
		return nil, err
	}
	closes := make([]float64, len(klines))
	for i, k := range klines {
		closes[i] = k.Close
	}
	return closes, nil
}

// pearson computes the correlation coefficient over the tail-aligned
// overlap of the two series. It reports false when the overlap is shorter
// than two points or either series has zero variance.
func pearson(a, b []float64) (float64, bool) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return 0, false
	}
	a = a[len(a)-n:]
	b = b[len(b)-n:]

	var sumA, sumB float64
	for i := 0; i < n; i++ {
		sumA += a[i]
		sumB += b[i]
	}
	meanA := sumA / float64(n)
	meanB := sumB / float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0, false
	}

	return cov / math.Sqrt(varA*varB), true
}
