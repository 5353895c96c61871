package strategy

import (
	"binai-trading-bot/internal/params"
)

const (
	trendingBaseConfidence    = 0.50
	trendingMomentumBonus     = 0.25
	trendingVolumeBonus       = 0.25
	trendingVolumeSpikeFactor = 1.2
)

// EvaluateTrending looks for a moving-average crossover on the latest
// candle and scores it with momentum and volume confirmations. Without a
// crossover the verdict is neutral regardless of everything else.
func EvaluateTrending(s *Snapshot, p params.ParameterSet) Signal {
	crossedUp := s.PrevFastMA <= s.PrevSlowMA && s.FastMA > s.SlowMA
	crossedDown := s.PrevFastMA >= s.PrevSlowMA && s.FastMA < s.SlowMA

	var direction Direction
	switch {
	case crossedUp:
		direction = DirectionLong
	case crossedDown:
		direction = DirectionShort
	default:
		return Neutral()
	}

	confidence := trendingBaseConfidence

	if hasMomentum(s, direction) {
		confidence += trendingMomentumBonus
	}

	if s.AvgVolume > 0 && s.Volume >= s.AvgVolume*trendingVolumeSpikeFactor {
		confidence += trendingVolumeBonus
	}

	if confidence < p.MinSignalConfidence {
		return Neutral()
	}

	return Signal{Direction: direction, Confidence: confidence}
}

// hasMomentum confirms the crossover direction with the MACD histogram
// (positive and rising for longs, negative and falling for shorts) or,
// failing that, the RSI side of the midline.
func hasMomentum(s *Snapshot, direction Direction) bool {
	if s.MACD != nil {
		if direction == DirectionLong && s.MACD.Histogram > 0 && s.MACD.Histogram >= s.MACD.PrevHistogram {
			return true
		}
		if direction == DirectionShort && s.MACD.Histogram < 0 && s.MACD.Histogram <= s.MACD.PrevHistogram {
			return true
		}
	}

	if direction == DirectionLong {
		return s.RSI > 50
	}
	return s.RSI < 50
}
