package strategy

import (
	"binai-trading-bot/internal/params"
)

const (
	rangingBaseConfidence = 0.70
	rangingRSIBonus       = 0.15
	rangingReversalBonus  = 0.15
)

// EvaluateRanging looks for a Bollinger band touch-and-reclaim: the
// previous candle pierced a band and the latest close came back inside.
// RSI agreement and a reversal bar each add to the score.
func EvaluateRanging(s *Snapshot, p params.ParameterSet) Signal {
	if s.Bands == nil || s.PrevBands == nil {
		return Neutral()
	}

	touchedLower := s.PrevLow <= s.PrevBands.Lower && s.Price > s.Bands.Lower
	touchedUpper := s.PrevHigh >= s.PrevBands.Upper && s.Price < s.Bands.Upper

	var direction Direction
	switch {
	case touchedLower:
		direction = DirectionLong
	case touchedUpper:
		direction = DirectionShort
	default:
		return Neutral()
	}

	confidence := rangingBaseConfidence

	if direction == DirectionLong && s.RSI < p.RSIOversold {
		confidence += rangingRSIBonus
	}
	if direction == DirectionShort && s.RSI > p.RSIOverbought {
		confidence += rangingRSIBonus
	}

	// Reversal bar: the latest close escaped the previous candle's range
	if direction == DirectionLong && s.Price > s.PrevHigh {
		confidence += rangingReversalBonus
	}
	if direction == DirectionShort && s.Price < s.PrevLow {
		confidence += rangingReversalBonus
	}

	if confidence < p.MinSignalConfidence {
		return Neutral()
	}

	return Signal{Direction: direction, Confidence: confidence}
}
