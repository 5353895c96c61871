// Package strategy computes trading signals from candle data. A router
// classifies the market regime from trend strength and dispatches to the
// trending or ranging evaluator; both consume one shared indicator snapshot.
package strategy

// Direction is the side of a proposed trade
type Direction string

const (
	DirectionLong    Direction = "LONG"
	DirectionShort   Direction = "SHORT"
	DirectionNeutral Direction = "NEUTRAL"
)

// Regime classifies the market state used for strategy routing
type Regime string

const (
	RegimeTrend   Regime = "TREND"
	RegimeRanging Regime = "RANGING"
)

// Signal is a strategy verdict: a direction and how strongly the
// evaluator believes in it (0..1)
type Signal struct {
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"`
}

// Neutral is the no-trade signal
func Neutral() Signal {
	return Signal{Direction: DirectionNeutral, Confidence: 0}
}
