package strategy

import (
	"math"

	"binai-trading-bot/internal/binance"
)

// ============================================================================
// MOVING AVERAGES
// ============================================================================

// CalculateSMA calculates Simple Moving Average over the last period closes
func CalculateSMA(klines []binance.Kline, period int) float64 {
	if period <= 0 || len(klines) < period {
		return 0
	}

	sum := 0.0
	startIdx := len(klines) - period

	for i := startIdx; i < len(klines); i++ {
		sum += klines[i].Close
	}

	return sum / float64(period)
}

// CalculateEMA calculates Exponential Moving Average, seeded with the SMA
// of the first period closes
func CalculateEMA(klines []binance.Kline, period int) float64 {
	if period <= 0 || len(klines) < period {
		return 0
	}

	sma := CalculateSMA(klines[:period], period)
	multiplier := 2.0 / float64(period+1)

	ema := sma
	for i := period; i < len(klines); i++ {
		ema = (klines[i].Close * multiplier) + (ema * (1 - multiplier))
	}

	return ema
}

// emaSeries computes an exponential moving average over an arbitrary series,
// seeded with the first value
func emaSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	multiplier := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = (values[i] * multiplier) + (out[i-1] * (1 - multiplier))
	}
	return out
}

// ============================================================================
// RSI (Relative Strength Index)
// ============================================================================

// CalculateRSI calculates the Relative Strength Index. Returns the neutral
// value 50 when the window is too short and 100 when there are no losses.
func CalculateRSI(klines []binance.Kline, period int) float64 {
	if period <= 0 || len(klines) < period+1 {
		return 50.0
	}

	gains := 0.0
	losses := 0.0

	for i := len(klines) - period; i < len(klines); i++ {
		change := klines[i].Close - klines[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// ============================================================================
// MACD (Moving Average Convergence Divergence)
// ============================================================================

// MACDResult holds MACD indicator values for the latest candle, plus the
// previous histogram value for slope checks
type MACDResult struct {
	MACD          float64
	Signal        float64
	Histogram     float64
	PrevHistogram float64
}

// CalculateMACD calculates the MACD line, its signal line (a true EMA over
// the MACD series, not an approximation) and the histogram
func CalculateMACD(klines []binance.Kline, fastPeriod, slowPeriod, signalPeriod int) *MACDResult {
	if len(klines) < slowPeriod+signalPeriod {
		return &MACDResult{}
	}

	closes := make([]float64, len(klines))
	for i, k := range klines {
		closes[i] = k.Close
	}

	fastEMA := emaSeries(closes, fastPeriod)
	slowEMA := emaSeries(closes, slowPeriod)

	macdLine := make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine := emaSeries(macdLine, signalPeriod)

	last := len(closes) - 1
	result := &MACDResult{
		MACD:      macdLine[last],
		Signal:    signalLine[last],
		Histogram: macdLine[last] - signalLine[last],
	}
	if last > 0 {
		result.PrevHistogram = macdLine[last-1] - signalLine[last-1]
	}

	return result
}

// ============================================================================
// BOLLINGER BANDS
// ============================================================================

// BollingerBandsResult holds Bollinger Bands values
type BollingerBandsResult struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// CalculateBollingerBands calculates Bollinger Bands over the last period closes
func CalculateBollingerBands(klines []binance.Kline, period int, stdDevMultiplier float64) *BollingerBandsResult {
	if period <= 0 || len(klines) < period {
		return &BollingerBandsResult{}
	}

	middle := CalculateSMA(klines, period)

	variance := 0.0
	startIdx := len(klines) - period

	for i := startIdx; i < len(klines); i++ {
		diff := klines[i].Close - middle
		variance += diff * diff
	}

	stdDev := math.Sqrt(variance / float64(period))

	return &BollingerBandsResult{
		Upper:  middle + (stdDev * stdDevMultiplier),
		Middle: middle,
		Lower:  middle - (stdDev * stdDevMultiplier),
	}
}

// ============================================================================
// ATR (Average True Range)
// ============================================================================

// trueRange returns the true range of candle i (requires i >= 1)
func trueRange(klines []binance.Kline, i int) float64 {
	high := klines[i].High
	low := klines[i].Low
	prevClose := klines[i-1].Close

	return math.Max(
		high-low,
		math.Max(
			math.Abs(high-prevClose),
			math.Abs(low-prevClose),
		),
	)
}

// CalculateATR calculates Average True Range with Wilder smoothing
// (alpha = 1/period), seeded with the first true range
func CalculateATR(klines []binance.Kline, period int) float64 {
	if period <= 0 || len(klines) < period+1 {
		return 0
	}

	alpha := 1.0 / float64(period)

	atr := trueRange(klines, 1)
	for i := 2; i < len(klines); i++ {
		atr = (1-alpha)*atr + alpha*trueRange(klines, i)
	}

	return atr
}

// ============================================================================
// ADX (Average Directional Index)
// ============================================================================

// CalculateADX calculates the Average Directional Index with Wilder
// smoothing of the true range and the directional movements. Candles where
// both directional indicators are zero contribute a DX of zero instead of
// dividing by zero.
func CalculateADX(klines []binance.Kline, period int) float64 {
	if period <= 0 || len(klines) < period+1 {
		return 0
	}

	alpha := 1.0 / float64(period)

	var smoothedTR, smoothedPlusDM, smoothedMinusDM, adx float64

	for i := 1; i < len(klines); i++ {
		upMove := klines[i].High - klines[i-1].High
		downMove := klines[i-1].Low - klines[i].Low

		plusDM := 0.0
		if upMove > downMove && upMove > 0 {
			plusDM = upMove
		}
		minusDM := 0.0
		if downMove > upMove && downMove > 0 {
			minusDM = downMove
		}

		tr := trueRange(klines, i)

		if i == 1 {
			smoothedTR = tr
			smoothedPlusDM = plusDM
			smoothedMinusDM = minusDM
		} else {
			smoothedTR = (1-alpha)*smoothedTR + alpha*tr
			smoothedPlusDM = (1-alpha)*smoothedPlusDM + alpha*plusDM
			smoothedMinusDM = (1-alpha)*smoothedMinusDM + alpha*minusDM
		}

		var plusDI, minusDI float64
		if smoothedTR > 0 {
			plusDI = 100 * smoothedPlusDM / smoothedTR
			minusDI = 100 * smoothedMinusDM / smoothedTR
		}

		dx := 0.0
		if diSum := plusDI + minusDI; diSum > 0 {
			dx = 100 * math.Abs(plusDI-minusDI) / diSum
		}

		if i == 1 {
			adx = dx
		} else {
			adx = (1-alpha)*adx + alpha*dx
		}
	}

	return adx
}

// ============================================================================
// VOLUME ANALYSIS
// ============================================================================

// CalculateAverageVolume calculates average volume over a period
func CalculateAverageVolume(klines []binance.Kline, period int) float64 {
	if len(klines) == 0 {
		return 0
	}
	if len(klines) < period {
		period = len(klines)
	}

	sum := 0.0
	startIdx := len(klines) - period

	for i := startIdx; i < len(klines); i++ {
		sum += klines[i].Volume
	}

	return sum / float64(period)
}
