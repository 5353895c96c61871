package strategy

import (
	"binai-trading-bot/internal/binance"
	"binai-trading-bot/internal/params"
)

// Snapshot holds every indicator value both strategy evaluators need,
// computed once per symbol per cycle. Prev* fields refer to the candle
// before the latest one so evaluators can detect crossings.
type Snapshot struct {
	Price     float64
	PrevClose float64
	PrevHigh  float64
	PrevLow   float64

	ATR           float64
	TrendStrength float64 // ADX

	FastMA     float64
	SlowMA     float64
	PrevFastMA float64
	PrevSlowMA float64

	RSI  float64
	MACD *MACDResult

	Bands     *BollingerBandsResult
	PrevBands *BollingerBandsResult

	Volume    float64
	AvgVolume float64
}

// requiredCandles returns the minimum window for a full snapshot. The +2
// leaves room for the previous-candle values the evaluators compare against.
func requiredCandles(p params.ParameterSet) int {
	required := p.SlowMAPeriod
	if n := p.ADXPeriod + 1; n > required {
		required = n
	}
	if n := p.BollingerLength; n > required {
		required = n
	}
	if n := p.RSIPeriod + 1; n > required {
		required = n
	}
	if n := p.MACDSlowPeriod + p.MACDSignalPeriod; n > required {
		required = n
	}
	return required + 2
}

// ComputeSnapshot derives the shared indicator snapshot from a candle
// window. Returns nil when the window is too short for every indicator.
func ComputeSnapshot(klines []binance.Kline, p params.ParameterSet) *Snapshot {
	if len(klines) < requiredCandles(p) {
		return nil
	}

	last := len(klines) - 1
	prev := klines[:last]

	return &Snapshot{
		Price:         klines[last].Close,
		PrevClose:     klines[last-1].Close,
		PrevHigh:      klines[last-1].High,
		PrevLow:       klines[last-1].Low,
		ATR:           CalculateATR(klines, p.ADXPeriod),
		TrendStrength: CalculateADX(klines, p.ADXPeriod),
		FastMA:        CalculateSMA(klines, p.FastMAPeriod),
		SlowMA:        CalculateSMA(klines, p.SlowMAPeriod),
		PrevFastMA:    CalculateSMA(prev, p.FastMAPeriod),
		PrevSlowMA:    CalculateSMA(prev, p.SlowMAPeriod),
		RSI:           CalculateRSI(klines, p.RSIPeriod),
		MACD:          CalculateMACD(klines, p.MACDFastPeriod, p.MACDSlowPeriod, p.MACDSignalPeriod),
		Bands:         CalculateBollingerBands(klines, p.BollingerLength, p.BollingerStdDev),
		PrevBands:     CalculateBollingerBands(prev, p.BollingerLength, p.BollingerStdDev),
		Volume:        klines[last].Volume,
		AvgVolume:     CalculateAverageVolume(prev, p.VolumeAvgPeriod),
	}
}
