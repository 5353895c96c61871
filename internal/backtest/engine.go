// Package backtest replays historical candles through the analyzer to
// measure how a parameter set would have traded, and tunes per-symbol
// parameters when live performance goes stale.
package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"binai-trading-bot/internal/binance"
	"binai-trading-bot/internal/params"
	"binai-trading-bot/internal/strategy"
)

// Trade is a single simulated round trip
type Trade struct {
	Symbol     string             `json:"symbol"`
	Side       strategy.Direction `json:"side"`
	EntryTime  time.Time          `json:"entry_time"`
	ExitTime   time.Time          `json:"exit_time"`
	EntryPrice float64            `json:"entry_price"`
	ExitPrice  float64            `json:"exit_price"`
	Quantity   float64            `json:"quantity"`
	ProfitLoss float64            `json:"profit_loss"`
	PLPercent  float64            `json:"pl_percent"`
	ExitReason string             `json:"exit_reason"` // stop_loss, take_profit, backtest_end

	// simulation levels, not part of the reported record
	stopLoss   float64
	takeProfit float64
}

// EquityPoint is the simulated account balance after a trade closes
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}

// Result holds the performance metrics of one backtest run
type Result struct {
	Symbol        string        `json:"symbol"`
	TotalTrades   int           `json:"total_trades"`
	WinningTrades int           `json:"winning_trades"`
	LosingTrades  int           `json:"losing_trades"`
	WinRate       float64       `json:"win_rate"` // fraction, 0..1
	TotalProfit   float64       `json:"total_profit"`
	TotalLoss     float64       `json:"total_loss"`
	NetProfit     float64       `json:"net_profit"`
	ROI           float64       `json:"roi"`
	ProfitFactor  float64       `json:"profit_factor"`
	MaxDrawdown   float64       `json:"max_drawdown"`
	Trades        []Trade       `json:"trades,omitempty"`
	EquityCurve   []EquityPoint `json:"equity_curve,omitempty"`
}

// Engine replays candles through the analyzer one at a time, simulating
// stop-loss and take-profit exits with the same sizing rules the live risk
// engine uses.
type Engine struct {
	analyzer       *strategy.Analyzer
	initialCapital float64
	commission     float64 // fee fraction charged on entry and exit notional
	logger         zerolog.Logger
}

// NewEngine creates a backtest engine
func NewEngine(initialCapital, commission float64, logger zerolog.Logger) *Engine {
	log := logger.With().Str("component", "Backtest").Logger()
	return &Engine{
		analyzer:       strategy.NewAnalyzer(log),
		initialCapital: initialCapital,
		commission:     commission,
		logger:         log,
	}
}

// Run replays the candles with the given parameter set. At most one
// position is open at a time; intrabar the stop is assumed to fill before
// the target when both are touched.
func (e *Engine) Run(symbol string, klines []binance.Kline, p params.ParameterSet) (*Result, error) {
	if len(klines) < 60 {
		return nil, fmt.Errorf("not enough candles for backtest: %d", len(klines))
	}

	result := &Result{Symbol: symbol}
	equity := e.initialCapital
	var open *Trade

	for i := 50; i < len(klines); i++ {
		candle := klines[i]

		if open != nil {
			exitPrice, reason := checkExit(open, candle)
			if reason != "" {
				equity = e.closeTrade(result, open, exitPrice, reason, candle.CloseTime, equity)
				open = nil
			}
		}

		if open != nil {
			continue
		}

		analysis := e.analyzer.Analyze(symbol, klines[:i+1], p)
		if analysis.Signal.Direction == strategy.DirectionNeutral {
			continue
		}

		price := candle.Close
		slDistance, tpDistance := distances(price, analysis.ATR, p)
		if slDistance <= 0 || tpDistance <= 0 {
			continue
		}

		var quantity float64
		if p.UseDynamicSizing {
			quantity = equity * p.RiskPerTrade / slDistance
		} else {
			quantity = equity * p.PositionSizePercent * float64(p.Leverage) / price
		}
		if quantity <= 0 {
			continue
		}

		trade := Trade{
			Symbol:     symbol,
			Side:       analysis.Signal.Direction,
			EntryTime:  time.UnixMilli(candle.CloseTime),
			EntryPrice: price,
			Quantity:   quantity,
		}
		if trade.Side == strategy.DirectionLong {
			trade.stopLoss = price - slDistance
			trade.takeProfit = price + tpDistance
		} else {
			trade.stopLoss = price + slDistance
			trade.takeProfit = price - tpDistance
		}
		open = &trade
	}

	if open != nil {
		last := klines[len(klines)-1]
		equity = e.closeTrade(result, open, last.Close, "backtest_end", last.CloseTime, equity)
	}

	e.finalize(result, equity)
	return result, nil
}

func distances(price, atr float64, p params.ParameterSet) (float64, float64) {
	if p.UseDynamicSLTP && atr > 0 {
		return atr * p.ATRMultiplierSL, atr * p.ATRMultiplierTP
	}
	return price * p.StopLossPercent, price * p.TakeProfitPercent
}

func checkExit(t *Trade, candle binance.Kline) (float64, string) {
	if t.Side == strategy.DirectionLong {
		if candle.Low <= t.stopLoss {
			return t.stopLoss, "stop_loss"
		}
		if candle.High >= t.takeProfit {
			return t.takeProfit, "take_profit"
		}
		return 0, ""
	}
	if candle.High >= t.stopLoss {
		return t.stopLoss, "stop_loss"
	}
	if candle.Low <= t.takeProfit {
		return t.takeProfit, "take_profit"
	}
	return 0, ""
}

func (e *Engine) closeTrade(result *Result, t *Trade, exitPrice float64, reason string, closeTime int64, equity float64) float64 {
	t.ExitTime = time.UnixMilli(closeTime)
	t.ExitPrice = exitPrice
	t.ExitReason = reason

	priceDiff := exitPrice - t.EntryPrice
	if t.Side == strategy.DirectionShort {
		priceDiff = t.EntryPrice - exitPrice
	}
	grossPL := priceDiff * t.Quantity
	fees := (t.EntryPrice + exitPrice) * t.Quantity * e.commission
	t.ProfitLoss = grossPL - fees
	t.PLPercent = priceDiff / t.EntryPrice * 100

	equity += t.ProfitLoss
	result.Trades = append(result.Trades, *t)
	result.EquityCurve = append(result.EquityCurve, EquityPoint{
		Timestamp: t.ExitTime,
		Equity:    equity,
	})
	return equity
}

func (e *Engine) finalize(result *Result, finalEquity float64) {
	result.TotalTrades = len(result.Trades)
	for _, trade := range result.Trades {
		if trade.ProfitLoss > 0 {
			result.WinningTrades++
			result.TotalProfit += trade.ProfitLoss
		} else {
			result.LosingTrades++
			result.TotalLoss += math.Abs(trade.ProfitLoss)
		}
	}

	if result.TotalTrades > 0 {
		result.WinRate = float64(result.WinningTrades) / float64(result.TotalTrades)
	}
	result.NetProfit = finalEquity - e.initialCapital
	result.ROI = result.NetProfit / e.initialCapital * 100
	if result.TotalLoss > 0 {
		result.ProfitFactor = result.TotalProfit / result.TotalLoss
	}
	result.MaxDrawdown = maxDrawdown(result.EquityCurve)
}

func maxDrawdown(curve []EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	peak := curve[0].Equity
	worst := 0.0
	for _, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
		}
		if peak > 0 {
			drawdown := (peak - point.Equity) / peak * 100
			if drawdown > worst {
				worst = drawdown
			}
		}
	}
	return worst
}
