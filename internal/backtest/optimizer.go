package backtest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"binai-trading-bot/internal/binance"
	"binai-trading-bot/internal/params"
)

// ParamsStore persists tuned per-symbol overrides
type ParamsStore interface {
	SaveSymbolParameters(ctx context.Context, symbol string, overrides map[string]float64) error
}

// minOptimizerTrades is the smallest backtest sample a candidate must
// produce before its metrics are trusted
const minOptimizerTrades = 5

// Optimizer re-tunes a symbol's parameters when its recent live
// performance goes stale. Candidates are scored by backtested net profit
// and the winner is written back as a per-symbol override.
type Optimizer struct {
	engine     *Engine
	client     binance.FuturesClient
	trades     TradeSource
	store      ParamsStore
	resolver   *params.Resolver
	interval   string
	klineLimit int
	recentN    int
	minWinRate float64
	logger     zerolog.Logger
}

// NewOptimizer creates an optimizer
func NewOptimizer(engine *Engine, client binance.FuturesClient, trades TradeSource, store ParamsStore, resolver *params.Resolver, interval string, klineLimit, recentN int, minWinRate float64, logger zerolog.Logger) *Optimizer {
	return &Optimizer{
		engine:     engine,
		client:     client,
		trades:     trades,
		store:      store,
		resolver:   resolver,
		interval:   interval,
		klineLimit: klineLimit,
		recentN:    recentN,
		minWinRate: minWinRate,
		logger:     logger.With().Str("component", "Optimizer").Logger(),
	}
}

// MaybeOptimize checks whether the symbol's recent win rate fell below the
// floor and, if so, grid searches for a better parameter set. Returns true
// when a new override was saved.
func (o *Optimizer) MaybeOptimize(ctx context.Context, symbol string) (bool, error) {
	report, err := AnalyzePerformance(ctx, o.trades, symbol, o.recentN, o.minWinRate)
	if err != nil {
		return false, fmt.Errorf("performance review for %s: %w", symbol, err)
	}
	if !report.Stale {
		return false, nil
	}

	o.logger.Info().
		Str("symbol", symbol).
		Float64("win_rate", report.WinRate).
		Int("trades", report.Trades).
		Msg("Performance stale, searching for better parameters")

	klines, err := o.client.GetFuturesKlines(symbol, o.interval, o.klineLimit)
	if err != nil {
		return false, fmt.Errorf("fetching candles for %s: %w", symbol, err)
	}

	best, found := o.search(symbol, klines)
	if !found {
		o.logger.Warn().Str("symbol", symbol).
			Msg("No candidate beat the minimum sample, keeping current parameters")
		return false, nil
	}

	if err := o.store.SaveSymbolParameters(ctx, symbol, best); err != nil {
		return false, fmt.Errorf("saving tuned parameters for %s: %w", symbol, err)
	}
	o.resolver.Invalidate(symbol)

	o.logger.Info().
		Str("symbol", symbol).
		Interface("overrides", best).
		Msg("Saved tuned parameters")

	return true, nil
}

// search runs the candidate grid and returns the override map of the most
// profitable candidate with a sufficient trade sample.
func (o *Optimizer) search(symbol string, klines []binance.Kline) (map[string]float64, bool) {
	base := o.resolver.Defaults()

	fastPeriods := []int{10, 15, 20}
	slowPeriods := []int{40, 50, 60}
	adxThresholds := []float64{20, 25, 30}

	var best map[string]float64
	bestProfit := 0.0

	for _, fast := range fastPeriods {
		for _, slow := range slowPeriods {
			if fast >= slow {
				continue
			}
			for _, threshold := range adxThresholds {
				candidate := base
				candidate.FastMAPeriod = fast
				candidate.SlowMAPeriod = slow
				candidate.ADXTrendThreshold = threshold

				result, err := o.engine.Run(symbol, klines, candidate)
				if err != nil {
					continue
				}
				if result.TotalTrades < minOptimizerTrades {
					continue
				}

				if best == nil || result.NetProfit > bestProfit {
					bestProfit = result.NetProfit
					best = map[string]float64{
						"fast_ma_period":      float64(fast),
						"slow_ma_period":      float64(slow),
						"adx_trend_threshold": threshold,
					}
				}
			}
		}
	}

	// A winner that still loses money is not worth saving
	if best == nil || bestProfit <= 0 {
		return nil, false
	}
	return best, true
}
