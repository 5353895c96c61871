// Package bot runs the trading loops: a periodic analysis cycle that fans
// symbols out to a worker pool, a reconcile loop that keeps the position
// book honest against the exchange, and an optional parameter tuning loop.
package bot

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"binai-trading-bot/config"
	"binai-trading-bot/internal/backtest"
	"binai-trading-bot/internal/binance"
	"binai-trading-bot/internal/params"
	"binai-trading-bot/internal/portfolio"
	"binai-trading-bot/internal/strategy"
)

// SymbolOutcome records what one analysis cycle did with one symbol
type SymbolOutcome struct {
	Symbol     string             `json:"symbol"`
	Direction  strategy.Direction `json:"direction"`
	Confidence float64            `json:"confidence"`
	Regime     strategy.Regime    `json:"regime,omitempty"`
	Action     string             `json:"action"`
	Reason     string             `json:"reason,omitempty"`
}

// ActionNoSignal marks symbols whose analysis came back neutral
const ActionNoSignal = "NO_SIGNAL"

// CycleResult summarizes one full analysis cycle
type CycleResult struct {
	StartedAt       time.Time       `json:"started_at"`
	Duration        time.Duration   `json:"duration"`
	SymbolsAnalyzed int             `json:"symbols_analyzed"`
	Outcomes        []SymbolOutcome `json:"outcomes"`
	Errors          []string        `json:"errors,omitempty"`
}

// Engine wires the analyzer, resolver, slot manager and tracker together
// and drives them on timers.
type Engine struct {
	cfg       *config.Config
	client    binance.FuturesClient
	cache     *binance.KlineCache
	analyzer  *strategy.Analyzer
	resolver  *params.Resolver
	slots     *portfolio.SlotManager
	tracker   *portfolio.Tracker
	optimizer *backtest.Optimizer
	logger    zerolog.Logger

	mu        sync.Mutex
	isRunning bool
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewEngine creates the trading engine. optimizer may be nil when tuning
// is disabled.
func NewEngine(
	cfg *config.Config,
	client binance.FuturesClient,
	cache *binance.KlineCache,
	analyzer *strategy.Analyzer,
	resolver *params.Resolver,
	slots *portfolio.SlotManager,
	tracker *portfolio.Tracker,
	optimizer *backtest.Optimizer,
	logger zerolog.Logger,
) *Engine {
	return &Engine{
		cfg:       cfg,
		client:    client,
		cache:     cache,
		analyzer:  analyzer,
		resolver:  resolver,
		slots:     slots,
		tracker:   tracker,
		optimizer: optimizer,
		logger:    logger.With().Str("component", "Engine").Logger(),
	}
}

// Start launches the analysis, reconcile and tuning loops
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.isRunning {
		return
	}
	e.isRunning = true
	e.stopChan = make(chan struct{})

	e.wg.Add(1)
	go e.analysisLoop(ctx)

	e.wg.Add(1)
	go e.reconcileLoop(ctx)

	if e.optimizer != nil && e.cfg.OptimizerConfig.Enabled {
		e.wg.Add(1)
		go e.optimizerLoop(ctx)
	}

	e.logger.Info().
		Strs("symbols", e.cfg.TradingConfig.Symbols).
		Int("workers", e.cfg.TradingConfig.WorkerCount).
		Int("analysis_interval_secs", e.cfg.TradingConfig.AnalysisIntervalSecs).
		Msg("Trading engine started")
}

// Stop signals the loops and waits for them to drain
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.isRunning {
		e.mu.Unlock()
		return
	}
	e.isRunning = false
	close(e.stopChan)
	e.mu.Unlock()

	e.wg.Wait()
	e.logger.Info().Msg("Trading engine stopped")
}

func (e *Engine) analysisLoop(ctx context.Context) {
	defer e.wg.Done()

	interval := time.Duration(e.cfg.TradingConfig.AnalysisIntervalSecs) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			result := e.RunAnalysisCycle(ctx)
			e.logger.Debug().
				Int("symbols", result.SymbolsAnalyzed).
				Dur("duration", result.Duration).
				Int("errors", len(result.Errors)).
				Msg("Analysis cycle complete")
		}
	}
}

func (e *Engine) reconcileLoop(ctx context.Context) {
	defer e.wg.Done()

	interval := time.Duration(e.cfg.TradingConfig.ReconcileIntervalSecs) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.ReconcilePositions(ctx); err != nil {
				e.logger.Error().Err(err).Msg("Reconcile failed")
			}
		}
	}
}

func (e *Engine) optimizerLoop(ctx context.Context) {
	defer e.wg.Done()

	interval := time.Duration(e.cfg.OptimizerConfig.IntervalHours) * time.Hour
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, symbol := range e.cfg.TradingConfig.Symbols {
				if _, err := e.optimizer.MaybeOptimize(ctx, symbol); err != nil {
					e.logger.Error().Str("symbol", symbol).Err(err).Msg("Optimization failed")
				}
			}
		}
	}
}

// RunAnalysisCycle analyzes every configured symbol through the worker
// pool and routes non-neutral signals to the slot manager. The account
// balance is fetched once per cycle.
func (e *Engine) RunAnalysisCycle(ctx context.Context) CycleResult {
	result := CycleResult{StartedAt: time.Now()}

	var errMu sync.Mutex
	addError := func(msg string) {
		errMu.Lock()
		result.Errors = append(result.Errors, msg)
		errMu.Unlock()
	}

	balance, err := e.client.GetUSDTBalance()
	if err != nil {
		e.logger.Error().Err(err).Msg("Could not fetch balance, entries disabled this cycle")
		addError("balance: " + err.Error())
		balance = 0
	}

	symbolChan := make(chan string)
	outcomeChan := make(chan SymbolOutcome)

	workers := e.cfg.TradingConfig.WorkerCount
	if workers < 1 {
		workers = 1
	}

	var workerWg sync.WaitGroup
	for i := 0; i < workers; i++ {
		workerWg.Add(1)
		go func() {
			defer workerWg.Done()
			for symbol := range symbolChan {
				outcome, err := e.analyzeSymbol(ctx, symbol, balance)
				if err != nil {
					addError(symbol + ": " + err.Error())
					continue
				}
				outcomeChan <- outcome
			}
		}()
	}

	go func() {
		for _, symbol := range e.cfg.TradingConfig.Symbols {
			symbolChan <- symbol
		}
		close(symbolChan)
		workerWg.Wait()
		close(outcomeChan)
	}()

	for outcome := range outcomeChan {
		result.Outcomes = append(result.Outcomes, outcome)
	}

	result.SymbolsAnalyzed = len(result.Outcomes)
	result.Duration = time.Since(result.StartedAt)
	return result
}

// analyzeSymbol resolves parameters, loads candles (websocket cache first,
// REST fallback) and hands any signal to the slot manager.
func (e *Engine) analyzeSymbol(ctx context.Context, symbol string, balance float64) (SymbolOutcome, error) {
	p := e.resolver.Resolve(ctx, symbol, nil)

	klines := e.cache.Window(symbol)
	if len(klines) < e.cfg.TradingConfig.KlineLimit {
		fetched, err := e.client.GetFuturesKlines(symbol, e.cfg.TradingConfig.Interval, e.cfg.TradingConfig.KlineLimit)
		if err != nil {
			if len(klines) == 0 {
				return SymbolOutcome{}, err
			}
			// Run with the shorter cached window rather than skipping
			e.logger.Warn().Str("symbol", symbol).Err(err).
				Msg("Candle fetch failed, analyzing cached window")
		} else {
			e.cache.Seed(symbol, fetched)
			klines = fetched
		}
	}

	analysis := e.analyzer.Analyze(symbol, klines, p)

	outcome := SymbolOutcome{
		Symbol:     symbol,
		Direction:  analysis.Signal.Direction,
		Confidence: analysis.Signal.Confidence,
		Regime:     analysis.Regime,
	}

	if analysis.Signal.Direction == strategy.DirectionNeutral {
		outcome.Action = ActionNoSignal
		return outcome, nil
	}

	if balance <= 0 {
		outcome.Action = string(portfolio.ActionFailed)
		outcome.Reason = "balance unavailable"
		return outcome, nil
	}

	decision := e.slots.HandleSignal(ctx, analysis, balance, p)
	outcome.Action = string(decision.Action)
	outcome.Reason = decision.Reason
	return outcome, nil
}

// ReconcilePositions refreshes the book against the exchange
func (e *Engine) ReconcilePositions(ctx context.Context) (portfolio.ReconcileResult, error) {
	return e.tracker.Reconcile(ctx)
}

// CleanupOrphans closes exchange positions the book does not know about
func (e *Engine) CleanupOrphans(ctx context.Context) (portfolio.CleanupResult, error) {
	return e.tracker.CleanupOrphans(ctx)
}

// Positions exposes the current book, for the API layer
func (e *Engine) Positions() []portfolio.OpenPosition {
	return e.tracker.Positions()
}
