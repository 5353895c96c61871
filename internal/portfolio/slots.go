package portfolio

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"binai-trading-bot/internal/params"
	"binai-trading-bot/internal/risk"
	"binai-trading-bot/internal/strategy"
)

// Action is what the slot manager did with a signal
type Action string

const (
	ActionOpened             Action = "OPENED"
	ActionSkippedExisting    Action = "SKIPPED_EXISTING"
	ActionBlockedCorrelation Action = "BLOCKED_CORRELATION"
	ActionRebalanced         Action = "REBALANCED"
	ActionDroppedFull        Action = "DROPPED_FULL"
	ActionFailed             Action = "FAILED"
)

// Decision records how one signal was handled
type Decision struct {
	Action      Action  `json:"action"`
	Reason      string  `json:"reason,omitempty"`
	Evicted     string  `json:"evicted,omitempty"`
	Correlation float64 `json:"correlation,omitempty"`
}

// SlotManager turns signals into positions under a hard slot limit. When
// the book is full, a sufficiently confident signal may evict the open
// position with the worst unrealized PnL.
type SlotManager struct {
	tracker          *Tracker
	guard            *CorrelationGuard
	engine           *risk.Engine
	rebalanceEnabled bool
	rebalanceMinConf float64
	logger           zerolog.Logger
}

// NewSlotManager creates a slot manager
func NewSlotManager(tracker *Tracker, guard *CorrelationGuard, engine *risk.Engine, rebalanceEnabled bool, rebalanceMinConf float64, logger zerolog.Logger) *SlotManager {
	return &SlotManager{
		tracker:          tracker,
		guard:            guard,
		engine:           engine,
		rebalanceEnabled: rebalanceEnabled,
		rebalanceMinConf: rebalanceMinConf,
		logger:           logger.With().Str("component", "SlotManager").Logger(),
	}
}

// HandleSignal runs the entry gauntlet for a non-neutral signal: skip if
// the symbol is already held, check correlation, reserve a slot (evicting
// the weakest position if allowed), then build and execute the order plan.
func (m *SlotManager) HandleSignal(ctx context.Context, analysis strategy.Analysis, balance float64, p params.ParameterSet) Decision {
	symbol := analysis.Symbol

	if m.tracker.Has(symbol) {
		return Decision{Action: ActionSkippedExisting, Reason: "position already open"}
	}

	if m.guard != nil {
		verdict := m.guard.Check(symbol, analysis.Signal.Direction, m.tracker.Positions())
		if verdict.Blocked {
			return Decision{
				Action:      ActionBlockedCorrelation,
				Reason:      "correlated with " + verdict.Against,
				Correlation: verdict.Correlation,
			}
		}
	}

	var evicted string
	if !m.tracker.TryReserve(symbol, p.MaxOpenPositions) {
		victim, ok := m.rebalance(ctx, analysis, p)
		if !ok {
			return Decision{Action: ActionDroppedFull, Reason: "all position slots in use"}
		}
		evicted = victim
		if !m.tracker.TryReserve(symbol, p.MaxOpenPositions) {
			// Another worker grabbed the freed slot first
			return Decision{Action: ActionDroppedFull, Reason: "freed slot taken", Evicted: evicted}
		}
	}

	decision := m.open(ctx, analysis, balance, p)
	if decision.Action == ActionOpened && evicted != "" {
		decision.Action = ActionRebalanced
		decision.Evicted = evicted
	}
	return decision
}

// rebalance evicts the weakest open position when the incoming signal is
// confident enough. Returns the evicted symbol.
func (m *SlotManager) rebalance(ctx context.Context, analysis strategy.Analysis, p params.ParameterSet) (string, bool) {
	if !m.rebalanceEnabled || analysis.Signal.Confidence < m.rebalanceMinConf {
		return "", false
	}

	weakest, ok := m.tracker.Weakest()
	if !ok {
		return "", false
	}

	m.logger.Info().
		Str("symbol", analysis.Symbol).
		Float64("confidence", analysis.Signal.Confidence).
		Str("evicting", weakest.Symbol).
		Float64("evicted_pnl", weakest.UnrealizedPnL).
		Msg("Rebalancing: evicting weakest position for stronger signal")

	if err := m.tracker.ForceClose(ctx, weakest.Symbol, CloseReasonRebalanced); err != nil {
		m.logger.Error().Str("symbol", weakest.Symbol).Err(err).
			Msg("Failed to evict position")
		return "", false
	}

	return weakest.Symbol, true
}

// open builds and submits the order plan for a reserved slot. The
// reservation is released on any failure and committed on success.
func (m *SlotManager) open(ctx context.Context, analysis strategy.Analysis, balance float64, p params.ParameterSet) Decision {
	symbol := analysis.Symbol

	plan, err := m.engine.BuildPlan(symbol, analysis.Signal.Direction, analysis.Price, analysis.ATR, balance, p)
	if err != nil {
		m.tracker.Release(symbol)
		m.logger.Warn().Str("symbol", symbol).Err(err).Msg("Order plan rejected")
		return Decision{Action: ActionFailed, Reason: err.Error()}
	}

	if err := m.engine.Execute(plan, p); err != nil {
		m.tracker.Release(symbol)
		m.logger.Error().Str("symbol", symbol).Err(err).Msg("Order execution failed")
		return Decision{Action: ActionFailed, Reason: err.Error()}
	}

	m.tracker.Commit(ctx, OpenPosition{
		Symbol:     symbol,
		Side:       analysis.Signal.Direction,
		Quantity:   plan.Quantity,
		EntryPrice: plan.EntryPrice,
		EntryATR:   analysis.ATR,
		StopLoss:   plan.StopLoss,
		TakeProfit: plan.TakeProfit,
		Confidence: analysis.Signal.Confidence,
		OpenedAt:   time.Now(),
	})

	return Decision{Action: ActionOpened}
}
