// Package risk turns a signal into a sized, protected position: it derives
// stop-loss and take-profit distances, sizes the order against the account
// balance, and places the entry plus both protective orders.
package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"binai-trading-bot/internal/binance"
	"binai-trading-bot/internal/params"
	"binai-trading-bot/internal/strategy"
)

var (
	// ErrZeroStopDistance means the stop distance rounded to nothing at the
	// symbol's price precision, leaving no measurable risk per unit
	ErrZeroStopDistance = errors.New("stop distance rounds to zero")
	// ErrZeroQuantity means the computed quantity rounded to nothing at the
	// symbol's quantity precision
	ErrZeroQuantity = errors.New("quantity rounds to zero")
	// ErrInvalidInputs means price or balance was missing or non-positive
	ErrInvalidInputs = errors.New("invalid sizing inputs")
)

// OrderPlan is a fully derived order set, ready to submit
type OrderPlan struct {
	Symbol        string
	Direction     strategy.Direction
	Quantity      float64
	EntryPrice    float64
	StopLoss      float64
	TakeProfit    float64
	ClientOrderID string // shared id prefix tying entry, SL and TP together
}

// Engine builds and executes order plans
type Engine struct {
	client binance.FuturesClient
	rules  *binance.ExchangeRules
	dryRun bool
	logger zerolog.Logger
}

// NewEngine creates a risk engine. In dry-run mode plans are built and
// logged but never submitted.
func NewEngine(client binance.FuturesClient, rules *binance.ExchangeRules, dryRun bool, logger zerolog.Logger) *Engine {
	return &Engine{
		client: client,
		rules:  rules,
		dryRun: dryRun,
		logger: logger.With().Str("component", "RiskEngine").Logger(),
	}
}

func roundToPrecision(value float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Round(value*scale) / scale
}

func floorToPrecision(value float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Floor(value*scale) / scale
}

// BuildPlan derives protective distances and position size for a signal.
// Dynamic mode scales distances with ATR and sizes the position so a stop
// hit loses balance*riskPerTrade; static mode uses fixed fractions. Plans
// whose distances or quantity round to zero are rejected.
func (e *Engine) BuildPlan(symbol string, direction strategy.Direction, price, atr, balance float64, p params.ParameterSet) (*OrderPlan, error) {
	if price <= 0 || balance <= 0 {
		return nil, fmt.Errorf("%w: price=%.8f balance=%.2f", ErrInvalidInputs, price, balance)
	}

	prec, err := e.rules.PrecisionFor(symbol)
	if err != nil {
		return nil, fmt.Errorf("precision lookup for %s: %w", symbol, err)
	}

	var slDistance, tpDistance float64
	if p.UseDynamicSLTP && atr > 0 {
		slDistance = atr * p.ATRMultiplierSL
		tpDistance = atr * p.ATRMultiplierTP
	} else {
		slDistance = price * p.StopLossPercent
		tpDistance = price * p.TakeProfitPercent
	}

	slDistance = roundToPrecision(slDistance, prec.PricePrecision)
	tpDistance = roundToPrecision(tpDistance, prec.PricePrecision)
	if slDistance <= 0 || tpDistance <= 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrZeroStopDistance)
	}

	var quantity float64
	if p.UseDynamicSizing {
		quantity = balance * p.RiskPerTrade / slDistance
	} else {
		quantity = balance * p.PositionSizePercent * float64(p.Leverage) / price
	}

	quantity = floorToPrecision(quantity, prec.QuantityPrecision)
	if quantity <= 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrZeroQuantity)
	}

	var stopLoss, takeProfit float64
	if direction == strategy.DirectionLong {
		stopLoss = price - slDistance
		takeProfit = price + tpDistance
	} else {
		stopLoss = price + slDistance
		takeProfit = price - tpDistance
	}

	stopLoss = roundToPrecision(stopLoss, prec.PricePrecision)
	takeProfit = roundToPrecision(takeProfit, prec.PricePrecision)
	if stopLoss <= 0 || takeProfit <= 0 {
		return nil, fmt.Errorf("%s: protective price below zero (sl=%.8f tp=%.8f)", symbol, stopLoss, takeProfit)
	}

	return &OrderPlan{
		Symbol:        symbol,
		Direction:     direction,
		Quantity:      quantity,
		EntryPrice:    price,
		StopLoss:      stopLoss,
		TakeProfit:    takeProfit,
		ClientOrderID: "bnai-" + uuid.New().String()[:8],
	}, nil
}

// Execute submits the plan: leverage, market entry, then STOP_MARKET and
// TAKE_PROFIT_MARKET closePosition orders. If a protective order cannot be
// placed the fresh position is closed at market immediately rather than
// left unprotected.
func (e *Engine) Execute(plan *OrderPlan, p params.ParameterSet) error {
	if e.dryRun {
		e.logger.Info().
			Str("symbol", plan.Symbol).
			Str("direction", string(plan.Direction)).
			Float64("quantity", plan.Quantity).
			Float64("stop_loss", plan.StopLoss).
			Float64("take_profit", plan.TakeProfit).
			Msg("Dry run: skipping order placement")
		return nil
	}

	if _, err := e.client.SetLeverage(plan.Symbol, p.Leverage); err != nil {
		return fmt.Errorf("setting leverage for %s: %w", plan.Symbol, err)
	}

	entrySide := binance.OrderSideBuy
	exitSide := binance.OrderSideSell
	if plan.Direction == strategy.DirectionShort {
		entrySide = binance.OrderSideSell
		exitSide = binance.OrderSideBuy
	}

	if _, err := e.client.PlaceFuturesOrder(binance.FuturesOrderParams{
		Symbol:           plan.Symbol,
		Side:             entrySide,
		PositionSide:     binance.PositionSideBoth,
		Type:             binance.FuturesOrderTypeMarket,
		Quantity:         plan.Quantity,
		NewClientOrderId: plan.ClientOrderID + "-E",
	}); err != nil {
		return fmt.Errorf("placing entry order for %s: %w", plan.Symbol, err)
	}

	if _, err := e.client.PlaceFuturesOrder(binance.FuturesOrderParams{
		Symbol:           plan.Symbol,
		Side:             exitSide,
		PositionSide:     binance.PositionSideBoth,
		Type:             binance.FuturesOrderTypeStopMarket,
		StopPrice:        plan.StopLoss,
		ClosePosition:    true,
		WorkingType:      binance.WorkingTypeMarkPrice,
		NewClientOrderId: plan.ClientOrderID + "-S",
	}); err != nil {
		e.remediate(plan, exitSide, err)
		return fmt.Errorf("placing stop loss for %s: %w", plan.Symbol, err)
	}

	if _, err := e.client.PlaceFuturesOrder(binance.FuturesOrderParams{
		Symbol:           plan.Symbol,
		Side:             exitSide,
		PositionSide:     binance.PositionSideBoth,
		Type:             binance.FuturesOrderTypeTakeProfitMarket,
		StopPrice:        plan.TakeProfit,
		ClosePosition:    true,
		WorkingType:      binance.WorkingTypeMarkPrice,
		NewClientOrderId: plan.ClientOrderID + "-T",
	}); err != nil {
		e.remediate(plan, exitSide, err)
		return fmt.Errorf("placing take profit for %s: %w", plan.Symbol, err)
	}

	e.logger.Info().
		Str("symbol", plan.Symbol).
		Str("direction", string(plan.Direction)).
		Float64("quantity", plan.Quantity).
		Float64("entry", plan.EntryPrice).
		Float64("stop_loss", plan.StopLoss).
		Float64("take_profit", plan.TakeProfit).
		Str("client_order_id", plan.ClientOrderID).
		Msg("Position opened with protective orders")

	return nil
}

// remediate closes a position whose protective orders could not be placed.
// An unprotected position is worse than no position.
func (e *Engine) remediate(plan *OrderPlan, exitSide binance.OrderSide, cause error) {
	e.logger.Error().
		Str("symbol", plan.Symbol).
		Err(cause).
		Msg("Protective order failed, closing position at market")

	if err := e.client.CancelAllFuturesOrders(plan.Symbol); err != nil {
		e.logger.Error().Str("symbol", plan.Symbol).Err(err).
			Msg("Failed to cancel remaining orders during remediation")
	}

	if _, err := e.client.PlaceFuturesOrder(binance.FuturesOrderParams{
		Symbol:           plan.Symbol,
		Side:             exitSide,
		PositionSide:     binance.PositionSideBoth,
		Type:             binance.FuturesOrderTypeMarket,
		Quantity:         plan.Quantity,
		ReduceOnly:       true,
		NewClientOrderId: plan.ClientOrderID + "-X",
	}); err != nil {
		e.logger.Error().Str("symbol", plan.Symbol).Err(err).
			Msg("Remediation close failed, position may be unprotected")
	}
}
