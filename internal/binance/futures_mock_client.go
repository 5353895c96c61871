package binance

import (
	"fmt"
	"sync"
	"time"
)

// FuturesMockClient implements the FuturesClient interface for dry-run mode
// and tests. Order placement mutates an in-memory position book so the
// reconcile and cleanup paths can be exercised without the live API.
type FuturesMockClient struct {
	mu          sync.RWMutex
	balance     float64
	positions   map[string]*FuturesPosition
	openOrders  map[string][]FuturesOrder
	trades      map[string][]FuturesTrade
	klines      map[string][]Kline
	prices      map[string]float64
	leverage    map[string]int
	nextOrderId int64

	// Orders placed through the mock, in placement sequence
	PlacedOrders []FuturesOrderParams
	// CanceledSymbols records CancelAllFuturesOrders calls
	CanceledSymbols []string

	// FailOrderType makes PlaceFuturesOrder return an error for the given
	// order type. Used to exercise protective-order failure handling.
	FailOrderType map[FuturesOrderType]error
}

// NewFuturesMockClient creates a new mock futures client
func NewFuturesMockClient(initialBalance float64) *FuturesMockClient {
	return &FuturesMockClient{
		balance:       initialBalance,
		positions:     make(map[string]*FuturesPosition),
		openOrders:    make(map[string][]FuturesOrder),
		trades:        make(map[string][]FuturesTrade),
		klines:        make(map[string][]Kline),
		prices:        make(map[string]float64),
		leverage:      make(map[string]int),
		nextOrderId:   1000,
		FailOrderType: make(map[FuturesOrderType]error),
	}
}

// ==================== TEST SEEDING ====================

// SetKlines seeds candle history for a symbol
func (c *FuturesMockClient) SetKlines(symbol string, klines []Kline) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.klines[symbol] = klines
	if len(klines) > 0 {
		c.prices[symbol] = klines[len(klines)-1].Close
	}
}

// SetPrice seeds the current price for a symbol
func (c *FuturesMockClient) SetPrice(symbol string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[symbol] = price
}

// SetPosition seeds an exchange-side position
func (c *FuturesMockClient) SetPosition(pos FuturesPosition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := pos
	c.positions[pos.Symbol] = &p
}

// SetTrades seeds fill history for a symbol
func (c *FuturesMockClient) SetTrades(symbol string, trades []FuturesTrade) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trades[symbol] = trades
}

// ==================== ACCOUNT ====================

func (c *FuturesMockClient) GetFuturesAccountInfo() (*FuturesAccountInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totalUnrealizedProfit := 0.0
	for _, pos := range c.positions {
		totalUnrealizedProfit += pos.UnrealizedProfit
	}

	return &FuturesAccountInfo{
		CanTrade:              true,
		TotalWalletBalance:    c.balance,
		TotalUnrealizedProfit: totalUnrealizedProfit,
		TotalMarginBalance:    c.balance + totalUnrealizedProfit,
		AvailableBalance:      c.balance,
		Assets: []FuturesAsset{
			{
				Asset:            "USDT",
				WalletBalance:    c.balance,
				AvailableBalance: c.balance,
				MarginAvailable:  true,
			},
		},
	}, nil
}

func (c *FuturesMockClient) GetUSDTBalance() (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.balance, nil
}

func (c *FuturesMockClient) GetPositions() ([]FuturesPosition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	positions := make([]FuturesPosition, 0, len(c.positions))
	for _, pos := range c.positions {
		snapshot := *pos
		if price, ok := c.prices[snapshot.Symbol]; ok && snapshot.PositionAmt != 0 {
			snapshot.MarkPrice = price
			if snapshot.PositionAmt > 0 {
				snapshot.UnrealizedProfit = (price - snapshot.EntryPrice) * snapshot.PositionAmt
			} else {
				snapshot.UnrealizedProfit = (snapshot.EntryPrice - price) * (-snapshot.PositionAmt)
			}
		}
		positions = append(positions, snapshot)
	}

	return positions, nil
}

// ==================== LEVERAGE ====================

func (c *FuturesMockClient) SetLeverage(symbol string, leverage int) (*LeverageResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if leverage < 1 || leverage > 125 {
		return nil, fmt.Errorf("invalid leverage: must be between 1 and 125")
	}

	c.leverage[symbol] = leverage

	return &LeverageResponse{
		Leverage: leverage,
		Symbol:   symbol,
	}, nil
}

// ==================== TRADING ====================

func (c *FuturesMockClient) PlaceFuturesOrder(params FuturesOrderParams) (*FuturesOrderResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err, ok := c.FailOrderType[params.Type]; ok && err != nil {
		return nil, err
	}

	c.PlacedOrders = append(c.PlacedOrders, params)
	c.nextOrderId++

	price := c.prices[params.Symbol]

	switch params.Type {
	case FuturesOrderTypeMarket:
		c.applyMarketFill(params, price)
	case FuturesOrderTypeStopMarket, FuturesOrderTypeTakeProfitMarket:
		c.openOrders[params.Symbol] = append(c.openOrders[params.Symbol], FuturesOrder{
			OrderId:       c.nextOrderId,
			Symbol:        params.Symbol,
			Status:        "NEW",
			ClientOrderId: params.NewClientOrderId,
			Type:          string(params.Type),
			Side:          string(params.Side),
			PositionSide:  string(params.PositionSide),
			StopPrice:     params.StopPrice,
			ClosePosition: params.ClosePosition,
			Time:          time.Now().UnixMilli(),
		})
	}

	return &FuturesOrderResponse{
		OrderId:       c.nextOrderId,
		Symbol:        params.Symbol,
		Status:        "NEW",
		ClientOrderId: params.NewClientOrderId,
		AvgPrice:      price,
		OrigQty:       params.Quantity,
		ExecutedQty:   params.Quantity,
		Type:          string(params.Type),
		Side:          string(params.Side),
		PositionSide:  string(params.PositionSide),
		StopPrice:     params.StopPrice,
		UpdateTime:    time.Now().UnixMilli(),
	}, nil
}

// applyMarketFill mutates the in-memory position book for a market order.
// Caller must hold c.mu.
func (c *FuturesMockClient) applyMarketFill(params FuturesOrderParams, price float64) {
	pos, exists := c.positions[params.Symbol]
	if !exists {
		pos = &FuturesPosition{
			Symbol:       params.Symbol,
			PositionSide: "BOTH",
			Leverage:     c.leverage[params.Symbol],
		}
		c.positions[params.Symbol] = pos
	}

	delta := params.Quantity
	if params.Side == OrderSideSell {
		delta = -delta
	}

	if pos.PositionAmt == 0 {
		pos.EntryPrice = price
	}
	pos.PositionAmt += delta
	pos.MarkPrice = price
	if pos.PositionAmt == 0 {
		pos.EntryPrice = 0
		pos.UnrealizedProfit = 0
	}
	pos.UpdateTime = time.Now().UnixMilli()
}

func (c *FuturesMockClient) CancelAllFuturesOrders(symbol string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.CanceledSymbols = append(c.CanceledSymbols, symbol)
	delete(c.openOrders, symbol)
	return nil
}

func (c *FuturesMockClient) GetOpenOrders(symbol string) ([]FuturesOrder, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if symbol != "" {
		return append([]FuturesOrder(nil), c.openOrders[symbol]...), nil
	}

	var all []FuturesOrder
	for _, orders := range c.openOrders {
		all = append(all, orders...)
	}
	return all, nil
}

// ==================== MARKET DATA ====================

func (c *FuturesMockClient) GetFuturesKlines(symbol, interval string, limit int) ([]Kline, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	klines, ok := c.klines[symbol]
	if !ok {
		return nil, fmt.Errorf("no kline data for %s", symbol)
	}
	if limit > 0 && len(klines) > limit {
		klines = klines[len(klines)-limit:]
	}
	return append([]Kline(nil), klines...), nil
}

func (c *FuturesMockClient) GetFuturesCurrentPrice(symbol string) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	price, ok := c.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("no price for %s", symbol)
	}
	return price, nil
}

// ==================== EXCHANGE INFO ====================

func (c *FuturesMockClient) GetFuturesExchangeInfo() (*FuturesExchangeInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	symbols := make([]FuturesSymbolInfo, 0, len(c.klines))
	seen := make(map[string]bool)
	for symbol := range c.klines {
		symbols = append(symbols, FuturesSymbolInfo{
			Symbol:            symbol,
			Status:            "TRADING",
			QuoteAsset:        "USDT",
			PricePrecision:    2,
			QuantityPrecision: 3,
		})
		seen[symbol] = true
	}
	for symbol := range c.positions {
		if !seen[symbol] {
			symbols = append(symbols, FuturesSymbolInfo{
				Symbol:            symbol,
				Status:            "TRADING",
				QuoteAsset:        "USDT",
				PricePrecision:    2,
				QuantityPrecision: 3,
			})
		}
	}

	return &FuturesExchangeInfo{
		ServerTime: time.Now().UnixMilli(),
		Symbols:    symbols,
	}, nil
}

// ==================== HISTORY ====================

func (c *FuturesMockClient) GetTradeHistoryByDateRange(symbol string, startTime, endTime int64, limit int) ([]FuturesTrade, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []FuturesTrade
	for _, t := range c.trades[symbol] {
		if startTime > 0 && t.Time < startTime {
			continue
		}
		if endTime > 0 && t.Time > endTime {
			continue
		}
		out = append(out, t)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
