package binance

// FuturesClient defines the interface for Binance Futures API operations
type FuturesClient interface {
	// ==================== ACCOUNT ====================

	// GetFuturesAccountInfo retrieves futures account information including balances
	GetFuturesAccountInfo() (*FuturesAccountInfo, error)

	// GetUSDTBalance fetches the USDT wallet balance from the futures account
	GetUSDTBalance() (float64, error)

	// GetPositions retrieves all futures positions
	GetPositions() ([]FuturesPosition, error)

	// ==================== LEVERAGE ====================

	// SetLeverage sets the leverage for a symbol (1-125x)
	SetLeverage(symbol string, leverage int) (*LeverageResponse, error)

	// ==================== TRADING ====================

	// PlaceFuturesOrder places a new futures order
	PlaceFuturesOrder(params FuturesOrderParams) (*FuturesOrderResponse, error)

	// CancelAllFuturesOrders cancels all open orders for a symbol
	CancelAllFuturesOrders(symbol string) error

	// GetOpenOrders retrieves all open orders for a symbol (empty string for all symbols)
	GetOpenOrders(symbol string) ([]FuturesOrder, error)

	// ==================== MARKET DATA ====================

	// GetFuturesKlines retrieves candlestick data for futures
	GetFuturesKlines(symbol, interval string, limit int) ([]Kline, error)

	// GetFuturesCurrentPrice retrieves the current price for a symbol
	GetFuturesCurrentPrice(symbol string) (float64, error)

	// ==================== EXCHANGE INFO ====================

	// GetFuturesExchangeInfo retrieves futures exchange information
	GetFuturesExchangeInfo() (*FuturesExchangeInfo, error)

	// ==================== HISTORY ====================

	// GetTradeHistoryByDateRange retrieves trade fills for a symbol and date range.
	// startTime/endTime in milliseconds, 0 to ignore
	GetTradeHistoryByDateRange(symbol string, startTime, endTime int64, limit int) ([]FuturesTrade, error)
}

// Compile-time interface checks
var (
	_ FuturesClient = (*FuturesClientImpl)(nil)
	_ FuturesClient = (*FuturesMockClient)(nil)
)
