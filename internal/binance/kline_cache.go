package binance

import (
	"sync"
)

// KlineCache holds a sliding window of closed candles per symbol.
// Only closed candles enter the window; an in-flight candle with the same
// open time replaces the previous value for that slot.
type KlineCache struct {
	mu      sync.RWMutex
	windows map[string][]Kline
	maxLen  int
}

// NewKlineCache creates a cache keeping at most maxLen candles per symbol
func NewKlineCache(maxLen int) *KlineCache {
	if maxLen <= 0 {
		maxLen = 250
	}
	return &KlineCache{
		windows: make(map[string][]Kline),
		maxLen:  maxLen,
	}
}

// Seed replaces the window for a symbol with REST backfill data
func (c *KlineCache) Seed(symbol string, klines []Kline) {
	c.mu.Lock()
	defer c.mu.Unlock()

	window := append([]Kline(nil), klines...)
	if len(window) > c.maxLen {
		window = window[len(window)-c.maxLen:]
	}
	c.windows[symbol] = window
}

// Append adds a closed candle to the symbol's window. A candle sharing the
// open time of the last entry replaces it.
func (c *KlineCache) Append(symbol string, k Kline) {
	c.mu.Lock()
	defer c.mu.Unlock()

	window := c.windows[symbol]
	if n := len(window); n > 0 && window[n-1].OpenTime == k.OpenTime {
		window[n-1] = k
		return
	}

	window = append(window, k)
	if len(window) > c.maxLen {
		window = window[len(window)-c.maxLen:]
	}
	c.windows[symbol] = window
}

// Window returns a copy of the symbol's candle window
func (c *KlineCache) Window(symbol string) []Kline {
	c.mu.RLock()
	defer c.mu.RUnlock()

	window, ok := c.windows[symbol]
	if !ok {
		return nil
	}
	return append([]Kline(nil), window...)
}

// Len returns the number of candles cached for a symbol
func (c *KlineCache) Len(symbol string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.windows[symbol])
}

// Symbols returns all symbols with cached candles
func (c *KlineCache) Symbols() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	symbols := make([]string, 0, len(c.windows))
	for s := range c.windows {
		symbols = append(symbols, s)
	}
	return symbols
}
