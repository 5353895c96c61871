package binance

import (
	"fmt"
	"sync"
	"time"
)

// ExchangeRules caches symbol precision rules from exchange info with a TTL,
// so every order does not refetch the full exchange info payload.
type ExchangeRules struct {
	mu        sync.RWMutex
	client    FuturesClient
	ttl       time.Duration
	fetchedAt time.Time
	rules     map[string]SymbolPrecision
}

// NewExchangeRules creates a rules cache. A zero ttl defaults to 5 minutes.
func NewExchangeRules(client FuturesClient, ttl time.Duration) *ExchangeRules {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ExchangeRules{
		client: client,
		ttl:    ttl,
		rules:  make(map[string]SymbolPrecision),
	}
}

// PrecisionFor returns the precision rules for a symbol, refreshing the
// cached exchange info when it has expired.
func (r *ExchangeRules) PrecisionFor(symbol string) (SymbolPrecision, error) {
	r.mu.RLock()
	fresh := time.Since(r.fetchedAt) < r.ttl
	prec, ok := r.rules[symbol]
	r.mu.RUnlock()

	if fresh && ok {
		return prec, nil
	}

	if err := r.refresh(); err != nil {
		// Serve a stale entry over failing the caller
		if ok {
			return prec, nil
		}
		return SymbolPrecision{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	prec, ok = r.rules[symbol]
	if !ok {
		return SymbolPrecision{}, fmt.Errorf("symbol %s not in exchange info", symbol)
	}
	return prec, nil
}

func (r *ExchangeRules) refresh() error {
	info, err := r.client.GetFuturesExchangeInfo()
	if err != nil {
		return fmt.Errorf("refreshing exchange info: %w", err)
	}

	rules := make(map[string]SymbolPrecision, len(info.Symbols))
	for _, s := range info.Symbols {
		rules[s.Symbol] = SymbolPrecision{
			PricePrecision:    s.PricePrecision,
			QuantityPrecision: s.QuantityPrecision,
		}
	}

	r.mu.Lock()
	r.rules = rules
	r.fetchedAt = time.Now()
	r.mu.Unlock()

	return nil
}
