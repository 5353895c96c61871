package params

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Store loads optimizer output for a symbol. A nil map with a nil error
// means no stored parameters exist for the symbol.
type Store interface {
	GetSymbolParameters(ctx context.Context, symbol string) (map[string]float64, error)
}

type cacheEntry struct {
	params    ParameterSet
	fetchedAt time.Time
}

// Resolver merges configured defaults with stored per-symbol overrides.
// Results are cached per symbol; the store is consulted at most once per
// TTL window per symbol, including when the lookup fails or finds nothing.
type Resolver struct {
	mu       sync.Mutex
	store    Store
	defaults ParameterSet
	ttl      time.Duration
	cache    map[string]cacheEntry
	logger   zerolog.Logger

	now func() time.Time // test hook
}

// NewResolver creates a resolver. store may be nil when persistence is
// disabled; every symbol then resolves to the defaults.
func NewResolver(store Store, defaults ParameterSet, ttl time.Duration, logger zerolog.Logger) *Resolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Resolver{
		store:    store,
		defaults: defaults,
		ttl:      ttl,
		cache:    make(map[string]cacheEntry),
		logger:   logger.With().Str("component", "ParamResolver").Logger(),
		now:      time.Now,
	}
}

// Defaults returns the configured baseline set
func (r *Resolver) Defaults() ParameterSet {
	return r.defaults
}

// Resolve returns the effective parameters for a symbol. An explicit
// override bypasses both the cache and the store without touching either.
func (r *Resolver) Resolve(ctx context.Context, symbol string, override *ParameterSet) ParameterSet {
	if override != nil {
		return *override
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.cache[symbol]; ok && r.now().Sub(entry.fetchedAt) < r.ttl {
		return entry.params
	}

	resolved := r.defaults
	if r.store != nil {
		overrides, err := r.store.GetSymbolParameters(ctx, symbol)
		if err != nil {
			r.logger.Warn().Str("symbol", symbol).Err(err).
				Msg("Parameter store lookup failed, using defaults")
		} else if overrides != nil {
			resolved = Merge(r.defaults, overrides)
		}
	}

	// Cache even on miss or failure so the store is not hammered every cycle
	r.cache[symbol] = cacheEntry{params: resolved, fetchedAt: r.now()}

	return resolved
}

// Invalidate drops the cached entry for a symbol, forcing the next Resolve
// to consult the store. The optimizer calls this after writing new values.
func (r *Resolver) Invalidate(symbol string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, symbol)
}
