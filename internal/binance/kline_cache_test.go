package binance

import "testing"

func cacheCandle(openTime int64, close float64) Kline {
	return Kline{OpenTime: openTime, Close: close}
}

func TestKlineCacheSeedTrimsToMaxLen(t *testing.T) {
	cache := NewKlineCache(3)

	cache.Seed("BTCUSDT", []Kline{
		cacheCandle(1, 100), cacheCandle(2, 101), cacheCandle(3, 102),
		cacheCandle(4, 103), cacheCandle(5, 104),
	})

	window := cache.Window("BTCUSDT")
	if len(window) != 3 {
		t.Fatalf("window length = %d, want 3", len(window))
	}
	if window[0].Close != 102 || window[2].Close != 104 {
		t.Errorf("window = %v, want the newest three candles", window)
	}
}

func TestKlineCacheAppendReplacesSameOpenTime(t *testing.T) {
	cache := NewKlineCache(10)

	cache.Append("BTCUSDT", cacheCandle(1, 100))
	cache.Append("BTCUSDT", cacheCandle(2, 101))
	// Same slot updated with the final close
	cache.Append("BTCUSDT", cacheCandle(2, 105))

	window := cache.Window("BTCUSDT")
	if len(window) != 2 {
		t.Fatalf("window length = %d, want 2", len(window))
	}
	if window[1].Close != 105 {
		t.Errorf("last close = %f, want the replacement 105", window[1].Close)
	}
}

func TestKlineCacheAppendEvictsOldest(t *testing.T) {
	cache := NewKlineCache(2)

	cache.Append("BTCUSDT", cacheCandle(1, 100))
	cache.Append("BTCUSDT", cacheCandle(2, 101))
	cache.Append("BTCUSDT", cacheCandle(3, 102))

	window := cache.Window("BTCUSDT")
	if len(window) != 2 {
		t.Fatalf("window length = %d, want 2", len(window))
	}
	if window[0].OpenTime != 2 {
		t.Errorf("oldest open time = %d, want 2 after eviction", window[0].OpenTime)
	}
}

func TestKlineCacheWindowReturnsCopy(t *testing.T) {
	cache := NewKlineCache(10)
	cache.Seed("BTCUSDT", []Kline{cacheCandle(1, 100)})

	window := cache.Window("BTCUSDT")
	window[0].Close = 999

	if fresh := cache.Window("BTCUSDT"); fresh[0].Close != 100 {
		t.Error("mutating a returned window must not affect the cache")
	}

	if cache.Window("NOPEUSDT") != nil {
		t.Error("unknown symbol should return nil")
	}
}

func TestKlineCacheLenAndSymbols(t *testing.T) {
	cache := NewKlineCache(10)
	cache.Seed("BTCUSDT", []Kline{cacheCandle(1, 100), cacheCandle(2, 101)})

	if cache.Len("BTCUSDT") != 2 {
		t.Errorf("Len = %d, want 2", cache.Len("BTCUSDT"))
	}
	if cache.Len("ETHUSDT") != 0 {
		t.Errorf("Len for unknown symbol = %d, want 0", cache.Len("ETHUSDT"))
	}

	symbols := cache.Symbols()
	if len(symbols) != 1 || symbols[0] != "BTCUSDT" {
		t.Errorf("symbols = %v, want [BTCUSDT]", symbols)
	}
}
