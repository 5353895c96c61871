package binance

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// FuturesStreamURL is the production Binance Futures websocket URL
	FuturesStreamURL = "wss://fstream.binance.com"
	// FuturesTestnetStreamURL is the testnet Binance Futures websocket URL
	FuturesTestnetStreamURL = "wss://stream.binancefuture.com"
)

// klineEvent is the payload of a combined-stream kline message
type klineEvent struct {
	Data struct {
		EventType string `json:"e"`
		Symbol    string `json:"s"`
		Kline     struct {
			OpenTime  int64  `json:"t"`
			CloseTime int64  `json:"T"`
			Open      string `json:"o"`
			High      string `json:"h"`
			Low       string `json:"l"`
			Close     string `json:"c"`
			Volume    string `json:"v"`
			Closed    bool   `json:"x"`
		} `json:"k"`
	} `json:"data"`
}

// KlineStream subscribes to combined kline streams and feeds closed candles
// into a KlineCache. Connection loss triggers reconnect with backoff.
type KlineStream struct {
	mu        sync.RWMutex
	baseURL   string
	symbols   []string
	interval  string
	cache     *KlineCache
	logger    zerolog.Logger
	conn      *websocket.Conn
	isRunning bool
	stopChan  chan struct{}
}

// NewKlineStream creates a stream for the given symbols and interval
func NewKlineStream(symbols []string, interval string, cache *KlineCache, testnet bool, logger zerolog.Logger) *KlineStream {
	baseURL := FuturesStreamURL
	if testnet {
		baseURL = FuturesTestnetStreamURL
	}
	return &KlineStream{
		baseURL:  baseURL,
		symbols:  symbols,
		interval: interval,
		cache:    cache,
		logger:   logger.With().Str("component", "KlineStream").Logger(),
		stopChan: make(chan struct{}),
	}
}

// Start launches the connect/read loop in a goroutine
func (s *KlineStream) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	go s.connect()
}

// Stop closes the stream
func (s *KlineStream) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	conn := s.conn
	s.mu.Unlock()

	close(s.stopChan)
	if conn != nil {
		conn.Close()
	}
}

func (s *KlineStream) streamURL() string {
	streams := make([]string, 0, len(s.symbols))
	for _, symbol := range s.symbols {
		streams = append(streams, fmt.Sprintf("%s@kline_%s", strings.ToLower(symbol), s.interval))
	}
	return fmt.Sprintf("%s/stream?streams=%s", s.baseURL, strings.Join(streams, "/"))
}

// connect establishes the WebSocket connection and reconnects on loss
func (s *KlineStream) connect() {
	wsURL := s.streamURL()

	for {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		s.logger.Info().Int("symbols", len(s.symbols)).Str("interval", s.interval).Msg("Connecting kline stream")

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Kline stream connection failed, retrying in 5s")
			select {
			case <-s.stopChan:
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		s.logger.Info().Msg("Kline stream connected")

		s.readLoop(conn)

		s.mu.RLock()
		running = s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		s.logger.Warn().Msg("Kline stream lost, reconnecting in 3s")
		select {
		case <-s.stopChan:
			return
		case <-time.After(3 * time.Second):
		}
	}
}

// readLoop reads messages until the connection drops
func (s *KlineStream) readLoop(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Info().Msg("Kline stream closed normally")
			} else {
				s.logger.Warn().Err(err).Msg("Kline stream read error")
			}
			return
		}

		s.handleMessage(message)
	}
}

func (s *KlineStream) handleMessage(message []byte) {
	var event klineEvent
	if err := json.Unmarshal(message, &event); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to parse kline event")
		return
	}

	if event.Data.EventType != "kline" || !event.Data.Kline.Closed {
		return
	}

	k := event.Data.Kline
	s.cache.Append(event.Data.Symbol, Kline{
		OpenTime:  k.OpenTime,
		Open:      parseFloat(k.Open),
		High:      parseFloat(k.High),
		Low:       parseFloat(k.Low),
		Close:     parseFloat(k.Close),
		Volume:    parseFloat(k.Volume),
		CloseTime: k.CloseTime,
	})
}
