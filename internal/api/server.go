// Package api exposes the bot's control surface over HTTP: status and
// position queries plus manual triggers for the analysis and reconcile
// cycles.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"binai-trading-bot/config"
	"binai-trading-bot/internal/auth"
	"binai-trading-bot/internal/backtest"
	"binai-trading-bot/internal/bot"
)

// Server is the HTTP API server
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	engine     *bot.Engine
	trades     backtest.TradeSource
	cfg        config.ServerConfig
	startedAt  time.Time
	logger     zerolog.Logger
}

// NewServer creates the API server. jwtManager may be nil to run the API
// unauthenticated; trades may be nil when the database is disabled.
func NewServer(cfg config.ServerConfig, engine *bot.Engine, trades backtest.TradeSource, jwtManager *auth.JWTManager, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	if origins := splitOrigins(cfg.AllowedOrigins); len(origins) == 0 || origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	server := &Server{
		router:    router,
		engine:    engine,
		trades:    trades,
		cfg:       cfg,
		startedAt: time.Now(),
		logger:    logger.With().Str("component", "APIServer").Logger(),
	}

	server.setupRoutes(jwtManager)
	return server
}

func (s *Server) setupRoutes(jwtManager *auth.JWTManager) {
	s.router.GET("/api/health", s.handleHealth)

	api := s.router.Group("/api")
	if jwtManager != nil {
		api.Use(auth.Middleware(jwtManager))
	}

	api.GET("/status", s.handleStatus)
	api.GET("/positions", s.handlePositions)
	api.GET("/trades/recent", s.handleRecentTrades)
	api.POST("/cycle", s.handleRunCycle)
	api.POST("/reconcile", s.handleReconcile)
	api.POST("/cleanup", s.handleCleanup)
}

// Start runs the HTTP server until the listener fails or Shutdown is
// called
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
	}

	s.logger.Info().Str("addr", addr).Msg("API server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

func splitOrigins(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
