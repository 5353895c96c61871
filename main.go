package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"binai-trading-bot/config"
	"binai-trading-bot/internal/api"
	"binai-trading-bot/internal/auth"
	"binai-trading-bot/internal/backtest"
	"binai-trading-bot/internal/binance"
	"binai-trading-bot/internal/bot"
	"binai-trading-bot/internal/database"
	"binai-trading-bot/internal/logging"
	"binai-trading-bot/internal/params"
	"binai-trading-bot/internal/portfolio"
	"binai-trading-bot/internal/risk"
	"binai-trading-bot/internal/strategy"
	"binai-trading-bot/internal/vault"
)

func main() {
	generateConfig := flag.Bool("generate-config", false, "write a sample config.json and exit")
	configPath := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	if *generateConfig {
		if err := config.GenerateSampleConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Sample configuration written to %s\n", *configPath)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(&cfg.LoggingConfig)
	logger.Info().Msg("Starting BinAI trading bot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Prefer Vault for exchange credentials when enabled
	apiKey, secretKey := cfg.BinanceConfig.APIKey, cfg.BinanceConfig.SecretKey
	if cfg.VaultConfig.Enabled {
		vaultClient, err := vault.NewClient(cfg.VaultConfig)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create Vault client")
		}
		creds, err := vaultClient.GetCredentials(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to load credentials from Vault")
		}
		apiKey, secretKey = creds.APIKey, creds.SecretKey
		logger.Info().Msg("Exchange credentials loaded from Vault")
	}

	var client binance.FuturesClient
	if cfg.BinanceConfig.MockMode {
		logger.Warn().Msg("Mock mode enabled, no real orders will be placed")
		client = binance.NewFuturesMockClient(10000)
	} else {
		client = binance.NewFuturesClient(apiKey, secretKey, cfg.BinanceConfig.TestNet, logger)
	}

	// Optional persistence
	var paramsStore params.Store
	var tradeLog portfolio.TradeLog
	var tradeSource backtest.TradeSource
	var optimizerStore backtest.ParamsStore
	if cfg.DatabaseConfig.Enabled {
		db, err := database.NewDB(cfg.DatabaseConfig, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()
		if err := db.RunMigrations(ctx); err != nil {
			logger.Fatal().Err(err).Msg("Database migrations failed")
		}

		paramsRepo := database.NewParamsRepository(db)
		tradeRepo := database.NewTradeRepository(db)
		paramsStore = paramsRepo
		optimizerStore = paramsRepo
		tradeLog = tradeRepo
		tradeSource = tradeRepo
	}

	var snapshots portfolio.SnapshotStore
	if cfg.RedisConfig.Enabled {
		snapshots = database.NewRedisPositionStore(database.NewRedisClient(cfg.RedisConfig), logger)
	}

	// Candle cache fed by websocket, seeded over REST
	cache := binance.NewKlineCache(cfg.TradingConfig.KlineLimit)
	for _, symbol := range cfg.TradingConfig.Symbols {
		klines, err := client.GetFuturesKlines(symbol, cfg.TradingConfig.Interval, cfg.TradingConfig.KlineLimit)
		if err != nil {
			logger.Warn().Str("symbol", symbol).Err(err).Msg("Could not seed candle cache")
			continue
		}
		cache.Seed(symbol, klines)
	}

	var stream *binance.KlineStream
	if !cfg.BinanceConfig.MockMode {
		stream = binance.NewKlineStream(cfg.TradingConfig.Symbols, cfg.TradingConfig.Interval, cache, cfg.BinanceConfig.TestNet, logger)
		stream.Start()
	}

	rules := binance.NewExchangeRules(client, 5*time.Minute)
	analyzer := strategy.NewAnalyzer(logger)
	resolver := params.NewResolver(
		paramsStore,
		params.Defaults(cfg),
		time.Duration(cfg.StrategyConfig.ParamCacheTTLSecs)*time.Second,
		logger,
	)

	tracker := portfolio.NewTracker(client, tradeLog, snapshots, logger)
	riskEngine := risk.NewEngine(client, rules, cfg.TradingConfig.DryRun, logger)

	var guard *portfolio.CorrelationGuard
	if cfg.CorrelationConfig.Enabled {
		guard = portfolio.NewCorrelationGuard(
			client,
			true,
			cfg.CorrelationConfig.Threshold,
			cfg.TradingConfig.Interval,
			cfg.CorrelationConfig.KlineLimit,
			logger,
		)
	}

	slots := portfolio.NewSlotManager(
		tracker,
		guard,
		riskEngine,
		cfg.RebalanceConfig.Enabled,
		cfg.RebalanceConfig.MinConfidence,
		logger,
	)

	var optimizer *backtest.Optimizer
	if cfg.OptimizerConfig.Enabled && tradeSource != nil && optimizerStore != nil {
		optimizer = backtest.NewOptimizer(
			backtest.NewEngine(10000, 0.0004, logger),
			client,
			tradeSource,
			optimizerStore,
			resolver,
			cfg.TradingConfig.Interval,
			cfg.OptimizerConfig.BacktestLimit,
			cfg.OptimizerConfig.RecentTrades,
			cfg.OptimizerConfig.MinWinRate,
			logger,
		)
	}

	engine := bot.NewEngine(cfg, client, cache, analyzer, resolver, slots, tracker, optimizer, logger)

	// Close anything left on the exchange from a previous run
	if cleanup, err := engine.CleanupOrphans(ctx); err != nil {
		logger.Error().Err(err).Msg("Startup orphan cleanup failed")
	} else if cleanup.OrphansClosed > 0 {
		logger.Warn().Int("closed", cleanup.OrphansClosed).Strs("symbols", cleanup.Symbols).
			Msg("Closed orphan positions from previous run")
	}

	engine.Start(ctx)

	var server *api.Server
	if cfg.ServerConfig.Enabled {
		var jwtManager *auth.JWTManager
		if cfg.AuthConfig.Enabled {
			jwtManager = auth.NewJWTManager(cfg.AuthConfig.JWTSecret, cfg.AuthConfig.TokenDuration)
		}
		server = api.NewServer(cfg.ServerConfig, engine, tradeSource, jwtManager, logger)
		go func() {
			if err := server.Start(); err != nil {
				logger.Error().Err(err).Msg("API server exited")
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("Shutting down")

	cancel()
	engine.Stop()
	if stream != nil {
		stream.Stop()
	}
	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.ServerConfig.ShutdownTimeout)*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("API server shutdown failed")
		}
	}

	logger.Info().Msg("Shutdown complete")
}
