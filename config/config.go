package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	BinanceConfig     BinanceConfig     `json:"binance"`
	TradingConfig     TradingConfig     `json:"trading"`
	StrategyConfig    StrategyConfig    `json:"strategy"`
	RiskConfig        RiskConfig        `json:"risk"`
	CorrelationConfig CorrelationConfig `json:"correlation"`
	RebalanceConfig   RebalanceConfig   `json:"rebalance"`
	OptimizerConfig   OptimizerConfig   `json:"optimizer"`
	DatabaseConfig    DatabaseConfig    `json:"database"`
	RedisConfig       RedisConfig       `json:"redis"`
	ServerConfig      ServerConfig      `json:"server"`
	AuthConfig        AuthConfig        `json:"auth"`
	VaultConfig       VaultConfig       `json:"vault"`
	LoggingConfig     LoggingConfig     `json:"logging"`
}

type BinanceConfig struct {
	APIKey    string `json:"api_key"`
	SecretKey string `json:"secret_key"`
	TestNet   bool   `json:"testnet"`
	MockMode  bool   `json:"mock_mode"` // Use simulated exchange instead of live API
}

// TradingConfig holds the symbol universe and loop cadence
type TradingConfig struct {
	Symbols               []string `json:"symbols"`
	Interval              string   `json:"interval"`                // kline interval, e.g. "5m"
	KlineLimit            int      `json:"kline_limit"`             // candles kept per symbol
	AnalysisIntervalSecs  int      `json:"analysis_interval_secs"`  // seconds between analysis cycles
	ReconcileIntervalSecs int      `json:"reconcile_interval_secs"` // seconds between position reconciles
	WorkerCount           int      `json:"worker_count"`            // concurrent symbol analysis workers
	DryRun                bool     `json:"dry_run"`                 // analyze but never place orders
}

// StrategyConfig holds default indicator and signal parameters.
// Per-symbol optimized values from the parameter store override these.
type StrategyConfig struct {
	FastMAPeriod        int     `json:"fast_ma_period"`
	SlowMAPeriod        int     `json:"slow_ma_period"`
	RSIPeriod           int     `json:"rsi_period"`
	RSIOversold         float64 `json:"rsi_oversold"`
	RSIOverbought       float64 `json:"rsi_overbought"`
	VolumeAvgPeriod     int     `json:"volume_avg_period"`
	ADXPeriod           int     `json:"adx_period"`
	ADXTrendThreshold   float64 `json:"adx_trend_threshold"`
	BollingerLength     int     `json:"bollinger_length"`
	BollingerStdDev     float64 `json:"bollinger_std_dev"`
	MACDFastPeriod      int     `json:"macd_fast_period"`
	MACDSlowPeriod      int     `json:"macd_slow_period"`
	MACDSignalPeriod    int     `json:"macd_signal_period"`
	MinSignalConfidence float64 `json:"min_signal_confidence"`
	ParamCacheTTLSecs   int     `json:"param_cache_ttl_secs"` // per-symbol parameter cache TTL
}

// RiskConfig holds position sizing and protective order parameters
type RiskConfig struct {
	MaxOpenPositions     int     `json:"max_open_positions"`
	Leverage             int     `json:"leverage"`
	UseDynamicSLTP       bool    `json:"use_dynamic_sltp"`        // ATR-based SL/TP distances
	ATRMultiplierSL      float64 `json:"atr_multiplier_sl"`
	ATRMultiplierTP      float64 `json:"atr_multiplier_tp"`
	StopLossPercent      float64 `json:"stop_loss_percent"`       // static SL distance as fraction of price
	TakeProfitPercent    float64 `json:"take_profit_percent"`     // static TP distance as fraction of price
	UseDynamicSizing     bool    `json:"use_dynamic_sizing"`      // risk-based quantity
	RiskPerTrade         float64 `json:"risk_per_trade"`          // fraction of balance risked per trade
	PositionSizePercent  float64 `json:"position_size_percent"`   // static sizing: fraction of balance as margin
}

// CorrelationConfig guards against doubling directional exposure
type CorrelationConfig struct {
	Enabled    bool    `json:"enabled"`
	Threshold  float64 `json:"threshold"`   // block same-direction entries above this
	KlineLimit int     `json:"kline_limit"` // close-series length for Pearson
}

// RebalanceConfig controls opportunistic slot eviction when the book is full
type RebalanceConfig struct {
	Enabled       bool    `json:"enabled"`
	MinConfidence float64 `json:"min_confidence"` // new signal must be at least this strong to evict
}

// OptimizerConfig controls the parameter re-optimization loop
type OptimizerConfig struct {
	Enabled       bool    `json:"enabled"`
	IntervalHours int     `json:"interval_hours"`
	RecentTrades  int     `json:"recent_trades"`  // trades examined for stale-brain detection
	MinWinRate    float64 `json:"min_win_rate"`   // below this the stored parameters are stale
	BacktestLimit int     `json:"backtest_limit"` // candles replayed per candidate
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
	MaxConns int    `json:"max_conns"`
}

// RedisConfig holds Redis configuration for shared position snapshots
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// ServerConfig holds HTTP control API configuration
type ServerConfig struct {
	Enabled         bool   `json:"enabled"`
	Port            int    `json:"port"`
	Host            string `json:"host"`
	AllowedOrigins  string `json:"allowed_origins"`
	ReadTimeout     int    `json:"read_timeout"`     // Seconds
	WriteTimeout    int    `json:"write_timeout"`    // Seconds
	ShutdownTimeout int    `json:"shutdown_timeout"` // Seconds
}

// AuthConfig holds control API authentication configuration
type AuthConfig struct {
	Enabled       bool          `json:"enabled"`
	JWTSecret     string        `json:"jwt_secret"`
	TokenDuration time.Duration `json:"token_duration"`
}

// VaultConfig holds HashiCorp Vault configuration
type VaultConfig struct {
	Enabled    bool   `json:"enabled"`
	Address    string `json:"address"`
	Token      string `json:"token"`
	MountPath  string `json:"mount_path"`  // KV secrets engine mount path
	SecretPath string `json:"secret_path"` // Path for exchange API credentials
	TLSEnabled bool   `json:"tls_enabled"`
	CACert     string `json:"ca_cert"`
}

type LoggingConfig struct {
	Level      string `json:"level"`       // DEBUG, INFO, WARN, ERROR
	Output     string `json:"output"`      // stdout, stderr, or file path
	JSONFormat bool   `json:"json_format"` // Output as JSON
}

func Load(path string) (*Config, error) {
	// First try to load base config from file
	cfg, err := loadFromFile(path)
	if err != nil {
		// If no config file, start with empty config
		cfg = &Config{}
	}

	// Apply environment variable overrides (these take precedence)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	// Binance config
	cfg.BinanceConfig.APIKey = getEnvOrDefault("BINANCE_API_KEY", cfg.BinanceConfig.APIKey)
	cfg.BinanceConfig.SecretKey = getEnvOrDefault("BINANCE_SECRET_KEY", cfg.BinanceConfig.SecretKey)
	cfg.BinanceConfig.TestNet = getEnvOrDefault("BINANCE_TESTNET", "false") == "true"
	cfg.BinanceConfig.MockMode = getEnvOrDefault("MOCK_MODE", "false") == "true"

	// Trading config
	if symbols := os.Getenv("TRADING_SYMBOLS"); symbols != "" {
		cfg.TradingConfig.Symbols = splitAndTrim(symbols)
	}
	if len(cfg.TradingConfig.Symbols) == 0 {
		cfg.TradingConfig.Symbols = []string{"BTCUSDT", "ETHUSDT"}
	}
	cfg.TradingConfig.Interval = getEnvOrDefault("TRADING_INTERVAL", defaultString(cfg.TradingConfig.Interval, "5m"))
	cfg.TradingConfig.KlineLimit = getEnvIntOrDefault("TRADING_KLINE_LIMIT", defaultInt(cfg.TradingConfig.KlineLimit, 250))
	cfg.TradingConfig.AnalysisIntervalSecs = getEnvIntOrDefault("TRADING_ANALYSIS_INTERVAL", defaultInt(cfg.TradingConfig.AnalysisIntervalSecs, 5))
	cfg.TradingConfig.ReconcileIntervalSecs = getEnvIntOrDefault("TRADING_RECONCILE_INTERVAL", defaultInt(cfg.TradingConfig.ReconcileIntervalSecs, 30))
	cfg.TradingConfig.WorkerCount = getEnvIntOrDefault("TRADING_WORKER_COUNT", defaultInt(cfg.TradingConfig.WorkerCount, 5))
	cfg.TradingConfig.DryRun = getEnvOrDefault("TRADING_DRY_RUN", "false") == "true"

	// Strategy config
	cfg.StrategyConfig.FastMAPeriod = getEnvIntOrDefault("STRATEGY_FAST_MA_PERIOD", defaultInt(cfg.StrategyConfig.FastMAPeriod, 20))
	cfg.StrategyConfig.SlowMAPeriod = getEnvIntOrDefault("STRATEGY_SLOW_MA_PERIOD", defaultInt(cfg.StrategyConfig.SlowMAPeriod, 50))
	cfg.StrategyConfig.RSIPeriod = getEnvIntOrDefault("STRATEGY_RSI_PERIOD", defaultInt(cfg.StrategyConfig.RSIPeriod, 14))
	cfg.StrategyConfig.RSIOversold = getEnvFloatOrDefault("STRATEGY_RSI_OVERSOLD", defaultFloat(cfg.StrategyConfig.RSIOversold, 30))
	cfg.StrategyConfig.RSIOverbought = getEnvFloatOrDefault("STRATEGY_RSI_OVERBOUGHT", defaultFloat(cfg.StrategyConfig.RSIOverbought, 70))
	cfg.StrategyConfig.VolumeAvgPeriod = getEnvIntOrDefault("STRATEGY_VOLUME_AVG_PERIOD", defaultInt(cfg.StrategyConfig.VolumeAvgPeriod, 20))
	cfg.StrategyConfig.ADXPeriod = getEnvIntOrDefault("STRATEGY_ADX_PERIOD", defaultInt(cfg.StrategyConfig.ADXPeriod, 14))
	cfg.StrategyConfig.ADXTrendThreshold = getEnvFloatOrDefault("STRATEGY_ADX_TREND_THRESHOLD", defaultFloat(cfg.StrategyConfig.ADXTrendThreshold, 25))
	cfg.StrategyConfig.BollingerLength = getEnvIntOrDefault("STRATEGY_BOLLINGER_LENGTH", defaultInt(cfg.StrategyConfig.BollingerLength, 20))
	cfg.StrategyConfig.BollingerStdDev = getEnvFloatOrDefault("STRATEGY_BOLLINGER_STD_DEV", defaultFloat(cfg.StrategyConfig.BollingerStdDev, 2.0))
	cfg.StrategyConfig.MACDFastPeriod = getEnvIntOrDefault("STRATEGY_MACD_FAST_PERIOD", defaultInt(cfg.StrategyConfig.MACDFastPeriod, 12))
	cfg.StrategyConfig.MACDSlowPeriod = getEnvIntOrDefault("STRATEGY_MACD_SLOW_PERIOD", defaultInt(cfg.StrategyConfig.MACDSlowPeriod, 26))
	cfg.StrategyConfig.MACDSignalPeriod = getEnvIntOrDefault("STRATEGY_MACD_SIGNAL_PERIOD", defaultInt(cfg.StrategyConfig.MACDSignalPeriod, 9))
	cfg.StrategyConfig.MinSignalConfidence = getEnvFloatOrDefault("STRATEGY_MIN_SIGNAL_CONFIDENCE", defaultFloat(cfg.StrategyConfig.MinSignalConfidence, 0.80))
	cfg.StrategyConfig.ParamCacheTTLSecs = getEnvIntOrDefault("STRATEGY_PARAM_CACHE_TTL", defaultInt(cfg.StrategyConfig.ParamCacheTTLSecs, 300))

	// Risk config
	cfg.RiskConfig.MaxOpenPositions = getEnvIntOrDefault("RISK_MAX_OPEN_POSITIONS", defaultInt(cfg.RiskConfig.MaxOpenPositions, 2))
	cfg.RiskConfig.Leverage = getEnvIntOrDefault("RISK_LEVERAGE", defaultInt(cfg.RiskConfig.Leverage, 10))
	cfg.RiskConfig.UseDynamicSLTP = getEnvOrDefault("RISK_USE_DYNAMIC_SLTP", "true") == "true"
	cfg.RiskConfig.ATRMultiplierSL = getEnvFloatOrDefault("RISK_ATR_MULTIPLIER_SL", defaultFloat(cfg.RiskConfig.ATRMultiplierSL, 2.0))
	cfg.RiskConfig.ATRMultiplierTP = getEnvFloatOrDefault("RISK_ATR_MULTIPLIER_TP", defaultFloat(cfg.RiskConfig.ATRMultiplierTP, 4.0))
	cfg.RiskConfig.StopLossPercent = getEnvFloatOrDefault("RISK_STOP_LOSS_PERCENT", defaultFloat(cfg.RiskConfig.StopLossPercent, 0.015))
	cfg.RiskConfig.TakeProfitPercent = getEnvFloatOrDefault("RISK_TAKE_PROFIT_PERCENT", defaultFloat(cfg.RiskConfig.TakeProfitPercent, 0.03))
	cfg.RiskConfig.UseDynamicSizing = getEnvOrDefault("RISK_USE_DYNAMIC_SIZING", "true") == "true"
	cfg.RiskConfig.RiskPerTrade = getEnvFloatOrDefault("RISK_PER_TRADE", defaultFloat(cfg.RiskConfig.RiskPerTrade, 0.02))
	cfg.RiskConfig.PositionSizePercent = getEnvFloatOrDefault("RISK_POSITION_SIZE_PERCENT", defaultFloat(cfg.RiskConfig.PositionSizePercent, 0.5))

	// Correlation config
	cfg.CorrelationConfig.Enabled = getEnvOrDefault("CORRELATION_ENABLED", "true") == "true"
	cfg.CorrelationConfig.Threshold = getEnvFloatOrDefault("CORRELATION_THRESHOLD", defaultFloat(cfg.CorrelationConfig.Threshold, 0.80))
	cfg.CorrelationConfig.KlineLimit = getEnvIntOrDefault("CORRELATION_KLINE_LIMIT", defaultInt(cfg.CorrelationConfig.KlineLimit, 500))

	// Rebalance config
	cfg.RebalanceConfig.Enabled = getEnvOrDefault("REBALANCE_ENABLED", "true") == "true"
	cfg.RebalanceConfig.MinConfidence = getEnvFloatOrDefault("REBALANCE_MIN_CONFIDENCE", defaultFloat(cfg.RebalanceConfig.MinConfidence, 0.95))

	// Optimizer config
	cfg.OptimizerConfig.Enabled = getEnvOrDefault("OPTIMIZER_ENABLED", "false") == "true"
	cfg.OptimizerConfig.IntervalHours = getEnvIntOrDefault("OPTIMIZER_INTERVAL_HOURS", defaultInt(cfg.OptimizerConfig.IntervalHours, 12))
	cfg.OptimizerConfig.RecentTrades = getEnvIntOrDefault("OPTIMIZER_RECENT_TRADES", defaultInt(cfg.OptimizerConfig.RecentTrades, 10))
	cfg.OptimizerConfig.MinWinRate = getEnvFloatOrDefault("OPTIMIZER_MIN_WIN_RATE", defaultFloat(cfg.OptimizerConfig.MinWinRate, 0.40))
	cfg.OptimizerConfig.BacktestLimit = getEnvIntOrDefault("OPTIMIZER_BACKTEST_LIMIT", defaultInt(cfg.OptimizerConfig.BacktestLimit, 1000))

	// Database config
	cfg.DatabaseConfig.Enabled = getEnvOrDefault("DB_ENABLED", "false") == "true"
	cfg.DatabaseConfig.Host = getEnvOrDefault("DB_HOST", defaultString(cfg.DatabaseConfig.Host, "localhost"))
	cfg.DatabaseConfig.Port = getEnvIntOrDefault("DB_PORT", defaultInt(cfg.DatabaseConfig.Port, 5432))
	cfg.DatabaseConfig.User = getEnvOrDefault("DB_USER", defaultString(cfg.DatabaseConfig.User, "postgres"))
	cfg.DatabaseConfig.Password = getEnvOrDefault("DB_PASSWORD", cfg.DatabaseConfig.Password)
	cfg.DatabaseConfig.DBName = getEnvOrDefault("DB_NAME", defaultString(cfg.DatabaseConfig.DBName, "binai"))
	cfg.DatabaseConfig.SSLMode = getEnvOrDefault("DB_SSLMODE", defaultString(cfg.DatabaseConfig.SSLMode, "disable"))
	cfg.DatabaseConfig.MaxConns = getEnvIntOrDefault("DB_MAX_CONNS", defaultInt(cfg.DatabaseConfig.MaxConns, 10))

	// Redis config
	cfg.RedisConfig.Enabled = getEnvOrDefault("REDIS_ENABLED", "false") == "true"
	cfg.RedisConfig.Address = getEnvOrDefault("REDIS_ADDRESS", defaultString(cfg.RedisConfig.Address, "localhost:6379"))
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", cfg.RedisConfig.DB)
	cfg.RedisConfig.PoolSize = getEnvIntOrDefault("REDIS_POOL_SIZE", defaultInt(cfg.RedisConfig.PoolSize, 10))

	// Server config
	cfg.ServerConfig.Enabled = getEnvOrDefault("SERVER_ENABLED", "true") == "true"
	cfg.ServerConfig.Port = getEnvIntOrDefault("SERVER_PORT", defaultInt(cfg.ServerConfig.Port, 8080))
	cfg.ServerConfig.Host = getEnvOrDefault("SERVER_HOST", defaultString(cfg.ServerConfig.Host, "0.0.0.0"))
	cfg.ServerConfig.AllowedOrigins = getEnvOrDefault("SERVER_ALLOWED_ORIGINS", defaultString(cfg.ServerConfig.AllowedOrigins, "*"))
	cfg.ServerConfig.ReadTimeout = getEnvIntOrDefault("SERVER_READ_TIMEOUT", defaultInt(cfg.ServerConfig.ReadTimeout, 30))
	cfg.ServerConfig.WriteTimeout = getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", defaultInt(cfg.ServerConfig.WriteTimeout, 30))
	cfg.ServerConfig.ShutdownTimeout = getEnvIntOrDefault("SERVER_SHUTDOWN_TIMEOUT", defaultInt(cfg.ServerConfig.ShutdownTimeout, 10))

	// Auth config
	cfg.AuthConfig.Enabled = getEnvOrDefault("AUTH_ENABLED", "false") == "true"
	cfg.AuthConfig.JWTSecret = getEnvOrDefault("AUTH_JWT_SECRET", cfg.AuthConfig.JWTSecret)
	cfg.AuthConfig.TokenDuration = getEnvDurationOrDefault("AUTH_TOKEN_DURATION", 24*time.Hour)

	// Vault config
	cfg.VaultConfig.Enabled = getEnvOrDefault("VAULT_ENABLED", "false") == "true"
	cfg.VaultConfig.Address = getEnvOrDefault("VAULT_ADDR", defaultString(cfg.VaultConfig.Address, "http://localhost:8200"))
	cfg.VaultConfig.Token = getEnvOrDefault("VAULT_TOKEN", cfg.VaultConfig.Token)
	cfg.VaultConfig.MountPath = getEnvOrDefault("VAULT_MOUNT_PATH", defaultString(cfg.VaultConfig.MountPath, "secret"))
	cfg.VaultConfig.SecretPath = getEnvOrDefault("VAULT_SECRET_PATH", defaultString(cfg.VaultConfig.SecretPath, "binai/api-keys"))
	cfg.VaultConfig.TLSEnabled = getEnvOrDefault("VAULT_TLS_ENABLED", "false") == "true"

	// Logging config
	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", defaultString(cfg.LoggingConfig.Level, "INFO"))
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", defaultString(cfg.LoggingConfig.Output, "stdout"))
	cfg.LoggingConfig.JSONFormat = getEnvOrDefault("LOG_JSON", "true") == "true"
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultString(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func defaultInt(value, fallback int) int {
	if value != 0 {
		return value
	}
	return fallback
}

func defaultFloat(value, fallback float64) float64 {
	if value != 0 {
		return value
	}
	return fallback
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// GenerateSampleConfig creates a sample configuration file
func GenerateSampleConfig(filename string) error {
	config := Config{
		BinanceConfig: BinanceConfig{
			APIKey:    "your_api_key_here",
			SecretKey: "your_secret_key_here",
			TestNet:   true,
			MockMode:  false,
		},
		TradingConfig: TradingConfig{
			Symbols:               []string{"BTCUSDT", "ETHUSDT"},
			Interval:              "5m",
			KlineLimit:            250,
			AnalysisIntervalSecs:  5,
			ReconcileIntervalSecs: 30,
			WorkerCount:           5,
			DryRun:                true,
		},
		StrategyConfig: StrategyConfig{
			FastMAPeriod:        20,
			SlowMAPeriod:        50,
			RSIPeriod:           14,
			RSIOversold:         30,
			RSIOverbought:       70,
			VolumeAvgPeriod:     20,
			ADXPeriod:           14,
			ADXTrendThreshold:   25,
			BollingerLength:     20,
			BollingerStdDev:     2.0,
			MACDFastPeriod:      12,
			MACDSlowPeriod:      26,
			MACDSignalPeriod:    9,
			MinSignalConfidence: 0.80,
			ParamCacheTTLSecs:   300,
		},
		RiskConfig: RiskConfig{
			MaxOpenPositions:    2,
			Leverage:            10,
			UseDynamicSLTP:      true,
			ATRMultiplierSL:     2.0,
			ATRMultiplierTP:     4.0,
			StopLossPercent:     0.015,
			TakeProfitPercent:   0.03,
			UseDynamicSizing:    true,
			RiskPerTrade:        0.02,
			PositionSizePercent: 0.5,
		},
		CorrelationConfig: CorrelationConfig{
			Enabled:    true,
			Threshold:  0.80,
			KlineLimit: 500,
		},
		RebalanceConfig: RebalanceConfig{
			Enabled:       true,
			MinConfidence: 0.95,
		},
		LoggingConfig: LoggingConfig{
			Level:      "INFO",
			Output:     "stdout",
			JSONFormat: true,
		},
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}
