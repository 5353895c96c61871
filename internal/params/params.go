// Package params resolves per-symbol strategy parameters. Configured
// defaults are merged with optimizer output persisted in the parameter
// store, with a TTL cache so the hot analysis path rarely touches storage.
package params

import (
	"binai-trading-bot/config"
)

// ParameterSet holds every tunable used by the analysis and risk paths.
// It is a value type: callers receive copies and cannot mutate shared state.
type ParameterSet struct {
	// Indicator periods
	FastMAPeriod     int
	SlowMAPeriod     int
	RSIPeriod        int
	RSIOversold      float64
	RSIOverbought    float64
	VolumeAvgPeriod  int
	ADXPeriod        int
	BollingerLength  int
	BollingerStdDev  float64
	MACDFastPeriod   int
	MACDSlowPeriod   int
	MACDSignalPeriod int

	// Signal gating
	ADXTrendThreshold   float64
	MinSignalConfidence float64

	// Risk
	Leverage            int
	UseDynamicSLTP      bool
	ATRMultiplierSL     float64
	ATRMultiplierTP     float64
	StopLossPercent     float64
	TakeProfitPercent   float64
	UseDynamicSizing    bool
	RiskPerTrade        float64
	PositionSizePercent float64
	MaxOpenPositions    int
}

// Defaults builds the baseline ParameterSet from configuration
func Defaults(cfg *config.Config) ParameterSet {
	return ParameterSet{
		FastMAPeriod:        cfg.StrategyConfig.FastMAPeriod,
		SlowMAPeriod:        cfg.StrategyConfig.SlowMAPeriod,
		RSIPeriod:           cfg.StrategyConfig.RSIPeriod,
		RSIOversold:         cfg.StrategyConfig.RSIOversold,
		RSIOverbought:       cfg.StrategyConfig.RSIOverbought,
		VolumeAvgPeriod:     cfg.StrategyConfig.VolumeAvgPeriod,
		ADXPeriod:           cfg.StrategyConfig.ADXPeriod,
		BollingerLength:     cfg.StrategyConfig.BollingerLength,
		BollingerStdDev:     cfg.StrategyConfig.BollingerStdDev,
		MACDFastPeriod:      cfg.StrategyConfig.MACDFastPeriod,
		MACDSlowPeriod:      cfg.StrategyConfig.MACDSlowPeriod,
		MACDSignalPeriod:    cfg.StrategyConfig.MACDSignalPeriod,
		ADXTrendThreshold:   cfg.StrategyConfig.ADXTrendThreshold,
		MinSignalConfidence: cfg.StrategyConfig.MinSignalConfidence,
		Leverage:            cfg.RiskConfig.Leverage,
		UseDynamicSLTP:      cfg.RiskConfig.UseDynamicSLTP,
		ATRMultiplierSL:     cfg.RiskConfig.ATRMultiplierSL,
		ATRMultiplierTP:     cfg.RiskConfig.ATRMultiplierTP,
		StopLossPercent:     cfg.RiskConfig.StopLossPercent,
		TakeProfitPercent:   cfg.RiskConfig.TakeProfitPercent,
		UseDynamicSizing:    cfg.RiskConfig.UseDynamicSizing,
		RiskPerTrade:        cfg.RiskConfig.RiskPerTrade,
		PositionSizePercent: cfg.RiskConfig.PositionSizePercent,
		MaxOpenPositions:    cfg.RiskConfig.MaxOpenPositions,
	}
}

// Merge applies stored per-symbol overrides on top of a base set. Keys the
// optimizer does not emit leave the base value untouched.
func Merge(base ParameterSet, overrides map[string]float64) ParameterSet {
	merged := base
	for key, value := range overrides {
		switch key {
		case "fast_ma_period":
			merged.FastMAPeriod = int(value)
		case "slow_ma_period":
			merged.SlowMAPeriod = int(value)
		case "rsi_period":
			merged.RSIPeriod = int(value)
		case "rsi_oversold":
			merged.RSIOversold = value
		case "rsi_overbought":
			merged.RSIOverbought = value
		case "volume_avg_period":
			merged.VolumeAvgPeriod = int(value)
		case "adx_period":
			merged.ADXPeriod = int(value)
		case "adx_trend_threshold":
			merged.ADXTrendThreshold = value
		case "bollinger_length":
			merged.BollingerLength = int(value)
		case "bollinger_std_dev":
			merged.BollingerStdDev = value
		case "macd_fast_period":
			merged.MACDFastPeriod = int(value)
		case "macd_slow_period":
			merged.MACDSlowPeriod = int(value)
		case "macd_signal_period":
			merged.MACDSignalPeriod = int(value)
		case "min_signal_confidence":
			merged.MinSignalConfidence = value
		case "leverage":
			merged.Leverage = int(value)
		case "use_dynamic_sltp":
			merged.UseDynamicSLTP = value != 0
		case "atr_multiplier_sl":
			merged.ATRMultiplierSL = value
		case "atr_multiplier_tp":
			merged.ATRMultiplierTP = value
		case "stop_loss_percent":
			merged.StopLossPercent = value
		case "take_profit_percent":
			merged.TakeProfitPercent = value
		case "use_dynamic_sizing":
			merged.UseDynamicSizing = value != 0
		case "risk_per_trade":
			merged.RiskPerTrade = value
		case "position_size_percent":
			merged.PositionSizePercent = value
		case "max_open_positions":
			merged.MaxOpenPositions = int(value)
		}
	}
	return merged
}
