package backtest

import (
	"context"

	"binai-trading-bot/internal/portfolio"
)

// TradeSource provides recent closed trades for performance review
type TradeSource interface {
	GetRecentClosedTrades(ctx context.Context, symbol string, limit int) ([]portfolio.ClosedTrade, error)
}

// PerformanceReport summarizes recent live results for one symbol
type PerformanceReport struct {
	Symbol  string  `json:"symbol"`
	Trades  int     `json:"trades"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"` // fraction, 0..1
	NetPnL  float64 `json:"net_pnl"`
	Stale   bool    `json:"stale"`
}

// AnalyzePerformance reviews the last recentN closed trades for a symbol.
// A symbol is stale when it has a full sample and its win rate fell below
// minWinRate; too few trades is never stale.
func AnalyzePerformance(ctx context.Context, source TradeSource, symbol string, recentN int, minWinRate float64) (PerformanceReport, error) {
	report := PerformanceReport{Symbol: symbol}

	trades, err := source.GetRecentClosedTrades(ctx, symbol, recentN)
	if err != nil {
		return report, err
	}

	report.Trades = len(trades)
	for _, trade := range trades {
		if trade.RealizedPnL > 0 {
			report.Wins++
		}
		report.NetPnL += trade.RealizedPnL
	}

	if report.Trades > 0 {
		report.WinRate = float64(report.Wins) / float64(report.Trades)
	}
	report.Stale = report.Trades >= recentN && report.WinRate < minWinRate

	return report, nil
}
