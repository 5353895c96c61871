// Command backtest replays historical candles for one symbol and prints
// how the current strategy parameters would have traded.
package main

import (
	"flag"
	"fmt"
	"os"

	"binai-trading-bot/config"
	"binai-trading-bot/internal/backtest"
	"binai-trading-bot/internal/binance"
	"binai-trading-bot/internal/logging"
	"binai-trading-bot/internal/params"
)

func main() {
	symbol := flag.String("symbol", "BTCUSDT", "symbol to backtest")
	interval := flag.String("interval", "5m", "kline interval")
	limit := flag.Int("limit", 1000, "number of candles to replay")
	capital := flag.Float64("capital", 10000, "starting capital in USDT")
	commission := flag.Float64("commission", 0.0004, "fee fraction per fill")
	testnet := flag.Bool("testnet", false, "use the testnet API")
	verbose := flag.Bool("verbose", false, "print every simulated trade")
	flag.Parse()

	cfg, err := config.Load("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(&cfg.LoggingConfig)

	// Kline history is a public endpoint, no credentials needed
	client := binance.NewFuturesClient("", "", *testnet, logger)
	klines, err := client.GetFuturesKlines(*symbol, *interval, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch candles: %v\n", err)
		os.Exit(1)
	}

	engine := backtest.NewEngine(*capital, *commission, logger)
	result, err := engine.Run(*symbol, klines, params.Defaults(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "backtest failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n=== BACKTEST %s %s (%d candles) ===\n", *symbol, *interval, len(klines))
	fmt.Printf("Total Trades:  %d\n", result.TotalTrades)
	fmt.Printf("Win Rate:      %.1f%% (%d wins, %d losses)\n",
		result.WinRate*100, result.WinningTrades, result.LosingTrades)
	fmt.Printf("Net Profit:    $%.2f\n", result.NetProfit)
	fmt.Printf("ROI:           %.2f%%\n", result.ROI)
	fmt.Printf("Profit Factor: %.2f\n", result.ProfitFactor)
	fmt.Printf("Max Drawdown:  %.2f%%\n", result.MaxDrawdown)

	if *verbose {
		fmt.Println("\n=== TRADES ===")
		for _, trade := range result.Trades {
			fmt.Printf("%s %-5s entry %.4f exit %.4f qty %.4f pnl $%.2f (%s)\n",
				trade.EntryTime.Format("2006-01-02 15:04"),
				trade.Side, trade.EntryPrice, trade.ExitPrice,
				trade.Quantity, trade.ProfitLoss, trade.ExitReason)
		}
	}
}
