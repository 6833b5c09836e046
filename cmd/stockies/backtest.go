package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fedetic/stockies/internal/backtest"
	"github.com/fedetic/stockies/internal/collector"
	"github.com/fedetic/stockies/internal/collector/yahoo"
	"github.com/fedetic/stockies/internal/config"
	"github.com/fedetic/stockies/internal/core"
	"github.com/fedetic/stockies/internal/logger"
	"github.com/fedetic/stockies/internal/metrics"
	"github.com/fedetic/stockies/internal/storage/pricestore"
	"github.com/fedetic/stockies/internal/strategy"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	backtestSymbols []string
	backtestFrom    string
	backtestTo      string
	backtestTrades  bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [strategy file]",
	Short: "Run a strategy against historical data",
	Long: `Run a strategy definition file against historical data and show
performance metrics. With multiple --symbol flags the symbols share one
capital pool.`,
	Args: cobra.ExactArgs(1),
	RunE: runBacktest,
}

func init() {
	backtestCmd.Flags().StringArrayVar(&backtestSymbols, "symbol", nil, "symbol to backtest (repeatable, required)")
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "end date YYYY-MM-DD (required)")
	backtestCmd.Flags().BoolVar(&backtestTrades, "trades", false, "print the individual trades")

	backtestCmd.MarkFlagRequired("symbol")
	backtestCmd.MarkFlagRequired("from")
	backtestCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	from, err := core.ParseDate(backtestFrom)
	if err != nil {
		return fmt.Errorf("invalid from date (expected YYYY-MM-DD): %w", err)
	}
	to, err := core.ParseDate(backtestTo)
	if err != nil {
		return fmt.Errorf("invalid to date (expected YYYY-MM-DD): %w", err)
	}
	if to.Before(from) {
		return fmt.Errorf("end date must be after start date")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	log := logger.Must(debug || cfg.Log.Development)
	defer log.Sync()

	strat, err := strategy.Load(args[0])
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()

	provider, err := buildProvider(cfg, log, reg)
	if err != nil {
		return err
	}

	engine := backtest.New(provider, backtest.Config{
		InitialCapital: cfg.Backtest.InitialCapital,
		CommissionRate: cfg.Backtest.CommissionRate,
		SlippageRate:   cfg.Backtest.SlippageRate,
		RiskFreeRate:   cfg.Backtest.RiskFreeRate,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode := "single"
	if len(backtestSymbols) > 1 {
		mode = "multi"
	}

	started := time.Now()
	result, err := engine.RunMulti(ctx, strat, backtestSymbols, from, to)
	if err != nil {
		reg.RecordBacktest(mode, "failed", time.Since(started).Seconds(), 0)
		return err
	}

	status := "ok"
	if result.Failed() {
		status = "failed"
	}
	reg.RecordBacktest(mode, status, time.Since(started).Seconds(), len(result.Trades))

	printResult(result, strat)
	return nil
}

// buildProvider wires the upstream collector behind the price store cache.
func buildProvider(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) (collector.Provider, error) {
	upstream := yahoo.New()

	var backend pricestore.Backend
	switch cfg.Storage.Type {
	case "s3":
		backend = pricestore.NewS3(cfg.Storage.S3)
	default:
		fs, err := pricestore.NewLocalFS(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		backend = fs
	}

	store := pricestore.NewStore(backend)
	return collector.NewCached(upstream, store, cfg.Data.CacheTTL,
		collector.WithLogger(log),
		collector.WithMetrics(reg)), nil
}

func printResult(result *backtest.Result, strat *strategy.Strategy) {
	fmt.Println("=== Stockies Backtest ===")
	fmt.Printf("Run:      %s\n", result.RunID)
	fmt.Printf("Strategy: %s\n", strat.Name)
	fmt.Printf("Symbols:  %s\n", strings.Join(result.Symbols, ", "))
	fmt.Printf("Period:   %s to %s\n", core.Date(result.StartDate), core.Date(result.EndDate))
	fmt.Println()

	if result.Failed() {
		fmt.Printf("Backtest failed: %s\n", result.Error)
		return
	}

	m := result.Metrics
	fmt.Println("Performance")
	fmt.Printf("  Initial capital:  %14.2f\n", m.InitialCapital)
	fmt.Printf("  Final equity:     %14.2f\n", m.FinalEquity)
	fmt.Printf("  Total return:     %13.2f%%\n", m.TotalReturnPct)
	fmt.Printf("  CAGR:             %13.2f%%\n", m.CAGRPct)
	fmt.Printf("  Sharpe ratio:     %14.2f\n", m.SharpeRatio)
	fmt.Printf("  Sortino ratio:    %14.2f\n", m.SortinoRatio)
	fmt.Printf("  Max drawdown:     %13.2f%%  (%s to %s)\n",
		m.MaxDrawdownPct, core.Date(m.PeakDate), core.Date(m.TroughDate))
	fmt.Println()

	fmt.Println("Trades")
	fmt.Printf("  Total:            %8d\n", m.TotalTrades)
	fmt.Printf("  Winning / losing: %5d / %d\n", m.WinningTrades, m.LosingTrades)
	fmt.Printf("  Win rate:         %7.2f%%\n", m.WinRatePct)
	if math.IsInf(m.ProfitFactor, 1) {
		fmt.Printf("  Profit factor:    %8s\n", "inf")
	} else {
		fmt.Printf("  Profit factor:    %8.2f\n", m.ProfitFactor)
	}
	fmt.Printf("  Expectancy:       %8.2f\n", m.Expectancy)
	fmt.Printf("  Commission paid:  %8.2f\n", result.Stats.TotalCommission)

	if backtestTrades && len(result.Trades) > 0 {
		fmt.Println()
		fmt.Println("  TICKER      ENTRY        EXIT          QTY      ENTRY_PX     EXIT_PX       PNL")
		for _, tr := range result.Trades {
			fmt.Printf("  %-8s  %s  %s  %6d  %12.2f  %10.2f  %8.2f\n",
				tr.Ticker, core.Date(tr.EntryDate), core.Date(tr.ExitDate),
				tr.Quantity, tr.EntryPrice, tr.ExitPrice, tr.PnL())
		}
	}
}
