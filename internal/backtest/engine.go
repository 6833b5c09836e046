package backtest

import (
	"context"
	"sort"
	"time"

	"github.com/fedetic/stockies/internal/core"
	"github.com/fedetic/stockies/internal/indicator"
	"github.com/fedetic/stockies/internal/rule"
	"github.com/fedetic/stockies/internal/strategy"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HistoryProvider supplies the historical bars a run simulates over.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) ([]core.Bar, error)
}

// Config carries the simulation parameters shared by all runs of an Engine.
type Config struct {
	InitialCapital float64
	CommissionRate float64
	SlippageRate   float64
	RiskFreeRate   float64
}

// Engine runs strategy backtests against historical data. Entry fills pay
// slippage on top of the close, exit fills receive it below the close.
type Engine struct {
	provider  HistoryProvider
	cfg       Config
	logger    *zap.Logger
	evaluator *rule.Evaluator
}

// New creates an Engine. The logger is optional.
func New(provider HistoryProvider, cfg Config, logger ...*zap.Logger) *Engine {
	l := zap.NewNop()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Engine{
		provider:  provider,
		cfg:       cfg,
		logger:    l,
		evaluator: rule.NewEvaluator(l),
	}
}

// symbolSeries is one symbol's prepared simulation input.
type symbolSeries struct {
	symbol string
	frame  *indicator.Frame
	entry  []bool
	exit   []bool
	atr    []float64
}

// Run executes a single-symbol backtest. A run with no historical data does
// not fail with a Go error; it returns a Result tagged with the reason so
// multi-run callers can keep going.
func (e *Engine) Run(ctx context.Context, strat *strategy.Strategy, symbol string, start, end time.Time) (*Result, error) {
	return e.RunMulti(ctx, strat, []string{symbol}, start, end)
}

// RunMulti executes a backtest over several symbols sharing one portfolio
// and one capital pool. Bars are walked over the sorted union of all symbol
// dates; within a date, symbols are processed in sorted order so runs are
// reproducible. One equity point is recorded per date.
func (e *Engine) RunMulti(ctx context.Context, strat *strategy.Strategy, symbols []string, start, end time.Time) (*Result, error) {
	result := &Result{
		RunID:        uuid.NewString(),
		StrategyName: strat.Name,
		Symbols:      append([]string(nil), symbols...),
		StartDate:    start,
		EndDate:      end,
	}

	series, dates := e.prepare(ctx, strat, symbols, start, end)
	if len(series) == 0 {
		result.Error = "no historical data available for requested symbols"
		e.logger.Warn("backtest has no data",
			zap.Strings("symbols", symbols),
			zap.Time("start", start),
			zap.Time("end", end),
		)
		return result, nil
	}

	portfolio := NewPortfolio(e.cfg.InitialCapital, e.cfg.CommissionRate)

	// Per-symbol bar index keyed by trading date.
	index := make(map[string]map[string]int, len(series))
	for _, s := range series {
		byDate := make(map[string]int, s.frame.Len())
		for i, bar := range s.frame.Bars {
			byDate[core.Date(bar.Date)] = i
		}
		index[s.symbol] = byDate
	}

	for _, date := range dates {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		key := core.Date(date)
		prices := make(map[string]float64, len(series))
		for _, s := range series {
			if i, ok := index[s.symbol][key]; ok {
				prices[s.symbol] = s.frame.Bars[i].Close
			}
		}

		for _, s := range series {
			i, ok := index[s.symbol][key]
			if !ok {
				continue
			}
			e.step(portfolio, strat, s, i, date)
		}

		portfolio.RecordEquity(date, prices)
	}

	// Positions still open at the end close at the final bar, after the
	// last equity point so the curve reflects the mark, not the fill.
	for _, s := range series {
		if _, ok := portfolio.Position(s.symbol); !ok {
			continue
		}
		last := s.frame.Bars[s.frame.Len()-1]
		exitPrice := last.Close * (1 - e.cfg.SlippageRate)
		portfolio.Close(s.symbol, last.Date, exitPrice)
	}

	result.Trades = portfolio.Trades()
	result.EquityCurve = portfolio.EquityCurve()
	result.Stats = portfolio.Statistics()
	result.Metrics = CalculateMetrics(portfolio.EquityCurve(), portfolio.Trades(),
		e.cfg.InitialCapital, e.cfg.RiskFreeRate)

	e.logger.Info("backtest finished",
		zap.String("run_id", result.RunID),
		zap.String("strategy", strat.Name),
		zap.Int("symbols", len(series)),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("final_equity", result.Metrics.FinalEquity),
	)
	return result, nil
}

// step advances one symbol by one bar: exits first, then entries.
func (e *Engine) step(p *Portfolio, strat *strategy.Strategy, s *symbolSeries, i int, date time.Time) {
	bar := s.frame.Bars[i]

	if _, open := p.Position(s.symbol); open {
		if strat.RiskManagement.TrailingStop {
			p.UpdateTrailingStop(s.symbol, bar.Close)
		}

		reason := p.CheckExitConditions(s.symbol, bar.Close, bar.Low)
		if reason != ExitNone || s.exit[i] {
			exitPrice := bar.Close * (1 - e.cfg.SlippageRate)
			if trade := p.Close(s.symbol, date, exitPrice); trade != nil {
				e.logger.Debug("position closed",
					zap.String("symbol", s.symbol),
					zap.Time("date", date),
					zap.Float64("price", exitPrice),
					zap.Float64("pnl", trade.PnL()),
					zap.String("exit_reason", string(reason)),
				)
			}
		}
		return
	}

	if !s.entry[i] {
		return
	}

	buyPrice := bar.Close * (1 + e.cfg.SlippageRate)
	qty := positionSize(strat, p.Cash, buyPrice, s.atr[i])
	if qty <= 0 {
		return
	}

	var stop, profit, trailing *float64
	if pct := strat.RiskManagement.StopLossPct; pct != nil {
		v := buyPrice * (1 - *pct/100)
		stop = &v
	}
	if pct := strat.RiskManagement.TakeProfitPct; pct != nil {
		v := buyPrice * (1 + *pct/100)
		profit = &v
	}
	if strat.RiskManagement.TrailingStop && strat.RiskManagement.TrailingStopPct != nil {
		v := *strat.RiskManagement.TrailingStopPct
		trailing = &v
	}

	if p.Open(s.symbol, date, buyPrice, qty, stop, profit, trailing) {
		e.logger.Debug("position opened",
			zap.String("symbol", s.symbol),
			zap.Time("date", date),
			zap.Float64("price", buyPrice),
			zap.Int("quantity", qty),
		)
	}
}

// prepare fetches and enriches bars for every symbol and evaluates the rule
// signals once up front. Symbols without data are dropped with a warning.
// The returned dates are the sorted union across surviving symbols.
func (e *Engine) prepare(ctx context.Context, strat *strategy.Strategy, symbols []string, start, end time.Time) ([]*symbolSeries, []time.Time) {
	var series []*symbolSeries
	dateSet := make(map[string]time.Time)

	sorted := append([]string(nil), symbols...)
	sort.Strings(sorted)

	for _, symbol := range sorted {
		bars, err := e.provider.FetchHistory(ctx, symbol, start, end, core.IntervalDaily)
		if err != nil {
			e.logger.Warn("history fetch failed, symbol skipped",
				zap.String("symbol", symbol),
				zap.Error(err),
			)
			continue
		}
		if len(bars) == 0 {
			e.logger.Warn("no bars returned, symbol skipped",
				zap.String("symbol", symbol),
			)
			continue
		}

		frame := indicator.NewFrame(bars)
		frame.ComputeAll()

		atr, _ := frame.Column(indicator.PeriodColumn("ATR", 14))

		series = append(series, &symbolSeries{
			symbol: symbol,
			frame:  frame,
			entry:  e.evaluator.SignalsFor(strat.EntryRules, frame),
			exit:   e.evaluator.SignalsFor(strat.ExitRules, frame),
			atr:    atr,
		})
		for _, bar := range bars {
			dateSet[core.Date(bar.Date)] = bar.Date
		}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for _, d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	return series, dates
}
