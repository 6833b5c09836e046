package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/fedetic/stockies/internal/core"
	"github.com/fedetic/stockies/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider serves canned bar history keyed by symbol.
type stubProvider struct {
	bars map[string][]core.Bar
}

func (s *stubProvider) FetchHistory(_ context.Context, symbol string, _, _ time.Time, _ core.Interval) ([]core.Bar, error) {
	return s.bars[symbol], nil
}

func barsFromCloses(symbol string, closes []float64) []core.Bar {
	bars := make([]core.Bar, len(closes))
	for i, c := range closes {
		bars[i] = core.Bar{
			Symbol: symbol,
			Date:   day(i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return bars
}

// rsiScenario builds a close series where RSI(14) sinks below 30 during a
// straight decline and climbs above 70 in the recovery that follows.
func rsiScenario() []float64 {
	closes := make([]float64, 100)
	for i := 0; i < 50; i++ {
		closes[i] = 100 + 0.5*float64(i) // warmup climb to 124.5
	}
	for i := 50; i < 65; i++ {
		closes[i] = closes[49] - float64(i-49) // straight decline to 109.5
	}
	for i := 65; i < 100; i++ {
		closes[i] = closes[64] + float64(i-64) // recovery
	}
	return closes
}

func noRiskStrategy(entry, exit string) *strategy.Strategy {
	return &strategy.Strategy{
		Name:       "test",
		EntryRules: entry,
		ExitRules:  exit,
		PositionSizing: strategy.PositionSizing{
			Method: strategy.SizingFixed,
			Value:  5000,
		},
	}
}

func TestRun_NoData(t *testing.T) {
	engine := New(&stubProvider{bars: map[string][]core.Bar{}}, Config{InitialCapital: 10000})

	result, err := engine.Run(context.Background(), strategy.Default(), "GHOST", day(0), day(10))
	require.NoError(t, err, "missing data is reported in the result, not as an error")
	require.NotNil(t, result)

	assert.True(t, result.Failed())
	assert.Equal(t, []string{"GHOST"}, result.Symbols)
	assert.NotEmpty(t, result.RunID)
	assert.Empty(t, result.EquityCurve)
}

func TestRun_RSIEntryExit(t *testing.T) {
	closes := rsiScenario()
	provider := &stubProvider{bars: map[string][]core.Bar{
		"AAPL": barsFromCloses("AAPL", closes),
	}}
	engine := New(provider, Config{InitialCapital: 10000})

	strat := noRiskStrategy("rsi(14) < 30", "rsi(14) > 70")
	result, err := engine.Run(context.Background(), strat, "AAPL", day(0), day(99))
	require.NoError(t, err)
	require.False(t, result.Failed())

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]

	// At bar 57 the window holds 3.0 of gains against 8.0 of losses,
	// RSI 27.3; at bar 74 it holds 10 gains against 4 losses, RSI 71.4.
	assert.Equal(t, day(57), trade.EntryDate)
	assert.Equal(t, day(74), trade.ExitDate)
	assert.InDelta(t, closes[57], trade.EntryPrice, 1e-9)
	assert.InDelta(t, closes[74], trade.ExitPrice, 1e-9)
	assert.Greater(t, trade.PnL(), 0.0)

	assert.Len(t, result.EquityCurve, len(closes), "one equity point per bar")
}

func TestRun_RSIWithTrendFilter(t *testing.T) {
	// A long gentle climb keeps price above its 200-bar mean, then a short
	// sharp decline drags RSI under 30 without surrendering the trend.
	closes := make([]float64, 260)
	closes[0] = 100
	for i := 1; i < 260; i++ {
		switch {
		case i < 220:
			closes[i] = closes[i-1] + 0.1
		case i < 240:
			closes[i] = closes[i-1] - 0.3
		default:
			closes[i] = closes[i-1] + 0.5
		}
	}

	provider := &stubProvider{bars: map[string][]core.Bar{
		"AAPL": barsFromCloses("AAPL", closes),
	}}
	engine := New(provider, Config{InitialCapital: 100000})

	strat := noRiskStrategy("rsi(14) < 30 AND price > sma(200)", "rsi(14) > 70")
	result, err := engine.Run(context.Background(), strat, "AAPL", day(0), day(259))
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]

	// Seven 0.3 losses against seven 0.1 gains put RSI at 25.0 on bar 226;
	// nine 0.5 gains against five 0.3 losses put it at 75.0 on bar 248.
	assert.Equal(t, day(226), trade.EntryDate)
	assert.Equal(t, day(248), trade.ExitDate)
	assert.Greater(t, trade.PnL(), 0.0)
}

func TestRun_RoundTripAccounting(t *testing.T) {
	provider := &stubProvider{bars: map[string][]core.Bar{
		"AAPL": barsFromCloses("AAPL", []float64{49, 50, 52, 55, 56}),
	}}
	engine := New(provider, Config{
		InitialCapital: 10000,
		CommissionRate: 0.001,
	})

	strat := noRiskStrategy("price == 50", "price == 55")
	result, err := engine.Run(context.Background(), strat, "AAPL", day(0), day(4))
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, 100, trade.Quantity)
	assert.InDelta(t, 50.0, trade.EntryPrice, 1e-9)
	assert.InDelta(t, 55.0, trade.ExitPrice, 1e-9)
	assert.InDelta(t, 10.5, trade.Commission, 1e-9, "entry plus exit commission")
	assert.InDelta(t, 489.5, trade.PnL(), 1e-9)

	assert.InDelta(t, 10489.5, result.Metrics.FinalEquity, 1e-9)
	assert.InDelta(t, 4.895, result.Metrics.TotalReturnPct, 1e-9)
}

func TestRun_SlippageOnFills(t *testing.T) {
	provider := &stubProvider{bars: map[string][]core.Bar{
		"AAPL": barsFromCloses("AAPL", []float64{100, 100, 110, 110}),
	}}
	engine := New(provider, Config{
		InitialCapital: 100000,
		SlippageRate:   0.01,
	})

	strat := noRiskStrategy("price == 100", "price == 110")
	result, err := engine.Run(context.Background(), strat, "AAPL", day(0), day(3))
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.InDelta(t, 101.0, trade.EntryPrice, 1e-9, "entry pays slippage above the close")
	assert.InDelta(t, 108.9, trade.ExitPrice, 1e-9, "exit receives slippage below the close")
}

func TestRun_StopLossBeforeExitSignal(t *testing.T) {
	provider := &stubProvider{bars: map[string][]core.Bar{
		// Entry at 100, then a bar whose low pierces the 5% stop.
		"AAPL": barsFromCloses("AAPL", []float64{100, 96, 94, 94}),
	}}
	engine := New(provider, Config{InitialCapital: 10000})

	stop := 5.0
	strat := noRiskStrategy("price == 100", "")
	strat.RiskManagement.StopLossPct = &stop

	result, err := engine.Run(context.Background(), strat, "AAPL", day(0), day(3))
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, day(1), trade.ExitDate, "low of 95 pierces the 95.0 stop")
	assert.InDelta(t, 96.0, trade.ExitPrice, 1e-9, "protective exits fill at the close")
}

func TestRun_ForceCloseAtEnd(t *testing.T) {
	provider := &stubProvider{bars: map[string][]core.Bar{
		"AAPL": barsFromCloses("AAPL", []float64{100, 105, 110}),
	}}
	engine := New(provider, Config{InitialCapital: 10000})

	strat := noRiskStrategy("price == 100", "")
	result, err := engine.Run(context.Background(), strat, "AAPL", day(0), day(2))
	require.NoError(t, err)

	require.Len(t, result.Trades, 1, "open position closes at the final bar")
	trade := result.Trades[0]
	assert.Equal(t, day(2), trade.ExitDate)
	assert.InDelta(t, 110.0, trade.ExitPrice, 1e-9)

	// The final equity point marks the position, recorded before the
	// forced close.
	last := result.EquityCurve[len(result.EquityCurve)-1]
	assert.Equal(t, day(2), last.Date)
	assert.InDelta(t, 10500.0, last.Equity, 1e-9, "50 shares up 10 from entry")
}

func TestRunMulti_SharedCapital(t *testing.T) {
	provider := &stubProvider{bars: map[string][]core.Bar{
		"AAA": barsFromCloses("AAA", []float64{50, 51, 52}),
		"BBB": barsFromCloses("BBB", []float64{50, 51, 52}),
	}}
	// Only enough cash for one 100-share position.
	engine := New(provider, Config{InitialCapital: 6000})

	strat := noRiskStrategy("price == 50", "")
	result, err := engine.RunMulti(context.Background(), strat, []string{"BBB", "AAA"}, day(0), day(2))
	require.NoError(t, err)

	require.Len(t, result.Trades, 1, "second entry must fail for lack of cash")
	assert.Equal(t, "AAA", result.Trades[0].Ticker, "symbols fill in sorted order")
	assert.Len(t, result.EquityCurve, 3, "one equity point per distinct date")
}

func TestRun_ContextCancelled(t *testing.T) {
	provider := &stubProvider{bars: map[string][]core.Bar{
		"AAPL": barsFromCloses("AAPL", rsiScenario()),
	}}
	engine := New(provider, Config{InitialCapital: 10000})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx, strategy.Default(), "AAPL", day(0), day(99))
	assert.ErrorIs(t, err, context.Canceled)
}
