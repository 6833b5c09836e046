package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func curve(equities ...float64) []EquityPoint {
	points := make([]EquityPoint, len(equities))
	for i, e := range equities {
		points[i] = EquityPoint{Date: day(i), Equity: e, Cash: e}
	}
	return points
}

func roundTrip(entry, exit float64, entryDay, exitDay int) Trade {
	return Trade{
		Ticker:     "TEST",
		EntryDate:  day(entryDay),
		ExitDate:   day(exitDay),
		EntryPrice: entry,
		ExitPrice:  exit,
		Quantity:   10,
	}
}

func TestCalculateMetrics_Empty(t *testing.T) {
	m := CalculateMetrics(nil, nil, 10000, 0.02)
	assert.Zero(t, m.FinalEquity)
	assert.Zero(t, m.TotalTrades)
}

func TestCalculateMetrics_TotalReturn(t *testing.T) {
	m := CalculateMetrics(curve(10000, 10500, 11000), nil, 10000, 0)
	assert.InDelta(t, 10.0, m.TotalReturnPct, 1e-9)
	assert.InDelta(t, 11000.0, m.FinalEquity, 1e-9)
}

func TestMaxDrawdown(t *testing.T) {
	m := CalculateMetrics(curve(100, 120, 90, 130), nil, 100, 0)

	assert.InDelta(t, -25.0, m.MaxDrawdownPct, 1e-9)
	assert.InDelta(t, 120.0, m.PeakValue, 1e-9)
	assert.InDelta(t, 90.0, m.TroughValue, 1e-9)
	assert.Equal(t, day(1), m.PeakDate)
	assert.Equal(t, day(2), m.TroughDate)
}

func TestMaxDrawdown_MonotonicRise(t *testing.T) {
	m := CalculateMetrics(curve(100, 110, 120), nil, 100, 0)
	assert.Zero(t, m.MaxDrawdownPct)
}

func TestCAGR_ZeroSpan(t *testing.T) {
	points := []EquityPoint{
		{Date: day(0), Equity: 10000},
		{Date: day(0), Equity: 12000},
	}
	m := CalculateMetrics(points, nil, 10000, 0)
	assert.Zero(t, m.CAGRPct, "zero elapsed time must not divide")
}

func TestCAGR_OneYearDouble(t *testing.T) {
	points := []EquityPoint{
		{Date: day(0), Equity: 10000},
		{Date: day(0).AddDate(1, 0, 0), Equity: 20000},
	}
	m := CalculateMetrics(points, nil, 10000, 0)
	// 365/365.25 of a year, so slightly above 100.
	assert.InDelta(t, 100.0, m.CAGRPct, 0.2)
}

func TestSharpe_ConstantEquity(t *testing.T) {
	m := CalculateMetrics(curve(10000, 10000, 10000, 10000), nil, 10000, 0.02)
	assert.Zero(t, m.SharpeRatio, "zero volatility yields zero, not a division blowup")
	assert.Zero(t, m.SortinoRatio)
}

func TestSortino_NoNegativeReturns(t *testing.T) {
	m := CalculateMetrics(curve(10000, 10100, 10200), nil, 10000, 0)
	assert.Zero(t, m.SortinoRatio)
	assert.Greater(t, m.SharpeRatio, 0.0)
}

func TestProfitFactor(t *testing.T) {
	onlyWins := []Trade{roundTrip(100, 110, 0, 1), roundTrip(100, 105, 2, 3)}
	m := CalculateMetrics(curve(10000, 10150), onlyWins, 10000, 0)
	assert.True(t, math.IsInf(m.ProfitFactor, 1), "no losses and positive profit")

	onlyLosses := []Trade{roundTrip(100, 90, 0, 1)}
	m = CalculateMetrics(curve(10000, 9900), onlyLosses, 10000, 0)
	assert.Zero(t, m.ProfitFactor)

	mixed := []Trade{roundTrip(100, 110, 0, 1), roundTrip(100, 95, 2, 3)}
	m = CalculateMetrics(curve(10000, 10050), mixed, 10000, 0)
	assert.InDelta(t, 2.0, m.ProfitFactor, 1e-9, "gross profit 100 over gross loss 50")
}

func TestTradeStatistics(t *testing.T) {
	trades := []Trade{
		roundTrip(100, 110, 0, 5),  // +100
		roundTrip(100, 95, 5, 7),   // -50
		roundTrip(100, 120, 7, 10), // +200
	}
	m := CalculateMetrics(curve(10000, 10250), trades, 10000, 0)

	assert.Equal(t, 3, m.TotalTrades)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 1, m.LosingTrades)
	assert.InDelta(t, 100.0*2/3, m.WinRatePct, 1e-9)
	assert.InDelta(t, 250.0/3, m.Expectancy, 1e-9)
	assert.InDelta(t, 150.0, m.AvgWin, 1e-9)
	assert.InDelta(t, -50.0, m.AvgLoss, 1e-9)
	assert.InDelta(t, 200.0, m.LargestWin, 1e-9)
	assert.InDelta(t, -50.0, m.LargestLoss, 1e-9)
	assert.InDelta(t, 10.0/3, m.AvgHoldingDays, 1e-9)
}

func TestPeriodReturns_FirstIsZero(t *testing.T) {
	returns := periodReturns(curve(100, 110, 99))
	require.Len(t, returns, 3)
	assert.Zero(t, returns[0])
	assert.InDelta(t, 0.10, returns[1], 1e-9)
	assert.InDelta(t, -0.10, returns[2], 1e-9)
}

func TestStdDev_Sample(t *testing.T) {
	assert.InDelta(t, math.Sqrt(5.0/3.0), stdDev([]float64{1, 2, 3, 4}), 1e-12)
	assert.Zero(t, stdDev([]float64{5}), "fewer than two samples")
}

