package indicator

import (
	"fmt"

	"github.com/fedetic/stockies/internal/core"
)

// Standard column names attached by ComputeAll. Parameterized columns use
// the NAME_period form, e.g. SMA_50 or RSI_14.
const (
	ColMACD       = "MACD"
	ColMACDSignal = "MACD_Signal"
	ColMACDHist   = "MACD_Hist"
	ColBBUpper    = "BB_Upper"
	ColBBMiddle   = "BB_Middle"
	ColBBLower    = "BB_Lower"
	ColStochK     = "Stoch_K"
	ColStochD     = "Stoch_D"
	ColOBV        = "OBV"
	ColVWAP       = "VWAP"
	ColWilliamsR  = "Williams_R"
)

// maPeriods is the batch set of moving-average windows.
var maPeriods = []int{10, 20, 50, 100, 200}

// Frame is an ordered bar sequence enriched with named indicator columns
// for one ticker. Columns are full-length slices aligned to Bars.
type Frame struct {
	Bars    []core.Bar
	columns map[string][]float64

	open   []float64
	high   []float64
	low    []float64
	close_ []float64
	volume []float64
}

// NewFrame builds a Frame over the given bars.
func NewFrame(bars []core.Bar) *Frame {
	f := &Frame{
		Bars:    bars,
		columns: make(map[string][]float64),
		open:    make([]float64, len(bars)),
		high:    make([]float64, len(bars)),
		low:     make([]float64, len(bars)),
		close_:  make([]float64, len(bars)),
		volume:  make([]float64, len(bars)),
	}
	for i, b := range bars {
		f.open[i] = b.Open
		f.high[i] = b.High
		f.low[i] = b.Low
		f.close_[i] = b.Close
		f.volume[i] = b.Volume
	}
	return f
}

func (f *Frame) Len() int          { return len(f.Bars) }
func (f *Frame) Open() []float64   { return f.open }
func (f *Frame) High() []float64   { return f.high }
func (f *Frame) Low() []float64    { return f.low }
func (f *Frame) Close() []float64  { return f.close_ }
func (f *Frame) Volume() []float64 { return f.volume }

// Column returns a named indicator column if it has been attached.
func (f *Frame) Column(name string) ([]float64, bool) {
	col, ok := f.columns[name]
	return col, ok
}

// SetColumn attaches a named indicator column.
func (f *Frame) SetColumn(name string, values []float64) {
	f.columns[name] = values
}

// PeriodColumn formats the NAME_period column key.
func PeriodColumn(name string, period int) string {
	return fmt.Sprintf("%s_%d", name, period)
}

// ComputeAll attaches the standard indicator set so rule evaluation can
// reuse the columns instead of recomputing per reference.
func (f *Frame) ComputeAll() {
	for _, p := range maPeriods {
		f.SetColumn(PeriodColumn("SMA", p), SMA(f.close_, p))
		f.SetColumn(PeriodColumn("EMA", p), EMA(f.close_, p))
	}

	f.SetColumn(PeriodColumn("RSI", 14), RSI(f.close_, 14))

	macd, signal, hist := MACD(f.close_, 12, 26, 9)
	f.SetColumn(ColMACD, macd)
	f.SetColumn(ColMACDSignal, signal)
	f.SetColumn(ColMACDHist, hist)

	upper, middle, lower := Bollinger(f.close_, 20, 2)
	f.SetColumn(ColBBUpper, upper)
	f.SetColumn(ColBBMiddle, middle)
	f.SetColumn(ColBBLower, lower)

	f.SetColumn(PeriodColumn("ATR", 14), ATR(f.high, f.low, f.close_, 14))

	k, d := Stochastic(f.high, f.low, f.close_, 14, 3)
	f.SetColumn(ColStochK, k)
	f.SetColumn(ColStochD, d)

	f.SetColumn(PeriodColumn("ADX", 14), ADX(f.high, f.low, f.close_, 14))

	f.SetColumn(ColOBV, OBV(f.close_, f.volume))
	f.SetColumn(ColVWAP, VWAP(f.high, f.low, f.close_, f.volume))

	f.SetColumn(PeriodColumn("CCI", 20), CCI(f.high, f.low, f.close_, 20))
	f.SetColumn(PeriodColumn("ROC", 12), ROC(f.close_, 12))
	f.SetColumn(ColWilliamsR, WilliamsR(f.high, f.low, f.close_, 14))
}
