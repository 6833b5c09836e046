package rule

import (
	"github.com/fedetic/stockies/internal/indicator"
)

// Default parameters for indicator calls that omit them.
const (
	defaultRSIPeriod      = 14
	defaultATRPeriod      = 14
	defaultADXPeriod      = 14
	defaultCCIPeriod      = 20
	defaultROCPeriod      = 12
	defaultWilliamsPeriod = 14
	defaultMomentumPeriod = 10
	defaultBBPeriod       = 20
	defaultBBWidth        = 2.0
	defaultMACDFast       = 12
	defaultMACDSlow       = 26
	defaultMACDSignal     = 9
	defaultStochK         = 14
	defaultStochD         = 3
)

// numParam returns the i-th numeric parameter or a fallback.
func numParam(params []Param, i int, fallback float64) float64 {
	if i < len(params) && params[i].IsNumber {
		return params[i].Number
	}
	return fallback
}

// evalIndicator resolves an indicator call to a series. A precomputed frame
// column is used when it exists for the exact requested parameters;
// otherwise the series is computed on demand.
func (e *Evaluator) evalIndicator(expr *Expr, f *indicator.Frame) []float64 {
	period := func(def int) int { return int(numParam(expr.Params, 0, float64(def))) }

	column := func(name string, compute func() []float64) []float64 {
		if col, ok := f.Column(name); ok {
			return col
		}
		return compute()
	}

	switch expr.Indicator {
	case IndSMA:
		if len(expr.Params) == 0 || !expr.Params[0].IsNumber {
			return undefinedSeries(f.Len())
		}
		p := int(expr.Params[0].Number)
		return column(indicator.PeriodColumn("SMA", p), func() []float64 {
			return indicator.SMA(f.Close(), p)
		})

	case IndEMA:
		if len(expr.Params) == 0 || !expr.Params[0].IsNumber {
			return undefinedSeries(f.Len())
		}
		p := int(expr.Params[0].Number)
		return column(indicator.PeriodColumn("EMA", p), func() []float64 {
			return indicator.EMA(f.Close(), p)
		})

	case IndWMA:
		p := period(defaultRSIPeriod)
		return indicator.WMA(f.Close(), p)

	case IndRSI:
		p := period(defaultRSIPeriod)
		return column(indicator.PeriodColumn("RSI", p), func() []float64 {
			return indicator.RSI(f.Close(), p)
		})

	case IndMACD:
		return column(indicator.ColMACD, func() []float64 {
			line, _, _ := e.macd(expr, f)
			return line
		})

	case IndMACDSignal:
		return column(indicator.ColMACDSignal, func() []float64 {
			_, signal, _ := e.macd(expr, f)
			return signal
		})

	case IndMACDHist:
		return column(indicator.ColMACDHist, func() []float64 {
			_, _, hist := e.macd(expr, f)
			return hist
		})

	case IndBBUpper:
		return column(indicator.ColBBUpper, func() []float64 {
			upper, _, _ := e.bollinger(expr, f)
			return upper
		})

	case IndBBMiddle:
		return column(indicator.ColBBMiddle, func() []float64 {
			_, middle, _ := e.bollinger(expr, f)
			return middle
		})

	case IndBBLower:
		return column(indicator.ColBBLower, func() []float64 {
			_, _, lower := e.bollinger(expr, f)
			return lower
		})

	case IndATR:
		p := period(defaultATRPeriod)
		return column(indicator.PeriodColumn("ATR", p), func() []float64 {
			return indicator.ATR(f.High(), f.Low(), f.Close(), p)
		})

	case IndStochK:
		return column(indicator.ColStochK, func() []float64 {
			k, _ := e.stochastic(expr, f)
			return k
		})

	case IndStochD:
		return column(indicator.ColStochD, func() []float64 {
			_, d := e.stochastic(expr, f)
			return d
		})

	case IndADX:
		p := period(defaultADXPeriod)
		return column(indicator.PeriodColumn("ADX", p), func() []float64 {
			return indicator.ADX(f.High(), f.Low(), f.Close(), p)
		})

	case IndOBV:
		return column(indicator.ColOBV, func() []float64 {
			return indicator.OBV(f.Close(), f.Volume())
		})

	case IndVWAP:
		return column(indicator.ColVWAP, func() []float64 {
			return indicator.VWAP(f.High(), f.Low(), f.Close(), f.Volume())
		})

	case IndCCI:
		p := period(defaultCCIPeriod)
		return column(indicator.PeriodColumn("CCI", p), func() []float64 {
			return indicator.CCI(f.High(), f.Low(), f.Close(), p)
		})

	case IndROC:
		p := period(defaultROCPeriod)
		return column(indicator.PeriodColumn("ROC", p), func() []float64 {
			return indicator.ROC(f.Close(), p)
		})

	case IndWilliamsR:
		p := period(defaultWilliamsPeriod)
		if p == defaultWilliamsPeriod {
			if col, ok := f.Column(indicator.ColWilliamsR); ok {
				return col
			}
		}
		return indicator.WilliamsR(f.High(), f.Low(), f.Close(), p)

	case IndMomentum:
		p := period(defaultMomentumPeriod)
		return indicator.Momentum(f.Close(), p)
	}

	return undefinedSeries(f.Len())
}

func (e *Evaluator) macd(expr *Expr, f *indicator.Frame) (line, signal, hist []float64) {
	fast := int(numParam(expr.Params, 0, defaultMACDFast))
	slow := int(numParam(expr.Params, 1, defaultMACDSlow))
	sig := int(numParam(expr.Params, 2, defaultMACDSignal))
	return indicator.MACD(f.Close(), fast, slow, sig)
}

func (e *Evaluator) bollinger(expr *Expr, f *indicator.Frame) (upper, middle, lower []float64) {
	p := int(numParam(expr.Params, 0, defaultBBPeriod))
	k := numParam(expr.Params, 1, defaultBBWidth)
	return indicator.Bollinger(f.Close(), p, k)
}

func (e *Evaluator) stochastic(expr *Expr, f *indicator.Frame) (k, d []float64) {
	kp := int(numParam(expr.Params, 0, defaultStochK))
	dp := int(numParam(expr.Params, 1, defaultStochD))
	return indicator.Stochastic(f.High(), f.Low(), f.Close(), kp, dp)
}
