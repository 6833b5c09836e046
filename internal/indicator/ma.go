package indicator

import "math"

// SMA calculates the Simple Moving Average.
// The first period-1 values are NaN.
func SMA(prices []float64, period int) []float64 {
	return rollingMean(prices, period)
}

// EMA calculates the Exponential Moving Average with smoothing factor
// 2/(period+1), seeded by the first observation (no bias adjustment).
// Defined from the first bar onward.
func EMA(prices []float64, period int) []float64 {
	out := nanSlice(len(prices))
	if len(prices) == 0 || period <= 0 {
		return out
	}

	alpha := 2.0 / float64(period+1)
	ema := math.NaN()
	for i, p := range prices {
		switch {
		case math.IsNaN(p):
			// carry the previous value through gaps
		case math.IsNaN(ema):
			ema = p
		default:
			ema = alpha*p + (1-alpha)*ema
		}
		out[i] = ema
	}
	return out
}

// WMA calculates the linearly Weighted Moving Average with weights 1..period.
func WMA(prices []float64, period int) []float64 {
	out := nanSlice(len(prices))
	if period <= 0 {
		return out
	}
	weightSum := float64(period) * float64(period+1) / 2
	for i := period - 1; i < len(prices); i++ {
		var sum float64
		for j := 0; j < period; j++ {
			sum += prices[i-period+1+j] * float64(j+1)
		}
		out[i] = sum / weightSum
	}
	return out
}
