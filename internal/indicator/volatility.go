package indicator

import "math"

// Bollinger calculates Bollinger Bands: middle = SMA(period),
// upper/lower = middle +/- k standard deviations (sample deviation).
func Bollinger(prices []float64, period int, k float64) (upper, middle, lower []float64) {
	middle = rollingMean(prices, period)
	std := rollingStd(prices, period)

	upper = nanSlice(len(prices))
	lower = nanSlice(len(prices))
	for i := range prices {
		upper[i] = middle[i] + k*std[i]
		lower[i] = middle[i] - k*std[i]
	}
	return upper, middle, lower
}

// TrueRange returns the per-bar true range:
// max(high-low, |high-prevClose|, |low-prevClose|).
// The first bar has no previous close, so its true range is high-low.
func TrueRange(high, low, close []float64) []float64 {
	out := make([]float64, len(close))
	for i := range close {
		hl := high[i] - low[i]
		if i == 0 {
			out[i] = hl
			continue
		}
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// ATR calculates the Average True Range as a rolling mean of true range.
func ATR(high, low, close []float64, period int) []float64 {
	return rollingMean(TrueRange(high, low, close), period)
}
