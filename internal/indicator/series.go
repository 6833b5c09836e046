// Package indicator computes technical indicators over OHLCV series.
//
// All functions return a slice the same length as the input, aligned
// bar-for-bar. Positions where a windowed indicator does not yet have
// enough history hold NaN ("no value"). NaN propagates through rolling
// windows: a window containing any NaN yields NaN.
package indicator

import "math"

// nanSlice returns a slice of n NaNs.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// rollingMean computes the trailing arithmetic mean over a window.
func rollingMean(data []float64, period int) []float64 {
	out := nanSlice(len(data))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(data); i++ {
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += data[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}

// rollingStd computes the trailing sample standard deviation (ddof=1).
func rollingStd(data []float64, period int) []float64 {
	out := nanSlice(len(data))
	if period <= 1 {
		return out
	}
	for i := period - 1; i < len(data); i++ {
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += data[j]
		}
		mean := sum / float64(period)
		var variance float64
		for j := i - period + 1; j <= i; j++ {
			variance += (data[j] - mean) * (data[j] - mean)
		}
		out[i] = math.Sqrt(variance / float64(period-1))
	}
	return out
}

// rollingMax computes the trailing maximum over a window.
func rollingMax(data []float64, period int) []float64 {
	out := nanSlice(len(data))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(data); i++ {
		max := math.Inf(-1)
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(data[j]) {
				max = math.NaN()
				break
			}
			if data[j] > max {
				max = data[j]
			}
		}
		out[i] = max
	}
	return out
}

// rollingMin computes the trailing minimum over a window.
func rollingMin(data []float64, period int) []float64 {
	out := nanSlice(len(data))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(data); i++ {
		min := math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(data[j]) {
				min = math.NaN()
				break
			}
			if data[j] < min {
				min = data[j]
			}
		}
		out[i] = min
	}
	return out
}

// diff returns data[i] - data[i-lag], NaN for the first lag positions.
func diff(data []float64, lag int) []float64 {
	out := nanSlice(len(data))
	for i := lag; i < len(data); i++ {
		out[i] = data[i] - data[i-lag]
	}
	return out
}
