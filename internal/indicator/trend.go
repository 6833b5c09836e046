package indicator

import "math"

// MACD calculates Moving Average Convergence Divergence.
// line = EMA(fast) - EMA(slow); signal = EMA(line, signalPeriod);
// histogram = line - signal.
func MACD(prices []float64, fast, slow, signalPeriod int) (line, signal, hist []float64) {
	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)

	line = make([]float64, len(prices))
	for i := range prices {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	signal = EMA(line, signalPeriod)

	hist = make([]float64, len(prices))
	for i := range prices {
		hist[i] = line[i] - signal[i]
	}
	return line, signal, hist
}

// ADX calculates the Average Directional Index from directional movement
// normalized by ATR and smoothed twice by rolling means (DI, then DX -> ADX).
// Defined from bar 2*(period-1) onward.
func ADX(high, low, close []float64, period int) []float64 {
	n := len(close)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	atr := ATR(high, low, close, period)
	avgPlus := rollingMean(plusDM, period)
	avgMinus := rollingMean(minusDM, period)

	dx := nanSlice(n)
	for i := range dx {
		plusDI := 100 * avgPlus[i] / atr[i]
		minusDI := 100 * avgMinus[i] / atr[i]
		dx[i] = 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
	}

	return rollingMean(dx, period)
}
