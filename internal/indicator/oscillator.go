package indicator

import "math"

// RSI calculates the Relative Strength Index over a trailing window of
// signed price changes. RSI = 100 - 100/(1+RS), RS = mean(gains)/mean(losses),
// losses taken as positive magnitudes. The first period values are NaN
// because the change series only starts at the second bar.
func RSI(prices []float64, period int) []float64 {
	delta := diff(prices, 1)

	gains := nanSlice(len(prices))
	losses := nanSlice(len(prices))
	for i := 1; i < len(prices); i++ {
		if math.IsNaN(delta[i]) {
			continue
		}
		gains[i] = 0
		losses[i] = 0
		if delta[i] > 0 {
			gains[i] = delta[i]
		} else if delta[i] < 0 {
			losses[i] = -delta[i]
		}
	}

	avgGain := rollingMean(gains, period)
	avgLoss := rollingMean(losses, period)

	out := nanSlice(len(prices))
	for i := range out {
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// Stochastic calculates the stochastic oscillator.
// %K = 100 * (close - lowestLow) / (highestHigh - lowestLow)
// %D = SMA(%K, dPeriod)
func Stochastic(high, low, close []float64, kPeriod, dPeriod int) (k, d []float64) {
	lowestLow := rollingMin(low, kPeriod)
	highestHigh := rollingMax(high, kPeriod)

	k = nanSlice(len(close))
	for i := range close {
		k[i] = 100 * (close[i] - lowestLow[i]) / (highestHigh[i] - lowestLow[i])
	}
	d = rollingMean(k, dPeriod)
	return k, d
}

// WilliamsR calculates Williams %R, the inverse stochastic on a -100..0 scale.
func WilliamsR(high, low, close []float64, period int) []float64 {
	highestHigh := rollingMax(high, period)
	lowestLow := rollingMin(low, period)

	out := nanSlice(len(close))
	for i := range close {
		out[i] = -100 * (highestHigh[i] - close[i]) / (highestHigh[i] - lowestLow[i])
	}
	return out
}

// ROC calculates the Rate of Change as a percentage over period bars.
func ROC(prices []float64, period int) []float64 {
	out := nanSlice(len(prices))
	for i := period; i < len(prices); i++ {
		out[i] = (prices[i] - prices[i-period]) / prices[i-period] * 100
	}
	return out
}

// Momentum calculates the raw price difference over period bars.
func Momentum(prices []float64, period int) []float64 {
	return diff(prices, period)
}

// CCI calculates the Commodity Channel Index:
// (typicalPrice - SMA(typicalPrice)) / (0.015 * meanAbsDeviation).
func CCI(high, low, close []float64, period int) []float64 {
	tp := make([]float64, len(close))
	for i := range close {
		tp[i] = (high[i] + low[i] + close[i]) / 3
	}

	smaTP := rollingMean(tp, period)

	out := nanSlice(len(close))
	for i := period - 1; i < len(tp); i++ {
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += tp[j]
		}
		mean := sum / float64(period)
		var dev float64
		for j := i - period + 1; j <= i; j++ {
			dev += math.Abs(tp[j] - mean)
		}
		meanDev := dev / float64(period)
		out[i] = (tp[i] - smaTP[i]) / (0.015 * meanDev)
	}
	return out
}
