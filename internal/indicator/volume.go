package indicator

// OBV calculates On-Balance Volume: the cumulative sum of
// sign(close change) * volume, starting at zero.
func OBV(close, volume []float64) []float64 {
	out := make([]float64, len(close))
	for i := 1; i < len(close); i++ {
		switch {
		case close[i] > close[i-1]:
			out[i] = out[i-1] + volume[i]
		case close[i] < close[i-1]:
			out[i] = out[i-1] - volume[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// VWAP calculates the cumulative Volume Weighted Average Price using the
// typical price (high+low+close)/3.
func VWAP(high, low, close, volume []float64) []float64 {
	out := make([]float64, len(close))
	var cumPV, cumV float64
	for i := range close {
		tp := (high[i] + low[i] + close[i]) / 3
		cumPV += tp * volume[i]
		cumV += volume[i]
		out[i] = cumPV / cumV
	}
	return out
}
