package backtest

import (
	"math"

	"github.com/fedetic/stockies/internal/strategy"
)

// positionSize computes how many shares to buy for an entry. atr may be NaN
// when the indicator is not yet defined; risk_based sizing then falls back
// to the percentage formula. Negative or undefined results clamp to zero.
func positionSize(strat *strategy.Strategy, cash, price, atr float64) int {
	sizing := strat.PositionSizing
	value := sizing.Value

	var shares int
	switch sizing.Method {
	case strategy.SizingFixed:
		shares = floorShares(value / price)

	case strategy.SizingPercentage:
		shares = floorShares(cash * (value / 100) / price)

	case strategy.SizingRiskBased:
		if !math.IsNaN(atr) && atr > 0 {
			riskAmount := cash * (value / 100)
			riskPerShare := 2 * atr
			shares = floorShares(riskAmount / riskPerShare)
		} else {
			shares = floorShares(cash * (value / 100) / price)
		}

	default:
		shares = 0
	}

	if shares < 0 {
		return 0
	}
	return shares
}

func floorShares(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v))
}
