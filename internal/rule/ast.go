// Package rule implements the strategy rule language: a parser that turns
// rule strings like "rsi(14) < 30 AND price > sma(200)" into AST nodes, and
// a vectorized evaluator that reduces those nodes to per-bar boolean signals.
package rule

import "strings"

// NodeKind discriminates top-level rule nodes.
type NodeKind int

const (
	NodeComparison NodeKind = iota
	NodeOperator
)

// Logical operators.
const (
	OpAnd = "AND"
	OpOr  = "OR"
	OpNot = "NOT"
)

// Node is one element of a parsed rule sequence: either a comparison or a
// logical operator. The evaluator consumes nodes left to right with no
// operator precedence.
type Node struct {
	Kind NodeKind

	// Comparison fields
	Op    string // one of >=, <=, ==, !=, >, <
	Left  *Expr
	Right *Expr

	// Operator field
	Logical string // AND, OR or NOT
}

// ExprKind discriminates expression variants.
type ExprKind int

const (
	ExprValue ExprKind = iota
	ExprVariable
	ExprIndicator
	ExprArithmetic
)

// Expr is one side of a comparison or arithmetic split.
type Expr struct {
	Kind ExprKind

	Value float64 // ExprValue

	Name string // ExprVariable: price, open, high, low, close, volume, entry_price

	Indicator IndicatorKind // ExprIndicator
	Params    []Param

	Op    string // ExprArithmetic: *, /, + or -
	Left  *Expr
	Right *Expr
}

// Param is a function-call argument: a number or a bare lowercase token.
type Param struct {
	Number   float64
	Text     string
	IsNumber bool
}

// IndicatorKind is the closed set of indicator names the language knows.
type IndicatorKind int

const (
	IndSMA IndicatorKind = iota
	IndEMA
	IndWMA
	IndRSI
	IndMACD
	IndMACDSignal
	IndMACDHist
	IndBBUpper
	IndBBMiddle
	IndBBLower
	IndATR
	IndStochK
	IndStochD
	IndADX
	IndOBV
	IndVWAP
	IndCCI
	IndROC
	IndWilliamsR
	IndMomentum
)

var indicatorNames = map[string]IndicatorKind{
	"sma":         IndSMA,
	"ema":         IndEMA,
	"wma":         IndWMA,
	"rsi":         IndRSI,
	"macd":        IndMACD,
	"macd_signal": IndMACDSignal,
	"macd_hist":   IndMACDHist,
	"bb_upper":    IndBBUpper,
	"bb_middle":   IndBBMiddle,
	"bb_lower":    IndBBLower,
	"atr":         IndATR,
	"stoch_k":     IndStochK,
	"stoch_d":     IndStochD,
	"adx":         IndADX,
	"obv":         IndOBV,
	"vwap":        IndVWAP,
	"cci":         IndCCI,
	"roc":         IndROC,
	"williams_r":  IndWilliamsR,
	"momentum":    IndMomentum,
}

// ParseIndicator resolves a lowercase name to its indicator kind.
func ParseIndicator(name string) (IndicatorKind, bool) {
	k, ok := indicatorNames[strings.ToLower(name)]
	return k, ok
}

func (k IndicatorKind) String() string {
	for name, kind := range indicatorNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// Variables the language recognizes as bare names.
var knownVariables = map[string]bool{
	"price":       true,
	"open":        true,
	"high":        true,
	"low":         true,
	"close":       true,
	"volume":      true,
	"entry_price": true,
}
