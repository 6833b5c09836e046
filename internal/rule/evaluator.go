package rule

import (
	"math"

	"github.com/fedetic/stockies/internal/indicator"
	"go.uber.org/zap"
)

// Evaluator turns parsed rule nodes into per-bar boolean signals against an
// indicator-enriched bar frame.
type Evaluator struct {
	logger *zap.Logger
}

// NewEvaluator creates an evaluator. The logger is optional.
func NewEvaluator(logger ...*zap.Logger) *Evaluator {
	l := zap.NewNop()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &Evaluator{logger: l}
}

// SignalsFor parses a rules string and evaluates it. An empty string or an
// unparseable one degrades to an all-false signal so a backtest run can
// still complete; parse failures are logged, not raised. Strict validation
// happens separately via strategy validation.
func (e *Evaluator) SignalsFor(rulesText string, f *indicator.Frame) []bool {
	if rulesText == "" {
		return make([]bool, f.Len())
	}
	nodes, err := Parse(rulesText)
	if err != nil {
		e.logger.Warn("rules failed to parse, signal degraded to false",
			zap.String("rules", rulesText),
			zap.Error(err),
		)
		return make([]bool, f.Len())
	}
	return e.Signals(nodes, f)
}

// Signals reduces the node sequence left to right on a stack: comparisons
// push a boolean series, NOT negates the top in place, AND/OR pop the two
// most recent series and push the combination. A binary operator seen
// before its right operand is held until the next comparison is pushed, so
// rule text reduces strictly left to right with no precedence:
// "A AND B OR C" is "(A AND B) OR C", never "A AND (B OR C)".
func (e *Evaluator) Signals(nodes []Node, f *indicator.Frame) []bool {
	n := f.Len()
	var stack [][]bool
	var pendingOp string
	pendingNot := false

	combine := func(op string) {
		right := stack[len(stack)-1]
		left := stack[len(stack)-2]
		stack = stack[:len(stack)-2]
		out := make([]bool, n)
		for i := range out {
			if op == OpAnd {
				out[i] = left[i] && right[i]
			} else {
				out[i] = left[i] || right[i]
			}
		}
		stack = append(stack, out)
	}

	for _, node := range nodes {
		switch node.Kind {
		case NodeOperator:
			switch node.Logical {
			case OpNot:
				if len(stack) > 0 && pendingOp == "" {
					top := stack[len(stack)-1]
					for i := range top {
						top[i] = !top[i]
					}
				} else {
					// No operand yet: negate the next one instead
					pendingNot = true
				}
			case OpAnd, OpOr:
				if len(stack) >= 2 {
					combine(node.Logical)
				} else {
					pendingOp = node.Logical
				}
			}

		case NodeComparison:
			left := e.evalExpr(node.Left, f)
			right := e.evalExpr(node.Right, f)
			result := compare(node.Op, left, right)
			if pendingNot {
				for i := range result {
					result[i] = !result[i]
				}
				pendingNot = false
			}
			stack = append(stack, result)
			if pendingOp != "" && len(stack) >= 2 {
				combine(pendingOp)
				pendingOp = ""
			}
		}
	}

	if len(stack) == 0 {
		return make([]bool, n)
	}
	// Bottom of the stack, matching the reduction's documented output.
	return stack[0]
}

// compare evaluates the elementwise comparison. A NaN on either side fails
// the comparison - undefined never propagates, including through "!=".
func compare(op string, left, right []float64) []bool {
	out := make([]bool, len(left))
	for i := range out {
		l, r := left[i], right[i]
		if math.IsNaN(l) || math.IsNaN(r) {
			continue
		}
		switch op {
		case ">":
			out[i] = l > r
		case "<":
			out[i] = l < r
		case ">=":
			out[i] = l >= r
		case "<=":
			out[i] = l <= r
		case "==":
			out[i] = l == r
		case "!=":
			out[i] = l != r
		}
	}
	return out
}

// evalExpr returns one value per bar for an expression. Unknown variables
// and entry_price (a per-position runtime fact, not a bar attribute) yield
// an undefined series.
func (e *Evaluator) evalExpr(expr *Expr, f *indicator.Frame) []float64 {
	n := f.Len()

	switch expr.Kind {
	case ExprValue:
		out := make([]float64, n)
		for i := range out {
			out[i] = expr.Value
		}
		return out

	case ExprArithmetic:
		left := e.evalExpr(expr.Left, f)
		right := e.evalExpr(expr.Right, f)
		out := make([]float64, n)
		for i := range out {
			switch expr.Op {
			case "*":
				out[i] = left[i] * right[i]
			case "/":
				out[i] = left[i] / right[i]
			case "+":
				out[i] = left[i] + right[i]
			case "-":
				out[i] = left[i] - right[i]
			}
		}
		return out

	case ExprVariable:
		switch expr.Name {
		case "price", "close":
			return f.Close()
		case "open":
			return f.Open()
		case "high":
			return f.High()
		case "low":
			return f.Low()
		case "volume":
			return f.Volume()
		default:
			// entry_price and anything unknown
			return undefinedSeries(n)
		}

	case ExprIndicator:
		return e.evalIndicator(expr, f)
	}

	return undefinedSeries(n)
}

func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
