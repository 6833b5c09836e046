package rule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fedetic/stockies/internal/core"
)

// Comparison operators in matching order. Longer operators come first so
// ">=" is never mis-split as ">".
var comparisonOps = []string{">=", "<=", "==", "!=", ">", "<"}

// Arithmetic operators in matching order.
var arithmeticOps = []string{"*", "/", "+", "-"}

// funcCall matches a function-call shape at the start of an expression.
var funcCall = regexp.MustCompile(`^(\w+)\((.*?)\)`)

// Parse turns a rules string into an ordered node sequence. Whitespace
// separates tokens; AND/OR/NOT (case-insensitive) are logical operators and
// everything between them is re-joined into one condition clause.
func Parse(rulesText string) ([]Node, error) {
	var tokens []string
	var current []string

	for _, word := range strings.Fields(rulesText) {
		upper := strings.ToUpper(word)
		if upper == OpAnd || upper == OpOr || upper == OpNot {
			if len(current) > 0 {
				tokens = append(tokens, strings.Join(current, " "))
				current = nil
			}
			tokens = append(tokens, upper)
		} else {
			current = append(current, word)
		}
	}
	if len(current) > 0 {
		tokens = append(tokens, strings.Join(current, " "))
	}

	var nodes []Node
	for _, token := range tokens {
		if token == OpAnd || token == OpOr || token == OpNot {
			nodes = append(nodes, Node{Kind: NodeOperator, Logical: token})
			continue
		}

		cond, err := parseCondition(token)
		if err != nil {
			return nil, core.WrapError(core.ErrParseFailed,
				fmt.Errorf("condition %q: %w", token, err))
		}
		nodes = append(nodes, cond)
	}

	return nodes, nil
}

// parseCondition splits a clause at its first comparison operator.
func parseCondition(condition string) (Node, error) {
	condition = strings.TrimSpace(condition)

	for _, op := range comparisonOps {
		idx := strings.Index(condition, op)
		if idx < 0 {
			continue
		}

		left, err := parseExpr(condition[:idx])
		if err != nil {
			return Node{}, err
		}
		right, err := parseExpr(condition[idx+len(op):])
		if err != nil {
			return Node{}, err
		}

		return Node{Kind: NodeComparison, Op: op, Left: left, Right: right}, nil
	}

	return Node{}, fmt.Errorf("invalid condition: %s", condition)
}

// parseExpr parses an expression: a numeric literal, an indicator call,
// a known variable, or an arithmetic split of two sub-expressions.
func parseExpr(expr string) (*Expr, error) {
	expr = strings.TrimSpace(expr)

	if v, err := strconv.ParseFloat(expr, 64); err == nil {
		return &Expr{Kind: ExprValue, Value: v}, nil
	}

	if m := funcCall.FindStringSubmatch(expr); m != nil {
		name := strings.ToLower(m[1])
		kind, ok := ParseIndicator(name)
		if !ok {
			return nil, fmt.Errorf("unknown indicator: %s", name)
		}

		var params []Param
		if m[2] != "" {
			for _, part := range strings.Split(m[2], ",") {
				part = strings.TrimSpace(part)
				if v, err := strconv.ParseFloat(part, 64); err == nil {
					params = append(params, Param{Number: v, IsNumber: true})
				} else {
					params = append(params, Param{Text: strings.ToLower(part)})
				}
			}
		}

		return &Expr{Kind: ExprIndicator, Indicator: kind, Params: params}, nil
	}

	if knownVariables[strings.ToLower(expr)] {
		return &Expr{Kind: ExprVariable, Name: strings.ToLower(expr)}, nil
	}

	// Try arithmetic splits. On a failed split, keep scanning for a later
	// occurrence of the same operator before moving to the next one.
	for _, op := range arithmeticOps {
		for from := 0; ; {
			idx := strings.Index(expr[from:], op)
			if idx < 0 {
				break
			}
			idx += from

			left, lerr := parseExpr(expr[:idx])
			right, rerr := parseExpr(expr[idx+1:])
			if lerr == nil && rerr == nil {
				return &Expr{Kind: ExprArithmetic, Op: op, Left: left, Right: right}, nil
			}
			from = idx + 1
		}
	}

	return nil, fmt.Errorf("invalid expression: %s", expr)
}
