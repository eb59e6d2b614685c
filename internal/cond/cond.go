// Package cond evaluates resolved If trees: leaf compares with optional
// tolerance, and/or compounds with short-circuit, per §4.4.
package cond

import (
	"fmt"

	"github.com/not-things-modular/timeseq/internal/evalx"
	"github.com/not-things-modular/timeseq/script"
)

// Eval evaluates a ref-free If tree against one tick's state and returns
// whether it holds, plus the formatted failure message it would carry if it
// did not (callers building assert failures use Message; plain `if`
// conditions only need the bool).
func Eval(e *evalx.Evaluator, i *script.If) (bool, string, error) {
	if i.Operator.IsLeaf() {
		return evalLeaf(e, i)
	}
	return evalCompound(e, i)
}

func evalLeaf(e *evalx.Evaluator, i *script.If) (bool, string, error) {
	a, err := e.Eval(&i.Values[0])
	if err != nil {
		return false, "", err
	}
	b, err := e.Eval(&i.Values[1])
	if err != nil {
		return false, "", err
	}

	var ok bool
	switch i.Operator {
	case script.IfEq:
		ok = within(a, b, tolerance(i))
	case script.IfNe:
		ok = !within(a, b, tolerance(i))
	case script.IfGt:
		ok = a > b
	case script.IfGte:
		ok = a >= b
	case script.IfLt:
		ok = a < b
	case script.IfLte:
		ok = a <= b
	default:
		return false, "", fmt.Errorf("unknown if operator %q", i.Operator)
	}
	return ok, formatLeaf(a, i.Operator, b), nil
}

func evalCompound(e *evalx.Evaluator, i *script.If) (bool, string, error) {
	left, leftMsg, err := Eval(e, &i.Ifs[0])
	if err != nil {
		return false, "", err
	}
	switch i.Operator {
	case script.IfAnd:
		if !left {
			return false, leftMsg, nil
		}
		right, rightMsg, err := Eval(e, &i.Ifs[1])
		if err != nil {
			return false, "", err
		}
		return right, formatCompound(leftMsg, "and", rightMsg), nil
	case script.IfOr:
		if left {
			return true, leftMsg, nil
		}
		right, rightMsg, err := Eval(e, &i.Ifs[1])
		if err != nil {
			return false, "", err
		}
		return right, formatCompound(leftMsg, "or", rightMsg), nil
	default:
		return false, "", fmt.Errorf("unknown if operator %q", i.Operator)
	}
}

func tolerance(i *script.If) float64 {
	if i.Tolerance == nil {
		return 0
	}
	return *i.Tolerance
}

func within(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func formatLeaf(a float64, op script.IfOperator, b float64) string {
	return fmt.Sprintf("(%s %s %s)", formatNum(a), op, formatNum(b))
}

func formatCompound(left string, op string, right string) string {
	return fmt.Sprintf("(%s %s %s)", left, op, right)
}

// formatNum renders a float with unpadded decimals, per §4.4.
func formatNum(f float64) string {
	s := fmt.Sprintf("%g", f)
	return s
}
