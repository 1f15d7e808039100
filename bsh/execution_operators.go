package bsh

import (
	"fmt"
	"math"
)

func (exec *Execution) evalUnary(e *UnaryExpr, ns *NameSpace) (any, error) {
	right, err := exec.evalExpression(e.Right, ns)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case tokenBang:
		b, ok := right.(bool)
		if !ok {
			return nil, exec.errorAt(e.Pos(), "operator ! not defined for %s", TypeName(right))
		}
		return !b, nil
	case tokenMinus, tokenPlus:
		rank := numericRank(right)
		if rank == rankNone {
			return nil, exec.errorAt(e.Pos(), "operator %s not defined for %s", e.Operator, TypeName(right))
		}
		rank = max(rank, rankInt)
		if e.Operator == tokenPlus {
			return fromRank(rank, toInt64(right), toFloat64(right)), nil
		}
		return fromRank(rank, -toInt64(right), -toFloat64(right)), nil
	default:
		return nil, exec.errorAt(e.Pos(), "unsupported unary operator %s", e.Operator)
	}
}

func (exec *Execution) evalBinary(e *BinaryExpr, ns *NameSpace) (any, error) {
	left, err := exec.evalExpression(e.Left, ns)
	if err != nil {
		return nil, err
	}

	if e.Operator == tokenAnd || e.Operator == tokenOr {
		lb, ok := left.(bool)
		if !ok {
			return nil, exec.errorAt(e.Pos(), "operator %s not defined for %s", e.Operator, TypeName(left))
		}
		if e.Operator == tokenAnd && !lb {
			return false, nil
		}
		if e.Operator == tokenOr && lb {
			return true, nil
		}
		right, err := exec.evalExpression(e.Right, ns)
		if err != nil {
			return nil, err
		}
		rb, ok := right.(bool)
		if !ok {
			return nil, exec.errorAt(e.Right.Pos(), "operator %s not defined for %s", e.Operator, TypeName(right))
		}
		return rb, nil
	}

	right, err := exec.evalExpression(e.Right, ns)
	if err != nil {
		return nil, err
	}
	return exec.binaryOp(e.Operator, left, right, e.Pos())
}

func (exec *Execution) binaryOp(op TokenType, left, right any, pos Position) (any, error) {
	switch op {
	case tokenEQ:
		return valuesEqual(left, right), nil
	case tokenNotEQ:
		return !valuesEqual(left, right), nil
	case tokenLT, tokenLTE, tokenGT, tokenGTE:
		return exec.compare(op, left, right, pos)
	}

	val, err := arithmetic(op, left, right)
	if err != nil {
		if ex, ok := err.(*Exception); ok {
			return nil, &TargetError{Value: ex, Pos: pos}
		}
		return nil, exec.wrapError(err, pos)
	}
	return val, nil
}

func (exec *Execution) compare(op TokenType, left, right any, pos Position) (bool, error) {
	lr, rr := numericRank(left), numericRank(right)
	if lr == rankNone || rr == rankNone {
		return false, exec.errorAt(pos, "operator %s not defined for %s and %s", op, TypeName(left), TypeName(right))
	}
	var cmp int
	if max(lr, rr) >= rankFloat {
		l, r := toFloat64(left), toFloat64(right)
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		case l != r:
			// NaN compares false with everything
			return false, nil
		}
	} else {
		l, r := toInt64(left), toInt64(right)
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		}
	}
	switch op {
	case tokenLT:
		return cmp < 0, nil
	case tokenLTE:
		return cmp <= 0, nil
	case tokenGT:
		return cmp > 0, nil
	default:
		return cmp >= 0, nil
	}
}

// arithmetic applies + - * / % with numeric promotion. + concatenates when
// either operand is a string.
func arithmetic(op TokenType, left, right any) (any, error) {
	if op == tokenPlus {
		_, ls := left.(string)
		_, rs := right.(string)
		if ls || rs {
			return FormatValue(left) + FormatValue(right), nil
		}
	}

	lr, rr := numericRank(left), numericRank(right)
	if lr == rankNone || rr == rankNone {
		return nil, fmt.Errorf("operator %s not defined for %s and %s", op, TypeName(left), TypeName(right))
	}
	rank := max(lr, rr, rankInt)

	if rank <= rankLong {
		l, r := toInt64(left), toInt64(right)
		var out int64
		switch op {
		case tokenPlus:
			out = l + r
		case tokenMinus:
			out = l - r
		case tokenAsterisk:
			out = l * r
		case tokenSlash, tokenPercent:
			if r == 0 {
				return nil, &Exception{Type: "ArithmeticException", Message: "/ by zero"}
			}
			if op == tokenSlash {
				out = l / r
			} else {
				out = l % r
			}
		default:
			return nil, fmt.Errorf("unsupported operator %s", op)
		}
		return fromRank(rank, out, 0), nil
	}

	l, r := toFloat64(left), toFloat64(right)
	var out float64
	switch op {
	case tokenPlus:
		out = l + r
	case tokenMinus:
		out = l - r
	case tokenAsterisk:
		out = l * r
	case tokenSlash:
		out = l / r
	case tokenPercent:
		out = math.Mod(l, r)
	default:
		return nil, fmt.Errorf("unsupported operator %s", op)
	}
	return fromRank(rank, 0, out), nil
}

// compoundOperator maps += and friends to the underlying binary operator.
func compoundOperator(op TokenType) (TokenType, bool) {
	switch op {
	case tokenPlusAssign:
		return tokenPlus, true
	case tokenMinusAssign:
		return tokenMinus, true
	case tokenStarAssign:
		return tokenAsterisk, true
	case tokenSlashAssign:
		return tokenSlash, true
	case tokenPercentAssign:
		return tokenPercent, true
	default:
		return "", false
	}
}
