package vm

import (
	"math"

	"github.com/chazu/rickroll/pkg/lang"
)

// Operator implementations for the expression evaluator. Every operator
// pattern-matches its operands and signals an Illegal Argument error on a
// kind mismatch; int arithmetic that leaves the int32 range signals Overflow.

func typeError(op lang.Operator, a, b lang.Value) *lang.Error {
	return lang.Errorf(lang.IllegalArgumentError, 0,
		"%s is not defined for %s and %s", op, a.Kind, b.Kind)
}

func checkedInt(op lang.Operator, wide int64) (lang.Value, *lang.Error) {
	if wide < math.MinInt32 || wide > math.MaxInt32 {
		return lang.Undefined, lang.Errorf(lang.OverflowError, 0, "Integer overflow in %s", op)
	}
	return lang.IntValue(int32(wide)), nil
}

func applyUnary(op lang.Operator, v lang.Value) (lang.Value, *lang.Error) {
	switch op {
	case lang.OpNeg:
		switch v.Kind {
		case lang.KindInt:
			return checkedInt(op, -int64(v.Int))
		case lang.KindFloat:
			return lang.FloatValue(-v.Float), nil
		}
		return lang.Undefined, lang.Errorf(lang.IllegalArgumentError, 0,
			"- is not defined for %s", v.Kind)
	case lang.OpNot:
		if v.Kind == lang.KindBool {
			return lang.BoolValue(!v.Bool), nil
		}
		return lang.Undefined, lang.Errorf(lang.IllegalArgumentError, 0,
			"! is not defined for %s", v.Kind)
	}
	return lang.Undefined, lang.Errorf(lang.IllegalArgumentError, 0,
		"%s is not a unary operator", op)
}

func applyBinary(op lang.Operator, a, b lang.Value) (lang.Value, *lang.Error) {
	switch op {
	case lang.OpAdd:
		return applyAdd(a, b)
	case lang.OpSub, lang.OpMul:
		if !a.IsNumeric() || !b.IsNumeric() {
			return lang.Undefined, typeError(op, a, b)
		}
		if a.Kind == lang.KindInt && b.Kind == lang.KindInt {
			if op == lang.OpSub {
				return checkedInt(op, int64(a.Int)-int64(b.Int))
			}
			return checkedInt(op, int64(a.Int)*int64(b.Int))
		}
		if op == lang.OpSub {
			return lang.FloatValue(a.AsFloat() - b.AsFloat()), nil
		}
		return lang.FloatValue(a.AsFloat() * b.AsFloat()), nil

	case lang.OpDiv:
		if !a.IsNumeric() || !b.IsNumeric() {
			return lang.Undefined, typeError(op, a, b)
		}
		if a.Kind == lang.KindInt && b.Kind == lang.KindInt {
			if b.Int == 0 {
				return lang.Undefined, lang.NewError(lang.IllegalArgumentError, "Division by zero", 0)
			}
			return checkedInt(op, int64(a.Int)/int64(b.Int))
		}
		if b.AsFloat() == 0 {
			return lang.Undefined, lang.NewError(lang.IllegalArgumentError, "Division by zero", 0)
		}
		return lang.FloatValue(a.AsFloat() / b.AsFloat()), nil

	case lang.OpMod:
		if a.Kind != lang.KindInt || b.Kind != lang.KindInt {
			return lang.Undefined, typeError(op, a, b)
		}
		if b.Int == 0 {
			return lang.Undefined, lang.NewError(lang.IllegalArgumentError, "Division by zero", 0)
		}
		// Go's % truncates toward zero: the result carries the dividend's sign.
		return lang.IntValue(a.Int % b.Int), nil

	case lang.OpGreater, lang.OpLess, lang.OpGreaterEq, lang.OpLessEq:
		if !a.IsNumeric() || !b.IsNumeric() {
			return lang.Undefined, typeError(op, a, b)
		}
		var res bool
		if a.Kind == lang.KindInt && b.Kind == lang.KindInt {
			switch op {
			case lang.OpGreater:
				res = a.Int > b.Int
			case lang.OpLess:
				res = a.Int < b.Int
			case lang.OpGreaterEq:
				res = a.Int >= b.Int
			default:
				res = a.Int <= b.Int
			}
		} else {
			af, bf := a.AsFloat(), b.AsFloat()
			switch op {
			case lang.OpGreater:
				res = af > bf
			case lang.OpLess:
				res = af < bf
			case lang.OpGreaterEq:
				res = af >= bf
			default:
				res = af <= bf
			}
		}
		return lang.BoolValue(res), nil

	case lang.OpEq:
		return lang.BoolValue(a.Equal(b)), nil
	case lang.OpNotEq:
		return lang.BoolValue(!a.Equal(b)), nil

	case lang.OpAnd, lang.OpOr:
		if a.Kind != lang.KindBool || b.Kind != lang.KindBool {
			return lang.Undefined, typeError(op, a, b)
		}
		if op == lang.OpAnd {
			return lang.BoolValue(a.Bool && b.Bool), nil
		}
		return lang.BoolValue(a.Bool || b.Bool), nil

	case lang.OpIndex:
		if a.Kind != lang.KindArray || b.Kind != lang.KindInt {
			return lang.Undefined, typeError(op, a, b)
		}
		if b.Int < 0 || int(b.Int) >= len(a.Array) {
			return lang.Undefined, lang.NewError(lang.IllegalArgumentError, "Array index out of bounds", 0)
		}
		return a.Array[b.Int], nil
	}
	return lang.Undefined, typeError(op, a, b)
}

// applyAdd handles the overloaded '+': numeric addition with promotion,
// char pairing, and array concatenation.
func applyAdd(a, b lang.Value) (lang.Value, *lang.Error) {
	switch {
	case a.IsNumeric() && b.IsNumeric():
		if a.Kind == lang.KindInt && b.Kind == lang.KindInt {
			return checkedInt(lang.OpAdd, int64(a.Int)+int64(b.Int))
		}
		return lang.FloatValue(a.AsFloat() + b.AsFloat()), nil

	case a.Kind == lang.KindArray && b.Kind == lang.KindArray:
		out := make([]lang.Value, 0, len(a.Array)+len(b.Array))
		out = append(out, a.Array...)
		out = append(out, b.Array...)
		return lang.ArrayValue(out), nil

	case a.Kind == lang.KindArray:
		out := make([]lang.Value, 0, len(a.Array)+1)
		out = append(out, a.Array...)
		out = append(out, b)
		return lang.ArrayValue(out), nil

	case a.Kind == lang.KindChar && b.Kind == lang.KindArray:
		out := make([]lang.Value, 0, len(b.Array)+1)
		out = append(out, a)
		out = append(out, b.Array...)
		return lang.ArrayValue(out), nil

	case a.Kind == lang.KindChar && b.Kind == lang.KindChar:
		return lang.ArrayValue([]lang.Value{a, b}), nil
	}
	return lang.Undefined, typeError(lang.OpAdd, a, b)
}
