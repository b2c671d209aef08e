package lang

import (
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindChar
	KindArray
	KindUndefined
)

var kindNames = map[Kind]string{
	KindInt:       "Int",
	KindFloat:     "Float",
	KindBool:      "Bool",
	KindChar:      "Char",
	KindArray:     "Array",
	KindUndefined: "Undefined",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a tagged variant over the runtime types of the language.
// Only the field selected by Kind is meaningful.
type Value struct {
	Kind  Kind    `cbor:"k"`
	Int   int32   `cbor:"i,omitempty"`
	Float float32 `cbor:"f,omitempty"`
	Bool  bool    `cbor:"b,omitempty"`
	Char  rune    `cbor:"c,omitempty"`
	Array []Value `cbor:"a,omitempty"`
}

// Undefined is the unique undefined sentinel.
var Undefined = Value{Kind: KindUndefined}

func IntValue(i int32) Value { return Value{Kind: KindInt, Int: i} }

func FloatValue(f float32) Value { return Value{Kind: KindFloat, Float: f} }

func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

func CharValue(c rune) Value { return Value{Kind: KindChar, Char: c} }

func ArrayValue(vs []Value) Value { return Value{Kind: KindArray, Array: vs} }

// IsNumeric reports whether v is an int or a float.
func (v Value) IsNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

// AsFloat promotes a numeric value to float32.
func (v Value) AsFloat() float32 {
	if v.Kind == KindInt {
		return float32(v.Int)
	}
	return v.Float
}

// Clone returns a deep copy of v. Arrays are copied element by element so
// the copy shares no storage with the original.
func (v Value) Clone() Value {
	if v.Kind != KindArray {
		return v
	}
	arr := make([]Value, len(v.Array))
	for i, e := range v.Array {
		arr[i] = e.Clone()
	}
	return ArrayValue(arr)
}

// Equal reports structural equality. Mixed int/float comparisons promote to
// float; UNDEFINED equals UNDEFINED; values of incompatible kinds are unequal.
func (v Value) Equal(o Value) bool {
	if v.IsNumeric() && o.IsNumeric() {
		if v.Kind == KindInt && o.Kind == KindInt {
			return v.Int == o.Int
		}
		return v.AsFloat() == o.AsFloat()
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.Bool == o.Bool
	case KindChar:
		return v.Char == o.Char
	case KindUndefined:
		return true
	case KindArray:
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String returns the printable form of v: integers and floats in decimal
// (floats always carry a decimal point), TRUE/FALSE, bare character glyphs,
// [v1, v2, ...] for arrays, and UNDEFINED.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case KindFloat:
		s := strconv.FormatFloat(float64(v.Float), 'f', -1, 32)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case KindBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case KindChar:
		return string(v.Char)
	case KindArray:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range v.Array {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.String())
		}
		sb.WriteByte(']')
		return sb.String()
	default:
		return "UNDEFINED"
	}
}
