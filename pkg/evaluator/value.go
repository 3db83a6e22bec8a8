// Package evaluator implements the Pal tree-walking evaluator.
package evaluator

import (
	"math"
	"strconv"
)

// Value is the interface for all Pal runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	palValue() // sealed marker
}

// Nil is the absent value.
type Nil struct{}

func (Nil) palValue() {}

type Bool struct {
	Value bool
}

func (Bool) palValue() {}

// Number is a 64-bit float; Pal has no separate integer type.
type Number struct {
	Value float64
}

func (Number) palValue() {}

type String struct {
	Value string
}

func (String) palValue() {}

// NewNil creates a nil value.
func NewNil() Value {
	return Nil{}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Bool{Value: b}
}

// NewNumber creates a numeric value.
func NewNumber(n float64) Value {
	return Number{Value: n}
}

// NewString creates a string value.
func NewString(s string) Value {
	return String{Value: s}
}

// FromLiteral converts an AST literal payload into a value.
func FromLiteral(v any) Value {
	switch val := v.(type) {
	case bool:
		return NewBool(val)
	case float64:
		return NewNumber(val)
	case string:
		return NewString(val)
	}
	return NewNil()
}

// Truthiness returns the boolean interpretation of a Pal value.
// nil and false are falsy; everything else, 0 and "" included, is truthy.
func Truthiness(v Value) bool {
	switch val := v.(type) {
	case Nil:
		return false
	case Bool:
		return val.Value
	default:
		return true
	}
}

// Equal reports whether two values are equal. Values of different types are
// never equal, and nil equals only nil.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x.Value == y.Value
	case Number:
		y, ok := b.(Number)
		return ok && x.Value == y.Value
	case String:
		y, ok := b.(String)
		return ok && x.Value == y.Value
	}
	return false
}

// TypeName names the dynamic type of v for logs and trace data.
func TypeName(v Value) string {
	switch v.(type) {
	case Nil:
		return "nil"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	}
	return "unknown"
}

// Stringify renders a value the way print shows it.
func Stringify(v Value) string {
	switch val := v.(type) {
	case Nil:
		return "nil"
	case Bool:
		return strconv.FormatBool(val.Value)
	case Number:
		return formatNumber(val.Value)
	case String:
		return val.Value
	}
	return ""
}

// formatNumber prints the shortest decimal that round-trips, never with a
// trailing ".0". Very large and very small magnitudes switch to exponent
// notation.
func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	}
	abs := math.Abs(n)
	if n == 0 || (abs >= 1e-4 && abs < 1e16) {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'e', -1, 64)
}
