package evaluator_test

import (
	"math"
	"testing"

	"github.com/pal-lang/pal/pkg/evaluator"
)

func TestNewValues(t *testing.T) {
	values := []evaluator.Value{
		evaluator.NewNil(),
		evaluator.NewBool(true),
		evaluator.NewBool(false),
		evaluator.NewNumber(42),
		evaluator.NewNumber(3.14),
		evaluator.NewString("hello"),
	}

	for i, v := range values {
		if v == nil {
			t.Errorf("value %d: got nil", i)
		}
	}
}

func TestFromLiteral(t *testing.T) {
	tests := []struct {
		lit  any
		want evaluator.Value
	}{
		{nil, evaluator.Nil{}},
		{true, evaluator.Bool{Value: true}},
		{2.5, evaluator.Number{Value: 2.5}},
		{"s", evaluator.String{Value: "s"}},
	}
	for _, tt := range tests {
		if got := evaluator.FromLiteral(tt.lit); got != tt.want {
			t.Errorf("FromLiteral(%v) = %#v, want %#v", tt.lit, got, tt.want)
		}
	}
}

func TestTruthiness(t *testing.T) {
	tests := []struct {
		value    evaluator.Value
		expected bool
	}{
		{evaluator.NewNil(), false},
		{evaluator.NewBool(false), false},
		{evaluator.NewBool(true), true},
		{evaluator.NewNumber(0), true},
		{evaluator.NewNumber(1), true},
		{evaluator.NewNumber(-1), true},
		{evaluator.NewString(""), true},
		{evaluator.NewString("a"), true},
	}

	for _, tt := range tests {
		if got := evaluator.Truthiness(tt.value); got != tt.expected {
			t.Errorf("Truthiness(%#v) = %v, want %v", tt.value, got, tt.expected)
		}
	}
}

func TestEqual(t *testing.T) {
	n := evaluator.NewNumber
	s := evaluator.NewString
	b := evaluator.NewBool
	null := evaluator.NewNil()

	tests := []struct {
		a, b evaluator.Value
		want bool
	}{
		{null, null, true},
		{null, b(false), false},
		{null, n(0), false},
		{b(false), null, false},
		{n(1), n(1), true},
		{n(1), n(2), false},
		{s("a"), s("a"), true},
		{s("a"), s("b"), false},
		{b(true), b(true), true},
		{b(true), b(false), false},
		{n(1), s("1"), false},
		{b(true), n(1), false},
		{s(""), b(false), false},
		{n(math.NaN()), n(math.NaN()), false},
	}

	for _, tt := range tests {
		if got := evaluator.Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("Equal(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

// Non-constant so the sum rounds at run time.
var tenth, fifth = 0.1, 0.2

func TestStringify(t *testing.T) {
	tests := []struct {
		value evaluator.Value
		want  string
	}{
		{evaluator.NewNil(), "nil"},
		{evaluator.NewBool(true), "true"},
		{evaluator.NewBool(false), "false"},
		{evaluator.NewNumber(3), "3"},
		{evaluator.NewNumber(3.0), "3"},
		{evaluator.NewNumber(2.5), "2.5"},
		{evaluator.NewNumber(-7), "-7"},
		{evaluator.NewNumber(0), "0"},
		{evaluator.NewNumber(tenth + fifth), "0.30000000000000004"},
		{evaluator.NewNumber(1.0 / 3.0), "0.3333333333333333"},
		{evaluator.NewNumber(123456789), "123456789"},
		{evaluator.NewNumber(1e15), "1000000000000000"},
		{evaluator.NewNumber(1e16), "1e+16"},
		{evaluator.NewNumber(0.0001), "0.0001"},
		{evaluator.NewNumber(0.000015), "1.5e-05"},
		{evaluator.NewNumber(math.Inf(1)), "inf"},
		{evaluator.NewNumber(math.Inf(-1)), "-inf"},
		{evaluator.NewNumber(math.NaN()), "nan"},
		{evaluator.NewString("hello"), "hello"},
		{evaluator.NewString(""), ""},
	}

	for _, tt := range tests {
		if got := evaluator.Stringify(tt.value); got != tt.want {
			t.Errorf("Stringify(%#v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestTypeName(t *testing.T) {
	tests := map[string]evaluator.Value{
		"nil":    evaluator.NewNil(),
		"bool":   evaluator.NewBool(true),
		"number": evaluator.NewNumber(1),
		"string": evaluator.NewString("x"),
	}
	for want, v := range tests {
		if got := evaluator.TypeName(v); got != want {
			t.Errorf("TypeName(%#v) = %q, want %q", v, got, want)
		}
	}
}
