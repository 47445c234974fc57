package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "comma separated string", value: "1,234", want: "1234"},
		{name: "nil", value: nil, want: "0"},
		{name: "empty string", value: "", want: "0"},
		{name: "whitespace only", value: "   ", want: "0"},
		{name: "garbage string", value: "abc", want: "0"},
		{name: "plain int", value: 42, want: "42"},
		{name: "int64", value: int64(-7), want: "-7"},
		{name: "float", value: 12.5, want: "12.5"},
		{name: "NaN", value: math.NaN(), want: "0"},
		{name: "positive infinity", value: math.Inf(1), want: "0"},
		{name: "decimal passthrough", value: decimal.NewFromInt(99), want: "99"},
		{name: "surrounding whitespace", value: "  1,000,000  ", want: "1000000"},
		{name: "negative string", value: "-300", want: "-300"},
		{name: "fractional string", value: "0.5", want: "0.5"},
		{name: "unsupported type", value: struct{}{}, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.value)

			want, err := decimal.NewFromString(tt.want)
			if err != nil {
				t.Fatalf("bad want value: %v", err)
			}

			if !got.Equal(want) {
				t.Errorf("ParseAmount(%v) = %s, want %s", tt.value, got.String(), tt.want)
			}
		})
	}
}

func TestParseAmount_NeverPanics(t *testing.T) {
	values := []any{nil, "", "NaN", "1e309", []byte("100"), map[string]int{}, -0.0}

	for _, v := range values {
		got := ParseAmount(v)
		if got.IsNegative() && !got.IsZero() && v != -0.0 {
			t.Errorf("ParseAmount(%v) produced unexpected %s", v, got.String())
		}
	}
}
