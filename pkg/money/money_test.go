package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRound1HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2.25", "2.3"},
		{"2.24", "2.2"},
		{"-2.25", "-2.3"},
		{"0.05", "0.1"},
		{"15.0", "15"},
	}
	for _, tt := range tests {
		in := decimal.RequireFromString(tt.in)
		if got := Round1(in).String(); got != tt.want {
			t.Errorf("Round1(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSumBeforeRounding(t *testing.T) {
	// Summing pre-rounded values would give 0.4*3 = 1.2;
	// summing full precision gives 0.35*3 = 1.05 -> 1.1 after one rounding.
	a := decimal.RequireFromString("0.35")
	total := Sum(a, a, a)
	if got := Rounded1(total); got != 1.1 {
		t.Fatalf("Rounded1(Sum) = %v, want 1.1", got)
	}
}
