package safe

import (
	"math"
	"testing"
)

func TestCheckedMath(t *testing.T) {
	tests := []struct {
		name   string
		op     func(a, b int64) (int64, bool)
		a, b   int64
		want   int64
		wantOK bool
	}{
		{"Normal Add", Add, 10, 20, 30, true},
		{"Add Boundary", Add, math.MaxInt64 - 1, 1, math.MaxInt64, true},
		{"Add Overflow", Add, math.MaxInt64, 1, 0, false},
		{"Add Underflow", Add, math.MinInt64, -1, 0, false},
		{"Normal Sub", Sub, 30, 10, 20, true},
		{"Sub Underflow", Sub, math.MinInt64, 1, 0, false},
		{"Sub Overflow", Sub, math.MaxInt64, -1, 0, false},
		{"Normal Mul", Mul, 5, 6, 30, true},
		{"Mul Negative", Mul, -5, 6, -30, true},
		{"Mul Zero", Mul, 0, math.MinInt64, 0, true},
		{"Mul Overflow", Mul, math.MaxInt64/2 + 1, 2, 0, false},
		{"Mul MinInt by -1", Mul, math.MinInt64, -1, 0, false},
		{"Mul Both Negative", Mul, -3, -4, 12, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.op(tt.a, tt.b)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPow10(t *testing.T) {
	if p, ok := Pow10(0); !ok || p != 1 {
		t.Errorf("Pow10(0) = %d, %v", p, ok)
	}
	if p, ok := Pow10(6); !ok || p != 1_000_000 {
		t.Errorf("Pow10(6) = %d, %v", p, ok)
	}
	if p, ok := Pow10(18); !ok || p != 1_000_000_000_000_000_000 {
		t.Errorf("Pow10(18) = %d, %v", p, ok)
	}
	for _, n := range []int{-1, 19} {
		if _, ok := Pow10(n); ok {
			t.Errorf("Pow10(%d) should not fit int64", n)
		}
	}
}
