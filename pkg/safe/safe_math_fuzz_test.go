package safe

import (
	"math/big"
	"testing"
)

// FuzzAdd checks Add against arbitrary-precision arithmetic.
func FuzzAdd(f *testing.F) {
	f.Add(int64(0), int64(0))
	f.Add(int64(1), int64(2))
	f.Add(int64(-1), int64(1))
	f.Add(int64(9223372036854775807), int64(1))   // MaxInt64
	f.Add(int64(-9223372036854775808), int64(-1)) // MinInt64

	f.Fuzz(func(t *testing.T, a, b int64) {
		got, ok := Add(a, b)
		want := new(big.Int).Add(big.NewInt(a), big.NewInt(b))
		if ok != want.IsInt64() {
			t.Fatalf("Add(%d, %d) ok = %v, exact = %s", a, b, ok, want)
		}
		if ok && got != want.Int64() {
			t.Fatalf("Add(%d, %d) = %d, want %s", a, b, got, want)
		}
	})
}

// FuzzSub checks Sub against arbitrary-precision arithmetic.
func FuzzSub(f *testing.F) {
	f.Add(int64(0), int64(0))
	f.Add(int64(10), int64(5))
	f.Add(int64(-9223372036854775808), int64(1))

	f.Fuzz(func(t *testing.T, a, b int64) {
		got, ok := Sub(a, b)
		want := new(big.Int).Sub(big.NewInt(a), big.NewInt(b))
		if ok != want.IsInt64() || (ok && got != want.Int64()) {
			t.Fatalf("Sub(%d, %d) = %d, %v; exact = %s", a, b, got, ok, want)
		}
	})
}

// FuzzMul checks Mul against arbitrary-precision arithmetic.
func FuzzMul(f *testing.F) {
	f.Add(int64(0), int64(0))
	f.Add(int64(2), int64(3))
	f.Add(int64(-2), int64(3))
	f.Add(int64(-9223372036854775808), int64(-1))
	f.Add(int64(4611686018427387904), int64(2))

	f.Fuzz(func(t *testing.T, a, b int64) {
		got, ok := Mul(a, b)
		want := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
		if ok != want.IsInt64() || (ok && got != want.Int64()) {
			t.Fatalf("Mul(%d, %d) = %d, %v; exact = %s", a, b, got, ok, want)
		}
	})
}
