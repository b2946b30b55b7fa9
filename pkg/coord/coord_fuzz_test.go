package coord

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func FuzzParseMicroDegrees(f *testing.F) {
	for _, s := range []string{"0", "51.5072", "-122.0840575", "1e3", "", ".", "9223372036854.775807", "-0.0000001"} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		got, err := ParseMicroDegrees(s)
		if err != nil {
			return
		}
		d, derr := decimal.NewFromString(strings.TrimSpace(s))
		if derr != nil {
			t.Fatalf("accepted %q but decimal rejects it: %v", s, derr)
		}
		want := d.Shift(microPrecision).Truncate(0)
		if !want.Equal(decimal.NewFromInt(int64(got))) {
			t.Fatalf("ParseMicroDegrees(%q) = %d, want %s", s, got, want)
		}
	})
}
