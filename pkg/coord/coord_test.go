package coord

import (
	"errors"
	"math"
	"testing"
)

func TestParseMicroDegrees(t *testing.T) {
	tests := []struct {
		in   string
		want MicroDegrees
	}{
		{"51.5072", 51507200},
		{"-0.1276", -127600},
		{"37.4219999", 37421999},
		{"-122.0840575", -122084057},
		{"+1.5", 1500000},
		{"180", 180000000},
		{"5.", 5000000},
		{".25", 250000},
		{" 0 ", 0},
	}
	for _, tt := range tests {
		got, err := ParseMicroDegrees(tt.in)
		if err != nil {
			t.Errorf("ParseMicroDegrees(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMicroDegrees(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseMicroDegrees_Invalid(t *testing.T) {
	for _, in := range []string{"", "-", ".", "null", "1e5", "1.2.3", "--1", "12a", "99999999999999999999"} {
		if _, err := ParseMicroDegrees(in); !errors.Is(err, ErrInvalidCoordinate) {
			t.Errorf("ParseMicroDegrees(%q) err = %v, want ErrInvalidCoordinate", in, err)
		}
	}
}

func TestMicroDegreesString(t *testing.T) {
	tests := map[MicroDegrees]string{
		51507200:   "51.507200",
		-127600:    "-0.127600",
		0:          "0.000000",
		-180000000: "-180.000000",
	}
	for in, want := range tests {
		if got := in.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int64(in), got, want)
		}
	}
}

func TestParsePoint(t *testing.T) {
	p, err := ParsePoint("51.5072", "-0.1276")
	if err != nil {
		t.Fatalf("ParsePoint failed: %v", err)
	}
	if p.String() != "51.5072,-0.1276" {
		t.Errorf("String() = %q", p.String())
	}
	if p.MapsURL() != "https://www.google.com/maps?q=51.5072,-0.1276" {
		t.Errorf("MapsURL() = %q", p.MapsURL())
	}
	lat, lon := p.Micro()
	if lat != 51507200 || lon != -127600 {
		t.Errorf("Micro() = %d,%d", lat, lon)
	}
}

func TestParsePoint_Errors(t *testing.T) {
	tests := []struct {
		lat, lon string
		want     error
	}{
		{"90.0001", "0", ErrOutOfRange},
		{"-91", "0", ErrOutOfRange},
		{"0", "180.5", ErrOutOfRange},
		{"abc", "0", ErrInvalidCoordinate},
		{"0", "", ErrInvalidCoordinate},
	}
	for _, tt := range tests {
		if _, err := ParsePoint(tt.lat, tt.lon); !errors.Is(err, tt.want) {
			t.Errorf("ParsePoint(%q, %q) err = %v, want %v", tt.lat, tt.lon, err, tt.want)
		}
	}

	if _, err := ParsePoint("90", "-180"); err != nil {
		t.Errorf("boundary point rejected: %v", err)
	}
}

func TestDistanceMeters(t *testing.T) {
	london, _ := ParsePoint("51.5072", "-0.1276")
	paris, _ := ParsePoint("48.8566", "2.3522")

	d := DistanceMeters(london, paris)
	if math.Abs(d-343_500) > 2_000 {
		t.Errorf("London-Paris = %.0fm, want about 343.5km", d)
	}
	if got := DistanceMeters(london, london); got != 0 {
		t.Errorf("self distance = %f, want 0", got)
	}
}
