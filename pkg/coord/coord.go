package coord

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"locshare/pkg/safe"
)

// MicroDegrees is an angle multiplied by 1,000,000 (10^6).
// E.g., 51.5072 degrees = 51,507,200 MicroDegrees (about 11cm resolution).
type MicroDegrees int64

const (
	MicroScale     = 1000000
	microPrecision = 6
)

var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrOutOfRange        = errors.New("coordinate out of range")
)

// ParseMicroDegrees converts decimal degree text to MicroDegrees without
// going through float64. Digits past the sixth decimal are truncated.
func ParseMicroDegrees(s string) (MicroDegrees, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidCoordinate)
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intStr, fracStr, _ := strings.Cut(s, ".")
	if intStr == "" && fracStr == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}
	if !allDigits(intStr) || !allDigits(fracStr) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}

	if len(fracStr) > microPrecision {
		fracStr = fracStr[:microPrecision]
	}

	var whole int64
	for _, c := range intStr {
		var ok bool
		if whole, ok = safe.Mul(whole, 10); ok {
			whole, ok = safe.Add(whole, int64(c-'0'))
		}
		if !ok {
			return 0, fmt.Errorf("%w: %q overflows", ErrInvalidCoordinate, s)
		}
	}

	var frac int64
	for _, c := range fracStr {
		frac = frac*10 + int64(c-'0')
	}
	pad, _ := safe.Pow10(microPrecision - len(fracStr))
	frac *= pad

	v, ok := safe.Mul(whole, MicroScale)
	if ok {
		v, ok = safe.Add(v, frac)
	}
	if !ok {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidCoordinate, s)
	}
	if neg {
		v = -v
	}
	return MicroDegrees(v), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (m MicroDegrees) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%06d", sign, v/MicroScale, v%MicroScale)
}

// Degrees returns the value as float64 for display or distance math.
func (m MicroDegrees) Degrees() float64 {
	return float64(m) / MicroScale
}

var (
	maxLat = decimal.NewFromInt(90)
	maxLon = decimal.NewFromInt(180)
)

// Point is a validated latitude/longitude pair with exact decimal values.
type Point struct {
	Lat decimal.Decimal
	Lon decimal.Decimal
}

// ParsePoint parses and range-checks a latitude/longitude pair as received
// from the backend.
func ParsePoint(lat, lon string) (Point, error) {
	la, err := decimal.NewFromString(strings.TrimSpace(lat))
	if err != nil {
		return Point{}, fmt.Errorf("%w: latitude %q", ErrInvalidCoordinate, lat)
	}
	lo, err := decimal.NewFromString(strings.TrimSpace(lon))
	if err != nil {
		return Point{}, fmt.Errorf("%w: longitude %q", ErrInvalidCoordinate, lon)
	}

	if la.Abs().GreaterThan(maxLat) {
		return Point{}, fmt.Errorf("%w: latitude %s", ErrOutOfRange, la)
	}
	if lo.Abs().GreaterThan(maxLon) {
		return Point{}, fmt.Errorf("%w: longitude %s", ErrOutOfRange, lo)
	}
	return Point{Lat: la, Lon: lo}, nil
}

// String renders "lat,lon" with the precision received.
func (p Point) String() string {
	return p.Lat.String() + "," + p.Lon.String()
}

// MapsURL links to the point on a web map.
func (p Point) MapsURL() string {
	return "https://www.google.com/maps?q=" + p.String()
}

// Micro converts the point to fixed-point micro-degrees, truncating extra digits.
func (p Point) Micro() (lat, lon MicroDegrees) {
	return MicroDegrees(p.Lat.Shift(microPrecision).IntPart()),
		MicroDegrees(p.Lon.Shift(microPrecision).IntPart())
}

const earthRadiusMeters = 6371008.8

// DistanceMeters returns the great-circle distance between two points.
func DistanceMeters(a, b Point) float64 {
	lat1, lon1 := radians(a.Lat), radians(a.Lon)
	lat2, lon2 := radians(b.Lat), radians(b.Lon)

	dLat := lat2 - lat1
	dLon := lon2 - lon1
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f * math.Pi / 180
}
