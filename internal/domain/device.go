package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Charging is a tri-state charger flag.
type Charging int8

const (
	ChargingUnknown Charging = iota
	ChargingFalse
	ChargingTrue
)

// ParseCharging maps the backend's literal flag to a Charging value.
// Only "0" and "1" are recognised; everything else is unknown.
func ParseCharging(s string) Charging {
	switch s {
	case "0":
		return ChargingFalse
	case "1":
		return ChargingTrue
	default:
		return ChargingUnknown
	}
}

// Known reports whether the flag was reported at all.
func (c Charging) Known() bool { return c != ChargingUnknown }

// Bool returns the flag and whether it is known.
func (c Charging) Bool() (bool, bool) {
	return c == ChargingTrue, c.Known()
}

func (c Charging) String() string {
	switch c {
	case ChargingFalse:
		return "false"
	case ChargingTrue:
		return "true"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes unknown as null.
func (c Charging) MarshalJSON() ([]byte, error) {
	if !c.Known() {
		return []byte("null"), nil
	}
	return []byte(c.String()), nil
}

func (c *Charging) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "null":
		*c = ChargingUnknown
	case "true":
		*c = ChargingTrue
	case "false":
		*c = ChargingFalse
	default:
		return fmt.Errorf("invalid charging value: %s", data)
	}
	return nil
}

// Battery is an optional battery percentage.
type Battery struct {
	Level int
	Known bool
}

// BatteryLevel builds a known battery value.
func BatteryLevel(level int) Battery {
	return Battery{Level: level, Known: true}
}

func (b Battery) String() string {
	if !b.Known {
		return "unknown"
	}
	return strconv.Itoa(b.Level) + "%"
}

// MarshalJSON encodes an unknown level as null.
func (b Battery) MarshalJSON() ([]byte, error) {
	if !b.Known {
		return []byte("null"), nil
	}
	return json.Marshal(b.Level)
}

func (b *Battery) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*b = Battery{}
		return nil
	}
	var level int
	if err := json.Unmarshal(data, &level); err != nil {
		return fmt.Errorf("invalid battery level: %w", err)
	}
	*b = BatteryLevel(level)
	return nil
}
