package domain

import (
	"time"

	"locshare/pkg/coord"
)

// Shape tells which record layout occupies an entry slot.
// The payload never declares it; the decoder infers it from whether
// the identity sub-array at offset 0 is populated.
type Shape int

const (
	ShapeSelf   Shape = iota + 1 // Authenticated account, no identity block
	ShapeShared                  // Another account sharing with us
)

func (s Shape) String() string {
	switch s {
	case ShapeSelf:
		return "SELF"
	case ShapeShared:
		return "SHARED"
	default:
		return "UNKNOWN"
	}
}

// Position holds the fields common to both record variants.
// Latitude and Longitude keep the exact decimal text received from the backend.
type Position struct {
	Latitude    string    `json:"latitude"`
	Longitude   string    `json:"longitude"`
	Timestamp   time.Time `json:"timestamp"` // Local zone of the running process
	Accuracy    string    `json:"accuracy,omitempty"`
	Address     string    `json:"address,omitempty"`
	CountryCode string    `json:"country_code,omitempty"`
}

// Coordinates returns the raw latitude/longitude pair.
func (p Position) Coordinates() (string, string) {
	return p.Latitude, p.Longitude
}

// Point parses the coordinates into a range-checked point.
func (p Position) Point() (coord.Point, error) {
	return coord.ParsePoint(p.Latitude, p.Longitude)
}

// SelfRecord is the authenticated account's own position entry.
type SelfRecord struct {
	Position
}

// SharedRecord is a position entry for an account sharing its location with us.
type SharedRecord struct {
	Position
	ID         string   `json:"id,omitempty"`
	PictureURL string   `json:"picture_url,omitempty"`
	FullName   string   `json:"full_name,omitempty"`
	NickName   string   `json:"nickname,omitempty"`
	Charging   Charging `json:"charging"`
	Battery    Battery  `json:"battery_level"`
}

// FindByNickname returns the first record whose nickname equals name.
// Nameless records never match, including for an empty name.
func FindByNickname(records []SharedRecord, name string) (SharedRecord, bool) {
	if name == "" {
		return SharedRecord{}, false
	}
	for _, r := range records {
		if r.NickName == name {
			return r, true
		}
	}
	return SharedRecord{}, false
}

// FindByFullName returns the first record whose full name equals name.
func FindByFullName(records []SharedRecord, name string) (SharedRecord, bool) {
	if name == "" {
		return SharedRecord{}, false
	}
	for _, r := range records {
		if r.FullName == name {
			return r, true
		}
	}
	return SharedRecord{}, false
}
