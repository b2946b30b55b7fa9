package decode

import (
	"strconv"
	"strings"
	"time"

	"locshare/internal/domain"
)

// Offsets into the positional payload.
const (
	selfSlotOffset   = 9
	sharedListOffset = 0
	topMinLen        = selfSlotOffset + 1

	sharedEntryMinLen = 14
	identityOffset    = 0
	identityMinLen    = 4
	positionOffset    = 1
	positionMinLen    = 7
	coordsOffset      = 1
	coordsMinLen      = 3
	nicknameOffset    = 6
	nicknameMinLen    = 4
	deviceOffset      = 13
	deviceMinLen      = 1
)

// DetectShape inspects an entry slot and decides which layout it carries.
// A populated identity block at offset 0 means another account's entry.
func DetectShape(slot View) domain.Shape {
	if slot.Index(identityOffset).IsAbsent() {
		return domain.ShapeSelf
	}
	return domain.ShapeShared
}

// DecodeSelf decodes the authenticated account's record from a top-level payload.
func DecodeSelf(top View) (domain.SelfRecord, error) {
	if err := top.RequireMinLen(topMinLen); err != nil {
		return domain.SelfRecord{}, err
	}
	slot := top.Index(selfSlotOffset)
	if err := slot.RequireMinLen(positionOffset + 1); err != nil {
		return domain.SelfRecord{}, err
	}
	if shape := DetectShape(slot); shape != domain.ShapeSelf {
		return domain.SelfRecord{}, &DecodeError{
			Path: slot.Index(identityOffset).Path(),
			Err:  ErrAmbiguousVariant,
		}
	}

	pos, err := decodePosition(slot.Index(positionOffset))
	if err != nil {
		return domain.SelfRecord{}, err
	}
	return domain.SelfRecord{Position: pos}, nil
}

// DecodeShared decodes one entry of the shared-people list.
func DecodeShared(entry View) (domain.SharedRecord, error) {
	if err := entry.RequireMinLen(sharedEntryMinLen); err != nil {
		return domain.SharedRecord{}, err
	}

	identity := entry.Index(identityOffset)
	if DetectShape(entry) != domain.ShapeShared {
		return domain.SharedRecord{}, &DecodeError{Path: identity.Path(), Err: ErrAmbiguousVariant}
	}
	if err := identity.RequireMinLen(identityMinLen); err != nil {
		return domain.SharedRecord{}, err
	}

	pos, err := decodePosition(entry.Index(positionOffset))
	if err != nil {
		return domain.SharedRecord{}, err
	}

	rec := domain.SharedRecord{
		Position:   pos,
		ID:         identity.Index(0).Text(),
		PictureURL: identity.Index(1).Text(),
		FullName:   identity.Index(3).Text(),
	}

	// The nickname block may be missing for contacts without one.
	if names := entry.Index(nicknameOffset); !names.IsAbsent() {
		if err := names.RequireMinLen(nicknameMinLen); err != nil {
			return domain.SharedRecord{}, err
		}
		rec.NickName = names.Index(3).Text()
	}

	if device := entry.Index(deviceOffset); !device.IsAbsent() {
		if err := device.RequireMinLen(deviceMinLen); err != nil {
			return domain.SharedRecord{}, err
		}
		rec.Charging = domain.ParseCharging(device.Index(0).Text())

		// Unlike the charging flag, a malformed battery level is fatal.
		if device.Len() > 1 {
			level := device.Index(1)
			n, err := strconv.Atoi(strings.TrimSpace(level.Text()))
			if err != nil {
				return domain.SharedRecord{}, &DecodeError{
					Path:  level.Path(),
					Raw:   level.Text(),
					Err:   ErrInvalidBatteryLevel,
					Cause: err,
				}
			}
			rec.Battery = domain.BatteryLevel(n)
		}
	}

	return rec, nil
}

// decodePosition reads the position block shared by both layouts:
// [_, [_, lon, lat], timestamp, accuracy, address, _, country].
func decodePosition(block View) (domain.Position, error) {
	if err := block.RequireMinLen(positionMinLen); err != nil {
		return domain.Position{}, err
	}
	coords := block.Index(coordsOffset)
	if err := coords.RequireMinLen(coordsMinLen); err != nil {
		return domain.Position{}, err
	}

	lon, lat := coords.Index(1), coords.Index(2)
	for _, c := range []View{lat, lon} {
		if c.IsAbsent() || c.Text() == "" {
			return domain.Position{}, &DecodeError{Path: c.Path(), Err: ErrMissingCoordinates}
		}
	}

	ts, err := decodeTimestamp(block.Index(2))
	if err != nil {
		return domain.Position{}, err
	}

	return domain.Position{
		Latitude:    lat.Text(),
		Longitude:   lon.Text(),
		Timestamp:   ts,
		Accuracy:    block.Index(3).Text(),
		Address:     block.Index(4).Text(),
		CountryCode: block.Index(6).Text(),
	}, nil
}

// decodeTimestamp parses a millisecond epoch. Unparseable text counts as 0,
// and 0 is rejected rather than mapped to the epoch start.
// The result is in the process's local zone.
func decodeTimestamp(field View) (time.Time, error) {
	raw := field.Text()
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		ms = 0
	}
	if ms == 0 {
		return time.Time{}, &DecodeError{Path: field.Path(), Raw: raw, Err: ErrMissingTimestamp}
	}
	return time.UnixMilli(ms).Local(), nil
}
