package locator

import (
	"context"
	"errors"
	"fmt"

	"locshare/internal/decode"
	"locshare/internal/domain"
	"locshare/internal/infra"
	"locshare/internal/registry"
)

// ErrPersonNotFound is returned when no record matches a lookup.
var ErrPersonNotFound = errors.New("person not found")

// Fetcher returns one raw location payload. *infra.LocationClient implements it.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Locator runs the fetch/decode pipeline and answers lookups.
//
// A stateless locator fetches on every call. A stateful one keeps the last
// complete decode in a Registry and answers lookups from it; the registry is
// only written after a decode succeeded, so failures keep the last-known-good data.
type Locator struct {
	fetcher Fetcher
	reg     *registry.Registry
}

// NewStateless returns a locator that fetches on every lookup.
func NewStateless(f Fetcher) *Locator {
	return &Locator{fetcher: f}
}

// NewStateful returns a locator backed by reg.
func NewStateful(f Fetcher, reg *registry.Registry) *Locator {
	return &Locator{fetcher: f, reg: reg}
}

// Stateful reports whether the locator keeps a registry.
func (l *Locator) Stateful() bool {
	return l.reg != nil
}

// Registry returns the backing registry, or nil for a stateless locator.
func (l *Locator) Registry() *registry.Registry {
	return l.reg
}

// Refresh fetches and decodes one payload. On a stateful locator the
// registry is replaced as a whole, and only when decoding succeeded.
func (l *Locator) Refresh(ctx context.Context) (decode.Result, error) {
	res, _, err := l.RefreshPayload(ctx)
	return res, err
}

// RefreshPayload is Refresh that also returns the raw body, when one was
// received, even if decoding it failed.
func (l *Locator) RefreshPayload(ctx context.Context) (decode.Result, []byte, error) {
	body, err := l.fetcher.Fetch(ctx)
	if err != nil {
		return decode.Result{}, nil, fmt.Errorf("fetch: %w", err)
	}

	res, err := decode.DecodePayload(body)
	if err != nil {
		return decode.Result{}, body, fmt.Errorf("decode: %w", err)
	}

	if l.reg != nil {
		l.reg.Replace(res.Self, res.Shared)
	}
	return res, body, nil
}

// CheckSession fetches a payload and runs only the session check.
// It returns nil when the cookies still authenticate.
func (l *Locator) CheckSession(ctx context.Context) error {
	body, err := l.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	raw, err := decode.Extract(string(body))
	if err != nil {
		return err
	}
	top, err := decode.Parse([]byte(raw), decode.RootPath)
	if err != nil {
		return err
	}
	return decode.ValidateSession(top)
}

// current returns the data lookups operate on. A stateful locator that has
// never been populated refreshes once.
func (l *Locator) current(ctx context.Context) (decode.Result, error) {
	if l.reg == nil {
		return l.Refresh(ctx)
	}
	if l.reg.UpdatedAt().IsZero() {
		return l.Refresh(ctx)
	}

	snap := l.reg.Snapshot()
	return decode.Result{Self: snap.Self, Shared: snap.Shared}, nil
}

// AllPeople returns the authenticated account (if present) followed by every
// account sharing with it.
func (l *Locator) AllPeople(ctx context.Context) ([]domain.SharedRecord, error) {
	res, err := l.current(ctx)
	if err != nil {
		return nil, err
	}
	return res.People(), nil
}

// SharedPeople returns only the accounts sharing with the authenticated one.
func (l *Locator) SharedPeople(ctx context.Context) ([]domain.SharedRecord, error) {
	res, err := l.current(ctx)
	if err != nil {
		return nil, err
	}
	return res.Shared, nil
}

// PersonByNickname looks up a shared account by nickname.
func (l *Locator) PersonByNickname(ctx context.Context, name string) (domain.SharedRecord, error) {
	res, err := l.current(ctx)
	if err != nil {
		return domain.SharedRecord{}, err
	}
	rec, ok := domain.FindByNickname(res.Shared, name)
	if !ok {
		return domain.SharedRecord{}, fmt.Errorf("%w: nickname %q", ErrPersonNotFound, name)
	}
	return rec, nil
}

// PersonByFullName looks up a shared account by full name.
func (l *Locator) PersonByFullName(ctx context.Context, name string) (domain.SharedRecord, error) {
	res, err := l.current(ctx)
	if err != nil {
		return domain.SharedRecord{}, err
	}
	rec, ok := domain.FindByFullName(res.Shared, name)
	if !ok {
		return domain.SharedRecord{}, fmt.Errorf("%w: full name %q", ErrPersonNotFound, name)
	}
	return rec, nil
}

// AuthenticatedPerson returns the authenticated account's own record.
func (l *Locator) AuthenticatedPerson(ctx context.Context) (domain.SelfRecord, error) {
	res, err := l.current(ctx)
	if err != nil {
		return domain.SelfRecord{}, err
	}
	if res.Self == nil {
		return domain.SelfRecord{}, fmt.Errorf("%w: authenticated account", ErrPersonNotFound)
	}
	return *res.Self, nil
}

// CoordinatesByNickname returns latitude and longitude as received.
func (l *Locator) CoordinatesByNickname(ctx context.Context, name string) (lat, lon string, err error) {
	rec, err := l.PersonByNickname(ctx, name)
	if err != nil {
		return "", "", err
	}
	lat, lon = rec.Coordinates()
	return lat, lon, nil
}

// CoordinatesByFullName returns latitude and longitude as received.
func (l *Locator) CoordinatesByFullName(ctx context.Context, name string) (lat, lon string, err error) {
	rec, err := l.PersonByFullName(ctx, name)
	if err != nil {
		return "", "", err
	}
	lat, lon = rec.Coordinates()
	return lat, lon, nil
}

// CoordinatesOfAuthenticatedPerson returns the authenticated account's latitude and longitude.
func (l *Locator) CoordinatesOfAuthenticatedPerson(ctx context.Context) (lat, lon string, err error) {
	rec, err := l.AuthenticatedPerson(ctx)
	if err != nil {
		return "", "", err
	}
	lat, lon = rec.Coordinates()
	return lat, lon, nil
}

// ErrorKind labels a Refresh error for metrics and events.
// Decode failures use decode.Kind; transport failures get their own labels.
func ErrorKind(err error) string {
	var se *infra.StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, infra.ErrCircuitOpen):
		return "circuit_open"
	case errors.As(err, &se):
		return "http_status"
	}
	if kind := decode.Kind(err); kind != "other" {
		return kind
	}
	return "transport"
}
