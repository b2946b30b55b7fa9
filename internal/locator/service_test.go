package locator

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"locshare/internal/decode"
	"locshare/internal/infra"
	"locshare/internal/registry"
)

func TestStateless_FetchesOnEveryLookup(t *testing.T) {
	f := newFakeFetcher(step{body: okPayload})
	loc := NewStateless(f)
	ctx := context.Background()

	people, err := loc.AllPeople(ctx)
	if err != nil {
		t.Fatalf("AllPeople failed: %v", err)
	}
	if len(people) != 3 {
		t.Fatalf("AllPeople returned %d records, want 3", len(people))
	}
	if people[0].ID != "" || people[0].Latitude != "37.4219999" {
		t.Errorf("first record should be the authenticated account, got %+v", people[0])
	}
	if people[1].NickName != "Ada" || people[2].FullName != "Grace Hopper" {
		t.Errorf("shared order not preserved: %q, %q", people[1].NickName, people[2].FullName)
	}

	if _, err := loc.PersonByFullName(ctx, "Grace Hopper"); err != nil {
		t.Errorf("PersonByFullName failed: %v", err)
	}
	if f.Calls() != 2 {
		t.Errorf("fetch calls = %d, want 2", f.Calls())
	}
	if loc.Registry() != nil {
		t.Error("stateless locator should have no registry")
	}
}

func TestStateful_ServesFromRegistry(t *testing.T) {
	f := newFakeFetcher(step{body: okPayload})
	loc := NewStateful(f, registry.New())
	ctx := context.Background()

	// First lookup on an empty registry triggers one refresh.
	lat, lon, err := loc.CoordinatesByNickname(ctx, "Ada")
	if err != nil {
		t.Fatalf("CoordinatesByNickname failed: %v", err)
	}
	if lat != "51.5072" || lon != "-0.1276" {
		t.Errorf("coordinates = %s,%s", lat, lon)
	}

	lat, lon, err = loc.CoordinatesByFullName(ctx, "Grace Hopper")
	if err != nil {
		t.Fatalf("CoordinatesByFullName failed: %v", err)
	}
	if lat != "35.6895" || lon != "139.6917" {
		t.Errorf("numeric coordinates not kept as text: %s,%s", lat, lon)
	}

	lat, lon, err = loc.CoordinatesOfAuthenticatedPerson(ctx)
	if err != nil || lat != "37.4219999" || lon != "-122.0840575" {
		t.Errorf("self coordinates = %s,%s,%v", lat, lon, err)
	}

	if f.Calls() != 1 {
		t.Errorf("fetch calls = %d, want 1", f.Calls())
	}
}

func TestLookup_NotFound(t *testing.T) {
	loc := NewStateful(newFakeFetcher(step{body: payload(`"CgIIAQ=="`, "null", adaEntry)}), registry.New())
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"unknown nickname", func() error { _, err := loc.PersonByNickname(ctx, "Bob"); return err }},
		{"empty nickname", func() error { _, err := loc.PersonByNickname(ctx, ""); return err }},
		{"unknown full name", func() error { _, _, err := loc.CoordinatesByFullName(ctx, "Bob Builder"); return err }},
		{"no self slot", func() error { _, err := loc.AuthenticatedPerson(ctx); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrPersonNotFound) {
				t.Errorf("error = %v, want ErrPersonNotFound", err)
			}
		})
	}
}

func TestRefresh_FailureKeepsRegistry(t *testing.T) {
	reg := registry.New()
	f := newFakeFetcher(step{body: okPayload}, step{body: brokenPayload}, step{body: expiredPayload})
	loc := NewStateful(f, reg)
	ctx := context.Background()

	if _, err := loc.Refresh(ctx); err != nil {
		t.Fatalf("first Refresh failed: %v", err)
	}
	before := reg.Snapshot()

	_, err := loc.Refresh(ctx)
	var se *decode.StructuralError
	if !errors.As(err, &se) || se.Path != "data[0][0]" || se.Expected != 14 || se.Actual != 2 {
		t.Fatalf("second Refresh = %v, want structural error at data[0][0]", err)
	}

	if _, err := loc.Refresh(ctx); !errors.Is(err, decode.ErrSessionExpired) {
		t.Fatalf("third Refresh = %v, want ErrSessionExpired", err)
	}

	if diff := cmp.Diff(before, reg.Snapshot()); diff != "" {
		t.Errorf("registry changed after failed refreshes (-before +after):\n%s", diff)
	}
}

func TestRefreshPayload_ReturnsBodyOnDecodeFailure(t *testing.T) {
	loc := NewStateless(newFakeFetcher(step{body: brokenPayload}))

	_, body, err := loc.RefreshPayload(context.Background())
	if err == nil {
		t.Fatal("expected decode error")
	}
	if string(body) != brokenPayload {
		t.Errorf("body not returned on decode failure")
	}
}

func TestCheckSession(t *testing.T) {
	tests := []struct {
		name    string
		step    step
		wantErr error
	}{
		{"authenticated", step{body: okPayload}, nil},
		{"expired", step{body: expiredPayload}, decode.ErrSessionExpired},
		{"short top", step{body: "[1, 2]"}, decode.ErrAuthFieldMissing},
		{"html page", step{body: "<html>sign in</html>"}, decode.ErrNoArrayFound},
		{"transport", step{err: infra.ErrCircuitOpen}, infra.ErrCircuitOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewStateless(newFakeFetcher(tt.step)).CheckSession(context.Background())
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("CheckSession = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckSession = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{context.Canceled, "canceled"},
		{infra.ErrCircuitOpen, "circuit_open"},
		{&infra.StatusError{StatusCode: 500}, "http_status"},
		{decode.ErrSessionExpired, "session_expired"},
		{&decode.StructuralError{Path: "entry", Expected: 14, Actual: 3}, "too_short"},
		{errors.New("dial tcp: connection refused"), "transport"},
	}

	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
