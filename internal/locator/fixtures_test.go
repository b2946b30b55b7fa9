package locator

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

const (
	selfSlot = `[[], [null, [null, "-122.0840575", "37.4219999"], "1700000000000", "5", "123 Main St", null, "US"]]`

	adaEntry = `[
		["uid-ada", "https://example.com/ada.png", null, "Ada Lovelace"],
		[null, [null, "-0.1276", "51.5072"], "1700000060000", "12", "10 Downing St", null, "GB"],
		null, null, null, null,
		[null, null, null, "Ada"],
		null, null, null, null, null, null,
		["1", "87"]
	]`

	graceEntry = `[
		["uid-grace", "https://example.com/grace.png", null, "Grace Hopper"],
		[null, [null, 139.6917, 35.6895], 1700000120000, "30", "Shinjuku", null, "JP"],
		null, null, null, null,
		[],
		null, null, null, null, null, null,
		["0"]
	]`
)

// payload builds a response body with the anti-JSON-hijacking prefix the endpoint sends.
func payload(session, self string, shared ...string) string {
	return fmt.Sprintf(")]}'\n[[%s], null, null, null, null, null, %s, null, null, %s]",
		strings.Join(shared, ","), session, self)
}

var (
	okPayload      = payload(`"CgIIAQ=="`, selfSlot, adaEntry, graceEntry)
	expiredPayload = payload(`"GgA="`, "null")
	brokenPayload  = payload(`"CgIIAQ=="`, selfSlot, `["too", "short"]`)
)

type step struct {
	body string
	err  error
}

// fakeFetcher replays steps in order and repeats the last one.
type fakeFetcher struct {
	mu    sync.Mutex
	steps []step
	calls int
}

func newFakeFetcher(steps ...step) *fakeFetcher {
	return &fakeFetcher{steps: steps}
}

func (f *fakeFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	f.calls++

	s := f.steps[i]
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.body), nil
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
