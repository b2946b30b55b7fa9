package decode

import (
	"fmt"
	"strings"
	"testing"
)

// Captured-shape fixtures. Offsets mirror what the backend sends.
const (
	selfSlotJSON = `[[], [null, [null, "-122.0840575", "37.4219999"], "1700000000000", "5", "123 Main St", null, "US"]]`

	adaEntryJSON = `[
		["uid-ada", "https://example.com/ada.png", null, "Ada Lovelace"],
		[null, [null, "-0.1276", "51.5072"], "1700000060000", "12", "10 Downing St", null, "GB"],
		null, null, null, null,
		[null, null, null, "Ada"],
		null, null, null, null, null, null,
		["1", "87"]
	]`

	graceEntryJSON = `[
		["uid-grace", "https://example.com/grace.png", null, "Grace Hopper"],
		[null, [null, 139.6917, 35.6895], 1700000120000, "30", "Shinjuku", null, "JP"],
		null, null, null, null,
		[],
		null, null, null, null, null, null,
		["0"]
	]`
)

// topJSON assembles a ten-element top-level payload.
func topJSON(shared []string, session, self string) string {
	return fmt.Sprintf(`[[%s], null, null, null, null, null, %s, null, null, %s]`,
		strings.Join(shared, ","), session, self)
}

func mustParse(t *testing.T, data, path string) View {
	t.Helper()
	v, err := Parse([]byte(data), path)
	if err != nil {
		t.Fatalf("Parse(%s) failed: %v", path, err)
	}
	return v
}
