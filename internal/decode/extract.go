package decode

import "strings"

// Extract isolates the JSON array inside a raw response body.
// The backend prefixes the payload with a non-JSON guard line, so this keeps
// everything from the first '[' to the last ']' inclusive. It does not check
// that the result parses.
func Extract(body string) (string, error) {
	start := strings.IndexByte(body, '[')
	if start < 0 {
		return "", ErrNoArrayFound
	}
	end := strings.LastIndexByte(body, ']')
	if end < start {
		return "", ErrNoArrayFound
	}
	return body[start : end+1], nil
}
