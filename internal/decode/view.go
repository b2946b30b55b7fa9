package decode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// RootPath is the breadcrumb used for a top-level payload.
const RootPath = "data"

// View is a read-only accessor over a decoded JSON node.
// Every view remembers its breadcrumb so failures can name the offset.
type View struct {
	node    any
	path    string
	present bool
}

// Parse decodes data into a view rooted at path. Numbers are kept as
// json.Number so their original text survives.
func Parse(data []byte, path string) (View, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var node any
	if err := dec.Decode(&node); err != nil {
		return View{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return View{}, fmt.Errorf("%w: trailing data after top-level value", ErrInvalidJSON)
	}
	return NewView(node, path), nil
}

// NewView wraps an already decoded node.
func NewView(node any, path string) View {
	return View{node: node, path: path, present: true}
}

// Path returns the breadcrumb of this node, e.g. "data[9][1]".
func (v View) Path() string { return v.path }

// IsArray reports whether the node is a JSON array.
func (v View) IsArray() bool {
	_, ok := v.node.([]any)
	return ok
}

// Len returns the array length, or 0 for anything that is not an array.
func (v View) Len() int {
	arr, _ := v.node.([]any)
	return len(arr)
}

// At returns the element at index i. It reports false when the node is not
// an array or i is out of range.
func (v View) At(i int) (View, bool) {
	arr, ok := v.node.([]any)
	if !ok || i < 0 || i >= len(arr) {
		return View{path: v.child(i)}, false
	}
	return View{node: arr[i], path: v.child(i), present: true}, true
}

// Index is At without the ok flag. A missing element is an absent view
// that still carries its path.
func (v View) Index(i int) View {
	child, _ := v.At(i)
	return child
}

// IsAbsent unifies the "no value" encodings of the source format:
// a missing node, null, an empty array, an empty object and an empty string.
func (v View) IsAbsent() bool {
	if !v.present {
		return true
	}
	switch n := v.node.(type) {
	case nil:
		return true
	case []any:
		return len(n) == 0
	case map[string]any:
		return len(n) == 0
	case string:
		return n == ""
	default:
		return false
	}
}

// RequireMinLen fails unless the node is an array with at least n elements.
func (v View) RequireMinLen(n int) error {
	arr, ok := v.node.([]any)
	if !ok {
		return &StructuralError{Path: v.path, Expected: n, NotArray: true}
	}
	if len(arr) < n {
		return &StructuralError{Path: v.path, Expected: n, Actual: len(arr)}
	}
	return nil
}

// AsString returns the node only when it is a JSON string.
func (v View) AsString() (string, bool) {
	s, ok := v.node.(string)
	return s, ok
}

// Text returns the scalar's text: strings verbatim, numbers in their
// original notation and booleans as "true"/"false". Absent nodes and
// containers yield "".
func (v View) Text() string {
	switch n := v.node.(type) {
	case string:
		return n
	case json.Number:
		return n.String()
	case bool:
		return strconv.FormatBool(n)
	default:
		return ""
	}
}

func (v View) child(i int) string {
	return v.path + "[" + strconv.Itoa(i) + "]"
}
