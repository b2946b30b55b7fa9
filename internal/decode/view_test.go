package decode

import (
	"errors"
	"testing"
)

func TestView_IsAbsent(t *testing.T) {
	v := mustParse(t, `[null, [], {}, "", "x", 0, [null], {"a": 1}, false]`, "data")

	want := []bool{true, true, true, true, false, false, false, false, false}
	for i, w := range want {
		if got := v.Index(i).IsAbsent(); got != w {
			t.Errorf("data[%d].IsAbsent() = %v, want %v", i, got, w)
		}
	}

	// Out of range is absent too.
	if !v.Index(42).IsAbsent() {
		t.Error("out-of-range element should be absent")
	}
}

func TestView_At(t *testing.T) {
	v := mustParse(t, `[[1, [2, 3]], "leaf"]`, "data")

	inner, ok := v.At(0)
	if !ok || inner.Path() != "data[0]" {
		t.Fatalf("At(0) = %q, %v", inner.Path(), ok)
	}
	deep, ok := inner.Index(1).At(1)
	if !ok || deep.Text() != "3" || deep.Path() != "data[0][1][1]" {
		t.Errorf("deep = %q at %q, %v", deep.Text(), deep.Path(), ok)
	}

	if _, ok := v.At(-1); ok {
		t.Error("negative index should not resolve")
	}
	if _, ok := v.At(2); ok {
		t.Error("index past end should not resolve")
	}
	leaf := v.Index(1)
	if child, ok := leaf.At(0); ok {
		t.Error("indexing a string should not resolve")
	} else if child.Path() != "data[1][0]" {
		t.Errorf("missing child should keep its path, got %q", child.Path())
	}
}

func TestView_RequireMinLen(t *testing.T) {
	v := mustParse(t, `[[1, 2], "s"]`, "data")

	if err := v.Index(0).RequireMinLen(2); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := v.Index(0).RequireMinLen(3)
	var se *StructuralError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StructuralError, got %v", err)
	}
	if se.Path != "data[0]" || se.Expected != 3 || se.Actual != 2 || se.NotArray {
		t.Errorf("unexpected error fields: %+v", se)
	}
	if err.Error() != "data[0]: too short: expected at least 3 elements, got 2" {
		t.Errorf("unexpected message: %s", err)
	}

	err = v.Index(1).RequireMinLen(1)
	if !errors.As(err, &se) || !se.NotArray || se.Path != "data[1]" {
		t.Errorf("expected non-array error at data[1], got %v", err)
	}
}

func TestView_TextKeepsNumberNotation(t *testing.T) {
	v := mustParse(t, `["35.689500000000000001", 35.689500000000000001, 1e3, true, null, [1]]`, "data")

	want := []string{"35.689500000000000001", "35.689500000000000001", "1e3", "true", "", ""}
	for i, w := range want {
		if got := v.Index(i).Text(); got != w {
			t.Errorf("data[%d].Text() = %q, want %q", i, got, w)
		}
	}
	if _, ok := v.Index(1).AsString(); ok {
		t.Error("a number is not a JSON string")
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "[1,", "[1] [2]", "{"} {
		if _, err := Parse([]byte(in), "data"); !errors.Is(err, ErrInvalidJSON) {
			t.Errorf("Parse(%q) err = %v, want ErrInvalidJSON", in, err)
		}
	}
}
