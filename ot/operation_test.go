package ot

import (
	"errors"
	"testing"

	"github.com/alimasry/go-collab-vcs/errs"
)

func TestApply_InsertDelete(t *testing.T) {
	doc := Apply("Hello", NewInsert(5, " World", "u1", 100, 0))
	if doc != "Hello World" {
		t.Fatalf(`insert: got %q, want "Hello World"`, doc)
	}
	doc = Apply(doc, NewDelete(5, 6, "u1", 200, 1))
	if doc != "Hello" {
		t.Fatalf(`delete: got %q, want "Hello"`, doc)
	}
}

func TestApply_Clamping(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		op   Op
		want string
	}{
		{"insert past end", "abc", NewInsert(100, "X", "u1", 0, 0), "abcX"},
		{"insert negative", "abc", NewInsert(-5, "X", "u1", 0, 0), "Xabc"},
		{"delete overlong", "abc", NewDelete(1, 100, "u1", 0, 0), "a"},
		{"delete on empty doc", "", NewDelete(0, 5, "u1", 0, 0), ""},
		{"delete zero length", "abc", NewDelete(1, 0, "u1", 0, 0), "abc"},
		{"retain untouched", "abc", NewRetain(2, "u1", 0, 0), "abc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Apply(tc.doc, tc.op); got != tc.want {
				t.Errorf("Apply(%q, %v) = %q, want %q", tc.doc, tc.op, got, tc.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		op     Op
		docLen int
		ok     bool
	}{
		{"insert in bounds", NewInsert(5, "x", "u1", 0, 0), 5, true},
		{"insert negative", NewInsert(-1, "x", "u1", 0, 0), 5, false},
		{"insert past end", NewInsert(6, "x", "u1", 0, 0), 5, false},
		{"delete fits", NewDelete(2, 3, "u1", 0, 0), 5, true},
		{"delete overflows", NewDelete(2, 4, "u1", 0, 0), 5, false},
		{"delete negative length", NewDelete(0, -1, "u1", 0, 0), 5, false},
		{"retain at end", NewRetain(5, "u1", 0, 0), 5, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.op, tc.docLen)
			if tc.ok && err != nil {
				t.Errorf("Validate(%v, %d) = %v, want nil", tc.op, tc.docLen, err)
			}
			if !tc.ok && !errors.Is(err, errs.ErrValidation) {
				t.Errorf("Validate(%v, %d) = %v, want validation error", tc.op, tc.docLen, err)
			}
		})
	}
}

func TestLength(t *testing.T) {
	if got := Length(NewInsert(0, "abc", "u1", 0, 0)); got != 3 {
		t.Errorf("insert length delta = %d, want 3", got)
	}
	if got := Length(NewDelete(0, 2, "u1", 0, 0)); got != -2 {
		t.Errorf("delete length delta = %d, want -2", got)
	}
	if got := Length(NewRetain(0, "u1", 0, 0)); got != 0 {
		t.Errorf("retain length delta = %d, want 0", got)
	}
}

func TestInvert(t *testing.T) {
	doc := "Hello World"

	ins := NewInsert(5, " there", "u1", 100, 0)
	after := Apply(doc, ins)
	if got := Apply(after, Invert(ins, doc)); got != doc {
		t.Errorf("insert undo = %q, want %q", got, doc)
	}

	del := NewDelete(5, 6, "u1", 100, 0)
	after = Apply(doc, del)
	inv := Invert(del, doc)
	if got := Apply(after, inv); got != doc {
		t.Errorf("delete undo = %q, want %q", got, doc)
	}
	if i, ok := inv.(Insert); !ok || i.Content != " World" {
		t.Errorf("delete inverse = %v, want insert of %q", inv, " World")
	}
}

func TestEquals(t *testing.T) {
	a := NewInsert(5, "x", "u1", 100, 1)
	if !Equals(a, NewInsert(5, "x", "u1", 100, 1)) {
		t.Error("identical inserts not equal")
	}
	if Equals(a, NewInsert(6, "x", "u1", 100, 1)) {
		t.Error("different positions reported equal")
	}
	if Equals(a, NewDelete(5, 1, "u1", 100, 1)) {
		t.Error("different kinds reported equal")
	}
}

func TestCompose(t *testing.T) {
	a := NewInsert(0, "a", "u1", 1, 0)
	b := NewInsert(1, "b", "u1", 2, 1)
	out := Compose(a, b)
	if len(out) != 2 || !Equals(out[0], a) || !Equals(out[1], b) {
		t.Errorf("Compose = %v, want the unmerged pair", out)
	}
}

func TestWireRoundTrip(t *testing.T) {
	ops := []Op{
		NewInsert(3, "hi", "u1", 100, 2),
		NewDelete(1, 4, "u2", 200, 3),
		NewRetain(7, "u3", 300, 4),
	}
	for _, op := range ops {
		back, err := ToWire(op).Op()
		if err != nil {
			t.Fatalf("Wire.Op(): %v", err)
		}
		if !Equals(op, back) {
			t.Errorf("round trip changed %v into %v", op, back)
		}
	}

	if _, err := (Wire{Type: "move"}).Op(); err == nil {
		t.Error("unknown wire type accepted")
	}
}
