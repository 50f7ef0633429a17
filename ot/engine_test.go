package ot

import "testing"

func TestJupiterEngine_NoConcurrentOps(t *testing.T) {
	e := &JupiterEngine{}
	op := NewInsert(2, "x", "u1", 100, 0)

	out, err := e.TransformIncoming(op, 0, nil)
	if err != nil {
		t.Fatalf("TransformIncoming: %v", err)
	}
	if !Equals(out, op) {
		t.Errorf("got %v, want the operation unchanged", out)
	}
}

func TestJupiterEngine_TransformsPastUnseenOps(t *testing.T) {
	// Server applied an insert at 0 the client never saw; the client's
	// insert at 5 (end of "hello") must land at the shifted end.
	history := []Op{NewInsert(0, "X", "u1", 1, 0)}
	client := NewInsert(5, "Y", "u2", 2, 0)

	e := &JupiterEngine{}
	out, err := e.TransformIncoming(client, 0, history)
	if err != nil {
		t.Fatalf("TransformIncoming: %v", err)
	}
	if out.Pos() != 6 {
		t.Errorf("position = %d, want 6", out.Pos())
	}
	if got := Apply("Xhello", out); got != "XhelloY" {
		t.Errorf("applied = %q, want %q", got, "XhelloY")
	}
}

func TestJupiterEngine_SkipsSeenOps(t *testing.T) {
	history := []Op{
		NewInsert(0, "X", "u1", 1, 0),
		NewInsert(0, "Z", "u1", 2, 1),
	}
	client := NewInsert(5, "Y", "u2", 3, 1)

	// Client created the op at revision 1, so only history[1] applies.
	e := &JupiterEngine{}
	out, err := e.TransformIncoming(client, 1, history)
	if err != nil {
		t.Fatalf("TransformIncoming: %v", err)
	}
	if out.Pos() != 6 {
		t.Errorf("position = %d, want 6", out.Pos())
	}
}

func TestJupiterEngine_InvalidRevision(t *testing.T) {
	e := &JupiterEngine{}
	op := NewInsert(0, "x", "u1", 100, 0)

	if _, err := e.TransformIncoming(op, -1, nil); err == nil {
		t.Error("negative revision accepted")
	}
	if _, err := e.TransformIncoming(op, 2, []Op{op}); err == nil {
		t.Error("future revision accepted")
	}
}
