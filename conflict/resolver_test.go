package conflict

import (
	"errors"
	"testing"

	"github.com/alimasry/go-collab-vcs/errs"
	"github.com/alimasry/go-collab-vcs/ot"
)

func TestDetect_ConcurrentInserts(t *testing.T) {
	r := NewResolver()
	ops := []ot.Op{
		ot.NewInsert(5, "A", "u1", 100, 0),
		ot.NewInsert(5, "B", "u2", 200, 0),
	}

	found := r.Detect(ops)
	if len(found) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(found))
	}
	c := found[0]
	if c.Type != ConcurrentEdit {
		t.Errorf("type = %q, want concurrent_edit", c.Type)
	}
	if c.Position != 5 {
		t.Errorf("position = %d, want 5", c.Position)
	}
	if c.Resolved {
		t.Error("freshly detected conflict marked resolved")
	}
}

func TestDetect_SameUserSkipped(t *testing.T) {
	r := NewResolver()
	ops := []ot.Op{
		ot.NewInsert(5, "A", "u1", 100, 0),
		ot.NewInsert(5, "B", "u1", 200, 0),
	}
	if found := r.Detect(ops); len(found) != 0 {
		t.Errorf("same-user pair produced %d conflicts", len(found))
	}
}

func TestDetect_DistantOpsNoConflict(t *testing.T) {
	r := NewResolver()
	ops := []ot.Op{
		ot.NewInsert(0, "A", "u1", 100, 0),
		ot.NewInsert(50, "B", "u2", 200, 0),
		ot.NewDelete(10, 3, "u3", 300, 0),
	}
	if found := r.Detect(ops); len(found) != 0 {
		t.Errorf("disjoint operations produced %d conflicts", len(found))
	}
}

func TestDetect_OverlappingDeletes(t *testing.T) {
	r := NewResolver()
	ops := []ot.Op{
		ot.NewDelete(3, 5, "u1", 100, 0),
		ot.NewDelete(6, 4, "u2", 200, 0),
	}

	found := r.Detect(ops)
	if len(found) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(found))
	}
	if found[0].Type != ConcurrentEdit {
		t.Errorf("type = %q, want concurrent_edit", found[0].Type)
	}
	if found[0].Position != 6 {
		t.Errorf("position = %d, want the later start 6", found[0].Position)
	}
}

func TestDetect_InsertInsideDelete(t *testing.T) {
	r := NewResolver()
	del := ot.NewDelete(5, 4, "u1", 100, 0)
	ins := ot.NewInsert(7, "X", "u2", 200, 0)

	found := r.Detect([]ot.Op{del, ins})
	if len(found) != 1 || found[0].Type != DeleteEdit {
		t.Fatalf("(delete, insert) = %+v, want one delete_edit", found)
	}

	found = NewResolver().Detect([]ot.Op{ins, del})
	if len(found) != 1 || found[0].Type != EditDelete {
		t.Fatalf("(insert, delete) = %+v, want one edit_delete", found)
	}
}

func TestDetect_SamePositionDeleteInsert(t *testing.T) {
	r := NewResolver()
	found := r.Detect([]ot.Op{
		ot.NewDelete(4, 2, "u1", 100, 0),
		ot.NewInsert(4, "X", "u2", 200, 0),
	})
	if len(found) != 1 || found[0].Type != DeleteEdit {
		t.Fatalf("got %+v, want one delete_edit", found)
	}
}

func TestResolve_MergesConcurrentInserts(t *testing.T) {
	r := NewResolver()
	a := ot.NewInsert(5, "A", "u1", 100, 0)
	b := ot.NewInsert(5, "B", "u2", 200, 0)

	c, ok := r.Resolve(a, b)
	if !ok {
		t.Fatal("Resolve reported no conflict")
	}
	if !c.Resolved || c.Resolution != Merge {
		t.Errorf("resolution = %+v", c)
	}
	merged, isIns := c.ResolvedOp.(ot.Insert)
	if !isIns {
		t.Fatalf("resolved op = %v, want an insert", c.ResolvedOp)
	}
	if merged.Content != "AB" {
		t.Errorf("merged content = %q, want timestamp order AB", merged.Content)
	}
	if merged.Position != 5 || merged.UserID != "u1" {
		t.Errorf("merged op = %+v", merged)
	}
}

func TestResolve_TimestampOrder(t *testing.T) {
	r := NewResolver()
	a := ot.NewInsert(5, "A", "u1", 300, 0)
	b := ot.NewInsert(5, "B", "u2", 200, 0)

	c, _ := r.Resolve(a, b)
	merged := c.ResolvedOp.(ot.Insert)
	if merged.Content != "BA" {
		t.Errorf("merged content = %q, want BA (earlier timestamp first)", merged.Content)
	}
	if merged.UserID != "u2" {
		t.Errorf("merged author = %q, want the earlier u2", merged.UserID)
	}
}

func TestResolve_DeleteEditPicksFirstOperand(t *testing.T) {
	r := NewResolver()
	del := ot.NewDelete(4, 2, "u1", 100, 0)
	ins := ot.NewInsert(4, "X", "u2", 200, 0)

	c, ok := r.Resolve(del, ins)
	if !ok || c.Resolution != AcceptTheirs {
		t.Fatalf("got %+v", c)
	}
	if !ot.Equals(c.ResolvedOp, del) {
		t.Errorf("resolved op = %v, want the first operand", c.ResolvedOp)
	}

	// Argument order decides the winner, not the operation kind.
	c, ok = r.Resolve(ins, del)
	if !ok || c.Resolution != AcceptTheirs {
		t.Fatalf("got %+v", c)
	}
	if !ot.Equals(c.ResolvedOp, ins) {
		t.Errorf("resolved op = %v, want the first operand even against a delete", c.ResolvedOp)
	}
}

func TestResolve_NoConflict(t *testing.T) {
	r := NewResolver()
	if _, ok := r.Resolve(ot.NewInsert(0, "A", "u1", 100, 0), ot.NewInsert(9, "B", "u2", 200, 0)); ok {
		t.Error("disjoint inserts resolved as a conflict")
	}
}

func TestResolve_MarksDetectedConflict(t *testing.T) {
	r := NewResolver()
	a := ot.NewInsert(5, "A", "u1", 100, 0)
	b := ot.NewInsert(5, "B", "u2", 200, 0)

	r.Detect([]ot.Op{a, b})
	r.Resolve(a, b)

	list := r.List()
	if len(list) != 1 {
		t.Fatalf("tracked %d conflicts, want the detected one reused", len(list))
	}
	if !list[0].Resolved || list[0].Resolution != Merge {
		t.Errorf("tracked conflict = %+v, want it resolved in place", list[0])
	}
}

func TestManualResolve(t *testing.T) {
	r := NewResolver()
	a := ot.NewInsert(5, "A", "u1", 100, 0)
	b := ot.NewInsert(5, "B", "u2", 200, 0)
	found := r.Detect([]ot.Op{a, b})
	id := found[0].ID

	winner, err := r.ManualResolve(id, AcceptYours, "")
	if err != nil {
		t.Fatalf("ManualResolve: %v", err)
	}
	if !ot.Equals(winner, b) {
		t.Errorf("accept_yours winner = %v, want the second operand", winner)
	}

	winner, err = r.ManualResolve(id, Merge, "")
	if err != nil {
		t.Fatalf("ManualResolve merge: %v", err)
	}
	if ins := winner.(ot.Insert); ins.Content != "AB" {
		t.Errorf("merge winner content = %q", ins.Content)
	}

	winner, err = r.ManualResolve(id, Manual, "replacement")
	if err != nil {
		t.Fatalf("ManualResolve manual: %v", err)
	}
	ins, isIns := winner.(ot.Insert)
	if !isIns || ins.Content != "replacement" || ins.Position != 5 {
		t.Errorf("manual winner = %v", winner)
	}
}

func TestManualResolve_Errors(t *testing.T) {
	r := NewResolver()
	a := ot.NewDelete(5, 2, "u1", 100, 0)
	b := ot.NewInsert(5, "B", "u2", 200, 0)
	found := r.Detect([]ot.Op{a, b})
	id := found[0].ID

	if _, err := r.ManualResolve("missing", AcceptTheirs, ""); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("unknown conflict: %v, want not found", err)
	}
	if op, err := r.ManualResolve(id, Manual, ""); !errors.Is(err, errs.ErrValidation) || op != nil {
		t.Errorf("manual without content = (%v, %v), want (nil, validation)", op, err)
	}
	if _, err := r.ManualResolve(id, Merge, ""); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("merge on delete/insert pair: %v, want validation", err)
	}
	if _, err := r.ManualResolve(id, "bogus", ""); !errors.Is(err, errs.ErrValidation) {
		t.Errorf("unknown strategy: %v, want validation", err)
	}
}

func TestExtendedConflict(t *testing.T) {
	r := NewResolver()
	a := ot.NewInsert(5, "A", "u1", 100, 0)
	b := ot.NewInsert(5, "B", "u2", 200, 0)
	found := r.Detect([]ot.Op{a, b})

	ext, err := r.ExtendedConflict(found[0].ID, "hello world")
	if err != nil {
		t.Fatalf("ExtendedConflict: %v", err)
	}
	if ext.PreviewA != "helloA world" {
		t.Errorf("preview A = %q", ext.PreviewA)
	}
	if ext.PreviewB != "helloB world" {
		t.Errorf("preview B = %q", ext.PreviewB)
	}
	if ext.MergePreview != "helloAB world" {
		t.Errorf("merge preview = %q", ext.MergePreview)
	}

	if _, err := r.ExtendedConflict("missing", ""); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("unknown conflict: %v, want not found", err)
	}
}

func TestListAndClear(t *testing.T) {
	r := NewResolver()
	r.Detect([]ot.Op{
		ot.NewInsert(5, "A", "u1", 100, 0),
		ot.NewInsert(5, "B", "u2", 200, 0),
	})
	r.Detect([]ot.Op{
		ot.NewDelete(3, 5, "u1", 100, 0),
		ot.NewDelete(4, 5, "u2", 200, 0),
	})

	if got := len(r.List()); got != 2 {
		t.Fatalf("tracked %d conflicts, want 2", got)
	}

	r.Clear()
	if got := len(r.List()); got != 0 {
		t.Errorf("tracked %d conflicts after Clear, want 0", got)
	}
}
