// Package conflict detects and resolves pairwise conflicts among
// concurrent editor operations.
package conflict

import (
	"sync"

	"github.com/google/uuid"

	"github.com/alimasry/go-collab-vcs/errs"
	"github.com/alimasry/go-collab-vcs/ot"
)

// Type classifies a conflict between two concurrent operations.
type Type string

const (
	ConcurrentEdit Type = "concurrent_edit"
	DeleteEdit     Type = "delete_edit"
	EditDelete     Type = "edit_delete"
)

// Resolution strategies.
const (
	AcceptTheirs = "accept_theirs"
	AcceptYours  = "accept_yours"
	Merge        = "merge"
	Manual       = "manual"
)

// Conflict is a detected clash between two concurrent operations.
// Operations keeps the detection argument order; resolution strategies
// that pick a "winner" index into it positionally.
type Conflict struct {
	ID         string
	Type       Type
	Position   int
	Operations [2]ot.Op
	Resolved   bool
	Resolution string
	ResolvedOp ot.Op
}

// Extended augments a conflict with independent previews of each side
// applied to a base text, plus a merge preview when the pair supports
// one.
type Extended struct {
	Conflict
	PreviewA     string
	PreviewB     string
	MergePreview string
}

// Resolver detects conflicts across sets of concurrent operations and
// tracks them until the caller clears them in bulk.
type Resolver struct {
	mu        sync.Mutex
	conflicts map[string]*Conflict
	order     []string
}

func NewResolver() *Resolver {
	return &Resolver{conflicts: make(map[string]*Conflict)}
}

// classify reports whether a and b conflict and how. The order of the
// arguments decides delete_edit versus edit_delete.
func classify(a, b ot.Op) (Type, int, bool) {
	_, aIns := a.(ot.Insert)
	_, bIns := b.(ot.Insert)
	aDel, aIsDel := a.(ot.Delete)
	bDel, bIsDel := b.(ot.Delete)

	if a.Pos() == b.Pos() {
		switch {
		case !aIsDel && !bIsDel:
			return ConcurrentEdit, a.Pos(), true
		case aIsDel && bIns:
			return DeleteEdit, a.Pos(), true
		case aIns && bIsDel:
			return EditDelete, a.Pos(), true
		}
	}

	if aIsDel && bIsDel {
		if a.Pos() < b.Pos()+bDel.Length && b.Pos() < a.Pos()+aDel.Length {
			pos := a.Pos()
			if b.Pos() > pos {
				pos = b.Pos()
			}
			return ConcurrentEdit, pos, true
		}
	}

	if aIsDel && bIns && insideDelete(b.Pos(), aDel) {
		return DeleteEdit, b.Pos(), true
	}
	if aIns && bIsDel && insideDelete(a.Pos(), bDel) {
		return EditDelete, a.Pos(), true
	}

	return "", 0, false
}

func insideDelete(pos int, d ot.Delete) bool {
	return pos > d.Position && pos < d.Position+d.Length
}

// Detect runs the pairwise O(n^2) scan over a set of concurrent
// operations, skipping pairs authored by the same user, and registers
// every conflict found.
func (r *Resolver) Detect(ops []ot.Op) []Conflict {
	var found []Conflict
	for i := 0; i < len(ops); i++ {
		for j := i + 1; j < len(ops); j++ {
			a, b := ops[i], ops[j]
			if a.Info().UserID == b.Info().UserID {
				continue
			}
			typ, pos, ok := classify(a, b)
			if !ok {
				continue
			}
			c := &Conflict{
				ID:         uuid.New().String(),
				Type:       typ,
				Position:   pos,
				Operations: [2]ot.Op{a, b},
			}
			r.mu.Lock()
			r.conflicts[c.ID] = c
			r.order = append(r.order, c.ID)
			r.mu.Unlock()
			found = append(found, *c)
		}
	}
	return found
}

// mergeInserts builds the synthetic insert for two concurrent inserts:
// contents concatenated in ascending timestamp order, placed at the
// earlier position, attributed to the earlier author.
func mergeInserts(a, b ot.Insert) ot.Insert {
	first, second := a, b
	if b.Timestamp < a.Timestamp {
		first, second = b, a
	}
	pos := a.Position
	if b.Position < pos {
		pos = b.Position
	}
	return ot.Insert{Position: pos, Content: first.Content + second.Content, Meta: first.Meta}
}

// Resolve attempts automatic resolution of a conflicting pair. Two
// concurrent inserts merge by timestamp order; delete_edit and
// edit_delete resolve to accept_theirs, which always picks
// Operations[0] regardless of which operand is the delete. Pairs that
// don't conflict, or that have no automatic strategy, report ok=false.
func (r *Resolver) Resolve(a, b ot.Op) (Conflict, bool) {
	typ, pos, ok := classify(a, b)
	if !ok {
		return Conflict{}, false
	}

	var resolution string
	var resolvedOp ot.Op
	switch typ {
	case ConcurrentEdit:
		ai, aIns := a.(ot.Insert)
		bi, bIns := b.(ot.Insert)
		if !aIns || !bIns {
			return Conflict{}, false
		}
		resolution = Merge
		resolvedOp = mergeInserts(ai, bi)
	case DeleteEdit, EditDelete:
		// accept_theirs always picks the first operand, even when the
		// second one is the delete.
		resolution = AcceptTheirs
		resolvedOp = a
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Mutate the tracked conflict for this pair when one exists,
	// otherwise register the resolution as a fresh record.
	c := r.findLocked(a, b)
	if c == nil {
		c = &Conflict{
			ID:         uuid.New().String(),
			Type:       typ,
			Position:   pos,
			Operations: [2]ot.Op{a, b},
		}
		r.conflicts[c.ID] = c
		r.order = append(r.order, c.ID)
	}
	c.Resolved = true
	c.Resolution = resolution
	c.ResolvedOp = resolvedOp
	return *c, true
}

func (r *Resolver) findLocked(a, b ot.Op) *Conflict {
	for _, id := range r.order {
		c := r.conflicts[id]
		if c != nil && !c.Resolved && ot.Equals(c.Operations[0], a) && ot.Equals(c.Operations[1], b) {
			return c
		}
	}
	return nil
}

// ManualResolve applies a caller-chosen strategy to a tracked conflict
// and returns the winning operation. accept_theirs and accept_yours
// pick Operations[0] and Operations[1]; merge is defined only for
// insert/insert pairs; manual requires content and synthesizes an
// insert at the conflict position — without content it returns nothing.
func (r *Resolver) ManualResolve(conflictID, strategy, content string) (ot.Op, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conflicts[conflictID]
	if !ok {
		return nil, errs.NotFound("conflict %q", conflictID)
	}

	var winner ot.Op
	switch strategy {
	case AcceptTheirs:
		winner = c.Operations[0]
	case AcceptYours:
		winner = c.Operations[1]
	case Merge:
		a, aIns := c.Operations[0].(ot.Insert)
		b, bIns := c.Operations[1].(ot.Insert)
		if !aIns || !bIns {
			return nil, errs.Validation("merge resolution requires two inserts")
		}
		winner = mergeInserts(a, b)
	case Manual:
		if content == "" {
			return nil, errs.Validation("manual resolution requires content")
		}
		winner = ot.Insert{Position: c.Position, Content: content}
	default:
		return nil, errs.Validation("unknown resolution strategy %q", strategy)
	}

	c.Resolved = true
	c.Resolution = strategy
	c.ResolvedOp = winner
	return winner, nil
}

// ExtendedConflict previews each side of a tracked conflict applied
// independently to baseContent. Insert/insert pairs additionally get a
// merge preview using the automatic-resolution heuristic.
func (r *Resolver) ExtendedConflict(conflictID, baseContent string) (Extended, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conflicts[conflictID]
	if !ok {
		return Extended{}, errs.NotFound("conflict %q", conflictID)
	}

	ext := Extended{
		Conflict: *c,
		PreviewA: ot.Apply(baseContent, c.Operations[0]),
		PreviewB: ot.Apply(baseContent, c.Operations[1]),
	}
	if a, aIns := c.Operations[0].(ot.Insert); aIns {
		if b, bIns := c.Operations[1].(ot.Insert); bIns {
			ext.MergePreview = ot.Apply(baseContent, mergeInserts(a, b))
		}
	}
	return ext, nil
}

// List returns all tracked conflicts in detection order.
func (r *Resolver) List() []Conflict {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Conflict, 0, len(r.order))
	for _, id := range r.order {
		if c := r.conflicts[id]; c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// Clear drops every tracked conflict. Conflicts are only ever cleared
// in bulk.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts = make(map[string]*Conflict)
	r.order = nil
}
