// Package ot implements the operational-transform algebra for live
// concurrent character edits: position-based insert/delete/retain
// operations, clamped application, pairwise transforms and inversion.
package ot

import (
	"fmt"

	"github.com/alimasry/go-collab-vcs/errs"
)

// Meta carries the authorship of an operation.
type Meta struct {
	UserID    string `json:"userId,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Version   int    `json:"version,omitempty"`
}

// Info returns the operation metadata. It exists so the concrete
// operation types satisfy Op by embedding Meta.
func (m Meta) Info() Meta { return m }

// Op is one atomic editor operation. The concrete types are Insert,
// Delete and Retain; the sealed marker keeps the set closed so a kind
// switch can be exhaustive.
type Op interface {
	// Pos is the 0-based offset the operation applies at.
	Pos() int
	Info() Meta
	fmt.Stringer
	isOp()
}

// Insert places Content at Position.
type Insert struct {
	Position int
	Content  string
	Meta
}

// Delete removes Length characters starting at Position.
type Delete struct {
	Position int
	Length   int
	Meta
}

// Retain leaves the document untouched; it exists so a client can
// advance its cursor without editing.
type Retain struct {
	Position int
	Meta
}

func (o Insert) Pos() int { return o.Position }
func (o Delete) Pos() int { return o.Position }
func (o Retain) Pos() int { return o.Position }

func (Insert) isOp() {}
func (Delete) isOp() {}
func (Retain) isOp() {}

func (o Insert) String() string {
	return fmt.Sprintf("insert@%d %q by %s", o.Position, o.Content, o.UserID)
}

func (o Delete) String() string {
	return fmt.Sprintf("delete@%d len=%d by %s", o.Position, o.Length, o.UserID)
}

func (o Retain) String() string {
	return fmt.Sprintf("retain@%d by %s", o.Position, o.UserID)
}

// NewInsert creates an insert operation.
func NewInsert(pos int, content, userID string, timestamp int64, version int) Insert {
	return Insert{Position: pos, Content: content, Meta: Meta{UserID: userID, Timestamp: timestamp, Version: version}}
}

// NewDelete creates a delete operation.
func NewDelete(pos, length int, userID string, timestamp int64, version int) Delete {
	return Delete{Position: pos, Length: length, Meta: Meta{UserID: userID, Timestamp: timestamp, Version: version}}
}

// NewRetain creates a retain operation.
func NewRetain(pos int, userID string, timestamp int64, version int) Retain {
	return Retain{Position: pos, Meta: Meta{UserID: userID, Timestamp: timestamp, Version: version}}
}

// Apply applies op to doc. Positions are clamped into the document
// bounds and a delete running past the end removes only what exists,
// so Apply never fails.
func Apply(doc string, op Op) string {
	switch o := op.(type) {
	case Insert:
		pos := clamp(o.Position, 0, len(doc))
		return doc[:pos] + o.Content + doc[pos:]
	case Delete:
		if len(doc) == 0 {
			return doc
		}
		pos := clamp(o.Position, 0, len(doc)-1)
		n := o.Length
		if remaining := len(doc) - pos; n > remaining {
			n = remaining
		}
		if n <= 0 {
			return doc
		}
		return doc[:pos] + doc[pos+n:]
	case Retain:
		return doc
	}
	return doc
}

// Validate checks that op fits a document of docLen without clamping:
// the position must lie in [0, docLen] and a delete's range must fit
// entirely within the document.
func Validate(op Op, docLen int) error {
	pos := op.Pos()
	if pos < 0 || pos > docLen {
		return errs.Validation("position %d outside document of length %d", pos, docLen)
	}
	if d, ok := op.(Delete); ok {
		if d.Length < 0 {
			return errs.Validation("negative delete length %d", d.Length)
		}
		if d.Position+d.Length > docLen {
			return errs.Validation("delete [%d,%d) exceeds document of length %d", d.Position, d.Position+d.Length, docLen)
		}
	}
	return nil
}

// Length returns the document length delta of op: positive for
// inserts, negative for deletes, zero for retains.
func Length(op Op) int {
	switch o := op.(type) {
	case Insert:
		return len(o.Content)
	case Delete:
		return -o.Length
	}
	return 0
}

// Clone returns a copy of op. Concrete operations are plain value
// types, so the interface copy is already independent.
func Clone(op Op) Op {
	return op
}

// Equals reports whether two operations are the same kind with the
// same position, payload and metadata.
func Equals(a, b Op) bool {
	switch oa := a.(type) {
	case Insert:
		ob, ok := b.(Insert)
		return ok && oa == ob
	case Delete:
		ob, ok := b.(Delete)
		return ok && oa == ob
	case Retain:
		ob, ok := b.(Retain)
		return ok && oa == ob
	}
	return false
}

// Compose returns the pair unmerged. True composition of adjacent
// operations is out of scope for this algebra.
func Compose(a, b Op) []Op {
	return []Op{a, b}
}

// Invert returns the operation that undoes op against the document
// state from before op was applied.
func Invert(op Op, docBefore string) Op {
	switch o := op.(type) {
	case Insert:
		return Delete{Position: o.Position, Length: len(o.Content), Meta: o.Meta}
	case Delete:
		pos := clamp(o.Position, 0, len(docBefore))
		end := pos + o.Length
		if end > len(docBefore) {
			end = len(docBefore)
		}
		return Insert{Position: o.Position, Content: docBefore[pos:end], Meta: o.Meta}
	}
	return op
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
