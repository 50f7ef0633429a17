package ot

// shift returns op with its position adjusted for `against` having
// already been applied: an insert strictly before op pushes it right
// by the inserted length, a delete strictly before op pulls it left by
// the deleted length (floored at zero). Operations at the exact same
// position are left alone — ordering equal-position inserts is the
// conflict resolver's call, not the transform's.
func shift(op, against Op) Op {
	var delta int
	switch a := against.(type) {
	case Insert:
		if a.Position < op.Pos() {
			delta = len(a.Content)
		}
	case Delete:
		if a.Position < op.Pos() {
			delta = -a.Length
		}
	default:
		return op
	}
	if delta == 0 {
		return op
	}

	newPos := op.Pos() + delta
	if newPos < 0 {
		newPos = 0
	}
	switch o := op.(type) {
	case Insert:
		o.Position = newPos
		return o
	case Delete:
		o.Position = newPos
		return o
	case Retain:
		o.Position = newPos
		return o
	}
	return op
}

// Transform adjusts two concurrent operations against each other,
// returning (a adjusted for b already applied, b adjusted for a
// already applied).
func Transform(a, b Op) (aPrime, bPrime Op) {
	return shift(a, b), shift(b, a)
}

// TransformPath rebases a sequence of historical operations against
// one reference operation, pairwise: each history entry is transformed
// against the current reference, and the reference against the entry,
// before moving on.
func TransformPath(history []Op, ref Op) []Op {
	out := make([]Op, 0, len(history))
	for _, op := range history {
		var opPrime Op
		opPrime, ref = Transform(op, ref)
		out = append(out, opPrime)
	}
	return out
}
