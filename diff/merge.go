package diff

import "strings"

// lineRange is an inclusive range of 1-based line numbers in the base text.
type lineRange struct {
	lo, hi int
}

// deletionRanges collects, per hunk, the span of base lines it deletes.
// Hunks that only add lines contribute no range: they mark a change but
// deliberately do not widen the overlap comparison.
func deletionRanges(hunks []Hunk) []lineRange {
	var ranges []lineRange
	for _, h := range hunks {
		r := lineRange{lo: -1, hi: -1}
		for _, l := range h.Lines {
			if l.Kind != LineDeleted {
				continue
			}
			if r.lo == -1 || l.LineA < r.lo {
				r.lo = l.LineA
			}
			if l.LineA > r.hi {
				r.hi = l.LineA
			}
		}
		if r.lo != -1 {
			ranges = append(ranges, r)
		}
	}
	return ranges
}

// HasMergeConflicts reports whether the changes base->theirs and
// base->yours touch overlapping base line ranges.
func (e *Engine) HasMergeConflicts(base, theirs, yours string) bool {
	theirRanges := deletionRanges(e.Compute(base, theirs))
	yourRanges := deletionRanges(e.Compute(base, yours))
	for _, tr := range theirRanges {
		for _, yr := range yourRanges {
			if tr.lo <= yr.hi && yr.lo <= tr.hi {
				return true
			}
		}
	}
	return false
}

// ThreeWayMerge reconciles two divergent edits of base. It returns the
// merged text and true when the two change sets touch disjoint line
// ranges; on overlap it returns ok=false and the caller decides how to
// surface the conflict.
func (e *Engine) ThreeWayMerge(base, theirs, yours string) (string, bool) {
	theirHunks := e.Compute(base, theirs)
	yourHunks := e.Compute(base, yours)

	theirRanges := deletionRanges(theirHunks)
	yourRanges := deletionRanges(yourHunks)
	for _, tr := range theirRanges {
		for _, yr := range yourRanges {
			if tr.lo <= yr.hi && yr.lo <= tr.hi {
				return "", false
			}
		}
	}

	baseLines := splitLines(base)
	deleted := make(map[int]bool)
	inserts := make(map[int][]string) // anchored before the given base line

	for _, hunks := range [][]Hunk{theirHunks, yourHunks} {
		for _, h := range hunks {
			cur := h.StartA
			for _, l := range h.Lines {
				switch l.Kind {
				case LineContext:
					cur = l.LineA + 1
				case LineDeleted:
					deleted[l.LineA] = true
					cur = l.LineA + 1
				case LineAdded:
					inserts[cur] = append(inserts[cur], l.Content)
				}
			}
		}
	}

	var out []string
	for n := 1; n <= len(baseLines)+1; n++ {
		out = append(out, inserts[n]...)
		if n <= len(baseLines) && !deleted[n] {
			out = append(out, baseLines[n-1])
		}
	}
	return strings.Join(out, "\n"), true
}
