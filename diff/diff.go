// Package diff implements the line-level diff engine: LCS edit scripts,
// hunk assembly, unified-diff serialization and parsing, three-way merge
// and similarity scoring.
package diff

import "strings"

// LineKind classifies a single line within a hunk.
type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineDeleted
)

// Line is a single line of a hunk. LineA and LineB are 1-based line
// numbers in the old and new text; 0 means the line does not exist on
// that side (added lines have no LineA, deleted lines no LineB).
type Line struct {
	Kind    LineKind
	Content string
	LineA   int
	LineB   int
}

// Hunk is a contiguous diff region: up to three leading and trailing
// context lines around one or more added/deleted lines. StartA and
// StartB are the 1-based line numbers of the hunk's first line in the
// old and new text.
type Hunk struct {
	StartA int
	StartB int
	Lines  []Line
}

// Engine computes diffs between text snapshots. It is stateless; the
// zero value is usable, and Default is a shared instance for callers
// that don't inject their own.
type Engine struct{}

// Default is a process-wide engine for convenience wiring.
var Default = NewEngine()

func NewEngine() *Engine {
	return &Engine{}
}

// contextLines is the number of unchanged lines kept around each change.
const contextLines = 3

type editOp int

const (
	editEqual editOp = iota
	editInsert
	editDelete
)

type edit struct {
	op   editOp
	text string
}

// splitLines splits text into lines. An empty string yields a single
// empty line, matching the behavior of splitting on '\n'.
func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

// editScript computes the line edit script from a to b by LCS dynamic
// programming, O(n*m) time and space. On ties during backtracking an
// insert is emitted before a delete.
func editScript(a, b []string) []edit {
	m, n := len(a), len(b)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	var script []edit
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && a[i-1] == b[j-1]:
			script = append(script, edit{editEqual, a[i-1]})
			i--
			j--
		case j > 0 && (i == 0 || dp[i][j-1] >= dp[i-1][j]):
			script = append(script, edit{editInsert, b[j-1]})
			j--
		default:
			script = append(script, edit{editDelete, a[i-1]})
			i--
		}
	}
	// Backtracking produced the script in reverse.
	for l, r := 0, len(script)-1; l < r; l, r = l+1, r-1 {
		script[l], script[r] = script[r], script[l]
	}
	return script
}

// Compute returns the hunks describing how textA becomes textB.
// Identical texts yield no hunks.
func (e *Engine) Compute(textA, textB string) []Hunk {
	script := editScript(splitLines(textA), splitLines(textB))

	var hunks []Hunk
	var cur *Hunk
	var pending []Line // trailing equal lines not yet assigned to a hunk
	lineA, lineB := 1, 1

	flush := func() {
		if cur == nil {
			return
		}
		// Trim trailing context down to the window size.
		trailing := 0
		for i := len(cur.Lines) - 1; i >= 0 && cur.Lines[i].Kind == LineContext; i-- {
			trailing++
		}
		if trailing > contextLines {
			cur.Lines = cur.Lines[:len(cur.Lines)-(trailing-contextLines)]
		}
		hunks = append(hunks, *cur)
		cur = nil
	}

	for _, ed := range script {
		switch ed.op {
		case editEqual:
			line := Line{Kind: LineContext, Content: ed.text, LineA: lineA, LineB: lineB}
			lineA++
			lineB++
			if cur != nil {
				cur.Lines = append(cur.Lines, line)
				// A run of equal lines longer than twice the context
				// window separates two hunks. Keep the window at the
				// end of this hunk and let the tail of the run seed
				// the next hunk's leading context.
				trailing := 0
				for i := len(cur.Lines) - 1; i >= 0 && cur.Lines[i].Kind == LineContext; i-- {
					trailing++
				}
				if trailing > 2*contextLines {
					runStart := len(cur.Lines) - trailing
					rest := append([]Line(nil), cur.Lines[runStart+contextLines:]...)
					cur.Lines = cur.Lines[:runStart+contextLines]
					hunks = append(hunks, *cur)
					cur = nil
					pending = rest
					if len(pending) > contextLines {
						pending = pending[len(pending)-contextLines:]
					}
				}
			} else {
				pending = append(pending, line)
				if len(pending) > contextLines {
					pending = pending[1:]
				}
			}
		case editInsert, editDelete:
			if cur == nil {
				cur = &Hunk{}
				cur.Lines = append(cur.Lines, pending...)
				pending = nil
			}
			if ed.op == editInsert {
				cur.Lines = append(cur.Lines, Line{Kind: LineAdded, Content: ed.text, LineB: lineB})
				lineB++
			} else {
				cur.Lines = append(cur.Lines, Line{Kind: LineDeleted, Content: ed.text, LineA: lineA})
				lineA++
			}
		}
	}
	flush()

	// Fix up hunk start positions from their first line on each side.
	for i := range hunks {
		hunks[i].StartA, hunks[i].StartB = hunkStarts(hunks[i].Lines)
	}
	return hunks
}

// hunkStarts derives the 1-based start lines of a hunk on each side.
// A side with no lines at all (pure insertion into empty text, say)
// reports the position the change applies at.
func hunkStarts(lines []Line) (startA, startB int) {
	startA, startB = 0, 0
	for _, l := range lines {
		if startA == 0 && l.LineA > 0 {
			startA = l.LineA
		}
		if startB == 0 && l.LineB > 0 {
			startB = l.LineB
		}
		if startA > 0 && startB > 0 {
			break
		}
	}
	if startA == 0 {
		startA = 1
	}
	if startB == 0 {
		startB = 1
	}
	return startA, startB
}

// Additions counts the added lines across a hunk set.
func Additions(hunks []Hunk) int {
	n := 0
	for _, h := range hunks {
		for _, l := range h.Lines {
			if l.Kind == LineAdded {
				n++
			}
		}
	}
	return n
}

// Deletions counts the deleted lines across a hunk set.
func Deletions(hunks []Hunk) int {
	n := 0
	for _, h := range hunks {
		for _, l := range h.Lines {
			if l.Kind == LineDeleted {
				n++
			}
		}
	}
	return n
}
