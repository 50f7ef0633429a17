package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alimasry/go-collab-vcs/errs"
)

// Unified serializes the diff between textA and textB in unified format,
// with "--- a/<file>" / "+++ b/<file>" headers and one "@@" header per hunk.
func (e *Engine) Unified(textA, textB, fileName string) string {
	hunks := e.Compute(textA, textB)

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", fileName)
	fmt.Fprintf(&b, "+++ b/%s\n", fileName)

	for _, h := range hunks {
		lenA, lenB := 0, 0
		for _, l := range h.Lines {
			if l.Kind != LineAdded {
				lenA++
			}
			if l.Kind != LineDeleted {
				lenB++
			}
		}
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.StartA, lenA, h.StartB, lenB)
		for _, l := range h.Lines {
			switch l.Kind {
			case LineAdded:
				b.WriteString("+")
			case LineDeleted:
				b.WriteString("-")
			default:
				b.WriteString(" ")
			}
			b.WriteString(l.Content)
			b.WriteString("\n")
		}
	}
	return b.String()
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// ApplyPatch applies a unified diff to text, tracking a line cursor
// through the old content: each hunk advances the cursor to its old
// start, then deletions splice lines out while additions splice the
// replacement lines in.
func (e *Engine) ApplyPatch(text, patch string) (string, error) {
	old := splitLines(text)
	var out []string
	cursor := 0 // index of the next unconsumed old line

	for _, raw := range strings.Split(patch, "\n") {
		switch {
		case raw == "":
			// Blank separator (context lines of empty content carry a
			// leading space and don't land here).
		case strings.HasPrefix(raw, "--- ") || strings.HasPrefix(raw, "+++ "):
			// File headers.
		case strings.HasPrefix(raw, "@@"):
			m := hunkHeaderRe.FindStringSubmatch(raw)
			if m == nil {
				return "", errs.Validation("malformed hunk header %q", raw)
			}
			oldStart, _ := strconv.Atoi(m[1])
			for cursor < oldStart-1 && cursor < len(old) {
				out = append(out, old[cursor])
				cursor++
			}
		case strings.HasPrefix(raw, "+"):
			out = append(out, raw[1:])
		case strings.HasPrefix(raw, "-"):
			if cursor >= len(old) {
				return "", errs.Validation("deletion past end of text at line %d", cursor+1)
			}
			cursor++
		case strings.HasPrefix(raw, " "):
			if cursor >= len(old) {
				return "", errs.Validation("context past end of text at line %d", cursor+1)
			}
			out = append(out, old[cursor])
			cursor++
		default:
			return "", errs.Validation("unrecognized patch line %q", raw)
		}
	}

	out = append(out, old[cursor:]...)
	return strings.Join(out, "\n"), nil
}
