package diff

import "strings"

// Similarity scores how alike two texts are on a [0,1] scale:
// 1 minus the share of changed lines over the longer side's line count.
// Identical texts score 1; a text against nothing scores 0.
func (e *Engine) Similarity(textA, textB string) float64 {
	if textA == textB {
		return 1
	}
	linesA := splitLines(textA)
	linesB := splitLines(textB)

	changed := 0
	for _, ed := range editScript(linesA, linesB) {
		if ed.op != editEqual {
			changed++
		}
	}
	maxLines := len(linesA)
	if len(linesB) > maxLines {
		maxLines = len(linesB)
	}

	score := 1 - float64(changed)/float64(maxLines)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// CharOp classifies a character-level diff segment.
type CharOp int

const (
	CharEqual CharOp = iota
	CharInsert
	CharDelete
)

// CharSegment is a run of characters sharing one diff operation.
type CharSegment struct {
	Op   CharOp
	Text string
}

// CharDiff computes a character-level edit script between two strings,
// coalescing adjacent characters with the same operation.
func (e *Engine) CharDiff(textA, textB string) []CharSegment {
	script := editScript(strings.Split(textA, ""), strings.Split(textB, ""))

	var segs []CharSegment
	for _, ed := range script {
		op := CharEqual
		switch ed.op {
		case editInsert:
			op = CharInsert
		case editDelete:
			op = CharDelete
		}
		if n := len(segs); n > 0 && segs[n-1].Op == op {
			segs[n-1].Text += ed.text
			continue
		}
		segs = append(segs, CharSegment{Op: op, Text: ed.text})
	}
	return segs
}
