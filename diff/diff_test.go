package diff

import "testing"

func countKind(hunks []Hunk, kind LineKind) int {
	n := 0
	for _, h := range hunks {
		for _, l := range h.Lines {
			if l.Kind == kind {
				n++
			}
		}
	}
	return n
}

func TestCompute_Identical(t *testing.T) {
	texts := []string{
		"",
		"one line",
		"line1\nline2\nline3",
		"trailing newline\n",
	}
	e := NewEngine()
	for _, text := range texts {
		if hunks := e.Compute(text, text); len(hunks) != 0 {
			t.Errorf("Compute(%q, %q) = %d hunks, want 0", text, text, len(hunks))
		}
	}
}

func TestCompute_SingleAddition(t *testing.T) {
	e := NewEngine()
	hunks := e.Compute("line1", "line1\nline2")
	if len(hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(hunks))
	}

	var added []Line
	for _, l := range hunks[0].Lines {
		if l.Kind == LineAdded {
			added = append(added, l)
		}
	}
	if len(added) != 1 || added[0].Content != "line2" {
		t.Errorf("added lines = %+v, want one %q", added, "line2")
	}
	if countKind(hunks, LineDeleted) != 0 {
		t.Errorf("unexpected deletions in %+v", hunks)
	}
}

func TestCompute_Modification(t *testing.T) {
	e := NewEngine()
	hunks := e.Compute("line1\nline2\nline3", "line1\nline2-modified\nline3")
	if len(hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(hunks))
	}
	if got := countKind(hunks, LineAdded); got != 1 {
		t.Errorf("additions = %d, want 1", got)
	}
	if got := countKind(hunks, LineDeleted); got != 1 {
		t.Errorf("deletions = %d, want 1", got)
	}

	// The deleted line keeps its old number, the added one its new number.
	for _, l := range hunks[0].Lines {
		switch l.Kind {
		case LineDeleted:
			if l.LineA != 2 || l.LineB != 0 {
				t.Errorf("deleted line numbers = (%d,%d), want (2,0)", l.LineA, l.LineB)
			}
		case LineAdded:
			if l.LineA != 0 || l.LineB != 2 {
				t.Errorf("added line numbers = (%d,%d), want (0,2)", l.LineA, l.LineB)
			}
		}
	}
}

func TestCompute_DistantChangesSplitHunks(t *testing.T) {
	a := "a1\nkeep1\nkeep2\nkeep3\nkeep4\nkeep5\nkeep6\nkeep7\nkeep8\nz1"
	b := "a1-new\nkeep1\nkeep2\nkeep3\nkeep4\nkeep5\nkeep6\nkeep7\nkeep8\nz1-new"

	e := NewEngine()
	hunks := e.Compute(a, b)
	if len(hunks) != 2 {
		t.Fatalf("got %d hunks, want 2: %+v", len(hunks), hunks)
	}
}

func TestCompute_ContextWindow(t *testing.T) {
	a := "1\n2\n3\n4\n5\n6\n7\n8\n9"
	b := "1\n2\n3\n4\n5-mod\n6\n7\n8\n9"

	e := NewEngine()
	hunks := e.Compute(a, b)
	if len(hunks) != 1 {
		t.Fatalf("got %d hunks, want 1", len(hunks))
	}

	leading, trailing := 0, 0
	lines := hunks[0].Lines
	for _, l := range lines {
		if l.Kind != LineContext {
			break
		}
		leading++
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i].Kind != LineContext {
			break
		}
		trailing++
	}
	if leading != 3 {
		t.Errorf("leading context = %d, want 3", leading)
	}
	if trailing != 3 {
		t.Errorf("trailing context = %d, want 3", trailing)
	}
	if hunks[0].StartA != 2 {
		t.Errorf("StartA = %d, want 2", hunks[0].StartA)
	}
}

func TestAdditionsDeletions(t *testing.T) {
	e := NewEngine()
	hunks := e.Compute("a\nb\nc", "a\nB\nc\nd")
	if got := Additions(hunks); got != 2 {
		t.Errorf("Additions = %d, want 2", got)
	}
	if got := Deletions(hunks); got != 1 {
		t.Errorf("Deletions = %d, want 1", got)
	}
}
