package diff

import "testing"

func TestSimilarity(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "a\nb\nc", "a\nb\nc", 1},
		{"both empty", "", "", 1},
		{"totally different", "abc", "xyz", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.Similarity(tc.a, tc.b); got != tc.want {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}

	partial := e.Similarity("a\nb\nc\nd", "a\nb\nc\nD")
	if partial <= 0 || partial >= 1 {
		t.Errorf("partial similarity = %v, want strictly between 0 and 1", partial)
	}
}

func TestCharDiff(t *testing.T) {
	e := NewEngine()
	segs := e.CharDiff("abc", "abd")

	want := []CharSegment{
		{Op: CharEqual, Text: "ab"},
		{Op: CharDelete, Text: "c"},
		{Op: CharInsert, Text: "d"},
	}
	if len(segs) != len(want) {
		t.Fatalf("got %d segments %+v, want %d", len(segs), segs, len(want))
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, segs[i], want[i])
		}
	}
}

func TestCharDiff_Identical(t *testing.T) {
	e := NewEngine()
	segs := e.CharDiff("same", "same")
	if len(segs) != 1 || segs[0].Op != CharEqual || segs[0].Text != "same" {
		t.Errorf("got %+v, want one equal segment", segs)
	}
}
