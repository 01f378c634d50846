package pipeline

import (
	"reflect"
	"testing"
)

func TestSplitLines(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e"}

	tests := []struct {
		name       string
		lines      []string
		size       int
		wantStarts []int
		wantLens   []int
	}{
		{"exact multiple", []string{"a", "b", "c", "d"}, 2, []int{0, 2}, []int{2, 2}},
		{"remainder chunk", lines, 2, []int{0, 2, 4}, []int{2, 2, 1}},
		{"size one", []string{"a", "b"}, 1, []int{0, 1}, []int{1, 1}},
		{"size beyond input", lines, 100, []int{0}, []int{5}},
		{"size below one clamps to one", []string{"a", "b"}, 0, []int{0, 1}, []int{1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitLines(tt.lines, tt.size)
			if len(chunks) != len(tt.wantStarts) {
				t.Fatalf("got %d chunks, want %d", len(chunks), len(tt.wantStarts))
			}
			for i, c := range chunks {
				if c.Start != tt.wantStarts[i] {
					t.Errorf("chunk %d start = %d, want %d", i, c.Start, tt.wantStarts[i])
				}
				if len(c.Lines) != tt.wantLens[i] {
					t.Errorf("chunk %d has %d lines, want %d", i, len(c.Lines), tt.wantLens[i])
				}
			}
		})
	}
}

func TestSplitLines_Empty(t *testing.T) {
	if chunks := SplitLines(nil, 10); chunks != nil {
		t.Errorf("got %v, want nil", chunks)
	}
}

func TestSplitLines_PreservesContent(t *testing.T) {
	lines := []string{"x", "y", "z"}
	chunks := SplitLines(lines, 2)

	var rejoined []string
	for _, c := range chunks {
		rejoined = append(rejoined, c.Lines...)
	}
	if !reflect.DeepEqual(rejoined, lines) {
		t.Errorf("rejoined = %v, want %v", rejoined, lines)
	}
}
