package position

import (
	"testing"
)

func TestPosition(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		pos      Position
		isValid  bool
	}{
		{
			name:     "Valid position with filename",
			pos:      Position{Filename: "main.zn", Line: 10, Column: 5, Offset: 100},
			isValid:  true,
			expected: "main.zn:10:5",
		},
		{
			name:     "Valid position without filename",
			pos:      Position{Line: 1, Column: 1, Offset: 0},
			isValid:  true,
			expected: "1:1",
		},
		{
			name:    "Invalid position - zero line",
			pos:     Position{Line: 0, Column: 1, Offset: 0},
			isValid: false,
		},
		{
			name:    "Invalid position - negative offset",
			pos:     Position{Line: 1, Column: 1, Offset: -1},
			isValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.IsValid(); got != tt.isValid {
				t.Errorf("Position.IsValid() = %v, want %v", got, tt.isValid)
			}

			if tt.isValid {
				if got := tt.pos.String(); got != tt.expected {
					t.Errorf("Position.String() = %v, want %v", got, tt.expected)
				}
			}
		})
	}
}

func TestPositionComparison(t *testing.T) {
	pos1 := Position{Filename: "a.zn", Line: 1, Column: 5, Offset: 4}
	pos2 := Position{Filename: "a.zn", Line: 1, Column: 10, Offset: 9}
	pos3 := Position{Filename: "0.zn", Line: 1, Column: 1, Offset: 0}

	if !pos1.Before(pos2) {
		t.Error("pos1 should be before pos2")
	}

	if pos2.Before(pos1) {
		t.Error("pos2 should not be before pos1")
	}

	if !pos3.Before(pos1) {
		t.Error("pos3 should be before pos1 (different filename)")
	}
}

func TestNextTabStop(t *testing.T) {
	tests := []struct{ col, want int }{
		{1, 9}, {2, 9}, {8, 9}, {9, 17}, {16, 17}, {17, 25},
	}

	for _, tt := range tests {
		if got := NextTabStop(tt.col); got != tt.want {
			t.Errorf("NextTabStop(%d) = %d, want %d", tt.col, got, tt.want)
		}
	}
}

func TestSourceFile(t *testing.T) {
	sf := NewSourceFile("main.zn", "let int x;\r\n\tx = 1;\nreturn x;")

	if n := len(sf.Lines()); n != 3 {
		t.Fatalf("expected 3 lines, got %d", n)
	}

	tests := []struct {
		line     int
		expected string
	}{
		{1, "let int x;"},
		{2, "\tx = 1;"},
		{3, "return x;"},
		{0, ""},
		{4, ""},
	}

	for _, tt := range tests {
		if got := sf.GetLine(tt.line); got != tt.expected {
			t.Errorf("GetLine(%d) = %q, want %q", tt.line, got, tt.expected)
		}
	}

	line, start := sf.LineAt(14)
	if line != "\tx = 1;" || start != 12 {
		t.Errorf("LineAt(14) = (%q, %d)", line, start)
	}
}

func TestPositionFromOffset(t *testing.T) {
	sf := NewSourceFile("main.zn", "ab\n\tx\r\ny")

	tests := []struct {
		offset int
		line   int
		column int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{4, 2, 9},
		{5, 2, 10},
		{8, 3, 1},
	}

	for _, tt := range tests {
		pos := sf.PositionFromOffset(tt.offset)
		if pos.Line != tt.line || pos.Column != tt.column {
			t.Errorf("PositionFromOffset(%d) = %d:%d, want %d:%d",
				tt.offset, pos.Line, pos.Column, tt.line, tt.column)
		}
		if pos.Filename != "main.zn" || pos.Offset != tt.offset {
			t.Errorf("PositionFromOffset(%d) lost file or offset: %+v", tt.offset, pos)
		}
	}

	if sf.PositionFromOffset(-1).IsValid() {
		t.Error("negative offset should produce an invalid position")
	}
}
