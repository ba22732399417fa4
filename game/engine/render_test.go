package engine

import "testing"

func at(lines []string, c Cell) byte {
	return lines[c.R][c.C]
}

func TestRenderEmptyBoard(t *testing.T) {
	lines := Render(nil)
	if len(lines) != GridSize {
		t.Fatalf("Expected %d lines, got %d", GridSize, len(lines))
	}

	tests := []struct {
		name string
		cell Cell
		want byte
	}{
		{"center", Cell{7, 7}, '#'},
		{"red entry is safe", TrackPath[1], '*'},
		{"plain track", TrackPath[2], '.'},
		{"red lane", Cell{7, 1}, 'r'},
		{"blue lane", Cell{13, 7}, 'b'},
		{"red base pad", Cell{2, 2}, 'o'},
		{"corner is empty", Cell{0, 0}, ' '},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := at(lines, tt.cell); got != tt.want {
				t.Errorf("cell %v = %q, want %q", tt.cell, got, tt.want)
			}
		})
	}
}

func TestRenderTokens(t *testing.T) {
	red := playerWith(Red, trackToken(5, 4), homeToken(2), doneToken(), baseToken())
	green := playerWith(Green, trackToken(20, 6), trackToken(20, 6), baseToken(), baseToken())
	lines := Render(gameWith(0, red, green))

	if got := at(lines, TrackPath[5]); got != 'R' {
		t.Errorf("Expected red token on square 5, got %q", got)
	}
	if got := at(lines, HomeLanePath(Red)[2]); got != 'R' {
		t.Errorf("Expected red token in lane, got %q", got)
	}
	if got := at(lines, TrackPath[20]); got != '2' {
		t.Errorf("Expected two stacked green tokens, got %q", got)
	}
	if got := at(lines, BasePads(Red)[3]); got != 'R' {
		t.Errorf("Expected red token on its fourth pad, got %q", got)
	}
	if got := at(lines, BasePads(Red)[2]); got != 'o' {
		t.Errorf("Finished token should leave its pad empty, got %q", got)
	}
	if got := at(lines, Cell{7, 7}); got != '#' {
		t.Errorf("Finished tokens are not drawn, got %q", got)
	}
}
