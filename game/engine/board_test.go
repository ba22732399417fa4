package engine

import "testing"

func TestTrackPathCellsAreUnique(t *testing.T) {
	seen := make(map[Cell]int)
	for i, c := range TrackPath {
		if prev, ok := seen[c]; ok {
			t.Errorf("Cell %+v appears at %d and %d", c, prev, i)
		}
		seen[c] = i
	}
}

func TestTrackPathIsContiguous(t *testing.T) {
	for i := range TrackPath {
		a, b := TrackPath[i], TrackPath[(i+1)%TrackLen]
		dr, dc := a.R-b.R, a.C-b.C
		if dr < -1 || dr > 1 || dc < -1 || dc > 1 {
			t.Errorf("Squares %d and %d are not adjacent: %+v %+v", i, (i+1)%TrackLen, a, b)
		}
	}
}

func TestEntrySquaresAreSafe(t *testing.T) {
	for _, color := range Colors {
		if !IsSafeIndex(EntryIndex[color]) {
			t.Errorf("Entry square for %s should be safe", color)
		}
	}
}

func TestHomeLanePath(t *testing.T) {
	for _, color := range Colors {
		lane := HomeLanePath(color)
		if len(lane) != HomeLen+1 {
			t.Errorf("Expected %d lane cells for %s, got %d", HomeLen+1, color, len(lane))
		}
		if lane[HomeLen] != (Cell{7, 7}) {
			t.Errorf("Lane for %s should end in the center, got %+v", color, lane[HomeLen])
		}
	}
}

func TestBoard(t *testing.T) {
	b := Board()
	if len(b.Track) != TrackLen {
		t.Errorf("Expected %d track cells, got %d", TrackLen, len(b.Track))
	}
	if len(b.Safe) != len(SafeIndices) {
		t.Errorf("Expected %d safe squares, got %d", len(SafeIndices), len(b.Safe))
	}
	for i := 1; i < len(b.Safe); i++ {
		if b.Safe[i-1] >= b.Safe[i] {
			t.Error("Safe squares should be sorted")
		}
	}
	red := b.ByColor[Red]
	if red.Entry != 1 || red.HomeEntry != 51 || red.HomeEntryRelSteps != 51 {
		t.Errorf("Unexpected red geometry %+v", red)
	}

	b.Track[0] = Cell{99, 99}
	if TrackPath[0] == (Cell{99, 99}) {
		t.Error("Board must not alias TrackPath")
	}
}
