package engine

// TrackPath is the closed outer loop, indexed 0..TrackLen-1.
var TrackPath = [TrackLen]Cell{
	{6, 0}, {6, 1}, {6, 2}, {6, 3}, {6, 4}, {6, 5},
	{5, 6}, {4, 6}, {3, 6}, {2, 6}, {1, 6}, {0, 6},
	{0, 7},
	{0, 8}, {1, 8}, {2, 8}, {3, 8}, {4, 8}, {5, 8},
	{6, 9}, {6, 10}, {6, 11}, {6, 12}, {6, 13}, {6, 14},
	{7, 14},
	{8, 14}, {8, 13}, {8, 12}, {8, 11}, {8, 10}, {8, 9},
	{9, 8}, {10, 8}, {11, 8}, {12, 8}, {13, 8}, {14, 8},
	{14, 7},
	{14, 6}, {13, 6}, {12, 6}, {11, 6}, {10, 6}, {9, 6},
	{8, 5}, {8, 4}, {8, 3}, {8, 2}, {8, 1}, {8, 0},
	{7, 0},
}

// EntryIndex is the track square a color's tokens enter on.
var EntryIndex = map[Color]int{Red: 1, Green: 14, Yellow: 27, Blue: 40}

// HomeEntryIndex is the last track square before a color turns into its lane.
var HomeEntryIndex = map[Color]int{Red: 51, Green: 12, Yellow: 25, Blue: 38}

// SafeIndices are the squares where no capture can happen.
var SafeIndices = map[int]bool{1: true, 9: true, 14: true, 22: true, 27: true, 35: true, 40: true, 48: true}

var basePads = map[Color][TokensPerPlayer]Cell{
	Red:    {{2, 2}, {2, 3}, {3, 2}, {3, 3}},
	Green:  {{2, 11}, {2, 12}, {3, 11}, {3, 12}},
	Yellow: {{11, 11}, {11, 12}, {12, 11}, {12, 12}},
	Blue:   {{11, 2}, {11, 3}, {12, 2}, {12, 3}},
}

// HomeLanePath returns the HomeLen+1 cells of a color's private lane; the
// last one is the finish slot.
func HomeLanePath(color Color) []Cell {
	lane := make([]Cell, HomeLen+1)
	for i := range lane {
		switch color {
		case Red:
			lane[i] = Cell{7, 1 + i}
		case Green:
			lane[i] = Cell{1 + i, 7}
		case Yellow:
			lane[i] = Cell{7, 13 - i}
		case Blue:
			lane[i] = Cell{13 - i, 7}
		}
	}
	return lane
}

// BasePads returns the resting cells of a color's tokens in base.
func BasePads(color Color) []Cell {
	pads := basePads[color]
	return pads[:]
}

// ColorGeometry is the per-color part of a Board snapshot
type ColorGeometry struct {
	Entry             int    `json:"entry"`
	HomeEntry         int    `json:"homeEntry"`
	HomeEntryRelSteps int    `json:"homeEntryRelSteps"`
	HomeLane          []Cell `json:"homeLane"`
	BasePads          []Cell `json:"basePads"`
}

// BoardGeometry is a serialisable snapshot of the board for clients
type BoardGeometry struct {
	Track   []Cell                  `json:"track"`
	Safe    []int                   `json:"safe"`
	Colors  []Color                 `json:"colors"`
	ByColor map[Color]ColorGeometry `json:"byColor"`
}

// Board returns the geometry snapshot.
func Board() BoardGeometry {
	b := BoardGeometry{
		Track:   append([]Cell(nil), TrackPath[:]...),
		Colors:  append([]Color(nil), Colors...),
		ByColor: make(map[Color]ColorGeometry, len(Colors)),
	}
	for i := 0; i < TrackLen; i++ {
		if SafeIndices[i] {
			b.Safe = append(b.Safe, i)
		}
	}
	for _, c := range Colors {
		b.ByColor[c] = ColorGeometry{
			Entry:             EntryIndex[c],
			HomeEntry:         HomeEntryIndex[c],
			HomeEntryRelSteps: HomeEntryRelSteps(c),
			HomeLane:          HomeLanePath(c),
			BasePads:          BasePads(c),
		}
	}
	return b
}
