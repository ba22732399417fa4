package engine

// Mod is the non-negative remainder of a divided by n.
func Mod(a, n int) int {
	return ((a % n) + n) % n
}

// IsSafeIndex reports whether a track square is immune to capture.
func IsSafeIndex(idx int) bool {
	return SafeIndices[idx]
}

// AbsoluteTrackIndex converts a color's relative step count to a track index.
func AbsoluteTrackIndex(color Color, relSteps int) int {
	return Mod(EntryIndex[color]+relSteps, TrackLen)
}

// HomeEntryRelSteps is the number of track squares a color traverses before
// turning into its home lane.
func HomeEntryRelSteps(color Color) int {
	return Mod(HomeEntryIndex[color]-EntryIndex[color], TrackLen) + 1
}

// FindMove returns the move in moves for the given token and type.
func FindMove(moves []Move, token int, moveType MoveType) (Move, bool) {
	for _, m := range moves {
		if m.Token == token && m.Type == moveType {
			return m, true
		}
	}
	return Move{}, false
}

// CountTokens counts a player's tokens in the given state
func CountTokens(p Player, state TokenState) int {
	n := 0
	for _, t := range p.Tokens {
		if t.State == state {
			n++
		}
	}
	return n
}

func intPtr(v int) *int {
	return &v
}
