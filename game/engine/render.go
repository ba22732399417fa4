package engine

import "strings"

// GridSize is the side of the square grid the board is drawn on.
const GridSize = 15

// Render draws the board as GridSize lines of text. Track squares are '.',
// safe squares '*', home lanes the lower-case color initial, base pads 'o'
// and the center '#'. Tokens are drawn with the upper-case color initial, or
// a digit when several share a cell. game may be nil for an empty board.
func Render(game *Game) []string {
	grid := make([][]byte, GridSize)
	for r := range grid {
		grid[r] = []byte(strings.Repeat(" ", GridSize))
	}
	set := func(c Cell, b byte) { grid[c.R][c.C] = b }

	for i, c := range TrackPath {
		if IsSafeIndex(i) {
			set(c, '*')
		} else {
			set(c, '.')
		}
	}
	for _, color := range Colors {
		for _, c := range HomeLanePath(color)[:HomeLen] {
			set(c, initial(color, false))
		}
		for _, c := range BasePads(color) {
			set(c, 'o')
		}
	}
	set(Cell{7, 7}, '#')

	if game != nil {
		counts := make(map[Cell]int)
		for _, p := range game.Players {
			for i, t := range p.Tokens {
				c, ok := tokenCell(p.Color, i, t)
				if !ok {
					continue
				}
				counts[c]++
				if counts[c] == 1 {
					set(c, initial(p.Color, true))
				} else {
					set(c, byte('0'+counts[c]))
				}
			}
		}
	}

	lines := make([]string, GridSize)
	for r, row := range grid {
		lines[r] = string(row)
	}
	return lines
}

// tokenCell locates a token on the grid. Finished tokens are not drawn.
func tokenCell(color Color, idx int, t Token) (Cell, bool) {
	switch t.State {
	case TokenBase:
		return BasePads(color)[idx%TokensPerPlayer], true
	case TokenTrack:
		if t.Pos == nil {
			return Cell{}, false
		}
		return TrackPath[Mod(*t.Pos, TrackLen)], true
	case TokenHome:
		if t.Pos == nil || *t.Pos < 0 || *t.Pos >= HomeLen {
			return Cell{}, false
		}
		return HomeLanePath(color)[*t.Pos], true
	}
	return Cell{}, false
}

func initial(c Color, upper bool) byte {
	b := string(c)[0]
	if upper {
		b -= 'a' - 'A'
	}
	return b
}
