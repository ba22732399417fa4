package engine

// LegalMovesForPlayer lists the moves player can make with dice, in token
// order. players is the full seat list and is only read for opponent
// occupancy of the entry square. Tokens are evaluated independently.
func LegalMovesForPlayer(player Player, players []Player, dice int) []Move {
	moves := []Move{}
	color := player.Color
	threshold := HomeEntryRelSteps(color)

	for idx, t := range player.Tokens {
		switch t.State {
		case TokenBase:
			if dice != DiceFaces {
				continue
			}
			if !entryBlocked(color, players) {
				moves = append(moves, Move{Token: idx, Type: MoveEnter})
			}

		case TokenTrack:
			nextRel := t.RelSteps + dice
			if nextRel < threshold {
				to := AbsoluteTrackIndex(color, nextRel)
				if !occupiedBySelf(player.Tokens, TokenTrack, to) {
					moves = append(moves, Move{Token: idx, Type: MoveAdvance, To: intPtr(to), NextRelSteps: intPtr(nextRel)})
				}
				continue
			}
			lanePos := nextRel - threshold
			if lanePos < HomeLen {
				if !occupiedBySelf(player.Tokens, TokenHome, lanePos) {
					moves = append(moves, Move{Token: idx, Type: MoveHomeLane, LaneTo: intPtr(lanePos)})
				}
			} else if lanePos == HomeLen {
				moves = append(moves, Move{Token: idx, Type: MoveFinish})
			}

		case TokenHome:
			if t.Pos == nil {
				continue
			}
			to := *t.Pos + dice
			if to < HomeLen {
				if !occupiedBySelf(player.Tokens, TokenHome, to) {
					moves = append(moves, Move{Token: idx, Type: MoveHomeAdvance, LaneTo: intPtr(to)})
				}
			} else if to == HomeLen {
				moves = append(moves, Move{Token: idx, Type: MoveFinish})
			}
		}
	}

	return moves
}

// entryBlocked reports whether an opponent token sits on color's entry square.
func entryBlocked(color Color, players []Player) bool {
	entry := EntryIndex[color]
	for _, p := range players {
		if p.Color == color {
			continue
		}
		if occupiedBySelf(p.Tokens, TokenTrack, entry) {
			return true
		}
	}
	return false
}

// occupiedBySelf reports whether any of tokens is in state at pos.
func occupiedBySelf(tokens []Token, state TokenState, pos int) bool {
	for _, t := range tokens {
		if t.State == state && t.Pos != nil && *t.Pos == pos {
			return true
		}
	}
	return false
}

// ApplyMove returns a copy of game with move applied for the player at
// playerIdx. The move must come from LegalMovesForPlayer for that player and
// the game's current die; it is not re-validated.
func ApplyMove(game *Game, playerIdx int, move Move) *Game {
	return ApplyMoveDetailed(game, playerIdx, move).Game
}

// ApplyMoveDetailed is ApplyMove that also reports the captures it made.
func ApplyMoveDetailed(game *Game, playerIdx int, move Move) Outcome {
	g := game.Clone()
	player := &g.Players[playerIdx]
	token := &player.Tokens[move.Token]

	var captures []Capture
	switch move.Type {
	case MoveEnter:
		entry := EntryIndex[player.Color]
		token.State = TokenTrack
		token.Pos = intPtr(entry)
		token.RelSteps = 0
		captures = captureAt(g, player.Color, entry)

	case MoveAdvance:
		token.Pos = intPtr(derefOr(move.To, AbsoluteTrackIndex(player.Color, token.RelSteps)))
		token.RelSteps = derefOr(move.NextRelSteps, token.RelSteps)
		captures = captureAt(g, player.Color, *token.Pos)

	case MoveHomeLane:
		token.State = TokenHome
		token.Pos = intPtr(derefOr(move.LaneTo, 0))

	case MoveHomeAdvance:
		token.Pos = intPtr(derefOr(move.LaneTo, 0))

	case MoveFinish:
		token.State = TokenDone
		token.Pos = intPtr(HomeLen)
		player.Finished++
	}

	rolledSix := g.DiceValue != nil && *g.DiceValue == DiceFaces
	g.ExtraTurn = rolledSix || len(captures) > 0
	g.Winner = GetWinner(g)

	return Outcome{Game: g, Captures: captures}
}

// captureAt sends every opponent token on a non-safe square back to base.
func captureAt(g *Game, mover Color, square int) []Capture {
	if IsSafeIndex(square) {
		return nil
	}
	var captures []Capture
	for pi := range g.Players {
		op := &g.Players[pi]
		if op.Color == mover {
			continue
		}
		for ti := range op.Tokens {
			ot := &op.Tokens[ti]
			if ot.State == TokenTrack && ot.Pos != nil && *ot.Pos == square {
				ot.State = TokenBase
				ot.Pos = nil
				ot.RelSteps = 0
				captures = append(captures, Capture{PlayerIdx: pi, Color: op.Color, Token: ti, Square: square})
			}
		}
	}
	return captures
}

func derefOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
