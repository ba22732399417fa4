// Package engine implements the rules of Ludo.
//
// The engine is a set of pure functions over value types. It holds no state,
// performs no I/O and never mutates its inputs:
//   - LegalMovesForPlayer enumerates the moves available for a die roll
//   - ApplyMove returns a new Game with the move, captures and finishes resolved
//   - NextActivePlayerIdx computes whose turn comes next
//   - GetWinner reports the first player with every token home
//
// Board Geometry:
//
// The board is a closed track of 52 squares (TrackPath) shared by all colors,
// plus a private home lane of 7 cells per color. Each color enters the track at
// EntryIndex and leaves it for its home lane after HomeEntryIndex. Squares in
// SafeIndices are immune to capture.
//
// Usage:
//
//	red := engine.InitialPlayer(engine.Red, "Ana", "conn-1")
//	green := engine.InitialPlayer(engine.Green, "Bo", "conn-2")
//	game := &engine.Game{Players: []engine.Player{red, green}, Status: engine.StatusPlaying}
//
//	dice := 6
//	game.DiceValue = &dice
//	moves := engine.LegalMovesForPlayer(game.Players[0], game.Players, dice)
//	next := engine.ApplyMove(game, 0, moves[0])
//	game.ActiveIdx = engine.NextActivePlayerIdx(next, 0)
//
// Preconditions:
//
// ApplyMove trusts that the move came from LegalMovesForPlayer for the same
// player and die. Callers serialise enumeration and application per game.
package engine
