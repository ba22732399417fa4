package engine

// InitialPlayer builds a player with every token in base.
func InitialPlayer(color Color, name, id string) Player {
	if name == "" {
		name = "Player"
	}
	tokens := make([]Token, TokensPerPlayer)
	for i := range tokens {
		tokens[i] = Token{State: TokenBase}
	}
	return Player{
		ID:     id,
		Color:  color,
		Name:   name,
		Tokens: tokens,
	}
}

// NextActivePlayerIdx returns the seat that plays after current. An extra
// turn keeps current; otherwise seats with every token done are skipped. When
// no other seat is eligible the scan wraps back to current.
func NextActivePlayerIdx(game *Game, current int) int {
	if game.ExtraTurn {
		return current
	}
	n := len(game.Players)
	for i := 1; i <= n; i++ {
		next := (current + i) % n
		if game.Players[next].Finished < TokensPerPlayer {
			return next
		}
	}
	return current
}

// GetWinner returns a copy of the first player in seat order who finished
// all tokens, or nil.
func GetWinner(game *Game) *Player {
	for _, p := range game.Players {
		if p.Finished == TokensPerPlayer {
			w := p.clone()
			return &w
		}
	}
	return nil
}

// ActivePlayer returns the player whose turn it is, or nil when ActiveIdx is out of range.
func (g *Game) ActivePlayer() *Player {
	if g.ActiveIdx < 0 || g.ActiveIdx >= len(g.Players) {
		return nil
	}
	return &g.Players[g.ActiveIdx]
}

// Clone returns a deep copy that shares no memory with g.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	c.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		c.Players[i] = p.clone()
	}
	if g.DiceValue != nil {
		c.DiceValue = intPtr(*g.DiceValue)
	}
	if g.Winner != nil {
		w := g.Winner.clone()
		c.Winner = &w
	}
	return &c
}

func (p Player) clone() Player {
	c := p
	c.Tokens = make([]Token, len(p.Tokens))
	for i, t := range p.Tokens {
		c.Tokens[i] = t
		if t.Pos != nil {
			c.Tokens[i].Pos = intPtr(*t.Pos)
		}
	}
	return c
}
