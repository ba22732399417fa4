package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wricardo/ludo-server/game/engine"
)

// DefaultPresetID names the built-in preset used when none is requested.
const DefaultPresetID = "classic"

// Preset bundles the per-room settings a room is created with.
type Preset struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	MinPlayers     int      `json:"min_players"`
	MaxPlayers     int      `json:"max_players"`
	TurnDelayMs    int      `json:"turn_delay_ms"`
	RoomCodeLength int      `json:"room_code_length"`
	Messages       Messages `json:"messages"`
}

// Messages are the status line templates. {name} is replaced by a player
// name and {dice} by the rolled value.
type Messages struct {
	Created     string `json:"created,omitempty"`
	Joined      string `json:"joined,omitempty"`
	Started     string `json:"started,omitempty"`
	Rolled      string `json:"rolled,omitempty"`
	NoMoves     string `json:"no_moves,omitempty"`
	ThreeSixes  string `json:"three_sixes,omitempty"`
	TurnToRoll  string `json:"turn_to_roll,omitempty"`
	Won         string `json:"won,omitempty"`
	Left        string `json:"left,omitempty"`
	LastPlayer  string `json:"last_player,omitempty"`
	Reconnected string `json:"reconnected,omitempty"`
}

// DefaultMessages returns the stock English templates.
func DefaultMessages() Messages {
	return Messages{
		Created:     "{name} created the game. Waiting for players...",
		Joined:      "{name} has joined the game.",
		Started:     "Game started! {name}'s turn to roll.",
		Rolled:      "{name} rolled a {dice}. Select a token to move.",
		NoMoves:     "{name} rolled a {dice} but has no moves.",
		ThreeSixes:  "{name} rolled three 6s. Turn forfeited!",
		TurnToRoll:  "{name}'s turn to roll.",
		Won:         "{name} has won the game!",
		Left:        "{name} has left the game.",
		LastPlayer:  "{name} wins as the last player remaining!",
		Reconnected: "{name} reconnected.",
	}
}

// DefaultPreset returns the built-in classic preset.
func DefaultPreset() *Preset {
	return &Preset{
		Name:           "Classic",
		Description:    "Standard four-player Ludo",
		MinPlayers:     engine.MinPlayers,
		MaxPlayers:     engine.MaxPlayers,
		TurnDelayMs:    1500,
		RoomCodeLength: 6,
		Messages:       DefaultMessages(),
	}
}

// ValidatePreset checks the numeric ranges of a preset.
func ValidatePreset(p *Preset) error {
	if p == nil {
		return fmt.Errorf("%w: preset is nil", ErrInvalidPreset)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPreset)
	}
	if p.MinPlayers < engine.MinPlayers || p.MinPlayers > engine.MaxPlayers {
		return fmt.Errorf("%w: min_players must be between %d and %d, got %d", ErrInvalidPreset, engine.MinPlayers, engine.MaxPlayers, p.MinPlayers)
	}
	if p.MaxPlayers < p.MinPlayers || p.MaxPlayers > engine.MaxPlayers {
		return fmt.Errorf("%w: max_players must be between %d and %d, got %d", ErrInvalidPreset, p.MinPlayers, engine.MaxPlayers, p.MaxPlayers)
	}
	if p.TurnDelayMs < 0 || p.TurnDelayMs > 10000 {
		return fmt.Errorf("%w: turn_delay_ms must be between 0 and 10000, got %d", ErrInvalidPreset, p.TurnDelayMs)
	}
	if p.RoomCodeLength < 4 || p.RoomCodeLength > 8 {
		return fmt.Errorf("%w: room_code_length must be between 4 and 8, got %d", ErrInvalidPreset, p.RoomCodeLength)
	}
	return nil
}

// TurnDelay is the pause before an automatic turn transition.
func (p *Preset) TurnDelay() time.Duration {
	return time.Duration(p.TurnDelayMs) * time.Millisecond
}

// WithDefaults fills empty message templates from DefaultMessages.
func (p *Preset) WithDefaults() *Preset {
	cp := *p
	d := DefaultMessages()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&cp.Messages.Created, d.Created)
	fill(&cp.Messages.Joined, d.Joined)
	fill(&cp.Messages.Started, d.Started)
	fill(&cp.Messages.Rolled, d.Rolled)
	fill(&cp.Messages.NoMoves, d.NoMoves)
	fill(&cp.Messages.ThreeSixes, d.ThreeSixes)
	fill(&cp.Messages.TurnToRoll, d.TurnToRoll)
	fill(&cp.Messages.Won, d.Won)
	fill(&cp.Messages.Left, d.Left)
	fill(&cp.Messages.LastPlayer, d.LastPlayer)
	fill(&cp.Messages.Reconnected, d.Reconnected)
	return &cp
}

func render(tmpl, name string, dice int) string {
	return strings.NewReplacer("{name}", name, "{dice}", strconv.Itoa(dice)).Replace(tmpl)
}
