package service

import (
	"math/rand/v2"
	"sync"

	"github.com/wricardo/ludo-server/game/engine"
)

// DiceRoller produces die faces in 1..6.
type DiceRoller interface {
	Roll() int
}

// DiceFunc adapts a function to DiceRoller.
type DiceFunc func() int

func (f DiceFunc) Roll() int { return f() }

// RandomDice rolls a fair die.
var RandomDice DiceRoller = DiceFunc(func() int {
	return rand.IntN(engine.DiceFaces) + 1
})

// SequenceDice replays fixed values and then repeats the last one.
type SequenceDice struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewSequenceDice returns a roller that yields values in order
func NewSequenceDice(values ...int) *SequenceDice {
	return &SequenceDice{values: values}
}

func (d *SequenceDice) Roll() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.values) == 0 {
		return 1
	}
	if d.next >= len(d.values) {
		return d.values[len(d.values)-1]
	}
	v := d.values[d.next]
	d.next++
	return v
}
