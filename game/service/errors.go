package service

import "errors"

// Errors reported by GameService. Transports map them with errors.Is.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrGameStarted      = errors.New("game has already started")
	ErrNotHost          = errors.New("only the host can start the game")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrNotPlaying       = errors.New("game is not in progress")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrPlayerNotInRoom  = errors.New("player is not in this room")
	ErrAlreadyRolled    = errors.New("dice already rolled")
	ErrNotRolled        = errors.New("roll the dice first")
	ErrIllegalMove      = errors.New("illegal move")
	ErrPresetNotFound   = errors.New("preset not found")
	ErrInvalidPreset    = errors.New("invalid preset")
)
