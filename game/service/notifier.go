package service

import "github.com/wricardo/ludo-server/game/engine"

// Notifier publishes room state to connected clients.
type Notifier interface {
	BroadcastRoom(roomID string, game *engine.Game)
	BroadcastEvent(roomID string, game *engine.Game, event string, data any)
}

type nopNotifier struct{}

func (nopNotifier) BroadcastRoom(string, *engine.Game)                {}
func (nopNotifier) BroadcastEvent(string, *engine.Game, string, any) {}
