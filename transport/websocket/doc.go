// Package websocket provides the real-time transport for Ludo rooms.
//
// A central Hub keeps the set of connections per room code. Each connection
// has a read pump and a write pump goroutine; the hub's Run loop owns
// registration and fan-out.
//
// Message Protocol:
//
// Outgoing frames are one JSON envelope each:
//
//	{"room_id": "K3XQ7A", "game": {...}, "event": "dice_rolled", "data": {...}}
//
// Incoming frames carry an action for the game service:
//
//	{"action": "roll", "user_id": "..."}
//	{"action": "move", "user_id": "...", "token": 2, "type": "advance"}
//	{"action": "start" | "leave" | "reconnect", "user_id": "..."}
//
// The sender gets an "ack" or "error" envelope. Everybody in the room sees
// the resulting state through the service's notifier, which the Hub
// implements with BroadcastRoom and BroadcastEvent.
package websocket
