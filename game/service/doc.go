// Package service provides the room and turn logic of the Ludo server.
//
// The service package implements:
//   - Room lifecycle (create, join, start, reconnect, leave, delete)
//   - Turn orchestration on top of the pure rules engine
//   - The three-sixes forfeit and delayed no-move turn passing
//   - Per-room history with pagination
//   - Preset (room settings) management
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// SessionManager stores rooms. ConfigManager loads presets. Notifier pushes
// room updates to connected clients and Scheduler runs delayed turn
// transitions.
//
// Architecture:
//
// Each room is a Session holding the single authoritative engine.Game. All
// operations on a room run under that room's lock, so the engine's
// enumerate-then-apply contract holds even with concurrent requests. Engine
// calls return new values; the service swaps them in and publishes a copy.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithNotifier(hub))
//
//	room, err := gameService.CreateRoom(ctx, service.CreateRoomRequest{PlayerName: "Ana"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	roll, err := gameService.RollDice(ctx, room.Code, room.UserID)
//
// Errors:
//
// Failed preconditions are reported with the sentinel errors in errors.go
// (ErrRoomNotFound, ErrNotYourTurn, ...), possibly wrapped; compare them with
// errors.Is.
package service
