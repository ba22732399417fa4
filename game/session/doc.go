// Package session is the room registry of the Ludo server.
//
// Manager owns the map from room code to *service.Session. Codes are
// upper-case strings drawn from crypto/rand with the length configured by
// the room's preset, and every lookup is case-insensitive.
//
// Persistence:
//
// A Manager built with NewManagerWithPersistence mirrors every created or
// saved room to a SessionPersistence and loads rooms back on a cache miss.
// Two stores are provided:
//
//   - FilePersistence writes one indented JSON document per room.
//   - SQLitePersistence keeps the same document in a SQLite table.
//
// Both also implement Purger so long-idle rooms can be dropped from storage.
//
// Concurrency:
//
// The registry map is guarded by the manager's own lock. Room state is
// guarded by the room's lock (Session.Lock), which callers hold across a
// mutation and the following Save. The manager never takes a room lock while
// holding the registry lock.
//
// Usage:
//
//	manager := session.NewManagerWithPersistence(store)
//	room, err := manager.Create("classic", preset)
//	if err != nil {
//		return err
//	}
//	room, err = manager.Get(room.ID)
package session
