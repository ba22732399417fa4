// Package api provides the HTTP REST API for the Ludo server.
//
// Endpoints:
//
// Rooms:
//   - POST   /api/rooms                 - Create a room, caller becomes host
//   - GET    /api/rooms                 - List rooms (sort, order, limit, status)
//   - GET    /api/rooms/{code}          - Get a room
//   - DELETE /api/rooms/{code}          - Delete a room
//   - POST   /api/rooms/{code}/join     - Take the next free seat
//   - POST   /api/rooms/{code}/start    - Start the game (host only)
//   - POST   /api/rooms/{code}/reconnect
//   - POST   /api/rooms/{code}/leave
//
// Turns:
//   - POST /api/rooms/{code}/roll       - Roll for the active player
//   - GET  /api/rooms/{code}/moves      - Legal moves for the rolled die
//   - POST /api/rooms/{code}/move       - Apply one legal move
//   - GET  /api/rooms/{code}/history    - Paginated roll and move history
//
// Presets:
//   - GET  /api/presets, GET /api/presets/{id}, POST /api/presets
//
// Other:
//   - GET /api/board - Board geometry for renderers
//   - GET /health
//   - GET /ws?room={code} - WebSocket upgrade
//
// Service errors are mapped to status codes: unknown rooms and presets are
// 404, seat and dice state conflicts 409, acting for someone else 403, and
// rule violations 400. Every request is logged through zerolog's hlog
// handlers with a request id.
package api
