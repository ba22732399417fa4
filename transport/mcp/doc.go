// Package mcp exposes the Ludo REST API as Model Context Protocol tools.
//
// Client is a thin proxy: every tool call becomes one REST request and the
// response is rendered as text for the agent, including an ASCII board.
//
// Tools:
//   - create_room, join_room, start_game, leave_game
//   - roll_dice, legal_moves, make_move
//   - room_state, list_rooms, room_history
//   - list_presets, board_geometry, game_instructions
//
// The server returned by GetMCPServer can be served over stdio
// (server.ServeStdio) or mounted on the HTTP server at /mcp.
package mcp
