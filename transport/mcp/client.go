package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/ludo-server/game/engine"
	"github.com/wricardo/ludo-server/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Ludo",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Ludo - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Bring all four of your tokens from base, around the track and up your home lane before anyone else.

AVAILABLE TOOLS:
- create_room: Open a room and take the red seat as host
- join_room: Take the next free seat in a lobby
- start_game: Start the game (host only)
- roll_dice: Roll for your turn
- legal_moves: List the moves for the rolled die
- make_move: Move one token (token index + move type from legal_moves)
- room_state: Board, players and whose turn it is
- list_rooms: List rooms
- leave_game: Leave a room
- room_history: View past rolls and moves
- list_presets: List room presets
- board_geometry: Track, safe squares and per-color entry squares
- game_instructions: Full rules

Always pass the same user_id for every call you make as one player.`),
	)

	c.registerTools()
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func numberProp(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

var (
	codeProp = stringProp("Room code")
	userProp = stringProp("Your stable player id")
)

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Rooms
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_room",
		Description: "Create a new room; you are seated as red and become the host",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"player_name": stringProp("Your display name"),
				"user_id":     stringProp("Your stable player id (optional, generated when missing)"),
				"preset_id":   stringProp("Preset to use (optional, defaults to classic)"),
			},
			Required: []string{"player_name"},
		},
	}, c.handleCreateRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_room",
		Description: "Join a room that has not started yet",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code":        codeProp,
				"player_name": stringProp("Your display name"),
				"user_id":     userProp,
			},
			Required: []string{"code", "player_name"},
		},
	}, c.handleJoinRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start the game. Only the host can start, with enough players seated",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"code": codeProp, "user_id": userProp},
			Required:   []string{"code", "user_id"},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_state",
		Description: "Show the board, the players and whose turn it is",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"code": codeProp},
			Required:   []string{"code"},
		},
	}, c.handleRoomState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List rooms, most recently used first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"status": stringProp("Filter by status: lobby, playing or finished (optional)"),
				"limit":  numberProp("Maximum number of rooms (optional)"),
			},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leave_game",
		Description: "Leave a room",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"code": codeProp, "user_id": userProp},
			Required:   []string{"code", "user_id"},
		},
	}, c.handleLeaveGame)

	// Turns
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "roll_dice",
		Description: "Roll the die for your turn. Returns the legal moves",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"code": codeProp, "user_id": userProp},
			Required:   []string{"code", "user_id"},
		},
	}, c.handleRollDice)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_moves",
		Description: "List the legal moves for the die you rolled",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"code": codeProp, "user_id": userProp},
			Required:   []string{"code", "user_id"},
		},
	}, c.handleLegalMoves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "make_move",
		Description: "Move one token. Use a token index and type exactly as listed by legal_moves",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code":    codeProp,
				"user_id": userProp,
				"token":   numberProp("Token index 0-3"),
				"type": map[string]any{
					"type":        "string",
					"description": "Move type",
					"enum":        []string{"enter", "advance", "home-lane", "home-advance", "finish"},
				},
			},
			Required: []string{"code", "user_id", "token", "type"},
		},
	}, c.handleMakeMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "room_history",
		Description: "View past rolls and moves with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code":  codeProp,
				"page":  numberProp("Page number (default 1)"),
				"limit": numberProp("Entries per page (default 20)"),
				"order": stringProp("asc or desc (default desc)"),
			},
			Required: []string{"code"},
		},
	}, c.handleRoomHistory)

	// Reference
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_presets",
		Description: "List room presets",
		InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}},
	}, c.handleListPresets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_geometry",
		Description: "Describe the track, safe squares and each color's entry and home-entry squares",
		InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}},
	}, c.handleBoardGeometry)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules",
		InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func roomPath(code string, parts ...string) string {
	p := "/api/rooms/" + url.PathEscape(strings.ToUpper(strings.TrimSpace(code)))
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// Tool handlers

func (c *Client) handleCreateRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := service.CreateRoomRequest{
		PlayerName: request.GetString("player_name", ""),
		UserID:     request.GetString("user_id", ""),
		PresetID:   request.GetString("preset_id", ""),
	}

	var room service.RoomInfo
	if err := c.apiCall(ctx, "POST", "/api/rooms", body, &room); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created room: %s\nPreset: %s\nYour user_id: %s\n\n%s",
		room.Code, room.PresetID, room.UserID, formatGame(room.Game))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleJoinRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := request.GetString("code", "")
	body := service.JoinRoomRequest{
		PlayerName: request.GetString("player_name", ""),
		UserID:     request.GetString("user_id", ""),
	}

	var room service.RoomInfo
	if err := c.apiCall(ctx, "POST", roomPath(code, "join"), body, &room); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Joined room: %s\nYour user_id: %s\n\n%s", room.Code, room.UserID, formatGame(room.Game))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) userAction(ctx context.Context, request mcp.CallToolRequest, action string) (*mcp.CallToolResult, error) {
	code := request.GetString("code", "")
	body := map[string]string{"user_id": request.GetString("user_id", "")}

	var room service.RoomInfo
	if err := c.apiCall(ctx, "POST", roomPath(code, action), body, &room); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if room.Deleted {
		return mcp.NewToolResultText(fmt.Sprintf("Room %s closed: nobody is left.", room.Code)), nil
	}
	return mcp.NewToolResultText(formatRoom(&room)), nil
}

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.userAction(ctx, request, "start")
}

func (c *Client) handleLeaveGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.userAction(ctx, request, "leave")
}

func (c *Client) handleRoomState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var room service.RoomInfo
	if err := c.apiCall(ctx, "GET", roomPath(request.GetString("code", "")), nil, &room); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatRoom(&room)), nil
}

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := url.Values{}
	if status := request.GetString("status", ""); status != "" {
		params.Set("status", status)
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	path := "/api/rooms"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var response struct {
		Count int                `json:"count"`
		Rooms []service.RoomInfo `json:"rooms"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rooms (%d):\n\n", response.Count)
	for _, r := range response.Rooms {
		status, players := "unknown", 0
		if r.Game != nil {
			status, players = string(r.Game.Status), len(r.Game.Players)
		}
		fmt.Fprintf(&b, "- %s (%s, %d players, preset %s, created %s)\n",
			r.Code, status, players, r.PresetID, r.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleRollDice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := request.GetString("code", "")
	body := map[string]string{"user_id": request.GetString("user_id", "")}

	var result service.RollResult
	if err := c.apiCall(ctx, "POST", roomPath(code, "roll"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatRollResult(&result)), nil
}

func (c *Client) handleLegalMoves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := request.GetString("code", "")
	path := roomPath(code, "moves") + "?user_id=" + url.QueryEscape(request.GetString("user_id", ""))

	var response struct {
		Moves []engine.Move `json:"moves"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMoves(response.Moves)), nil
}

func (c *Client) handleMakeMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := request.GetString("code", "")
	body := map[string]any{
		"user_id": request.GetString("user_id", ""),
		"token":   request.GetInt("token", -1),
		"type":    request.GetString("type", ""),
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", roomPath(code, "move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleRoomHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		params.Set("order", order)
	}
	path := roomPath(request.GetString("code", ""), "history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var presets []service.PresetInfo
	if err := c.apiCall(ctx, "GET", "/api/presets", nil, &presets); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Presets:\n\n")
	for _, p := range presets {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Players: %d-%d, Turn delay: %dms\n\n",
			p.Name, p.PresetID, p.Description, p.MinPlayers, p.MaxPlayers, p.TurnDelayMs)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleBoardGeometry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var board engine.BoardGeometry
	if err := c.apiCall(ctx, "GET", "/api/board", nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBoard(&board)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Ludo - Complete Instructions

GAME OBJECTIVE:
Be the first player to bring all four tokens home.

SETUP:
• 2 to 4 players, seated red, green, yellow, blue in joining order
• Every token starts in its color's base
• The host (room creator) starts the game

BOARD:
• A shared loop of 52 track squares, numbered 0-51
• Entry squares: red 1, green 14, yellow 27, blue 40
• Safe squares: 1, 9, 14, 22, 27, 35, 40, 48 (no captures there)
• After 51 steps around the loop a token turns into its private 6-square home lane

TURN:
1. Roll the die (roll_dice)
2. Pick one of the listed legal moves (make_move with token index and type)

MOVE TYPES:
• enter: a 6 brings a base token onto your entry square
• advance: move along the track
• home-lane: leave the track into your home lane
• home-advance: move further up the home lane
• finish: land exactly on the end of the home lane

RULES:
• You may not land on a square already holding one of your own tokens
• Landing on an opponent outside a safe square sends it back to base
• Overshooting the end of the home lane is not allowed
• Rolling a 6 or capturing gives you another turn
• Three 6s in a row forfeits the turn
• With no legal move the turn passes after a short pause

BOARD LEGEND (room_state):
• . track   * safe square   r/g/y/b home lanes   o base pad   # center
• R/G/Y/B tokens, a digit when several tokens share a square

VICTORY CONDITIONS:
The first player with four finished tokens wins. If everyone else leaves
during play, the last connected player wins.

Good luck!`

// Formatting helpers

func formatRoom(room *service.RoomInfo) string {
	return fmt.Sprintf("Room: %s\nPreset: %s\nCreated: %s\n\n%s",
		room.Code, room.PresetID,
		room.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGame(room.Game))
}

func formatGame(g *engine.Game) string {
	if g == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s", g.Status)
	if g.Status == engine.StatusPlaying && g.ActiveIdx < len(g.Players) {
		fmt.Fprintf(&b, " | Turn: %s (%s)", g.Players[g.ActiveIdx].Name, g.Players[g.ActiveIdx].Color)
		if g.DiceValue != nil {
			fmt.Fprintf(&b, " | Dice: %d", *g.DiceValue)
		}
		if g.SixChain > 0 {
			fmt.Fprintf(&b, " | Sixes: %d", g.SixChain)
		}
	}
	b.WriteString("\n\nPlayers:\n")

	for i, p := range g.Players {
		marker := " "
		if g.Status == engine.StatusPlaying && i == g.ActiveIdx {
			marker = ">"
		}
		flags := ""
		if p.UserID != "" && p.UserID == g.HostID {
			flags += " [host]"
		}
		if p.Disconnected {
			flags += " [left]"
		}
		fmt.Fprintf(&b, "%s %-6s %s%s - finished %d/%d\n", marker, p.Color, p.Name, flags, p.Finished, engine.TokensPerPlayer)
		for ti, t := range p.Tokens {
			fmt.Fprintf(&b, "    token %d: %s\n", ti, describeToken(t))
		}
	}

	b.WriteString("\n")
	for _, line := range engine.Render(g) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if g.Winner != nil {
		fmt.Fprintf(&b, "\n🎉 WINNER: %s (%s)\n", g.Winner.Name, g.Winner.Color)
	}
	if g.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", g.Message)
	}
	return b.String()
}

func describeToken(t engine.Token) string {
	switch t.State {
	case engine.TokenTrack:
		if t.Pos != nil {
			return fmt.Sprintf("track square %d (%d steps)", *t.Pos, t.RelSteps)
		}
	case engine.TokenHome:
		if t.Pos != nil {
			return fmt.Sprintf("home lane %d/%d", *t.Pos+1, engine.HomeLen)
		}
	case engine.TokenDone:
		return "finished"
	}
	return string(t.State)
}

func formatMoves(moves []engine.Move) string {
	if len(moves) == 0 {
		return "No legal moves."
	}
	var b strings.Builder
	b.WriteString("Legal moves:\n")
	for _, m := range moves {
		fmt.Fprintf(&b, "- token %d: %s", m.Token, m.Type)
		switch {
		case m.To != nil:
			fmt.Fprintf(&b, " to square %d", *m.To)
		case m.LaneTo != nil:
			fmt.Fprintf(&b, " to lane %d", *m.LaneTo)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatRollResult(r *service.RollResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎲 Rolled %d\n", r.Dice)
	switch {
	case r.Forfeited:
		b.WriteString("Three 6s in a row: turn forfeited.\n")
	case r.NoMoves:
		b.WriteString("No legal moves: the turn passes.\n")
	default:
		b.WriteString(formatMoves(r.Moves))
	}
	b.WriteString("\n" + formatGame(r.Game))
	return b.String()
}

func formatMoveResult(r *service.MoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Token %d: %s\n", r.Move.Token, r.Move.Type)
	for _, c := range r.Captures {
		fmt.Fprintf(&b, "Captured %s token %d on square %d\n", c.Color, c.Token, c.Square)
	}
	if r.ExtraTurn && r.Winner == nil {
		b.WriteString("Extra turn: roll again.\n")
	}
	b.WriteString("\n" + formatGame(r.Game))
	return b.String()
}

func formatHistory(h *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "History (page %d/%d, %d entries):\n", h.Page, h.TotalPages, h.TotalEntries)
	for _, e := range h.Entries {
		fmt.Fprintf(&b, "#%d %s %s", e.Seq, e.Color, e.Action)
		if e.Dice > 0 {
			fmt.Fprintf(&b, " dice=%d", e.Dice)
		}
		if e.Move != nil {
			fmt.Fprintf(&b, " token=%d %s", e.Move.Token, e.Move.Type)
		}
		if len(e.Captures) > 0 {
			fmt.Fprintf(&b, " captures=%d", len(e.Captures))
		}
		if e.Message != "" {
			fmt.Fprintf(&b, " (%s)", e.Message)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatBoard(board *engine.BoardGeometry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Track squares: %d\nSafe squares: %v\n\n", len(board.Track), board.Safe)
	for _, color := range board.Colors {
		g := board.ByColor[color]
		fmt.Fprintf(&b, "%-6s entry %2d, home entry %2d, %d steps to the lane\n",
			color, g.Entry, g.HomeEntry, g.HomeEntryRelSteps)
	}
	return b.String()
}
