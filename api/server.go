package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/ludo-server/game/engine"
	"github.com/wricardo/ludo-server/game/service"
	"github.com/wricardo/ludo-server/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	handler http.Handler
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	s.handler = withAccessLog(s.router)
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Room lifecycle
	api.HandleFunc("/rooms", s.handleCreateRoom).Methods("POST")
	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{code}", s.handleGetRoom).Methods("GET")
	api.HandleFunc("/rooms/{code}", s.handleDeleteRoom).Methods("DELETE")
	api.HandleFunc("/rooms/{code}/join", s.handleJoinRoom).Methods("POST")
	api.HandleFunc("/rooms/{code}/start", s.handleStartGame).Methods("POST")
	api.HandleFunc("/rooms/{code}/reconnect", s.handleReconnect).Methods("POST")
	api.HandleFunc("/rooms/{code}/leave", s.handleLeave).Methods("POST")

	// Turn actions
	api.HandleFunc("/rooms/{code}/roll", s.handleRoll).Methods("POST")
	api.HandleFunc("/rooms/{code}/moves", s.handleLegalMoves).Methods("GET")
	api.HandleFunc("/rooms/{code}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/rooms/{code}/history", s.handleGetHistory).Methods("GET")

	// Presets
	api.HandleFunc("/presets", s.handleListPresets).Methods("GET")
	api.HandleFunc("/presets", s.handleCreatePreset).Methods("POST")
	api.HandleFunc("/presets/{id}", s.handleGetPreset).Methods("GET")

	api.HandleFunc("/board", s.handleBoard).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Static files (if needed)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// withAccessLog attaches the global logger to each request and writes one
// access line per request.
func withAccessLog(next http.Handler) http.Handler {
	h := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		// Upgraded sockets report once the connection closes
		level := zerolog.DebugLevel
		if status >= http.StatusInternalServerError {
			level = zerolog.WarnLevel
		}
		hlog.FromRequest(r).WithLevel(level).
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(next)
	h = hlog.RemoteAddrHandler("ip")(h)
	h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)
	return hlog.NewHandler(log.Logger)(h)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrRoomNotFound), errors.Is(err, service.ErrPresetNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRoomFull), errors.Is(err, service.ErrGameStarted),
		errors.Is(err, service.ErrAlreadyRolled), errors.Is(err, service.ErrNotRolled):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotHost), errors.Is(err, service.ErrNotYourTurn),
		errors.Is(err, service.ErrPlayerNotInRoom):
		return http.StatusForbidden
	case errors.Is(err, service.ErrIllegalMove), errors.Is(err, service.ErrInvalidPreset),
		errors.Is(err, service.ErrNotEnoughPlayers), errors.Is(err, service.ErrNotPlaying):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	}
	respondError(w, status, err.Error())
}

// userRequest is the body of every turn and membership action
type userRequest struct {
	UserID       string `json:"user_id"`
	PlayerName   string `json:"player_name,omitempty"`
	ConnectionID string `json:"connection_id,omitempty"`
}

func decodeUser(w http.ResponseWriter, r *http.Request) (userRequest, bool) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return req, false
	}
	return req, true
}

// Room Handlers

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.PlayerName) == "" {
		respondError(w, http.StatusBadRequest, "player_name is required")
		return
	}

	room, err := s.service.CreateRoom(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, room)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := service.ListOptions{
		Sort:   query.Get("sort"),
		Order:  query.Get("order"),
		Status: query.Get("status"),
	}

	// Set defaults
	if opts.Sort != "created" {
		opts.Sort = "accessed"
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}

	rooms, err := s.service.ListRooms(r.Context(), opts)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count": len(rooms),
		"rooms": rooms,
		"sort":  opts.Sort,
		"order": opts.Order,
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.service.GetRoom(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, room)
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	if err := s.service.DeleteRoom(r.Context(), code); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Room %s deleted", code),
	})
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req service.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.PlayerName) == "" {
		respondError(w, http.StatusBadRequest, "player_name is required")
		return
	}

	room, err := s.service.JoinRoom(r.Context(), mux.Vars(r)["code"], req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, room)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUser(w, r)
	if !ok {
		return
	}

	room, err := s.service.StartGame(r.Context(), mux.Vars(r)["code"], req.UserID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, room)
}

func (s *Server) handleReconnect(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUser(w, r)
	if !ok {
		return
	}

	room, err := s.service.Reconnect(r.Context(), mux.Vars(r)["code"], req.UserID, req.ConnectionID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, room)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUser(w, r)
	if !ok {
		return
	}

	room, err := s.service.LeaveGame(r.Context(), mux.Vars(r)["code"], req.UserID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, room)
}

// Turn Handlers

func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeUser(w, r)
	if !ok {
		return
	}
	code := mux.Vars(r)["code"]

	result, err := s.service.RollDice(r.Context(), code, req.UserID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().
		Str("room", code).
		Int("dice", result.Dice).
		Int("moves", len(result.Moves)).
		Bool("forfeited", result.Forfeited).
		Msg("roll")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleLegalMoves(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	moves, err := s.service.LegalMoves(r.Context(), mux.Vars(r)["code"], userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"moves": moves})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req struct {
		UserID string          `json:"user_id"`
		Token  *int            `json:"token"`
		Type   engine.MoveType `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.Token == nil || req.Type == "" {
		respondError(w, http.StatusBadRequest, "user_id, token and type are required")
		return
	}

	result, err := s.service.MakeMove(r.Context(), code, req.UserID, *req.Token, req.Type)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	// Compact server log for observability
	hlog.FromRequest(r).Info().
		Str("room", code).
		Int("token", *req.Token).
		Str("type", string(req.Type)).
		Int("captures", len(result.Captures)).
		Bool("extraTurn", result.ExtraTurn).
		Bool("winner", result.Winner != nil).
		Msg("move")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if p, err := strconv.Atoi(query.Get("page")); err == nil && p > 0 {
		opts.Page = p
	}
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		opts.Limit = l
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetHistory(r.Context(), mux.Vars(r)["code"], opts)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Preset Handlers

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.service.ListPresets(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, presets)
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(mux.Vars(r)["id"], ".json")

	preset, err := s.service.LoadPreset(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, preset)
}

func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
		service.Preset
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Validate required fields
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Preset name is required")
		return
	}
	id := req.ID
	if id == "" {
		id = presetID(req.Name)
	}

	if err := s.service.SavePreset(r.Context(), id, &req.Preset); err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message":   "Preset saved successfully",
		"preset_id": id,
	})
}

// presetID derives a file-safe id from a display name
func presetID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, engine.Board())
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("room")))
	if code == "" {
		http.Error(w, "room parameter required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "websocket not available", http.StatusServiceUnavailable)
		return
	}

	// Verify room exists
	room, err := s.service.GetRoom(r.Context(), code)
	if err != nil {
		http.Error(w, "Invalid room", http.StatusNotFound)
		return
	}

	// Upgrade to WebSocket
	s.hub.ServeWS(w, r, room.Code)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
