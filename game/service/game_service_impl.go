package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/ludo-server/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	notifier  Notifier
	scheduler Scheduler
	dice      DiceRoller
}

// Option customises a GameService
type Option func(*gameServiceImpl)

// WithNotifier publishes room updates through n.
func WithNotifier(n Notifier) Option {
	return func(s *gameServiceImpl) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithScheduler replaces the timer used for delayed turn transitions.
func WithScheduler(sch Scheduler) Option {
	return func(s *gameServiceImpl) {
		if sch != nil {
			s.scheduler = sch
		}
	}
}

// WithDiceRoller replaces the random die.
func WithDiceRoller(d DiceRoller) Option {
	return func(s *gameServiceImpl) {
		if d != nil {
			s.dice = d
		}
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions:  sessions,
		configs:   configs,
		notifier:  nopNotifier{},
		scheduler: NewTimerScheduler(),
		dice:      RandomDice,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRoom opens a lobby with the caller seated as red and host
func (s *gameServiceImpl) CreateRoom(ctx context.Context, req CreateRoomRequest) (*RoomInfo, error) {
	presetID := req.PresetID
	var preset *Preset
	if presetID == "" {
		presetID = DefaultPresetID
		preset = s.configs.GetDefault()
	} else {
		p, err := s.configs.LoadPreset(presetID)
		if err != nil {
			return nil, fmt.Errorf("failed to load preset %s: %w", presetID, err)
		}
		preset = p
	}
	preset = preset.WithDefaults()

	sess, err := s.sessions.Create(presetID, preset)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	sess.Lock()
	defer sess.Unlock()

	userID := req.UserID
	if userID == "" {
		userID = uuid.NewString()
	}
	p := engine.InitialPlayer(engine.Colors[0], req.PlayerName, connOr(req.ConnectionID, userID))
	p.UserID = userID

	g := sess.Game
	g.Players = []engine.Player{p}
	g.HostID = userID
	g.Status = engine.StatusLobby
	g.Message = render(sess.Preset.Messages.Created, p.Name, 0)

	s.persist(sess)
	s.notifier.BroadcastEvent(sess.ID, g.Clone(), EventRoomCreated, map[string]any{"player": p.Name})

	log.Info().Str("room", sess.ID).Str("preset", presetID).Str("host", userID).Msg("room created")

	return s.info(sess, userID), nil
}

// JoinRoom seats the caller in a lobby. A caller already seated is reconnected instead.
func (s *gameServiceImpl) JoinRoom(ctx context.Context, code string, req JoinRoomRequest) (*RoomInfo, error) {
	sess, err := s.lockRoom(code)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	g := sess.Game
	if req.UserID != "" {
		if idx := playerIndex(g, req.UserID); idx >= 0 {
			s.reconnect(sess, idx, req.ConnectionID)
			return s.info(sess, req.UserID), nil
		}
	}

	if len(g.Players) >= sess.Preset.MaxPlayers || len(g.Players) >= engine.MaxPlayers {
		return nil, ErrRoomFull
	}
	if g.Status != engine.StatusLobby {
		return nil, ErrGameStarted
	}

	userID := req.UserID
	if userID == "" {
		userID = uuid.NewString()
	}
	p := engine.InitialPlayer(engine.Colors[len(g.Players)], req.PlayerName, connOr(req.ConnectionID, userID))
	p.UserID = userID
	g.Players = append(g.Players, p)
	if g.HostID == "" {
		g.HostID = userID
	}
	g.Message = render(sess.Preset.Messages.Joined, p.Name, 0)

	s.touch(sess)
	s.notifier.BroadcastEvent(sess.ID, g.Clone(), EventPlayerJoined, map[string]any{
		"player": p.Name,
		"color":  p.Color,
	})

	return s.info(sess, userID), nil
}

// StartGame moves a lobby into play. Only the host may start it.
func (s *gameServiceImpl) StartGame(ctx context.Context, code, userID string) (*RoomInfo, error) {
	sess, err := s.lockRoom(code)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	g := sess.Game
	if g.HostID != userID {
		return nil, ErrNotHost
	}
	if g.Status != engine.StatusLobby {
		return nil, ErrGameStarted
	}
	if n := connectedCount(g); n < sess.Preset.MinPlayers {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughPlayers, sess.Preset.MinPlayers, n)
	}

	g.Status = engine.StatusPlaying
	g.ActiveIdx = 0
	if g.Players[0].Disconnected {
		g.ActiveIdx = nextSeat(g, 0)
	}
	g.DiceValue = nil
	g.SixChain = 0
	g.ExtraTurn = false
	g.Message = render(sess.Preset.Messages.Started, g.Players[g.ActiveIdx].Name, 0)
	sess.turn++

	s.touch(sess)
	s.notifier.BroadcastEvent(sess.ID, g.Clone(), EventGameStarted, nil)

	return s.info(sess, userID), nil
}

// RollDice rolls for the active player and resolves the three-sixes and
// no-move cases.
func (s *gameServiceImpl) RollDice(ctx context.Context, code, userID string) (*RollResult, error) {
	sess, err := s.lockRoom(code)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	g := sess.Game
	idx, err := activeSeat(g, userID)
	if err != nil {
		return nil, err
	}
	if g.DiceValue != nil {
		return nil, ErrAlreadyRolled
	}

	dice := s.dice.Roll()
	g.DiceValue = &dice
	if dice == engine.DiceFaces {
		g.SixChain++
	} else {
		g.SixChain = 0
	}

	player := g.Players[idx]
	msgs := sess.Preset.Messages
	result := &RollResult{Dice: dice, SixChain: g.SixChain, Moves: []engine.Move{}}

	if g.SixChain >= engine.MaxSixChain {
		result.Forfeited = true
		g.Message = render(msgs.ThreeSixes, player.Name, dice)
		g.ExtraTurn = false
		g.ActiveIdx = nextSeat(g, idx)
		g.DiceValue = nil
		g.SixChain = 0
		sess.turn++
		s.record(sess, HistoryEntry{Action: ActionForfeit, UserID: userID, Color: player.Color, Dice: dice, Message: g.Message})

		s.later(sess, func(g *engine.Game) {
			g.Message = render(msgs.TurnToRoll, g.Players[g.ActiveIdx].Name, 0)
		})
		s.notifier.BroadcastEvent(sess.ID, g.Clone(), EventTurnForfeited, map[string]any{"dice": dice, "player": player.Name})
	} else {
		moves := engine.LegalMovesForPlayer(player, g.Players, dice)
		result.Moves = moves
		s.record(sess, HistoryEntry{Action: ActionRoll, UserID: userID, Color: player.Color, Dice: dice})

		if len(moves) == 0 {
			result.NoMoves = true
			g.Message = render(msgs.NoMoves, player.Name, dice)
			s.notifier.BroadcastEvent(sess.ID, g.Clone(), EventDiceRolled, map[string]any{"dice": dice, "moves": moves})

			s.later(sess, func(g *engine.Game) {
				s.passTurn(sess, player.Color, dice)
			})
		} else {
			g.Message = render(msgs.Rolled, player.Name, dice)
			s.notifier.BroadcastEvent(sess.ID, g.Clone(), EventDiceRolled, map[string]any{"dice": dice, "moves": moves})
		}
	}

	s.touch(sess)

	log.Debug().Str("room", sess.ID).Str("color", string(player.Color)).Int("dice", dice).Int("sixChain", result.SixChain).Msg("dice rolled")

	result.Game = g.Clone()
	return result, nil
}

// LegalMoves lists the moves available to the active player for the rolled die
func (s *gameServiceImpl) LegalMoves(ctx context.Context, code, userID string) ([]engine.Move, error) {
	sess, err := s.lockRoom(code)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	g := sess.Game
	idx, err := activeSeat(g, userID)
	if err != nil {
		return nil, err
	}
	if g.DiceValue == nil {
		return nil, ErrNotRolled
	}
	return engine.LegalMovesForPlayer(g.Players[idx], g.Players, *g.DiceValue), nil
}

// MakeMove applies one of the current legal moves and advances the turn
func (s *gameServiceImpl) MakeMove(ctx context.Context, code, userID string, token int, moveType engine.MoveType) (*MoveResult, error) {
	sess, err := s.lockRoom(code)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	g := sess.Game
	idx, err := activeSeat(g, userID)
	if err != nil {
		return nil, err
	}
	if g.DiceValue == nil {
		return nil, ErrNotRolled
	}

	moves := engine.LegalMovesForPlayer(g.Players[idx], g.Players, *g.DiceValue)
	move, ok := engine.FindMove(moves, token, moveType)
	if !ok {
		return nil, fmt.Errorf("%w: token %d cannot %s with a %d", ErrIllegalMove, token, moveType, *g.DiceValue)
	}

	out := engine.ApplyMoveDetailed(g, idx, move)
	ng := out.Game
	result := &MoveResult{Move: move, Captures: out.Captures, ExtraTurn: ng.ExtraTurn}
	msgs := sess.Preset.Messages
	mover := ng.Players[idx]

	s.record(sess, HistoryEntry{
		Action:   ActionMove,
		UserID:   userID,
		Color:    mover.Color,
		Dice:     *g.DiceValue,
		Move:     &move,
		Captures: out.Captures,
	})

	if ng.Winner != nil {
		ng.Status = engine.StatusFinished
		ng.Message = render(msgs.Won, ng.Winner.Name, 0)
		s.cancelPending(sess)
		result.Winner = ng.Winner
	} else {
		ng.ActiveIdx = nextSeat(ng, idx)
		ng.DiceValue = nil
		if !ng.ExtraTurn {
			ng.SixChain = 0
		}
		ng.ExtraTurn = false
		ng.Message = render(msgs.TurnToRoll, ng.Players[ng.ActiveIdx].Name, 0)
	}
	sess.Game = ng
	sess.turn++

	s.touch(sess)

	s.notifier.BroadcastEvent(sess.ID, ng.Clone(), EventTokenMoved, map[string]any{"color": mover.Color, "move": move})
	for _, c := range out.Captures {
		s.notifier.BroadcastEvent(sess.ID, ng.Clone(), EventTokenCaptured, c)
	}
	if ng.Winner != nil {
		s.notifier.BroadcastEvent(sess.ID, ng.Clone(), EventGameOver, map[string]any{"winner": ng.Winner.Name, "color": ng.Winner.Color})
		log.Info().Str("room", sess.ID).Str("winner", ng.Winner.Name).Msg("game finished")
	} else {
		s.notifier.BroadcastEvent(sess.ID, ng.Clone(), EventTurnChanged, map[string]any{"activeIdx": ng.ActiveIdx})
	}

	result.Game = ng.Clone()
	return result, nil
}

// Reconnect marks a returning player as connected and records their new
// connection handle. Unknown users get the room state without changes.
func (s *gameServiceImpl) Reconnect(ctx context.Context, code, userID, connID string) (*RoomInfo, error) {
	sess, err := s.lockRoom(code)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	if idx := playerIndex(sess.Game, userID); idx >= 0 {
		s.reconnect(sess, idx, connID)
		return s.info(sess, userID), nil
	}
	return s.info(sess, ""), nil
}

// LeaveGame disconnects a player. The last connected player during play
// wins; a room nobody is connected to is deleted.
func (s *gameServiceImpl) LeaveGame(ctx context.Context, code, userID string) (*RoomInfo, error) {
	sess, err := s.lockRoom(code)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	g := sess.Game
	idx := playerIndex(g, userID)
	if idx < 0 {
		return nil, ErrPlayerNotInRoom
	}
	if g.Players[idx].Disconnected {
		return s.info(sess, userID), nil
	}

	msgs := sess.Preset.Messages
	leaver := &g.Players[idx]
	leaver.Disconnected = true
	g.Message = render(msgs.Left, leaver.Name, 0)

	if g.HostID == userID {
		g.HostID = ""
		for _, p := range g.Players {
			if !p.Disconnected {
				g.HostID = p.UserID
				break
			}
		}
	}

	if g.HostID == "" {
		if err := s.teardown(sess); err != nil {
			return nil, err
		}
		log.Info().Str("room", sess.ID).Msg("room deleted, every player left")
		info := s.info(sess, userID)
		info.Deleted = true
		return info, nil
	}

	if g.Status == engine.StatusPlaying {
		if connectedCount(g) == 1 {
			snapshot := g.Clone()
			for i := range snapshot.Players {
				if !snapshot.Players[i].Disconnected {
					g.Winner = &snapshot.Players[i]
					break
				}
			}
			g.Status = engine.StatusFinished
			g.Message = render(msgs.LastPlayer, g.Winner.Name, 0)
			s.cancelPending(sess)
			sess.turn++
		} else if idx == g.ActiveIdx {
			g.ExtraTurn = false
			g.ActiveIdx = nextSeat(g, idx)
			g.DiceValue = nil
			g.SixChain = 0
			s.cancelPending(sess)
			sess.turn++
		}
	}

	s.touch(sess)
	s.notifier.BroadcastEvent(sess.ID, g.Clone(), EventPlayerLeft, map[string]any{"player": leaver.Name, "color": leaver.Color})
	if g.Status == engine.StatusFinished && g.Winner != nil {
		s.notifier.BroadcastEvent(sess.ID, g.Clone(), EventGameOver, map[string]any{"winner": g.Winner.Name, "color": g.Winner.Color})
	}

	return s.info(sess, userID), nil
}

// GetRoom retrieves room information
func (s *gameServiceImpl) GetRoom(ctx context.Context, code string) (*RoomInfo, error) {
	sess, err := s.lockRoom(code)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	if err := s.sessions.UpdateLastAccessed(sess.ID); err != nil {
		log.Debug().Err(err).Str("room", sess.ID).Msg("update last accessed")
	}
	return s.info(sess, ""), nil
}

// ListRooms returns all active rooms
func (s *gameServiceImpl) ListRooms(ctx context.Context, opts ListOptions) ([]*RoomInfo, error) {
	sessions := s.sessions.List()
	result := make([]*RoomInfo, 0, len(sessions))

	for _, sess := range sessions {
		sess.Lock()
		if !sess.closed {
			info := s.info(sess, "")
			if opts.Status == "" || string(info.Game.Status) == opts.Status {
				result = append(result, info)
			}
		}
		sess.Unlock()
	}

	key := func(r *RoomInfo) time.Time { return r.CreatedAt }
	if opts.Sort == "accessed" {
		key = func(r *RoomInfo) time.Time { return r.LastAccessedAt }
	}
	slices.SortFunc(result, func(a, b *RoomInfo) int {
		c := key(a).Compare(key(b))
		if c == 0 {
			c = cmp.Compare(a.Code, b.Code)
		}
		if opts.Order == "asc" {
			return c
		}
		return -c
	})

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

// DeleteRoom removes a room and cancels its pending transitions
func (s *gameServiceImpl) DeleteRoom(ctx context.Context, code string) error {
	sess, err := s.lockRoom(code)
	if err != nil {
		return err
	}
	defer sess.Unlock()

	return s.teardown(sess)
}

// GetHistory returns paginated room history
func (s *gameServiceImpl) GetHistory(ctx context.Context, code string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.lockRoom(code)
	if err != nil {
		return nil, err
	}
	history := slices.Clone(sess.History)
	sess.Unlock()

	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	entries := []HistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				entries = append(entries, history[i])
			}
		} else {
			entries = append(entries, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Entries:      entries,
		TotalEntries: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// ListPresets returns available presets
func (s *gameServiceImpl) ListPresets(ctx context.Context) ([]*PresetInfo, error) {
	return s.configs.ListPresets()
}

// LoadPreset loads a specific preset
func (s *gameServiceImpl) LoadPreset(ctx context.Context, id string) (*Preset, error) {
	return s.configs.LoadPreset(id)
}

// SavePreset validates and stores a preset
func (s *gameServiceImpl) SavePreset(ctx context.Context, id string, preset *Preset) error {
	if err := ValidatePreset(preset); err != nil {
		return err
	}
	return s.configs.SavePreset(id, preset)
}

// Close cancels every pending turn transition
func (s *gameServiceImpl) Close() {
	s.scheduler.Stop()
}

// lockRoom fetches a room and takes its lock. The caller must Unlock it.
func (s *gameServiceImpl) lockRoom(code string) (*Session, error) {
	sess, err := s.sessions.Get(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	sess.Lock()
	if sess.closed {
		sess.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	s.resumeStalledPass(sess)
	return sess, nil
}

func (s *gameServiceImpl) cancelPending(sess *Session) {
	s.scheduler.Cancel(sess.ID)
	sess.pending = false
}

// passTurn hands the turn on after a roll without legal moves. A 6 keeps
// the same player and six chain.
func (s *gameServiceImpl) passTurn(sess *Session, color engine.Color, dice int) {
	g := sess.Game
	keep := dice == engine.DiceFaces
	g.ExtraTurn = keep
	g.ActiveIdx = nextSeat(g, g.ActiveIdx)
	g.DiceValue = nil
	if !keep {
		g.SixChain = 0
	}
	g.ExtraTurn = false
	g.Message = render(sess.Preset.Messages.TurnToRoll, g.Players[g.ActiveIdx].Name, 0)
	sess.turn++
	s.record(sess, HistoryEntry{Action: ActionPass, Color: color, Dice: dice, Message: g.Message})
}

// resumeStalledPass applies a no-move pass whose timer was lost, which
// happens when a room is reloaded from the store while the die of an
// unplayable roll is still showing. The caller holds the lock.
func (s *gameServiceImpl) resumeStalledPass(sess *Session) {
	g := sess.Game
	if sess.pending || g == nil || g.Status != engine.StatusPlaying || g.DiceValue == nil {
		return
	}
	if g.ActiveIdx < 0 || g.ActiveIdx >= len(g.Players) {
		return
	}
	active := g.Players[g.ActiveIdx]
	if len(engine.LegalMovesForPlayer(active, g.Players, *g.DiceValue)) > 0 {
		return
	}

	log.Info().Str("room", sess.ID).Str("color", string(active.Color)).Int("dice", *g.DiceValue).Msg("resuming lost turn pass")
	s.passTurn(sess, active.Color, *g.DiceValue)
	s.touch(sess)
	s.notifier.BroadcastEvent(sess.ID, g.Clone(), EventTurnChanged, map[string]any{"activeIdx": g.ActiveIdx})
}

// later runs fn on the room after the preset delay, unless the turn has
// moved on in the meantime. A zero delay applies fn immediately; the caller
// already holds the lock in that case.
func (s *gameServiceImpl) later(sess *Session, fn func(g *engine.Game)) {
	delay := sess.Preset.TurnDelay()
	if delay <= 0 {
		fn(sess.Game)
		s.notifier.BroadcastEvent(sess.ID, sess.Game.Clone(), EventTurnChanged, map[string]any{"activeIdx": sess.Game.ActiveIdx})
		return
	}

	turn := sess.turn
	sess.pending = true
	s.scheduler.Schedule(sess.ID, delay, func() {
		sess.Lock()
		defer sess.Unlock()

		sess.pending = false
		if sess.closed || sess.turn != turn {
			return
		}
		fn(sess.Game)
		s.touch(sess)
		s.notifier.BroadcastEvent(sess.ID, sess.Game.Clone(), EventTurnChanged, map[string]any{"activeIdx": sess.Game.ActiveIdx})
	})
}

func (s *gameServiceImpl) reconnect(sess *Session, idx int, connID string) {
	g := sess.Game
	p := &g.Players[idx]
	p.Disconnected = false
	if connID != "" {
		p.ID = connID
	}
	if g.HostID == "" {
		g.HostID = p.UserID
	}
	g.Message = render(sess.Preset.Messages.Reconnected, p.Name, 0)

	s.touch(sess)
	s.notifier.BroadcastEvent(sess.ID, g.Clone(), EventReconnected, map[string]any{"player": p.Name, "color": p.Color})
}

// teardown removes the room from the registry. The caller holds the lock.
func (s *gameServiceImpl) teardown(sess *Session) error {
	sess.closed = true
	s.cancelPending(sess)
	if err := s.sessions.Delete(sess.ID); err != nil {
		return fmt.Errorf("failed to delete room %s: %w", sess.ID, err)
	}
	s.notifier.BroadcastEvent(sess.ID, sess.Game.Clone(), EventRoomDeleted, nil)
	return nil
}

func (s *gameServiceImpl) record(sess *Session, e HistoryEntry) {
	e.Seq = len(sess.History) + 1
	e.Timestamp = time.Now()
	sess.History = append(sess.History, e)
}

// touch refreshes the access time and persists the room.
func (s *gameServiceImpl) touch(sess *Session) {
	if err := s.sessions.UpdateLastAccessed(sess.ID); err != nil {
		log.Warn().Err(err).Str("room", sess.ID).Msg("failed to persist room")
	}
}

func (s *gameServiceImpl) persist(sess *Session) {
	if err := s.sessions.Save(sess.ID); err != nil {
		log.Warn().Err(err).Str("room", sess.ID).Msg("failed to persist room")
	}
}

func (s *gameServiceImpl) info(sess *Session, userID string) *RoomInfo {
	return &RoomInfo{
		Code:           sess.ID,
		PresetID:       sess.PresetID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Game:           sess.Game.Clone(),
		UserID:         userID,
	}
}

// nextSeat is engine.NextActivePlayerIdx that also skips players who left.
func nextSeat(g *engine.Game, current int) int {
	next := engine.NextActivePlayerIdx(g, current)
	scan := &engine.Game{Players: g.Players}
	for i := 0; i < len(g.Players) && g.Players[next].Disconnected; i++ {
		next = engine.NextActivePlayerIdx(scan, next)
	}
	return next
}

// activeSeat checks that userID may act now and returns their seat.
func activeSeat(g *engine.Game, userID string) (int, error) {
	if g.Status != engine.StatusPlaying {
		return -1, ErrNotPlaying
	}
	idx := playerIndex(g, userID)
	if idx < 0 {
		return -1, ErrPlayerNotInRoom
	}
	if idx != g.ActiveIdx {
		return -1, ErrNotYourTurn
	}
	return idx, nil
}

func playerIndex(g *engine.Game, userID string) int {
	if userID == "" {
		return -1
	}
	for i, p := range g.Players {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

func connectedCount(g *engine.Game) int {
	n := 0
	for _, p := range g.Players {
		if !p.Disconnected {
			n++
		}
	}
	return n
}

func connOr(connID, userID string) string {
	if connID != "" {
		return connID
	}
	return userID
}
