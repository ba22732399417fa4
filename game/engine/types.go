package engine

// Color identifies a seat on the board.
type Color string

const (
	Red    Color = "red"
	Green  Color = "green"
	Yellow Color = "yellow"
	Blue   Color = "blue"
)

// Colors lists the colors in seat order.
var Colors = []Color{Red, Green, Yellow, Blue}

const (
	TokensPerPlayer = 4
	TrackLen        = 52
	HomeLen         = 6
	MinPlayers      = 2
	MaxPlayers      = 4
	MaxSixChain     = 3
	DiceFaces       = 6
)

// TokenState is the lifecycle position of a token
type TokenState string

const (
	TokenBase  TokenState = "base"
	TokenTrack TokenState = "track"
	TokenHome  TokenState = "home"
	TokenDone  TokenState = "done"
)

// Token is a single piece. Pos is nil in base, the absolute track index on the
// track, the lane offset in the home lane and HomeLen once done.
type Token struct {
	State    TokenState `json:"state"`
	Pos      *int       `json:"pos"`
	RelSteps int        `json:"relSteps"`
}

// Player is one seat in a game
type Player struct {
	ID           string  `json:"id"`
	UserID       string  `json:"userId,omitempty"`
	Color        Color   `json:"color"`
	Name         string  `json:"name"`
	Tokens       []Token `json:"tokens"`
	Finished     int     `json:"finished"`
	Disconnected bool    `json:"disconnected,omitempty"`
}

// Status is the lifecycle of a game
type Status string

const (
	StatusLobby    Status = "lobby"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Game is the aggregate a room plays on.
type Game struct {
	RoomID    string   `json:"roomId"`
	Players   []Player `json:"players"`
	HostID    string   `json:"hostId"`
	Status    Status   `json:"status"`
	DiceValue *int     `json:"diceValue"`
	ActiveIdx int      `json:"activeIdx"`
	SixChain  int      `json:"sixChain"`
	ExtraTurn bool     `json:"extraTurn"`
	Winner    *Player  `json:"winner"`
	Message   string   `json:"message"`
}

// MoveType tags a move descriptor
type MoveType string

const (
	MoveEnter       MoveType = "enter"
	MoveAdvance     MoveType = "advance"
	MoveHomeLane    MoveType = "home-lane"
	MoveHomeAdvance MoveType = "home-advance"
	MoveFinish      MoveType = "finish"
)

// Move describes one legal move. To and NextRelSteps are set for advance,
// LaneTo for home-lane and home-advance.
type Move struct {
	Token        int      `json:"token"`
	Type         MoveType `json:"type"`
	To           *int     `json:"to,omitempty"`
	LaneTo       *int     `json:"laneTo,omitempty"`
	NextRelSteps *int     `json:"nextRelSteps,omitempty"`
}

// Capture records an opponent token sent back to base.
type Capture struct {
	PlayerIdx int   `json:"playerIdx"`
	Color     Color `json:"color"`
	Token     int   `json:"token"`
	Square    int   `json:"square"`
}

// Outcome is the detailed result of applying a move
type Outcome struct {
	Game     *Game     `json:"game"`
	Captures []Capture `json:"captures,omitempty"`
}

// Cell is a square on the 15x15 rendering grid
type Cell struct {
	R int `json:"r"`
	C int `json:"c"`
}
