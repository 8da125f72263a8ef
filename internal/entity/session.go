package entity

type Mode string

const (
	PlayerVsAI     Mode = "pvai"
	PlayerVsPlayer Mode = "pvp"
)

type Difficulty string

const (
	EasyDifficulty   Difficulty = "easy"
	NormalDifficulty Difficulty = "normal"
	HardDifficulty   Difficulty = "hard"
)

const (
	StateIdle     = "idle"
	StateRunning  = "running"
	StateTerminal = "terminal"
)

// Settings are the choices made before a game starts.
type Settings struct {
	Mode            Mode       `json:"mode"`
	FirstPlayer     Mark       `json:"first_player"`
	AutomatedPlayer Mark       `json:"automated_player"`
	Difficulty      Difficulty `json:"difficulty"`
	Size            int        `json:"size"`
}

func (that Settings) IsValid() bool {
	switch that.Mode {
	case PlayerVsAI, PlayerVsPlayer:
	default:
		return false
	}

	switch that.Difficulty {
	case EasyDifficulty, NormalDifficulty, HardDifficulty:
	default:
		return false
	}

	return IsPlayer(that.FirstPlayer) && IsPlayer(that.AutomatedPlayer)
}

// Scores - tally of finished games, kept for the lifetime of a session.
type Scores struct {
	X    int `json:"X"`
	O    int `json:"O"`
	Draw int `json:"Draw"`
}

func (that *Scores) Add(outcome Outcome) {
	switch outcome {
	case OutcomeX:
		that.X++
	case OutcomeO:
		that.O++
	case OutcomeDraw:
		that.Draw++
	case OutcomeNone:
	}
}

func (that Scores) Total() int {
	return that.X + that.O + that.Draw
}

// Session holds one player's game table: the current game, its history and the score board.
type Session struct {
	ID              string     `json:"id"`
	Board           Board      `json:"board"`
	Size            int        `json:"size"`
	CurrentPlayer   Mark       `json:"current_player"`
	FirstPlayer     Mark       `json:"first_player"`
	AutomatedPlayer Mark       `json:"automated_player"`
	Winner          Outcome    `json:"winner"`
	Mode            Mode       `json:"mode"`
	Difficulty      Difficulty `json:"difficulty"`
	Running         bool       `json:"running"`
	History         []Board    `json:"history"`
	Scores          Scores     `json:"scores"`
}

// NewSession - creates an idle session with an empty board.
func NewSession(id string, settings Settings) *Session {
	session := &Session{
		ID:    id,
		Board: NewBoard(settings.Size),
	}
	session.Configure(settings)
	session.CurrentPlayer = settings.FirstPlayer
	session.History = []Board{}

	return session
}

// Configure - applies the settings without touching the board.
func (that *Session) Configure(settings Settings) {
	that.Size = settings.Size
	that.Mode = settings.Mode
	that.FirstPlayer = settings.FirstPlayer
	that.AutomatedPlayer = settings.AutomatedPlayer
	that.Difficulty = settings.Difficulty
}

func (that *Session) Settings() Settings {
	return Settings{
		Mode:            that.Mode,
		FirstPlayer:     that.FirstPlayer,
		AutomatedPlayer: that.AutomatedPlayer,
		Difficulty:      that.Difficulty,
		Size:            that.Size,
	}
}

func (that *Session) IsTerminal() bool {
	return that.Winner.IsTerminal()
}

func (that *Session) IsRunning() bool {
	return that.Running
}

func (that *Session) IsIdle() bool {
	return !that.Running && !that.IsTerminal()
}

// IsAutomatedTurn - reports whether the automated player should move now.
func (that *Session) IsAutomatedTurn() bool {
	return that.Mode == PlayerVsAI && that.Running && !that.IsTerminal() && that.CurrentPlayer == that.AutomatedPlayer
}

func (that *Session) State() string {
	switch {
	case that.IsTerminal():
		return StateTerminal
	case that.Running:
		return StateRunning
	default:
		return StateIdle
	}
}

// Snapshot - returns a read-only view of the session for rendering.
func (that *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:            that.ID,
		Board:         that.Board.Clone(),
		Size:          that.Size,
		CurrentPlayer: that.CurrentPlayer,
		Winner:        that.Winner,
		Running:       that.Running,
		State:         that.State(),
		Scores:        that.Scores,
		Mode:          that.Mode,
		Difficulty:    that.Difficulty,
		Moves:         len(that.History),
	}
}

// Snapshot is everything a collaborator needs to draw the grid, the turn banner and the score board.
type Snapshot struct {
	ID            string     `json:"id"`
	Board         Board      `json:"board"`
	Size          int        `json:"size"`
	CurrentPlayer Mark       `json:"current_player"`
	Winner        Outcome    `json:"winner"`
	Running       bool       `json:"running"`
	State         string     `json:"state"`
	Scores        Scores     `json:"scores"`
	Mode          Mode       `json:"mode"`
	Difficulty    Difficulty `json:"difficulty"`
	Moves         int        `json:"moves"`
}
