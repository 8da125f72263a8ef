package apperror

import "errors"

var (
	ErrOutOfRange          = errors.New("cell index is out of range")
	ErrCellOccupied        = errors.New("cell is already occupied")
	ErrGameNotRunning      = errors.New("game is not running")
	ErrGameAlreadyTerminal = errors.New("game is already finished")

	ErrGameAlreadyRunning = errors.New("game is already running")
	ErrInvalidBoardSize   = errors.New("unsupported board size")
	ErrInvalidSettings    = errors.New("invalid game settings")
	ErrNotAutomatedTurn   = errors.New("it's not the automated player's turn")

	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidSessionID = errors.New("malformed session id")
)

var rejections = []error{
	ErrOutOfRange,
	ErrCellOccupied,
	ErrGameNotRunning,
	ErrGameAlreadyTerminal,
	ErrGameAlreadyRunning,
	ErrNotAutomatedTurn,
}

// IsRejected - reports whether the game refused the operation, as opposed to a storage or input failure.
func IsRejected(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// IsInvalidInput - reports whether err comes from bad settings or a malformed session id.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidBoardSize) ||
		errors.Is(err, ErrInvalidSettings) ||
		errors.Is(err, ErrInvalidSessionID)
}
