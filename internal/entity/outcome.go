package entity

// Outcome is the result of a finished game, or OutcomeNone while it is still going.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeX    Outcome = "X"
	OutcomeO    Outcome = "O"
	OutcomeDraw Outcome = "Draw"
)

// WinnerOutcome - returns the outcome of a win by the given player.
func WinnerOutcome(player Mark) Outcome {
	switch player {
	case PlayerX:
		return OutcomeX
	case PlayerO:
		return OutcomeO
	default:
		return OutcomeNone
	}
}

func (that Outcome) IsTerminal() bool {
	return that != OutcomeNone
}

// Evaluate - returns the winner of the first fully owned line, a draw for a full board, or OutcomeNone.
func Evaluate(board Board, size int) Outcome {
	for _, line := range Lines(size) {
		first := board[line[0]]
		if first == EmptyCell {
			continue
		}

		owned := true
		for _, idx := range line[1:] {
			if board[idx] != first {
				owned = false
				break
			}
		}

		if owned {
			return WinnerOutcome(first)
		}
	}

	// the game will continue until all the squares are full
	if !board.IsFull() {
		return OutcomeNone
	}

	return OutcomeDraw
}
