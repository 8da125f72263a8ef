package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/xo-engine/internal/apperror"
	"github.com/rocketscienceinc/xo-engine/internal/entity"
)

type moveChooser interface {
	ChooseMove(session *entity.Session) (int, error)
}

// GameController drives a session through idle, running and terminal states.
// A rejected operation returns an apperror and leaves the session untouched.
type GameController struct {
	search moveChooser
}

func NewGameController(search moveChooser) *GameController {
	return &GameController{
		search: search,
	}
}

// Start - resets the board with the given settings and starts accepting moves.
func (that *GameController) Start(session *entity.Session, settings entity.Settings) error {
	if !entity.IsSupportedSize(settings.Size) {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidBoardSize, settings.Size)
	}

	if !settings.IsValid() {
		return apperror.ErrInvalidSettings
	}

	if session.IsRunning() {
		return apperror.ErrGameAlreadyRunning
	}

	session.Configure(settings)
	that.Reset(session)
	session.Running = true

	return nil
}

// ApplyMove - places the current player's mark on cell and advances the game.
func (that *GameController) ApplyMove(session *entity.Session, cell int) error {
	if err := validateMove(session, cell); err != nil {
		return err
	}

	session.History = append(session.History, session.Board.Clone())
	session.Board[cell] = session.CurrentPlayer

	updateGameStatus(session)

	return nil
}

// AutoTurn - lets the automated player move; returns the chosen cell.
func (that *GameController) AutoTurn(session *entity.Session) (int, error) {
	switch {
	case session.IsTerminal():
		return 0, apperror.ErrGameAlreadyTerminal
	case !session.IsRunning():
		return 0, apperror.ErrGameNotRunning
	case !session.IsAutomatedTurn():
		return 0, apperror.ErrNotAutomatedTurn
	}

	cell, err := that.search.ChooseMove(session)
	if err != nil {
		return 0, fmt.Errorf("failed to choose move: %w", err)
	}

	if err = that.ApplyMove(session, cell); err != nil {
		return 0, fmt.Errorf("failed to apply chosen move %d: %w", cell, err)
	}

	return cell, nil
}

// Undo - reserved. History is recorded but never restored.
func (that *GameController) Undo(_ *entity.Session) error {
	return nil
}

// Reset - returns the session to idle with an empty board. Scores are kept.
func (that *GameController) Reset(session *entity.Session) {
	session.Board = entity.NewBoard(session.Size)
	session.History = []entity.Board{}
	session.Winner = entity.OutcomeNone
	session.CurrentPlayer = session.FirstPlayer
	session.Running = false
}

// Stop - ends the running game without scoring it.
func (that *GameController) Stop(session *entity.Session) {
	that.Reset(session)
}

// validateMove - checks if the move is valid.
func validateMove(session *entity.Session, cell int) error {
	if session.IsTerminal() {
		return apperror.ErrGameAlreadyTerminal
	}

	if !session.IsRunning() {
		return apperror.ErrGameNotRunning
	}

	if cell < 0 || cell >= len(session.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrOutOfRange, cell)
	}

	if session.Board[cell] != entity.EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	return nil
}

// updateGameStatus - checks the game status after a move.
func updateGameStatus(session *entity.Session) {
	outcome := entity.Evaluate(session.Board, session.Size)
	if !outcome.IsTerminal() {
		session.CurrentPlayer = entity.Opponent(session.CurrentPlayer)
		return
	}

	session.Winner = outcome
	session.Scores.Add(outcome)
	session.Running = false
}
