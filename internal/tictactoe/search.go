package tictactoe

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/rocketscienceinc/xo-engine/internal/entity"
)

// exactSearchSize is the only board size small enough to search to the end of the game.
const exactSearchSize = 3

var ErrNoAvailableMoves = errors.New("no available moves")

// RandomSource picks a uniform index in [0, n).
type RandomSource interface {
	IntN(n int) int
}

// Search chooses moves for the automated player.
type Search struct {
	random RandomSource
}

func NewSearch(random RandomSource) *Search {
	return &Search{
		random: random,
	}
}

// lockedRandom - a seeded source shared by every session, so draws are serialized.
type lockedRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (that *lockedRandom) IntN(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.r.IntN(n)
}

// NewSeededRandom - returns a random source safe for concurrent use;
// the same seed gives the same sequence of draws.
func NewSeededRandom(seed uint64) RandomSource {
	return &lockedRandom{
		r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint: gosec // move picking only
	}
}

// ChooseMove - picks a move for the player whose turn it is.
func (that *Search) ChooseMove(session *entity.Session) (int, error) {
	return that.BestMove(session.Board, session.Size, session.CurrentPlayer)
}

// BestMove - on a 3×3 board runs a full alpha-beta minimax for player,
// on larger boards picks a uniformly random empty cell.
func (that *Search) BestMove(board entity.Board, size int, player entity.Mark) (int, error) {
	available := board.AvailableMoves()
	if len(available) == 0 {
		return 0, ErrNoAvailableMoves
	}

	if size != exactSearchSize {
		return available[that.random.IntN(len(available))], nil
	}

	// search on a private copy, the session board is never touched
	work := board.Clone()

	bestScore := math.MinInt
	bestMove := available[0]

	for _, move := range available {
		work[move] = player
		score := minimax(work, size, player, 0, false, math.MinInt, math.MaxInt)
		work[move] = entity.EmptyCell

		if score > bestScore {
			bestScore = score
			bestMove = move
		}
	}

	return bestMove, nil
}

// minimax - scores the position from maximizer's point of view: +1 win, -1 loss, 0 draw.
// depth is carried along but never bounds the search.
func minimax(board entity.Board, size int, maximizer entity.Mark, depth int, isMax bool, alpha, beta int) int {
	switch outcome := entity.Evaluate(board, size); outcome {
	case entity.OutcomeNone:
	case entity.OutcomeDraw:
		return 0
	case entity.WinnerOutcome(maximizer):
		return 1
	default:
		return -1
	}

	minimizer := entity.Opponent(maximizer)

	if isMax {
		best := math.MinInt
		for _, move := range board.AvailableMoves() {
			board[move] = maximizer
			score := minimax(board, size, maximizer, depth+1, false, alpha, beta)
			board[move] = entity.EmptyCell

			best = max(best, score)
			alpha = max(alpha, best)
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := math.MaxInt
	for _, move := range board.AvailableMoves() {
		board[move] = minimizer
		score := minimax(board, size, maximizer, depth+1, true, alpha, beta)
		board[move] = entity.EmptyCell

		best = min(best, score)
		beta = min(beta, best)
		if beta <= alpha {
			break
		}
	}
	return best
}
