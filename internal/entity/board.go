package entity

// Mark is the content of a single board cell.
type Mark string

const (
	EmptyCell Mark = ""
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
)

// SupportedSizes lists the board sizes a session can be started with.
var SupportedSizes = []int{3, 6, 9}

// Board - cells of an N×N grid in row-major order.
type Board []Mark

// NewBoard - returns an empty board for the given size.
func NewBoard(size int) Board {
	return make(Board, size*size)
}

// IsSupportedSize - reports whether a session may use this board size.
func IsSupportedSize(size int) bool {
	for _, supported := range SupportedSizes {
		if supported == size {
			return true
		}
	}

	return false
}

var linesBySize = map[int][][]int{}

func init() {
	for _, size := range SupportedSizes {
		linesBySize[size] = buildLines(size)
	}
}

// Lines - returns the winning lines of a size×size board: rows, columns, then the two main diagonals.
// The returned slices are shared and must not be modified.
func Lines(size int) [][]int {
	if lines, ok := linesBySize[size]; ok {
		return lines
	}

	return buildLines(size)
}

func buildLines(size int) [][]int {
	lines := make([][]int, 0, 2*size+2)

	for row := 0; row < size; row++ {
		line := make([]int, size)
		for col := 0; col < size; col++ {
			line[col] = row*size + col
		}
		lines = append(lines, line)
	}

	for col := 0; col < size; col++ {
		line := make([]int, size)
		for row := 0; row < size; row++ {
			line[row] = row*size + col
		}
		lines = append(lines, line)
	}

	diagonal := make([]int, size)
	antiDiagonal := make([]int, size)
	for i := 0; i < size; i++ {
		diagonal[i] = i*size + i
		antiDiagonal[i] = i*size + (size - 1 - i)
	}

	return append(lines, diagonal, antiDiagonal)
}

// AvailableMoves - returns the empty cell indices in ascending order.
func (that Board) AvailableMoves() []int {
	moves := make([]int, 0, len(that))
	for i, cell := range that {
		if cell == EmptyCell {
			moves = append(moves, i)
		}
	}

	return moves
}

// Clone - returns a copy that shares no storage with the original.
func (that Board) Clone() Board {
	board := make(Board, len(that))
	copy(board, that)

	return board
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Opponent - returns the other player's mark.
func Opponent(player Mark) Mark {
	if player == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func IsPlayer(mark Mark) bool {
	return mark == PlayerX || mark == PlayerO
}
