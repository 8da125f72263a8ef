package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRejected(t *testing.T) {
	assert.True(t, IsRejected(ErrCellOccupied))
	assert.True(t, IsRejected(fmt.Errorf("%w: cell 4", ErrOutOfRange)))
	assert.True(t, IsRejected(fmt.Errorf("failed to apply: %w", ErrGameAlreadyTerminal)))

	assert.False(t, IsRejected(ErrSessionNotFound))
	assert.False(t, IsRejected(ErrInvalidBoardSize))
	assert.False(t, IsRejected(errors.New("redis down")))
	assert.False(t, IsRejected(nil))
}

func TestIsInvalidInput(t *testing.T) {
	assert.True(t, IsInvalidInput(fmt.Errorf("%w: 4", ErrInvalidBoardSize)))
	assert.True(t, IsInvalidInput(ErrInvalidSettings))
	assert.True(t, IsInvalidInput(ErrInvalidSessionID))
	assert.False(t, IsInvalidInput(ErrCellOccupied))
}
