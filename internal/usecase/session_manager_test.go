package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/xo-engine/internal/apperror"
	"github.com/rocketscienceinc/xo-engine/internal/entity"
	"github.com/rocketscienceinc/xo-engine/internal/pkg"
	"github.com/rocketscienceinc/xo-engine/internal/tictactoe"
	mockedUseCase "github.com/rocketscienceinc/xo-engine/mocks/usecase"
)

var errRedisDown = errors.New("redis down")

func testSettings() entity.Settings {
	return entity.Settings{
		Mode:            entity.PlayerVsAI,
		FirstPlayer:     entity.PlayerX,
		AutomatedPlayer: entity.PlayerO,
		Difficulty:      entity.NormalDifficulty,
		Size:            3,
	}
}

func newController() *tictactoe.GameController {
	return tictactoe.NewGameController(tictactoe.NewSearch(tictactoe.NewSeededRandom(1)))
}

func newManager(repo sessionRepo, opts Options) *SessionManager {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	if opts.Defaults == (entity.Settings{}) {
		opts.Defaults = testSettings()
	}

	return NewSessionManager(logger, repo, newController(), opts)
}

// runningSession - a started 3x3 session with the given moves played.
func runningSession(t *testing.T, cells ...int) *entity.Session {
	t.Helper()

	controller := newController()
	session := entity.NewSession("123", testSettings())
	require.NoError(t, controller.Start(session, testSettings()))

	for _, cell := range cells {
		require.NoError(t, controller.ApplyMove(session, cell))
	}

	return session
}

func TestSessionManager_CreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates an idle session with defaults", func(t *testing.T) {
		// Given: a repository that accepts the new session
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{})

		mockRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Session")).
			Return(nil).
			Once()

		// When: creating a 6x6 session without other settings
		snapshot, err := manager.CreateSession(ctx, entity.Settings{Size: 6})

		// Then: the session is idle and the defaults are filled in
		require.NoError(t, err)
		assert.True(t, pkg.IsValidSessionID(snapshot.ID))
		assert.Equal(t, entity.StateIdle, snapshot.State)
		assert.Len(t, snapshot.Board, 36)
		assert.Equal(t, entity.PlayerVsAI, snapshot.Mode)
		assert.Equal(t, entity.PlayerX, snapshot.CurrentPlayer)
	})

	t.Run("Error on unsupported size", func(t *testing.T) {
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{})

		_, err := manager.CreateSession(ctx, entity.Settings{Size: 4})

		require.ErrorIs(t, err, apperror.ErrInvalidBoardSize)
	})

	t.Run("Error on invalid mode", func(t *testing.T) {
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{})

		_, err := manager.CreateSession(ctx, entity.Settings{Mode: "solo"})

		require.ErrorIs(t, err, apperror.ErrInvalidSettings)
	})

	t.Run("Error when the repository fails", func(t *testing.T) {
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{})

		mockRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Session")).
			Return(errRedisDown).
			Once()

		_, err := manager.CreateSession(ctx, testSettings())

		require.ErrorIs(t, err, errRedisDown)
	})
}

func TestSessionManager_ApplyMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores the move", func(t *testing.T) {
		// Given: a running session
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{})

		mockRepo.EXPECT().
			GetByID(mock.Anything, "123").
			Return(runningSession(t), nil).
			Once()
		mockRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.MatchedBy(func(session *entity.Session) bool {
				return session.Board[4] == entity.PlayerX && len(session.History) == 1
			})).
			Return(nil).
			Once()

		// When: X plays the center
		snapshot, err := manager.ApplyMove(ctx, "123", 4)

		// Then: the move is stored and O is to move
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, snapshot.Board[4])
		assert.Equal(t, entity.PlayerO, snapshot.CurrentPlayer)
		assert.Equal(t, 1, snapshot.Moves)
	})

	t.Run("Rejected move is not stored", func(t *testing.T) {
		// Given: a session where cell 0 is taken
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{})

		session := runningSession(t, 0)
		expected := session.Snapshot()

		mockRepo.EXPECT().
			GetByID(mock.Anything, "123").
			Return(session, nil).
			Once()

		// When: O plays cell 0
		snapshot, err := manager.ApplyMove(ctx, "123", 0)

		// Then: the error and the unchanged state are returned
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.True(t, apperror.IsRejected(err))
		assert.Equal(t, expected, snapshot)
	})

	t.Run("Error on unknown session", func(t *testing.T) {
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{})

		mockRepo.EXPECT().
			GetByID(mock.Anything, "404").
			Return(nil, apperror.ErrSessionNotFound).
			Once()

		_, err := manager.ApplyMove(ctx, "404", 0)

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		assert.False(t, apperror.IsRejected(err))
	})

	t.Run("Error when the repository fails to store", func(t *testing.T) {
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{})

		session := runningSession(t)
		expected := session.Snapshot()

		mockRepo.EXPECT().
			GetByID(mock.Anything, "123").
			Return(session, nil).
			Once()
		mockRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Session")).
			Return(errRedisDown).
			Once()

		snapshot, err := manager.ApplyMove(ctx, "123", 4)

		require.ErrorIs(t, err, errRedisDown)
		assert.Equal(t, expected, snapshot)
	})

	t.Run("Automated reply with auto play", func(t *testing.T) {
		// Given: auto play is on
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{AutoPlay: true})

		mockRepo.EXPECT().
			GetByID(mock.Anything, "123").
			Return(runningSession(t), nil).
			Once()
		mockRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Session")).
			Return(nil).
			Once()

		// When: X opens in the corner
		snapshot, err := manager.ApplyMove(ctx, "123", 0)

		// Then: O has already answered in the center
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerO, snapshot.Board[4])
		assert.Equal(t, entity.PlayerX, snapshot.CurrentPlayer)
		assert.Equal(t, 2, snapshot.Moves)
	})

	t.Run("No automated reply without auto play", func(t *testing.T) {
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{})

		mockRepo.EXPECT().
			GetByID(mock.Anything, "123").
			Return(runningSession(t), nil).
			Once()
		mockRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Session")).
			Return(nil).
			Once()

		snapshot, err := manager.ApplyMove(ctx, "123", 0)

		require.NoError(t, err)
		assert.Equal(t, entity.PlayerO, snapshot.CurrentPlayer)
		assert.Equal(t, 1, snapshot.Moves)
	})
}

func TestSessionManager_AutoTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Automated player moves", func(t *testing.T) {
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{})

		mockRepo.EXPECT().
			GetByID(mock.Anything, "123").
			Return(runningSession(t, 0), nil).
			Once()
		mockRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Session")).
			Return(nil).
			Once()

		snapshot, err := manager.AutoTurn(ctx, "123")

		require.NoError(t, err)
		assert.Equal(t, entity.PlayerO, snapshot.Board[4])
	})

	t.Run("Error on the human's turn", func(t *testing.T) {
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{})

		mockRepo.EXPECT().
			GetByID(mock.Anything, "123").
			Return(runningSession(t), nil).
			Once()

		_, err := manager.AutoTurn(ctx, "123")

		require.ErrorIs(t, err, apperror.ErrNotAutomatedTurn)
	})
}

func TestSessionManager_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("Restarts with the session's settings", func(t *testing.T) {
		// Given: an idle 6x6 session
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{})

		settings := testSettings()
		settings.Size = 6

		mockRepo.EXPECT().
			GetByID(mock.Anything, "123").
			Return(entity.NewSession("123", settings), nil).
			Once()
		mockRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Session")).
			Return(nil).
			Once()

		// When: starting without new settings
		snapshot, err := manager.Start(ctx, "123", nil)

		// Then: a 6x6 game is running
		require.NoError(t, err)
		assert.True(t, snapshot.Running)
		assert.Len(t, snapshot.Board, 36)
	})

	t.Run("Automated first move with auto play", func(t *testing.T) {
		// Given: auto play is on and the automated side goes first
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{AutoPlay: true})

		mockRepo.EXPECT().
			GetByID(mock.Anything, "123").
			Return(entity.NewSession("123", testSettings()), nil).
			Once()
		mockRepo.EXPECT().
			CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Session")).
			Return(nil).
			Once()

		// When: starting with O first
		snapshot, err := manager.Start(ctx, "123", &entity.Settings{FirstPlayer: entity.PlayerO})

		// Then: O has opened and X is to move
		require.NoError(t, err)
		assert.Equal(t, 1, snapshot.Moves)
		assert.Equal(t, entity.PlayerX, snapshot.CurrentPlayer)
	})

	t.Run("Error when already running", func(t *testing.T) {
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{})

		mockRepo.EXPECT().
			GetByID(mock.Anything, "123").
			Return(runningSession(t, 4), nil).
			Once()

		snapshot, err := manager.Start(ctx, "123", nil)

		require.ErrorIs(t, err, apperror.ErrGameAlreadyRunning)
		assert.Equal(t, 1, snapshot.Moves)
	})
}

func TestSessionManager_ResetAndStop(t *testing.T) {
	ctx := context.Background()

	for name, operation := range map[string]func(*SessionManager) (entity.Snapshot, error){
		"Reset": func(manager *SessionManager) (entity.Snapshot, error) { return manager.Reset(ctx, "123") },
		"Stop":  func(manager *SessionManager) (entity.Snapshot, error) { return manager.Stop(ctx, "123") },
	} {
		t.Run(name, func(t *testing.T) {
			// Given: a game X has won
			mockRepo := mockedUseCase.NewMocksessionRepo(t)
			manager := newManager(mockRepo, Options{})

			mockRepo.EXPECT().
				GetByID(mock.Anything, "123").
				Return(runningSession(t, 0, 3, 1, 4, 2), nil).
				Once()
			mockRepo.EXPECT().
				CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Session")).
				Return(nil).
				Once()

			// When: the session is reset or stopped
			snapshot, err := operation(manager)

			// Then: the board is cleared and the score is kept
			require.NoError(t, err)
			assert.Equal(t, entity.StateIdle, snapshot.State)
			assert.Equal(t, entity.NewBoard(3), snapshot.Board)
			assert.Equal(t, entity.Scores{X: 1}, snapshot.Scores)
		})
	}
}

func TestSessionManager_Undo(t *testing.T) {
	// Given: a session with two moves
	mockRepo := mockedUseCase.NewMocksessionRepo(t)
	manager := newManager(mockRepo, Options{})

	session := runningSession(t, 0, 4)
	expected := session.Snapshot()

	mockRepo.EXPECT().
		GetByID(mock.Anything, "123").
		Return(session, nil).
		Once()
	mockRepo.EXPECT().
		CreateOrUpdate(mock.Anything, mock.AnythingOfType("*entity.Session")).
		Return(nil).
		Once()

	// When: undo is requested
	snapshot, err := manager.Undo(context.Background(), "123")

	// Then: the state is unchanged
	require.NoError(t, err)
	assert.Equal(t, expected, snapshot)
}

func TestSessionManager_GetState(t *testing.T) {
	mockRepo := mockedUseCase.NewMocksessionRepo(t)
	manager := newManager(mockRepo, Options{})

	session := runningSession(t, 4)

	mockRepo.EXPECT().
		GetByID(mock.Anything, "123").
		Return(session, nil).
		Once()

	snapshot, err := manager.GetState(context.Background(), "123")

	require.NoError(t, err)
	assert.Equal(t, session.Snapshot(), snapshot)
}

func TestSessionManager_DeleteSession(t *testing.T) {
	t.Run("Deletes the session", func(t *testing.T) {
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{})

		mockRepo.EXPECT().
			DeleteByID(mock.Anything, "123").
			Return(nil).
			Once()

		require.NoError(t, manager.DeleteSession(context.Background(), "123"))
	})

	t.Run("Error on unknown session", func(t *testing.T) {
		mockRepo := mockedUseCase.NewMocksessionRepo(t)
		manager := newManager(mockRepo, Options{})

		mockRepo.EXPECT().
			DeleteByID(mock.Anything, "404").
			Return(apperror.ErrSessionNotFound).
			Once()

		err := manager.DeleteSession(context.Background(), "404")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

// memoryRepo keeps sessions as JSON so every load returns a fresh copy.
type memoryRepo struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func (that *memoryRepo) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()
	that.sessions[session.ID] = data

	return nil
}

func (that *memoryRepo) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.Lock()
	data, ok := that.sessions[id]
	that.mu.Unlock()

	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

func (that *memoryRepo) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()
	delete(that.sessions, id)

	return nil
}

func TestSessionManager_ConcurrentMoves(t *testing.T) {
	ctx := context.Background()

	// Given: a running 6x6 player vs player session
	repo := &memoryRepo{sessions: make(map[string][]byte)}
	manager := newManager(repo, Options{})

	settings := testSettings()
	settings.Mode = entity.PlayerVsPlayer
	settings.Size = 6

	created, err := manager.CreateSession(ctx, settings)
	require.NoError(t, err)
	_, err = manager.Start(ctx, created.ID, nil)
	require.NoError(t, err)

	// When: twenty moves arrive at once on cells that cannot complete a line
	var cells []int
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			cells = append(cells, row*6+col)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(cells))
	for _, cell := range cells {
		wg.Add(1)
		go func(cell int) {
			defer wg.Done()
			_, err := manager.ApplyMove(ctx, created.ID, cell)
			errs <- err
		}(cell)
	}
	wg.Wait()
	close(errs)

	// Then: no move is lost
	for err := range errs {
		require.NoError(t, err)
	}

	snapshot, err := manager.GetState(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, len(cells), snapshot.Moves)
	for _, cell := range cells {
		assert.NotEqual(t, entity.EmptyCell, snapshot.Board[cell])
	}
}
