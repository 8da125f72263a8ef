package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/xo-engine/internal/apperror"
	"github.com/rocketscienceinc/xo-engine/internal/entity"
	"github.com/rocketscienceinc/xo-engine/internal/pkg"
)

type SessionUseCase interface {
	CreateSession(ctx context.Context, settings entity.Settings) (entity.Snapshot, error)
	GetState(ctx context.Context, id string) (entity.Snapshot, error)
	DeleteSession(ctx context.Context, id string) error

	Start(ctx context.Context, id string, settings *entity.Settings) (entity.Snapshot, error)
	ApplyMove(ctx context.Context, id string, cell int) (entity.Snapshot, error)
	AutoTurn(ctx context.Context, id string) (entity.Snapshot, error)
	Undo(ctx context.Context, id string) (entity.Snapshot, error)
	Reset(ctx context.Context, id string) (entity.Snapshot, error)
	Stop(ctx context.Context, id string) (entity.Snapshot, error)
}

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type gameController interface {
	Start(session *entity.Session, settings entity.Settings) error
	ApplyMove(session *entity.Session, cell int) error
	AutoTurn(session *entity.Session) (int, error)
	Undo(session *entity.Session) error
	Reset(session *entity.Session)
	Stop(session *entity.Session)
}

// Options tune the manager. Defaults fill any zero field of the settings a caller passes in.
type Options struct {
	Defaults entity.Settings
	AutoPlay bool
}

// SessionManager runs engine operations against stored sessions, one operation per session at a time.
type SessionManager struct {
	logger     *slog.Logger
	repo       sessionRepo
	controller gameController

	defaults entity.Settings
	autoPlay bool

	locks *sessionLocks
}

func NewSessionManager(logger *slog.Logger, repo sessionRepo, controller gameController, opts Options) *SessionManager {
	return &SessionManager{
		logger: logger,

		repo:       repo,
		controller: controller,

		defaults: opts.Defaults,
		autoPlay: opts.AutoPlay,

		locks: newSessionLocks(),
	}
}

// CreateSession - stores a new idle session.
func (that *SessionManager) CreateSession(ctx context.Context, settings entity.Settings) (entity.Snapshot, error) {
	settings = that.withDefaults(settings)
	if err := validateSettings(settings); err != nil {
		return entity.Snapshot{}, err
	}

	session := entity.NewSession(pkg.GenerateSessionID(), settings)
	if err := that.repo.CreateOrUpdate(ctx, session); err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Debug("session created", "session_id", session.ID, "size", session.Size, "mode", session.Mode)

	return session.Snapshot(), nil
}

func (that *SessionManager) GetState(ctx context.Context, id string) (entity.Snapshot, error) {
	session, err := that.repo.GetByID(ctx, id)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to get session: %w", err)
	}

	return session.Snapshot(), nil
}

func (that *SessionManager) DeleteSession(ctx context.Context, id string) error {
	unlock := that.locks.lock(id)
	defer unlock()

	if err := that.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Debug("session deleted", "session_id", id)

	return nil
}

// Start - starts a game. A nil settings restarts with the session's current settings.
func (that *SessionManager) Start(ctx context.Context, id string, settings *entity.Settings) (entity.Snapshot, error) {
	return that.update(ctx, "Start", id, func(session *entity.Session) error {
		next := session.Settings()
		if settings != nil {
			next = that.withDefaults(*settings)
		}

		if err := that.controller.Start(session, next); err != nil {
			return err
		}

		return that.autoReply(session)
	})
}

// ApplyMove - plays the current player's mark at cell.
func (that *SessionManager) ApplyMove(ctx context.Context, id string, cell int) (entity.Snapshot, error) {
	return that.update(ctx, "ApplyMove", id, func(session *entity.Session) error {
		if err := that.controller.ApplyMove(session, cell); err != nil {
			return err
		}

		return that.autoReply(session)
	})
}

func (that *SessionManager) AutoTurn(ctx context.Context, id string) (entity.Snapshot, error) {
	return that.update(ctx, "AutoTurn", id, func(session *entity.Session) error {
		_, err := that.controller.AutoTurn(session)
		return err
	})
}

func (that *SessionManager) Undo(ctx context.Context, id string) (entity.Snapshot, error) {
	return that.update(ctx, "Undo", id, that.controller.Undo)
}

func (that *SessionManager) Reset(ctx context.Context, id string) (entity.Snapshot, error) {
	return that.update(ctx, "Reset", id, func(session *entity.Session) error {
		that.controller.Reset(session)
		return nil
	})
}

func (that *SessionManager) Stop(ctx context.Context, id string) (entity.Snapshot, error) {
	return that.update(ctx, "Stop", id, func(session *entity.Session) error {
		that.controller.Stop(session)
		return nil
	})
}

// update - loads the session, runs operation and stores the result.
// A rejected operation is not stored and the unchanged snapshot is returned with its error.
func (that *SessionManager) update(ctx context.Context, method, id string, operation func(*entity.Session) error) (entity.Snapshot, error) {
	log := that.logger.With("method", method, "session_id", id)

	unlock := that.locks.lock(id)
	defer unlock()

	session, err := that.repo.GetByID(ctx, id)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to get session: %w", err)
	}

	before := session.Snapshot()

	if err = operation(session); err != nil {
		log.Debug("operation rejected", "error", err)
		return before, err
	}

	if err = that.repo.CreateOrUpdate(ctx, session); err != nil {
		log.Error("failed to store session", "error", err)
		return before, fmt.Errorf("failed to update session: %w", err)
	}

	log.Debug("session updated", "state", session.State(), "moves", len(session.History))

	return session.Snapshot(), nil
}

// autoReply - lets the automated player answer right away when auto play is on.
func (that *SessionManager) autoReply(session *entity.Session) error {
	if !that.autoPlay || !session.IsAutomatedTurn() {
		return nil
	}

	if _, err := that.controller.AutoTurn(session); err != nil {
		return fmt.Errorf("failed to play automated reply: %w", err)
	}

	return nil
}

func (that *SessionManager) withDefaults(settings entity.Settings) entity.Settings {
	if settings.Mode == "" {
		settings.Mode = that.defaults.Mode
	}

	if settings.FirstPlayer == entity.EmptyCell {
		settings.FirstPlayer = that.defaults.FirstPlayer
	}

	if settings.AutomatedPlayer == entity.EmptyCell {
		settings.AutomatedPlayer = that.defaults.AutomatedPlayer
	}

	if settings.Difficulty == "" {
		settings.Difficulty = that.defaults.Difficulty
	}

	if settings.Size == 0 {
		settings.Size = that.defaults.Size
	}

	return settings
}

func validateSettings(settings entity.Settings) error {
	if !entity.IsSupportedSize(settings.Size) {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidBoardSize, settings.Size)
	}

	if !settings.IsValid() {
		return apperror.ErrInvalidSettings
	}

	return nil
}

type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{
		locks: make(map[string]*sessionLock),
	}
}

// lock - blocks until id is free and returns the matching unlock.
func (that *sessionLocks) lock(id string) func() {
	that.mu.Lock()
	entry, ok := that.locks[id]
	if !ok {
		entry = &sessionLock{}
		that.locks[id] = entry
	}
	entry.refs++
	that.mu.Unlock()

	entry.Lock()

	return func() {
		entry.Unlock()

		that.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(that.locks, id)
		}
		that.mu.Unlock()
	}
}
