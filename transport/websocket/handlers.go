package websocket

import (
	"context"
	"errors"

	"github.com/rocketscienceinc/xo-engine/internal/apperror"
	"github.com/rocketscienceinc/xo-engine/internal/entity"
	"github.com/rocketscienceinc/xo-engine/internal/pkg"
)

var (
	errSessionIDRequired = errors.New("session_id is required")
	errCellRequired      = errors.New("cell is required")
)

func (that *Server) handleNew(ctx context.Context, payload *RequestPayload) (entity.Snapshot, error) {
	var settings entity.Settings
	if payload.Settings != nil {
		settings = *payload.Settings
	}

	return that.sessions.CreateSession(ctx, settings)
}

func (that *Server) handleStart(ctx context.Context, payload *RequestPayload) (entity.Snapshot, error) {
	if err := checkSessionID(payload.SessionID); err != nil {
		return entity.Snapshot{}, err
	}

	return that.sessions.Start(ctx, payload.SessionID, payload.Settings)
}

func (that *Server) handleMove(ctx context.Context, payload *RequestPayload) (entity.Snapshot, error) {
	if err := checkSessionID(payload.SessionID); err != nil {
		return entity.Snapshot{}, err
	}

	if payload.Cell == nil {
		return entity.Snapshot{}, errCellRequired
	}

	return that.sessions.ApplyMove(ctx, payload.SessionID, *payload.Cell)
}

func (that *Server) handleAuto(ctx context.Context, payload *RequestPayload) (entity.Snapshot, error) {
	return that.withSession(ctx, payload, that.sessions.AutoTurn)
}

func (that *Server) handleUndo(ctx context.Context, payload *RequestPayload) (entity.Snapshot, error) {
	return that.withSession(ctx, payload, that.sessions.Undo)
}

func (that *Server) handleReset(ctx context.Context, payload *RequestPayload) (entity.Snapshot, error) {
	return that.withSession(ctx, payload, that.sessions.Reset)
}

func (that *Server) handleStop(ctx context.Context, payload *RequestPayload) (entity.Snapshot, error) {
	return that.withSession(ctx, payload, that.sessions.Stop)
}

func (that *Server) handleState(ctx context.Context, payload *RequestPayload) (entity.Snapshot, error) {
	return that.withSession(ctx, payload, that.sessions.GetState)
}

func (that *Server) withSession(
	ctx context.Context,
	payload *RequestPayload,
	operation func(ctx context.Context, id string) (entity.Snapshot, error),
) (entity.Snapshot, error) {
	if err := checkSessionID(payload.SessionID); err != nil {
		return entity.Snapshot{}, err
	}

	return operation(ctx, payload.SessionID)
}

func checkSessionID(id string) error {
	if id == "" {
		return errSessionIDRequired
	}

	if !pkg.IsValidSessionID(id) {
		return apperror.ErrInvalidSessionID
	}

	return nil
}
