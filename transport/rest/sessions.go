package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/xo-engine/internal/apperror"
	"github.com/rocketscienceinc/xo-engine/internal/entity"
)

var (
	errBadRequest   = errors.New("malformed request")
	errMissingCell  = errors.New("cell is required")
	errBodyTooLarge = errors.New("request body is too large")
)

type moveRequest struct {
	Cell *int `json:"cell"`
}

type errorResponse struct {
	Error   string           `json:"error"`
	Session *entity.Snapshot `json:"session,omitempty"`
}

func (that *Server) createSession(w http.ResponseWriter, r *http.Request) {
	settings, err := decodeSettings(r)
	if err != nil {
		that.writeError(w, r, err, entity.Snapshot{})
		return
	}

	var requested entity.Settings
	if settings != nil {
		requested = *settings
	}

	snapshot, err := that.sessions.CreateSession(r.Context(), requested)
	if err != nil {
		that.writeError(w, r, err, snapshot)
		return
	}

	writeJSON(w, http.StatusCreated, snapshot)
}

func (that *Server) getSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.sessions.GetState(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, r, snapshot, err)
}

func (that *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := that.sessions.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, r, err, entity.Snapshot{})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) startGame(w http.ResponseWriter, r *http.Request) {
	settings, err := decodeSettings(r)
	if err != nil {
		that.writeError(w, r, err, entity.Snapshot{})
		return
	}

	snapshot, err := that.sessions.Start(r.Context(), chi.URLParam(r, "id"), settings)
	that.respond(w, r, snapshot, err)
}

func (that *Server) applyMove(w http.ResponseWriter, r *http.Request) {
	var request moveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		that.writeError(w, r, decodeError(err), entity.Snapshot{})
		return
	}

	if request.Cell == nil {
		that.writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, errMissingCell), entity.Snapshot{})
		return
	}

	snapshot, err := that.sessions.ApplyMove(r.Context(), chi.URLParam(r, "id"), *request.Cell)
	that.respond(w, r, snapshot, err)
}

func (that *Server) autoTurn(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.sessions.AutoTurn(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, r, snapshot, err)
}

func (that *Server) undo(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.sessions.Undo(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, r, snapshot, err)
}

func (that *Server) reset(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.sessions.Reset(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, r, snapshot, err)
}

func (that *Server) stop(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.sessions.Stop(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, r, snapshot, err)
}

func (that *Server) respond(w http.ResponseWriter, r *http.Request, snapshot entity.Snapshot, err error) {
	if err != nil {
		that.writeError(w, r, err, snapshot)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *Server) writeError(w http.ResponseWriter, r *http.Request, err error, snapshot entity.Snapshot) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	response := errorResponse{Error: err.Error()}
	if snapshot.ID != "" {
		response.Session = &snapshot
	}

	writeJSON(w, status, response)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case apperror.IsRejected(err):
		return http.StatusConflict
	case apperror.IsInvalidInput(err), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeSettings - reads optional settings from the body; an empty body yields nil.
func decodeSettings(r *http.Request) (*entity.Settings, error) {
	var settings entity.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, decodeError(err)
	}

	return &settings, nil
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, tooLarge.Limit)
	}

	return fmt.Errorf("%w: %w", errBadRequest, err)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
