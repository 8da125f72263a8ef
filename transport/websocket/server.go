package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/xo-engine/internal/entity"
)

const (
	readLimit       = 4096
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

type sessionUseCase interface {
	CreateSession(ctx context.Context, settings entity.Settings) (entity.Snapshot, error)
	GetState(ctx context.Context, id string) (entity.Snapshot, error)

	Start(ctx context.Context, id string, settings *entity.Settings) (entity.Snapshot, error)
	ApplyMove(ctx context.Context, id string, cell int) (entity.Snapshot, error)
	AutoTurn(ctx context.Context, id string) (entity.Snapshot, error)
	Undo(ctx context.Context, id string) (entity.Snapshot, error)
	Reset(ctx context.Context, id string) (entity.Snapshot, error)
	Stop(ctx context.Context, id string) (entity.Snapshot, error)
}

type handlerFunc func(ctx context.Context, payload *RequestPayload) (entity.Snapshot, error)

type Server struct {
	logger   *slog.Logger
	sessions sessionUseCase
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, sessions sessionUseCase) *Server {
	server := &Server{
		logger:   logger,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[ActionNew] = server.handleNew
	server.handlers[ActionStart] = server.handleStart
	server.handlers[ActionMove] = server.handleMove
	server.handlers[ActionAuto] = server.handleAuto
	server.handlers[ActionUndo] = server.handleUndo
	server.handlers[ActionReset] = server.handleReset
	server.handlers[ActionStop] = server.handleStop
	server.handlers[ActionState] = server.handleState

	return server
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down WebSocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection and answers messages until the client leaves.
func (that *Server) serveWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(readLimit)

	log.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	if err = that.handleMessages(req.Context(), conn); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn) error {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := conn.ReadJSON(&message); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("client disconnected")
				return nil
			}

			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				if err = that.sendMessage(conn, message.Action, ResponsePayload{Error: "malformed message"}); err != nil {
					return err
				}
				continue
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		response := that.dispatch(ctx, &message)
		if err := that.sendMessage(conn, message.Action, response); err != nil {
			return err
		}
	}
}

func (that *Server) dispatch(ctx context.Context, message *Message) ResponsePayload {
	log := that.logger.With("method", "dispatch", "action", message.Action)

	handler, ok := that.handlers[message.Action]
	if !ok {
		log.Debug("unknown action")
		return ResponsePayload{Error: fmt.Sprintf("unknown action %q", message.Action)}
	}

	var payload RequestPayload
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			return ResponsePayload{Error: "malformed payload"}
		}
	}

	snapshot, err := handler(ctx, &payload)

	response := ResponsePayload{}
	if snapshot.ID != "" {
		response.Session = &snapshot
	}

	if err != nil {
		log.Debug("action failed", "error", err)
		response.Error = err.Error()
	}

	return response
}

func (that *Server) sendMessage(conn *websocket.Conn, action string, payload ResponsePayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = conn.WriteJSON(Message{Action: action, Payload: data}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
