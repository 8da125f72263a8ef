package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/xo-engine/internal/config"
	"github.com/rocketscienceinc/xo-engine/internal/repository"
	"github.com/rocketscienceinc/xo-engine/internal/repository/storage"
	"github.com/rocketscienceinc/xo-engine/internal/tictactoe"
	"github.com/rocketscienceinc/xo-engine/internal/usecase"
	"github.com/rocketscienceinc/xo-engine/transport/rest"
	"github.com/rocketscienceinc/xo-engine/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if conf.Redis.Host == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sessionRepo := repository.NewSessionRepository(redisStorage, conf.Redis.SessionTTL)
	search := tictactoe.NewSearch(newRandomSource(conf.Game.Seed))
	gameController := tictactoe.NewGameController(search)
	sessionManager := usecase.NewSessionManager(logger, sessionRepo, gameController, usecase.Options{
		Defaults: conf.Game.Settings(),
		AutoPlay: conf.Game.AutoPlay,
	})

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		httpServer := rest.New(logger, sessionManager)
		if httpErr := httpServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, sessionManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Received signal, shutting down")
		return nil
	}
}

// newRandomSource - a zero seed means a different game every run.
func newRandomSource(seed uint64) tictactoe.RandomSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return tictactoe.NewSeededRandom(seed)
}
