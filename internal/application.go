package application

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/config"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/repository"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/server"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-tcp/transport/rest"
)

const trackerQueueSize = 256

// RunApp - runs the game server until its games are over or a signal arrives.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var checks []rest.Check
	var tracker server.SessionTracker

	if conf.Redis.Enabled {
		redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		sessionRepo := repository.NewSessionRepository(redisStorage, conf.Redis.TTL)
		sessionTracker := usecase.NewSessionTracker(logger, sessionRepo, trackerQueueSize)
		go sessionTracker.Run(ctx)

		tracker = sessionTracker
		checks = append(checks, rest.Check{
			Name: "redis",
			Ready: func(ctx context.Context) error {
				return redisStorage.Ping(ctx).Err()
			},
		})
	}

	listener, err := net.Listen("tcp", conf.ListenAddr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", conf.ListenAddr, err)
	}

	gameServer := server.New(logger, listener, tracker, server.Options{
		Games:       conf.Games,
		IdleTimeout: conf.IdleTimeout,
	})
	checks = append(checks, rest.Check{Name: "listener", Ready: gameServer.Ready})

	// run HTTP server
	httpErrCh := make(chan error, 1)
	if !conf.HTTPDisabled {
		healthServer := rest.New(logger, conf.HTTPPort, checks...)
		go func() {
			if httpErr := healthServer.Start(ctx); httpErr != nil {
				log.Error("HTTP server error", "error", httpErr)
				httpErrCh <- httpErr
			}
		}()
	}

	// run game server
	gameErrCh := make(chan error, 1)
	go func() {
		gameErrCh <- gameServer.Serve(ctx)
	}()

	select {
	case err = <-httpErrCh:
		cancel()
		<-gameErrCh
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-gameErrCh:
		if err != nil {
			return fmt.Errorf("game server error: %w", err)
		}

		if ctx.Err() != nil {
			log.Info("Application context canceled, shutting down")
			return nil
		}

		log.Info("All games finished, shutting down")
		return nil
	}
}
