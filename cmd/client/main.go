package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/client"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/config"
)

// main - connects to the game server given as the first argument (or from
// config.yml) and plays from the terminal.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	conf, err := config.LoadClient("config.yml")
	if err != nil {
		panic(err)
	}

	if len(os.Args) > 1 {
		conf.Client.Host = os.Args[1]
	}

	// the console owns stdout, so logs go to stderr
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	console := client.NewConsole(os.Stdout)

	var listener client.Listener = console
	var bot *client.Bot
	if conf.Client.Bot {
		bot = client.NewBot(logger, console, time.Now().UnixNano())
		listener = bot
	}

	player, err := client.Dial(ctx, logger, conf.Client.GetServerAddr(), listener)
	if err != nil {
		panic(err)
	}

	if bot != nil {
		bot.Attach(player.Interpreter())
	} else {
		go console.ReadMoves(ctx, os.Stdin, player)
	}

	if err = player.Run(ctx); err != nil {
		panic(fmt.Errorf("game ended: %w", err))
	}
}
