package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"pokerd/internal/bot"
	"pokerd/internal/randutil"
)

var CLI struct {
	Server   string `short:"s" long:"server" default:"ws://localhost:8080/poker" help:"Server websocket URL"`
	Room     string `short:"r" long:"room" help:"Room id to join (empty joins any public room)"`
	Count    int    `short:"n" long:"count" default:"1" help:"Number of bots to spawn"`
	Strategy string `long:"strategy" default:"call" enum:"call,fold,rand" help:"Bot strategy"`
	LogLevel string `short:"l" long:"log-level" default:"info" help:"Log level"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logger := log.New(os.Stderr)
	switch CLI.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Info("Stopping bots...")
		cancel()
	}()

	logger.Info("Spawning bots", "count", CLI.Count, "strategy", CLI.Strategy, "server", CLI.Server)

	g, gctx := errgroup.WithContext(ctx)
	seed := time.Now().UnixNano()
	for i := 0; i < CLI.Count; i++ {
		name := fmt.Sprintf("bot-%s-%d", CLI.Strategy, i+1)
		strategy := bot.NewStrategy(CLI.Strategy, randutil.New(seed+int64(i)))
		client := bot.NewClient(CLI.Server, name, CLI.Room, strategy, logger)
		g.Go(func() error {
			if err := client.Run(gctx); err != nil {
				logger.Error("Bot stopped", "name", name, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		kctx.Exit(1)
	}
}
