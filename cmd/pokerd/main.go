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
	"github.com/coder/quartz"

	"pokerd/internal/directory"
	"pokerd/internal/server"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"pokerd.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	Port     int    `short:"p" long:"port" help:"Server port to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}
	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.Port != 0 {
		cfg.Server.Port = CLI.Port
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	clock := quartz.NewReal()
	dir, err := openDirectory(cfg)
	if err != nil {
		logger.Error("Failed to open player directory", "error", err)
		kctx.Exit(1)
	}
	defer dir.Close()

	lobby := server.NewLobby(cfg, dir, clock, logger)
	srv := server.New(cfg, lobby, dir, clock, logger)

	logger.Info("Starting poker server",
		"addr", cfg.ListenAddress(),
		"variant", cfg.Game.Variant,
		"blinds", fmt.Sprintf("%d/%d", cfg.Game.SmallBlind, cfg.Game.BigBlind))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			logger.Error("Shutdown failed", "error", err)
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Error("Server failed", "error", err)
		kctx.Exit(1)
	}
}

func openDirectory(cfg *server.Config) (directory.Directory, error) {
	if cfg.Directory.Driver == "postgres" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return directory.NewPostgres(ctx, cfg.Directory.DSN)
	}
	return directory.NewMemory(), nil
}
