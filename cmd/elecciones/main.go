package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"elecciones/internal/config"
	"elecciones/internal/storage"
	"elecciones/internal/telemetry"
)

func main() {
	configPath := os.Getenv("ELECCIONES_CONFIG")
	if configPath == "" {
		configPath = "elecciones.json5"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load configuration", "file", configPath, "err", err)
		os.Exit(1)
	}
	telemetry.InitSlog(cfg.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, "elecciones", cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to set up telemetry", "err", err)
		os.Exit(1)
	}

	root := newRootCmd(storage.NewApp(cfg.DataDir), cfg)
	err = root.ExecuteContext(ctx)
	if shutdownErr := tel.Shutdown(context.Background()); shutdownErr != nil {
		slog.Warn("failed to flush traces", "err", shutdownErr)
	}
	if err != nil {
		os.Exit(1)
	}
}
