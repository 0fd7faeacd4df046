package main

import (
	"context"
	"log"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/app"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/config"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/logger"
)

func main() {
	cfg := config.MustLoad()

	appLogger, err := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	application, err := app.New(context.Background(), cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize application", "error", err.Error())
	}

	if err := application.Run(); err != nil {
		appLogger.Fatal("Application stopped with error", "error", err.Error())
	}
}
