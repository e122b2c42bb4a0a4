package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/mcoot/wordcascade/internal/api"
	"github.com/mcoot/wordcascade/internal/factory"
)

func main() {
	bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := factory.LoadConfig()
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}

	logger, err := factory.NewLogger(cfg, os.Stdout)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("invalid logging configuration")
	}
	cfg.Logger = &logger

	app, err := factory.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create application")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The server still starts without a dictionary; health reports it as degraded
	if err := app.LoadDictionary(ctx); err != nil {
		logger.Warn().Err(err).Msg("could not load dictionary")
	} else {
		logger.Info().Int("words", app.DictionaryService.WordCount()).Msg("dictionary loaded")
		if err := app.BoardService.Warm(ctx); err != nil {
			logger.Warn().Err(err).Msg("could not warm board cache")
		}
	}

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Port
	server := api.NewServer(app.Router(), serverConfig, logger)
	// Long-lived streams would otherwise hold Shutdown open until its timeout
	server.RegisterOnShutdown(app.HubManager.Close)
	server.RegisterOnShutdown(app.WebSocket.Close)

	go app.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server error")
		}
		cancel()
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}

	if err := app.Close(); err != nil {
		logger.Error().Err(err).Msg("error releasing resources")
	}
	logger.Info().Msg("server stopped")
}
