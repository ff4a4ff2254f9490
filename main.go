package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/drawroom/drawroom-server/api"
	"github.com/drawroom/drawroom-server/game"
	"github.com/drawroom/drawroom-server/util"
	"github.com/drawroom/drawroom-server/ws"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	fs := pflag.NewFlagSet("drawroom-server", pflag.ContinueOnError)
	logLevel := fs.StringP("log-level", "l", "", "log level override (trace..panic)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse command line arguments")
	}

	util.InitValidator()

	config, err := util.LoadConfig()

	if err != nil {
		logger.Fatal().Err(err).Msg("cannot load config")
	}

	level := config.LogLevel

	if *logLevel != "" {
		level = *logLevel
	}

	lvl, err := zerolog.ParseLevel(level)

	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse log level")
	}

	logger = logger.Level(lvl)

	directory := game.NewDirectory(time.Duration(config.RoundSeconds)*time.Second, logger)
	manager := ws.NewManager(directory, logger)
	server := api.NewServer(config, directory, manager, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := server.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}

	logger.Info().Msg("server stopped")
}
