package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"NewsBroadcaster/internal/app"
	"NewsBroadcaster/internal/config"
	"NewsBroadcaster/internal/logging"
)

func main() {
	inputsPath := flag.String("inputs", "", "compile a saved JSON payload instead of fetching")
	daemon := flag.Bool("daemon", false, "keep running on the configured schedule")
	flag.Parse()

	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application := app.New(cfg, logger)
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()

	if *inputsPath != "" {
		script, err := application.RenderPayload(ctx, *inputsPath)
		if err != nil {
			logger.Error("render payload failed", "error", err)
			os.Exit(1)
		}
		fmt.Println(script)
		return
	}

	run := application.Run
	if *daemon {
		run = application.RunDaemon
	}

	if err := run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
