package main

import (
	"context"
	"flag"
	"os"

	"github.com/Temutjin2k/skytrack/config"
	"github.com/Temutjin2k/skytrack/internal/app"
	"github.com/Temutjin2k/skytrack/pkg/logger"
)

var (
	helpFlag   = flag.Bool("help", false, "Show help message")
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
)

func main() {
	flag.Parse()
	if *helpFlag {
		config.PrintHelp()
		return
	}

	ctx := context.Background()
	log := logger.InitLogger("", logger.LevelInfo)

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		os.Exit(1)
	}

	log = logger.InitLogger(cfg.Mode.String(), cfg.Log.Level)

	// Printing configuration
	config.PrintConfig(ctx, log, cfg)

	// Creating application
	application, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		os.Exit(1)
	}

	// Running the apllication
	if err = application.Run(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		os.Exit(1)
	}
}
