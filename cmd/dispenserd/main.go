package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/siantika/dispenserd/internal/config"
	"github.com/siantika/dispenserd/internal/logging"
	"github.com/siantika/dispenserd/internal/supervisor"
)

func main() {
	var configPath = flag.String("config", "", "path to a YAML config file (defaults to the built-in reference configuration)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "dispenserd: loading config %s: %v\n", *configPath, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := logging.New(&logging.Config{Level: cfg.LogLevel, Output: os.Stderr})
	logging.SetDefault(logger)

	sup, err := supervisor.Build(cfg, logger)
	if err != nil {
		logger.Errorf("dispenserd: startup failed: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Infof("dispenserd: shutdown signal received")
		cancel()
	}()

	sup.Run(ctx)

	logger.Infof("dispenserd: stopped cleanly")
	os.Exit(0)
}
