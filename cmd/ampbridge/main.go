package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xyamp/ampbridge/internal/amp"
	"github.com/xyamp/ampbridge/internal/ble"
	"github.com/xyamp/ampbridge/internal/bridge"
	"github.com/xyamp/ampbridge/internal/config"
	"github.com/xyamp/ampbridge/internal/httpserver"
	"github.com/xyamp/ampbridge/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional, defaults apply)")
	listenAddr := flag.String("addr", "", "listen address override (e.g. :8000)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logger.Sync()

	adapter := ble.NewTinygoAdapter()
	if err := adapter.Enable(); err != nil {
		logger.Fatal("enable bluetooth adapter", zap.Error(err))
	}

	client := amp.NewClient(adapter, logger, amp.Options{
		NotifyWait: cfg.NotifyWait(),
		ScanWait:   cfg.ScanWindow(),
	})

	br := bridge.New(logger, bridge.Options{QueueSize: cfg.Bridge.QueueSize})
	br.Start()

	srv := httpserver.New(cfg.ListenAddr, client, br, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	br.Stop()
	logger.Info("goodbye")
}

// loadConfig loads the config from the given path, or falls back to
// built-in defaults when no path is provided.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
