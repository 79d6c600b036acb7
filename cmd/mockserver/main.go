// Package main provides the standalone mock backend for the tracker client.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/zhuiying-client/internal/api"
	"github.com/zhuiying-client/internal/config"
	"github.com/zhuiying-client/internal/logging"
)

func main() {
	fmt.Println("Zhuiying Mock Backend")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	backend := api.NewBackend(api.BackendConfigFromConfig(cfg))
	serverConfig := api.ServerConfigFromConfig(&cfg.Mock)
	server := api.NewServer(serverConfig, backend, logger)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"addr":          server.Addr(),
		"tracker_cost":  cfg.Economy.TrackerCost,
		"initial_coins": cfg.Mock.InitialCoins,
		"latency":       cfg.Mock.Latency.String(),
	}).Info("Mock backend started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
