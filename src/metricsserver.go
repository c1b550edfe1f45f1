package main

import (
	// stdlib
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	// internal
	"github.com/Robogera/track/pkg/config"
	"github.com/Robogera/track/pkg/metrics"
)

func metricsserver(
	ctx context.Context,
	parent_logger *slog.Logger,
	cfg *config.ConfigFile,
	m *metrics.Metrics,
) error {

	logger := parent_logger.With("coroutine", "metricsserver")

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", cfg.Metrics.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	err_chan := make(chan error, 1)

	go func() {
		err_chan <- server.ListenAndServe()
	}()
	defer func() {
		shutdown_context, cancel := context.WithTimeout(
			context.Background(),
			time.Second*time.Duration(cfg.Metrics.ShutdownTimeoutSec))
		defer cancel()
		shutdown_initiated_timestamp := time.Now()
		err := server.Shutdown(shutdown_context)
		logger.Info(
			"Shut down",
			"shutdown time (sec)", time.Since(shutdown_initiated_timestamp).Seconds(),
			"error", err)
	}()

	logger.Info("Started", "port", cfg.Metrics.Port)

	select {
	case <-ctx.Done():
		logger.Info("Cancelled by context", "timeout (sec)", cfg.Metrics.ShutdownTimeoutSec)
		return context.Canceled
	case err := <-err_chan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Error", "port", cfg.Metrics.Port, "error", err)
		return err
	}
}
