package main

import (
	// stdlib
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	// internal
	"github.com/Robogera/track/pkg/config"
	"github.com/Robogera/track/pkg/enums"
	"github.com/Robogera/track/pkg/indexed"
	"github.com/Robogera/track/pkg/metrics"
	"github.com/Robogera/track/pkg/rpath"

	// external
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"
)

const (
	default_cfg_path string = "../cfg/config.default.toml"
	publish_queue    int    = 64
)

var cfg_path string
var init_path string
var exe_dir string

func init() {
	var err error

	exe_dir, err = rpath.ExecutableDir()
	if err != nil {
		slog.Error("Can't find the executable's location", "error", err)
		return
	}

	flag.StringVar(
		&cfg_path, "config",
		"",
		"Path to config file (default "+default_cfg_path+" next to the executable)")
	flag.StringVar(
		&init_path, "init",
		"",
		"Write the default config to this path and exit")
}

func loadConfig() (*config.ConfigFile, error) {
	if cfg_path != "" {
		return config.Unmarshal(cfg_path)
	}
	path := rpath.Convert(exe_dir, default_cfg_path)
	cfg, err := config.Unmarshal(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("No config file found, using defaults", "looked at", path)
		return config.Default(), nil
	}
	return cfg, err
}

func logLevel(level string) slog.Level {
	parsed := enums.LoggingLevels.Parse(level)
	switch {
	case parsed == nil:
		slog.Warn(
			"No valid logging level provided. Defaulting to LevelError",
			"provided value", level)
		return slog.LevelError
	case *parsed == enums.LoggingLevelDebug:
		return slog.LevelDebug
	case *parsed == enums.LoggingLevelInfo:
		return slog.LevelInfo
	case *parsed == enums.LoggingLevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

func main() {

	// Configuration init

	flag.Parse()

	if init_path != "" {
		if err := config.CreateDefault(init_path); err != nil {
			slog.Error("Can't create config", "path", init_path, "error", err)
			os.Exit(1)
		}
		slog.Info("Default config written", "path", init_path)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("Config file not loaded. Shutting down...", "provided path", cfg_path, "error", err)
		os.Exit(1)
	}

	// stdout may carry the tracks, logs go to stderr
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
	}))

	if err := validateConfig(cfg); err != nil {
		logger.Error("Config rejected. Shutting down...", "error", err)
		os.Exit(1)
	}

	input, err := openInput(cfg.Input.Path)
	if err != nil {
		logger.Error("Can't open input", "path", cfg.Input.Path, "error", err)
		os.Exit(1)
	}
	defer input.Close()

	output, err := openOutput(cfg.Output.Path)
	if err != nil {
		logger.Error("Can't open output", "path", cfg.Output.Path, "error", err)
		os.Exit(1)
	}
	defer output.Close()

	session := uuid.New()
	logger.Info("Starting...", "session", session, "input", cfg.Input.Path, "output", cfg.Output.Path)

	ctx := context.Background()
	eg, child_ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return pipeline(child_ctx, logger, cfg, session, metrics.New(), input, output)
	})

	eg.Go(func() error {
		return control(child_ctx, logger)
	})

	err = eg.Wait()
	switch {
	case errors.Is(err, ERR_STREAM_ENDED):
		logger.Info("Stopped, input exhausted")
	case errors.Is(err, ERR_INTERRUPTED_BY_USER):
		logger.Info("Stopped by user")
	default:
		logger.Error("Stopped", "error", err)
		output.Close()
		os.Exit(1)
	}
}

func openInput(path string) (io.ReadCloser, error) {
	if path == config.StdPath {
		return io.NopCloser(os.Stdin), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ERR_BAD_INPUT, err)
	}
	return file, nil
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == config.StdPath {
		return nopWriteCloser{os.Stdout}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Join(ERR_BAD_OUTPUT, err)
	}
	return file, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// Wires the coroutines: streamreader -> processor -> sorter -> writer,
// with the optional publisher, metrics endpoint and stat logger on the side.
// Returns ERR_STREAM_ENDED after the last frame was written.
func pipeline(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.ConfigFile,
	session uuid.UUID,
	m *metrics.Metrics,
	input io.Reader,
	output io.Writer,
) error {
	eg, child_ctx := errgroup.WithContext(ctx)

	frames_chan := make(chan indexed.Indexed[InputFrame])
	unsorted_chan := make(chan indexed.Indexed[TrackedFrame])
	sorted_chan := make(chan indexed.Indexed[TrackedFrame])

	var stat_chan chan Statistics
	if cfg.Logging.StatPeriodSec > 0 {
		stat_chan = make(chan Statistics, 256)
		eg.Go(func() error {
			return stat(child_ctx, logger, stat_chan, cfg.Logging.StatPeriodSec)
		})
	}

	var publish_chan chan TrackedFrame
	if cfg.MQTT.Enabled {
		publish_chan = make(chan TrackedFrame, publish_queue)
		eg.Go(func() error {
			return mqttclient(child_ctx, logger, cfg, session, m, publish_chan)
		})
	}

	if cfg.Metrics.Enabled {
		eg.Go(func() error {
			return metricsserver(child_ctx, logger, cfg, m)
		})
	}

	eg.Go(func() error {
		return streamreader(child_ctx, logger, input, m, frames_chan)
	})

	eg.Go(func() error {
		return processor(child_ctx, logger, cfg, m, frames_chan, unsorted_chan, stat_chan)
	})

	eg.Go(func() error {
		return sorter(child_ctx, logger, unsorted_chan, sorted_chan)
	})

	eg.Go(func() error {
		return writer(child_ctx, logger, output, sorted_chan, publish_chan)
	})

	return eg.Wait()
}

func control(ctx context.Context, logger *slog.Logger) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt,
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGINT)
	defer signal.Stop(interrupt)

	select {
	case <-ctx.Done():
		logger.Info("Control cancelled by context")
		return context.Canceled
	case <-interrupt:
		logger.Info("Cancelled by user")
		return ERR_INTERRUPTED_BY_USER
	}
}

func validateConfig(cfg *config.ConfigFile) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ERR_INVALID_CONFIG, err)
	}
	return nil
}
