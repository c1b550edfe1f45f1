package config

import (
	// stdlib
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Robogera/track/pkg/detection"
	"github.com/Robogera/track/pkg/enums"
	"github.com/Robogera/track/pkg/kalman"
	"github.com/Robogera/track/pkg/rpath"
	"github.com/Robogera/track/pkg/tracker"
	"github.com/pelletier/go-toml/v2"
)

var ErrInvalid = errors.New("Invalid config")

// Reads from stdin / writes to stdout
const StdPath = "-"

// Config file structure

type ConfigFile struct {
	Tracker TrackerConfig    `toml:"tracker"`
	Kalman  kalman.Noise     `toml:"kalman"`
	Filter  detection.Filter `toml:"filter"`
	Input   InputConfig      `toml:"input"`
	Output  OutputConfig     `toml:"output"`
	MQTT    MQTTConfig       `toml:"mqtt"`
	Metrics MetricsConfig    `toml:"metrics"`
	Logging LoggingConfig    `toml:"logging"`
}

type TrackerConfig struct {
	MaxAge       int     `toml:"max_age"`
	MinHits      int     `toml:"min_hits"`
	IoUThreshold float64 `toml:"iou_threshold"`
	Solver       string  `toml:"solver"`
	History      int     `toml:"history"`
}

type InputConfig struct {
	Path string `toml:"path"`
}

type OutputConfig struct {
	Path string `toml:"path"`
}

type MQTTConfig struct {
	Enabled           bool   `toml:"enabled"`
	Broker            string `toml:"broker"`
	Topic             string `toml:"topic"`
	ClientID          string `toml:"client_id"`
	Username          string `toml:"username"`
	Password          string `toml:"password"`
	ConnectTimeoutSec uint   `toml:"connect_timeout_sec"`
	// Broker drops the session after 1.5x this without traffic
	KeepAliveSec uint `toml:"keepalive_sec"`
}

type MetricsConfig struct {
	Enabled            bool `toml:"enabled"`
	Port               uint `toml:"port"`
	ShutdownTimeoutSec uint `toml:"shutdown_timeout_sec"`
}

type LoggingConfig struct {
	Level         string `toml:"level"`
	StatPeriodSec uint   `toml:"stat_period_sec"`
}

func Default() *ConfigFile {
	trk := tracker.DefaultConfig()
	return &ConfigFile{
		Tracker: TrackerConfig{
			MaxAge:       trk.MaxAge,
			MinHits:      trk.MinHits,
			IoUThreshold: trk.IoUThreshold,
			Solver:       trk.Solver,
			History:      trk.History,
		},
		Kalman: kalman.DefaultNoise(),
		Filter: detection.Filter{
			MinConfidence: 0,
			Labels:        map[string]float64{},
		},
		Input:  InputConfig{Path: StdPath},
		Output: OutputConfig{Path: StdPath},
		MQTT: MQTTConfig{
			Enabled:           false,
			Broker:            "127.0.0.1:1883",
			Topic:             "tracks",
			ClientID:          "tracker",
			ConnectTimeoutSec: 5,
			KeepAliveSec:      60,
		},
		Metrics: MetricsConfig{
			Enabled:            false,
			Port:               9100,
			ShutdownTimeoutSec: 2,
		},
		Logging: LoggingConfig{
			Level:         enums.LoggingLevelInfo.Value,
			StatPeriodSec: 5,
		},
	}
}

// Values missing from the file keep their defaults.
// Relative input/output paths are resolved against the file's directory.
func Unmarshal(file_path string) (*ConfigFile, error) {
	config_file := Default()
	data, err := os.ReadFile(file_path)
	if err != nil {
		return nil,
			fmt.Errorf("Unable to read %s error: %w", file_path, err)
	}
	err = toml.Unmarshal(data, config_file)
	if err != nil {
		return nil,
			fmt.Errorf("Unable to unmarshal %s error: %w", file_path, err)
	}
	labels := make(map[string]float64, len(config_file.Filter.Labels))
	for label, min_conf := range config_file.Filter.Labels {
		labels[strings.ToLower(label)] = min_conf
	}
	config_file.Filter.Labels = labels

	config_dir := filepath.Dir(file_path)
	if config_file.Input.Path != StdPath {
		config_file.Input.Path = rpath.Convert(config_dir, config_file.Input.Path)
	}
	if config_file.Output.Path != StdPath {
		config_file.Output.Path = rpath.Convert(config_dir, config_file.Output.Path)
	}
	return config_file, nil
}

// Writes the default config to file_path, fails if it already exists
func CreateDefault(file_path string) error {
	data, err := toml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("Can't marshal default config: %w", err)
	}
	file, err := os.OpenFile(file_path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("Can't create %s: %w", file_path, err)
	}
	defer file.Close()
	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("Can't write %s: %w", file_path, err)
	}
	return nil
}

// Tracker settings in the form the tracker package takes them
func (cfg *ConfigFile) TrackerConfig() tracker.Config {
	return tracker.Config{
		MaxAge:       cfg.Tracker.MaxAge,
		MinHits:      cfg.Tracker.MinHits,
		IoUThreshold: cfg.Tracker.IoUThreshold,
		Solver:       cfg.Tracker.Solver,
		History:      cfg.Tracker.History,
		Noise:        cfg.Kalman,
	}
}

func (cfg *ConfigFile) Validate() error {
	if enums.Solvers.Parse(cfg.Tracker.Solver) == nil {
		return fmt.Errorf("%w: tracker.solver %q, expected one of %v",
			ErrInvalid, cfg.Tracker.Solver, enums.Solvers.Values())
	}
	if err := cfg.TrackerConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !(cfg.Filter.MinConfidence >= 0 && cfg.Filter.MinConfidence <= 1) {
		return fmt.Errorf("%w: filter.min_confidence %v, expected [0, 1]",
			ErrInvalid, cfg.Filter.MinConfidence)
	}
	for label, min_conf := range cfg.Filter.Labels {
		if !(min_conf >= 0 && min_conf <= 1) {
			return fmt.Errorf("%w: filter.labels.%s %v, expected [0, 1]",
				ErrInvalid, label, min_conf)
		}
	}
	if cfg.Input.Path == "" || cfg.Output.Path == "" {
		return fmt.Errorf("%w: input and output paths can't be empty", ErrInvalid)
	}
	if cfg.MQTT.Enabled && (cfg.MQTT.Broker == "" || cfg.MQTT.Topic == "") {
		return fmt.Errorf("%w: mqtt.broker and mqtt.topic are required", ErrInvalid)
	}
	if cfg.MQTT.Enabled && (cfg.MQTT.KeepAliveSec < 2 || cfg.MQTT.KeepAliveSec > 65535) {
		return fmt.Errorf("%w: mqtt.keepalive_sec %d, expected [2, 65535]",
			ErrInvalid, cfg.MQTT.KeepAliveSec)
	}
	if cfg.Metrics.Enabled && (cfg.Metrics.Port == 0 || cfg.Metrics.Port > 65535) {
		return fmt.Errorf("%w: metrics.port %d", ErrInvalid, cfg.Metrics.Port)
	}
	if enums.LoggingLevels.Parse(cfg.Logging.Level) == nil {
		return fmt.Errorf("%w: logging.level %q, expected one of %v",
			ErrInvalid, cfg.Logging.Level, enums.LoggingLevels.Values())
	}
	return nil
}
