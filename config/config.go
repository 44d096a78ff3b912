// Package config loads the workflow service's configuration from a YAML
// file, applies environment variable overrides, and can watch the file
// for changes to the fields that are safe to hot-reload.
package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Config is the workflow service's full runtime configuration.
type Config struct {
	HTTPPort    int           `yaml:"http_port"`
	DatabaseDSN string        `yaml:"database_dsn"`
	LogLevel    string        `yaml:"log_level"`
	Metrics     MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds the metrics settings read from the file. Enabled is
// parsed but not consulted: cmd/workflowd always serves /metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns a Config with the values cmd/workflowd falls back to
// when neither a file nor an environment variable supplies one.
func Default() Config {
	return Config{
		HTTPPort:    8080,
		DatabaseDSN: "postgres://localhost:5432/paymentflow?sslmode=disable",
		LogLevel:    "info",
		Metrics:     MetricsConfig{Enabled: true},
	}
}

// Load reads path as YAML over Default(), then applies environment
// overrides. A missing file is not an error — Default() plus environment
// overrides is a valid configuration on its own.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PAYMENTFLOW_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.HTTPPort = port
		}
	}
	if v := os.Getenv("PAYMENTFLOW_DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("PAYMENTFLOW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Watcher reloads LogLevel from path whenever the file changes on disk.
// Only LogLevel is hot-reloadable; the database DSN and HTTP port require
// a process restart.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	mu      sync.RWMutex
	level   string
	onChange func(level string)
}

// NewWatcher starts watching path for changes and reports the live log
// level back through onChange (which may be nil).
func NewWatcher(path, initialLevel string, onChange func(level string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch config file: %w", err)
	}
	w := &Watcher{path: path, watcher: fw, level: initialLevel, onChange: onChange}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for event := range w.watcher.Events {
		if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			continue
		}
		cfg, err := Load(w.path)
		if err != nil {
			continue
		}
		w.mu.Lock()
		w.level = cfg.LogLevel
		w.mu.Unlock()
		if w.onChange != nil {
			w.onChange(cfg.LogLevel)
		}
	}
}

// LogLevel returns the most recently observed log level.
func (w *Watcher) LogLevel() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.level
}

// Close stops the underlying file watch.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
