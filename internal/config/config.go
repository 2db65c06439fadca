// Package config loads fileget.toml. Keys left out of the file keep their
// defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/fileget/internal/logging"
	"github.com/danmuck/fileget/internal/protocol/session"
)

const DefaultPath = "fileget.toml"

type Config struct {
	Session     session.Config
	OutputDir   string
	LogLevel    string
	MetricsFile string
	Summary     bool
}

type fileConfig struct {
	Timeout      string `toml:"timeout"`
	Agent        string `toml:"agent"`
	OutputDir    string `toml:"output_dir"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
	MaxLineBytes int    `toml:"max_line_bytes"`
	LogLevel     string `toml:"log_level"`
	MetricsFile  string `toml:"metrics_file"`
	Summary      bool   `toml:"summary"`
}

func Default() Config {
	return Config{
		Session:   session.DefaultConfig(),
		OutputDir: ".",
		LogLevel:  "info",
	}
}

// Load overlays the keys defined in path onto Default and validates the
// result. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Session.Timeout = d
	}

	if meta.IsDefined("agent") {
		cfg.Session.Agent = strings.TrimSpace(raw.Agent)
	}

	if meta.IsDefined("output_dir") {
		cfg.OutputDir = strings.TrimSpace(raw.OutputDir)
	}

	if meta.IsDefined("max_body_bytes") {
		cfg.Session.Limits.MaxBodyBytes = raw.MaxBodyBytes
	}

	if meta.IsDefined("max_line_bytes") {
		cfg.Session.Limits.MaxLineBytes = raw.MaxLineBytes
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if meta.IsDefined("metrics_file") {
		cfg.MetricsFile = strings.TrimSpace(raw.MetricsFile)
	}

	if meta.IsDefined("summary") {
		cfg.Summary = raw.Summary
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if err := cfg.Session.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok && cfg.LogLevel != "" {
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}
	return nil
}
