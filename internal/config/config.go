// Package config loads klaro.yaml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ChicagoDave/klaro/internal/locator"
)

// FileName is the config file looked up in a project directory.
const FileName = "klaro.yaml"

// Config is the full runtime configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Solver    SolverConfig    `yaml:"solver"`
	Log       LogConfig       `yaml:"log"`
	Catalogue CatalogueConfig `yaml:"catalogue"`
}

// ServerConfig controls the HTTP listener. When Addr's port is busy the next
// PortAttempts-1 ports are tried in turn.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	PortAttempts int    `yaml:"port_attempts"`
}

// DataConfig locates the request and result documents.
type DataConfig struct {
	Dir         string `yaml:"dir"`
	RequestFile string `yaml:"request_file"`
	ResultFile  string `yaml:"result_file"`
}

// SolverConfig describes the external solver invocation.
type SolverConfig struct {
	Script         string        `yaml:"script"`
	Timeout        time.Duration `yaml:"timeout"`
	OutputEncoding string        `yaml:"output_encoding"`
	EnvVar         string        `yaml:"env_var"`
	SearchRoots    []string      `yaml:"search_roots"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CatalogueConfig optionally replaces the embedded catalogue.
type CatalogueConfig struct {
	File string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":3000", PortAttempts: 11},
		Data:   DataConfig{Dir: "."},
		Solver: SolverConfig{
			Script:         "R/Minimization.R",
			OutputEncoding: "utf-8",
			EnvVar:         locator.DefaultEnvVar,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads a config file over the defaults, then applies the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// LoadProject loads klaro.yaml from dir. A missing file yields the defaults
// with the environment applied.
func LoadProject(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg = Default()
	if dir != "" {
		cfg.Data.Dir = dir
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from KLARO_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("KLARO_ADDR"); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup("KLARO_DATA_DIR"); ok && v != "" {
		c.Data.Dir = v
	}
	if v, ok := lookup("KLARO_SOLVER_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("KLARO_SOLVER_TIMEOUT: %w", err)
		}
		c.Solver.Timeout = d
	}
	if v, ok := lookup("KLARO_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	var errs []string
	if strings.TrimSpace(c.Data.Dir) == "" {
		errs = append(errs, "data.dir must not be empty")
	}
	if c.Solver.Timeout < 0 {
		errs = append(errs, "solver.timeout must not be negative")
	}
	if c.Server.PortAttempts < 1 {
		errs = append(errs, "server.port_attempts must be at least 1")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q must be console or json", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
