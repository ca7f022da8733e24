package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable of the server. The zero-config path (no
// config.json, no environment) reproduces the stock behavior: port 8000,
// files served from the working directory, wildcard CORS.
type Config struct {
	Server     ServerConfig     `json:"server"`
	CORS       CORSConfig       `json:"cors"`
	Gzip       GzipConfig       `json:"gzip"`
	LiveReload LiveReloadConfig `json:"live_reload"`
}

type ServerConfig struct {
	Port         int    `json:"port"`
	RootDir      string `json:"root_dir"`
	ReadTimeout  string `json:"read_timeout"`
	WriteTimeout string `json:"write_timeout"`
	IdleTimeout  string `json:"idle_timeout"`
}

type CORSConfig struct {
	AllowOrigin  string `json:"allow_origin"`
	AllowMethods string `json:"allow_methods"`
	AllowHeaders string `json:"allow_headers"`
}

type GzipConfig struct {
	Enabled bool `json:"enabled"`
	MinSize int  `json:"min_size"`
}

type LiveReloadConfig struct {
	Enabled      bool   `json:"enabled"`
	PollInterval string `json:"poll_interval"`
}

// Default returns the configuration the server runs with when nothing
// overrides it.
func Default() *Config {
	workDir, err := os.Getwd()
	if err != nil {
		workDir = "."
	}

	return &Config{
		Server: ServerConfig{
			Port:         8000,
			RootDir:      workDir,
			ReadTimeout:  "300s",
			WriteTimeout: "300s",
			IdleTimeout:  "600s",
		},
		CORS: CORSConfig{
			AllowOrigin:  "*",
			AllowMethods: "GET, OPTIONS",
			AllowHeaders: "*",
		},
		Gzip: GzipConfig{
			Enabled: false,
			MinSize: 1024,
		},
		LiveReload: LiveReloadConfig{
			Enabled:      false,
			PollInterval: "1s",
		},
	}
}

// Load builds the effective configuration: defaults, then the optional
// config/config.json, then environment overrides (a .env file is honored).
func Load() (*Config, error) {
	return LoadFrom(filepath.Join("config", "config.json"))
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	raw, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DEVSERVE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DEVSERVE_ROOT"); v != "" {
		cfg.Server.RootDir = v
	}
}

// Validate checks the invariants the server relies on at startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}

	info, err := os.Stat(c.Server.RootDir)
	if err != nil {
		return fmt.Errorf("root directory %s: %w", c.Server.RootDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root directory %s is not a directory", c.Server.RootDir)
	}

	for _, d := range []string{
		c.Server.ReadTimeout, c.Server.WriteTimeout, c.Server.IdleTimeout,
		c.LiveReload.PollInterval,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid duration %q: %w", d, err)
		}
	}
	return nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return parseDuration(s.ReadTimeout, 300*time.Second)
}

func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return parseDuration(s.WriteTimeout, 300*time.Second)
}

func (s *ServerConfig) IdleTimeoutDuration() time.Duration {
	return parseDuration(s.IdleTimeout, 600*time.Second)
}

func (l *LiveReloadConfig) PollIntervalDuration() time.Duration {
	return parseDuration(l.PollInterval, time.Second)
}
