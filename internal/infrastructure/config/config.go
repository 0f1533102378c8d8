package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Workspace WorkspaceConfig
	Shell     ShellConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"127.0.0.1"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	WSReadLimit     int64         `envconfig:"WS_READ_LIMIT" default:"1048576"`
}

// WorkspaceConfig holds the directories the server works in and serves.
type WorkspaceConfig struct {
	// WorkDir seeds every session's working directory. Empty means the
	// process working directory.
	WorkDir   string `envconfig:"WORK_DIR"`
	PublicDir string `envconfig:"PUBLIC_DIR" default:"public"`
	// LogsDir defaults to WorkDir/logs.
	LogsDir string `envconfig:"LOGS_DIR"`
}

// ShellConfig holds interpreter selection settings.
type ShellConfig struct {
	Default  string        `envconfig:"DEFAULT_SHELL"`
	Catalog  string        `envconfig:"SHELL_CATALOG"`
	ProbeTTL time.Duration `envconfig:"SHELL_PROBE_TTL" default:"1m"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
	// File is the log file path; empty means LogsDir/webterm.log and "-"
	// disables file output.
	File string `envconfig:"LOG_FILE"`
}

// RateLimitConfig holds rate limiting configuration for /execute.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "127.0.0.1",
			ShutdownTimeout: 10 * time.Second,
			WSReadLimit:     1 << 20,
		},
		Workspace: WorkspaceConfig{
			PublicDir: "public",
		},
		Shell: ShellConfig{
			ProbeTTL: time.Minute,
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Resolve fills derived defaults and canonicalizes the work directory.
// A work directory that does not exist is an error.
func (c *Config) Resolve() error {
	dir := c.Workspace.WorkDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("invalid WORK_DIR %q: %w", dir, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fmt.Errorf("invalid WORK_DIR %q: %w", dir, err)
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return fmt.Errorf("invalid WORK_DIR %q: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("invalid WORK_DIR %q: not a directory", dir)
	}
	c.Workspace.WorkDir = canonical

	if c.Workspace.LogsDir == "" {
		c.Workspace.LogsDir = filepath.Join(canonical, "logs")
	}
	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(c.Workspace.LogsDir, "webterm.log")
	}
	return nil
}

// LogFile returns the log file path, or "" when file logging is disabled.
func (c *Config) LogFile() string {
	if c.Logging.File == "-" {
		return ""
	}
	return c.Logging.File
}
