package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
)

// Env holds settings read from the environment.
type Env struct {
	SSHHost     string `env:"SSH_HOST" envDefault:"::"`
	SSHPort     string `env:"SSH_PORT" envDefault:"2222"`
	HostKeyPath string `env:"SSH_HOST_KEY" envDefault:"/app/keys/host_key"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	// Defaults for the field itself. Hosts may override them per session.
	DarkMode         bool    `env:"DARK_MODE" envDefault:"true"`
	ReducedMotion    bool    `env:"PREFERS_REDUCED_MOTION" envDefault:"false"`
	DevicePixelRatio float64 `env:"DEVICE_PIXEL_RATIO" envDefault:"1"`
}

// Load parses the environment into an Env.
func Load() (*Env, error) {
	cfg := &Env{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// NewLogger builds a logger writing to w at the configured level.
// An unknown level falls back to info.
func (e *Env) NewLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "particles",
	})
	level, err := log.ParseLevel(e.LogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", e.LogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// OpenLogger returns a logger for hosts that own the terminal. Output goes to
// LogFile when set and is discarded otherwise. The returned close func is
// always non-nil.
func (e *Env) OpenLogger() (*log.Logger, func() error, error) {
	if e.LogFile == "" {
		return e.NewLogger(io.Discard), func() error { return nil }, nil
	}
	f, err := os.OpenFile(e.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return e.NewLogger(f), f.Close, nil
}

// LoadSession parses the process environment overlaid with environ, typically
// the variables an SSH client forwarded with SendEnv. Session values win.
func LoadSession(environ []string) (*Env, error) {
	vars := toMap(os.Environ())
	for k, v := range toMap(environ) {
		vars[k] = v
	}
	cfg := &Env{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("failed to parse session config: %w", err)
	}
	return cfg, nil
}

func toMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}
