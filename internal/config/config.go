package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/agentwire/internal/logging"
	"github.com/danmuck/agentwire/internal/protocol/session"
)

// EnvAuthSock names the agent socket when no config value is set.
const EnvAuthSock = "SSH_AUTH_SOCK"

// Config is the resolved runtime configuration for agentwire tools.
type Config struct {
	Socket   string
	LogLevel string
	Session  session.Config
}

// fileConfig mirrors the TOML layout. Durations are Go duration strings.
type fileConfig struct {
	Socket          string `toml:"socket"`
	LogLevel        string `toml:"log_level"`
	MaxMessageBytes int64  `toml:"max_message_bytes"`
	DialTimeout     string `toml:"dial_timeout"`
	DialAttempts    int    `toml:"dial_attempts"`
	RequestTimeout  string `toml:"request_timeout"`
}

func Default() Config {
	return Config{
		Socket:   strings.TrimSpace(os.Getenv(EnvAuthSock)),
		LogLevel: "info",
		Session:  session.DefaultConfig(),
	}
}

// Load overlays the keys defined in the file at path onto Default. An
// empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, cfg.Validate()
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("socket") {
		cfg.Socket = strings.TrimSpace(raw.Socket)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("max_message_bytes") {
		if raw.MaxMessageBytes <= 0 || raw.MaxMessageBytes > 1<<32-1 {
			return Config{}, fmt.Errorf("max_message_bytes out of range: %d", raw.MaxMessageBytes)
		}
		cfg.Session.Limits.MaxMessageBytes = uint32(raw.MaxMessageBytes)
	}
	if meta.IsDefined("dial_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.DialTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse dial_timeout: %w", err)
		}
		cfg.Session.DialTimeout = d
	}
	if meta.IsDefined("dial_attempts") {
		cfg.Session.DialAttempts = raw.DialAttempts
	}
	if meta.IsDefined("request_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.RequestTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse request_timeout: %w", err)
		}
		cfg.Session.RequestTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.Session.Limits.MaxMessageBytes == 0 {
		return fmt.Errorf("max_message_bytes must be positive")
	}
	if c.Session.DialTimeout < 0 || c.Session.RequestTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.Session.DialAttempts < 1 {
		return fmt.Errorf("dial_attempts must be at least 1")
	}
	return nil
}

// Encode writes c in the file layout, for `agentwire config --print`.
func Encode(w io.Writer, c Config) error {
	raw := fileConfig{
		Socket:          c.Socket,
		LogLevel:        c.LogLevel,
		MaxMessageBytes: int64(c.Session.Limits.MaxMessageBytes),
		DialTimeout:     c.Session.DialTimeout.String(),
		DialAttempts:    c.Session.DialAttempts,
		RequestTimeout:  c.Session.RequestTimeout.String(),
	}
	return toml.NewEncoder(w).Encode(raw)
}
