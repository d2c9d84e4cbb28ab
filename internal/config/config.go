// Package config resolves the settings of a chat endpoint from defaults,
// an optional TOML or YAML file and FRAMECHAT_* environment variables.
// Command-line flags are applied last by the commands.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/omochice/framechat/internal/chat"
	"github.com/omochice/framechat/internal/logging"
	"gopkg.in/yaml.v3"
)

const (
	EnvAddress        = "FRAMECHAT_ADDRESS"
	EnvTransport      = "FRAMECHAT_TRANSPORT"
	EnvMaxMessageSize = "FRAMECHAT_MAX_MESSAGE_SIZE"
	EnvTranscript     = "FRAMECHAT_TRANSCRIPT"
	EnvLogLevel       = "FRAMECHAT_LOG_LEVEL"
	EnvLogNoColor     = "FRAMECHAT_LOG_NOCOLOR"
	EnvLogTimestamp   = "FRAMECHAT_LOG_TIMESTAMP"
)

// Transport names.
const (
	TransportAuto      = "auto"
	TransportTCP       = "tcp"
	TransportWebSocket = "ws"
)

// Config holds the settings of one endpoint.
type Config struct {
	// Address is the listen address for the server and the dial address
	// for the client.
	Address   string `toml:"address" yaml:"address"`
	Transport string `toml:"transport" yaml:"transport"`
	// MaxMessageSize rejects incoming frames declaring a larger payload.
	// Zero accepts any length the wire format can carry.
	MaxMessageSize uint32 `toml:"max_message_size" yaml:"max_message_size"`
	Prompt         string `toml:"prompt" yaml:"prompt"`
	Transcript     string `toml:"transcript" yaml:"transcript"`
	Log            Log    `toml:"log" yaml:"log"`

	client bool
}

// Log configures the diagnostic logger.
type Log struct {
	Level     string `toml:"level" yaml:"level"`
	NoColor   bool   `toml:"no_color" yaml:"no_color"`
	Timestamp bool   `toml:"timestamp" yaml:"timestamp"`
}

// Options converts l for logging.New.
func (l Log) Options() logging.Options {
	return logging.Options{Level: l.Level, NoColor: l.NoColor, Timestamp: l.Timestamp}
}

func defaults() Config {
	return Config{
		Prompt: chat.DefaultPrompt,
		Log: Log{
			Level:     "info",
			Timestamp: true,
		},
	}
}

// DefaultServer returns the responder defaults.
func DefaultServer() Config {
	cfg := defaults()
	cfg.Address = ":8080"
	cfg.Transport = TransportAuto
	return cfg
}

// DefaultClient returns the initiator defaults.
func DefaultClient() Config {
	cfg := defaults()
	cfg.Address = "localhost:8080"
	cfg.Transport = TransportTCP
	cfg.client = true
	return cfg
}

// Load overlays the file at path onto base. An empty path returns base.
// The format is chosen by extension; unknown keys are rejected.
func Load(path string, base Config) (Config, error) {
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	cfg := base
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("config parse failed (%s): unknown keys %s", path, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config load failed (%s): unsupported format %q", path, ext)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with FRAMECHAT_* variables. Unparsable boolean
// values are ignored.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvAddress); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv(EnvTransport); v != "" {
		cfg.Transport = strings.ToLower(strings.TrimSpace(v))
	}
	if v := strings.TrimSpace(os.Getenv(EnvMaxMessageSize)); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMaxMessageSize, err)
		}
		cfg.MaxMessageSize = uint32(n)
	}
	if v := os.Getenv(EnvTranscript); v != "" {
		cfg.Transcript = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v, ok := logging.ParseBool(os.Getenv(EnvLogNoColor)); ok {
		cfg.Log.NoColor = v
	}
	if v, ok := logging.ParseBool(os.Getenv(EnvLogTimestamp)); ok {
		cfg.Log.Timestamp = v
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Address) == "" {
		return errors.New("config missing address")
	}
	switch c.Transport {
	case TransportTCP, TransportWebSocket:
	case TransportAuto:
		if c.client {
			return fmt.Errorf("transport %q is only valid for the server", c.Transport)
		}
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}
