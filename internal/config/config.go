package config

import (
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/pymine-dev/mcwire/internal/errors"
	"github.com/pymine-dev/mcwire/pkg/chat"
	"github.com/pymine-dev/mcwire/pkg/protocol"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "mcwire.json"

	// DefaultAddr is the default debug server listen address.
	DefaultAddr = "localhost:8025"

	// DefaultThreshold leaves frame compression disabled.
	DefaultThreshold = -1

	// DefaultShutdownTimeout bounds graceful shutdown of the debug server.
	DefaultShutdownTimeout = "10s"

	// DefaultLogLevel is the default slog level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default slog handler.
	DefaultLogFormat = "text"

	// DefaultChatMode is the default rendering for chat messages.
	DefaultChatMode = "color"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "mcwire"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config represents the complete mcwire.json configuration.
type Config struct {
	// Server contains debug server configuration.
	Server ServerConfig `json:"server"`

	// Codec contains frame codec configuration.
	Codec CodecConfig `json:"codec"`

	// Registry is the path to a registries.json dump. Relative paths are
	// resolved against the directory holding mcwire.json.
	Registry string `json:"registry,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log"`

	// Chat contains chat rendering configuration.
	Chat ChatConfig `json:"chat"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains debug server settings.
type ServerConfig struct {
	// Addr is the host:port to listen on.
	Addr string `json:"addr,omitempty"`

	// ShutdownTimeout is how long in-flight requests get on shutdown
	// (e.g., "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty"`
}

// CodecConfig contains frame codec settings.
type CodecConfig struct {
	// Threshold is the compression threshold; -1 disables compression.
	Threshold *int `json:"threshold,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// ChatConfig contains chat rendering settings.
type ChatConfig struct {
	// Mode is one of plain, normal, color.
	Mode string `json:"mode,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads mcwire.json from the given directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigParse).
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				Wrap(err)
		}
		return nil, errors.New(errors.CodeConfigParse).Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeConfigParse).
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to its original path.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo saves the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New(errors.CodeConfigParse).Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigParse).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from, or "" for
// defaults.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Codec.Threshold == nil {
		t := DefaultThreshold
		c.Codec.Threshold = &t
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Chat.Mode == "" {
		c.Chat.Mode = DefaultChatMode
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return invalid("server.addr", c.Server.Addr, "Use host:port, e.g. "+DefaultAddr)
	}
	if d, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil || d < 0 {
		return invalid("server.shutdownTimeout", c.Server.ShutdownTimeout, "Use a Go duration such as 10s")
	}
	if t := c.Threshold(); t < -1 || t > protocol.MaxUncompressedLength {
		return invalid("codec.threshold", strconv.Itoa(t),
			"Use -1 to disable compression or a byte count up to "+strconv.Itoa(protocol.MaxUncompressedLength))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", c.Log.Level, "Use debug, info, warn or error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format", c.Log.Format, `Use "text" or "json"`)
	}
	if _, err := chat.ParseMode(c.Chat.Mode); err != nil {
		return invalid("chat.mode", c.Chat.Mode, "Use plain, normal or color")
	}
	return nil
}

func invalid(field, value, hint string) error {
	return errors.New(errors.CodeConfigValue).
		WithDetail(field + ": " + strconv.Quote(value) + " is not valid").
		WithSuggestion(hint)
}

// Threshold returns the configured compression threshold.
func (c *Config) Threshold() int {
	if c.Codec.Threshold == nil {
		return DefaultThreshold
	}
	return *c.Codec.Threshold
}

// SetThreshold overrides the compression threshold.
func (c *Config) SetThreshold(t int) {
	c.Codec.Threshold = &t
}

// ShutdownTimeout returns the parsed shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		d, _ = time.ParseDuration(DefaultShutdownTimeout)
	}
	return d
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	l, err := ParseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// ChatMode returns the configured chat rendering mode.
func (c *Config) ChatMode() chat.Mode {
	m, err := chat.ParseMode(c.Chat.Mode)
	if err != nil {
		return chat.ModeColor
	}
	return m
}

// RegistryPath returns the absolute path to the registry dump, or "" if
// none is configured.
func (c *Config) RegistryPath() string {
	if c.Registry == "" || filepath.IsAbs(c.Registry) {
		return c.Registry
	}
	return filepath.Join(c.Dir(), c.Registry)
}

// ParseLevel parses a log level name.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(strings.ToUpper(s)))
	return l, err
}

// Exists checks if mcwire.json exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindConfigDir walks up from startDir to find the directory holding
// mcwire.json.
func FindConfigDir(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeConfigParse).
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads the nearest mcwire.json above the working
// directory. Without one, the defaults are returned.
func LoadFromWorkingDir() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	dir, err := FindConfigDir(cwd)
	if err != nil {
		return New(), nil
	}
	return Load(dir)
}
