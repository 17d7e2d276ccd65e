package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/suryansh-23/logmask/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigVersion  = 1
	DefaultMarker         = "SensitiveData"
	DefaultMaxLineBytes   = 1 << 20
	DefaultRedisStream    = "logmask"
	defaultConfigRelPath  = "logmask/config.yaml"
	defaultRedisLineField = "line"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the top-level configuration schema.
type Config struct {
	Version int `yaml:"version"`

	Redaction Redaction `yaml:"redaction"`
	Stream    Stream    `yaml:"stream"`
	Allowlist Allowlist `yaml:"allowlist"`
	Output    Output    `yaml:"output"`
	Summary   Summary   `yaml:"summary"`

	Debug Debug `yaml:"debug"`
}

// Debug controls diagnostic logging.
type Debug struct {
	Enabled   bool `yaml:"enabled"`
	LogEvents bool `yaml:"log_events"`
}

// Redaction toggles the two redaction stages.
type Redaction struct {
	Sensitive Sensitive `yaml:"sensitive"`
	Oversized Oversized `yaml:"oversized"`
}

// Sensitive configures marker-wrapped payload masking.
type Sensitive struct {
	Enabled   bool             `yaml:"enabled"`
	Markers   []string         `yaml:"markers"`
	Encodings []types.Encoding `yaml:"encodings"`
}

// Oversized configures replacement of long hex/base64 runs.
// The length threshold is fixed and not configurable.
type Oversized struct {
	Enabled bool            `yaml:"enabled"`
	Kinds   []types.RunKind `yaml:"kinds"`
}

// Stream configures line-oriented redaction of byte streams.
type Stream struct {
	MaxLineBytes int `yaml:"max_line_bytes"`
}

// Allowlist configures redaction bypass for selected commands under `run`.
type Allowlist struct {
	Enabled  bool     `yaml:"enabled"`
	Commands []string `yaml:"commands,omitempty"`
}

// Output configures extra destinations for redacted lines.
type Output struct {
	Redis Redis `yaml:"redis"`
}

// Redis publishes redacted lines to a Redis stream.
type Redis struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Stream  string `yaml:"stream"`
	Field   string `yaml:"field"`
	MaxLen  int64  `yaml:"max_len"`
}

// Summary controls the end-of-run count line.
type Summary struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the canonical default configuration.
func DefaultConfig() Config {
	return Config{
		Version: DefaultConfigVersion,
		Redaction: Redaction{
			Sensitive: Sensitive{
				Enabled:   true,
				Markers:   []string{DefaultMarker},
				Encodings: types.Encodings(),
			},
			Oversized: Oversized{
				Enabled: true,
				Kinds:   types.RunKinds(),
			},
		},
		Stream: Stream{
			MaxLineBytes: DefaultMaxLineBytes,
		},
		Allowlist: Allowlist{
			Enabled:  false,
			Commands: nil,
		},
		Output: Output{
			Redis: Redis{
				Enabled: false,
				Stream:  DefaultRedisStream,
				Field:   defaultRedisLineField,
				MaxLen:  0,
			},
		},
		Summary: Summary{
			Enabled: false,
		},
		Debug: Debug{
			Enabled:   false,
			LogEvents: false,
		},
	}
}

// DefaultPath returns the default config path.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, defaultConfigRelPath), nil
	}
	return filepath.Join(home, ".config", defaultConfigRelPath), nil
}

// Parse parses YAML config content, applying defaults.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads config from disk, applying defaults when missing.
// The boolean return indicates whether a config file was found.
func Load(pathOverride string) (Config, bool, error) {
	path := strings.TrimSpace(pathOverride)
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return Config{}, false, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), false, nil
		}
		return Config{}, false, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, true, err
	}
	return cfg, true, nil
}

// Validate enforces the supported configuration schema.
func (c Config) Validate() error {
	var errs []string
	if c.Version != DefaultConfigVersion {
		errs = append(errs, fmt.Sprintf("version must be %d", DefaultConfigVersion))
	}
	if c.Redaction.Sensitive.Enabled && len(c.Redaction.Sensitive.Markers) == 0 {
		errs = append(errs, "redaction.sensitive.markers must not be empty when enabled")
	}
	for i, marker := range c.Redaction.Sensitive.Markers {
		if err := ValidateMarker(marker); err != nil {
			errs = append(errs, fmt.Sprintf("redaction.sensitive.markers[%d]: %v", i, err))
		}
	}
	for i, enc := range c.Redaction.Sensitive.Encodings {
		if !validEncoding(enc) {
			errs = append(errs, fmt.Sprintf("redaction.sensitive.encodings[%d] must be raw_hex|hex_encoded|base64", i))
		}
	}
	for i, kind := range c.Redaction.Oversized.Kinds {
		if !validRunKind(kind) {
			errs = append(errs, fmt.Sprintf("redaction.oversized.kinds[%d] must be hex|base64", i))
		}
	}
	if c.Stream.MaxLineBytes < 0 {
		errs = append(errs, "stream.max_line_bytes must be >= 0")
	}
	for i, entry := range c.Allowlist.Commands {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			errs = append(errs, fmt.Sprintf("allowlist.commands[%d] must not be empty", i))
			continue
		}
		if _, err := path.Match(trimmed, "dummy"); err != nil {
			errs = append(errs, fmt.Sprintf("allowlist.commands[%d] has invalid pattern: %v", i, err))
		}
	}
	if c.Output.Redis.Enabled {
		if strings.TrimSpace(c.Output.Redis.URL) == "" {
			errs = append(errs, "output.redis.url is required when enabled")
		} else if u, err := url.Parse(c.Output.Redis.URL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss" && u.Scheme != "unix") {
			errs = append(errs, "output.redis.url must be a redis://, rediss:// or unix:// URL")
		}
		if strings.TrimSpace(c.Output.Redis.Stream) == "" {
			errs = append(errs, "output.redis.stream is required when enabled")
		}
	}
	if c.Output.Redis.MaxLen < 0 {
		errs = append(errs, "output.redis.max_len must be >= 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// ValidateMarker reports whether name can be used as a sensitive marker tag.
func ValidateMarker(name string) error {
	if name == "" {
		return errors.New("marker must not be empty")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.', r == ':':
		default:
			return fmt.Errorf("marker %q contains unsupported character %q", name, r)
		}
	}
	return nil
}

// EncodingEnabled reports whether enc is listed in the sensitive config.
func (s Sensitive) EncodingEnabled(enc types.Encoding) bool {
	for _, e := range s.Encodings {
		if e == enc {
			return true
		}
	}
	return false
}

// KindEnabled reports whether kind is listed in the oversized config.
func (o Oversized) KindEnabled(kind types.RunKind) bool {
	for _, k := range o.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func validEncoding(enc types.Encoding) bool {
	switch enc {
	case types.EncodingRawHex, types.EncodingHexEncoded, types.EncodingBase64:
		return true
	default:
		return false
	}
}

func validRunKind(kind types.RunKind) bool {
	switch kind {
	case types.RunHex, types.RunBase64:
		return true
	default:
		return false
	}
}
