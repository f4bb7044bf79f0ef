package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/phonekit/phonekit/internal/phone"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "phonekit.toml"

// Config is the top-level phonekit configuration.
type Config struct {
	Parse   ParseConfig   `toml:"parse"`
	Format  FormatConfig  `toml:"format"`
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
}

// ParseConfig holds the defaults applied to numbers written without a
// '+' or "00" prefix.
type ParseConfig struct {
	DefaultCountryCode string `toml:"default_country_code"`
	DefaultAreaCode    string `toml:"default_area_code"`
}

// FormatConfig selects the output template and defines extra named ones.
type FormatConfig struct {
	Default   string            `toml:"default"` // template name or token pattern
	Templates map[string]string `toml:"templates"`
}

type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ShutdownTimeout int    `toml:"shutdown_timeout"`
	RateLimit       int    `toml:"rate_limit"` // requests per minute per IP, 0 disables
	MaxBatch        int    `toml:"max_batch"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns a Config with all defaults applied.
func Default() *Config {
	return &Config{
		Format: FormatConfig{
			Default: phone.FormatDefault,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8095,
			ShutdownTimeout: 10,
			RateLimit:       120,
			MaxBatch:        100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load resolves the configuration. Later sources win: built-in defaults,
// then the TOML file at configPath, then PHONEKIT_* variables, then flags.
// A missing file is not an error.
func Load(configPath string, flags map[string]string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath = DefaultPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", configPath, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	applyFlags(cfg, flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Parse.DefaultCountryCode != "" && !isDigits(strings.TrimPrefix(c.Parse.DefaultCountryCode, "+")) {
		return fmt.Errorf("parse.default_country_code must be digits, got %q", c.Parse.DefaultCountryCode)
	}
	if c.Parse.DefaultAreaCode != "" && !isDigits(c.Parse.DefaultAreaCode) {
		return fmt.Errorf("parse.default_area_code must be digits, got %q", c.Parse.DefaultAreaCode)
	}
	f, err := phone.NewFormatter(c.Format.Templates)
	if err != nil {
		return fmt.Errorf("format.templates: %w", err)
	}
	if c.Format.Default == "" {
		return fmt.Errorf("format.default must not be empty")
	}
	if _, ok := f.Lookup(c.Format.Default); !ok && !strings.Contains(c.Format.Default, "%") {
		return fmt.Errorf("format.default %q is neither a template name nor a pattern (known: %s)",
			c.Format.Default, strings.Join(f.Names(), ", "))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must be non-negative, got %d", c.Server.ShutdownTimeout)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must be non-negative, got %d", c.Server.RateLimit)
	}
	if c.Server.MaxBatch < 1 {
		return fmt.Errorf("server.max_batch must be at least 1, got %d", c.Server.MaxBatch)
	}
	if c.Logging.Level != "" {
		switch c.Logging.Level {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("logging.level must be one of: debug, info, warn, error; got %q", c.Logging.Level)
		}
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("logging.format must be \"json\" or \"text\", got %q", c.Logging.Format)
	}
	return nil
}

// Address returns the host:port string for the server to listen on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ParserOptions returns the parse defaults as phone.Options for the
// embedded registry.
func (c *Config) ParserOptions() phone.Options {
	return phone.Options{
		DefaultCountryCode: c.Parse.DefaultCountryCode,
		DefaultAreaCode:    c.Parse.DefaultAreaCode,
	}
}

// Formatter returns a formatter holding the built-in and configured templates.
func (c *Config) Formatter() (*phone.Formatter, error) {
	return phone.NewFormatter(c.Format.Templates)
}

// GenerateDefault writes a commented default phonekit.toml to the given path.
func GenerateDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultTOML), 0o644)
}

// ToTOML returns the config serialized as TOML.
func (c *Config) ToTOML() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// stringEnv lists the PHONEKIT_* variables that override string settings.
func stringEnv(cfg *Config) map[string]*string {
	return map[string]*string{
		"PHONEKIT_DEFAULT_COUNTRY_CODE": &cfg.Parse.DefaultCountryCode,
		"PHONEKIT_DEFAULT_AREA_CODE":    &cfg.Parse.DefaultAreaCode,
		"PHONEKIT_FORMAT":               &cfg.Format.Default,
		"PHONEKIT_SERVER_HOST":          &cfg.Server.Host,
		"PHONEKIT_LOG_LEVEL":            &cfg.Logging.Level,
		"PHONEKIT_LOG_FORMAT":           &cfg.Logging.Format,
	}
}

func intEnv(cfg *Config) map[string]*int {
	return map[string]*int{
		"PHONEKIT_SERVER_PORT": &cfg.Server.Port,
		"PHONEKIT_RATE_LIMIT":  &cfg.Server.RateLimit,
		"PHONEKIT_MAX_BATCH":   &cfg.Server.MaxBatch,
	}
}

func applyEnv(cfg *Config) error {
	for name, dest := range stringEnv(cfg) {
		if v := os.Getenv(name); v != "" {
			*dest = v
		}
	}
	for name, dest := range intEnv(cfg) {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q is not an integer", name, v)
		}
		*dest = n
	}
	return nil
}

// applyFlags copies non-empty CLI flag values, keyed by flag name, over cfg.
func applyFlags(cfg *Config, flags map[string]string) {
	targets := map[string]*string{
		"country":   &cfg.Parse.DefaultCountryCode,
		"area":      &cfg.Parse.DefaultAreaCode,
		"format":    &cfg.Format.Default,
		"host":      &cfg.Server.Host,
		"log-level": &cfg.Logging.Level,
	}
	for name, v := range flags {
		if v == "" {
			continue
		}
		if dest, ok := targets[name]; ok {
			*dest = v
		} else if name == "port" {
			if port, err := strconv.Atoi(v); err == nil {
				cfg.Server.Port = port
			}
		}
	}
}

// templateKeyPrefix addresses entries of [format.templates].
const templateKeyPrefix = "format.templates."

// validKeys is the complete set of fixed dot-separated config keys.
var validKeys = map[string]bool{
	"parse.default_country_code": true, "parse.default_area_code": true,
	"format.default": true,
	"server.host": true, "server.port": true, "server.shutdown_timeout": true,
	"server.rate_limit": true, "server.max_batch": true,
	"logging.level": true, "logging.format": true,
}

// Keys returns the fixed config keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(validKeys))
	for k := range validKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsValidKey returns true if the dotted key is a recognized config key.
// Any "format.templates.<name>" key is valid.
func IsValidKey(key string) bool {
	if name, ok := strings.CutPrefix(key, templateKeyPrefix); ok {
		return name != "" && !strings.Contains(name, ".")
	}
	return validKeys[key]
}

// GetValue returns the value for a dotted config key (e.g. "server.port").
func GetValue(cfg *Config, key string) (any, error) {
	if name, ok := strings.CutPrefix(key, templateKeyPrefix); ok && IsValidKey(key) {
		if p, ok := cfg.Format.Templates[name]; ok {
			return p, nil
		}
		if t, ok := builtinTemplate(name); ok {
			return t, nil
		}
		return nil, fmt.Errorf("no template named %q", name)
	}
	switch key {
	case "parse.default_country_code":
		return cfg.Parse.DefaultCountryCode, nil
	case "parse.default_area_code":
		return cfg.Parse.DefaultAreaCode, nil
	case "format.default":
		return cfg.Format.Default, nil
	case "server.host":
		return cfg.Server.Host, nil
	case "server.port":
		return cfg.Server.Port, nil
	case "server.shutdown_timeout":
		return cfg.Server.ShutdownTimeout, nil
	case "server.rate_limit":
		return cfg.Server.RateLimit, nil
	case "server.max_batch":
		return cfg.Server.MaxBatch, nil
	case "logging.level":
		return cfg.Logging.Level, nil
	case "logging.format":
		return cfg.Logging.Format, nil
	default:
		return nil, fmt.Errorf("unknown configuration key: %s", key)
	}
}

func builtinTemplate(name string) (string, bool) {
	for _, t := range phone.Templates() {
		if t.Name == name {
			return t.Pattern, true
		}
	}
	return "", false
}

// SetValue reads the existing TOML file, updates a single key, and writes it back.
// Creates the file with just the key if it doesn't exist.
func SetValue(configPath, key, value string) error {
	var data map[string]any
	if raw, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parsing %s: %w", configPath, err)
		}
	}
	if data == nil {
		data = make(map[string]any)
	}

	parts := strings.Split(key, ".")
	if len(parts) < 2 {
		return fmt.Errorf("invalid key format: %s (expected section.field)", key)
	}

	// Walk or create the nested tables down to the last segment.
	table := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := table[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			table[part] = next
		}
		table = next
	}
	table[parts[len(parts)-1]] = coerceValue(key, value)

	out, err := toml.Marshal(data)
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(configPath, out, 0o644)
}

// coerceValue converts a string value to the appropriate Go type for TOML serialization.
func coerceValue(key, value string) any {
	switch key {
	case "server.port", "server.shutdown_timeout", "server.rate_limit", "server.max_batch":
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return value
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

const defaultTOML = `# phonekit configuration

[parse]
# Dialing code assumed for numbers written without "+" or "00" (e.g. "1", "385").
# Leave empty to require an international prefix.
default_country_code = ""

# Area code used for local numbers too short to carry their own.
default_area_code = ""

[format]
# Template name (default, default_with_extension, europe, us, international,
# national, rfc3966) or a token pattern such as "%A/%f-%l".
default = "default"

# Extra named templates.
# Tokens: %c dialing code, %a area code, %A area code with trunk 0,
# %n area code + subscriber, %f first 3 subscriber digits, %l the rest,
# %x extension.
[format.templates]
# slashed = "%A/%f-%l"

[server]
# Address for "phonekit serve".
host = "127.0.0.1"
port = 8095

# Seconds to wait for in-flight requests during shutdown.
shutdown_timeout = 10

# Requests per minute per client IP. 0 disables rate limiting.
rate_limit = 120

# Maximum numbers accepted by one batch request.
max_batch = 100

[logging]
# Log level: debug, info, warn, error.
level = "info"

# Log format: json or text.
format = "json"
`
