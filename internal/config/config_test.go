package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phonekit/phonekit/internal/testutil"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	testutil.Equal(t, "", cfg.Parse.DefaultCountryCode)
	testutil.Equal(t, "", cfg.Parse.DefaultAreaCode)
	testutil.Equal(t, "default", cfg.Format.Default)

	testutil.Equal(t, "127.0.0.1", cfg.Server.Host)
	testutil.Equal(t, 8095, cfg.Server.Port)
	testutil.Equal(t, 10, cfg.Server.ShutdownTimeout)
	testutil.Equal(t, 120, cfg.Server.RateLimit)
	testutil.Equal(t, 100, cfg.Server.MaxBatch)

	testutil.Equal(t, "info", cfg.Logging.Level)
	testutil.Equal(t, "json", cfg.Logging.Format)
}

func TestAddress(t *testing.T) {
	tests := []struct {
		name string
		host string
		port int
		want string
	}{
		{name: "default", host: "127.0.0.1", port: 8095, want: "127.0.0.1:8095"},
		{name: "all interfaces", host: "0.0.0.0", port: 3000, want: "0.0.0.0:3000"},
		{name: "custom host", host: "phones.local", port: 443, want: "phones.local:443"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{Host: tt.host, Port: tt.port}}
			testutil.Equal(t, tt.want, cfg.Address())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			modify: func(c *Config) {},
		},
		{
			name:   "country code with plus",
			modify: func(c *Config) { c.Parse.DefaultCountryCode = "+385" },
		},
		{
			name:    "country code letters",
			modify:  func(c *Config) { c.Parse.DefaultCountryCode = "HR" },
			wantErr: "parse.default_country_code must be digits",
		},
		{
			name:    "area code letters",
			modify:  func(c *Config) { c.Parse.DefaultAreaCode = "9a" },
			wantErr: "parse.default_area_code must be digits",
		},
		{
			name:   "pattern as default format",
			modify: func(c *Config) { c.Format.Default = "%A/%f-%l" },
		},
		{
			name: "custom template as default format",
			modify: func(c *Config) {
				c.Format.Templates = map[string]string{"slashed": "%A/%f-%l"}
				c.Format.Default = "slashed"
			},
		},
		{
			name:    "unknown default format",
			modify:  func(c *Config) { c.Format.Default = "fancy" },
			wantErr: "neither a template name nor a pattern",
		},
		{
			name:    "empty default format",
			modify:  func(c *Config) { c.Format.Default = "" },
			wantErr: "format.default must not be empty",
		},
		{
			name:    "template shadows builtin",
			modify:  func(c *Config) { c.Format.Templates = map[string]string{"europe": "%n"} },
			wantErr: "format.templates",
		},
		{
			name:    "port zero",
			modify:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port must be between 1 and 65535",
		},
		{
			name:    "port too high",
			modify:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port must be between 1 and 65535",
		},
		{
			name:   "port 65535 valid",
			modify: func(c *Config) { c.Server.Port = 65535 },
		},
		{
			name:    "negative shutdown timeout",
			modify:  func(c *Config) { c.Server.ShutdownTimeout = -1 },
			wantErr: "server.shutdown_timeout must be non-negative",
		},
		{
			name:   "rate limit disabled",
			modify: func(c *Config) { c.Server.RateLimit = 0 },
		},
		{
			name:    "negative rate limit",
			modify:  func(c *Config) { c.Server.RateLimit = -5 },
			wantErr: "server.rate_limit must be non-negative",
		},
		{
			name:    "max batch zero",
			modify:  func(c *Config) { c.Server.MaxBatch = 0 },
			wantErr: "server.max_batch must be at least 1",
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level must be one of",
		},
		{
			name:    "bad log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format must be",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				testutil.NoError(t, err)
			} else {
				testutil.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "phonekit.toml")

	content := `
[parse]
default_country_code = "385"
default_area_code = "1"

[format]
default = "zagreb"

[format.templates]
zagreb = "%A/%f-%l"

[server]
port = 3000

[logging]
level = "debug"
format = "text"
`
	err := os.WriteFile(tomlPath, []byte(content), 0o644)
	testutil.NoError(t, err)

	cfg, err := Load(tomlPath, nil)
	testutil.NoError(t, err)

	testutil.Equal(t, "385", cfg.Parse.DefaultCountryCode)
	testutil.Equal(t, "1", cfg.Parse.DefaultAreaCode)
	testutil.Equal(t, "zagreb", cfg.Format.Default)
	testutil.Equal(t, "%A/%f-%l", cfg.Format.Templates["zagreb"])
	testutil.Equal(t, 3000, cfg.Server.Port)
	testutil.Equal(t, "debug", cfg.Logging.Level)
	testutil.Equal(t, "text", cfg.Logging.Format)

	// Defaults preserved for unset fields.
	testutil.Equal(t, "127.0.0.1", cfg.Server.Host)
	testutil.Equal(t, 120, cfg.Server.RateLimit)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/phonekit.toml", nil)
	testutil.NoError(t, err)
	testutil.Equal(t, 8095, cfg.Server.Port)
	testutil.Equal(t, "default", cfg.Format.Default)
}

func TestLoadInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "phonekit.toml")
	err := os.WriteFile(tomlPath, []byte("this is not valid toml [[["), 0o644)
	testutil.NoError(t, err)

	_, err = Load(tomlPath, nil)
	testutil.ErrorContains(t, err, "parsing")
}

func TestLoadInvalidValues(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "phonekit.toml")
	err := os.WriteFile(tomlPath, []byte("[parse]\ndefault_country_code = \"abc\"\n"), 0o644)
	testutil.NoError(t, err)

	_, err = Load(tomlPath, nil)
	testutil.ErrorContains(t, err, "config validation")
}

func TestLoadOverrides(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		flags map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "env strings",
			env: map[string]string{
				"PHONEKIT_DEFAULT_COUNTRY_CODE": "44",
				"PHONEKIT_DEFAULT_AREA_CODE":    "20",
				"PHONEKIT_FORMAT":               "international",
				"PHONEKIT_SERVER_HOST":          "envhost",
				"PHONEKIT_LOG_LEVEL":            "warn",
				"PHONEKIT_LOG_FORMAT":           "text",
			},
			check: func(t *testing.T, cfg *Config) {
				testutil.Equal(t, "44", cfg.Parse.DefaultCountryCode)
				testutil.Equal(t, "20", cfg.Parse.DefaultAreaCode)
				testutil.Equal(t, "international", cfg.Format.Default)
				testutil.Equal(t, "envhost", cfg.Server.Host)
				testutil.Equal(t, "warn", cfg.Logging.Level)
				testutil.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "env integers",
			env: map[string]string{
				"PHONEKIT_SERVER_PORT": "9999",
				"PHONEKIT_RATE_LIMIT":  "30",
				"PHONEKIT_MAX_BATCH":   "500",
			},
			check: func(t *testing.T, cfg *Config) {
				testutil.Equal(t, 9999, cfg.Server.Port)
				testutil.Equal(t, 30, cfg.Server.RateLimit)
				testutil.Equal(t, 500, cfg.Server.MaxBatch)
			},
		},
		{
			name: "flags",
			flags: map[string]string{
				"country": "1", "area": "212", "format": "us",
				"port": "7777", "host": "flaghost", "log-level": "error",
			},
			check: func(t *testing.T, cfg *Config) {
				testutil.Equal(t, "1", cfg.Parse.DefaultCountryCode)
				testutil.Equal(t, "212", cfg.Parse.DefaultAreaCode)
				testutil.Equal(t, "us", cfg.Format.Default)
				testutil.Equal(t, 7777, cfg.Server.Port)
				testutil.Equal(t, "flaghost", cfg.Server.Host)
				testutil.Equal(t, "error", cfg.Logging.Level)
			},
		},
		{
			name:  "empty and unknown flags are ignored",
			flags: map[string]string{"country": "", "port": "", "verbose": "true"},
			check: func(t *testing.T, cfg *Config) {
				testutil.Equal(t, "", cfg.Parse.DefaultCountryCode)
				testutil.Equal(t, 8095, cfg.Server.Port)
			},
		},
		{
			name:  "flag beats env",
			env:   map[string]string{"PHONEKIT_DEFAULT_COUNTRY_CODE": "44"},
			flags: map[string]string{"country": "1"},
			check: func(t *testing.T, cfg *Config) {
				testutil.Equal(t, "1", cfg.Parse.DefaultCountryCode)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load("/nonexistent/phonekit.toml", tt.flags)
			testutil.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phonekit.toml")
	testutil.NoError(t, os.WriteFile(path, []byte("[parse]\ndefault_country_code = \"385\"\n"), 0o644))

	cfg, err := Load(path, nil)
	testutil.NoError(t, err)
	testutil.Equal(t, "385", cfg.Parse.DefaultCountryCode)

	t.Setenv("PHONEKIT_DEFAULT_COUNTRY_CODE", "44")
	cfg, err = Load(path, nil)
	testutil.NoError(t, err)
	testutil.Equal(t, "44", cfg.Parse.DefaultCountryCode)
}

func TestApplyEnvRejectsNonIntegers(t *testing.T) {
	for _, name := range []string{"PHONEKIT_SERVER_PORT", "PHONEKIT_RATE_LIMIT", "PHONEKIT_MAX_BATCH"} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, "lots")
			cfg := Default()
			err := applyEnv(cfg)
			testutil.ErrorContains(t, err, name)
			testutil.ErrorContains(t, err, "not an integer")
			testutil.Equal(t, 8095, cfg.Server.Port)
		})
	}
}

func TestParserOptionsAndFormatter(t *testing.T) {
	cfg := Default()
	cfg.Parse.DefaultCountryCode = "385"
	cfg.Parse.DefaultAreaCode = "1"
	cfg.Format.Templates = map[string]string{"slashed": "%A/%f-%l"}

	opts := cfg.ParserOptions()
	testutil.Equal(t, "385", opts.DefaultCountryCode)
	testutil.Equal(t, "1", opts.DefaultAreaCode)
	testutil.Nil(t, opts.Registry)

	f, err := cfg.Formatter()
	testutil.NoError(t, err)
	tmpl, ok := f.Lookup("slashed")
	testutil.True(t, ok)
	testutil.Equal(t, "%A/%f-%l", tmpl.Pattern)
}

func TestGenerateDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "phonekit.toml")

	err := GenerateDefault(path)
	testutil.NoError(t, err)

	data, err := os.ReadFile(path)
	testutil.NoError(t, err)
	content := string(data)

	testutil.Contains(t, content, "[parse]")
	testutil.Contains(t, content, "[format]")
	testutil.Contains(t, content, "[format.templates]")
	testutil.Contains(t, content, "[server]")
	testutil.Contains(t, content, "[logging]")
	testutil.Contains(t, content, "port = 8095")
	testutil.Contains(t, content, "rate_limit = 120")

	// The generated file must load cleanly.
	cfg, err := Load(path, nil)
	testutil.NoError(t, err)
	testutil.Equal(t, 8095, cfg.Server.Port)
}

func TestToTOML(t *testing.T) {
	cfg := Default()
	s, err := cfg.ToTOML()
	testutil.NoError(t, err)
	testutil.Contains(t, s, "host = '127.0.0.1'")
	testutil.Contains(t, s, "port = 8095")
}

// --- GetValue / SetValue / IsValidKey tests ---

func TestIsValidKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"parse.default_country_code", true},
		{"parse.default_area_code", true},
		{"format.default", true},
		{"format.templates.slashed", true},
		{"server.port", true},
		{"server.rate_limit", true},
		{"logging.format", true},
		{"format.templates.", false},
		{"format.templates.a.b", false},
		{"server.nonexistent", false},
		{"", false},
		{"server", false},
		{"server.port.extra", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			testutil.Equal(t, tt.want, IsValidKey(tt.key))
		})
	}
}

func TestKeysSorted(t *testing.T) {
	keys := Keys()
	testutil.SliceLen(t, keys, len(validKeys))
	for i := 1; i < len(keys); i++ {
		testutil.True(t, keys[i-1] < keys[i], "%s before %s", keys[i-1], keys[i])
	}
}

func TestGetValue(t *testing.T) {
	cfg := Default()
	cfg.Format.Templates = map[string]string{"slashed": "%A/%f-%l"}

	tests := []struct {
		key     string
		want    any
		wantErr bool
	}{
		{"parse.default_country_code", "", false},
		{"format.default", "default", false},
		{"format.templates.slashed", "%A/%f-%l", false},
		{"format.templates.europe", "+%c (0) %a %f %l", false},
		{"format.templates.missing", nil, true},
		{"server.host", "127.0.0.1", false},
		{"server.port", 8095, false},
		{"server.max_batch", 100, false},
		{"logging.level", "info", false},
		{"unknown.key", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			val, err := GetValue(cfg, tt.key)
			if tt.wantErr {
				testutil.NotNil(t, err)
			} else {
				testutil.NoError(t, err)
				testutil.Equal(t, tt.want, val)
			}
		})
	}
}

func TestSetValue(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "phonekit.toml")

	err := SetValue(tomlPath, "server.port", "3000")
	testutil.NoError(t, err)

	data, err := os.ReadFile(tomlPath)
	testutil.NoError(t, err)
	testutil.Contains(t, string(data), "port = 3000")

	err = SetValue(tomlPath, "parse.default_country_code", "385")
	testutil.NoError(t, err)

	cfg, err := Load(tomlPath, nil)
	testutil.NoError(t, err)
	testutil.Equal(t, 3000, cfg.Server.Port)
	testutil.Equal(t, "385", cfg.Parse.DefaultCountryCode)
}

func TestSetValueTemplate(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "phonekit.toml")

	err := SetValue(tomlPath, "format.templates.slashed", "%A/%f-%l")
	testutil.NoError(t, err)
	err = SetValue(tomlPath, "format.default", "slashed")
	testutil.NoError(t, err)

	cfg, err := Load(tomlPath, nil)
	testutil.NoError(t, err)
	testutil.Equal(t, "slashed", cfg.Format.Default)
	testutil.Equal(t, "%A/%f-%l", cfg.Format.Templates["slashed"])
}

func TestSetValueInvalidKey(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "phonekit.toml")

	err := SetValue(tomlPath, "invalid", "value")
	testutil.ErrorContains(t, err, "invalid key format")
}

func TestSetValuePreservesExisting(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "phonekit.toml")

	err := os.WriteFile(tomlPath, []byte("[server]\nhost = '0.0.0.0'\nport = 8095\n"), 0o644)
	testutil.NoError(t, err)

	err = SetValue(tomlPath, "server.port", "3000")
	testutil.NoError(t, err)

	cfg, err := Load(tomlPath, nil)
	testutil.NoError(t, err)
	testutil.Equal(t, 3000, cfg.Server.Port)
	testutil.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  any
	}{
		{"server.port", "3000", 3000},
		{"server.rate_limit", "0", 0},
		{"server.max_batch", "50", 50},
		{"parse.default_country_code", "385", "385"},
		{"server.host", "myhost", "myhost"},
		{"server.port", "notanumber", "notanumber"}, // falls through to string
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			got := coerceValue(tt.key, tt.value)
			testutil.Equal(t, tt.want, got)
		})
	}
}
