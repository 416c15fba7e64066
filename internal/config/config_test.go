package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
	os.Exit(m.Run())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config content: %v", err)
	}
	return path
}

func TestApplyDefaults(t *testing.T) {
	t.Run("Config struct defaults", func(t *testing.T) {
		config := &Config{}
		applyDefaults(config)

		checks := []struct {
			name string
			got  any
			want any
		}{
			{"Version", config.Version, "1"},
			{"Site.Name", config.Site.Name, "Ghostwriter AI"},
			{"Site.Timezone", config.Site.Timezone, "UTC"},
			{"Server.Host", config.Server.Host, "0.0.0.0"},
			{"Server.Port", config.Server.Port, "9002"},
			{"Server.ShutdownTimeout", config.Server.ShutdownTimeout, 10},
			{"Storage.Backend", config.Storage.Backend, "sqlite"},
			{"Storage.Namespace", config.Storage.Namespace, "ghostwriter_"},
			{"Storage.Quota", config.Storage.Quota, 5 * 1024 * 1024},
			{"Storage.SQLite.Driver", config.Storage.SQLite.Driver, "sqlite3"},
			{"Storage.SQLite.Compression", config.Storage.SQLite.Compression, "zstd"},
			{"Storage.FS.Dir", config.Storage.FS.Dir, "./data"},
			{"Storage.S3.Region", config.Storage.S3.Region, "auto"},
			{"Storage.S3.Bucket", config.Storage.S3.Bucket, ""},
			{"Storage.S3.UsePathStyle", config.Storage.S3.UsePathStyle, false},
			{"LLM.APIKey", config.LLM.APIKey, ""},
			{"LLM.TextModel", config.LLM.TextModel, "gemini-2.0-flash"},
			{"LLM.Temperature", config.LLM.Temperature, 0.0},
			{"Render.Renderer", config.Render.Renderer, "mmark"},
			{"Render.SyntaxTheme", config.Render.SyntaxTheme, "gruvbox"},
			{"Logging.Level", config.Logging.Level, "info"},
			{"Logging.Format", config.Logging.Format, "console"},
		}
		for _, c := range checks {
			if c.got != c.want {
				t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got)
			}
		}
	})

	t.Run("Field types", func(t *testing.T) {
		type sample struct {
			Name    string   `default:"draft"`
			Enabled bool     `default:"true"`
			Count   int      `default:"7"`
			Ratio   float64  `default:"0.25"`
			Formats []string `default:"Tweet, Blog Post ,LinkedIn Post"`
			Bare    string
		}

		s := &sample{}
		applyDefaults(s)

		if s.Name != "draft" || !s.Enabled || s.Count != 7 || s.Ratio != 0.25 {
			t.Errorf("Unexpected scalar defaults: %+v", s)
		}
		if want := []string{"Tweet", "Blog Post", "LinkedIn Post"}; !reflect.DeepEqual(s.Formats, want) {
			t.Errorf("Expected %v, got %v", want, s.Formats)
		}
		if s.Bare != "" {
			t.Errorf("Expected untagged field to stay empty, got %q", s.Bare)
		}
	})

	t.Run("Existing slice is kept", func(t *testing.T) {
		type sample struct {
			Formats []string `default:"a,b"`
		}
		s := &sample{Formats: []string{"x"}}
		applyDefaults(s)
		if !reflect.DeepEqual(s.Formats, []string{"x"}) {
			t.Errorf("Expected slice to be kept, got %v", s.Formats)
		}
	})

	t.Run("Invalid default values", func(t *testing.T) {
		type sample struct {
			B bool    `default:"maybe"`
			I int     `default:"many"`
			F float64 `default:"pi"`
		}
		s := &sample{}
		applyDefaults(s)
		if s.B || s.I != 0 || s.F != 0 {
			t.Errorf("Expected zero values for unparsable defaults, got %+v", s)
		}
	})

	t.Run("Non-struct input", func(t *testing.T) {
		str := "x"
		applyDefaults(&str)
		applyDefaults(str)
		applyDefaults(42)
		applyDefaults(nil)
	})
}

func TestLoad(t *testing.T) {
	t.Run("Missing file uses defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("Expected no error for missing file, got %v", err)
		}
		if cfg.Site.Name != DefaultSiteName {
			t.Errorf("Expected default site name, got %q", cfg.Site.Name)
		}
	})

	t.Run("File values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
version: "1"
server:
  port: "8080"
storage:
  backend: fs
  fs:
    dir: /var/lib/ghostwriter
render:
  renderer: classic
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Server.Port != "8080" {
			t.Errorf("Expected port 8080, got %q", cfg.Server.Port)
		}
		if cfg.Storage.Backend != "fs" || cfg.Storage.FS.Dir != "/var/lib/ghostwriter" {
			t.Errorf("Unexpected storage config %+v", cfg.Storage)
		}
		if cfg.Render.Renderer != "classic" {
			t.Errorf("Expected classic renderer, got %q", cfg.Render.Renderer)
		}
		// Untouched sections keep their defaults.
		if cfg.Storage.SQLite.Driver != "sqlite3" {
			t.Errorf("Expected default driver, got %q", cfg.Storage.SQLite.Driver)
		}
	})

	t.Run("Environment overrides file", func(t *testing.T) {
		path := writeConfig(t, "server:\n  port: \"8080\"\n")
		t.Setenv("GHOSTWRITER_PORT", "7000")
		t.Setenv("GEMINI_API_KEY", "secret")
		t.Setenv("S3_USE_PATH_STYLE", "true")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Server.Port != "7000" {
			t.Errorf("Expected env port 7000, got %q", cfg.Server.Port)
		}
		if cfg.LLM.APIKey != "secret" {
			t.Errorf("Expected API key from env, got %q", cfg.LLM.APIKey)
		}
		if !cfg.Storage.S3.UsePathStyle {
			t.Error("Expected path style from env")
		}
	})

	t.Run("Invalid YAML", func(t *testing.T) {
		path := writeConfig(t, "server: [unclosed")
		if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
			t.Errorf("Expected parse error, got %v", err)
		}
	})

	t.Run("Invalid environment", func(t *testing.T) {
		t.Setenv("S3_USE_PATH_STYLE", "sometimes")
		if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("Expected error for unparsable env bool")
		}
	})

	t.Run("LoadConfig sets AppConfig", func(t *testing.T) {
		original := AppConfig
		defer func() { AppConfig = original }()

		if err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
			t.Fatal(err)
		}
		if AppConfig == nil || AppConfig.Version != SupportedVersion {
			t.Errorf("Expected AppConfig to be loaded, got %+v", AppConfig)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		errorText string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"unknown version", func(c *Config) { c.Version = "2" }, "unsupported configuration version"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, "unknown storage backend"},
		{"s3 without bucket", func(c *Config) { c.Storage.Backend = "s3" }, "bucket is required"},
		{"s3 with bucket", func(c *Config) { c.Storage.Backend = "s3"; c.Storage.S3.Bucket = "drafts" }, ""},
		{"unknown renderer", func(c *Config) { c.Render.Renderer = "pandoc" }, "unknown renderer"},
		{"negative quota", func(c *Config) { c.Storage.Quota = -1 }, "quota"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			ApplyDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorText == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorText) {
				t.Errorf("Expected error containing %q, got %v", tt.errorText, err)
			}
		})
	}
}

func TestConstants(t *testing.T) {
	if HCType != "Content-Type" || HCacheControl != "Cache-Control" || HETag != "ETag" {
		t.Error("Unexpected header constants")
	}
	if CTypeJSON != "application/json" || CTypeEventStream != "text/event-stream" {
		t.Error("Unexpected content type constants")
	}
	if DefaultSyntaxTheme != DefaultRenderSyntaxTheme {
		t.Errorf("Expected fallback syntax theme %q to match the configured default %q", DefaultSyntaxTheme, DefaultRenderSyntaxTheme)
	}
}
