package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

const SupportedVersion = "1"

// Config represents the complete configuration structure
type Config struct {
	Version string        `yaml:"version" default:"1"`
	Site    SiteConfig    `yaml:"site"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	LLM     LLMConfig     `yaml:"llm"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"GHOSTWRITER_LOG_LEVEL" default:"info"`
	Format string `yaml:"format" env:"GHOSTWRITER_LOG_FORMAT" default:"console"`
}

type SiteConfig struct {
	Name        string `yaml:"name" default:"Ghostwriter AI"`
	Description string `yaml:"description" default:"Drafts in your own voice"`
	// Calendar days are computed in this IANA zone.
	Timezone string `yaml:"timezone" env:"GHOSTWRITER_TIMEZONE" default:"UTC"`
}

type ServerConfig struct {
	Host            string `yaml:"host" env:"GHOSTWRITER_HOST" default:"0.0.0.0"`
	Port            string `yaml:"port" env:"GHOSTWRITER_PORT" default:"9002"`
	ShutdownTimeout int    `yaml:"shutdown_timeout_seconds" default:"10"`
}

type StorageConfig struct {
	Backend   string `yaml:"backend" env:"GHOSTWRITER_STORAGE_BACKEND" default:"sqlite"`
	Namespace string `yaml:"namespace" env:"GHOSTWRITER_NAMESPACE" default:"ghostwriter_"`
	// Byte quota of the memory backend. Zero disables it.
	Quota  int          `yaml:"quota" default:"5242880"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	FS     FSConfig     `yaml:"fs"`
	S3     S3Config     `yaml:"s3"`
}

type SQLiteConfig struct {
	Driver      string `yaml:"driver" env:"GHOSTWRITER_SQLITE_DRIVER" default:"sqlite3"`
	Path        string `yaml:"path" env:"GHOSTWRITER_SQLITE_PATH" default:"./ghostwriter.db"`
	Compression string `yaml:"compression" default:"zstd"`
}

type FSConfig struct {
	Dir string `yaml:"dir" env:"GHOSTWRITER_DATA_DIR" default:"./data"`
}

type S3Config struct {
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT"`
	Region          string `yaml:"region" env:"S3_REGION" default:"auto"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET"`
	Prefix          string `yaml:"prefix" env:"S3_PREFIX" default:"ghostwriter"`
	AccessKeyID     string `yaml:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `yaml:"use_path_style" env:"S3_USE_PATH_STYLE" default:"false"`
	TimeoutSeconds  int    `yaml:"timeout_seconds" default:"10"`
}

type LLMConfig struct {
	APIKey      string  `yaml:"api_key" env:"GEMINI_API_KEY"`
	TextModel   string  `yaml:"text_model" env:"GHOSTWRITER_TEXT_MODEL" default:"gemini-2.0-flash"`
	ImageModel  string  `yaml:"image_model" env:"GHOSTWRITER_IMAGE_MODEL" default:"gemini-2.0-flash-preview-image-generation"`
	Temperature float64 `yaml:"temperature"`
}

type RenderConfig struct {
	// "mmark" or "classic"
	Renderer    string `yaml:"renderer" default:"mmark"`
	SyntaxTheme string `yaml:"syntax_theme" default:"gruvbox"`
}

var AppConfig *Config

// Load builds a Config from defaults, the YAML file at path (if any) and
// finally the environment.
func Load(path string) (*Config, error) {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfig loads path into AppConfig.
func LoadConfig(path string) error {
	config, err := Load(path)
	if err != nil {
		return err
	}
	AppConfig = config
	return nil
}

var (
	storageBackends = []string{"memory", "sqlite", "fs", "s3"}
	renderers       = []string{"mmark", "classic"}
)

func (c *Config) Validate() error {
	if c.Version != SupportedVersion {
		return fmt.Errorf("unsupported configuration version %q (want %q)", c.Version, SupportedVersion)
	}
	if !slices.Contains(storageBackends, c.Storage.Backend) {
		return fmt.Errorf("unknown storage backend %q (want one of %s)", c.Storage.Backend, strings.Join(storageBackends, ", "))
	}
	if c.Storage.Backend == "s3" && c.Storage.S3.Bucket == "" {
		return errors.New("storage.s3.bucket is required for the s3 backend")
	}
	if !slices.Contains(renderers, c.Render.Renderer) {
		return fmt.Errorf("unknown renderer %q (want one of %s)", c.Render.Renderer, strings.Join(renderers, ", "))
	}
	if c.Storage.Quota < 0 {
		return errors.New("storage.quota must not be negative")
	}
	return nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
