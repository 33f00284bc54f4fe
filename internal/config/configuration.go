package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DefaultBackendURL    = "http://localhost:5001"
	DefaultUploadTimeout = 30 * time.Minute
)

type Config struct {
	// WebServer Configuration
	WebServerPort int    `mapstructure:"WEBSERVER_PORT" validate:"min=1,max=65535"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`

	// Processing backend
	BackendURL     string        `mapstructure:"BACKEND_URL" validate:"required,url"`
	UploadTimeout  time.Duration `mapstructure:"UPLOAD_TIMEOUT" validate:"gt=0"`
	UploadMaxBytes string        `mapstructure:"UPLOAD_MAX_BYTES" validate:"required"`

	// Live preview quiet periods
	Debounce DebounceConfig `mapstructure:",squash"`

	SessionIdleTimeout time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT" validate:"gt=0"`

	uploadMaxBytes uint64
}

type DebounceConfig struct {
	Settings time.Duration `mapstructure:"PREVIEW_SETTINGS_DEBOUNCE" validate:"gt=0"`
	Filter   time.Duration `mapstructure:"PREVIEW_FILTER_DEBOUNCE" validate:"gt=0"`
	Scrub    time.Duration `mapstructure:"PREVIEW_SCRUB_DEBOUNCE" validate:"gt=0"`
	Seek     time.Duration `mapstructure:"PREVIEW_SEEK_DEBOUNCE" validate:"gt=0"`
}

// UploadLimit is UPLOAD_MAX_BYTES in bytes.
func (c *Config) UploadLimit() uint64 {
	return c.uploadMaxBytes
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		fieldVal := val.Field(i)
		tag, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")

		if tag != "" {
			viper.BindEnv(tag)
		}

		// Handle nested structs
		if field.Type.Kind() == reflect.Struct && tag == "" {
			nestedTyp := fieldVal.Type()
			for j := 0; j < fieldVal.NumField(); j++ {
				nestedField := nestedTyp.Field(j)
				nestedTag := nestedField.Tag.Get("mapstructure")
				if nestedTag != "" {
					viper.BindEnv(nestedTag)
				}
			}
		}
	}
	slog.Debug("Environment variables bound")
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	setBackendDefaults(viper.GetViper())
	viper.SetDefault("WEBSERVER_PORT", 8080)
	viper.SetDefault("UPLOAD_MAX_BYTES", "15GB")
	viper.SetDefault("PREVIEW_SETTINGS_DEBOUNCE", "300ms")
	viper.SetDefault("PREVIEW_FILTER_DEBOUNCE", "100ms")
	viper.SetDefault("PREVIEW_SCRUB_DEBOUNCE", "500ms")
	viper.SetDefault("PREVIEW_SEEK_DEBOUNCE", "300ms")
	viper.SetDefault("SESSION_IDLE_TIMEOUT", "2h")

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	n, err := humanize.ParseBytes(cfg.UploadMaxBytes)
	if err != nil {
		return nil, fmt.Errorf("validate config: UPLOAD_MAX_BYTES: %w", err)
	}
	cfg.uploadMaxBytes = n

	slog.Info("Loaded configuration",
		"port", cfg.WebServerPort,
		"backend", cfg.BackendURL,
		"upload_timeout", cfg.UploadTimeout,
		"upload_max", humanize.Bytes(n),
		"session_idle_timeout", cfg.SessionIdleTimeout,
	)

	return &cfg, nil
}

// ClientConfig is the part of Config a command-line client of the
// processing backend needs.
type ClientConfig struct {
	BackendURL    string        `mapstructure:"BACKEND_URL" validate:"required,url"`
	UploadTimeout time.Duration `mapstructure:"UPLOAD_TIMEOUT" validate:"gt=0"`
}

func setBackendDefaults(v *viper.Viper) {
	v.SetDefault("BACKEND_URL", DefaultBackendURL)
	v.SetDefault("UPLOAD_TIMEOUT", DefaultUploadTimeout)
}

// LoadClientConfig reads BACKEND_URL and UPLOAD_TIMEOUT with the same
// defaults as LoadConfig. It uses its own viper instance and does not log.
func LoadClientConfig() (*ClientConfig, error) {
	v := viper.New()
	setBackendDefaults(v)
	_ = v.BindEnv("BACKEND_URL")
	_ = v.BindEnv("UPLOAD_TIMEOUT")

	cfg := ClientConfig{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.BackendURL = strings.TrimSpace(cfg.BackendURL)
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
