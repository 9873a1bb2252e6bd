// Package config loads the dashboard settings from config.yaml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"rockmass/ml"
)

type Config struct {
	Model   ModelConfig   `yaml:"model"`
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type ModelConfig struct {
	ArtifactPath string `yaml:"artifact_path" validate:"required"`
	CacheSize    int    `yaml:"cache_size" validate:"min=1,max=64"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	Timeout        time.Duration `yaml:"timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" validate:"oneof=console json"`
	Output     string `yaml:"output" validate:"required"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"min=0"`
	MaxBackups int    `yaml:"max_backups" validate:"min=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"min=0"`
	Compress   bool   `yaml:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"omitempty,startswith=/"`
}

// Default returns the settings used when no config file is present.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			ArtifactPath: ml.DefaultArtifactPath,
			CacheSize:    1,
		},
		HTTP: HTTPConfig{
			Port:           8501,
			Timeout:        30 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stdout",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return err
	}
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return errors.New("metrics.path is required when metrics are enabled")
	}
	if c.HTTP.Timeout < 0 {
		return errors.New("http.timeout must not be negative")
	}
	return nil
}
