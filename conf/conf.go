// Package conf loads application settings from config.yaml and the
// environment, layered over built-in defaults.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/harmonia-mir/harmonia/analyze/config"
)

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	MaxUploadSize int64         `mapstructure:"maxuploadsize"` // bytes
	CacheTTL      time.Duration `mapstructure:"cachettl"`
}

// Address returns the host:port listen address
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Settings is the full application configuration
type Settings struct {
	Main struct {
		Name string `mapstructure:"name"`
	} `mapstructure:"main"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Server ServerConfig `mapstructure:"server"`

	Analysis config.AnalysisConfig `mapstructure:"analysis"`
}

// envBinding ties a config key to the environment variable that
// overrides it
type envBinding struct {
	ConfigKey string
	EnvVar    string
}

func envBindings() []envBinding {
	return []envBinding{
		{"main.name", "HARMONIA_MAIN_NAME"},
		{"log.level", "HARMONIA_LOG_LEVEL"},
		{"server.host", "HARMONIA_SERVER_HOST"},
		{"server.port", "HARMONIA_SERVER_PORT"},
		{"server.maxuploadsize", "HARMONIA_SERVER_MAXUPLOADSIZE"},
		{"server.cachettl", "HARMONIA_SERVER_CACHETTL"},
		{"analysis.precision_threshold", "HARMONIA_ANALYSIS_PRECISION_THRESHOLD"},
		{"analysis.window_size", "HARMONIA_ANALYSIS_WINDOW_SIZE"},
		{"analysis.hop_size", "HARMONIA_ANALYSIS_HOP_SIZE"},
		{"analysis.min_confidence", "HARMONIA_ANALYSIS_MIN_CONFIDENCE"},
		{"analysis.bass_validation_weight", "HARMONIA_ANALYSIS_BASS_VALIDATION_WEIGHT"},
		{"analysis.cross_validation_required", "HARMONIA_ANALYSIS_CROSS_VALIDATION_REQUIRED"},
	}
}

// setDefaults seeds every recognized key. Analysis defaults come from
// the analysis package so the two never drift apart.
func setDefaults(v *viper.Viper) {
	v.SetDefault("main.name", "harmonia")
	v.SetDefault("log.level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.maxuploadsize", 10*1024*1024)
	v.SetDefault("server.cachettl", 15*time.Minute)

	ac := config.DefaultAnalysisConfig()
	v.SetDefault("analysis.precision_threshold", ac.PrecisionThreshold)
	v.SetDefault("analysis.window_size", ac.WindowSize)
	v.SetDefault("analysis.hop_size", ac.HopSize)
	v.SetDefault("analysis.min_confidence", ac.MinConfidence)
	v.SetDefault("analysis.bass_validation_weight", ac.BassValidationWeight)
	v.SetDefault("analysis.cross_validation_required", ac.CrossValidationRequired)
}

// Load reads settings in layers: defaults, then config.yaml, then
// HARMONIA_* environment variables. An empty configPath searches the
// working directory and the user config directory; a missing file
// there is fine, but an explicit path must exist.
func Load(configPath string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "harmonia"))
		}
	}

	setDefaults(v)
	for _, binding := range envBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			return nil, fmt.Errorf("binding %s: %w", binding.EnvVar, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return settings, nil
}

// Validate checks every layered value for usability
func (s *Settings) Validate() error {
	if s.Server.Port < 1 || s.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1,65535], got %d", s.Server.Port)
	}
	if s.Server.MaxUploadSize <= 0 {
		return fmt.Errorf("server.maxuploadsize must be positive, got %d", s.Server.MaxUploadSize)
	}
	if s.Server.CacheTTL <= 0 {
		return fmt.Errorf("server.cachettl must be positive, got %s", s.Server.CacheTTL)
	}
	if err := s.Analysis.Validate(); err != nil {
		return err
	}
	return nil
}
