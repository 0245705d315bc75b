package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-mir/harmonia/analyze/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "main:\n  name: harmonia\n")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "harmonia", s.Main.Name)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "0.0.0.0", s.Server.Host)
	assert.Equal(t, 8080, s.Server.Port)
	assert.Equal(t, int64(10*1024*1024), s.Server.MaxUploadSize)
	assert.Equal(t, 15*time.Minute, s.Server.CacheTTL)
	assert.Equal(t, "0.0.0.0:8080", s.Server.Address())
	assert.Equal(t, *config.DefaultAnalysisConfig(), s.Analysis)
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
server:
  port: 9090
  cachettl: 5m
analysis:
  precision_threshold: 0.9
  cross_validation_required: false
`)

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, 9090, s.Server.Port)
	assert.Equal(t, 5*time.Minute, s.Server.CacheTTL)
	assert.InDelta(t, 0.9, s.Analysis.PrecisionThreshold, 1e-9)
	assert.False(t, s.Analysis.CrossValidationRequired)

	// untouched keys keep their defaults
	assert.Equal(t, "0.0.0.0", s.Server.Host)
	assert.InDelta(t, 4.0, s.Analysis.WindowSize, 1e-9)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HARMONIA_ANALYSIS_WINDOW_SIZE", "2.5")
	t.Setenv("HARMONIA_ANALYSIS_CROSS_VALIDATION_REQUIRED", "false")
	t.Setenv("HARMONIA_SERVER_PORT", "9001")

	path := writeConfig(t, "main:\n  name: harmonia\n")
	s, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 2.5, s.Analysis.WindowSize, 1e-9)
	assert.False(t, s.Analysis.CrossValidationRequired)
	assert.Equal(t, 9001, s.Server.Port)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	t.Setenv("HARMONIA_ANALYSIS_PRECISION_THRESHOLD", "0.85")

	path := writeConfig(t, "analysis:\n  precision_threshold: 0.5\n")
	s, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.85, s.Analysis.PrecisionThreshold, 1e-9)
}

func TestLoadMissingSearchPathsTolerated(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, *config.DefaultAnalysisConfig(), s.Analysis)
}

func TestLoadErrors(t *testing.T) {
	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "analysis: [unclosed\n")
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		path := writeConfig(t, "analysis:\n  precision_threshold: 1.5\n")
		_, err := Load(path)
		require.ErrorContains(t, err, "precision_threshold")
	})
}

func TestSettingsValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Settings {
		s := &Settings{}
		s.Server = ServerConfig{Host: "127.0.0.1", Port: 8080, MaxUploadSize: 1024, CacheTTL: time.Minute}
		s.Analysis = *config.DefaultAnalysisConfig()
		return s
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero port", func(s *Settings) { s.Server.Port = 0 }},
		{"port too large", func(s *Settings) { s.Server.Port = 70000 }},
		{"zero upload limit", func(s *Settings) { s.Server.MaxUploadSize = 0 }},
		{"zero cache ttl", func(s *Settings) { s.Server.CacheTTL = 0 }},
		{"bad analysis window", func(s *Settings) { s.Analysis.WindowSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := valid()
			tt.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}
