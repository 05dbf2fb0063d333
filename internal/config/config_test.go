package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 8, cfg.RetryCount)
	assert.Equal(t, 100*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 0, cfg.MaxParallel)
	assert.True(t, cfg.SaveTags)
	assert.False(t, cfg.ApplyLetterboxing)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PD_RETRY_COUNT", "3")
	t.Setenv("PD_RETRY_DELAY", "5ms")
	t.Setenv("PD_APPLY_LETTERBOXING", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.RetryCount)
	assert.Equal(t, 5*time.Millisecond, cfg.RetryDelay)
	assert.True(t, cfg.Settings().ApplyLetterboxing)
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("PD_MAX_PARALLEL=4\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PD_MAX_PARALLEL") })

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxParallel)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			HTTPPort:     8080,
			RetryCount:   8,
			RetryDelay:   100 * time.Millisecond,
			MaxFileSize:  1024,
			FetchTimeout: time.Second,
			DownloadDir:  "./downloads",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.HTTPPort = 0 }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.RetryCount = -1 }, wantErr: true},
		{name: "negative parallel", mutate: func(c *Config) { c.MaxParallel = -2 }, wantErr: true},
		{name: "zero file size", mutate: func(c *Config) { c.MaxFileSize = 0 }, wantErr: true},
		{name: "zero fetch timeout", mutate: func(c *Config) { c.FetchTimeout = 0 }, wantErr: true},
		{name: "empty download dir", mutate: func(c *Config) { c.DownloadDir = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
