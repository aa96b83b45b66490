package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	assert.Empty(t, cfg.Address)
	assert.Equal(t, "Switchmate", cfg.Name)
	assert.False(t, cfg.FlipOnOff)
	assert.Equal(t, 10*time.Second, cfg.PollInterval.Std())
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout.Std())
	assert.Equal(t, "error", cfg.LogLevel)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "switchmate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
address: AA:BB:CC:DD:EE:FF
name: Porch Light
flip_on_off: true
poll_interval: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "AA:BB:CC:DD:EE:FF", cfg.Address)
	assert.Equal(t, "Porch Light", cfg.Name)
	assert.True(t, cfg.FlipOnOff)
	assert.Equal(t, 30*time.Second, cfg.PollInterval.Std())
	// Keys absent from the file keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout.Std())
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing address",
			content: "name: Porch Light\n",
			wantErr: "device address is required",
		},
		{
			name:    "malformed yaml",
			content: "address: [\n",
			wantErr: "parse config",
		},
		{
			name:    "bad poll interval",
			content: "address: AA:BB:CC:DD:EE:FF\npoll_interval: -5s\n",
			wantErr: "poll interval must be positive",
		},
		{
			name:    "unparseable duration",
			content: "address: AA:BB:CC:DD:EE:FF\nconnect_timeout: soon\n",
			wantErr: "invalid duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestConfig_NewLogger(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  logrus.Level
	}{
		{
			name:  "debug",
			level: "debug",
			want:  logrus.DebugLevel,
		},
		{
			name:  "info",
			level: "info",
			want:  logrus.InfoLevel,
		},
		{
			name:  "warn",
			level: "warn",
			want:  logrus.WarnLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.LogLevel = tt.level

			logger, err := cfg.NewLogger()
			require.NoError(t, err)
			assert.Equal(t, tt.want, logger.GetLevel())

			formatter, ok := logger.Formatter.(*logrus.TextFormatter)
			require.True(t, ok)
			assert.True(t, formatter.FullTimestamp)
			assert.Equal(t, time.RFC3339, formatter.TimestampFormat)
		})
	}
}

func TestConfig_NewLoggerInvalidLevel(t *testing.T) {
	cfg := New()
	cfg.LogLevel = "loud"

	_, err := cfg.NewLogger()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
