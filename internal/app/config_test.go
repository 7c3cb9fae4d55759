package app

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "no paths", cfg: Config{}, wantErr: "at least one manifest path"},
		{name: "bad format", cfg: Config{ModulesPath: "m", LogFormat: "xml"}, wantErr: "invalid log format"},
		{name: "bad level", cfg: Config{ModulesPath: "m", LogLevel: "loud"}, wantErr: "invalid log level"},
		{name: "bad port", cfg: Config{ModulesPath: "m", HealthcheckPort: 70000}, wantErr: "invalid healthcheck port"},
		{name: "bad renderer", cfg: Config{ModulesPath: "m", Renderer: "geras"}, wantErr: "unknown renderer"},
		{name: "negative interval", cfg: Config{ModulesPath: "m", RenderInterval: -time.Second}, wantErr: "invalid render interval"},
		{name: "namespace without url", cfg: Config{ModulesPath: "m", RelayNamespace: "/ws"}, wantErr: "relay namespace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(Config{ManifestPaths: []string{"a.hcl"}, LogLevel: "DEBUG"})
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, DefaultWorkspaceID, cfg.WorkspaceID)
	assert.Equal(t, 50*time.Millisecond, cfg.RenderInterval)
	assert.Equal(t, []string{"a.hcl"}, cfg.paths())

	cfg, err = NewConfig(Config{ModulesPath: "modules", ManifestPaths: []string{"a.hcl"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"modules", "a.hcl"}, cfg.paths())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	level, err := parseLevel("warn")
	require.NoError(t, err)
	logger := newLogger(level, "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Equal(t, slog.LevelWarn, level)
}
