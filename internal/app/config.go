package app

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/specialistvlad/blockgraph/internal/render"
)

// DefaultWorkspaceID names the served workspace when none is configured.
const DefaultWorkspaceID = "main"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ModulesPath   string   // module manifests
	ManifestPaths []string // extra manifests: workspace, renderer and relay blocks
	Exclude       []string // glob patterns skipped while loading manifests

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Renderer overrides the renderer chosen by the manifests.
	Renderer       string
	RenderInterval time.Duration

	WorkspaceID string
	// StorePath is the SQLite history database; empty keeps no history.
	StorePath string

	// RelayURL overrides the relay block of the manifests.
	RelayURL       string
	RelayNamespace string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ModulesPath == "" && len(cfg.ManifestPaths) == 0 {
		return nil, errors.New("at least one manifest path is required")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	if cfg.Renderer != "" && !slices.Contains(render.Names(), cfg.Renderer) {
		return nil, fmt.Errorf("unknown renderer %q (known: %v)", cfg.Renderer, render.Names())
	}
	if cfg.RenderInterval < 0 {
		return nil, fmt.Errorf("invalid render interval %s", cfg.RenderInterval)
	}
	if cfg.RenderInterval == 0 {
		cfg.RenderInterval = 50 * time.Millisecond
	}
	if cfg.WorkspaceID == "" {
		cfg.WorkspaceID = DefaultWorkspaceID
	}
	if cfg.RelayNamespace != "" && cfg.RelayURL == "" {
		return nil, errors.New("relay namespace given without a relay URL")
	}
	return &cfg, nil
}

// paths returns every manifest path to load.
func (c *Config) paths() []string {
	var out []string
	if c.ModulesPath != "" {
		out = append(out, c.ModulesPath)
	}
	return append(out, c.ManifestPaths...)
}
