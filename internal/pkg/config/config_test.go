package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("openroute-test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("server.port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.Ranking.BaseURL != "http://localhost:8080" {
		t.Errorf("ranking.base_url = %q", cfg.Ranking.BaseURL)
	}
	if cfg.Map.MaxZoom != 14 || cfg.Map.PaddingPx != 24 || cfg.Map.PadRatio != 0.12 {
		t.Errorf("unexpected map defaults %+v", cfg.Map)
	}
	if cfg.Map.DefaultZ != 10 {
		t.Errorf("map.default_zoom = %v, want 10", cfg.Map.DefaultZ)
	}
	if cfg.Telemetry.ServiceName != "openroute-test" {
		t.Errorf("telemetry.service_name = %q", cfg.Telemetry.ServiceName)
	}
	if cfg.NATS.URL != "" {
		t.Errorf("nats.url should default to empty, got %q", cfg.NATS.URL)
	}
	if cfg.TUI.Start != "48.137154,11.576124" || cfg.TUI.ScenicPreference != 0.7 || cfg.TUI.TimePriority != 0.4 {
		t.Errorf("unexpected tui request defaults %+v", cfg.TUI)
	}
	if cfg.TUI.MaxSuggestions != 3 || cfg.TUI.LogFile != "openroute-tui.log" {
		t.Errorf("unexpected tui defaults %+v", cfg.TUI)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENROUTE_RANKING_BASE_URL", "https://rank.example.com")
	t.Setenv("OPENROUTE_SERVER_PORT", "9000")
	t.Setenv("OPENROUTE_TUI_START", "48.1,11.5")

	cfg, err := Load("openroute")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ranking.BaseURL != "https://rank.example.com" {
		t.Errorf("ranking.base_url = %q", cfg.Ranking.BaseURL)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("server.port = %d", cfg.Server.Port)
	}
	if cfg.TUI.Start != "48.1,11.5" {
		t.Errorf("tui.start = %q", cfg.TUI.Start)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:  ServerConfig{Port: 8090, ReadTimeout: 10, WriteTimeout: 10},
			Ranking: RankingConfig{BaseURL: "http://localhost:8080", Timeout: 5},
			Map:     MapConfig{Width: 800, Height: 600, PaddingPx: 24, PadRatio: 0.12, MaxZoom: 14, DefaultLat: 48, DefaultLon: 11, DefaultZ: 10},
			Session: SessionConfig{TTL: 60, Max: 10, SweepInterval: 30},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"missing ranking url", func(c *Config) { c.Ranking.BaseURL = "" }, "ranking.base_url is required"},
		{"non-http ranking url", func(c *Config) { c.Ranking.BaseURL = "localhost:8080" }, "http(s) URL"},
		{"zero map size", func(c *Config) { c.Map.Width = 0 }, "map size"},
		{"center out of range", func(c *Config) { c.Map.DefaultLat = 120 }, "default center"},
		{"zero sweep", func(c *Config) { c.Session.SweepInterval = 0 }, "session.sweep_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
