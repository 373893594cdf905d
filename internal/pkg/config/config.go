package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Ranking   RankingConfig   `mapstructure:"ranking"`
	Map       MapConfig       `mapstructure:"map"`
	Session   SessionConfig   `mapstructure:"session"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	TUI       TUIConfig       `mapstructure:"tui"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RankingConfig points at the route suggestion backend.
type RankingConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

// MapConfig sizes the map surface and its default camera.
type MapConfig struct {
	Width      int     `mapstructure:"width"`
	Height     int     `mapstructure:"height"`
	PaddingPx  int     `mapstructure:"padding_px"`
	PadRatio   float64 `mapstructure:"pad_ratio"`
	MaxZoom    float64 `mapstructure:"max_zoom"`
	DefaultLat float64 `mapstructure:"default_lat"`
	DefaultLon float64 `mapstructure:"default_lon"`
	DefaultZ   float64 `mapstructure:"default_zoom"`
}

type SessionConfig struct {
	TTL           int `mapstructure:"ttl"` // seconds idle before a session is closed
	Max           int `mapstructure:"max"`
	SweepInterval int `mapstructure:"sweep_interval"` // seconds
}

// NATSConfig is optional: an empty URL disables event publishing.
type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// TUIConfig seeds the terminal client's request form.
type TUIConfig struct {
	Start            string  `mapstructure:"start"`
	End              string  `mapstructure:"end"`
	MaxSuggestions   int     `mapstructure:"max_suggestions"`
	FitnessLevel     float64 `mapstructure:"fitness_level"`
	ScenicPreference float64 `mapstructure:"scenic_preference"`
	AvoidMainRoads   float64 `mapstructure:"avoid_main_roads"`
	TimePriority     float64 `mapstructure:"time_priority"`
	LogFile          string  `mapstructure:"log_file"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("ranking.base_url", "http://localhost:8080")
	v.SetDefault("ranking.timeout", 20)
	v.SetDefault("map.width", 960)
	v.SetDefault("map.height", 640)
	v.SetDefault("map.padding_px", 24)
	v.SetDefault("map.pad_ratio", 0.12)
	v.SetDefault("map.max_zoom", 14)
	v.SetDefault("map.default_lat", 48.137154)
	v.SetDefault("map.default_lon", 11.576124)
	v.SetDefault("map.default_zoom", 10)
	v.SetDefault("session.ttl", 1800)
	v.SetDefault("session.max", 1000)
	v.SetDefault("session.sweep_interval", 60)
	v.SetDefault("nats.url", "")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("tui.start", "48.137154,11.576124")
	v.SetDefault("tui.end", "48.370545,10.897790")
	v.SetDefault("tui.max_suggestions", 3)
	v.SetDefault("tui.fitness_level", 0.5)
	v.SetDefault("tui.scenic_preference", 0.7)
	v.SetDefault("tui.avoid_main_roads", 0.7)
	v.SetDefault("tui.time_priority", 0.4)
	v.SetDefault("tui.log_file", "openroute-tui.log")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: OPENROUTE_RANKING_BASE_URL → ranking.base_url
	v.SetEnvPrefix("OPENROUTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Ranking.BaseURL == "" {
		errs = append(errs, "ranking.base_url is required")
	} else if !strings.HasPrefix(c.Ranking.BaseURL, "http://") && !strings.HasPrefix(c.Ranking.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("ranking.base_url must be an http(s) URL, got %q", c.Ranking.BaseURL))
	}
	if c.Ranking.Timeout <= 0 {
		errs = append(errs, "ranking.timeout must be positive")
	}
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		errs = append(errs, fmt.Sprintf("map size must be positive, got %dx%d", c.Map.Width, c.Map.Height))
	}
	if c.Map.PaddingPx < 0 {
		errs = append(errs, "map.padding_px must not be negative")
	}
	if c.Map.PadRatio < 0 {
		errs = append(errs, "map.pad_ratio must not be negative")
	}
	if c.Map.MaxZoom <= 0 {
		errs = append(errs, "map.max_zoom must be positive")
	}
	if c.Map.DefaultLat < -90 || c.Map.DefaultLat > 90 || c.Map.DefaultLon < -180 || c.Map.DefaultLon > 180 {
		errs = append(errs, "map default center is out of range")
	}
	if c.Session.TTL < 0 {
		errs = append(errs, "session.ttl must not be negative")
	}
	if c.Session.Max < 0 {
		errs = append(errs, "session.max must not be negative")
	}
	if c.Session.SweepInterval <= 0 {
		errs = append(errs, "session.sweep_interval must be positive")
	}
	if c.TUI.MaxSuggestions < 0 {
		errs = append(errs, "tui.max_suggestions must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
