package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"trailmap/internal/geo"
	"trailmap/internal/tiles"
)

const (
	ModeMosaic = "mosaic"
	ModeWidget = "widget"
)

// Config holds all application configuration.
type Config struct {
	Map     MapConfig     `mapstructure:"map"`
	Tiles   TilesConfig   `mapstructure:"tiles"`
	Widget  WidgetConfig  `mapstructure:"widget"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MapConfig selects the canvas strategy and the mosaic's tile window.
type MapConfig struct {
	Mode     string `mapstructure:"mode"`
	Zoom     int    `mapstructure:"zoom"`
	XStart   int    `mapstructure:"x_start"`
	YStart   int    `mapstructure:"y_start"`
	Cols     int    `mapstructure:"cols"`
	Rows     int    `mapstructure:"rows"`
	TileSize int    `mapstructure:"tile_size"`
}

func (m MapConfig) Projection() geo.Projection {
	return geo.Projection{
		Zoom:     m.Zoom,
		XStart:   m.XStart,
		YStart:   m.YStart,
		Cols:     m.Cols,
		Rows:     m.Rows,
		TileSize: m.TileSize,
	}
}

type TilesConfig struct {
	URL       string        `mapstructure:"url"`
	Shards    []string      `mapstructure:"shards"`
	UserAgent string        `mapstructure:"user_agent"`
	RateLimit float64       `mapstructure:"rate_limit"`
	Burst     int           `mapstructure:"burst"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// WidgetConfig configures the map-widget strategy. A zero center means the
// center of the mosaic window.
type WidgetConfig struct {
	CenterLat     float64       `mapstructure:"center_lat"`
	CenterLon     float64       `mapstructure:"center_lon"`
	Zoom          int           `mapstructure:"zoom"`
	Retries       int           `mapstructure:"retries"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

func (w WidgetConfig) Center(fallback geo.GeoPoint) geo.GeoPoint {
	if w.CenterLat == 0 && w.CenterLon == 0 {
		return fallback
	}
	return geo.GeoPoint{Lat: w.CenterLat, Lon: w.CenterLon}
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Flags returns the command-line flags Load understands.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("trailmap", pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file")
	fs.String("mode", ModeMosaic, "canvas strategy: mosaic or widget")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
	return fs
}

// Load reads configuration from defaults, an optional file, TRAILMAP_*
// environment variables and flags, in increasing priority. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("map.mode", ModeMosaic)
	v.SetDefault("map.zoom", geo.DefaultZoom)
	v.SetDefault("map.x_start", geo.DefaultXStart)
	v.SetDefault("map.y_start", geo.DefaultYStart)
	v.SetDefault("map.cols", geo.DefaultCols)
	v.SetDefault("map.rows", geo.DefaultRows)
	v.SetDefault("map.tile_size", geo.TileSize)
	v.SetDefault("tiles.url", tiles.DefaultURLTemplate)
	v.SetDefault("tiles.shards", []string{"a"})
	v.SetDefault("tiles.user_agent", "trailmap/1.0 (trail design lesson)")
	v.SetDefault("tiles.rate_limit", 0)
	v.SetDefault("tiles.burst", 16)
	v.SetDefault("tiles.timeout", 0)
	v.SetDefault("widget.zoom", geo.DefaultZoom)
	v.SetDefault("widget.retries", 2)
	v.SetDefault("widget.retry_interval", "250ms")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "trailmap.log")
	v.SetDefault("metrics.addr", "")

	configFile := ""
	if fs != nil {
		_ = v.BindPFlag("map.mode", fs.Lookup("mode"))
		_ = v.BindPFlag("log.level", fs.Lookup("log-level"))
		_ = v.BindPFlag("metrics.addr", fs.Lookup("metrics-addr"))
		configFile, _ = fs.GetString("config")
	}

	// Config file: explicit path must exist, the default lookup is optional
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("trailmap")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		_ = v.ReadInConfig() // OK if missing
	}

	// Environment variables: TRAILMAP_MAP_MODE → map.mode
	v.SetEnvPrefix("TRAILMAP")
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

// Validate checks that configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	switch c.Map.Mode {
	case ModeMosaic, ModeWidget:
	default:
		errs = append(errs, fmt.Sprintf("map.mode must be %q or %q, got %q", ModeMosaic, ModeWidget, c.Map.Mode))
	}
	if err := c.Map.Projection().Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Tiles.URL == "" {
		errs = append(errs, "tiles.url is required")
	} else if strings.Contains(c.Tiles.URL, "{s}") && len(c.Tiles.Shards) == 0 {
		errs = append(errs, "tiles.shards is required when tiles.url contains {s}")
	}
	if c.Tiles.RateLimit < 0 {
		errs = append(errs, "tiles.rate_limit must not be negative")
	}
	if c.Tiles.Timeout < 0 {
		errs = append(errs, "tiles.timeout must not be negative")
	}
	if c.Widget.Zoom < 0 || c.Widget.Zoom > 22 {
		errs = append(errs, fmt.Sprintf("widget.zoom must be 0-22, got %d", c.Widget.Zoom))
	}
	if c.Widget.Retries < 0 {
		errs = append(errs, "widget.retries must not be negative")
	}
	if !(geo.GeoPoint{Lat: c.Widget.CenterLat, Lon: c.Widget.CenterLon}).Valid() {
		errs = append(errs, "widget center must be a valid latitude/longitude")
	}
	if c.Log.File == "" {
		errs = append(errs, "log.file is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
