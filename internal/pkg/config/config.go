package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Widget    WidgetConfig    `mapstructure:"widget"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	DevServer DevServerConfig `mapstructure:"devserver"`
}

// APIConfig locates the snippets web application.
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	FeedPath       string        `mapstructure:"feed_path"`
	SnippetsPath   string        `mapstructure:"snippets_path"`
	NewSnippetPath string        `mapstructure:"new_snippet_path"`
	Cookies        string        `mapstructure:"cookies"`
	CSRFCookie     string        `mapstructure:"csrf_cookie"`
	CSRFHeader     string        `mapstructure:"csrf_header"`
	FeedTimeout    time.Duration `mapstructure:"feed_timeout"`
}

// NewSnippetURL is the absolute URL of the create page.
func (a APIConfig) NewSnippetURL() string {
	return strings.TrimRight(a.BaseURL, "/") + a.NewSnippetPath
}

type WidgetConfig struct {
	Editable   bool    `mapstructure:"editable"`
	UseBBox    bool    `mapstructure:"use_bbox"`
	FitBounds  bool    `mapstructure:"fit_bounds"`
	FitPadding int     `mapstructure:"fit_padding"`
	CenterLat  float64 `mapstructure:"center_lat"`
	CenterLng  float64 `mapstructure:"center_lng"`
	Zoom       int     `mapstructure:"zoom"`
	OpenURLs   bool    `mapstructure:"open_urls"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type MetricsConfig struct {
	// Addr is the listen address of the ops server; empty disables it.
	Addr string `mapstructure:"addr"`
}

type NATSConfig struct {
	// URL of the broker; empty disables event publishing.
	URL string `mapstructure:"url"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User), url.QueryEscape(d.Password), d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type ValkeyConfig struct {
	// Addr of the feed cache; empty disables caching.
	Addr string `mapstructure:"addr"`
	// FeedTTL is how long an encoded feed is served from cache.
	FeedTTL time.Duration `mapstructure:"feed_ttl"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type DevServerConfig struct {
	Port int `mapstructure:"port"`
	// Store is "memory" or "postgres".
	Store    string `mapstructure:"store"`
	SeedFile string `mapstructure:"seed_file"`
	// LockedIDs are snippets whose mutations the stub rejects.
	LockedIDs []string `mapstructure:"locked_ids"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	return unmarshal(v)
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.feed_path", "/snippets/map/api/geojson/")
	v.SetDefault("api.snippets_path", "/snippets/api/snippets/")
	v.SetDefault("api.new_snippet_path", "/snippets/new/")
	v.SetDefault("api.cookies", "")
	v.SetDefault("api.csrf_cookie", "csrftoken")
	v.SetDefault("api.csrf_header", "X-CSRFToken")
	v.SetDefault("api.feed_timeout", 15*time.Second)
	v.SetDefault("widget.editable", true)
	v.SetDefault("widget.use_bbox", false)
	v.SetDefault("widget.fit_bounds", true)
	v.SetDefault("widget.fit_padding", 30)
	v.SetDefault("widget.center_lat", 40.4167) // Madrid
	v.SetDefault("widget.center_lng", -3.7037)
	v.SetDefault("widget.zoom", 6)
	v.SetDefault("widget.open_urls", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "snippetmap.log")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("nats.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "snippets")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "snippets")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("valkey.addr", "")
	v.SetDefault("valkey.feed_ttl", 30*time.Second)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("devserver.port", 8000)
	v.SetDefault("devserver.store", "memory")
	v.SetDefault("devserver.seed_file", "")
	v.SetDefault("devserver.locked_ids", []string{"42"})

	// Environment variables: SNIPPETMAP_API_BASE_URL → api.base_url
	v.SetEnvPrefix("SNIPPETMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func unmarshal(v *viper.Viper) (*Config, error) {
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

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("api.base_url must be an absolute URL, got %q", c.API.BaseURL))
	}
	for key, p := range map[string]string{
		"api.feed_path":        c.API.FeedPath,
		"api.snippets_path":    c.API.SnippetsPath,
		"api.new_snippet_path": c.API.NewSnippetPath,
	} {
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, fmt.Sprintf("%s must start with /, got %q", key, p))
		}
	}
	if c.API.CSRFCookie == "" {
		errs = append(errs, "api.csrf_cookie is required")
	}
	if c.API.CSRFHeader == "" {
		errs = append(errs, "api.csrf_header is required")
	}
	if c.API.FeedTimeout <= 0 {
		errs = append(errs, "api.feed_timeout must be positive")
	}
	if c.Widget.FitPadding < 0 {
		errs = append(errs, "widget.fit_padding must not be negative")
	}
	if c.Widget.CenterLat < -90 || c.Widget.CenterLat > 90 {
		errs = append(errs, fmt.Sprintf("widget.center_lat must be -90..90, got %g", c.Widget.CenterLat))
	}
	if c.Widget.CenterLng < -180 || c.Widget.CenterLng > 180 {
		errs = append(errs, fmt.Sprintf("widget.center_lng must be -180..180, got %g", c.Widget.CenterLng))
	}
	if c.Widget.Zoom < 0 || c.Widget.Zoom > 19 {
		errs = append(errs, fmt.Sprintf("widget.zoom must be 0-19, got %d", c.Widget.Zoom))
	}
	if c.DevServer.Port <= 0 || c.DevServer.Port > 65535 {
		errs = append(errs, fmt.Sprintf("devserver.port must be 1-65535, got %d", c.DevServer.Port))
	}
	switch c.DevServer.Store {
	case "memory":
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required for the postgres store")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required for the postgres store")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required for the postgres store")
		}
	default:
		errs = append(errs, fmt.Sprintf("devserver.store must be memory or postgres, got %q", c.DevServer.Store))
	}
	if c.Valkey.Addr != "" && c.Valkey.FeedTTL < time.Second {
		errs = append(errs, "valkey.feed_ttl must be at least 1s")
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
