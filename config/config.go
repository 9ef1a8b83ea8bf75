package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type Config struct {
	AppName    string `envconfig:"APP_NAME" yaml:"app_name"`
	AppVersion string `envconfig:"APP_VERSION" yaml:"app_version"`
	AppEnv     string `envconfig:"APP_ENV" yaml:"app_env"`
	Host       string `envconfig:"HOST" yaml:"host"`
	Port       string `envconfig:"PORT" yaml:"port"`
	LogLevel   string `envconfig:"LOG_LEVEL" yaml:"log_level"`
	SentryDSN  string `envconfig:"SENTRY_DSN" yaml:"sentry_dsn,omitempty"`

	Geocoder GeocoderConfig `envconfig:"GEOCODER" yaml:"geocoder"`
	Forecast ForecastConfig `envconfig:"FORECAST" yaml:"forecast"`
	HTTP     HTTPConfig     `envconfig:"HTTP" yaml:"http"`
	Window   WindowConfig   `envconfig:"WINDOW" yaml:"window"`
}

// GeocoderConfig selects the service that turns a city name into coordinates.
type GeocoderConfig struct {
	Provider  string        `envconfig:"PROVIDER" yaml:"provider"`
	BaseURL   string        `envconfig:"BASE_URL" yaml:"base_url,omitempty"`
	UserAgent string        `envconfig:"USER_AGENT" yaml:"user_agent"`
	Timeout   time.Duration `envconfig:"TIMEOUT" yaml:"timeout"`
}

type ForecastConfig struct {
	BaseURL string `envconfig:"BASE_URL" yaml:"base_url,omitempty"`
	Days    int    `envconfig:"DAYS" yaml:"days"`
}

// HTTPConfig is shared by every forecast request for the lifetime of the process.
type HTTPConfig struct {
	CachePath     string        `envconfig:"CACHE_PATH" yaml:"cache_path"`
	CacheExpiry   time.Duration `envconfig:"CACHE_EXPIRY" yaml:"cache_expiry"`
	RetryMax      int           `envconfig:"RETRY_MAX" yaml:"retry_max"`
	BackoffFactor float64       `envconfig:"BACKOFF_FACTOR" yaml:"backoff_factor"`
	RetryWaitMax  time.Duration `envconfig:"RETRY_WAIT_MAX" yaml:"retry_wait_max"`
}

type WindowConfig struct {
	Title        string `envconfig:"TITLE" yaml:"title"`
	ChartHistory int    `envconfig:"CHART_HISTORY" yaml:"chart_history"`
	ChartWidth   int    `envconfig:"CHART_WIDTH" yaml:"chart_width"`
	ChartHeight  int    `envconfig:"CHART_HEIGHT" yaml:"chart_height"`
}

// Default returns the configuration used when neither the YAML file nor the
// environment set a value.
func Default() Config {
	return Config{
		AppName:    "weathercast",
		AppVersion: "1.0.0",
		AppEnv:     "development",
		Host:       "127.0.0.1",
		Port:       "8080",
		LogLevel:   "info",
		Geocoder: GeocoderConfig{
			Provider:  "nominatim",
			UserAgent: "weathercast/1.0",
			Timeout:   10 * time.Second,
		},
		Forecast: ForecastConfig{
			Days: 1,
		},
		HTTP: HTTPConfig{
			CachePath:     ".cache.sqlite",
			CacheExpiry:   time.Hour,
			RetryMax:      5,
			BackoffFactor: 0.2,
			RetryWaitMax:  30 * time.Second,
		},
		Window: WindowConfig{
			Title:        "Weathercast",
			ChartHistory: 1,
			ChartWidth:   800,
			ChartHeight:  400,
		},
	}
}

func NewConfig() *Config {
	cnf, err := Load(DefaultPath)
	if err != nil {
		panic(fmt.Errorf("error loading configuration: %w", err))
	}

	return cnf
}

// Load layers the YAML file at path (if present) and the environment over Default.
func Load(path string) (*Config, error) {
	cnf := Default()

	// Read from YAML file first
	if yamlData, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(yamlData, &cnf); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read YAML config %s: %w", path, err)
	}

	// Override with environment variables
	if err := envconfig.Process("", &cnf); err != nil {
		return nil, fmt.Errorf("error environment variable parsing: %w", err)
	}

	if err := cnf.Validate(); err != nil {
		return nil, err
	}

	return &cnf, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.AppName) == "" {
		return errors.New("app name cannot be empty")
	}
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("port cannot be empty")
	}

	switch c.Geocoder.Provider {
	case "nominatim", "open-meteo":
	default:
		return fmt.Errorf("unknown geocoder provider %q", c.Geocoder.Provider)
	}
	if c.Geocoder.Provider == "nominatim" && strings.TrimSpace(c.Geocoder.UserAgent) == "" {
		return errors.New("nominatim requires a user agent")
	}

	if c.Forecast.Days < 1 || c.Forecast.Days > 16 {
		return fmt.Errorf("forecast days must be between 1 and 16, got %d", c.Forecast.Days)
	}
	if c.HTTP.CacheExpiry < 0 {
		return errors.New("cache expiry cannot be negative")
	}
	if c.HTTP.RetryMax < 0 {
		return errors.New("retry max cannot be negative")
	}
	if c.HTTP.BackoffFactor < 0 {
		return errors.New("backoff factor cannot be negative")
	}
	if c.Window.ChartHistory < 1 {
		return fmt.Errorf("chart history must be at least 1, got %d", c.Window.ChartHistory)
	}
	if c.Window.ChartWidth <= 0 || c.Window.ChartHeight <= 0 {
		return errors.New("chart size must be positive")
	}

	return nil
}

// Addr is the listen address of the window server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}
