// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Spotify SpotifyConfig `yaml:"spotify"`
	LastFM  LastFMConfig  `yaml:"lastfm"`
	Pacing  PacingConfig  `yaml:"pacing"`
	Log     LogConfig     `yaml:"log"`
}

// SpotifyConfig represents Spotify API configuration. Credentials are
// checked by the catalog client when a command actually talks to the
// API, so parse-only commands run without any.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	SearchLimit  int    `yaml:"search_limit" default:"10" validate:"gte=1,lte=50"`
}

// LastFMConfig represents Last.fm API configuration. The API key is
// only required when play-count ordering is used.
type LastFMConfig struct {
	APIKey string `yaml:"api_key"`
}

// PacingConfig represents the fixed inter-request delay applied to
// every external API call.
type PacingConfig struct {
	DelayMs int `yaml:"delay_ms" default:"350" validate:"gte=0,lte=60000"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Output string `yaml:"output" default:"stderr"`
	Level  string `yaml:"level" default:"info"`
	File   string `yaml:"file"`
}

// Load loads configuration from a YAML file. Environment variables
// take precedence over file values for sensitive fields. A missing
// file is not an error; env-only configuration is supported.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	case os.IsNotExist(err):
		// Fall through to env vars and defaults.
	default:
		return nil, errors.Wrap(err, "failed to read config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		c.Spotify.RefreshToken = v
	}
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		c.LastFM.APIKey = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// PacingDelay returns the inter-request delay as a duration.
func (c *Config) PacingDelay() time.Duration {
	return time.Duration(c.Pacing.DelayMs) * time.Millisecond
}
