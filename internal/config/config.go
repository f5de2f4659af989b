// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
//
// GITHUB_USERNAME and GITHUB_TOKEN are deliberately optional: without them
// the sync services return empty results so the application can run in a
// partially configured environment (local development, CI). REDIS_ADDR is
// optional: without it the rate limiter fails open.
type Config struct {
	LogLevel string `mapstructure:"LOG_LEVEL"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	DBURL    string `mapstructure:"DB_URL"`

	AdminUsername string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	GithubUsername string `mapstructure:"GITHUB_USERNAME"`
	GithubToken    string `mapstructure:"GITHUB_TOKEN"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	ReposTTL   time.Duration `mapstructure:"REPOS_TTL"`
	CommitsTTL time.Duration `mapstructure:"COMMITS_TTL"`
	RateLimit  int           `mapstructure:"RATE_LIMIT"`
	RateWindow time.Duration `mapstructure:"RATE_WINDOW"`

	// Fallback profile fields used when the settings table has no value.
	SiteName     string `mapstructure:"SITE_NAME"`
	SiteRole     string `mapstructure:"SITE_ROLE"`
	SiteHeadline string `mapstructure:"SITE_HEADLINE"`
	SiteLocation string `mapstructure:"SITE_LOCATION"`
	SiteEmail    string `mapstructure:"SITE_EMAIL"`
}

// GithubConfigured reports whether the upstream account credentials are set.
func (c *Config) GithubConfigured() bool {
	return c.GithubUsername != "" && c.GithubToken != ""
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("REPOS_TTL", "20m")
	viper.SetDefault("COMMITS_TTL", "10m")
	viper.SetDefault("RATE_LIMIT", 10)
	viper.SetDefault("RATE_WINDOW", "1m")

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables. AutomaticEnv alone only resolves keys
	// viper already knows from a config file or a default, so every key
	// without a default is bound explicitly; otherwise an env-only
	// deployment would read required fields as empty.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range []string{
		"DB_URL",
		"ADMIN_USERNAME", "ADMIN_PASSWORD",
		"GITHUB_USERNAME", "GITHUB_TOKEN",
		"REDIS_ADDR", "REDIS_PASSWORD",
		"SITE_NAME", "SITE_ROLE", "SITE_HEADLINE", "SITE_LOCATION", "SITE_EMAIL",
	} {
		_ = viper.BindEnv(key)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is a required configuration field")
	}
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD are required configuration fields")
	}
	if cfg.ReposTTL <= 0 || cfg.CommitsTTL <= 0 {
		return nil, errors.New("REPOS_TTL and COMMITS_TTL must be positive durations")
	}
	if cfg.RateLimit <= 0 {
		return nil, errors.New("RATE_LIMIT must be a positive integer")
	}

	return &cfg, nil
}
