// Package config loads service configuration from the environment, then
// merges overrides from the settings table so deployments can retune without
// restarting from a fresh env.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/civitasrp/civitas/src/data"
	"gorm.io/gorm"
)

// Config holds every knob the bot and API need.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	MySQLDSN     string `env:"MYSQL_DSN"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://127.0.0.1:6379/0"`
	APIPort      string `env:"API_PORT" envDefault:"3001"`
	APIToken     string `env:"API_TOKEN"`
}

// FromEnv parses the environment into a Config.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MySQLDSN == "" {
		// Legacy deployments export the pieces separately.
		if host := os.Getenv("MYSQL_HOST"); host != "" {
			cfg.MySQLDSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s",
				os.Getenv("MYSQL_USER"), os.Getenv("MYSQL_PASS"),
				host, getenvDefault("MYSQL_PORT", "3306"), getenvDefault("MYSQL_DB", "civitas"))
		}
	}
	return cfg, nil
}

// FillFromSettings overlays values from the settings table onto the config.
// DB-side values win over env so operators can rotate tokens in place.
func (c *Config) FillFromSettings(db *gorm.DB) error {
	if err := data.LoadSettings(db); err != nil {
		return err
	}
	if v := data.GetSetting("discord_token"); v != "" {
		c.DiscordToken = v
	}
	if v := data.GetSetting("api_token"); v != "" {
		c.APIToken = v
	}
	if v := data.GetSetting("api_port"); v != "" {
		c.APIPort = v
	}
	return nil
}

// Validate fails fast on config the services cannot run without.
func (c Config) Validate() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("config: DISCORD_TOKEN is required")
	}
	if c.MySQLDSN == "" {
		return fmt.Errorf("config: MYSQL_DSN is required")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
