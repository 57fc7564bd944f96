package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ComptaPME/compta_backend/internal/core/domain"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL     string
	Port            string
	IsProduction    bool
	EnableDBCheck   bool
	RateLimit       string // ulule/limiter format, e.g. "100-M"
	AllowedOrigins  []string
	ChartConfigPath string // optional YAML chart-of-accounts override
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("ALLOWED_ORIGINS", "")
	viper.SetDefault("CHART_CONFIG_PATH", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.ChartConfigPath = viper.GetString("CHART_CONFIG_PATH")

	if origins := viper.GetString("ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	return cfg, nil
}

// LoadChart returns the chart of accounts: the built-in French PCG mapping,
// or the full replacement chart read from ChartConfigPath when set. A chart
// file must be complete; missing concepts are caught by validation at
// startup, never during transaction processing.
func (c *Config) LoadChart() (domain.ChartOfAccounts, error) {
	if c.ChartConfigPath == "" {
		return domain.DefaultChart(), nil
	}

	raw, err := os.ReadFile(c.ChartConfigPath)
	if err != nil {
		return domain.ChartOfAccounts{}, fmt.Errorf("failed to read chart config %s: %w", c.ChartConfigPath, err)
	}

	var chart domain.ChartOfAccounts
	if err := yaml.Unmarshal(raw, &chart); err != nil {
		return domain.ChartOfAccounts{}, fmt.Errorf("failed to parse chart config %s: %w", c.ChartConfigPath, err)
	}
	return chart, nil
}
