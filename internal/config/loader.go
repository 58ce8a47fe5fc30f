package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("XUI_INBOUND_ID", 7)
	v.SetDefault("XUI_LIMIT_IP", 3)
	v.SetDefault("XUI_FLOW", "xtls-rprx-vision")

	// Define environment variables
	v.BindEnv("TG_TOKEN")
	v.BindEnv("TG_ADMIN_IDS")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("XUI_API_URL")
	v.BindEnv("XUI_USERNAME")
	v.BindEnv("XUI_PASSWORD")
	v.BindEnv("XUI_SUB_URL")
	v.BindEnv("XUI_INBOUND_ID")
	v.BindEnv("XUI_LIMIT_IP")
	v.BindEnv("XUI_FLOW")
	v.BindEnv("HTTP_ADDR")
	v.BindEnv("LOG_LEVEL")

	cfg := &Config{
		LogLevel: v.GetString("LOG_LEVEL"),
		Telegram: TelegramConfig{
			Token: v.GetString("TG_TOKEN"),
		},
		Database: DatabaseConfig{
			DSN: v.GetString("DATABASE_URL"),
		},
		HTTP: HTTPConfig{
			Addr: v.GetString("HTTP_ADDR"),
		},
	}

	// Parse admin IDs
	adminIDsStr := v.GetString("TG_ADMIN_IDS")
	if adminIDsStr != "" {
		adminIDsSlice := strings.Split(adminIDsStr, ",")
		adminIDs := make([]int64, 0, len(adminIDsSlice))
		for _, idStr := range adminIDsSlice {
			var id int64
			if _, err := fmt.Sscanf(strings.TrimSpace(idStr), "%d", &id); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
		cfg.Telegram.AdminIDs = adminIDs
	}

	// Parse panel configuration
	cfg.Panel = PanelConfig{
		APIURL:          strings.TrimSpace(v.GetString("XUI_API_URL")),
		Username:        strings.TrimSpace(v.GetString("XUI_USERNAME")),
		Password:        strings.TrimSpace(v.GetString("XUI_PASSWORD")),
		SubscriptionURL: strings.TrimSpace(v.GetString("XUI_SUB_URL")),
		InboundID:       v.GetInt("XUI_INBOUND_ID"),
		LimitIP:         v.GetInt("XUI_LIMIT_IP"),
		Flow:            v.GetString("XUI_FLOW"),
	}

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		return errors.New("TG_TOKEN is required")
	}

	if len(cfg.Telegram.AdminIDs) == 0 {
		return errors.New("TG_ADMIN_IDS is required")
	}

	if cfg.Database.DSN == "" {
		return errors.New("DATABASE_URL is required")
	}

	// Validate panel configuration
	if cfg.Panel.APIURL == "" {
		return errors.New("XUI_API_URL is required")
	}
	if cfg.Panel.Username == "" {
		return errors.New("XUI_USERNAME is required")
	}
	if cfg.Panel.Password == "" {
		return errors.New("XUI_PASSWORD is required")
	}
	if cfg.Panel.SubscriptionURL == "" {
		return errors.New("XUI_SUB_URL is required")
	}
	if cfg.Panel.InboundID <= 0 {
		return errors.New("XUI_INBOUND_ID must be positive")
	}

	return nil
}
