package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/titanous/json5"
)

// Default returns a Config with the original deployment's defaults.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Mode: "webhook",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8443,
		},
		Database: DatabaseConfig{
			SQLitePath: "bot_data.db",
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars. A missing
// file is fine: everything can come from the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnv(cfg)

	// The webhook path needs a non-guessable segment. Generated secrets
	// rotate per process; the webhook is re-registered at startup anyway.
	if cfg.Server.WebhookSecret == "" {
		cfg.Server.WebhookSecret = uuid.NewString()
	}
	return cfg, nil
}

// applyEnv overlays the environment variables the original deployment used.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_GROUP_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.GroupID = id
		}
	}
	if v := os.Getenv("TELEGRAM_ADMINS"); v != "" {
		if ops := parseAdminList(v); len(ops) > 0 {
			cfg.Telegram.Operators = ops
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("WEBSITE_URL"); v != "" {
		cfg.Server.PublicURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.PostgresDSN = v
	}
}

// parseAdminList parses the comma-separated TELEGRAM_ADMINS value.
// Malformed entries are skipped rather than failing startup.
func parseAdminList(raw string) FlexibleInt64Slice {
	var ops FlexibleInt64Slice
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			ops = append(ops, id)
		}
	}
	return ops
}
