// Package config loads the bridge configuration from a JSON5 file with an
// environment overlay. Secrets (bot token, database DSN) come from the
// environment only and are never written to the config file.
package config

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexibleInt64Slice accepts both [123] and ["123"] in JSON, since operator
// IDs get quoted by some editors.
type FlexibleInt64Slice []int64

func (f *FlexibleInt64Slice) UnmarshalJSON(data []byte) error {
	var ints []int64
	if err := json.Unmarshal(data, &ints); err == nil {
		*f = ints
		return nil
	}
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]int64, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case float64:
			result = append(result, int64(val))
		case string:
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("operator id %q is not numeric", val)
			}
			result = append(result, n)
		default:
			return fmt.Errorf("operator id %v has unsupported type", v)
		}
	}
	*f = result
	return nil
}

// Config is the root configuration for the support bridge.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database,omitempty"`
}

// TelegramConfig configures the bot and its routing parameters.
type TelegramConfig struct {
	Token     string             `json:"-"` // env TELEGRAM_BOT_TOKEN only
	GroupID   int64              `json:"group_id"`
	Operators FlexibleInt64Slice `json:"operators"`      // static allow-list, read-only after load
	Mode      string             `json:"mode,omitempty"` // "webhook" (default) or "polling"
	Proxy     string             `json:"proxy,omitempty"`
}

// ServerConfig configures the HTTP listener and webhook registration.
type ServerConfig struct {
	Host          string `json:"host"`
	Port          int    `json:"port"`
	PublicURL     string `json:"public_url,omitempty"`     // base URL Telegram can reach
	WebhookSecret string `json:"webhook_secret,omitempty"` // generated when empty
}

// DatabaseConfig selects the storage backend. A configured DSN switches the
// directory from the local SQLite file to Postgres.
type DatabaseConfig struct {
	SQLitePath  string `json:"sqlite_path,omitempty"`
	PostgresDSN string `json:"-"` // env DATABASE_DSN only
}

// Validate checks the fields serve cannot run without.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram bot token is not set (TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.GroupID == 0 {
		return fmt.Errorf("operator group_id is not set (TELEGRAM_GROUP_ID)")
	}
	if len(c.Telegram.Operators) == 0 {
		return fmt.Errorf("operator allow-list is empty (TELEGRAM_ADMINS)")
	}
	if c.Telegram.Mode == "webhook" && c.Server.PublicURL == "" {
		return fmt.Errorf("webhook mode needs a public URL (WEBSITE_URL)")
	}
	return nil
}
