package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func clearBridgeEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_GROUP_ID", "TELEGRAM_ADMINS",
		"PORT", "WEBSITE_URL", "DATABASE_DSN",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearBridgeEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Telegram.Mode != "webhook" {
		t.Errorf("mode = %q, want webhook", cfg.Telegram.Mode)
	}
	if cfg.Server.Port != 8443 {
		t.Errorf("port = %d, want 8443", cfg.Server.Port)
	}
	if cfg.Database.SQLitePath != "bot_data.db" {
		t.Errorf("sqlite path = %q", cfg.Database.SQLitePath)
	}
	if cfg.Server.WebhookSecret == "" {
		t.Error("webhook secret must be generated when unset")
	}
}

func TestLoadFileWithEnvOverlay(t *testing.T) {
	clearBridgeEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		// operator deployment
		telegram: {
			group_id: -100200300,
			operators: [777, "888"],
			mode: "polling",
		},
		server: { port: 9000 },
	}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("PORT", "7000")
	t.Setenv("WEBSITE_URL", "https://bot.example.org/")
	t.Setenv("DATABASE_DSN", "postgres://u:p@db/support")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.GroupID != -100200300 {
		t.Errorf("group_id = %d", cfg.Telegram.GroupID)
	}
	wantOps := FlexibleInt64Slice{777, 888}
	if !reflect.DeepEqual(cfg.Telegram.Operators, wantOps) {
		t.Errorf("operators = %v, want %v", cfg.Telegram.Operators, wantOps)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("token = %q, env must win", cfg.Telegram.Token)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("port = %d, env must override the file", cfg.Server.Port)
	}
	if cfg.Server.PublicURL != "https://bot.example.org" {
		t.Errorf("public url = %q, trailing slash must be trimmed", cfg.Server.PublicURL)
	}
	if cfg.Database.PostgresDSN != "postgres://u:p@db/support" {
		t.Errorf("dsn = %q", cfg.Database.PostgresDSN)
	}
}

func TestParseAdminList(t *testing.T) {
	tests := []struct {
		raw  string
		want FlexibleInt64Slice
	}{
		{"777", FlexibleInt64Slice{777}},
		{"777,888", FlexibleInt64Slice{777, 888}},
		{" 777 , 888 ", FlexibleInt64Slice{777, 888}},
		{"777,,888", FlexibleInt64Slice{777, 888}},
		{"777,bogus,888", FlexibleInt64Slice{777, 888}},
		{"bogus", nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := parseAdminList(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseAdminList(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFlexibleInt64Slice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    FlexibleInt64Slice
		wantErr bool
	}{
		{"ints", `[1, 2]`, FlexibleInt64Slice{1, 2}, false},
		{"strings", `["1", "2"]`, FlexibleInt64Slice{1, 2}, false},
		{"mixed", `[1, "2"]`, FlexibleInt64Slice{1, 2}, false},
		{"non-numeric", `["abc"]`, nil, true},
		{"bool", `[true]`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexibleInt64Slice
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %t", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Telegram.Token = "123:abc"
		cfg.Telegram.GroupID = -100200300
		cfg.Telegram.Operators = FlexibleInt64Slice{777}
		cfg.Server.PublicURL = "https://bot.example.org"
		return cfg
	}

	tests := []struct {
		name    string
		mut     func(*Config)
		wantErr bool
	}{
		{"complete", func(*Config) {}, false},
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, true},
		{"missing group", func(c *Config) { c.Telegram.GroupID = 0 }, true},
		{"no operators", func(c *Config) { c.Telegram.Operators = nil }, true},
		{"webhook without public url", func(c *Config) { c.Server.PublicURL = "" }, true},
		{"polling without public url", func(c *Config) {
			c.Telegram.Mode = "polling"
			c.Server.PublicURL = ""
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mut(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}
