package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFiles(t *testing.T, configTOML, credentialsTOML string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(configTOML), 0644); err != nil {
		t.Fatalf("write config.toml: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "credentials.toml"), []byte(credentialsTOML), 0600); err != nil {
		t.Fatalf("write credentials.toml: %v", err)
	}
	return dir
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := writeConfigFiles(t, "", "")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Market.BaseURL != "https://api.coingecko.com/api/v3" {
		t.Errorf("unexpected base URL: %s", cfg.Market.BaseURL)
	}
	if cfg.Market.CacheTTL != 30*time.Second {
		t.Errorf("unexpected cache TTL: %s", cfg.Market.CacheTTL)
	}
	if cfg.Refresh.Interval != 30*time.Second {
		t.Errorf("unexpected refresh interval: %s", cfg.Refresh.Interval)
	}
	if cfg.Notifications.DisplayTTL != 8*time.Second {
		t.Errorf("unexpected display TTL: %s", cfg.Notifications.DisplayTTL)
	}
	if len(cfg.Market.Assets) != 20 {
		t.Errorf("expected the default 20-asset universe, got %d", len(cfg.Market.Assets))
	}
	if cfg.Market.Assets[0].ID != "bitcoin" {
		t.Errorf("unexpected first asset: %+v", cfg.Market.Assets[0])
	}
	if cfg.UI.Currency != "USD" || cfg.Insight.Language != "en" {
		t.Errorf("unexpected display defaults: %s %s", cfg.UI.Currency, cfg.Insight.Language)
	}
}

func TestLoadReadsValuesAndCredentials(t *testing.T) {
	configTOML := `
[market]
cache_ttl = "45s"

[[market.assets]]
id = "bitcoin"
name = "Bitcoin"
symbol = "BTC"

[refresh]
interval = "10s"
auto_on = true

[insight]
language = "pt-BR"

[ui]
currency = "BRL"
`
	credentialsTOML := `
[openai]
api_key = "sk-test-123"
`
	dir := writeConfigFiles(t, configTOML, credentialsTOML)
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Market.CacheTTL != 45*time.Second {
		t.Errorf("cache_ttl not read: %s", cfg.Market.CacheTTL)
	}
	if len(cfg.Market.Assets) != 1 || cfg.Market.Assets[0].Symbol != "BTC" {
		t.Errorf("assets not read: %+v", cfg.Market.Assets)
	}
	if !cfg.Refresh.AutoOn || cfg.Refresh.Interval != 10*time.Second {
		t.Errorf("refresh not read: %+v", cfg.Refresh)
	}
	if cfg.UI.Currency != "BRL" || cfg.Insight.Language != "pt-BR" {
		t.Errorf("display prefs not read: %s %s", cfg.UI.Currency, cfg.Insight.Language)
	}
	if cfg.Credentials.OpenAI.APIKey != "sk-test-123" {
		t.Errorf("credentials not read: %q", cfg.Credentials.OpenAI.APIKey)
	}
}

func TestEnvOverridesWin(t *testing.T) {
	dir := writeConfigFiles(t, "", `
[openai]
api_key = "from-file"
`)
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("MARKETDASH_LISTEN", "0.0.0.0:9000")
	t.Setenv("MARKETDASH_WEBHOOK_URL", "https://hooks.example.com/x")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Credentials.OpenAI.APIKey != "from-env" {
		t.Errorf("env should override file credential, got %q", cfg.Credentials.OpenAI.APIKey)
	}
	if cfg.API.Listen != "0.0.0.0:9000" {
		t.Errorf("listen override not applied: %s", cfg.API.Listen)
	}
	if !cfg.Notifications.Webhook.Enabled || cfg.Notifications.Webhook.URL != "https://hooks.example.com/x" {
		t.Errorf("webhook override not applied: %+v", cfg.Notifications.Webhook)
	}
}

func TestLoadCreatesTemplatesWhenMissing(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(dir); err != nil {
		t.Fatalf("load with missing files: %v", err)
	}

	for _, name := range []string{"config.toml", "credentials.toml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("template %s not created: %v", name, err)
		}
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad currency", func(c *Config) { c.UI.Currency = "EUR" }},
		{"bad language", func(c *Config) { c.Insight.Language = "fr" }},
		{"interval too small", func(c *Config) { c.Refresh.Interval = 100 * time.Millisecond }},
		{"empty asset id", func(c *Config) { c.Market.Assets = []AssetConfig{{Name: "Mystery"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestTrackedAssetsStartAtZeroSentinel(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assets := cfg.TrackedAssets()
	if len(assets) != 20 {
		t.Fatalf("expected 20 assets, got %d", len(assets))
	}
	for _, a := range assets {
		if a.Loaded() {
			t.Errorf("asset %s should start unloaded", a.ID)
		}
	}
}
