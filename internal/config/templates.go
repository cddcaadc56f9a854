package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# MarketDash Configuration

[market]
# Market data provider base URL (CoinGecko-compatible)
base_url = "https://api.coingecko.com/api/v3"
# How long a fetched snapshot stays fresh
cache_ttl = "30s"
# Per-request timeout
timeout = "10s"

# Tracked assets. Leave empty to use the built-in top-20 universe.
# [[market.assets]]
# id = "bitcoin"
# name = "Bitcoin"
# symbol = "BTC"

[refresh]
# Interval between automatic refreshes
interval = "30s"
# Start with auto-refresh enabled
auto_on = false

[notifications]
# How long a notification stays visible before auto-dismissal
display_ttl = "8s"

[notifications.webhook]
enabled = false
url = ""

[insight]
# Chat completion model for market summaries
model = "gpt-4o-mini"
# Summary language: "en" or "pt-BR"
language = "en"

[api]
# HTTP API listen address for the dashboard frontend
listen = "127.0.0.1:8390"

[ui]
# Display currency: "USD" or "BRL"
currency = "USD"
`

const credentialsTemplate = `# MarketDash Credentials
# Keep this file private (chmod 600).

[openai]
api_key = ""
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}
	return nil
}
