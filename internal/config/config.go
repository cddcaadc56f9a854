// Package config provides configuration management for the dashboard application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"marketdash/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Market        MarketConfig       `mapstructure:"market"`
	Refresh       RefreshConfig      `mapstructure:"refresh"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Insight       InsightConfig      `mapstructure:"insight"`
	API           APIConfig          `mapstructure:"api"`
	UI            UIConfig           `mapstructure:"ui"`
	Credentials   Credentials        `mapstructure:"-" json:"-"` // Loaded separately, never serialized
}

// MarketConfig holds market data provider configuration.
type MarketConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Assets   []AssetConfig `mapstructure:"assets"`
}

// AssetConfig identifies one tracked asset.
type AssetConfig struct {
	ID     string `mapstructure:"id"`
	Name   string `mapstructure:"name"`
	Symbol string `mapstructure:"symbol"`
}

// RefreshConfig holds refresh orchestration configuration.
type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	AutoOn   bool          `mapstructure:"auto_on"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	DisplayTTL time.Duration `mapstructure:"display_ttl"`
	Webhook    WebhookConfig `mapstructure:"webhook"`
}

// WebhookConfig holds webhook mirroring configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// InsightConfig holds AI insight configuration.
type InsightConfig struct {
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"` // en, pt-BR
}

// APIConfig holds the HTTP API configuration.
type APIConfig struct {
	Listen string `mapstructure:"listen"`
}

// UIConfig holds display preferences handed to the render layer.
type UIConfig struct {
	Currency string `mapstructure:"currency"` // USD, BRL
}

// Credentials holds API credentials.
type Credentials struct {
	OpenAI OpenAICredentials `mapstructure:"openai"`
}

// OpenAICredentials holds OpenAI API credentials.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/marketdash"
	}
	return filepath.Join(home, ".config", "marketdash")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyDefaults(cfg *Config) {
	if cfg.Market.BaseURL == "" {
		cfg.Market.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.Market.CacheTTL <= 0 {
		cfg.Market.CacheTTL = 30 * time.Second
	}
	if cfg.Market.Timeout <= 0 {
		cfg.Market.Timeout = 10 * time.Second
	}
	if len(cfg.Market.Assets) == 0 {
		cfg.Market.Assets = DefaultAssets()
	}
	if cfg.Refresh.Interval <= 0 {
		cfg.Refresh.Interval = 30 * time.Second
	}
	if cfg.Notifications.DisplayTTL <= 0 {
		cfg.Notifications.DisplayTTL = 8 * time.Second
	}
	if cfg.Insight.Model == "" {
		cfg.Insight.Model = "gpt-4o-mini"
	}
	if cfg.Insight.Language == "" {
		cfg.Insight.Language = string(models.LanguageEnglish)
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = "127.0.0.1:8390"
	}
	if cfg.UI.Currency == "" {
		cfg.UI.Currency = string(models.CurrencyUSD)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("MARKETDASH_BASE_URL"); v != "" {
		cfg.Market.BaseURL = v
	}
	if v := os.Getenv("MARKETDASH_LISTEN"); v != "" {
		cfg.API.Listen = v
	}
	if v := os.Getenv("MARKETDASH_WEBHOOK_URL"); v != "" {
		cfg.Notifications.Webhook.Enabled = true
		cfg.Notifications.Webhook.URL = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.UI.Currency != string(models.CurrencyUSD) && c.UI.Currency != string(models.CurrencyBRL) {
		return fmt.Errorf("invalid currency: %s (must be 'USD' or 'BRL')", c.UI.Currency)
	}
	if c.Insight.Language != string(models.LanguageEnglish) && c.Insight.Language != string(models.LanguagePortuguese) {
		return fmt.Errorf("invalid language: %s (must be 'en' or 'pt-BR')", c.Insight.Language)
	}
	if c.Refresh.Interval < time.Second {
		return fmt.Errorf("refresh interval too small: %s (minimum 1s)", c.Refresh.Interval)
	}
	for i, a := range c.Market.Assets {
		if a.ID == "" {
			return fmt.Errorf("asset %d: id must not be empty", i)
		}
	}
	return nil
}

// TrackedAssets builds the initial asset snapshot from configuration.
// All prices start at the zero sentinel until the first refresh.
func (c *Config) TrackedAssets() []models.Asset {
	assets := make([]models.Asset, 0, len(c.Market.Assets))
	for _, a := range c.Market.Assets {
		assets = append(assets, models.Asset{ID: a.ID, Name: a.Name, Symbol: a.Symbol})
	}
	return assets
}

// DefaultAssets returns the default tracked universe: the top 20 assets by
// market cap, keyed by CoinGecko ID.
func DefaultAssets() []AssetConfig {
	return []AssetConfig{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC"},
		{ID: "ethereum", Name: "Ethereum", Symbol: "ETH"},
		{ID: "binancecoin", Name: "BNB", Symbol: "BNB"},
		{ID: "solana", Name: "Solana", Symbol: "SOL"},
		{ID: "ripple", Name: "XRP", Symbol: "XRP"},
		{ID: "dogecoin", Name: "Dogecoin", Symbol: "DOGE"},
		{ID: "the-open-network", Name: "Toncoin", Symbol: "TON"},
		{ID: "cardano", Name: "Cardano", Symbol: "ADA"},
		{ID: "avalanche-2", Name: "Avalanche", Symbol: "AVAX"},
		{ID: "shiba-inu", Name: "Shiba Inu", Symbol: "SHIB"},
		{ID: "polkadot", Name: "Polkadot", Symbol: "DOT"},
		{ID: "tron", Name: "TRON", Symbol: "TRX"},
		{ID: "chainlink", Name: "Chainlink", Symbol: "LINK"},
		{ID: "bitcoin-cash", Name: "Bitcoin Cash", Symbol: "BCH"},
		{ID: "near", Name: "NEAR Protocol", Symbol: "NEAR"},
		{ID: "matic-network", Name: "Polygon", Symbol: "POL"},
		{ID: "litecoin", Name: "Litecoin", Symbol: "LTC"},
		{ID: "uniswap", Name: "Uniswap", Symbol: "UNI"},
		{ID: "pepe", Name: "Pepe", Symbol: "PEPE"},
		{ID: "fetch-ai", Name: "Artificial Superintelligence", Symbol: "FET"},
	}
}
