// Package models defines the core data types shared across the application.
package models

import "time"

// Asset represents a tracked tradable instrument.
// A CurrentPrice of 0 is the "not yet loaded" sentinel: the asset exists in
// the tracked universe but no successful fetch has populated it yet.
type Asset struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	CurrentPrice float64 `json:"current_price"`
	Change1h     float64 `json:"change_1h"`
	Change24h    float64 `json:"change_24h"`
}

// Loaded reports whether the asset has received at least one price update.
func (a Asset) Loaded() bool {
	return a.CurrentPrice != 0
}

// MarketData holds the per-asset fields returned by the market data provider.
type MarketData struct {
	Price     float64 `json:"price"`
	Change1h  float64 `json:"change_1h"`
	Change24h float64 `json:"change_24h"`
}

// Severity classifies a user-visible notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityAlert   Severity = "alert"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)

// Notification is a user-visible message with a bounded lifetime.
type Notification struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// Currency is the display currency preference. The core never formats
// amounts itself; the preference is carried for the render layer.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyBRL Currency = "BRL"
)

// Language is the display language preference.
type Language string

const (
	LanguageEnglish    Language = "en"
	LanguagePortuguese Language = "pt-BR"
)
