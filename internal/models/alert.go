package models

import "time"

// AlertCondition is the direction a price alert watches.
type AlertCondition string

const (
	// ConditionAbove triggers when the price reaches or exceeds the target.
	ConditionAbove AlertCondition = "above"
	// ConditionBelow triggers when the price reaches or falls below the target.
	ConditionBelow AlertCondition = "below"
)

// PriceAlert represents a one-shot price alert on a tracked asset.
// Condition and TargetPrice are immutable after creation; the alert is
// removed exactly once, either by explicit cancellation or by firing.
type PriceAlert struct {
	ID          int64          `json:"id"`
	AssetID     string         `json:"asset_id"`
	AssetName   string         `json:"asset_name"`
	TargetPrice float64        `json:"target_price"`
	Condition   AlertCondition `json:"condition"`
	CreatedAt   time.Time      `json:"created_at"`
}

// FiredAlert pairs a triggered alert with the asset price observed at
// evaluation time.
type FiredAlert struct {
	Alert PriceAlert `json:"alert"`
	Price float64    `json:"price"`
}
