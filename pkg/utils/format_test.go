package utils

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"whole thousands", 50000, "$50,000.00"},
		{"millions", 1234567.89, "$1,234,567.89"},
		{"hundreds", 150.5, "$150.50"},
		{"exactly one", 1, "$1.00"},
		{"sub-dollar gets precision", 0.00001234, "$0.000012"},
		{"shiba territory", 0.000024, "$0.000024"},
		{"zero", 0, "$0.00"},
		{"negative", -45000, "-$45,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatUSD(tt.amount); got != tt.want {
				t.Errorf("FormatUSD(%v) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{2.5, "+2.50%"},
		{-8.13, "-8.13%"},
		{0, "0.00%"},
	}

	for _, tt := range tests {
		if got := FormatPercent(tt.value); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestProperty_GroupThousandsPreservesDigits(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("grouping only inserts commas", prop.ForAll(
		func(n int64) bool {
			s := FormatUSD(float64(n))
			digits := 0
			for _, r := range s {
				switch {
				case r >= '0' && r <= '9':
					digits++
				case r == ',' || r == '.' || r == '$':
				default:
					return false
				}
			}
			// Two fractional digits plus at least one integer digit.
			return digits >= 3
		},
		gen.Int64Range(0, 1_000_000_000),
	))

	properties.TestingRun(t)
}
