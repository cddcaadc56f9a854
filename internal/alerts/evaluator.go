package alerts

import (
	"github.com/rs/zerolog"

	"marketdash/internal/logging"
	"marketdash/internal/models"
)

// Evaluator compares the latest asset snapshot against the stored alerts
// and retires every alert that fires.
type Evaluator struct {
	store  *Store
	logger zerolog.Logger
}

// NewEvaluator creates an evaluator over the given store.
func NewEvaluator(store *Store, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		store:  store,
		logger: logger.With().Str("component", "alerts").Logger(),
	}
}

// Evaluate checks every stored alert against the latest assets, in creation
// order. Alerts whose asset is absent from the snapshot are skipped and
// kept. Fired alerts are removed in the same pass, so no alert can fire
// twice. The returned slice preserves creation order.
func (e *Evaluator) Evaluate(latest []models.Asset) []models.FiredAlert {
	byID := make(map[string]models.Asset, len(latest))
	for _, a := range latest {
		byID[a.ID] = a
	}

	fired := e.store.sweep(func(alert models.PriceAlert) (float64, bool) {
		asset, ok := byID[alert.AssetID]
		if !ok {
			return 0, false
		}
		return asset.CurrentPrice, isTriggered(alert, asset.CurrentPrice)
	})

	for _, f := range fired {
		logging.LogAlert(e.logger, f.Alert.ID, f.Alert.AssetID, string(f.Alert.Condition), f.Alert.TargetPrice, f.Price)
	}
	return fired
}

// isTriggered checks the firing rule. Both comparisons are inclusive: a
// price exactly equal to the target fires immediately.
func isTriggered(alert models.PriceAlert, price float64) bool {
	switch alert.Condition {
	case models.ConditionAbove:
		return price >= alert.TargetPrice
	case models.ConditionBelow:
		return price <= alert.TargetPrice
	default:
		return false
	}
}
