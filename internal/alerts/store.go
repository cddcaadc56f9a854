// Package alerts holds user-defined price alerts and evaluates them against
// fresh market snapshots.
package alerts

import (
	"sync"
	"time"

	"marketdash/internal/models"
)

// Store holds price alerts in creation order. IDs are assigned from a
// monotonically increasing counter, so ID order equals creation order.
// Duplicate alerts on the same asset and price are permitted.
type Store struct {
	mu     sync.Mutex
	nextID int64
	alerts []models.PriceAlert
}

// NewStore creates an empty alert store.
func NewStore() *Store {
	return &Store{nextID: 1}
}

// Add creates an alert on the given asset. The condition is derived once,
// at creation time: a target above the asset's current price watches for a
// rise, anything else watches for a fall. Condition and target are
// immutable afterwards.
func (s *Store) Add(asset models.Asset, targetPrice float64) models.PriceAlert {
	condition := models.ConditionBelow
	if targetPrice > asset.CurrentPrice {
		condition = models.ConditionAbove
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	alert := models.PriceAlert{
		ID:          s.nextID,
		AssetID:     asset.ID,
		AssetName:   asset.Name,
		TargetPrice: targetPrice,
		Condition:   condition,
		CreatedAt:   time.Now(),
	}
	s.nextID++
	s.alerts = append(s.alerts, alert)
	return alert
}

// Remove deletes an alert by ID. Removing an unknown ID is a no-op.
func (s *Store) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.alerts {
		if a.ID == id {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			return
		}
	}
}

// List returns all alerts in creation order.
func (s *Store) List() []models.PriceAlert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.PriceAlert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Len returns the number of stored alerts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

// sweep runs fn over every alert in creation order and removes those it
// reports as fired, all under one lock. Either every fired alert of the
// pass is removed or none: no partially applied pass is observable.
func (s *Store) sweep(fn func(models.PriceAlert) (float64, bool)) []models.FiredAlert {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fired []models.FiredAlert
	kept := s.alerts[:0]
	for _, alert := range s.alerts {
		price, ok := fn(alert)
		if ok {
			fired = append(fired, models.FiredAlert{Alert: alert, Price: price})
		} else {
			kept = append(kept, alert)
		}
	}
	s.alerts = kept
	return fired
}
