// Package session owns the dashboard state: the tracked asset snapshot, the
// alert store, the notification center, and the refresh cycle that ties
// them together.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"marketdash/internal/alerts"
	"marketdash/internal/config"
	apperrors "marketdash/internal/errors"
	"marketdash/internal/insight"
	"marketdash/internal/logging"
	"marketdash/internal/market"
	"marketdash/internal/models"
	"marketdash/internal/notify"
	"marketdash/pkg/utils"
)

// State is the visible lifecycle state of the session.
type State string

const (
	// StateIdle means the session is constructed but not yet started.
	StateIdle State = "idle"
	// StateLoading means the initial load is in progress.
	StateLoading State = "loading"
	// StateReady means at least one refresh has succeeded.
	StateReady State = "ready"
	// StateError means the most recent refresh failed; prior data stays visible.
	StateError State = "error"
)

// Summarizer produces a market summary; failures resolve to displayable text.
type Summarizer interface {
	MarketSummary(ctx context.Context, assets []models.Asset, language models.Language) string
}

// Session is the explicitly owned application state. Construct one per
// process (or per test); there are no package-level singletons.
type Session struct {
	cfg       *config.Config
	logger    zerolog.Logger
	fetcher   market.Fetcher
	store     *alerts.Store
	evaluator *alerts.Evaluator
	center    *notify.Center
	insight   Summarizer

	mu       sync.Mutex
	assets   []models.Asset
	state    State
	lastErr  string
	currency models.Currency
	language models.Language

	// Overlapping refresh triggers (timer vs. user) are dropped while one
	// cycle is in flight.
	inFlight atomic.Bool

	timerMu  sync.Mutex
	stopAuto chan struct{}
}

// New creates a session over the given collaborators. The asset snapshot is
// seeded from configuration with zero-price sentinels.
func New(cfg *config.Config, fetcher market.Fetcher, summarizer Summarizer, logger zerolog.Logger) *Session {
	store := alerts.NewStore()
	center := notify.NewCenter(cfg.Notifications.DisplayTTL, logger)
	if cfg.Notifications.Webhook.Enabled {
		center.AddChannel(notify.NewWebhookChannel(cfg.Notifications.Webhook))
	}

	return &Session{
		cfg:       cfg,
		logger:    logger.With().Str("component", "session").Logger(),
		fetcher:   fetcher,
		store:     store,
		evaluator: alerts.NewEvaluator(store, logger),
		center:    center,
		insight:   summarizer,
		assets:    cfg.TrackedAssets(),
		state:     StateIdle,
		currency:  models.Currency(cfg.UI.Currency),
		language:  models.Language(cfg.Insight.Language),
	}
}

// NewDefault wires a session with the real gateway and OpenAI-backed insight.
func NewDefault(cfg *config.Config, logger zerolog.Logger) *Session {
	gateway := market.NewGateway(market.GatewayConfig{
		BaseURL:  cfg.Market.BaseURL,
		CacheTTL: cfg.Market.CacheTTL,
		Timeout:  cfg.Market.Timeout,
	}, logger)

	var llm insight.LLMClient
	if cfg.Credentials.OpenAI.APIKey != "" {
		llm = insight.NewOpenAIClient(cfg.Credentials.OpenAI.APIKey, cfg.Insight.Model)
	}
	summarizer := insight.NewClient(llm, logger)

	return New(cfg, gateway, summarizer, logger)
}

// Start performs the initial load and, when configured, enables auto-refresh.
func (s *Session) Start(ctx context.Context) error {
	err := s.Refresh(ctx)
	if s.cfg.Refresh.AutoOn {
		s.SetAutoRefresh(true)
	}
	return err
}

// Refresh runs one refresh cycle: fetch, merge, evaluate alerts, notify.
// A trigger arriving while a cycle is in flight is dropped. Only the
// initial load (snapshot still all-zero-price) shows the loading state;
// background refreshes run silently.
func (s *Session) Refresh(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Debug().Msg("Refresh already in flight, trigger dropped")
		return nil
	}
	defer s.inFlight.Store(false)

	s.mu.Lock()
	initial := true
	for _, a := range s.assets {
		if a.Loaded() {
			initial = false
			break
		}
	}
	if initial {
		s.state = StateLoading
	}
	ids := make([]string, len(s.assets))
	for i, a := range s.assets {
		ids[i] = a.ID
	}
	s.mu.Unlock()

	data, err := s.fetcher.Fetch(ctx, ids)
	if err != nil {
		s.mu.Lock()
		s.state = StateError
		s.lastErr = err.Error()
		s.mu.Unlock()
		logging.LogRefresh(s.logger, 0, 0, initial, err)
		return err
	}

	// Merge: assets absent from the response keep their previous values.
	s.mu.Lock()
	updated := 0
	for i := range s.assets {
		d, ok := data[s.assets[i].ID]
		if !ok {
			continue
		}
		s.assets[i].CurrentPrice = d.Price
		s.assets[i].Change1h = d.Change1h
		s.assets[i].Change24h = d.Change24h
		updated++
	}
	merged := make([]models.Asset, len(s.assets))
	copy(merged, s.assets)
	s.state = StateReady
	s.lastErr = ""
	s.mu.Unlock()

	fired := s.evaluator.Evaluate(merged)
	for _, f := range fired {
		s.center.Post(alertMessage(f), models.SeverityAlert)
	}

	logging.LogRefresh(s.logger, updated, len(fired), initial, nil)
	return nil
}

func alertMessage(f models.FiredAlert) string {
	verb := "crossed above"
	if f.Alert.Condition == models.ConditionBelow {
		verb = "dropped below"
	}
	return fmt.Sprintf("Price Alert! %s %s %s", f.Alert.AssetName, verb, utils.FormatUSD(f.Alert.TargetPrice))
}

// SetAutoRefresh arms or disarms the refresh timer. There is a single named
// timer for this concern: enabling twice is a no-op, and disabling fully
// cancels the timer before any later enable arms a new one. An in-flight
// refresh is never cancelled.
func (s *Session) SetAutoRefresh(enabled bool) {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if enabled {
		if s.stopAuto != nil {
			return
		}
		stop := make(chan struct{})
		s.stopAuto = stop
		go s.autoLoop(stop)
		s.logger.Info().Dur("interval", s.cfg.Refresh.Interval).Msg("Auto-refresh enabled")
		return
	}

	if s.stopAuto != nil {
		close(s.stopAuto)
		s.stopAuto = nil
		s.logger.Info().Msg("Auto-refresh disabled")
	}
}

// AutoRefresh reports whether the refresh timer is armed.
func (s *Session) AutoRefresh() bool {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	return s.stopAuto != nil
}

func (s *Session) autoLoop(stop chan struct{}) {
	ticker := time.NewTicker(s.cfg.Refresh.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := s.Refresh(context.Background()); err != nil {
				s.logger.Warn().Err(err).Msg("Scheduled refresh failed")
			}
		}
	}
}

// Assets returns a copy of the current asset snapshot, in tracked order.
func (s *Session) Assets() []models.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Asset, len(s.assets))
	copy(out, s.assets)
	return out
}

// Status returns the current state and, when in the error state, the
// human-readable failure message.
func (s *Session) Status() (State, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.lastErr
}

// CreateAlert registers a price alert on a tracked asset. The condition is
// derived from the asset's price at creation time. Returns ErrUnknownAsset
// for assets outside the tracked universe.
func (s *Session) CreateAlert(assetID string, targetPrice float64) (models.PriceAlert, error) {
	if targetPrice <= 0 {
		return models.PriceAlert{}, fmt.Errorf("target price must be positive, got %v", targetPrice)
	}

	s.mu.Lock()
	var asset models.Asset
	found := false
	for _, a := range s.assets {
		if a.ID == assetID {
			asset = a
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return models.PriceAlert{}, apperrors.Wrapf(apperrors.ErrUnknownAsset, "asset %q", assetID)
	}

	alert := s.store.Add(asset, targetPrice)
	alertLogger := logging.WithAsset(s.logger, assetID)
	alertLogger.Info().
		Int64("alert_id", alert.ID).
		Str("condition", string(alert.Condition)).
		Float64("target", targetPrice).
		Msg("Alert created")
	s.center.Post(fmt.Sprintf("Alert set for %s: %s", asset.Name, utils.FormatUSD(targetPrice)), models.SeverityInfo)
	return alert, nil
}

// RemoveAlert cancels an alert. Unknown IDs are ignored.
func (s *Session) RemoveAlert(id int64) {
	s.store.Remove(id)
}

// Alerts returns all pending alerts in creation order.
func (s *Session) Alerts() []models.PriceAlert {
	return s.store.List()
}

// Notifications returns visible notifications, oldest first.
func (s *Session) Notifications() []models.Notification {
	return s.center.List()
}

// DismissNotification removes a notification; dismissal is idempotent.
func (s *Session) DismissNotification(id int64) {
	s.center.Dismiss(id)
}

// GenerateInsight produces a market summary for the current snapshot in the
// session's language. It always returns displayable text.
func (s *Session) GenerateInsight(ctx context.Context) string {
	s.mu.Lock()
	lang := s.language
	s.mu.Unlock()
	return s.insight.MarketSummary(ctx, s.Assets(), lang)
}

// SetCurrency records the display currency preference.
func (s *Session) SetCurrency(c models.Currency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currency = c
}

// Currency returns the display currency preference.
func (s *Session) Currency() models.Currency {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currency
}

// SetLanguage records the display language preference.
func (s *Session) SetLanguage(l models.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = l
}

// Language returns the display language preference.
func (s *Session) Language() models.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// Close disarms the refresh timer and all notification expiry timers. Any
// in-flight refresh runs to completion.
func (s *Session) Close() {
	s.SetAutoRefresh(false)
	s.center.Close()
}
