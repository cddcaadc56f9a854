package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "marketdash/internal/errors"
	"marketdash/internal/logging"
	"marketdash/internal/models"
)

type statusResponse struct {
	State       string `json:"state"`
	Error       string `json:"error,omitempty"`
	AutoRefresh bool   `json:"auto_refresh"`
	Currency    string `json:"currency"`
	Language    string `json:"language"`
}

func (s *Server) currentStatus() statusResponse {
	state, lastErr := s.sess.Status()
	return statusResponse{
		State:       string(state),
		Error:       lastErr,
		AutoRefresh: s.sess.AutoRefresh(),
		Currency:    string(s.sess.Currency()),
		Language:    string(s.sess.Language()),
	}
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"assets": s.sess.Assets()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentStatus())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	// A failed refresh is still a 200: the error lands in the status body
	// and prior data stays visible, mirroring the error-banner contract.
	if err := s.sess.Refresh(r.Context()); err != nil {
		reqLogger := logging.FromContext(r.Context())
		reqLogger.Warn().Err(err).Msg("Requested refresh failed")
	}
	writeJSON(w, http.StatusOK, s.currentStatus())
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": s.sess.Alerts()})
}

type createAlertRequest struct {
	AssetID     string  `json:"asset_id"`
	TargetPrice float64 `json:"target_price"`
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	alert, err := s.sess.CreateAlert(req.AssetID, req.TargetPrice)
	if err != nil {
		status := http.StatusBadRequest
		if apperrors.Is(err, apperrors.ErrUnknownAsset) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, alert)
}

func (s *Server) handleRemoveAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	s.sess.RemoveAlert(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": s.sess.Notifications()})
}

func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	// Dismissal is idempotent: an expired or already-dismissed id is fine.
	s.sess.DismissNotification(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	summary := s.sess.GenerateInsight(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

type settingsRequest struct {
	AutoRefresh *bool   `json:"auto_refresh,omitempty"`
	Currency    *string `json:"currency,omitempty"`
	Language    *string `json:"language,omitempty"`
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AutoRefresh != nil {
		s.sess.SetAutoRefresh(*req.AutoRefresh)
	}
	if req.Currency != nil {
		c := models.Currency(*req.Currency)
		if c != models.CurrencyUSD && c != models.CurrencyBRL {
			writeError(w, http.StatusBadRequest, "invalid currency")
			return
		}
		s.sess.SetCurrency(c)
	}
	if req.Language != nil {
		l := models.Language(*req.Language)
		if l != models.LanguageEnglish && l != models.LanguagePortuguese {
			writeError(w, http.StatusBadRequest, "invalid language")
			return
		}
		s.sess.SetLanguage(l)
	}

	writeJSON(w, http.StatusOK, s.currentStatus())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
