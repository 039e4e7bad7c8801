// File path: internal/api/credits_handler.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/repobrief/repobrief/internal/common"
)

var errCreditsPositive = errors.New("metadata.credits must be positive")

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if err := requireField(userID, "user_id"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	balance, err := s.store.Balance(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user_id": userID, "balance": balance})
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if err := requireField(userID, "user_id"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entries, err := s.store.Ledger(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user_id": userID, "entries": entries})
}

// handleCheckoutWebhook credits a user after a completed checkout. Replays of
// an already-seen event id are acknowledged without crediting twice, so the
// payment provider can retry deliveries freely.
func (s *Server) handleCheckoutWebhook(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req checkoutWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	req.Metadata.UserID = strings.TrimSpace(req.Metadata.UserID)
	if err := requireField(req.ID, "id"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Type != "" && req.Type != "checkout.completed" {
		logger.Debug("api: webhook event ignored", "event", req.ID, "type", req.Type)
		writeJSON(w, http.StatusOK, checkoutWebhookResponse{})
		return
	}
	if err := requireField(req.Metadata.UserID, "metadata.user_id"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Metadata.Credits <= 0 {
		writeError(w, http.StatusBadRequest, errCreditsPositive)
		return
	}
	credited, err := s.store.ApplyCheckoutEvent(r.Context(), req.ID, req.Metadata.UserID, req.Metadata.Credits)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if credited {
		logger.Info("api: checkout credited", "event", req.ID, "user", req.Metadata.UserID, "credits", req.Metadata.Credits)
	} else {
		logger.Info("api: checkout replay ignored", "event", req.ID)
	}
	writeJSON(w, http.StatusOK, checkoutWebhookResponse{Credited: credited, Duplicate: !credited})
}
