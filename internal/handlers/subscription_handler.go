package handlers

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bursa/internal/common"
	"github.com/ternarybob/bursa/internal/interfaces"
	"github.com/ternarybob/bursa/internal/models"
)

// SubscriptionHandler serves the notification subscription write path.
type SubscriptionHandler struct {
	subscriptions interfaces.SubscriptionService
	includeDetail bool
	logger        arbor.ILogger
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptions interfaces.SubscriptionService, includeDetail bool, logger arbor.ILogger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		includeDetail: includeDetail,
		logger:        logger,
	}
}

// SubscribeHandler handles POST /api/notifications/subscribe. A valid
// email is upserted into every targeted subscription set; the response
// reports created or updated per set.
func (h *SubscriptionHandler) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req models.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := h.subscriptions.Subscribe(r.Context(), &req)
	if err != nil {
		if common.IsValidation(err) {
			WriteMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		h.logger.Error().Err(err).Str("email", req.Email).Msg("Subscription failed")
		body := map[string]string{"message": "Failed to process subscription"}
		if h.includeDetail {
			body["error"] = err.Error()
		}
		WriteJSON(w, http.StatusInternalServerError, body)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Subscription processed",
		"results": results,
	})
}
