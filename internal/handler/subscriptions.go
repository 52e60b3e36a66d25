package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/craftbill/invoice-service/internal/models"
)

type subscriptionRequest struct {
	Title     string  `json:"title"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Frequency string  `json:"frequency"`
	FirstRun  string  `json:"first_run"` // YYYY-MM-DD
}

// CreateSubscription handles creating a recurring billing plan for a client
func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	firstRun, err := time.Parse("2006-01-02", req.FirstRun)
	if err != nil {
		http.Error(w, "first_run must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	sub, err := h.svc.CreateSubscription(r.Context(), clientID, req.Title, req.Currency, req.Amount, models.Frequency(req.Frequency), firstRun)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sub)
}

// ListSubscriptions handles listing a client's subscriptions
func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	subs, err := h.svc.ListSubscriptions(r.Context(), clientID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, subs)
}

// CancelSubscription handles deactivating a subscription
func (h *Handler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	subscriptionID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid subscription ID", http.StatusBadRequest)
		return
	}

	if err := h.svc.CancelSubscription(r.Context(), subscriptionID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
