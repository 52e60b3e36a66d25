package handler

import (
	"encoding/json"
	"net/http"
)

type contractRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type signRequest struct {
	SignedBy string `json:"signed_by"`
}

// CreateContract handles contract creation under a client
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	var req contractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "contract title is required", http.StatusBadRequest)
		return
	}

	contract, err := h.svc.CreateContract(r.Context(), clientID, req.Title, req.Body)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, contract)
}

// ListContracts handles listing a client's contracts
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	contracts, err := h.svc.ListContracts(r.Context(), clientID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contracts)
}

// SendContract handles transitioning a draft contract to sent
func (h *Handler) SendContract(w http.ResponseWriter, r *http.Request) {
	contractID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid contract ID", http.StatusBadRequest)
		return
	}

	contract, err := h.svc.SendContract(r.Context(), contractID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contract)
}

// SignContract handles recording a signature on a sent contract
func (h *Handler) SignContract(w http.ResponseWriter, r *http.Request) {
	contractID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid contract ID", http.StatusBadRequest)
		return
	}

	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	contract, err := h.svc.SignContract(r.Context(), contractID, req.SignedBy)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contract)
}
