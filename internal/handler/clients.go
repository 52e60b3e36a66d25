package handler

import (
	"encoding/json"
	"net/http"
)

type clientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CreateClient handles client creation
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "client name is required", http.StatusBadRequest)
		return
	}

	client, err := h.svc.CreateClient(r.Context(), req.Name, req.Email, req.Phone, req.Address)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, client)
}

// ListClients handles listing the user's clients
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.ListClients(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

// GetClient handles fetching a single client
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	client, err := h.svc.GetClient(r.Context(), clientID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// UpdateClient handles client updates
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "client name is required", http.StatusBadRequest)
		return
	}

	client, err := h.svc.UpdateClient(r.Context(), clientID, req.Name, req.Email, req.Phone, req.Address)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// ArchiveClient handles archiving a client
func (h *Handler) ArchiveClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	if err := h.svc.ArchiveClient(r.Context(), clientID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
