package handler

import (
	"encoding/json"
	"net/http"
)

type jobRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Rate        float64 `json:"rate"`
	RateType    string  `json:"rate_type"`
}

// CreateJob handles job creation under a client
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "job title is required", http.StatusBadRequest)
		return
	}
	if req.RateType != "hourly" && req.RateType != "fixed" {
		http.Error(w, "rate_type must be hourly or fixed", http.StatusBadRequest)
		return
	}

	job, err := h.svc.CreateJob(r.Context(), clientID, req.Title, req.Description, req.RateType, req.Rate)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, job)
}

// ListJobs handles listing a client's jobs
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	jobs, err := h.svc.ListJobs(r.Context(), clientID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, jobs)
}

// CompleteJob handles marking a job as completed
func (h *Handler) CompleteJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}

	if err := h.svc.CompleteJob(r.Context(), jobID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
