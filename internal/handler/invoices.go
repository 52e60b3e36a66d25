package handler

import (
	"encoding/json"
	"net/http"

	"github.com/craftbill/invoice-service/internal/utils"
)

type invoiceRequest struct {
	ClientID  int64   `json:"client_id"`
	JobID     *int64  `json:"job_id,omitempty"`
	Currency  string  `json:"currency"`
	Amount    float64 `json:"amount"`
	IssueDate string  `json:"issue_date"`
	DueDate   string  `json:"due_date"`
}

// CreateInvoice handles invoice creation
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !utils.ValidDate(req.IssueDate) || !utils.ValidDate(req.DueDate) {
		http.Error(w, "issue_date and due_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	invoice, err := h.svc.CreateInvoice(r.Context(), req.ClientID, req.JobID, req.Currency, req.Amount, req.IssueDate, req.DueDate)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, invoice)
}

// ListInvoices handles listing the user's invoices
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.ListInvoices(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}

// GetInvoice handles fetching a single invoice
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}

	invoice, err := h.svc.GetInvoice(r.Context(), invoiceID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

// SendInvoice handles transitioning a draft invoice to sent
func (h *Handler) SendInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}

	invoice, err := h.svc.SendInvoice(r.Context(), invoiceID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

// PayInvoice handles marking an invoice paid
func (h *Handler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}

	invoice, err := h.svc.MarkInvoicePaid(r.Context(), invoiceID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

// WriteOffInvoice handles writing off an invoice
func (h *Handler) WriteOffInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}

	invoice, err := h.svc.WriteOffInvoice(r.Context(), invoiceID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invoice)
}

// DeleteInvoice handles deleting an invoice and its payment schedules
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteInvoice(r.Context(), invoiceID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
