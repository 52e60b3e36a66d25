package handler

import (
	"encoding/json"
	"net/http"

	"github.com/craftbill/invoice-service/internal/allocation"
	"github.com/craftbill/invoice-service/internal/service"
	"github.com/gorilla/mux"
)

// AddSchedule handles admitting a new payment installment to an invoice.
// A successful response carries the full updated list plus any rebalancing
// notice for the caller to surface.
func (h *Handler) AddSchedule(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}

	var draft allocation.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.svc.AddPaymentSchedule(r.Context(), invoiceID, draft)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// ListSchedules handles listing an invoice's payment installments
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}

	schedules, err := h.svc.ListPaymentSchedules(r.Context(), invoiceID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, schedules)
}

// EditSchedule handles field-level edits to an unpaid installment
func (h *Handler) EditSchedule(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	scheduleID := mux.Vars(r)["scheduleID"]

	var edit service.ScheduleEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	schedule, err := h.svc.EditPaymentSchedule(r.Context(), invoiceID, scheduleID, edit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, schedule)
}

// PaySchedule handles marking an installment as paid
func (h *Handler) PaySchedule(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	scheduleID := mux.Vars(r)["scheduleID"]

	schedule, err := h.svc.MarkSchedulePaid(r.Context(), invoiceID, scheduleID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, schedule)
}

// DeleteSchedule handles removing an unpaid installment
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	scheduleID := mux.Vars(r)["scheduleID"]

	if err := h.svc.DeletePaymentSchedule(r.Context(), invoiceID, scheduleID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
