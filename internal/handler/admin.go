package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// AdminListUsers handles listing all registered users
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// AdminDeleteSchedule handles the out-of-band removal of a payment
// installment, including paid ones.
func (h *Handler) AdminDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	scheduleID := mux.Vars(r)["scheduleID"]

	if err := h.svc.AdminDeletePaymentSchedule(invoiceID, scheduleID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
