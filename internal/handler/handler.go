package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/craftbill/invoice-service/internal/allocation"
	"github.com/craftbill/invoice-service/internal/repository"
	"github.com/craftbill/invoice-service/internal/service"
	"github.com/gorilla/mux"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError maps service errors onto HTTP status codes. Validation
// failures carry user-facing messages and are returned verbatim; anything
// unclassified is an infrastructure failure and reported as such.
func respondError(w http.ResponseWriter, err error) {
	var verr *allocation.ValidationError
	var rerr *service.RequestError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, verr)
	case errors.As(err, &rerr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, allocation.ErrPaidImmutable):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
