package resolver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chi-bristol/icca-curation/pkg/common/logger"
	"github.com/chi-bristol/icca-curation/pkg/common/models"
	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/attributes/resolve", h.handleResolve).Methods(http.MethodPost)
	router.HandleFunc("/facttables", h.handleFactTables).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req models.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Resolve(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoInterventions), errors.Is(err, ErrUnknownFactTable):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrQueryTimeout):
			http.Error(w, err.Error(), http.StatusRequestTimeout)
		default:
			logger.Log.WithError(err).Error("attribute resolution failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *HTTPHandler) handleFactTables(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"fact_tables": FactTables()})
}
