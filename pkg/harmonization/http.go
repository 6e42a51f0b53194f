package harmonization

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chi-bristol/icca-curation/pkg/common/logger"
	"github.com/chi-bristol/icca-curation/pkg/resolver"
	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	planner *Planner
}

func NewHTTPHandler(planner *Planner) *HTTPHandler {
	return &HTTPHandler{planner: planner}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/harmonization/plan", h.handlePlan).Methods(http.MethodPost)
	router.HandleFunc("/harmonization/variables", h.handleVariables).Methods(http.MethodGet)
}

func (h *HTTPHandler) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	plan, err := h.planner.Plan(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCatalog), errors.Is(err, resolver.ErrUnknownFactTable):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, resolver.ErrQueryTimeout):
			http.Error(w, err.Error(), http.StatusRequestTimeout)
		default:
			logger.Log.WithError(err).Error("harmonization plan failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(plan)
}

func (h *HTTPHandler) handleVariables(w http.ResponseWriter, r *http.Request) {
	catalog := h.planner.Catalog()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(catalog)
}
