package encounter

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type HTTPHandler struct {
	cleaner *Cleaner
}

func NewHTTPHandler(cleaner *Cleaner) *HTTPHandler {
	return &HTTPHandler{cleaner: cleaner}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/encounters/clean", h.handleClean).Methods(http.MethodPost)
}

type cleanRequest struct {
	Stays   []Stay `json:"stays"`
	Combine bool   `json:"combine"`
}

type cleanResponse struct {
	Cleaned  []CleanedStay  `json:"cleaned,omitempty"`
	Combined []CombinedStay `json:"combined,omitempty"`
	Summary  Summary        `json:"summary"`
}

func (h *HTTPHandler) handleClean(w http.ResponseWriter, r *http.Request) {
	var req cleanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Stays) == 0 {
		http.Error(w, "stays are required", http.StatusBadRequest)
		return
	}

	cleaned, summary := h.cleaner.Clean(req.Stays)
	resp := cleanResponse{Summary: summary}
	if req.Combine {
		resp.Combined = Combine(cleaned)
		resp.Summary.CombinedStays = len(resp.Combined)
	} else {
		resp.Cleaned = cleaned
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
