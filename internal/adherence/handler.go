package adherence

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearpath-health/cataract-planner/pkg/logging"
)

// Handler provides the patient-facing tracker endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new tracker HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger.Component("tracker")}
}

// Routes returns the tracker routes, mounted under a clinic/patient prefix.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetTracker)
	r.Post("/toggle", h.ToggleItem)
	r.Post("/complete-today", h.CompleteToday)
	return r
}

// GetTracker returns the tracker view for a patient.
// GET /clinics/{clinicID}/patients/{patientID}/tracker
func (h *Handler) GetTracker(w http.ResponseWriter, r *http.Request) {
	clinicID := chi.URLParam(r, "clinicID")
	patientID := chi.URLParam(r, "patientID")

	view, err := h.service.View(r.Context(), clinicID, patientID)
	if err != nil {
		h.logger.Error("failed to load tracker", "clinic_id", clinicID, "patient_id", patientID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, view, h.logger)
}

// ToggleRequest is the body for a single item toggle.
type ToggleRequest struct {
	Date   string `json:"date"`
	ItemID string `json:"item_id"`
}

// ToggleItem flips one checklist item.
// POST /clinics/{clinicID}/patients/{patientID}/tracker/toggle
func (h *Handler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	clinicID := chi.URLParam(r, "clinicID")
	patientID := chi.URLParam(r, "patientID")

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.Date == "" || req.ItemID == "" {
		http.Error(w, `{"error": "date and item_id required"}`, http.StatusBadRequest)
		return
	}

	result, err := h.service.Toggle(r.Context(), clinicID, patientID, req.Date, req.ItemID)
	if err != nil {
		h.logger.Error("toggle failed", "clinic_id", clinicID, "patient_id", patientID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	status := http.StatusOK
	if result.Locked {
		// A locked day is an advisory rejection, not a server error.
		status = http.StatusConflict
	}
	writeJSON(w, status, result, h.logger)
}

// CompleteToday checks off every remaining item for today.
// POST /clinics/{clinicID}/patients/{patientID}/tracker/complete-today
func (h *Handler) CompleteToday(w http.ResponseWriter, r *http.Request) {
	clinicID := chi.URLParam(r, "clinicID")
	patientID := chi.URLParam(r, "patientID")

	result, err := h.service.CompleteToday(r.Context(), clinicID, patientID)
	if err != nil {
		h.logger.Error("complete-today failed", "clinic_id", clinicID, "patient_id", patientID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	status := http.StatusOK
	if result.Locked {
		status = http.StatusConflict
	}
	writeJSON(w, status, result, h.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *logging.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
