package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearpath-health/cataract-planner/pkg/logging"
)

// Handler provides HTTP endpoints for catalog management.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a new catalog HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger.Component("catalog")}
}

// Routes returns the catalog routes, mounted under a clinic prefix.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetCatalog)
	r.Put("/", h.UpdateCatalog)
	return r
}

// GetCatalog returns the catalog for a clinic.
// GET /clinics/{clinicID}/catalog
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	clinicID := chi.URLParam(r, "clinicID")
	if clinicID == "" {
		http.Error(w, `{"error": "clinic_id required"}`, http.StatusBadRequest)
		return
	}

	cat, err := h.store.Get(r.Context(), clinicID)
	if err != nil {
		h.logger.Error("failed to get catalog", "clinic_id", clinicID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cat); err != nil {
		h.logger.Error("failed to encode catalog", "clinic_id", clinicID, "error", err)
	}
}

// UpdateCatalog replaces the catalog for a clinic.
// PUT /clinics/{clinicID}/catalog
func (h *Handler) UpdateCatalog(w http.ResponseWriter, r *http.Request) {
	clinicID := chi.URLParam(r, "clinicID")
	if clinicID == "" {
		http.Error(w, `{"error": "clinic_id required"}`, http.StatusBadRequest)
		return
	}

	var cat Catalog
	if err := json.NewDecoder(r.Body).Decode(&cat); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	cat.ClinicID = clinicID

	if err := h.store.Set(r.Context(), &cat); err != nil {
		h.logger.Error("failed to save catalog", "clinic_id", clinicID, "error", err)
		http.Error(w, `{"error": "failed to save catalog"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("catalog updated", "clinic_id", clinicID, "packages", len(cat.Packages))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(&cat); err != nil {
		h.logger.Error("failed to encode catalog", "clinic_id", clinicID, "error", err)
	}
}
