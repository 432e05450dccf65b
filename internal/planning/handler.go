package planning

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/clearpath-health/cataract-planner/internal/candidacy"
	"github.com/clearpath-health/cataract-planner/internal/lenses"
	"github.com/clearpath-health/cataract-planner/internal/medication"
	"github.com/clearpath-health/cataract-planner/internal/offering"
	"github.com/clearpath-health/cataract-planner/pkg/logging"
)

// Handler provides the staff planning API for one patient.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new planning HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger.Component("planning")}
}

// Routes returns the planning routes, mounted under a clinic/patient prefix.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetPlan)
	r.Put("/candidacy/{eye}", h.PutCandidacy)
	r.Get("/categories", h.GetCategories)
	r.Get("/packages", h.GetOfferablePackages)
	r.Post("/plan-mode", h.SetPlanMode)
	r.Post("/offered", h.ToggleOffered)
	r.Post("/selection", h.PostSelection)
	r.Get("/lens-matches", h.GetLensMatches)
	r.Put("/lens-order/{eye}", h.PutLensOrder)
	r.Put("/medications", h.PutMedications)
	r.Post("/medications/protocol", h.PostProtocol)
	r.Post("/medications/apply", h.PostApplyOption)
	r.Post("/medications/taper/preset", h.PostTaperPreset)
	r.Post("/medications/taper/week", h.PostTaperWeek)
	r.Get("/audit", h.GetAuditTrail)
	return r
}

func ids(r *http.Request) (clinicID, patientID string) {
	return chi.URLParam(r, "clinicID"), chi.URLParam(r, "patientID")
}

// eyeParam reads the eye from the URL or query. An empty value is fine for
// unified-plan operations; the service rejects it when an eye is required.
func eyeParam(r *http.Request) offering.Eye {
	if eye := chi.URLParam(r, "eye"); eye != "" {
		return offering.Eye(eye)
	}
	return offering.Eye(r.URL.Query().Get("eye"))
}

// GetPlan returns the full patient record.
// GET /clinics/{clinicID}/patients/{patientID}/plan
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	clinicID, patientID := ids(r)
	rec, err := h.service.Plan(r.Context(), clinicID, patientID)
	if err != nil {
		h.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec, h.logger)
}

// PutCandidacy replaces one eye's candidacy flags.
// PUT /clinics/{clinicID}/patients/{patientID}/plan/candidacy/{eye}
func (h *Handler) PutCandidacy(w http.ResponseWriter, r *http.Request) {
	clinicID, patientID := ids(r)
	eye := eyeParam(r)
	if eye != offering.EyeOD && eye != offering.EyeOS {
		http.Error(w, `{"error": "eye must be od or os"}`, http.StatusBadRequest)
		return
	}

	var profile candidacy.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	rec, err := h.service.SetCandidacy(r.Context(), clinicID, patientID, eye, profile)
	if err != nil {
		h.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec, h.logger)
}

// GetCategories returns the resolved eligible categories for an eye.
// GET /clinics/{clinicID}/patients/{patientID}/plan/categories?eye=od
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	clinicID, patientID := ids(r)
	categories, err := h.service.Categories(r.Context(), clinicID, patientID, eyeParam(r))
	if err != nil {
		h.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories}, h.logger)
}

// GetOfferablePackages returns the catalog packages staff may offer.
// GET /clinics/{clinicID}/patients/{patientID}/plan/packages?eye=od
func (h *Handler) GetOfferablePackages(w http.ResponseWriter, r *http.Request) {
	clinicID, patientID := ids(r)
	packages, err := h.service.OfferablePackages(r.Context(), clinicID, patientID, eyeParam(r))
	if err != nil {
		h.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"packages": packages}, h.logger)
}

// PlanModeRequest switches between unified and per-eye planning.
type PlanModeRequest struct {
	SamePlanBothEyes bool `json:"same_plan_both_eyes"`
}

// SetPlanMode switches the plan shape and reconciles both slots.
// POST /clinics/{clinicID}/patients/{patientID}/plan/plan-mode
func (h *Handler) SetPlanMode(w http.ResponseWriter, r *http.Request) {
	clinicID, patientID := ids(r)
	var req PlanModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	rec, err := h.service.SetPlanMode(r.Context(), clinicID, patientID, req.SamePlanBothEyes)
	if err != nil {
		h.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec, h.logger)
}

// OfferedRequest toggles one package in an offered set.
type OfferedRequest struct {
	PackageID string       `json:"package_id"`
	Eye       offering.Eye `json:"eye,omitempty"`
}

// ToggleOffered adds or removes a package from the offered set.
// POST /clinics/{clinicID}/patients/{patientID}/plan/offered
func (h *Handler) ToggleOffered(w http.ResponseWriter, r *http.Request) {
	clinicID, patientID := ids(r)
	var req OfferedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.PackageID == "" {
		http.Error(w, `{"error": "package_id required"}`, http.StatusBadRequest)
		return
	}
	rec, err := h.service.ToggleOffered(r.Context(), clinicID, patientID, req.PackageID, req.Eye)
	if err != nil {
		h.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec, h.logger)
}

// SelectionRequest records a patient's package choice.
type SelectionRequest struct {
	PackageID string                   `json:"package_id"`
	Eye       offering.Eye             `json:"eye,omitempty"`
	Status    offering.SelectionStatus `json:"status,omitempty"`
}

// PostSelection records the patient's choice. A package outside the offered
// set is refused with 409.
// POST /clinics/{clinicID}/patients/{patientID}/plan/selection
func (h *Handler) PostSelection(w http.ResponseWriter, r *http.Request) {
	clinicID, patientID := ids(r)
	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.PackageID == "" {
		http.Error(w, `{"error": "package_id required"}`, http.StatusBadRequest)
		return
	}
	switch req.Status {
	case "", offering.StatusPending, offering.StatusConfirmed, offering.StatusDeclined:
	default:
		http.Error(w, `{"error": "status must be pending, confirmed, or declined"}`, http.StatusBadRequest)
		return
	}

	rec, err := h.service.Select(r.Context(), clinicID, patientID, req.PackageID, req.Eye, req.Status)
	if err != nil {
		h.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec, h.logger)
}

// GetLensMatches returns the orderable models for the selected package.
// GET /clinics/{clinicID}/patients/{patientID}/plan/lens-matches?eye=od
func (h *Handler) GetLensMatches(w http.ResponseWriter, r *http.Request) {
	clinicID, patientID := ids(r)
	matches, err := h.service.LensMatches(r.Context(), clinicID, patientID, eyeParam(r))
	if err != nil {
		h.serveErr(w, r, err)
		return
	}
	if matches == nil {
		matches = []lenses.MatchedModel{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches}, h.logger)
}

// PutLensOrder updates one eye's lens order.
// PUT /clinics/{clinicID}/patients/{patientID}/plan/lens-order/{eye}
func (h *Handler) PutLensOrder(w http.ResponseWriter, r *http.Request) {
	clinicID, patientID := ids(r)
	eye := eyeParam(r)
	if eye != offering.EyeOD && eye != offering.EyeOS {
		http.Error(w, `{"error": "eye must be od or os"}`, http.StatusBadRequest)
		return
	}

	var input LensOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	rec, err := h.service.SetLensOrder(r.Context(), clinicID, patientID, eye, input)
	if err != nil {
		h.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec, h.logger)
}

// PutMedications replaces the medication protocol document.
// PUT /clinics/{clinicID}/patients/{patientID}/plan/medications
func (h *Handler) PutMedications(w http.ResponseWriter, r *http.Request) {
	clinicID, patientID := ids(r)
	var plan medication.Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	rec, err := h.service.PutMedications(r.Context(), clinicID, patientID, plan)
	if err != nil {
		h.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec, h.logger)
}

// ProtocolRequest switches the active protocol.
type ProtocolRequest struct {
	Protocol medication.ProtocolType `json:"protocol"`
}

// PostProtocol switches the active medication protocol.
// POST /clinics/{clinicID}/patients/{patientID}/plan/medications/protocol
func (h *Handler) PostProtocol(w http.ResponseWriter, r *http.Request) {
	clinicID, patientID := ids(r)
	var req ProtocolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	rec, err := h.service.SetProtocol(r.Context(), clinicID, patientID, req.Protocol)
	if err != nil {
		h.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec, h.logger)
}

// ApplyOptionRequest auto-fills one protocol slot from the clinic catalog.
type ApplyOptionRequest struct {
	Slot     OptionSlot `json:"slot"`
	OptionID string     `json:"option_id"`
}

// PostApplyOption applies a catalog medication option to a protocol slot.
// POST /clinics/{clinicID}/patients/{patientID}/plan/medications/apply
func (h *Handler) PostApplyOption(w http.ResponseWriter, r *http.Request) {
	clinicID, patientID := ids(r)
	var req ApplyOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.OptionID == "" {
		http.Error(w, `{"error": "option_id required"}`, http.StatusBadRequest)
		return
	}
	rec, err := h.service.ApplyMedicationOption(r.Context(), clinicID, patientID, req.Slot, req.OptionID)
	if err != nil {
		h.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec, h.logger)
}

// TaperPresetRequest applies a named taper preset.
type TaperPresetRequest struct {
	Name medication.TaperType `json:"name"`
}

// PostTaperPreset overwrites the active taper with a preset.
// POST /clinics/{clinicID}/patients/{patientID}/plan/medications/taper/preset
func (h *Handler) PostTaperPreset(w http.ResponseWriter, r *http.Request) {
	clinicID, patientID := ids(r)
	var req TaperPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	rec, err := h.service.ApplyTaperPreset(r.Context(), clinicID, patientID, req.Name)
	if err != nil {
		h.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec, h.logger)
}

// TaperWeekRequest edits one week of the active taper.
type TaperWeekRequest struct {
	Week  int `json:"week"`
	Value int `json:"value"`
}

// PostTaperWeek sets one week's frequency, marking the taper custom.
// POST /clinics/{clinicID}/patients/{patientID}/plan/medications/taper/week
func (h *Handler) PostTaperWeek(w http.ResponseWriter, r *http.Request) {
	clinicID, patientID := ids(r)
	var req TaperWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	rec, err := h.service.SetTaperWeek(r.Context(), clinicID, patientID, req.Week, req.Value)
	if err != nil {
		h.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec, h.logger)
}

// GetAuditTrail returns the plan-change history, newest first.
// GET /clinics/{clinicID}/patients/{patientID}/plan/audit?limit=50
func (h *Handler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	clinicID, patientID := ids(r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.service.AuditTrail(r.Context(), clinicID, patientID, limit)
	if err != nil {
		h.serveErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events}, h.logger)
}

// serveErr maps domain sentinels to status codes. Invariant violations and
// frozen plans are 409s; malformed requests are 400s.
func (h *Handler) serveErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, offering.ErrNotOffered):
		http.Error(w, `{"error": "package is not in the offered set"}`, http.StatusConflict)
	case errors.Is(err, ErrPlanFrozen):
		http.Error(w, `{"error": "plan is frozen after surgery"}`, http.StatusConflict)
	case errors.Is(err, offering.ErrUnknownEye):
		http.Error(w, `{"error": "eye must be od or os"}`, http.StatusBadRequest)
	case errors.Is(err, offering.ErrUnknownPackage):
		http.Error(w, `{"error": "package not in catalog"}`, http.StatusNotFound)
	case errors.Is(err, ErrNoSelection):
		http.Error(w, `{"error": "no package selected for eye"}`, http.StatusBadRequest)
	case errors.Is(err, ErrNoTaper):
		http.Error(w, `{"error": "active protocol has no taper"}`, http.StatusBadRequest)
	case errors.Is(err, medication.ErrUnknownPreset):
		http.Error(w, `{"error": "unknown taper preset"}`, http.StatusBadRequest)
	case errors.Is(err, medication.ErrUnknownProtocol):
		http.Error(w, `{"error": "unknown protocol type"}`, http.StatusBadRequest)
	case errors.Is(err, lenses.ErrModelNotAllowed):
		http.Error(w, `{"error": "lens model not allowed by selected package"}`, http.StatusBadRequest)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, `{"error": "invalid request"}`, http.StatusBadRequest)
	default:
		h.logger.Error("planning request failed", "path", r.URL.Path, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *logging.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
