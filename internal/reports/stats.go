// Package reports aggregates planning activity for the staff dashboard.
// Everything here reads from the plan_audit_events trail; the live patient
// records in redis are never scanned.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clearpath-health/cataract-planner/pkg/logging"
)

// Stats represents per-clinic planning metrics.
type Stats struct {
	ClinicID           string `json:"clinic_id"`
	CandidacyUpdates   int64  `json:"candidacy_updates"`
	PackagesOffered    int64  `json:"packages_offered"`
	SelectionsRecorded int64  `json:"selections_recorded"`
	SelectionsRejected int64  `json:"selections_rejected"`
	LensOrderUpdates   int64  `json:"lens_order_updates"`
	MedicationChanges  int64  `json:"medication_changes"`
	PeriodStart        string `json:"period_start"`
	PeriodEnd          string `json:"period_end"`
}

// statsDB defines the database interface needed by StatsRepository.
type statsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StatsRepository queries planning metrics from the audit trail.
type StatsRepository struct {
	db statsDB
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	if pool == nil {
		panic("reports: pgx pool required for stats")
	}
	return &StatsRepository{db: pool}
}

// NewStatsRepositoryWithDB allows injecting a mock database for testing.
func NewStatsRepositoryWithDB(db statsDB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetStats retrieves aggregated planning metrics for a clinic. Optional
// start/end times filter the period; nil means all-time.
func (r *StatsRepository) GetStats(ctx context.Context, clinicID string, start, end *time.Time) (*Stats, error) {
	stats := &Stats{ClinicID: clinicID}

	var timeFilter string
	args := []any{clinicID}
	if start != nil && end != nil {
		timeFilter = " AND created_at >= $3 AND created_at < $4"
		stats.PeriodStart = start.Format(time.RFC3339)
		stats.PeriodEnd = end.Format(time.RFC3339)
	} else {
		stats.PeriodStart = "all-time"
		stats.PeriodEnd = "now"
	}

	counts := []struct {
		eventType string
		dest      *int64
	}{
		{"plan.candidacy_updated", &stats.CandidacyUpdates},
		{"plan.package_offered", &stats.PackagesOffered},
		{"plan.package_selected", &stats.SelectionsRecorded},
		{"plan.selection_rejected", &stats.SelectionsRejected},
		{"plan.lens_order_updated", &stats.LensOrderUpdates},
		{"plan.medications_updated", &stats.MedicationChanges},
	}
	query := `SELECT COUNT(*) FROM plan_audit_events WHERE clinic_id = $1 AND event_type = $2` + timeFilter
	for _, c := range counts {
		rowArgs := append(append([]any(nil), args...), c.eventType)
		if start != nil && end != nil {
			rowArgs = append(rowArgs, *start, *end)
		}
		if err := r.db.QueryRow(ctx, query, rowArgs...).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("reports: count %s: %w", c.eventType, err)
		}
	}

	return stats, nil
}

// StatsHandler provides HTTP endpoints for clinic planning statistics.
type StatsHandler struct {
	repo    *StatsRepository
	summary *SummaryRepository
	logger  *logging.Logger
}

// NewStatsHandler creates a new reports HTTP handler. The summary repo may
// be nil when no relational database is configured.
func NewStatsHandler(repo *StatsRepository, summary *SummaryRepository, logger *logging.Logger) *StatsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsHandler{repo: repo, summary: summary, logger: logger.Component("reports")}
}

// Routes returns the report routes, mounted under a clinic prefix.
func (h *StatsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/stats", h.GetStats)
	r.Get("/summary", h.GetSummary)
	return r
}

// GetStats returns aggregated planning metrics for a clinic.
// GET /clinics/{clinicID}/reports/stats
// Query params:
//   - start: RFC3339 timestamp for period start (optional)
//   - end: RFC3339 timestamp for period end (optional)
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	clinicID := chi.URLParam(r, "clinicID")
	if clinicID == "" {
		http.Error(w, `{"error": "clinic_id required"}`, http.StatusBadRequest)
		return
	}

	var start, end *time.Time
	if s := r.URL.Query().Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			http.Error(w, `{"error": "invalid start time, use RFC3339 format"}`, http.StatusBadRequest)
			return
		}
		start = &t
	}
	if e := r.URL.Query().Get("end"); e != "" {
		t, err := time.Parse(time.RFC3339, e)
		if err != nil {
			http.Error(w, `{"error": "invalid end time, use RFC3339 format"}`, http.StatusBadRequest)
			return
		}
		end = &t
	}
	if (start == nil) != (end == nil) {
		http.Error(w, `{"error": "both start and end must be provided, or neither"}`, http.StatusBadRequest)
		return
	}

	stats, err := h.repo.GetStats(r.Context(), clinicID, start, end)
	if err != nil {
		h.logger.Error("failed to get clinic stats", "clinic_id", clinicID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		h.logger.Error("failed to encode clinic stats", "clinic_id", clinicID, "error", err)
	}
}

// GetSummary returns the lightweight activity summary for a clinic.
// GET /clinics/{clinicID}/reports/summary
func (h *StatsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	clinicID := chi.URLParam(r, "clinicID")
	if clinicID == "" {
		http.Error(w, `{"error": "clinic_id required"}`, http.StatusBadRequest)
		return
	}
	if h.summary == nil {
		http.Error(w, `{"error": "summary reporting not configured"}`, http.StatusNotImplemented)
		return
	}

	summary, err := h.summary.GetSummary(r.Context(), clinicID)
	if err != nil {
		h.logger.Error("failed to get clinic summary", "clinic_id", clinicID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		h.logger.Error("failed to encode clinic summary", "clinic_id", clinicID, "error", err)
	}
}
