package reports

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Summary is the lightweight activity rollup shown on the clinic home
// screen. It answers "is anyone using the planner" without the per-type
// breakdown Stats carries.
type Summary struct {
	ClinicID       string `json:"clinic_id"`
	TotalEvents    int64  `json:"total_events"`
	ActivePatients int64  `json:"active_patients"`
	LastActivity   string `json:"last_activity,omitempty"` // RFC3339
}

// SummaryRepository reads the rollup through database/sql, so it can point
// at a read replica opened with any driver.
type SummaryRepository struct {
	db *sql.DB
}

// NewSummaryRepository creates a new summary repository.
func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	if db == nil {
		panic("reports: sql database required for summaries")
	}
	return &SummaryRepository{db: db}
}

// GetSummary retrieves the all-time activity rollup for a clinic.
func (r *SummaryRepository) GetSummary(ctx context.Context, clinicID string) (*Summary, error) {
	summary := &Summary{ClinicID: clinicID}

	query := `
		SELECT COUNT(*), COUNT(DISTINCT patient_id), MAX(created_at)
		FROM plan_audit_events
		WHERE clinic_id = $1
	`
	var last sql.NullTime
	err := r.db.QueryRowContext(ctx, query, clinicID).Scan(&summary.TotalEvents, &summary.ActivePatients, &last)
	if err != nil {
		return nil, fmt.Errorf("reports: clinic summary: %w", err)
	}
	if last.Valid {
		summary.LastActivity = last.Time.UTC().Format(time.RFC3339)
	}
	return summary, nil
}
