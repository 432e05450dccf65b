// Package audit records an immutable trail of staff plan changes. Every
// mutation of a patient's surgical or medication plan lands here with a
// JSON detail document describing what changed.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// EventType identifies what kind of plan change happened.
type EventType string

const (
	// EventCandidacyUpdated is logged when staff edit the per-eye flags.
	EventCandidacyUpdated EventType = "plan.candidacy_updated"
	// EventPackageOffered is logged on every offered-set toggle.
	EventPackageOffered EventType = "plan.package_offered"
	// EventPackageSelected is logged when a selection is recorded.
	EventPackageSelected EventType = "plan.package_selected"
	// EventSelectionRejected is logged when a selection violates the
	// offered-set invariant and is refused.
	EventSelectionRejected EventType = "plan.selection_rejected"
	// EventLensOrderUpdated is logged when a lens order changes.
	EventLensOrderUpdated EventType = "plan.lens_order_updated"
	// EventMedicationsUpdated is logged when the protocol config changes.
	EventMedicationsUpdated EventType = "plan.medications_updated"
	// EventPlanModeChanged is logged on unified/per-eye switches.
	EventPlanModeChanged EventType = "plan.mode_changed"
)

// Event is one immutable audit record.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"event_type"`
	ClinicID  string          `json:"clinic_id"`
	PatientID string          `json:"patient_id"`
	Eye       string          `json:"eye,omitempty"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// DB is the pgx surface the recorder needs. *pgxpool.Pool satisfies it, as
// does a pgxmock pool in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Recorder persists audit events.
type Recorder struct {
	db DB
}

// NewRecorder creates an audit recorder backed by the given database.
func NewRecorder(db DB) *Recorder {
	if db == nil {
		panic("audit: database required")
	}
	return &Recorder{db: db}
}

// Record inserts one event. ID and CreatedAt are filled when absent.
func (r *Recorder) Record(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO plan_audit_events (
			id, event_type, clinic_id, patient_id, eye, detail, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.Type,
		event.ClinicID,
		event.PatientID,
		event.Eye,
		event.Detail,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: record event: %w", err)
	}
	return nil
}

// ListForPatient returns a patient's audit trail, newest first.
func (r *Recorder) ListForPatient(ctx context.Context, clinicID, patientID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, event_type, clinic_id, patient_id, eye, detail, created_at
		FROM plan_audit_events
		WHERE clinic_id = $1 AND patient_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, clinicID, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Type, &e.ClinicID, &e.PatientID, &e.Eye, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: iterate events: %w", err)
	}
	return events, nil
}
