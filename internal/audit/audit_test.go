package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

func TestRecordInsertsEvent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	detail := json.RawMessage(`{"package_id":"PKG_TORIC","action":"added"}`)
	mock.ExpectExec(`INSERT INTO plan_audit_events`).
		WithArgs(pgxmock.AnyArg(), EventPackageOffered, "clinic-1", "patient-1", "od", detail, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	rec := NewRecorder(mock)
	err = rec.Record(context.Background(), Event{
		Type:      EventPackageOffered,
		ClinicID:  "clinic-1",
		PatientID: "patient-1",
		Eye:       "od",
		Detail:    detail,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRecordPreservesExplicitIDAndTime(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	created := time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO plan_audit_events`).
		WithArgs("evt-1", EventPackageSelected, "clinic-1", "patient-1", "", json.RawMessage(nil), created).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	rec := NewRecorder(mock)
	err = rec.Record(context.Background(), Event{
		ID:        "evt-1",
		Type:      EventPackageSelected,
		ClinicID:  "clinic-1",
		PatientID: "patient-1",
		CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRecordWrapsDBError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO plan_audit_events`).
		WillReturnError(errors.New("connection refused"))

	rec := NewRecorder(mock)
	err = rec.Record(context.Background(), Event{Type: EventCandidacyUpdated, ClinicID: "c", PatientID: "p"})
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestListForPatient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "event_type", "clinic_id", "patient_id", "eye", "detail", "created_at"}).
		AddRow("evt-2", EventPackageSelected, "clinic-1", "patient-1", "", json.RawMessage(`{}`), now).
		AddRow("evt-1", EventPackageOffered, "clinic-1", "patient-1", "od", json.RawMessage(`{}`), now.Add(-time.Minute))

	mock.ExpectQuery(`SELECT id, event_type, clinic_id, patient_id, eye, detail, created_at`).
		WithArgs("clinic-1", "patient-1", 50).
		WillReturnRows(rows)

	rec := NewRecorder(mock)
	events, err := rec.ListForPatient(context.Background(), "clinic-1", "patient-1", 0)
	if err != nil {
		t.Fatalf("ListForPatient failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].ID != "evt-2" {
		t.Errorf("events[0].ID = %q, want evt-2 (newest first)", events[0].ID)
	}
	if events[1].Eye != "od" {
		t.Errorf("events[1].Eye = %q, want od", events[1].Eye)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
