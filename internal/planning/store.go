package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists patient plan documents.
type Store struct {
	redis *redis.Client
}

// NewStore creates a new plan store.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) key(clinicID, patientID string) string {
	return fmt.Sprintf("patient:record:%s:%s", clinicID, patientID)
}

// Get retrieves a patient's record, returning an intake-empty document when
// none has been saved yet. Taper types are re-normalized on load so hand-
// edited schedules carry a consistent tag.
func (s *Store) Get(ctx context.Context, clinicID, patientID string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.key(clinicID, patientID)).Bytes()
	if err == redis.Nil {
		return NewRecord(clinicID, patientID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("planning: get record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("planning: unmarshal record: %w", err)
	}
	rec.Medications.Plan.Normalize()
	return &rec, nil
}

// Save upserts the full record document.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	rec.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("planning: marshal record: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(rec.ClinicID, rec.PatientID), data, 0).Err(); err != nil {
		return fmt.Errorf("planning: save record: %w", err)
	}
	return nil
}
