package adherence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/clearpath-health/cataract-planner/internal/observability/metrics"
	"github.com/clearpath-health/cataract-planner/pkg/clock"
	"github.com/clearpath-health/cataract-planner/pkg/logging"
)

var trackerTracer = otel.Tracer("cataract.internal.adherence")

// PlanSource loads the tracker inputs for a patient and persists the full
// progress document back. The planning package implements it.
type PlanSource interface {
	TrackerFor(ctx context.Context, clinicID, patientID string) (*Tracker, error)
	SaveProgress(ctx context.Context, clinicID, patientID string, progress map[string][]string) error
}

// ToggleResult is what a mutation returns to the patient UI. A locked
// attempt carries a transient notice and changes nothing; a successful
// toggle that failed to persist keeps the optimistic view and reports
// Saved=false so the next mutation retries the write.
type ToggleResult struct {
	View   View   `json:"view"`
	Saved  bool   `json:"saved"`
	Locked bool   `json:"locked,omitempty"`
	Notice string `json:"notice,omitempty"`
}

// Service evaluates the tracker state machine against a single clock
// snapshot per call and persists checklist changes.
type Service struct {
	source  PlanSource
	clock   clock.Clock
	metrics *metrics.PlannerMetrics
	logger  *logging.Logger
}

// NewService constructs the adherence service.
func NewService(source PlanSource, clk clock.Clock, m *metrics.PlannerMetrics, logger *logging.Logger) *Service {
	if source == nil {
		panic("adherence: plan source required")
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{source: source, clock: clk, metrics: m, logger: logger.Component("adherence")}
}

// View returns the tracker render model for one patient.
func (s *Service) View(ctx context.Context, clinicID, patientID string) (View, error) {
	ctx, span := trackerTracer.Start(ctx, "adherence.view")
	defer span.End()
	span.SetAttributes(attribute.String("cataract.clinic_id", clinicID))

	tracker, err := s.source.TrackerFor(ctx, clinicID, patientID)
	if err != nil {
		return View{}, recordErr(span, fmt.Errorf("adherence: load tracker: %w", err))
	}
	return tracker.View(s.clock.Now()), nil
}

// Toggle flips one checklist item and persists the progress document.
func (s *Service) Toggle(ctx context.Context, clinicID, patientID, date, itemID string) (ToggleResult, error) {
	ctx, span := trackerTracer.Start(ctx, "adherence.toggle")
	defer span.End()
	span.SetAttributes(
		attribute.String("cataract.clinic_id", clinicID),
		attribute.String("cataract.date", date),
		attribute.String("cataract.item_id", itemID),
	)

	tracker, err := s.source.TrackerFor(ctx, clinicID, patientID)
	if err != nil {
		return ToggleResult{}, recordErr(span, fmt.Errorf("adherence: load tracker: %w", err))
	}

	now := s.clock.Now()
	if err := tracker.Toggle(date, itemID, now); err != nil {
		if errors.Is(err, ErrLocked) || errors.Is(err, ErrNoSurgeryDate) {
			s.metrics.ObserveToggle("locked")
			s.logger.Info("toggle rejected", "patient_id", patientID, "date", date, "reason", err)
			return ToggleResult{View: tracker.View(now), Locked: true, Notice: lockedNotice(err)}, nil
		}
		return ToggleResult{}, recordErr(span, err)
	}

	return s.persist(ctx, clinicID, patientID, tracker, now), nil
}

// CompleteToday marks every item for today complete and persists.
func (s *Service) CompleteToday(ctx context.Context, clinicID, patientID string) (ToggleResult, error) {
	ctx, span := trackerTracer.Start(ctx, "adherence.complete_today")
	defer span.End()
	span.SetAttributes(attribute.String("cataract.clinic_id", clinicID))

	tracker, err := s.source.TrackerFor(ctx, clinicID, patientID)
	if err != nil {
		return ToggleResult{}, recordErr(span, fmt.Errorf("adherence: load tracker: %w", err))
	}

	now := s.clock.Now()
	if err := tracker.MarkAllComplete(now); err != nil {
		if errors.Is(err, ErrLocked) || errors.Is(err, ErrNoSurgeryDate) {
			s.metrics.ObserveToggle("locked")
			return ToggleResult{View: tracker.View(now), Locked: true, Notice: lockedNotice(err)}, nil
		}
		return ToggleResult{}, recordErr(span, err)
	}

	return s.persist(ctx, clinicID, patientID, tracker, now), nil
}

// persist writes the full progress document. A failed save keeps the
// optimistic in-memory state and surfaces a retry notice; the next
// user-initiated mutation retries, there is no automatic retry.
func (s *Service) persist(ctx context.Context, clinicID, patientID string, tracker *Tracker, now time.Time) ToggleResult {
	start := time.Now()
	err := s.source.SaveProgress(ctx, clinicID, patientID, tracker.Checklist.Progress())
	s.metrics.ObserveSaveLatency("progress", time.Since(start).Seconds())

	if err != nil {
		s.metrics.ObserveToggle("save_failed")
		s.metrics.ObservePlanSave("progress", "error")
		s.logger.Error("progress save failed", "patient_id", patientID, "error", err)
		return ToggleResult{
			View:   tracker.View(now),
			Saved:  false,
			Notice: "Could not save your progress. Your changes are kept here; they will be saved with your next tap.",
		}
	}

	s.metrics.ObserveToggle("ok")
	s.metrics.ObservePlanSave("progress", "ok")
	return ToggleResult{View: tracker.View(now), Saved: true}
}

func lockedNotice(err error) string {
	if errors.Is(err, ErrNoSurgeryDate) {
		return "Your surgery date has not been scheduled yet."
	}
	return "This day is locked and cannot be edited yet."
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	return err
}
