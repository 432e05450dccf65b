package planning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/clearpath-health/cataract-planner/internal/adherence"
	"github.com/clearpath-health/cataract-planner/internal/audit"
	"github.com/clearpath-health/cataract-planner/internal/candidacy"
	"github.com/clearpath-health/cataract-planner/internal/catalog"
	"github.com/clearpath-health/cataract-planner/internal/lenses"
	"github.com/clearpath-health/cataract-planner/internal/medication"
	"github.com/clearpath-health/cataract-planner/internal/observability/metrics"
	"github.com/clearpath-health/cataract-planner/internal/offering"
	"github.com/clearpath-health/cataract-planner/pkg/clock"
	"github.com/clearpath-health/cataract-planner/pkg/logging"
)

var planTracer = otel.Tracer("cataract.internal.planning")

// ErrNoSelection rejects lens operations before a package has been chosen
// for the eye.
var ErrNoSelection = errors.New("planning: no package selected for eye")

// AuditLog is the audit surface the service writes to. *audit.Recorder
// satisfies it.
type AuditLog interface {
	Record(ctx context.Context, event audit.Event) error
	ListForPatient(ctx context.Context, clinicID, patientID string, limit int) ([]audit.Event, error)
}

// Service orchestrates staff plan operations against the record store and
// clinic catalog. Audit writes are best-effort: a failed audit insert is
// logged, never surfaced to staff.
type Service struct {
	store    *Store
	catalogs *catalog.Store
	audit    AuditLog
	clock    clock.Clock
	metrics  *metrics.PlannerMetrics
	logger   *logging.Logger
}

// NewService constructs the planning service.
func NewService(store *Store, catalogs *catalog.Store, auditLog AuditLog, clk clock.Clock, m *metrics.PlannerMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("planning: record store required")
	}
	if catalogs == nil {
		panic("planning: catalog store required")
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:    store,
		catalogs: catalogs,
		audit:    auditLog,
		clock:    clk,
		metrics:  m,
		logger:   logger.Component("planning"),
	}
}

// Plan returns a patient's full record.
func (s *Service) Plan(ctx context.Context, clinicID, patientID string) (*Record, error) {
	ctx, span := planTracer.Start(ctx, "planning.plan")
	defer span.End()
	span.SetAttributes(attribute.String("cataract.clinic_id", clinicID))

	return s.store.Get(ctx, clinicID, patientID)
}

// SetCandidacy replaces one eye's candidacy flags.
func (s *Service) SetCandidacy(ctx context.Context, clinicID, patientID string, eye offering.Eye, profile candidacy.Profile) (*Record, error) {
	ctx, span := planTracer.Start(ctx, "planning.set_candidacy")
	defer span.End()
	span.SetAttributes(
		attribute.String("cataract.clinic_id", clinicID),
		attribute.String("cataract.eye", string(eye)),
	)

	rec, err := s.store.Get(ctx, clinicID, patientID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if err := rec.frozenFor(eye); err != nil {
		return nil, err
	}

	switch eye {
	case offering.EyeOD:
		rec.SurgicalPlan.Candidacy.OD = profile
	case offering.EyeOS:
		rec.SurgicalPlan.Candidacy.OS = profile
	}

	if err := s.save(ctx, rec); err != nil {
		return nil, recordErr(span, err)
	}
	s.writeAudit(ctx, rec, audit.EventCandidacyUpdated, string(eye), profile)
	return rec, nil
}

// Categories resolves the eligible lens categories for an eye, honoring the
// plan mode.
func (s *Service) Categories(ctx context.Context, clinicID, patientID string, eye offering.Eye) ([]catalog.Category, error) {
	rec, err := s.store.Get(ctx, clinicID, patientID)
	if err != nil {
		return nil, err
	}
	return candidacy.Resolve(rec.CandidacyFor(eye)), nil
}

// OfferablePackages returns the catalog packages staff may present for an
// eye, filtered by the resolved categories.
func (s *Service) OfferablePackages(ctx context.Context, clinicID, patientID string, eye offering.Eye) ([]catalog.Package, error) {
	ctx, span := planTracer.Start(ctx, "planning.offerable_packages")
	defer span.End()
	span.SetAttributes(attribute.String("cataract.clinic_id", clinicID))

	rec, err := s.store.Get(ctx, clinicID, patientID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	cat, err := s.catalogs.Get(ctx, clinicID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	eligible := candidacy.Resolve(rec.CandidacyFor(eye))
	return offering.FilterCatalog(cat.Packages, eligible), nil
}

// SetPlanMode switches between the unified and per-eye plan shapes,
// reconciling offered sets and selections. Both shapes stay persisted.
func (s *Service) SetPlanMode(ctx context.Context, clinicID, patientID string, samePlanBothEyes bool) (*Record, error) {
	ctx, span := planTracer.Start(ctx, "planning.set_plan_mode")
	defer span.End()
	span.SetAttributes(attribute.String("cataract.clinic_id", clinicID))

	rec, err := s.store.Get(ctx, clinicID, patientID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if err := rec.frozenAny(); err != nil {
		return nil, err
	}
	if rec.SurgicalPlan.Offering.SamePlanBothEyes == samePlanBothEyes {
		return rec, nil
	}

	if samePlanBothEyes {
		rec.SurgicalPlan.Offering.MergeToUnified()
	} else {
		rec.SurgicalPlan.Offering.SplitToPerEye()
	}

	if err := s.save(ctx, rec); err != nil {
		return nil, recordErr(span, err)
	}
	s.writeAudit(ctx, rec, audit.EventPlanModeChanged, "", map[string]bool{"same_plan_both_eyes": samePlanBothEyes})
	return rec, nil
}

// ToggleOffered adds or removes a catalog package from the offered set.
func (s *Service) ToggleOffered(ctx context.Context, clinicID, patientID, packageID string, eye offering.Eye) (*Record, error) {
	ctx, span := planTracer.Start(ctx, "planning.toggle_offered")
	defer span.End()
	span.SetAttributes(
		attribute.String("cataract.clinic_id", clinicID),
		attribute.String("cataract.package_id", packageID),
	)

	rec, err := s.store.Get(ctx, clinicID, patientID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if err := rec.frozenForScope(eye); err != nil {
		return nil, err
	}
	cat, err := s.catalogs.Get(ctx, clinicID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if _, ok := cat.PackageByID(packageID); !ok {
		return nil, offering.ErrUnknownPackage
	}

	if err := rec.SurgicalPlan.Offering.ToggleOffered(packageID, eye); err != nil {
		return nil, err
	}
	if err := s.save(ctx, rec); err != nil {
		return nil, recordErr(span, err)
	}
	s.writeAudit(ctx, rec, audit.EventPackageOffered, string(eye), map[string]string{"package_id": packageID})
	return rec, nil
}

// Select records the patient's package choice. A package outside the
// offered set is a rejected write: nothing is stored, the rejection is
// counted and audited.
func (s *Service) Select(ctx context.Context, clinicID, patientID, packageID string, eye offering.Eye, status offering.SelectionStatus) (*Record, error) {
	ctx, span := planTracer.Start(ctx, "planning.select")
	defer span.End()
	span.SetAttributes(
		attribute.String("cataract.clinic_id", clinicID),
		attribute.String("cataract.package_id", packageID),
	)

	rec, err := s.store.Get(ctx, clinicID, patientID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if err := rec.frozenForScope(eye); err != nil {
		return nil, err
	}

	if err := rec.SurgicalPlan.Offering.Select(packageID, eye, status, s.clock.Now()); err != nil {
		if errors.Is(err, offering.ErrNotOffered) {
			s.metrics.ObserveSelectionRejected("not_offered")
			s.writeAudit(ctx, rec, audit.EventSelectionRejected, string(eye), map[string]string{"package_id": packageID})
		}
		return nil, err
	}
	if err := s.save(ctx, rec); err != nil {
		return nil, recordErr(span, err)
	}
	s.writeAudit(ctx, rec, audit.EventPackageSelected, string(eye), map[string]string{
		"package_id": packageID,
		"status":     string(status),
	})
	return rec, nil
}

// LensMatches returns the orderable lens models for an eye's selected
// package, flattened in the package's category order.
func (s *Service) LensMatches(ctx context.Context, clinicID, patientID string, eye offering.Eye) ([]lenses.MatchedModel, error) {
	ctx, span := planTracer.Start(ctx, "planning.lens_matches")
	defer span.End()
	span.SetAttributes(attribute.String("cataract.clinic_id", clinicID))

	rec, err := s.store.Get(ctx, clinicID, patientID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	sel := rec.SurgicalPlan.Offering.SelectedFor(eye)
	if !sel.IsSet() {
		return nil, ErrNoSelection
	}
	cat, err := s.catalogs.Get(ctx, clinicID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	pkg, ok := cat.PackageByID(sel.PackageID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", offering.ErrUnknownPackage, sel.PackageID)
	}
	return lenses.Match(pkg, cat.LensInventory), nil
}

// LensOrderInput carries the staff edits to one eye's lens order. Empty
// fields leave the stored value alone; the model fields travel together.
type LensOrderInput struct {
	ModelName     string `json:"model_name,omitempty"`
	ModelCode     string `json:"model_code,omitempty"`
	Power         string `json:"power,omitempty"`
	Cylinder      string `json:"cylinder,omitempty"`
	AxisAlignment string `json:"axis_alignment,omitempty"`
	SurgeryDate   string `json:"surgery_date,omitempty"` // YYYY-MM-DD
	ArrivalTime   string `json:"arrival_time,omitempty"`
	Status        string `json:"status,omitempty"`
}

var validOrderStatuses = map[lenses.OrderStatus]struct{}{
	lenses.OrderPending:       {},
	lenses.OrderScheduled:     {},
	lenses.OrderLensOrdered:   {},
	lenses.OrderReady:         {},
	lenses.OrderCompleted:     {},
	lenses.OrderNotApplicable: {},
}

// SetLensOrder updates one eye's lens order. A model assignment is
// validated against the eye's selected package; surgery dates must be
// ISO dates. Completing the order freezes the plan for that eye.
func (s *Service) SetLensOrder(ctx context.Context, clinicID, patientID string, eye offering.Eye, input LensOrderInput) (*Record, error) {
	ctx, span := planTracer.Start(ctx, "planning.set_lens_order")
	defer span.End()
	span.SetAttributes(
		attribute.String("cataract.clinic_id", clinicID),
		attribute.String("cataract.eye", string(eye)),
	)

	rec, err := s.store.Get(ctx, clinicID, patientID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if err := rec.frozenFor(eye); err != nil {
		return nil, err
	}
	order, err := rec.LensOrder(eye)
	if err != nil {
		return nil, err
	}

	if input.ModelName != "" || input.ModelCode != "" {
		sel := rec.SurgicalPlan.Offering.SelectedFor(eye)
		if !sel.IsSet() {
			return nil, ErrNoSelection
		}
		cat, err := s.catalogs.Get(ctx, clinicID)
		if err != nil {
			return nil, recordErr(span, err)
		}
		pkg, ok := cat.PackageByID(sel.PackageID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", offering.ErrUnknownPackage, sel.PackageID)
		}
		matched := lenses.MatchedModel{
			LensModel:    catalog.LensModel{Name: input.ModelName},
			CategoryCode: input.ModelCode,
		}
		if err := order.SetModel(matched, pkg); err != nil {
			return nil, err
		}
	}

	if input.SurgeryDate != "" {
		if _, err := time.Parse("2006-01-02", input.SurgeryDate); err != nil {
			return nil, fmt.Errorf("%w: bad surgery date %q", ErrInvalidInput, input.SurgeryDate)
		}
		order.SurgeryDate = input.SurgeryDate
	}
	if input.Power != "" {
		order.Power = input.Power
	}
	if input.Cylinder != "" {
		order.Cylinder = input.Cylinder
	}
	if input.AxisAlignment != "" {
		order.AxisAlignment = input.AxisAlignment
	}
	if input.ArrivalTime != "" {
		order.ArrivalTime = input.ArrivalTime
	}
	if input.Status != "" {
		status := lenses.OrderStatus(input.Status)
		if _, ok := validOrderStatuses[status]; !ok {
			return nil, fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, input.Status)
		}
		order.Status = status
	}

	if err := s.save(ctx, rec); err != nil {
		return nil, recordErr(span, err)
	}
	s.writeAudit(ctx, rec, audit.EventLensOrderUpdated, string(eye), input)
	return rec, nil
}

// PutMedications replaces the whole medication protocol document.
func (s *Service) PutMedications(ctx context.Context, clinicID, patientID string, plan medication.Plan) (*Record, error) {
	ctx, span := planTracer.Start(ctx, "planning.put_medications")
	defer span.End()
	span.SetAttributes(attribute.String("cataract.clinic_id", clinicID))

	rec, err := s.store.Get(ctx, clinicID, patientID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if err := rec.frozenAny(); err != nil {
		return nil, err
	}
	if plan.ProtocolType == "" {
		plan.ProtocolType = medication.ProtocolStandard
	}
	if err := rec.Medications.Plan.SetProtocol(plan.ProtocolType); err != nil {
		return nil, err
	}
	plan.Normalize()
	rec.Medications.Plan = plan

	if err := s.save(ctx, rec); err != nil {
		return nil, recordErr(span, err)
	}
	s.writeAudit(ctx, rec, audit.EventMedicationsUpdated, "", map[string]string{"protocol": string(plan.ProtocolType)})
	return rec, nil
}

// SetProtocol switches the active medication protocol, keeping the inactive
// branches as a scratch pad.
func (s *Service) SetProtocol(ctx context.Context, clinicID, patientID string, pt medication.ProtocolType) (*Record, error) {
	ctx, span := planTracer.Start(ctx, "planning.set_protocol")
	defer span.End()

	rec, err := s.store.Get(ctx, clinicID, patientID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if err := rec.frozenAny(); err != nil {
		return nil, err
	}
	if err := rec.Medications.Plan.SetProtocol(pt); err != nil {
		return nil, err
	}
	if err := s.save(ctx, rec); err != nil {
		return nil, recordErr(span, err)
	}
	s.writeAudit(ctx, rec, audit.EventMedicationsUpdated, "", map[string]string{"protocol": string(pt)})
	return rec, nil
}

// OptionSlot names the protocol slot a catalog option is applied to.
type OptionSlot string

const (
	SlotPreOpAntibiotic  OptionSlot = "pre_op_antibiotic"
	SlotPostOpAntibiotic OptionSlot = "post_op_antibiotic"
	SlotNSAID            OptionSlot = "nsaid"
	SlotSteroid          OptionSlot = "steroid"
	SlotCombination      OptionSlot = "combination"
)

// ApplyMedicationOption auto-fills one protocol slot from a clinic catalog
// option, copying the option's default frequency, duration, and taper.
func (s *Service) ApplyMedicationOption(ctx context.Context, clinicID, patientID string, slot OptionSlot, optionID string) (*Record, error) {
	ctx, span := planTracer.Start(ctx, "planning.apply_medication_option")
	defer span.End()
	span.SetAttributes(
		attribute.String("cataract.clinic_id", clinicID),
		attribute.String("cataract.option_id", optionID),
	)

	rec, err := s.store.Get(ctx, clinicID, patientID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if err := rec.frozenAny(); err != nil {
		return nil, err
	}
	cat, err := s.catalogs.Get(ctx, clinicID)
	if err != nil {
		return nil, recordErr(span, err)
	}

	meds := cat.Medications
	plan := &rec.Medications.Plan
	var opt catalog.MedicationOption
	var ok bool
	switch slot {
	case SlotPreOpAntibiotic:
		if opt, ok = catalog.FindOption(meds.Antibiotics, optionID); ok {
			plan.ApplyPreOpAntibiotic(opt, meds.DefaultStartDaysBeforeSurgery)
		}
	case SlotPostOpAntibiotic:
		if opt, ok = catalog.FindOption(meds.Antibiotics, optionID); ok {
			plan.ApplyPostOpAntibiotic(opt)
		}
	case SlotNSAID:
		if opt, ok = catalog.FindOption(meds.NSAIDs, optionID); ok {
			plan.ApplyNSAID(opt)
		}
	case SlotSteroid:
		if opt, ok = catalog.FindOption(meds.Steroids, optionID); ok {
			plan.ApplySteroid(opt)
		}
	case SlotCombination:
		if opt, ok = catalog.FindOption(meds.Combinations, optionID); ok {
			plan.ApplyCombination(opt)
		}
	default:
		return nil, fmt.Errorf("%w: unknown medication slot %q", ErrInvalidInput, slot)
	}
	if !ok {
		return nil, fmt.Errorf("%w: medication option %q not in catalog", ErrInvalidInput, optionID)
	}

	if err := s.save(ctx, rec); err != nil {
		return nil, recordErr(span, err)
	}
	s.writeAudit(ctx, rec, audit.EventMedicationsUpdated, "", map[string]string{
		"slot":      string(slot),
		"option_id": optionID,
	})
	return rec, nil
}

// ApplyTaperPreset overwrites the active protocol's taper with a preset.
func (s *Service) ApplyTaperPreset(ctx context.Context, clinicID, patientID string, name medication.TaperType) (*Record, error) {
	ctx, span := planTracer.Start(ctx, "planning.apply_taper_preset")
	defer span.End()

	rec, err := s.store.Get(ctx, clinicID, patientID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if err := rec.frozenAny(); err != nil {
		return nil, err
	}
	taper := rec.Medications.Plan.ActiveTaper()
	if taper == nil {
		return nil, ErrNoTaper
	}
	if err := taper.ApplyPreset(name); err != nil {
		return nil, err
	}
	if err := s.save(ctx, rec); err != nil {
		return nil, recordErr(span, err)
	}
	s.writeAudit(ctx, rec, audit.EventMedicationsUpdated, "", map[string]string{"taper_preset": string(name)})
	return rec, nil
}

// SetTaperWeek edits one week of the active taper, marking it custom.
func (s *Service) SetTaperWeek(ctx context.Context, clinicID, patientID string, week, value int) (*Record, error) {
	ctx, span := planTracer.Start(ctx, "planning.set_taper_week")
	defer span.End()

	rec, err := s.store.Get(ctx, clinicID, patientID)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if err := rec.frozenAny(); err != nil {
		return nil, err
	}
	taper := rec.Medications.Plan.ActiveTaper()
	if taper == nil {
		return nil, ErrNoTaper
	}
	if err := taper.SetWeek(week, value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.save(ctx, rec); err != nil {
		return nil, recordErr(span, err)
	}
	s.writeAudit(ctx, rec, audit.EventMedicationsUpdated, "", map[string]int{"taper_week": week, "value": value})
	return rec, nil
}

// AuditTrail returns the patient's plan-change history, newest first.
func (s *Service) AuditTrail(ctx context.Context, clinicID, patientID string, limit int) ([]audit.Event, error) {
	if s.audit == nil {
		return nil, nil
	}
	return s.audit.ListForPatient(ctx, clinicID, patientID, limit)
}

// TrackerFor assembles the adherence tracker from a patient's record: the
// next scheduled surgery anchors the timeline and the active protocol's
// pre-op frequency picks the drop slots.
func (s *Service) TrackerFor(ctx context.Context, clinicID, patientID string) (*adherence.Tracker, error) {
	rec, err := s.store.Get(ctx, clinicID, patientID)
	if err != nil {
		return nil, err
	}
	return &adherence.Tracker{
		SurgeryDate:    rec.NextSurgeryDate(),
		FrequencyLabel: rec.Medications.Plan.PreOpFrequencyLabel(),
		Checklist:      adherence.FromProgress(rec.Medications.PreOp.Progress),
	}, nil
}

// SaveProgress persists the adherence progress document inside the record.
// Patient toggles bypass the staff freeze rules; the tracker's own time
// window is the gate.
func (s *Service) SaveProgress(ctx context.Context, clinicID, patientID string, progress map[string][]string) error {
	rec, err := s.store.Get(ctx, clinicID, patientID)
	if err != nil {
		return err
	}
	rec.Medications.PreOp.Progress = progress
	return s.store.Save(ctx, rec)
}

// save persists the record with latency and outcome metrics.
func (s *Service) save(ctx context.Context, rec *Record) error {
	start := time.Now()
	err := s.store.Save(ctx, rec)
	s.metrics.ObserveSaveLatency("record", time.Since(start).Seconds())
	if err != nil {
		s.metrics.ObservePlanSave("record", "error")
		return err
	}
	s.metrics.ObservePlanSave("record", "ok")
	return nil
}

// writeAudit records a plan change, logging and swallowing failures.
func (s *Service) writeAudit(ctx context.Context, rec *Record, eventType audit.EventType, eye string, detail any) {
	if s.audit == nil {
		return
	}
	raw, err := json.Marshal(detail)
	if err != nil {
		raw = nil
	}
	event := audit.Event{
		Type:      eventType,
		ClinicID:  rec.ClinicID,
		PatientID: rec.PatientID,
		Eye:       eye,
		Detail:    raw,
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Error("audit write failed", "event_type", eventType, "patient_id", rec.PatientID, "error", err)
	}
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	return err
}
