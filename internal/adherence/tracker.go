// Package adherence drives the patient-facing day-by-day drop tracker for
// the three days before cataract surgery. Which days exist and which are
// editable is governed purely by the calendar distance to the surgery date,
// computed once per request from an injected clock.
package adherence

import (
	"errors"
	"fmt"
	"time"
)

// State is the tracker's position relative to the surgery date.
type State string

const (
	// StatePending means no surgery date has been set yet.
	StatePending State = "PENDING"
	// StatePharmacy covers more than 3 days out: the tracker is visible but
	// read-only, prompting the patient to obtain their medication.
	StatePharmacy State = "PHARMACY"
	// StateTimeline covers the 3 tracked days before surgery.
	StateTimeline State = "TIMELINE"
	// StateSurgeryDay shows a day-of banner instead of the tracker.
	StateSurgeryDay State = "SURGERY_DAY"
	// StatePostSurgery hands off to the post-op module.
	StatePostSurgery State = "POST_SURGERY"
)

const dateLayout = "2006-01-02"

// ErrLocked rejects a checklist mutation outside the permitted edit window.
// It is advisory: callers surface a transient notice and change nothing.
var ErrLocked = errors.New("adherence: item is locked")

// ErrNoSurgeryDate rejects mutations while no surgery date is set.
var ErrNoSurgeryDate = errors.New("adherence: no surgery date set")

// DaysUntil computes whole calendar days from today to the surgery date,
// ignoring time of day. Same day is 0, tomorrow is 1, yesterday is -1.
func DaysUntil(surgery, now time.Time) int {
	s := time.Date(surgery.Year(), surgery.Month(), surgery.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(s.Sub(n).Hours() / 24)
}

// StateFor classifies the calendar distance to surgery.
func StateFor(daysUntil int) State {
	switch {
	case daysUntil > 3:
		return StatePharmacy
	case daysUntil >= 1:
		return StateTimeline
	case daysUntil == 0:
		return StateSurgeryDay
	default:
		return StatePostSurgery
	}
}

// Item is one drop in a tracked day's checklist.
type Item struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	ScheduledTime string `json:"scheduled_time"`
	Taken         bool   `json:"taken"`
}

// Day is one of the three tracked calendar days.
type Day struct {
	Date     string `json:"date"` // YYYY-MM-DD
	IsToday  bool   `json:"is_today"`
	Editable bool   `json:"editable"`
	Items    []Item `json:"items"`
}

// View is everything the patient UI needs to render the tracker.
type View struct {
	State            State  `json:"state"`
	SurgeryDate      string `json:"surgery_date,omitempty"`
	DaysUntilSurgery int    `json:"days_until_surgery"`
	Today            string `json:"today"`
	Days             []Day  `json:"days,omitempty"`
}

// Tracker evaluates the adherence state machine for one patient. It holds
// the persisted inputs; all date decisions take the caller's single "now"
// snapshot so a toggle spanning midnight stays consistent.
type Tracker struct {
	SurgeryDate    string // YYYY-MM-DD, empty when not yet scheduled
	FrequencyLabel string
	Checklist      Checklist
}

func (t *Tracker) surgeryDay() (time.Time, error) {
	if t.SurgeryDate == "" {
		return time.Time{}, ErrNoSurgeryDate
	}
	day, err := time.Parse(dateLayout, t.SurgeryDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("adherence: bad surgery date %q: %w", t.SurgeryDate, err)
	}
	return day, nil
}

// StateAt returns the tracker state for the given snapshot.
func (t *Tracker) StateAt(now time.Time) State {
	surgery, err := t.surgeryDay()
	if err != nil {
		return StatePending
	}
	return StateFor(DaysUntil(surgery, now))
}

// trackedDates returns the three tracked days, surgery−3 through surgery−1.
func (t *Tracker) trackedDates() ([3]string, error) {
	var out [3]string
	surgery, err := t.surgeryDay()
	if err != nil {
		return out, err
	}
	for i := 0; i < 3; i++ {
		out[i] = surgery.AddDate(0, 0, i-3).Format(dateLayout)
	}
	return out, nil
}

// View assembles the render model for one "now" snapshot. Days on or before
// today are editable (catch-up included); days strictly after today are
// locked. In PHARMACY state the days are present but all locked.
func (t *Tracker) View(now time.Time) View {
	today := now.Format(dateLayout)
	view := View{State: t.StateAt(now), SurgeryDate: t.SurgeryDate, Today: today}

	surgery, err := t.surgeryDay()
	if err != nil {
		return view
	}
	view.DaysUntilSurgery = DaysUntil(surgery, now)

	if view.State != StatePharmacy && view.State != StateTimeline {
		return view
	}

	dates, _ := t.trackedDates()
	slots := SlotsFor(t.FrequencyLabel)
	readOnly := view.State == StatePharmacy
	for _, date := range dates {
		day := Day{
			Date:     date,
			IsToday:  date == today,
			Editable: !readOnly && date <= today,
		}
		for _, s := range slots {
			day.Items = append(day.Items, Item{
				ID:            s.ID,
				Label:         s.Label,
				ScheduledTime: s.Time,
				Taken:         t.Checklist.Taken(date, s.ID),
			})
		}
		view.Days = append(view.Days, day)
	}
	return view
}

// canEdit applies the edit-window rule shared by Toggle and MarkAllComplete.
func (t *Tracker) canEdit(date string, now time.Time) error {
	state := t.StateAt(now)
	if state == StatePending {
		return ErrNoSurgeryDate
	}
	if state == StatePharmacy {
		return fmt.Errorf("%w: surgery is more than 3 days away", ErrLocked)
	}
	dates, err := t.trackedDates()
	if err != nil {
		return err
	}
	tracked := false
	for _, d := range dates {
		if d == date {
			tracked = true
			break
		}
	}
	if !tracked {
		return fmt.Errorf("%w: %s is not a tracked day", ErrLocked, date)
	}
	if date > now.Format(dateLayout) {
		return fmt.Errorf("%w: %s is in the future", ErrLocked, date)
	}
	return nil
}

// Toggle flips one checklist item if the date is inside the edit window.
// Toggling the same item twice is a no-op overall.
func (t *Tracker) Toggle(date, itemID string, now time.Time) error {
	if err := t.canEdit(date, now); err != nil {
		return err
	}
	if t.Checklist == nil {
		t.Checklist = make(Checklist)
	}
	t.Checklist.Toggle(date, itemID)
	return nil
}

// MarkAllComplete checks every item for today in one atomic update.
func (t *Tracker) MarkAllComplete(now time.Time) error {
	today := now.Format(dateLayout)
	if err := t.canEdit(today, now); err != nil {
		return err
	}
	if t.Checklist == nil {
		t.Checklist = make(Checklist)
	}
	slots := SlotsFor(t.FrequencyLabel)
	ids := make([]string, 0, len(slots))
	for _, s := range slots {
		ids = append(ids, s.ID)
	}
	t.Checklist.SetAll(today, ids)
	return nil
}
