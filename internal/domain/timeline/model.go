package timeline

import (
	"sort"
	"time"
)

// EventKind discriminates the clinical event variants carried on a timeline.
type EventKind string

const (
	KindAdmission  EventKind = "admission"
	KindSpecimen   EventKind = "specimen"
	KindLabResult  EventKind = "lab-result"
	KindMedication EventKind = "medication-administration"
	KindProcedure  EventKind = "procedure"
	KindCondition  EventKind = "condition"
)

// ClinicalEvent is one typed event on a patient timeline. Kind selects which
// fields are meaningful; unused fields stay zero. Every event carries a Start
// timestamp used for day indexing.
type ClinicalEvent struct {
	Kind   EventKind `json:"kind"`
	Code   string    `json:"code,omitempty"`
	System string    `json:"system,omitempty"`

	// Lab results and vital signs.
	Value *float64 `json:"value,omitempty"`
	Unit  string   `json:"unit,omitempty"`

	// Specimens and culture results.
	SpecimenType string `json:"specimen_type,omitempty"`
	Organism     string `json:"organism,omitempty"`
	PairID       string `json:"pair_id,omitempty"`

	// Medication administrations.
	Route string `json:"route,omitempty"`

	// Conditions.
	PresentOnAdmission bool `json:"present_on_admission,omitempty"`
	Principal          bool `json:"principal,omitempty"`

	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// Timestamp returns the instant used for day indexing.
func (e ClinicalEvent) Timestamp() time.Time { return e.Start }

// SpansDays reports the distinct calendar days touched by the event's
// [Start, End] period relative to the given anchor. Events without an End
// touch exactly one day.
func (e ClinicalEvent) SpansDays(anchor time.Time) []int {
	first := DayIndex(anchor, e.Start)
	if e.End == nil {
		return []int{first}
	}
	last := DayIndex(anchor, *e.End)
	if last < first {
		last = first
	}
	days := make([]int, 0, last-first+1)
	for d := first; d <= last; d++ {
		days = append(days, d)
	}
	return days
}

// Timeline is the ordered, immutable event sequence for one synthetic
// patient-encounter pair. Construct with New; the event slice is copied and
// sorted so callers cannot mutate it afterwards.
type Timeline struct {
	admission time.Time
	discharge time.Time
	events    []ClinicalEvent
}

// New builds a timeline anchored at the admission instant. Events are sorted
// by timestamp; pre-admission events are legal and kept (they are flagged by
// PreAdmission, never rejected).
func New(admission, discharge time.Time, events []ClinicalEvent) Timeline {
	evs := make([]ClinicalEvent, len(events))
	copy(evs, events)
	sort.SliceStable(evs, func(i, j int) bool {
		return evs[i].Start.Before(evs[j].Start)
	})
	return Timeline{admission: admission, discharge: discharge, events: evs}
}

// Admission returns the encounter admission instant (hospital day 1 anchor).
func (t Timeline) Admission() time.Time { return t.admission }

// Discharge returns the encounter end instant.
func (t Timeline) Discharge() time.Time { return t.discharge }

// Len returns the number of events.
func (t Timeline) Len() int { return len(t.events) }

// Events returns a copy of the ordered event sequence.
func (t Timeline) Events() []ClinicalEvent {
	evs := make([]ClinicalEvent, len(t.events))
	copy(evs, t.events)
	return evs
}

// OfKind returns the ordered events of a single kind.
func (t Timeline) OfKind(kind EventKind) []ClinicalEvent {
	var out []ClinicalEvent
	for _, e := range t.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// PreAdmission reports whether the event precedes the admission instant.
func (t Timeline) PreAdmission(e ClinicalEvent) bool {
	return e.Start.Before(t.admission)
}
