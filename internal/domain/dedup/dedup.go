// Package dedup collapses raw qualifying events into reportable events by
// applying the protocol suppression windows: the antimicrobial-resistance
// 14-day invasive-specimen window, the sepsis repeat-event timeframe, and the
// bloodstream-infection paired-culture and prior-organism rules.
package dedup

import (
	"time"

	"github.com/clinfix/clinfix/internal/domain/antimicrobial"
	"github.com/clinfix/clinfix/internal/domain/organism"
	"github.com/clinfix/clinfix/internal/domain/terminology"
	"github.com/clinfix/clinfix/internal/domain/timeline"
)

// Disposition tags one isolate's deduplication outcome.
type Disposition string

const (
	DispositionCounted    Disposition = "counted"
	DispositionSuppressed Disposition = "suppressed"
)

// Isolate is one positive culture result entering deduplication.
type Isolate struct {
	OrganismCode string
	SpecimenType string
	CollectedAt  time.Time
	Invasive     bool
}

// IsolateOutcome records the disposition of one isolate with the window rule
// that produced it.
type IsolateOutcome struct {
	Isolate Isolate     `json:"isolate"`
	Status  Disposition `json:"status"`
	Reason  string      `json:"reason,omitempty"`
}

// ARConfig carries the antimicrobial-resistance dedup parameters.
type ARConfig struct {
	InvasiveWindowDays int // suppression window after a counted invasive isolate
}

// DefaultARConfig returns the standard 14-day invasive window.
func DefaultARConfig() ARConfig {
	return ARConfig{InvasiveWindowDays: 14}
}

// DeduplicateIsolates applies the resistance-protocol windows to isolates in
// collection order. Invasive specimens suppress repeats of the same organism
// identity within the configured window of a prior counted invasive isolate;
// non-invasive specimens count one isolate per organism identity per calendar
// month.
func DeduplicateIsolates(res *organism.Resolver, cfg ARConfig, isolates []Isolate) []IsolateOutcome {
	out := make([]IsolateOutcome, 0, len(isolates))
	var countedInvasive []Isolate
	var countedMonthly []Isolate

	for _, iso := range isolates {
		o := IsolateOutcome{Isolate: iso, Status: DispositionCounted}

		if iso.Invasive {
			for _, prior := range countedInvasive {
				if !res.SameOrganism(iso.OrganismCode, prior.OrganismCode) {
					continue
				}
				if timeline.WithinDays(prior.CollectedAt, iso.CollectedAt, cfg.InvasiveWindowDays) {
					o.Status = DispositionSuppressed
					o.Reason = "same organism within the invasive-specimen window"
					break
				}
			}
			if o.Status == DispositionCounted {
				countedInvasive = append(countedInvasive, iso)
			}
		} else {
			for _, prior := range countedMonthly {
				if res.SameOrganism(iso.OrganismCode, prior.OrganismCode) && sameMonth(prior.CollectedAt, iso.CollectedAt) {
					o.Status = DispositionSuppressed
					o.Reason = "organism already counted this calendar month"
					break
				}
			}
			if o.Status == DispositionCounted {
				countedMonthly = append(countedMonthly, iso)
			}
		}
		out = append(out, o)
	}
	return out
}

func sameMonth(a, b time.Time) bool {
	return a.UTC().Year() == b.UTC().Year() && a.UTC().Month() == b.UTC().Month()
}

// RETTracker enforces the sepsis repeat-event timeframe within one encounter.
// Once an episode's onset day is recorded, no new episode may open with an
// onset day inside [onset, onset+Days-1]. Trackers are per-encounter, so the
// timeframe never crosses encounter boundaries.
type RETTracker struct {
	days   int
	onsets []int
}

// NewRETTracker creates a tracker with the given timeframe length in days.
func NewRETTracker(days int) *RETTracker {
	return &RETTracker{days: days}
}

// Allows reports whether a new episode may open on the given onset day.
func (t *RETTracker) Allows(onsetDay int) bool {
	for _, o := range t.onsets {
		if onsetDay >= o && onsetDay <= o+t.days-1 {
			return false
		}
	}
	return true
}

// Record fixes an episode onset, opening its suppression window.
func (t *RETTracker) Record(onsetDay int) {
	t.onsets = append(t.onsets, onsetDay)
}

// Bottle is one member of a paired blood-culture draw.
type Bottle struct {
	Positive     bool
	OrganismCode string
	Commensal    bool
}

// PairOutcome classifies a paired blood-culture draw.
type PairOutcome string

const (
	// PairStandardPositive feeds the standard event pathway.
	PairStandardPositive PairOutcome = "standard-positive"
	// PairContamination excludes the draw: one commensal bottle, one negative.
	PairContamination PairOutcome = "contamination"
	// PairMatchingCommensal means both bottles grew the same commensal; the
	// draw qualifies only through the treatment-gated commensal pathway.
	PairMatchingCommensal PairOutcome = "matching-commensal"
	// PairNegative means no bottle was positive.
	PairNegative PairOutcome = "negative"
)

// ClassifyPair applies the paired-culture contamination rule to the bottles
// of one same-timestamp draw. A recognized pathogen in any bottle is a
// standard positive regardless of the other bottle.
func ClassifyPair(res *organism.Resolver, bottles []Bottle) PairOutcome {
	var positives []Bottle
	for _, b := range bottles {
		if b.Positive {
			positives = append(positives, b)
		}
	}
	if len(positives) == 0 {
		return PairNegative
	}
	for _, b := range positives {
		if !b.Commensal {
			return PairStandardPositive
		}
	}
	if len(positives) == 1 {
		return PairContamination
	}
	first := positives[0]
	for _, b := range positives[1:] {
		if !res.SameOrganism(first.OrganismCode, b.OrganismCode) {
			return PairContamination
		}
	}
	return PairMatchingCommensal
}

// CommensalTreatmentGate reports whether a matching-commensal draw is backed
// by sufficient targeted therapy: some antimicrobial identity in the set has
// at least minDays cumulative days of therapy.
func CommensalTreatmentGate(ds *antimicrobial.DaySet, minDays int) bool {
	for ident, n := range ds.DaysOfTherapy() {
		if c, _ := ds.Class(ident); c != terminology.ClassAntimicrobial {
			continue
		}
		if n >= minDays {
			return true
		}
	}
	return false
}

// StayTracker suppresses events whose organism identity matches an earlier
// counted event within the same stay, regardless of onset classification or
// which code value each event used.
type StayTracker struct {
	res     *organism.Resolver
	counted []string
}

// NewStayTracker creates a per-stay matching-prior-organism tracker.
func NewStayTracker(res *organism.Resolver) *StayTracker {
	return &StayTracker{res: res}
}

// Matches reports whether the organism matches any earlier counted event.
func (t *StayTracker) Matches(code string) bool {
	for _, prior := range t.counted {
		if t.res.SameOrganism(prior, code) {
			return true
		}
	}
	return false
}

// Count records a counted event's organism for later matching.
func (t *StayTracker) Count(code string) {
	t.counted = append(t.counted, code)
}
