package organdys

import (
	"github.com/clinfix/clinfix/internal/domain/terminology"
	"github.com/clinfix/clinfix/internal/domain/timeline"
)

// StateRank orders cardiovascular and respiratory support states so that
// hospital-onset evaluation can ask whether a day represents a new or
// escalating state relative to the previous calendar day, not just a
// point-in-time threshold crossing.
type StateRank int

const (
	StateNone StateRank = iota
	StateSupportLow     // hypotension, or noninvasive respiratory support
	StateSupportHigh    // vasopressor, or invasive ventilation
)

// CardiovascularStateOn ranks the cardiovascular state of one calendar day.
func (ev *Evaluator) CardiovascularStateOn(in Inputs, day int) StateRank {
	for _, e := range in.Timeline.OfKind(timeline.KindMedication) {
		ref, ok := ev.lookup.Drug(e.Code)
		if !ok || ref.Class != terminology.ClassVasopressor {
			continue
		}
		for _, d := range e.SpansDays(in.Timeline.Admission()) {
			if d == day {
				return StateSupportHigh
			}
		}
	}

	var lows []timeline.ClinicalEvent
	for _, e := range in.Timeline.OfKind(timeline.KindLabResult) {
		if e.Value == nil || timeline.DayIndex(in.Timeline.Admission(), e.Start) != day {
			continue
		}
		if (e.Code == CodeSBP && *e.Value < ev.cfg.SBPThreshold) ||
			(e.Code == CodeMAP && *e.Value < ev.cfg.MAPThreshold) {
			lows = append(lows, e)
		}
	}
	for i := range lows {
		n := 1
		for j := range lows {
			if i == j {
				continue
			}
			gap := lows[j].Start.Sub(lows[i].Start)
			if gap < 0 {
				gap = -gap
			}
			if gap <= ev.cfg.HypotensionSpan {
				n++
			}
		}
		if n >= ev.cfg.HypotensionMinReadings {
			return StateSupportLow
		}
	}
	return StateNone
}

// RespiratoryStateOn ranks the respiratory support state of one calendar day.
func (ev *Evaluator) RespiratoryStateOn(in Inputs, day int) StateRank {
	rank := StateNone
	for _, e := range in.Timeline.OfKind(timeline.KindProcedure) {
		touches := false
		for _, d := range e.SpansDays(in.Timeline.Admission()) {
			if d == day {
				touches = true
			}
		}
		if !touches {
			continue
		}
		if ev.lookup.InValueSet(e.Code, terminology.SetInvasiveVentilation) {
			return StateSupportHigh
		}
		if ev.lookup.InValueSet(e.Code, terminology.SetNoninvasiveSupport) && rank < StateSupportLow {
			rank = StateSupportLow
		}
	}
	return rank
}

// NewOrEscalating reports whether the organ's state on the given day exceeds
// its state on the immediately preceding calendar day. Only cardiovascular
// and respiratory carry day states; other organs always pass the check.
func (ev *Evaluator) NewOrEscalating(in Inputs, organ Organ, day int) bool {
	switch organ {
	case OrganCardiovascular:
		return ev.CardiovascularStateOn(in, day) > ev.CardiovascularStateOn(in, day-1)
	case OrganRespiratory:
		return ev.RespiratoryStateOn(in, day) > ev.RespiratoryStateOn(in, day-1)
	}
	return true
}
