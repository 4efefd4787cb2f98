package organdys

import (
	"testing"
	"time"

	"github.com/clinfix/clinfix/internal/domain/timeline"
)

func TestCardiovascularStateRanks(t *testing.T) {
	ev := newTestEvaluator()
	in := inputs(
		lab(CodeSBP, 88, onDayAt(4, 20*time.Hour)),
		lab(CodeSBP, 84, onDayAt(4, 22*time.Hour)),
		timeline.ClinicalEvent{Kind: timeline.KindMedication, Code: "norepi", Start: onDayAt(5, 0)},
	)
	if got := ev.CardiovascularStateOn(in, 3); got != StateNone {
		t.Errorf("day 3 state = %v, want none", got)
	}
	if got := ev.CardiovascularStateOn(in, 4); got != StateSupportLow {
		t.Errorf("day 4 state = %v, want hypotension", got)
	}
	if got := ev.CardiovascularStateOn(in, 5); got != StateSupportHigh {
		t.Errorf("day 5 state = %v, want vasopressor", got)
	}
}

func TestNewOrEscalatingComparesPreviousDay(t *testing.T) {
	ev := newTestEvaluator()
	in := inputs(
		lab(CodeSBP, 88, onDayAt(4, 20*time.Hour)),
		lab(CodeSBP, 84, onDayAt(4, 22*time.Hour)),
		timeline.ClinicalEvent{Kind: timeline.KindMedication, Code: "norepi", Start: onDayAt(5, 0)},
	)

	// Day 4 hypotension is new relative to day 3; day 5 vasopressor is an
	// escalation over day 4 hypotension.
	if !ev.NewOrEscalating(in, OrganCardiovascular, 4) {
		t.Error("day 4 hypotension should be new")
	}
	if !ev.NewOrEscalating(in, OrganCardiovascular, 5) {
		t.Error("day 5 vasopressor should escalate over day 4 hypotension")
	}

	// A vasopressor running on consecutive days does not escalate.
	in2 := inputs(
		timeline.ClinicalEvent{Kind: timeline.KindMedication, Code: "norepi", Start: onDayAt(5, 0)},
		timeline.ClinicalEvent{Kind: timeline.KindMedication, Code: "norepi", Start: onDayAt(6, 0)},
	)
	if ev.NewOrEscalating(in2, OrganCardiovascular, 6) {
		t.Error("steady vasopressor state is not new or escalating")
	}
}

func TestRespiratoryStateEscalation(t *testing.T) {
	ev := newTestEvaluator()
	end := onDayAt(5, 12*time.Hour)
	in := inputs(
		timeline.ClinicalEvent{Kind: timeline.KindProcedure, Code: "hfnc", Start: onDayAt(4, 8*time.Hour)},
		timeline.ClinicalEvent{Kind: timeline.KindProcedure, Code: "vent", Start: onDayAt(5, 6*time.Hour), End: &end},
	)
	if got := ev.RespiratoryStateOn(in, 4); got != StateSupportLow {
		t.Errorf("day 4 state = %v, want noninvasive", got)
	}
	if !ev.NewOrEscalating(in, OrganRespiratory, 5) {
		t.Error("intubation after HFNC should escalate")
	}

	// Non-state organs always pass the check.
	if !ev.NewOrEscalating(in, OrganMetabolic, 5) {
		t.Error("metabolic has no day state and must pass")
	}
}
