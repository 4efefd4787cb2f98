package scenario

import (
	"time"

	"github.com/clinfix/clinfix/internal/domain/terminology"
	"github.com/clinfix/clinfix/internal/domain/timeline"
)

// evaluateHypoglycemia applies the glycemic-control measure to every glucose
// reading on the timeline. A reading becomes a counted event when it falls in
// a severity band, an antidiabetic was given inside the association window,
// it was collected during the encounter, and no voiding repeat follows.
func (svc *Service) evaluateHypoglycemia(s Scenario, tl timeline.Timeline) *HypoglycemiaOutcome {
	cfg := svc.cfg.Hypoglycemia
	out := &HypoglycemiaOutcome{Evaluated: true}

	if s.EncounterClass == ClassEmergency && !cfg.IncludeEDOnly {
		out.Evaluated = false
		return out
	}

	var glucoses []timeline.ClinicalEvent
	for _, e := range tl.OfKind(timeline.KindLabResult) {
		if e.Value != nil && svc.catalog.InValueSet(e.Code, cfg.GlucoseSet) {
			glucoses = append(glucoses, e)
		}
	}
	adds := svc.antidiabeticTimes(s, tl)

	for _, g := range glucoses {
		sev, ok := severityOf(*g.Value, cfg.SevereBelow, cfg.ModerateBelow, cfg.MildBelow)
		if !ok {
			continue
		}
		ev := HypoglycemiaEvent{
			Day:      timeline.DayIndex(tl.Admission(), g.Start),
			Value:    *g.Value,
			At:       g.Start,
			Severity: sev,
		}

		for _, a := range adds {
			if !a.at.After(g.Start) && g.Start.Sub(a.at) <= cfg.MedAssociationWindow {
				ev.MedicationAssociated = true
				ev.AssociatedDrug = a.drug
				break
			}
		}

		switch {
		case tl.PreAdmission(g):
			ev.Excluded = true
			ev.ExclusionReason = "glucose collected before encounter start"
		case svc.voidedByRepeat(g, glucoses, cfg.RepeatBGWindow, cfg.RepeatBGAbove):
			ev.Excluded = true
			ev.ExclusionReason = "repeat glucose above threshold within the exclusion window"
		case !ev.MedicationAssociated:
			ev.Excluded = true
			ev.ExclusionReason = "no antidiabetic within the association window"
		}

		for _, later := range glucoses {
			if later.Start.After(g.Start) && *later.Value >= cfg.ResolutionAt {
				ev.Resolved = true
				break
			}
		}

		if !ev.Excluded {
			switch ev.Severity {
			case SeveritySevere:
				out.SevereCount++
			case SeverityModerate:
				out.ModerateCount++
			case SeverityMild:
				out.MildCount++
			}
		}
		out.Events = append(out.Events, ev)
	}
	return out
}

// severityOf bands a glucose value. All band edges are strict upper bounds,
// so a reading of exactly 40 is moderate, never severe.
func severityOf(v, severe, moderate, mild float64) (HypoglycemiaSeverity, bool) {
	switch {
	case v < severe:
		return SeveritySevere, true
	case v < moderate:
		return SeverityModerate, true
	case v < mild:
		return SeverityMild, true
	}
	return "", false
}

type addDose struct {
	drug string
	at   time.Time
}

// antidiabeticTimes collects antidiabetic administrations, shifting doses
// that ended within the pre-admission grace period onto the admission instant
// so an ED dose given just before the inpatient stay still associates.
func (svc *Service) antidiabeticTimes(s Scenario, tl timeline.Timeline) []addDose {
	cfg := svc.cfg.Hypoglycemia
	var out []addDose
	for _, e := range tl.OfKind(timeline.KindMedication) {
		ref, ok := svc.catalog.Drug(e.Code)
		isADD := (ok && ref.Class == terminology.ClassAntidiabetic) ||
			svc.catalog.InValueSet(e.Code, cfg.AntidiabeticSet)
		if !isADD {
			continue
		}
		at := e.Start
		if e.End != nil {
			at = *e.End
		}
		if at.Before(s.Admitted) && s.Admitted.Sub(at) <= cfg.PreAdmissionGrace {
			at = s.Admitted
		}
		drug := e.Code
		if ok {
			drug = ref.Ingredient
		}
		out = append(out, addDose{drug: drug, at: at})
	}
	return out
}

func (svc *Service) voidedByRepeat(g timeline.ClinicalEvent, all []timeline.ClinicalEvent, window time.Duration, above float64) bool {
	for _, r := range all {
		if r.Start.Equal(g.Start) && r.Code == g.Code && r.Value == g.Value {
			continue
		}
		if !r.Start.Before(g.Start) && r.Start.Sub(g.Start) <= window && *r.Value > above {
			return true
		}
	}
	return false
}
