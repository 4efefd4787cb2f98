package scenario

import (
	"sort"

	"github.com/clinfix/clinfix/internal/domain/dedup"
	"github.com/clinfix/clinfix/internal/domain/timeline"
)

// evaluateHOB classifies every paired blood-culture draw, applies the
// contamination and matching-commensal rules, and suppresses events whose
// organism matches an earlier counted event in the same stay.
func (svc *Service) evaluateHOB(s Scenario, tl timeline.Timeline) *HOBOutcome {
	cfg := svc.cfg.HOB
	out := &HOBOutcome{}

	// Group bottles into draws. Specimens sharing a PairID are one draw;
	// unpaired specimens are single-bottle draws.
	type draw struct {
		pairID  string
		day     int
		bottles []dedup.Bottle
	}
	byPair := map[string]*draw{}
	var draws []*draw
	for _, e := range tl.OfKind(timeline.KindSpecimen) {
		b := dedup.Bottle{
			Positive:     e.Organism != "",
			OrganismCode: e.Organism,
			Commensal:    e.Organism != "" && svc.catalog.InValueSet(e.Organism, cfg.CommensalSet),
		}
		day := timeline.DayIndex(tl.Admission(), e.Start)
		if e.PairID == "" {
			draws = append(draws, &draw{day: day, bottles: []dedup.Bottle{b}})
			continue
		}
		d, ok := byPair[e.PairID]
		if !ok {
			d = &draw{pairID: e.PairID, day: day}
			byPair[e.PairID] = d
			draws = append(draws, d)
		}
		d.bottles = append(d.bottles, b)
	}
	sort.SliceStable(draws, func(i, j int) bool { return draws[i].day < draws[j].day })

	ds := svc.accumulateMedications(tl)
	tracker := dedup.NewStayTracker(svc.resolver)

	for _, d := range draws {
		outcome := dedup.ClassifyPair(svc.resolver, d.bottles)
		out.Draws = append(out.Draws, HOBDraw{PairID: d.pairID, Day: d.day, Outcome: outcome})

		switch outcome {
		case dedup.PairNegative:
			continue
		case dedup.PairContamination:
			out.Contamination = true
			continue
		case dedup.PairMatchingCommensal:
			if !dedup.CommensalTreatmentGate(ds, cfg.CommensalMinTherapyDays) {
				continue
			}
		}

		organism := firstPositive(d.bottles)
		ev := HOBEvent{
			Day:            d.day,
			Organism:       organism,
			Classification: HOBCommunityOnset,
			CommensalPath:  outcome == dedup.PairMatchingCommensal,
			Fungal:         svc.isFungal(organism),
		}
		if d.day >= cfg.HospitalOnsetMinDay {
			ev.Classification = HOBHospitalOnset
		}

		if tracker.Matches(organism) {
			ev.Suppressed = true
			ev.SuppressionReason = "organism matches an earlier counted event in this stay"
		} else {
			tracker.Count(organism)
		}
		out.Events = append(out.Events, ev)
	}

	for _, e := range tl.OfKind(timeline.KindCondition) {
		if svc.catalog.InValueSet(e.Code, cfg.HighRiskSet) {
			out.HighRisk = true
			break
		}
	}
	return out
}

func firstPositive(bottles []dedup.Bottle) string {
	for _, b := range bottles {
		if b.Positive && !b.Commensal {
			return b.OrganismCode
		}
	}
	for _, b := range bottles {
		if b.Positive {
			return b.OrganismCode
		}
	}
	return ""
}

// isFungal reports whether the organism is a Candida species, the fungemia
// pathway's positive path.
func (svc *Service) isFungal(code string) bool {
	ref, ok := svc.catalog.Organism(code)
	return ok && ref.Genus == "Candida"
}
