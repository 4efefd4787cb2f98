package scenario

import (
	"strings"

	"github.com/clinfix/clinfix/internal/domain/antimicrobial"
	"github.com/clinfix/clinfix/internal/domain/dedup"
	"github.com/clinfix/clinfix/internal/domain/terminology"
	"github.com/clinfix/clinfix/internal/domain/timeline"
)

// evaluateAUR produces the antimicrobial-use totals and the deduplicated,
// phenotype-tagged resistance isolates for one scenario.
func (svc *Service) evaluateAUR(s Scenario, tl timeline.Timeline) *AUROutcome {
	ds := svc.accumulateMedications(tl)

	out := &AUROutcome{
		DaysOfTherapy:      map[string]int{},
		RouteDaysOfTherapy: map[string]map[terminology.RouteClass]int{},
	}
	routeDays := ds.RouteDaysOfTherapy()
	for ident, n := range ds.DaysOfTherapy() {
		if c, _ := ds.Class(ident); c != terminology.ClassAntimicrobial {
			continue
		}
		out.DaysOfTherapy[ident] = n
		out.RouteDaysOfTherapy[ident] = routeDays[ident]
	}

	var isolates []dedup.Isolate
	for _, e := range tl.OfKind(timeline.KindSpecimen) {
		if e.Organism == "" {
			continue // no growth
		}
		isolates = append(isolates, dedup.Isolate{
			OrganismCode: e.Organism,
			SpecimenType: e.SpecimenType,
			CollectedAt:  e.Start,
			Invasive:     svc.catalog.InValueSet(e.SpecimenType, terminology.SetInvasiveSpecimens),
		})
	}
	for _, o := range dedup.DeduplicateIsolates(svc.resolver, svc.cfg.AUR.AR, isolates) {
		out.Isolates = append(out.Isolates, ARIsolate{
			IsolateOutcome: o,
			Day:            timeline.DayIndex(tl.Admission(), o.Isolate.CollectedAt),
			Phenotype:      svc.phenotypeOf(o.Isolate.OrganismCode),
		})
	}
	return out
}

// phenotypeOf tags resistance-phenotype organism codes with their pattern.
func (svc *Service) phenotypeOf(code string) ResistancePhenotype {
	ref, ok := svc.catalog.Organism(code)
	if !ok || ref.Class != terminology.IdentityPhenotype {
		return ""
	}
	switch {
	case strings.Contains(ref.Display, "Methicillin resistant"):
		return PhenotypeMRSA
	case strings.Contains(ref.Display, "Carbapenem resistant"):
		return PhenotypeCR
	}
	return ""
}

// accumulateMedications folds the timeline's administrations into a day set.
func (svc *Service) accumulateMedications(tl timeline.Timeline) *antimicrobial.DaySet {
	var admins []antimicrobial.Administration
	for _, e := range tl.OfKind(timeline.KindMedication) {
		admins = append(admins, antimicrobial.Administration{
			DrugCode:  e.Code,
			RouteCode: e.Route,
			GivenAt:   e.Start,
		})
	}
	return antimicrobial.Accumulate(svc.catalog, tl.Admission(), admins)
}
