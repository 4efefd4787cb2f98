package scenario

import (
	"github.com/clinfix/clinfix/internal/domain/antimicrobial"
	"github.com/clinfix/clinfix/internal/domain/dedup"
	"github.com/clinfix/clinfix/internal/domain/onset"
	"github.com/clinfix/clinfix/internal/domain/organdys"
	"github.com/clinfix/clinfix/internal/domain/terminology"
	"github.com/clinfix/clinfix/internal/domain/timeline"
)

// evaluateSepsis resolves the episode onset, classifies it against the day
// boundary, and suppresses later qualifying anchors inside the repeat-event
// timeframe.
func (svc *Service) evaluateSepsis(s Scenario, tl timeline.Timeline) *SepsisOutcome {
	cfg := svc.cfg.Sepsis

	in := organdys.Inputs{
		Timeline:      tl,
		Sex:           s.Sex,
		DiedOrHospice: s.DiedOrHospice(),
	}
	ds := svc.accumulateMedications(tl)
	enc := antimicrobial.Encounter{
		LastDay:              timeline.DayIndex(s.Admitted, s.Discharged),
		DiedOrHospice:        s.DiedOrHospice(),
		DischargedAlive:      !s.DiedOrHospice(),
		PrincipalInfectionDx: svc.hasPrincipalInfectionDx(tl),
	}

	var candidates []onset.Candidate
	for _, e := range tl.OfKind(timeline.KindSpecimen) {
		if e.Organism == "" {
			continue
		}
		candidates = append(candidates, onset.Candidate{
			Kind:         onset.CandidateCulture,
			At:           e.Start,
			OrganismCode: e.Organism,
		})
	}
	for _, e := range tl.OfKind(timeline.KindCondition) {
		if e.Principal && svc.catalog.InValueSet(e.Code, terminology.SetInfectionDiagnoses) {
			candidates = append(candidates, onset.Candidate{
				Kind:               onset.CandidatePrincipalDx,
				At:                 e.Start,
				PresentOnAdmission: e.PresentOnAdmission,
			})
		}
	}

	resolver := onset.NewResolver(organdys.NewEvaluator(svc.catalog, cfg.Organ), cfg.QAD, cfg.Onset)
	res := resolver.Resolve(in, ds, enc, candidates)

	out := &SepsisOutcome{
		Onset:  res,
		QAD:    res.QAD,
		Organs: res.Organs,
	}
	if !res.Found {
		return out
	}

	// Later anchors that would open their own episode are suppressed inside
	// the repeat-event timeframe.
	ret := dedup.NewRETTracker(cfg.RETDays)
	ret.Record(res.OnsetDay)
	for _, c := range candidates {
		day := timeline.DayIndex(s.Admitted, c.At)
		if day <= res.OnsetDay || ret.Allows(day) {
			continue
		}
		if resolver.Resolve(in, ds, enc, []onset.Candidate{c}).Found {
			out.SuppressedOnsetDays = append(out.SuppressedOnsetDays, day)
		}
	}
	return out
}

func (svc *Service) hasPrincipalInfectionDx(tl timeline.Timeline) bool {
	for _, e := range tl.OfKind(timeline.KindCondition) {
		if e.Principal && svc.catalog.InValueSet(e.Code, terminology.SetInfectionDiagnoses) {
			return true
		}
	}
	return false
}
