// Package onset determines the earliest day an episode meets both infection
// evidence and organ dysfunction criteria, and classifies it as community- or
// hospital-onset against the protocol day boundary.
package onset

import (
	"sort"
	"time"

	"github.com/clinfix/clinfix/internal/domain/antimicrobial"
	"github.com/clinfix/clinfix/internal/domain/organdys"
	"github.com/clinfix/clinfix/internal/domain/timeline"
)

// Classification tags where in the stay the episode began.
type Classification string

const (
	ClassificationNone      Classification = "none"
	ClassificationCommunity Classification = "community-onset"
	ClassificationHospital  Classification = "hospital-onset"
)

// CandidateKind discriminates anchor evidence types.
type CandidateKind string

const (
	CandidateCulture     CandidateKind = "culture"
	CandidatePrincipalDx CandidateKind = "principal-diagnosis"
)

// Candidate is one potential infection-evidence anchor.
type Candidate struct {
	Kind               CandidateKind
	At                 time.Time
	OrganismCode       string
	PresentOnAdmission bool
}

// Config carries the protocol's onset parameters.
type Config struct {
	CommunityMaxDay  int // last day of community onset, normally 3
	WindowRadiusDays int // organ/QAD pairing radius around the anchor, normally 1
}

// DefaultConfig returns the adult sepsis onset parameters.
func DefaultConfig() Config {
	return Config{CommunityMaxDay: 3, WindowRadiusDays: 1}
}

// Resolution is the resolver's outcome for one timeline.
type Resolution struct {
	Found          bool                 `json:"found"`
	OnsetDay       int                  `json:"onset_day,omitempty"`
	Classification Classification       `json:"classification"`
	AnchorKind     CandidateKind        `json:"anchor_kind,omitempty"`
	OrganismCode   string               `json:"organism_code,omitempty"`
	QAD            antimicrobial.Result `json:"qad"`
	Organs         []organdys.Result    `json:"organs,omitempty"`
	Reason         string               `json:"reason,omitempty"`
}

// Resolver pairs anchor candidates with QAD courses and organ dysfunction.
type Resolver struct {
	organs *organdys.Evaluator
	qadCfg antimicrobial.Config
	cfg    Config
}

// NewResolver creates an onset resolver.
func NewResolver(organs *organdys.Evaluator, qadCfg antimicrobial.Config, cfg Config) *Resolver {
	return &Resolver{organs: organs, qadCfg: qadCfg, cfg: cfg}
}

// Resolve walks anchor candidates in day order and returns the first day on
// which infection evidence and at least one non-excluded positive organ are
// simultaneously satisfied. Principal-diagnosis anchors only support
// community-onset classification; for hospital-onset anchors, cardiovascular
// and respiratory positivity must be new or escalating relative to the
// preceding calendar day.
func (r *Resolver) Resolve(in organdys.Inputs, ds *antimicrobial.DaySet, enc antimicrobial.Encounter, candidates []Candidate) Resolution {
	res := Resolution{Classification: ClassificationNone, Reason: "no qualifying anchor"}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	for _, c := range sorted {
		day := timeline.DayIndex(in.Timeline.Admission(), c.At)
		if day < 1 {
			continue // pre-admission anchors are flagged upstream, never qualify
		}

		class := organdys.ClassHospitalOnset
		tag := ClassificationHospital
		if day <= r.cfg.CommunityMaxDay {
			class = organdys.ClassCommunityOnset
			tag = ClassificationCommunity
		}

		if c.Kind == CandidatePrincipalDx {
			if tag != ClassificationCommunity || !c.PresentOnAdmission {
				continue
			}
		}

		qad := antimicrobial.EvaluateAny(ds, r.qadCfg, day, enc)
		if !qad.Satisfied {
			res.Reason = "no QAD-satisfying course anchored at evidence"
			res.QAD = qad
			continue
		}

		organs := r.organs.Evaluate(in, day, class)
		if !r.organQualifies(in, organs, day, tag) {
			res.Reason = "no qualifying organ dysfunction within the window"
			res.Organs = organs
			res.QAD = qad
			continue
		}

		return Resolution{
			Found:          true,
			OnsetDay:       day,
			Classification: tag,
			AnchorKind:     c.Kind,
			OrganismCode:   c.OrganismCode,
			QAD:            qad,
			Organs:         organs,
		}
	}
	return res
}

func (r *Resolver) organQualifies(in organdys.Inputs, organs []organdys.Result, day int, tag Classification) bool {
	for _, o := range organs {
		if !o.Positive() {
			continue
		}
		if tag == ClassificationHospital && !r.escalatesNear(in, o.Organ, day) {
			continue
		}
		return true
	}
	return false
}

// escalatesNear checks the new-or-escalating requirement on any day of the
// anchor window.
func (r *Resolver) escalatesNear(in organdys.Inputs, organ organdys.Organ, day int) bool {
	for d := day - r.cfg.WindowRadiusDays; d <= day+r.cfg.WindowRadiusDays; d++ {
		if r.organs.NewOrEscalating(in, organ, d) {
			return true
		}
	}
	return false
}
