// Package organdys evaluates the six organ dysfunction rule modules of the
// adult sepsis protocol: cardiovascular, respiratory, metabolic, renal,
// hepatic, and coagulation.
package organdys

// Organ names one of the six rule modules.
type Organ string

const (
	OrganCardiovascular Organ = "cardiovascular"
	OrganRespiratory    Organ = "respiratory"
	OrganMetabolic      Organ = "metabolic"
	OrganRenal          Organ = "renal"
	OrganHepatic        Organ = "hepatic"
	OrganCoagulation    Organ = "coagulation"
)

// Status is the tri-state-plus-exclusion outcome of one organ module.
// NotEvaluated (missing baseline data) is distinct from Negative (ruled out
// by data), and Excluded (ruled out by policy) is distinct from both.
type Status string

const (
	StatusNotEvaluated Status = "not-evaluated"
	StatusExcluded     Status = "excluded-by-condition"
	StatusPositive     Status = "positive"
	StatusNegative     Status = "negative"
)

// Result is one organ's evaluation for one anchor window.
type Result struct {
	Organ           Organ  `json:"organ"`
	Status          Status `json:"status"`
	Evidence        string `json:"evidence,omitempty"`
	ExclusionReason string `json:"exclusion_reason,omitempty"`

	// SuppressedPositive records, for audit, that the raw values crossed the
	// threshold but the condition exclusion gated the result. An excluded
	// organ never reports positive.
	SuppressedPositive bool `json:"suppressed_positive,omitempty"`
}

// Positive reports whether the organ contributes to the episode decision.
func (r Result) Positive() bool { return r.Status == StatusPositive }

// EpisodeClass selects the baseline rules: community-onset episodes baseline
// against the whole encounter, hospital-onset episodes against the anchor
// window only.
type EpisodeClass string

const (
	ClassCommunityOnset EpisodeClass = "community-onset"
	ClassHospitalOnset  EpisodeClass = "hospital-onset"
)

// AnyPositive reports whether at least one non-excluded organ is positive.
func AnyPositive(results []Result) bool {
	for _, r := range results {
		if r.Positive() {
			return true
		}
	}
	return false
}
