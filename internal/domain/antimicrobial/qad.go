package antimicrobial

import (
	"sort"

	"github.com/clinfix/clinfix/internal/domain/terminology"
)

// SatisfactionPath names how a QAD requirement was met. Alternate paths are
// explicit, never silent overrides of the default minimum.
type SatisfactionPath string

const (
	PathStandard             SatisfactionPath = "standard-minimum-days"
	PathDeathOrHospice       SatisfactionPath = "death-or-hospice-on-therapy"
	PathDischargeOnTherapy   SatisfactionPath = "discharge-on-therapy"
	PathPrincipalDxShortStay SatisfactionPath = "principal-diagnosis-short-course"
)

// Config carries the protocol's QAD parameters.
type Config struct {
	MinDays                int  // consecutive-day minimum, normally 4
	PriorAbsenceDays       int  // "new antimicrobial" lookback, normally 2
	GapToleranceDays       int  // tolerated gap inside a streak, normally 1
	AllowTerminalException bool // death/hospice/discharge while on therapy
	PrincipalDxMinDays     int  // shorter minimum when discharged alive with a qualifying principal dx (0 = disabled)
}

// DefaultConfig returns the standard QAD parameters.
func DefaultConfig() Config {
	return Config{
		MinDays:                4,
		PriorAbsenceDays:       2,
		GapToleranceDays:       1,
		AllowTerminalException: true,
		PrincipalDxMinDays:     3,
	}
}

// Encounter carries the encounter-level facts QAD exception paths consult.
type Encounter struct {
	LastDay              int // day index of discharge or death
	DiedOrHospice        bool
	DischargedAlive      bool
	PrincipalInfectionDx bool
}

// Result reports one drug's QAD evaluation.
type Result struct {
	Identity   string           `json:"identity"`
	Satisfied  bool             `json:"satisfied"`
	Path       SatisfactionPath `json:"path,omitempty"`
	StartDay   int              `json:"start_day,omitempty"`
	StreakDays int              `json:"streak_days,omitempty"`
	Days       []int            `json:"days,omitempty"`
	NewCourse  bool             `json:"new_course"`
	Parenteral bool             `json:"parenteral"`
	Reason     string           `json:"reason,omitempty"`
}

// QualifyingDays returns the administered days of a drug within [startDay,
// endDay], the raw material for streak evaluation.
func QualifyingDays(ds *DaySet, identity string, startDay, endDay int) []int {
	var out []int
	for _, d := range ds.Days(identity) {
		if d >= startDay && d <= endDay {
			out = append(out, d)
		}
	}
	return out
}

// streak is a run of administered days where gaps of at most
// cfg.GapToleranceDays missing days do not break continuity. Tolerated gap
// days still count toward the streak length.
type streak struct {
	first, last int
	admins      []int
}

func (s streak) length() int { return s.last - s.first + 1 }

func streaksOf(days []int, gapTolerance int) []streak {
	if len(days) == 0 {
		return nil
	}
	sorted := make([]int, len(days))
	copy(sorted, days)
	sort.Ints(sorted)

	var out []streak
	cur := streak{first: sorted[0], last: sorted[0], admins: []int{sorted[0]}}
	for _, d := range sorted[1:] {
		if d-cur.last-1 <= gapTolerance {
			cur.last = d
			cur.admins = append(cur.admins, d)
			continue
		}
		out = append(out, cur)
		cur = streak{first: d, last: d, admins: []int{d}}
	}
	return append(out, cur)
}

// Evaluate evaluates the QAD requirement for one drug identity against a
// course anchored at anchorDay: the streak must start within one calendar day
// of the anchor, the drug must be new (absent the prior PriorAbsenceDays
// days), and at least one administration in the streak must be parenteral.
func Evaluate(ds *DaySet, cfg Config, identity string, anchorDay int, enc Encounter) Result {
	res := Result{Identity: identity}

	days := ds.Days(identity)
	if len(days) == 0 {
		res.Reason = "no administrations"
		return res
	}

	for _, st := range streaksOf(days, cfg.GapToleranceDays) {
		if st.first < anchorDay-1 || st.first > anchorDay+1 {
			continue
		}

		res.StartDay = st.first
		res.StreakDays = st.length()
		res.Days = st.admins

		res.NewCourse = true
		for back := 1; back <= cfg.PriorAbsenceDays; back++ {
			if ds.Present(identity, st.first-back) {
				res.NewCourse = false
			}
		}
		if !res.NewCourse {
			res.Reason = "not a new antimicrobial: given in the prior 2 calendar days"
			return res
		}

		for _, d := range st.admins {
			if ds.HasRoute(identity, d, terminology.RouteParenteral) {
				res.Parenteral = true
				break
			}
		}
		if !res.Parenteral {
			res.Reason = "no parenteral administration in the course"
			return res
		}

		if st.length() >= cfg.MinDays {
			res.Satisfied = true
			res.Path = PathStandard
			return res
		}

		// Alternate satisfaction paths for courses cut short by the
		// encounter ending. The streak must run to the last hospital day.
		onTherapyAtEnd := st.last >= enc.LastDay
		if cfg.AllowTerminalException && onTherapyAtEnd && enc.DiedOrHospice {
			res.Satisfied = true
			res.Path = PathDeathOrHospice
			return res
		}
		if cfg.PrincipalDxMinDays > 0 && enc.DischargedAlive && enc.PrincipalInfectionDx &&
			onTherapyAtEnd && st.length() >= cfg.PrincipalDxMinDays {
			res.Satisfied = true
			res.Path = PathPrincipalDxShortStay
			return res
		}
		if cfg.AllowTerminalException && onTherapyAtEnd && enc.DischargedAlive {
			res.Satisfied = true
			res.Path = PathDischargeOnTherapy
			return res
		}

		res.Reason = "streak shorter than required minimum"
		return res
	}

	res.Reason = "no course starts within one day of the anchor"
	return res
}

// EvaluateAny evaluates every antimicrobial identity in the set against the
// anchor and returns the first satisfying result, or the most advanced
// failure for audit.
func EvaluateAny(ds *DaySet, cfg Config, anchorDay int, enc Encounter) Result {
	best := Result{Reason: "no antimicrobial administrations"}
	seen := false
	for _, ident := range ds.Identities() {
		if class, _ := ds.Class(ident); class != terminology.ClassAntimicrobial {
			continue
		}
		r := Evaluate(ds, cfg, ident, anchorDay, enc)
		if r.Satisfied {
			return r
		}
		if !seen || r.StreakDays > best.StreakDays {
			best = r
		}
		seen = true
	}
	return best
}
