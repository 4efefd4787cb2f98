package organdys

import (
	"fmt"
	"time"

	"github.com/clinfix/clinfix/internal/domain/terminology"
	"github.com/clinfix/clinfix/internal/domain/timeline"
)

// LOINC codes for the observations the organ modules consume.
const (
	CodeCreatinine = "2160-0"
	CodeBilirubin  = "1975-2"
	CodePlatelets  = "777-3"
	CodeLactate    = "2524-7"
	CodeSBP        = "8480-6"
	CodeMAP        = "8478-0"
)

// CodeLookup is the catalog surface the evaluator consumes.
type CodeLookup interface {
	InValueSet(code, setID string) bool
	Drug(code string) (terminology.DrugRef, bool)
}

// Config carries the protocol's organ dysfunction thresholds. Values are the
// adult sepsis surveillance defaults; protocols inject their own copies.
type Config struct {
	LactateThreshold float64

	SBPThreshold           float64
	MAPThreshold           float64
	HypotensionSpan        time.Duration
	HypotensionMinReadings int
	VasopressorLookback    int // calendar days a vasopressor must be absent to count as new

	CreatinineRatio       float64
	CreatinineFloorMale   float64
	CreatinineFloorFemale float64

	BilirubinRatio    float64
	BilirubinAbsolute float64

	PlateletDropRatio   float64
	PlateletAbsolute    float64
	PlateletBaselineMin float64

	NoninvasiveMinDays int

	// Protocol-fixed normal values used as community-onset baselines when the
	// patient died or went to hospice without sufficient data.
	DefaultCreatinineBaseline float64
	DefaultBilirubinBaseline  float64
	DefaultPlateletBaseline   float64
}

// DefaultConfig returns the adult sepsis organ dysfunction thresholds.
func DefaultConfig() Config {
	return Config{
		LactateThreshold:          2.0,
		SBPThreshold:              90,
		MAPThreshold:              65,
		HypotensionSpan:           3 * time.Hour,
		HypotensionMinReadings:    2,
		VasopressorLookback:       1,
		CreatinineRatio:           2.0,
		CreatinineFloorMale:       1.18,
		CreatinineFloorFemale:     1.02,
		BilirubinRatio:            2.0,
		BilirubinAbsolute:         2.0,
		PlateletDropRatio:         0.5,
		PlateletAbsolute:          100,
		PlateletBaselineMin:       100,
		NoninvasiveMinDays:        2,
		DefaultCreatinineBaseline: 1.0,
		DefaultBilirubinBaseline:  1.0,
		DefaultPlateletBaseline:   200,
	}
}

// Inputs carries one patient's typed event streams plus the encounter facts
// the baseline rules consult.
type Inputs struct {
	Timeline      timeline.Timeline
	Sex           string // "male" or "female"
	DiedOrHospice bool
}

// Evaluator runs the six organ modules against an anchor window. It holds
// only the injected catalog and config and is safe for concurrent use.
type Evaluator struct {
	lookup CodeLookup
	cfg    Config
}

// NewEvaluator creates an evaluator over the given catalog surface.
func NewEvaluator(lookup CodeLookup, cfg Config) *Evaluator {
	return &Evaluator{lookup: lookup, cfg: cfg}
}

// Evaluate runs all six organ modules for the window centered on anchorDay
// (one calendar day on each side) under the given episode class.
func (ev *Evaluator) Evaluate(in Inputs, anchorDay int, class EpisodeClass) []Result {
	return []Result{
		ev.Cardiovascular(in, anchorDay),
		ev.Respiratory(in, anchorDay),
		ev.Metabolic(in, anchorDay),
		ev.Renal(in, anchorDay, class),
		ev.Hepatic(in, anchorDay, class),
		ev.Coagulation(in, anchorDay, class),
	}
}

func (ev *Evaluator) inWindow(in Inputs, e timeline.ClinicalEvent, anchorDay int) bool {
	d := timeline.DayIndex(in.Timeline.Admission(), e.Start)
	return d >= anchorDay-1 && d <= anchorDay+1
}

// labValues returns (value, timestamp) pairs of one lab code, optionally
// limited to the anchor window.
func (ev *Evaluator) labValues(in Inputs, code string, anchorDay int, windowOnly bool) []timeline.ClinicalEvent {
	var out []timeline.ClinicalEvent
	for _, e := range in.Timeline.OfKind(timeline.KindLabResult) {
		if e.Code != code || e.Value == nil {
			continue
		}
		if windowOnly && !ev.inWindow(in, e, anchorDay) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Cardiovascular is positive on >=2 low blood-pressure readings inside a
// 3-hour span within the window, or on a vasopressor started in the window
// that was absent the prior calendar day.
func (ev *Evaluator) Cardiovascular(in Inputs, anchorDay int) Result {
	res := Result{Organ: OrganCardiovascular, Status: StatusNegative}

	var lows []time.Time
	for _, e := range in.Timeline.OfKind(timeline.KindLabResult) {
		if e.Value == nil || !ev.inWindow(in, e, anchorDay) {
			continue
		}
		if (e.Code == CodeSBP && *e.Value < ev.cfg.SBPThreshold) ||
			(e.Code == CodeMAP && *e.Value < ev.cfg.MAPThreshold) {
			lows = append(lows, e.Start)
		}
	}
	for i := range lows {
		n := 1
		for j := range lows {
			if i == j {
				continue
			}
			gap := lows[j].Sub(lows[i])
			if gap < 0 {
				gap = -gap
			}
			if gap <= ev.cfg.HypotensionSpan {
				n++
			}
		}
		if n >= ev.cfg.HypotensionMinReadings {
			res.Status = StatusPositive
			res.Evidence = fmt.Sprintf("%d hypotensive readings within %s", n, ev.cfg.HypotensionSpan)
			return res
		}
	}

	if day, ok := ev.newVasopressorDay(in, anchorDay-1, anchorDay+1); ok {
		res.Status = StatusPositive
		res.Evidence = fmt.Sprintf("new vasopressor started on day %d", day)
	}
	return res
}

// newVasopressorDay finds the first day in [fromDay, toDay] with a
// vasopressor administration and none on the preceding lookback days.
func (ev *Evaluator) newVasopressorDay(in Inputs, fromDay, toDay int) (int, bool) {
	given := make(map[int]bool)
	for _, e := range in.Timeline.OfKind(timeline.KindMedication) {
		ref, ok := ev.lookup.Drug(e.Code)
		if !ok || ref.Class != terminology.ClassVasopressor {
			continue
		}
		for _, d := range e.SpansDays(in.Timeline.Admission()) {
			given[d] = true
		}
	}
	for d := fromDay; d <= toDay; d++ {
		if !given[d] {
			continue
		}
		isNew := true
		for back := 1; back <= ev.cfg.VasopressorLookback; back++ {
			if given[d-back] {
				isNew = false
			}
		}
		if isNew {
			return d, true
		}
	}
	return 0, false
}

// Respiratory is positive on invasive ventilation of any duration in the
// window, or noninvasive/high-flow support spanning at least two distinct
// calendar days.
func (ev *Evaluator) Respiratory(in Inputs, anchorDay int) Result {
	res := Result{Organ: OrganRespiratory, Status: StatusNegative}
	nivDays := make(map[int]bool)
	for _, e := range in.Timeline.OfKind(timeline.KindProcedure) {
		days := e.SpansDays(in.Timeline.Admission())
		touches := false
		for _, d := range days {
			if d >= anchorDay-1 && d <= anchorDay+1 {
				touches = true
			}
		}
		if !touches {
			continue
		}
		if ev.lookup.InValueSet(e.Code, terminology.SetInvasiveVentilation) {
			res.Status = StatusPositive
			res.Evidence = "invasive ventilation in window"
			return res
		}
		if ev.lookup.InValueSet(e.Code, terminology.SetNoninvasiveSupport) {
			for _, d := range days {
				nivDays[d] = true
			}
		}
	}
	if len(nivDays) >= ev.cfg.NoninvasiveMinDays {
		res.Status = StatusPositive
		res.Evidence = fmt.Sprintf("noninvasive support on %d distinct days", len(nivDays))
	}
	return res
}

// Metabolic is positive on any lactate above threshold in the window.
func (ev *Evaluator) Metabolic(in Inputs, anchorDay int) Result {
	res := Result{Organ: OrganMetabolic, Status: StatusNegative}
	for _, e := range ev.labValues(in, CodeLactate, anchorDay, true) {
		if *e.Value > ev.cfg.LactateThreshold {
			res.Status = StatusPositive
			res.Evidence = fmt.Sprintf("lactate %.1f mmol/L", *e.Value)
			return res
		}
	}
	return res
}

// Renal is positive on creatinine at least doubled from baseline and above
// the sex-specific floor. ESRD excludes the organ.
func (ev *Evaluator) Renal(in Inputs, anchorDay int, class EpisodeClass) Result {
	res := Result{Organ: OrganRenal, Status: StatusNegative}

	floor := ev.cfg.CreatinineFloorMale
	if in.Sex == "female" {
		floor = ev.cfg.CreatinineFloorFemale
	}

	baseline, ok := ev.lowBaseline(in, CodeCreatinine, anchorDay, class, ev.cfg.DefaultCreatinineBaseline)
	raw := StatusNotEvaluated
	evidence := ""
	if ok {
		for _, e := range ev.labValues(in, CodeCreatinine, anchorDay, true) {
			if *e.Value >= ev.cfg.CreatinineRatio*baseline && *e.Value > floor {
				raw = StatusPositive
				evidence = fmt.Sprintf("creatinine %.2f vs baseline %.2f", *e.Value, baseline)
				break
			}
			raw = StatusNegative
		}
		if raw == StatusNotEvaluated {
			evidence = "no creatinine in window"
		}
	} else {
		evidence = "no creatinine baseline"
	}

	return ev.gate(res, raw, evidence, in, terminology.SetESRD, "end-stage renal disease present")
}

// Hepatic is positive on bilirubin at least doubled from baseline and above
// the absolute threshold. Moderate/severe liver disease excludes the organ.
func (ev *Evaluator) Hepatic(in Inputs, anchorDay int, class EpisodeClass) Result {
	res := Result{Organ: OrganHepatic, Status: StatusNegative}

	baseline, ok := ev.lowBaseline(in, CodeBilirubin, anchorDay, class, ev.cfg.DefaultBilirubinBaseline)
	raw := StatusNotEvaluated
	evidence := ""
	if ok {
		for _, e := range ev.labValues(in, CodeBilirubin, anchorDay, true) {
			if *e.Value >= ev.cfg.BilirubinRatio*baseline && *e.Value >= ev.cfg.BilirubinAbsolute {
				raw = StatusPositive
				evidence = fmt.Sprintf("bilirubin %.1f vs baseline %.1f", *e.Value, baseline)
				break
			}
			raw = StatusNegative
		}
		if raw == StatusNotEvaluated {
			evidence = "no bilirubin in window"
		}
	} else {
		evidence = "no bilirubin baseline"
	}

	return ev.gate(res, raw, evidence, in, terminology.SetSevereLiverDisease, "moderate or severe liver disease present")
}

// Coagulation is positive on a platelet count at least halved from baseline
// and below the absolute threshold. Hematologic or solid malignancy excludes
// the organ. For hospital-onset evaluation the baseline itself must be at
// least PlateletBaselineMin or the criterion cannot be evaluated.
func (ev *Evaluator) Coagulation(in Inputs, anchorDay int, class EpisodeClass) Result {
	res := Result{Organ: OrganCoagulation, Status: StatusNegative}

	baseline, ok := ev.highBaseline(in, CodePlatelets, anchorDay, class, ev.cfg.DefaultPlateletBaseline)
	raw := StatusNotEvaluated
	evidence := ""
	switch {
	case !ok:
		evidence = "no platelet baseline"
	case class == ClassHospitalOnset && baseline < ev.cfg.PlateletBaselineMin:
		evidence = fmt.Sprintf("platelet baseline %.0f below evaluable minimum", baseline)
	default:
		for _, e := range ev.labValues(in, CodePlatelets, anchorDay, true) {
			if *e.Value <= (1-ev.cfg.PlateletDropRatio)*baseline && *e.Value < ev.cfg.PlateletAbsolute {
				raw = StatusPositive
				evidence = fmt.Sprintf("platelets %.0f vs baseline %.0f", *e.Value, baseline)
				break
			}
			raw = StatusNegative
		}
		if raw == StatusNotEvaluated {
			evidence = "no platelet count in window"
		}
	}

	return ev.gate(res, raw, evidence, in, terminology.SetMalignancy, "hematologic or solid malignancy present")
}

// gate applies the condition exclusion after threshold evaluation so the
// result can record what it suppressed.
func (ev *Evaluator) gate(res Result, raw Status, evidence string, in Inputs, setID, reason string) Result {
	res.Status = raw
	res.Evidence = evidence
	for _, c := range in.Timeline.OfKind(timeline.KindCondition) {
		if ev.lookup.InValueSet(c.Code, setID) {
			res.Status = StatusExcluded
			res.ExclusionReason = reason
			res.SuppressedPositive = raw == StatusPositive
			res.Evidence = evidence
			return res
		}
	}
	return res
}

// lowBaseline computes a most-favorable (lowest) baseline for creatinine and
// bilirubin. Community-onset episodes baseline over the whole encounter and
// may fall back to the protocol default when the patient died or went to
// hospice without data, unless a comorbidity marks an abnormal baseline as
// expected. Hospital-onset episodes baseline strictly within the window.
func (ev *Evaluator) lowBaseline(in Inputs, code string, anchorDay int, class EpisodeClass, def float64) (float64, bool) {
	windowOnly := class == ClassHospitalOnset
	best := 0.0
	found := false
	for _, e := range ev.labValues(in, code, anchorDay, windowOnly) {
		if !found || *e.Value < best {
			best = *e.Value
			found = true
		}
	}
	// A patient who died or went to hospice may have no favorable value on
	// record at all; the protocol then assumes a normal baseline rather than
	// letting the dysfunction value baseline against itself — unless a
	// comorbidity says an abnormal baseline is expected.
	if class == ClassCommunityOnset && in.DiedOrHospice && !ev.abnormalBaselineExpected(in) {
		if !found || def < best {
			return def, true
		}
	}
	return best, found
}

// highBaseline is the platelet variant: the most favorable value is the
// highest count.
func (ev *Evaluator) highBaseline(in Inputs, code string, anchorDay int, class EpisodeClass, def float64) (float64, bool) {
	windowOnly := class == ClassHospitalOnset
	best := 0.0
	found := false
	for _, e := range ev.labValues(in, code, anchorDay, windowOnly) {
		if !found || *e.Value > best {
			best = *e.Value
			found = true
		}
	}
	if class == ClassCommunityOnset && in.DiedOrHospice && !ev.abnormalBaselineExpected(in) {
		if !found || def > best {
			return def, true
		}
	}
	return best, found
}

func (ev *Evaluator) abnormalBaselineExpected(in Inputs) bool {
	for _, c := range in.Timeline.OfKind(timeline.KindCondition) {
		if ev.lookup.InValueSet(c.Code, terminology.SetAbnormalBaseline) {
			return true
		}
	}
	return false
}
