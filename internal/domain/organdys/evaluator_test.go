package organdys

import (
	"testing"
	"time"

	"github.com/clinfix/clinfix/internal/domain/terminology"
	"github.com/clinfix/clinfix/internal/domain/timeline"
)

// mockLookup is a hand-rolled catalog surface for organ module tests.
type mockLookup struct {
	sets  map[string]map[string]bool
	drugs map[string]terminology.DrugRef
}

func newMockLookup() *mockLookup {
	return &mockLookup{
		sets: map[string]map[string]bool{
			terminology.SetESRD:               {"esrd": true},
			terminology.SetSevereLiverDisease: {"cirrhosis": true},
			terminology.SetMalignancy:         {"aml": true},
			terminology.SetInvasiveVentilation: {"vent": true},
			terminology.SetNoninvasiveSupport:  {"niv": true, "hfnc": true},
			terminology.SetAbnormalBaseline:    {"esrd": true, "cirrhosis": true},
		},
		drugs: map[string]terminology.DrugRef{
			"norepi": {Code: "norepi", Ingredient: "norepinephrine", Class: terminology.ClassVasopressor},
			"mero":   {Code: "mero", Ingredient: "meropenem", Class: terminology.ClassAntimicrobial},
		},
	}
}

func (m *mockLookup) InValueSet(code, setID string) bool { return m.sets[setID][code] }

func (m *mockLookup) Drug(code string) (terminology.DrugRef, bool) {
	d, ok := m.drugs[code]
	return d, ok
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func fv(v float64) *float64 { return &v }

var admit = ts("2025-01-02T08:00:00Z")

// onDayAt places an event on the given hospital day at an hour offset.
func onDayAt(day int, hours time.Duration) time.Time {
	return time.Date(2025, 1, 1+day, 0, 0, 0, 0, time.UTC).Add(hours)
}

func lab(code string, v float64, at time.Time) timeline.ClinicalEvent {
	return timeline.ClinicalEvent{Kind: timeline.KindLabResult, Code: code, Value: fv(v), Start: at}
}

func inputs(events ...timeline.ClinicalEvent) Inputs {
	return Inputs{
		Timeline: timeline.New(admit, ts("2025-01-14T12:00:00Z"), events),
		Sex:      "male",
	}
}

func newTestEvaluator() *Evaluator { return NewEvaluator(newMockLookup(), DefaultConfig()) }

func TestCardiovascularHypotensionPair(t *testing.T) {
	ev := newTestEvaluator()

	in := inputs(
		lab(CodeSBP, 85, onDayAt(3, 8*time.Hour)),
		lab(CodeSBP, 82, onDayAt(3, 10*time.Hour)),
	)
	if res := ev.Cardiovascular(in, 3); !res.Positive() {
		t.Fatalf("two SBP<90 within 3h should be positive: %+v", res)
	}

	// Readings 4 hours apart never pair.
	in2 := inputs(
		lab(CodeSBP, 85, onDayAt(3, 8*time.Hour)),
		lab(CodeSBP, 82, onDayAt(3, 12*time.Hour)),
	)
	if res := ev.Cardiovascular(in2, 3); res.Positive() {
		t.Fatalf("readings outside the 3h span must not pair: %+v", res)
	}

	// A single low MAP is not enough.
	in3 := inputs(lab(CodeMAP, 60, onDayAt(3, 8*time.Hour)))
	if res := ev.Cardiovascular(in3, 3); res.Positive() {
		t.Fatalf("one low reading must not be positive: %+v", res)
	}
}

func TestCardiovascularNewVasopressor(t *testing.T) {
	ev := newTestEvaluator()

	in := inputs(timeline.ClinicalEvent{Kind: timeline.KindMedication, Code: "norepi", Start: onDayAt(4, 6*time.Hour)})
	if res := ev.Cardiovascular(in, 4); !res.Positive() {
		t.Fatalf("new vasopressor in window should be positive: %+v", res)
	}

	// Vasopressor already running the prior day is not new.
	in2 := inputs(
		timeline.ClinicalEvent{Kind: timeline.KindMedication, Code: "norepi", Start: onDayAt(3, 6*time.Hour)},
		timeline.ClinicalEvent{Kind: timeline.KindMedication, Code: "norepi", Start: onDayAt(4, 6*time.Hour)},
	)
	res := ev.Cardiovascular(in2, 4)
	if res.Positive() {
		t.Fatalf("vasopressor present the prior day is not new on day 4: %+v", res)
	}
}

func TestRespiratoryRules(t *testing.T) {
	ev := newTestEvaluator()

	in := inputs(timeline.ClinicalEvent{Kind: timeline.KindProcedure, Code: "vent", Start: onDayAt(3, 2*time.Hour)})
	if res := ev.Respiratory(in, 3); !res.Positive() {
		t.Fatalf("invasive ventilation of any duration is positive: %+v", res)
	}

	end := onDayAt(4, 10*time.Hour)
	in2 := inputs(timeline.ClinicalEvent{Kind: timeline.KindProcedure, Code: "niv", Start: onDayAt(3, 20*time.Hour), End: &end})
	if res := ev.Respiratory(in2, 3); !res.Positive() {
		t.Fatalf("NIV spanning two calendar days is positive: %+v", res)
	}

	in3 := inputs(timeline.ClinicalEvent{Kind: timeline.KindProcedure, Code: "hfnc", Start: onDayAt(3, 8*time.Hour)})
	if res := ev.Respiratory(in3, 3); res.Positive() {
		t.Fatalf("single-day noninvasive support is not positive: %+v", res)
	}
}

func TestMetabolicLactate(t *testing.T) {
	ev := newTestEvaluator()

	in := inputs(lab(CodeLactate, 3.5, onDayAt(2, 9*time.Hour)))
	if res := ev.Metabolic(in, 2); !res.Positive() {
		t.Fatalf("lactate 3.5 should be positive: %+v", res)
	}

	// Exactly 2.0 is not above threshold.
	in2 := inputs(lab(CodeLactate, 2.0, onDayAt(2, 9*time.Hour)))
	if res := ev.Metabolic(in2, 2); res.Positive() {
		t.Fatalf("lactate 2.0 is not >2.0: %+v", res)
	}

	// Out-of-window lactate does not count.
	in3 := inputs(lab(CodeLactate, 5.0, onDayAt(6, 9*time.Hour)))
	if res := ev.Metabolic(in3, 2); res.Positive() {
		t.Fatalf("lactate outside the window must not count: %+v", res)
	}
}

func TestRenalDoublingAndFloor(t *testing.T) {
	ev := newTestEvaluator()

	in := inputs(
		lab(CodeCreatinine, 0.9, onDayAt(2, 12*time.Hour)),
		lab(CodeCreatinine, 2.2, onDayAt(3, 10*time.Hour)),
	)
	res := ev.Renal(in, 3, ClassCommunityOnset)
	if !res.Positive() {
		t.Fatalf("creatinine 2.2 vs baseline 0.9 should be positive: %+v", res)
	}

	// Doubled but below the male floor.
	in2 := inputs(
		lab(CodeCreatinine, 0.5, onDayAt(2, 12*time.Hour)),
		lab(CodeCreatinine, 1.1, onDayAt(3, 10*time.Hour)),
	)
	if res := ev.Renal(in2, 3, ClassCommunityOnset); res.Positive() {
		t.Fatalf("creatinine 1.1 is under the male floor 1.18: %+v", res)
	}

	// Same values cross the female floor.
	in3 := inputs(
		lab(CodeCreatinine, 0.5, onDayAt(2, 12*time.Hour)),
		lab(CodeCreatinine, 1.1, onDayAt(3, 10*time.Hour)),
	)
	in3.Sex = "female"
	if res := ev.Renal(in3, 3, ClassCommunityOnset); !res.Positive() {
		t.Fatalf("creatinine 1.1 is above the female floor 1.02: %+v", res)
	}
}

func TestRenalESRDExclusionGatesAfterThreshold(t *testing.T) {
	ev := newTestEvaluator()
	in := inputs(
		lab(CodeCreatinine, 1.0, onDayAt(2, 12*time.Hour)),
		lab(CodeCreatinine, 3.0, onDayAt(3, 10*time.Hour)),
		timeline.ClinicalEvent{Kind: timeline.KindCondition, Code: "esrd", PresentOnAdmission: true, Start: admit},
	)
	res := ev.Renal(in, 3, ClassCommunityOnset)
	if res.Status != StatusExcluded {
		t.Fatalf("ESRD must exclude the renal organ: %+v", res)
	}
	if !res.SuppressedPositive {
		t.Error("the gate should record the suppressed threshold crossing for audit")
	}
	if res.Positive() {
		t.Error("an excluded organ never reports positive")
	}
}

func TestHepaticRequiresRatioAndAbsolute(t *testing.T) {
	ev := newTestEvaluator()

	in := inputs(
		lab(CodeBilirubin, 1.2, onDayAt(2, 8*time.Hour)),
		lab(CodeBilirubin, 2.8, onDayAt(3, 10*time.Hour)),
	)
	if res := ev.Hepatic(in, 3, ClassCommunityOnset); !res.Positive() {
		t.Fatalf("bilirubin 2.8 vs baseline 1.2 should be positive: %+v", res)
	}

	// Doubled but under the 2.0 absolute threshold.
	in2 := inputs(
		lab(CodeBilirubin, 0.6, onDayAt(2, 8*time.Hour)),
		lab(CodeBilirubin, 1.5, onDayAt(3, 10*time.Hour)),
	)
	if res := ev.Hepatic(in2, 3, ClassCommunityOnset); res.Positive() {
		t.Fatalf("bilirubin 1.5 is under the absolute threshold: %+v", res)
	}

	in3 := inputs(
		lab(CodeBilirubin, 1.2, onDayAt(2, 8*time.Hour)),
		lab(CodeBilirubin, 2.8, onDayAt(3, 10*time.Hour)),
		timeline.ClinicalEvent{Kind: timeline.KindCondition, Code: "cirrhosis", Start: admit},
	)
	res := ev.Hepatic(in3, 3, ClassCommunityOnset)
	if res.Status != StatusExcluded || !res.SuppressedPositive {
		t.Fatalf("liver disease must exclude hepatic with audit: %+v", res)
	}
}

func TestCoagulationBaselineRules(t *testing.T) {
	ev := newTestEvaluator()

	in := inputs(
		lab(CodePlatelets, 220, onDayAt(3, 6*time.Hour)),
		lab(CodePlatelets, 80, onDayAt(4, 10*time.Hour)),
	)
	if res := ev.Coagulation(in, 4, ClassHospitalOnset); !res.Positive() {
		t.Fatalf("platelets 80 vs in-window baseline 220 should be positive: %+v", res)
	}

	// Hospital-onset platelet baseline under 100 is not evaluable.
	in2 := inputs(
		lab(CodePlatelets, 90, onDayAt(3, 6*time.Hour)),
		lab(CodePlatelets, 40, onDayAt(4, 10*time.Hour)),
	)
	res := ev.Coagulation(in2, 4, ClassHospitalOnset)
	if res.Status != StatusNotEvaluated {
		t.Fatalf("baseline below 100 must yield not-evaluated, got %+v", res)
	}

	in3 := inputs(
		lab(CodePlatelets, 220, onDayAt(3, 6*time.Hour)),
		lab(CodePlatelets, 80, onDayAt(4, 10*time.Hour)),
		timeline.ClinicalEvent{Kind: timeline.KindCondition, Code: "aml", Start: admit},
	)
	if res := ev.Coagulation(in3, 4, ClassHospitalOnset); res.Status != StatusExcluded {
		t.Fatalf("malignancy must exclude coagulation: %+v", res)
	}
}

func TestCommunityBaselineDefaultsOnDeathWithoutData(t *testing.T) {
	ev := newTestEvaluator()

	// Only one (elevated) value exists. Without the death default the ratio
	// test would self-compare and miss the dysfunction; with it, the normal
	// default baseline applies and the value qualifies.
	in := inputs(lab(CodeCreatinine, 2.4, onDayAt(2, 10*time.Hour)))
	in.DiedOrHospice = true
	if res := ev.Renal(in, 2, ClassCommunityOnset); !res.Positive() {
		t.Fatalf("death without favorable data should baseline at the default: %+v", res)
	}

	// Discharged alive with the same single value: the observed minimum is
	// the baseline, the ratio self-compares, and the organ stays negative.
	in2 := inputs(lab(CodeCreatinine, 2.4, onDayAt(2, 10*time.Hour)))
	if res := ev.Renal(in2, 2, ClassCommunityOnset); res.Positive() {
		t.Fatalf("self-comparison without the terminal disposition must not be positive: %+v", res)
	}

	// An abnormal-baseline comorbidity blocks the default.
	in3 := inputs(timeline.ClinicalEvent{Kind: timeline.KindCondition, Code: "cirrhosis", Start: admit})
	in3.DiedOrHospice = true
	if res := ev.Hepatic(in3, 2, ClassCommunityOnset); res.Status != StatusExcluded {
		// Cirrhosis is both an exclusion and an abnormal-baseline marker;
		// exclusion wins and the organ stays out of the episode decision.
		t.Fatalf("got %+v", res)
	}
}

func TestNotEvaluatedDistinctFromNegative(t *testing.T) {
	ev := newTestEvaluator()
	in := inputs() // no labs at all, discharged alive
	res := ev.Renal(in, 2, ClassCommunityOnset)
	if res.Status != StatusNotEvaluated {
		t.Fatalf("missing baseline must be not-evaluated, got %+v", res)
	}
}

func TestEvaluateReturnsAllSixOrgans(t *testing.T) {
	ev := newTestEvaluator()
	results := ev.Evaluate(inputs(), 2, ClassCommunityOnset)
	if len(results) != 6 {
		t.Fatalf("Evaluate returned %d organs, want 6", len(results))
	}
	seen := make(map[Organ]bool)
	for _, r := range results {
		seen[r.Organ] = true
	}
	for _, o := range []Organ{OrganCardiovascular, OrganRespiratory, OrganMetabolic, OrganRenal, OrganHepatic, OrganCoagulation} {
		if !seen[o] {
			t.Errorf("missing organ %s", o)
		}
	}
}
