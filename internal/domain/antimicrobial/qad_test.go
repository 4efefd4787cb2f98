package antimicrobial

import (
	"testing"
	"time"

	"github.com/clinfix/clinfix/internal/domain/terminology"
)

// mockDrugs is a minimal drug reference for accumulator tests.
type mockDrugs struct{ refs map[string]terminology.DrugRef }

func newMockDrugs() *mockDrugs {
	return &mockDrugs{refs: map[string]terminology.DrugRef{
		"mero-inj": {Code: "mero-inj", Ingredient: "meropenem", Class: terminology.ClassAntimicrobial},
		"vanc-inj": {Code: "vanc-inj", Ingredient: "vancomycin", Class: terminology.ClassAntimicrobial},
		"vanc-po":  {Code: "vanc-po", Ingredient: "vancomycin", Class: terminology.ClassAntimicrobial},
		"cipro-po": {Code: "cipro-po", Ingredient: "ciprofloxacin", Class: terminology.ClassAntimicrobial},
		"norepi":   {Code: "norepi", Ingredient: "norepinephrine", Class: terminology.ClassVasopressor},
	}}
}

func (m *mockDrugs) Drug(code string) (terminology.DrugRef, bool) {
	d, ok := m.refs[code]
	return d, ok
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

var anchor = ts("2025-01-02T08:00:00Z")

// onDay builds an administration on the given hospital day.
func onDay(drug, route string, day int) Administration {
	return Administration{
		DrugCode:  drug,
		RouteCode: route,
		GivenAt:   anchor.AddDate(0, 0, day-1).Add(2 * time.Hour),
	}
}

func TestAccumulateMergesSameDrugDayDoses(t *testing.T) {
	admins := []Administration{
		onDay("mero-inj", terminology.RouteCodeIV, 2),
		onDay("mero-inj", terminology.RouteCodeIV, 2),
		{DrugCode: "mero-inj", RouteCode: terminology.RouteCodeIV, GivenAt: anchor.AddDate(0, 0, 1).Add(14 * time.Hour)},
	}
	ds := Accumulate(newMockDrugs(), anchor, admins)
	if got := ds.Days("meropenem"); len(got) != 1 || got[0] != 2 {
		t.Fatalf("Days = %v, want exactly one entry for day 2", got)
	}
	if ds.DaysOfTherapy()["meropenem"] != 1 {
		t.Error("three doses on one day are one day of therapy")
	}
}

func TestAccumulateRouteDoesNotSplitEntries(t *testing.T) {
	admins := []Administration{
		onDay("mero-inj", terminology.RouteCodeIV, 3),
		onDay("mero-inj", terminology.RouteCodeIM, 3),
	}
	ds := Accumulate(newMockDrugs(), anchor, admins)
	if got := ds.Days("meropenem"); len(got) != 1 {
		t.Fatalf("route variants must not create a second entry per day: %v", got)
	}
	if !ds.HasRoute("meropenem", 3, terminology.RouteParenteral) {
		t.Error("route stratification lost")
	}
}

func TestVancomycinOralAndParenteralAreDistinct(t *testing.T) {
	admins := []Administration{
		onDay("vanc-inj", terminology.RouteCodeIV, 2),
		onDay("vanc-po", terminology.RouteCodeOral, 2),
	}
	ds := Accumulate(newMockDrugs(), anchor, admins)
	idents := ds.Identities()
	if len(idents) != 2 {
		t.Fatalf("Identities = %v, want separate oral and parenteral vancomycin", idents)
	}
	if !ds.Present("vancomycin/oral", 2) || !ds.Present("vancomycin/parenteral", 2) {
		t.Errorf("expected split identities, got %v", idents)
	}
}

func TestQADOneDayGapsTolerated(t *testing.T) {
	// Given on days 3,5,7,9 — every other day. Streak spans 7 days, satisfied.
	var admins []Administration
	for _, d := range []int{3, 5, 7, 9} {
		admins = append(admins, onDay("mero-inj", terminology.RouteCodeIV, d))
	}
	ds := Accumulate(newMockDrugs(), anchor, admins)
	res := Evaluate(ds, DefaultConfig(), "meropenem", 3, Encounter{LastDay: 12, DischargedAlive: true})
	if !res.Satisfied {
		t.Fatalf("1-day gaps must not break the streak: %+v", res)
	}
	if res.Path != PathStandard || res.StreakDays != 7 {
		t.Errorf("Path=%s StreakDays=%d, want standard path spanning 7 days", res.Path, res.StreakDays)
	}
}

func TestQADTwoDayGapsBreakStreak(t *testing.T) {
	var admins []Administration
	for _, d := range []int{3, 6, 9, 12} {
		admins = append(admins, onDay("mero-inj", terminology.RouteCodeIV, d))
	}
	ds := Accumulate(newMockDrugs(), anchor, admins)
	res := Evaluate(ds, DefaultConfig(), "meropenem", 3, Encounter{LastDay: 14, DischargedAlive: true})
	if res.Satisfied {
		t.Fatalf("2-day gaps must break the streak: %+v", res)
	}
}

func TestQADNewCourseRequiresPriorAbsence(t *testing.T) {
	var admins []Administration
	for _, d := range []int{2, 5, 6, 7, 8} {
		admins = append(admins, onDay("mero-inj", terminology.RouteCodeIV, d))
	}
	ds := Accumulate(newMockDrugs(), anchor, admins)

	// Day 2 and day 5 are 2 missing days apart, so day 5 opens a new streak
	// and the prior-2-day lookback (days 3,4) is clean.
	res := Evaluate(ds, DefaultConfig(), "meropenem", 5, Encounter{LastDay: 10, DischargedAlive: true})
	if !res.Satisfied || !res.NewCourse {
		t.Fatalf("day-5 course should be new and satisfied: %+v", res)
	}

	// A course on days 4..7 with the drug also given on day 3 is not new.
	var admins2 []Administration
	for _, d := range []int{3, 4, 5, 6, 7} {
		admins2 = append(admins2, onDay("cipro-po", terminology.RouteCodeIV, d))
	}
	ds2 := Accumulate(newMockDrugs(), anchor, admins2)
	// Anchored at day 5: the enclosing streak starts day 3 which is outside
	// the +/-1 window, so no course anchors there.
	res2 := Evaluate(ds2, DefaultConfig(), "ciprofloxacin", 5, Encounter{LastDay: 10, DischargedAlive: true})
	if res2.Satisfied {
		t.Fatalf("course starting day 3 must not anchor a day-5 window: %+v", res2)
	}
}

func TestQADRequiresParenteralAdministration(t *testing.T) {
	var admins []Administration
	for _, d := range []int{2, 3, 4, 5} {
		admins = append(admins, onDay("cipro-po", terminology.RouteCodeOral, d))
	}
	ds := Accumulate(newMockDrugs(), anchor, admins)
	res := Evaluate(ds, DefaultConfig(), "ciprofloxacin", 2, Encounter{LastDay: 8, DischargedAlive: true})
	if res.Satisfied {
		t.Fatalf("all-oral course must not satisfy QAD: %+v", res)
	}
	if res.Reason == "" {
		t.Error("unsatisfied result should carry a reason")
	}
}

func TestQADDeathExceptionIsExplicitPath(t *testing.T) {
	var admins []Administration
	for _, d := range []int{5, 6} {
		admins = append(admins, onDay("mero-inj", terminology.RouteCodeIV, d))
	}
	ds := Accumulate(newMockDrugs(), anchor, admins)

	res := Evaluate(ds, DefaultConfig(), "meropenem", 5, Encounter{LastDay: 6, DiedOrHospice: true})
	if !res.Satisfied || res.Path != PathDeathOrHospice {
		t.Fatalf("death on therapy should satisfy via the explicit exception path: %+v", res)
	}

	// Same short course without the terminal disposition is not satisfied.
	res2 := Evaluate(ds, DefaultConfig(), "meropenem", 5, Encounter{LastDay: 10, DischargedAlive: true})
	if res2.Satisfied {
		t.Fatalf("short course with continued stay must not satisfy: %+v", res2)
	}
}

func TestQADPrincipalDiagnosisShortCourse(t *testing.T) {
	var admins []Administration
	for _, d := range []int{2, 3, 4} {
		admins = append(admins, onDay("mero-inj", terminology.RouteCodeIV, d))
	}
	ds := Accumulate(newMockDrugs(), anchor, admins)

	enc := Encounter{LastDay: 4, DischargedAlive: true, PrincipalInfectionDx: true}
	res := Evaluate(ds, DefaultConfig(), "meropenem", 2, enc)
	if !res.Satisfied || res.Path != PathPrincipalDxShortStay {
		t.Fatalf("3-day course + qualifying principal dx at discharge should satisfy: %+v", res)
	}
}

func TestEvaluateAnySkipsNonAntimicrobials(t *testing.T) {
	var admins []Administration
	for _, d := range []int{2, 3, 4, 5} {
		admins = append(admins, onDay("norepi", terminology.RouteCodeIV, d))
	}
	ds := Accumulate(newMockDrugs(), anchor, admins)
	res := EvaluateAny(ds, DefaultConfig(), 2, Encounter{LastDay: 8, DischargedAlive: true})
	if res.Satisfied {
		t.Fatalf("vasopressor days must not satisfy an antimicrobial requirement: %+v", res)
	}
}

func TestQualifyingDaysWindow(t *testing.T) {
	var admins []Administration
	for _, d := range []int{1, 3, 5, 9} {
		admins = append(admins, onDay("mero-inj", terminology.RouteCodeIV, d))
	}
	ds := Accumulate(newMockDrugs(), anchor, admins)
	got := QualifyingDays(ds, "meropenem", 2, 6)
	if len(got) != 2 || got[0] != 3 || got[1] != 5 {
		t.Errorf("QualifyingDays = %v, want [3 5]", got)
	}
}
