// Package scenario drives declarative scenario descriptions through the rule
// engine and emits the expected-outcome records a downstream fixture
// serializer and test harness consume.
package scenario

import (
	"time"

	"github.com/clinfix/clinfix/internal/domain/antimicrobial"
	"github.com/clinfix/clinfix/internal/domain/dedup"
	"github.com/clinfix/clinfix/internal/domain/onset"
	"github.com/clinfix/clinfix/internal/domain/organdys"
	"github.com/clinfix/clinfix/internal/domain/protocol"
	"github.com/clinfix/clinfix/internal/domain/terminology"
	"github.com/clinfix/clinfix/internal/domain/timeline"
)

// Scenario is one declarative patient-encounter description. Events use the
// timeline's tagged-variant shape directly; the orchestrator owns the
// resulting Timeline for the scenario's lifetime.
type Scenario struct {
	ID       string        `json:"id,omitempty"`
	Name     string        `json:"name,omitempty"`
	Protocol protocol.Name `json:"protocol"`

	Sex            string `json:"sex,omitempty"`             // "male" or "female"
	EncounterClass string `json:"encounter_class,omitempty"` // "IMP", "EMER", ...
	Disposition    string `json:"disposition,omitempty"`     // "home", "expired", "hospice"

	Admitted   time.Time `json:"admitted"`
	Discharged time.Time `json:"discharged"`

	Events []timeline.ClinicalEvent `json:"events"`
}

// DiedOrHospice reports whether the encounter ended in death or a hospice
// discharge.
func (s Scenario) DiedOrHospice() bool {
	return s.Disposition == DispositionExpired || s.Disposition == DispositionHospice
}

// Encounter disposition values.
const (
	DispositionHome    = "home"
	DispositionExpired = "expired"
	DispositionHospice = "hospice"
)

// Encounter class values. ClassEmergency encounters are still evaluated; the
// upstream measure's location value set admits ED-only stays and that
// documented behavior is reproduced as-is.
const (
	ClassInpatient = "IMP"
	ClassEmergency = "EMER"
)

// Outcome is the expected-outcome record for one scenario. Exactly one of the
// protocol sections is populated on success; Error carries a per-scenario
// failure without aborting the batch.
type Outcome struct {
	ScenarioID string        `json:"scenario_id"`
	Name       string        `json:"name,omitempty"`
	Protocol   protocol.Name `json:"protocol"`

	Error string `json:"error,omitempty"`
	Fatal bool   `json:"fatal,omitempty"` // invariant violation, not a data issue

	Hypoglycemia *HypoglycemiaOutcome `json:"hypoglycemia,omitempty"`
	AUR          *AUROutcome          `json:"aur,omitempty"`
	HOB          *HOBOutcome          `json:"hob,omitempty"`
	Sepsis       *SepsisOutcome       `json:"sepsis,omitempty"`
}

// HypoglycemiaSeverity bands a qualifying glucose value.
type HypoglycemiaSeverity string

const (
	SeveritySevere   HypoglycemiaSeverity = "severe"
	SeverityModerate HypoglycemiaSeverity = "moderate"
	SeverityMild     HypoglycemiaSeverity = "mild"
)

// HypoglycemiaEvent is one low-glucose reading's evaluation.
type HypoglycemiaEvent struct {
	Day      int                  `json:"day"`
	Value    float64              `json:"value"`
	At       time.Time            `json:"at"`
	Severity HypoglycemiaSeverity `json:"severity"`

	MedicationAssociated bool   `json:"medication_associated"`
	AssociatedDrug       string `json:"associated_drug,omitempty"`

	Excluded        bool   `json:"excluded"`
	ExclusionReason string `json:"exclusion_reason,omitempty"`

	Resolved bool `json:"resolved"` // a later glucose at or above the resolution threshold
}

// HypoglycemiaOutcome is the glycemic-control protocol's expected record.
type HypoglycemiaOutcome struct {
	Evaluated bool                `json:"evaluated"`
	Events    []HypoglycemiaEvent `json:"events,omitempty"`

	SevereCount   int `json:"severe_count"`
	ModerateCount int `json:"moderate_count"`
	MildCount     int `json:"mild_count"`
}

// ResistancePhenotype tags a counted isolate with a resistance pattern.
type ResistancePhenotype string

const (
	PhenotypeMRSA ResistancePhenotype = "mrsa"
	PhenotypeCR   ResistancePhenotype = "carbapenem-resistant"
)

// ARIsolate is one culture isolate's deduplication record with its phenotype.
type ARIsolate struct {
	dedup.IsolateOutcome
	Day       int                 `json:"day"`
	Phenotype ResistancePhenotype `json:"phenotype,omitempty"`
}

// AUROutcome is the antimicrobial use and resistance expected record.
type AUROutcome struct {
	DaysOfTherapy      map[string]int                                `json:"days_of_therapy"`
	RouteDaysOfTherapy map[string]map[terminology.RouteClass]int     `json:"route_days_of_therapy"`
	Isolates           []ARIsolate                                   `json:"isolates,omitempty"`
}

// HOBClassification tags a bacteremia event's onset.
type HOBClassification string

const (
	HOBCommunityOnset HOBClassification = "community-onset"
	HOBHospitalOnset  HOBClassification = "hospital-onset"
)

// HOBDraw is one paired blood-culture draw's classification.
type HOBDraw struct {
	PairID  string            `json:"pair_id,omitempty"`
	Day     int               `json:"day"`
	Outcome dedup.PairOutcome `json:"outcome"`
}

// HOBEvent is one bacteremia event's evaluation.
type HOBEvent struct {
	Day            int               `json:"day"`
	Organism       string            `json:"organism"`
	Classification HOBClassification `json:"classification"`

	CommensalPath bool `json:"commensal_path,omitempty"` // qualified via the matching-commensal gate
	Fungal        bool `json:"fungal,omitempty"`

	Suppressed        bool   `json:"suppressed"`
	SuppressionReason string `json:"suppression_reason,omitempty"`
}

// HOBOutcome is the hospital-onset bacteremia expected record.
type HOBOutcome struct {
	Draws  []HOBDraw  `json:"draws,omitempty"`
	Events []HOBEvent `json:"events,omitempty"`

	Contamination bool `json:"contamination"`
	HighRisk      bool `json:"high_risk"` // non-measure non-preventability flag
}

// SepsisOutcome is the adult sepsis event expected record.
type SepsisOutcome struct {
	Onset  onset.Resolution     `json:"onset"`
	QAD    antimicrobial.Result `json:"qad"`
	Organs []organdys.Result    `json:"organs,omitempty"`

	// Later anchors inside the repeat-event timeframe, suppressed.
	SuppressedOnsetDays []int `json:"suppressed_onset_days,omitempty"`
}
