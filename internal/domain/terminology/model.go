package terminology

// CodeSystemURI constants for the terminology systems the engine consumes.
const (
	SystemSNOMED = "http://snomed.info/sct"
	SystemLOINC  = "http://loinc.org"
	SystemRxNorm = "http://www.nlm.nih.gov/research/umls/rxnorm"
	SystemICD10  = "http://hl7.org/fhir/sid/icd-10-cm"
	SystemHSLOC  = "https://www.cdc.gov/nhsn/cdaportal/terminology/codesystem/hsloc.html"
)

// IdentityClass describes how specific an organism code is.
type IdentityClass string

const (
	IdentitySpecies   IdentityClass = "species"
	IdentityGenus     IdentityClass = "genus"
	IdentityPhenotype IdentityClass = "phenotype-of-species"
)

// OrganismRef is a reference entry for one organism code. Phenotype codes
// (e.g. carbapenem-resistant Pseudomonas aeruginosa) carry the species code
// they are a variant of; genus-only codes carry an empty SpeciesCode.
type OrganismRef struct {
	Code        string        `db:"code" json:"code"`
	Display     string        `db:"display" json:"display"`
	Class       IdentityClass `db:"identity_class" json:"identity_class"`
	SpeciesCode string        `db:"species_code" json:"species_code,omitempty"`
	Genus       string        `db:"genus" json:"genus,omitempty"`
}

// DrugClass stratifies medication codes by the protocol role they play.
type DrugClass string

const (
	ClassAntimicrobial DrugClass = "antimicrobial"
	ClassVasopressor   DrugClass = "vasopressor"
	ClassAntidiabetic  DrugClass = "antidiabetic"
)

// DrugRef is a reference entry for one medication code. Ingredient is the
// identity used for day accumulation, so two product codes of the same
// ingredient fold into one drug.
type DrugRef struct {
	Code       string    `db:"code" json:"code"`
	Display    string    `db:"display" json:"display"`
	Ingredient string    `db:"ingredient" json:"ingredient"`
	Class      DrugClass `db:"drug_class" json:"drug_class"`
}

// RouteClass buckets administration route codes for QAD stratification.
type RouteClass string

const (
	RouteParenteral RouteClass = "parenteral" // IV or IM
	RouteOral       RouteClass = "oral"
	RouteInhaled    RouteClass = "inhaled"
	RouteOther      RouteClass = "other"
)

// SNOMED route-of-administration codes.
const (
	RouteCodeIV         = "47625008"
	RouteCodeIM         = "78421000"
	RouteCodeOral       = "26643006"
	RouteCodeInhalation = "447694001"
)

// Value-set identifiers consumed by the rule engine. These correspond to the
// grouping value sets the surveillance protocols reference; membership is a
// lookup, never an inference.
const (
	SetSkinCommensals         = "skin-commensals"
	SetInvasiveSpecimens      = "invasive-specimen-sources"
	SetESRD                   = "esrd-conditions"
	SetSevereLiverDisease     = "moderate-severe-liver-disease"
	SetMalignancy             = "hematologic-solid-malignancy"
	SetInfectionDiagnoses     = "principal-infection-diagnoses"
	SetGlucoseLabs            = "blood-glucose-labs"
	SetAntidiabetics          = "antidiabetic-medications"
	SetBloodCultures          = "blood-culture-tests"
	SetInvasiveVentilation    = "invasive-ventilation-procedures"
	SetNoninvasiveSupport     = "noninvasive-respiratory-support"
	SetHighRiskNonPreventable = "hob-high-risk-conditions"
	SetAbnormalBaseline       = "abnormal-baseline-comorbidities"
)

// ValueSetMember is one row of a value-set expansion.
type ValueSetMember struct {
	SetID  string `db:"set_id" json:"set_id"`
	Code   string `db:"code" json:"code"`
	System string `db:"system_uri" json:"system"`
}
