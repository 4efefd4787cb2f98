package terminology

import "context"

// repoMem is an in-memory repository seeded with the reference codes the
// surveillance protocols exercise. It backs tests and the offline evaluate
// command, where no database is available.
type repoMem struct {
	organisms map[string]OrganismRef
	drugs     map[string]DrugRef
	members   []ValueSetMember
}

// NewRepoMem creates a seeded in-memory reference repository.
func NewRepoMem() Repository {
	r := &repoMem{
		organisms: make(map[string]OrganismRef),
		drugs:     make(map[string]DrugRef),
	}
	for _, o := range seedOrganisms() {
		r.organisms[o.Code] = o
	}
	for _, d := range seedDrugs() {
		r.drugs[d.Code] = d
	}
	r.members = seedValueSets()
	return r
}

func (r *repoMem) ListOrganisms(_ context.Context) ([]OrganismRef, error) {
	out := make([]OrganismRef, 0, len(r.organisms))
	for _, o := range r.organisms {
		out = append(out, o)
	}
	return out, nil
}

func (r *repoMem) ListDrugs(_ context.Context) ([]DrugRef, error) {
	out := make([]DrugRef, 0, len(r.drugs))
	for _, d := range r.drugs {
		out = append(out, d)
	}
	return out, nil
}

func (r *repoMem) ListValueSetMembers(_ context.Context) ([]ValueSetMember, error) {
	out := make([]ValueSetMember, len(r.members))
	copy(out, r.members)
	return out, nil
}

func (r *repoMem) GetOrganism(_ context.Context, code string) (*OrganismRef, error) {
	o, ok := r.organisms[code]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (r *repoMem) GetDrug(_ context.Context, code string) (*DrugRef, error) {
	d, ok := r.drugs[code]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func seedOrganisms() []OrganismRef {
	return []OrganismRef{
		{Code: "3092008", Display: "Staphylococcus aureus", Class: IdentitySpecies, Genus: "Staphylococcus"},
		{Code: "115329001", Display: "Methicillin resistant Staphylococcus aureus", Class: IdentityPhenotype, SpeciesCode: "3092008", Genus: "Staphylococcus"},
		{Code: "60875001", Display: "Staphylococcus epidermidis", Class: IdentitySpecies, Genus: "Staphylococcus"},
		{Code: "116197008", Display: "Coagulase negative staphylococcus", Class: IdentityGenus, Genus: "Staphylococcus"},
		{Code: "112283007", Display: "Escherichia coli", Class: IdentitySpecies, Genus: "Escherichia"},
		{Code: "56415008", Display: "Klebsiella pneumoniae", Class: IdentitySpecies, Genus: "Klebsiella"},
		{Code: "52499004", Display: "Pseudomonas aeruginosa", Class: IdentitySpecies, Genus: "Pseudomonas"},
		{Code: "726492000", Display: "Carbapenem resistant Pseudomonas aeruginosa", Class: IdentityPhenotype, SpeciesCode: "52499004", Genus: "Pseudomonas"},
		{Code: "90272000", Display: "Enterococcus faecium", Class: IdentitySpecies, Genus: "Enterococcus"},
		{Code: "91288006", Display: "Acinetobacter baumannii", Class: IdentitySpecies, Genus: "Acinetobacter"},
		{Code: "53326005", Display: "Candida albicans", Class: IdentitySpecies, Genus: "Candida"},
	}
}

func seedDrugs() []DrugRef {
	return []DrugRef{
		// Antimicrobials.
		{Code: "1722939", Display: "Meropenem 1000 MG Injection", Ingredient: "meropenem", Class: ClassAntimicrobial},
		{Code: "1664986", Display: "Vancomycin 1000 MG Injection", Ingredient: "vancomycin", Class: ClassAntimicrobial},
		{Code: "313572", Display: "Vancomycin 125 MG Oral Capsule", Ingredient: "vancomycin", Class: ClassAntimicrobial},
		{Code: "309090", Display: "Ceftriaxone 1000 MG Injection", Ingredient: "ceftriaxone", Class: ClassAntimicrobial},
		{Code: "1659149", Display: "Piperacillin 4000 MG / Tazobactam 500 MG Injection", Ingredient: "piperacillin-tazobactam", Class: ClassAntimicrobial},
		{Code: "309309", Display: "Ciprofloxacin 500 MG Oral Tablet", Ingredient: "ciprofloxacin", Class: ClassAntimicrobial},
		{Code: "311365", Display: "Levofloxacin 500 MG/100 ML Injectable Solution", Ingredient: "levofloxacin", Class: ClassAntimicrobial},
		{Code: "1165258", Display: "Tobramycin 300 MG/5ML Inhalation Solution", Ingredient: "tobramycin", Class: ClassAntimicrobial},
		{Code: "1665021", Display: "Amikacin 1000 MG Injection", Ingredient: "amikacin", Class: ClassAntimicrobial},
		// Vasopressors.
		{Code: "1659027", Display: "Norepinephrine Bitartrate 4 MG/4 ML Injectable Solution", Ingredient: "norepinephrine", Class: ClassVasopressor},
		{Code: "1991339", Display: "Epinephrine 1 MG/ML Injectable Solution", Ingredient: "epinephrine", Class: ClassVasopressor},
		{Code: "1596994", Display: "Vasopressin 20 UNT/ML Injectable Solution", Ingredient: "vasopressin", Class: ClassVasopressor},
		// Antidiabetic drugs.
		{Code: "311034", Display: "Insulin regular, human 100 UNT/ML Injectable Solution", Ingredient: "insulin-regular", Class: ClassAntidiabetic},
		{Code: "311033", Display: "Insulin regular, human 100 UNT/ML Injectable Solution", Ingredient: "insulin-regular", Class: ClassAntidiabetic},
		{Code: "261551", Display: "Insulin glargine 100 UNT/ML Injectable Solution", Ingredient: "insulin-glargine", Class: ClassAntidiabetic},
		{Code: "311041", Display: "Insulin, isophane human 100 UNT/ML Injectable Suspension", Ingredient: "insulin-nph", Class: ClassAntidiabetic},
		{Code: "310488", Display: "Glipizide 10 MG Oral Tablet", Ingredient: "glipizide", Class: ClassAntidiabetic},
		{Code: "310534", Display: "Glyburide 5 MG Oral Tablet", Ingredient: "glyburide", Class: ClassAntidiabetic},
	}
}

func seedValueSets() []ValueSetMember {
	return []ValueSetMember{
		{SetID: SetSkinCommensals, Code: "60875001", System: SystemSNOMED},
		{SetID: SetSkinCommensals, Code: "116197008", System: SystemSNOMED},

		{SetID: SetInvasiveSpecimens, Code: "119297000", System: SystemSNOMED}, // blood
		{SetID: SetInvasiveSpecimens, Code: "258450006", System: SystemSNOMED}, // CSF

		{SetID: SetESRD, Code: "N18.6", System: SystemICD10},
		{SetID: SetSevereLiverDisease, Code: "K74.60", System: SystemICD10},
		{SetID: SetMalignancy, Code: "C91.00", System: SystemICD10},
		{SetID: SetMalignancy, Code: "91861009", System: SystemSNOMED}, // AML

		{SetID: SetInfectionDiagnoses, Code: "A41.9", System: SystemICD10},
		{SetID: SetInfectionDiagnoses, Code: "91302008", System: SystemSNOMED},

		{SetID: SetGlucoseLabs, Code: "2339-0", System: SystemLOINC},
		{SetID: SetGlucoseLabs, Code: "2345-7", System: SystemLOINC},
		{SetID: SetGlucoseLabs, Code: "41653-7", System: SystemLOINC},

		{SetID: SetAntidiabetics, Code: "311034", System: SystemRxNorm},
		{SetID: SetAntidiabetics, Code: "311033", System: SystemRxNorm},
		{SetID: SetAntidiabetics, Code: "261551", System: SystemRxNorm},
		{SetID: SetAntidiabetics, Code: "311041", System: SystemRxNorm},
		{SetID: SetAntidiabetics, Code: "310488", System: SystemRxNorm},
		{SetID: SetAntidiabetics, Code: "310534", System: SystemRxNorm},

		{SetID: SetBloodCultures, Code: "600-7", System: SystemLOINC},

		{SetID: SetInvasiveVentilation, Code: "40617009", System: SystemSNOMED},
		{SetID: SetNoninvasiveSupport, Code: "428311008", System: SystemSNOMED},
		{SetID: SetNoninvasiveSupport, Code: "371907003", System: SystemSNOMED},

		{SetID: SetHighRiskNonPreventable, Code: "91861009", System: SystemSNOMED},
		{SetID: SetHighRiskNonPreventable, Code: "165517008", System: SystemSNOMED},

		{SetID: SetAbnormalBaseline, Code: "N18.6", System: SystemICD10},
		{SetID: SetAbnormalBaseline, Code: "K74.60", System: SystemICD10},
	}
}
