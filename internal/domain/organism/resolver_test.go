package organism

import "testing"

// mockLookup is a hand-rolled identity table for resolver tests.
type mockLookup struct {
	species   map[string]string
	genus     map[string]string
	phenotype map[string]string // phenotype code -> species code
}

func newMockLookup() *mockLookup {
	return &mockLookup{
		species: map[string]string{
			"pa":     "pa",
			"ec":     "ec",
			"sa":     "sa",
			"pa-cr":  "pa",
			"sa-mrsa": "sa",
		},
		genus: map[string]string{
			"pa":      "Pseudomonas",
			"ec":      "Escherichia",
			"sa":      "Staphylococcus",
			"cons":    "Staphylococcus",
			"staph-g": "Staphylococcus",
		},
		phenotype: map[string]string{
			"pa-cr":   "pa",
			"sa-mrsa": "sa",
		},
	}
}

func (m *mockLookup) SpeciesOf(code string) (string, bool) {
	s, ok := m.species[code]
	return s, ok
}

func (m *mockLookup) GenusOf(code string) (string, bool) {
	g, ok := m.genus[code]
	return g, ok
}

func (m *mockLookup) IsPhenotypeVariant(code, speciesCode string) bool {
	return m.phenotype[code] == speciesCode
}

func TestSameOrganismCascade(t *testing.T) {
	r := NewResolver(newMockLookup())
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"exact code match", "pa", "pa", true},
		{"phenotype variant matches base species", "pa-cr", "pa", true},
		{"base species matches phenotype variant", "pa", "pa-cr", true},
		{"same species different phenotype codes", "pa-cr", "pa-cr", true},
		{"different species", "pa", "ec", false},
		{"genus fallback when neither is species-resolvable", "cons", "staph-g", true},
		{"species-resolvable code never matches genus-only code", "sa", "cons", false},
		{"unknown codes never match", "mystery", "pa", false},
		{"two unknown codes never match", "mystery", "enigma", false},
		{"empty code never matches", "", "pa", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.SameOrganism(tc.a, tc.b); got != tc.want {
				t.Errorf("SameOrganism(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestSameOrganismIsSymmetric(t *testing.T) {
	r := NewResolver(newMockLookup())
	codes := []string{"pa", "ec", "sa", "pa-cr", "sa-mrsa", "cons", "staph-g", "mystery", ""}
	for _, a := range codes {
		for _, b := range codes {
			if r.SameOrganism(a, b) != r.SameOrganism(b, a) {
				t.Errorf("SameOrganism(%q, %q) is not symmetric", a, b)
			}
		}
	}
}
