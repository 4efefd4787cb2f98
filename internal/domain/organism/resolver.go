// Package organism provides the single shared definition of "same organism"
// used by every component that compares organism codes. Deduplication,
// repeat-event suppression, and matching-commensal checks all query this
// resolver; none of them compare codes directly.
package organism

// Lookup is the code-identity surface the resolver consumes. It is satisfied
// by terminology.Catalog.
type Lookup interface {
	SpeciesOf(code string) (string, bool)
	GenusOf(code string) (string, bool)
	IsPhenotypeVariant(code, speciesCode string) bool
}

// Resolver decides organism identity across coding granularities. It is a
// pure function over the injected lookup and never mutates its inputs.
type Resolver struct {
	lookup Lookup
}

// NewResolver creates a resolver over the given identity lookup.
func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// SameOrganism reports whether two codes denote the same organism. The
// identity cascade, in priority order:
//
//  1. exact code equality
//  2. one code is a resistance-phenotype variant of the other's species
//  3. both codes resolve to the same species-level identity
//  4. neither resolves to species level but both resolve to the same genus
//
// Codes with no species or genus mapping resolve to "no match" — coding gaps
// are expected data, not errors. The relation is symmetric by construction.
func (r *Resolver) SameOrganism(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if r.lookup.IsPhenotypeVariant(a, b) || r.lookup.IsPhenotypeVariant(b, a) {
		return true
	}

	sa, aOK := r.lookup.SpeciesOf(a)
	sb, bOK := r.lookup.SpeciesOf(b)
	if aOK && bOK {
		return sa == sb
	}
	if aOK || bOK {
		// One side is species-resolvable and the other is not: a genus-level
		// comparison would collapse distinct species, so no match.
		return false
	}

	ga, aOK := r.lookup.GenusOf(a)
	gb, bOK := r.lookup.GenusOf(b)
	return aOK && bOK && ga == gb
}
