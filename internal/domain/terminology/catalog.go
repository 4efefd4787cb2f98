package terminology

// Catalog is the immutable reference snapshot the rule engine queries. It is
// loaded once per run and passed explicitly into every component that needs
// it; nothing in the engine reaches for a package-level table. All methods
// are pure reads and safe for concurrent use.
type Catalog struct {
	organisms map[string]OrganismRef
	drugs     map[string]DrugRef
	sets      map[string]map[string]struct{}
	displays  map[string]string
}

// NewCatalog builds a catalog from reference rows. Input slices are copied
// into internal maps; later mutation of the arguments does not affect the
// catalog.
func NewCatalog(organisms []OrganismRef, drugs []DrugRef, members []ValueSetMember) *Catalog {
	c := &Catalog{
		organisms: make(map[string]OrganismRef, len(organisms)),
		drugs:     make(map[string]DrugRef, len(drugs)),
		sets:      make(map[string]map[string]struct{}),
		displays:  make(map[string]string),
	}
	for _, o := range organisms {
		c.organisms[o.Code] = o
		c.displays[o.Code] = o.Display
	}
	for _, d := range drugs {
		c.drugs[d.Code] = d
		c.displays[d.Code] = d.Display
	}
	for _, m := range members {
		set, ok := c.sets[m.SetID]
		if !ok {
			set = make(map[string]struct{})
			c.sets[m.SetID] = set
		}
		set[m.Code] = struct{}{}
	}
	return c
}

// OrganismCount returns the number of organism entries in the catalog.
func (c *Catalog) OrganismCount() int { return len(c.organisms) }

// DrugCount returns the number of drug entries in the catalog.
func (c *Catalog) DrugCount() int { return len(c.drugs) }

// Organism returns the reference entry for an organism code.
func (c *Catalog) Organism(code string) (OrganismRef, bool) {
	o, ok := c.organisms[code]
	return o, ok
}

// SpeciesOf resolves a code to its species-level identity. Phenotype codes
// resolve to the species they are a variant of; species codes resolve to
// themselves; genus-only and unknown codes do not resolve.
func (c *Catalog) SpeciesOf(code string) (string, bool) {
	o, ok := c.organisms[code]
	if !ok {
		return "", false
	}
	switch o.Class {
	case IdentitySpecies:
		return o.Code, true
	case IdentityPhenotype:
		return o.SpeciesCode, o.SpeciesCode != ""
	}
	return "", false
}

// GenusOf resolves a code to its genus, when known.
func (c *Catalog) GenusOf(code string) (string, bool) {
	o, ok := c.organisms[code]
	if !ok || o.Genus == "" {
		return "", false
	}
	return o.Genus, true
}

// IsPhenotypeVariant reports whether code is a resistance-phenotype variant
// of the given species code.
func (c *Catalog) IsPhenotypeVariant(code, speciesCode string) bool {
	o, ok := c.organisms[code]
	return ok && o.Class == IdentityPhenotype && o.SpeciesCode == speciesCode
}

// Drug returns the reference entry for a medication code.
func (c *Catalog) Drug(code string) (DrugRef, bool) {
	d, ok := c.drugs[code]
	return d, ok
}

// InValueSet reports whether a code belongs to the named value set. Unknown
// sets and unknown codes are simply non-members.
func (c *Catalog) InValueSet(code, setID string) bool {
	set, ok := c.sets[setID]
	if !ok {
		return false
	}
	_, ok = set[code]
	return ok
}

// DisplayOf returns the display text for a known code, or the code itself.
func (c *Catalog) DisplayOf(code string) string {
	if d, ok := c.displays[code]; ok {
		return d
	}
	return code
}

// RouteClassOf buckets a SNOMED route code for stratification.
func RouteClassOf(routeCode string) RouteClass {
	switch routeCode {
	case RouteCodeIV, RouteCodeIM:
		return RouteParenteral
	case RouteCodeOral:
		return RouteOral
	case RouteCodeInhalation:
		return RouteInhaled
	}
	return RouteOther
}
