// Package antimicrobial folds medication administrations into per-drug
// calendar-day sets and evaluates qualifying antimicrobial day (QAD)
// requirements against them.
package antimicrobial

import (
	"sort"
	"time"

	"github.com/clinfix/clinfix/internal/domain/terminology"
	"github.com/clinfix/clinfix/internal/domain/timeline"
)

// DrugLookup is the medication reference surface consumed from the catalog.
type DrugLookup interface {
	Drug(code string) (terminology.DrugRef, bool)
}

// Administration is one raw medication administration record.
type Administration struct {
	DrugCode  string
	RouteCode string
	GivenAt   time.Time
}

// dayEntry marks presence of one drug identity on one calendar day. Routes
// are tracked for stratification; repeated doses never create a second entry.
type dayEntry struct {
	routes map[terminology.RouteClass]bool
}

// DaySet is the accumulated (drug identity, calendar day) presence map.
// Day numbers are protocol-relative indices from the anchor admission.
type DaySet struct {
	anchor time.Time
	drugs  map[string]map[int]*dayEntry
	class  map[string]terminology.DrugClass
}

// IdentityFor derives the accumulation identity of a drug code given its
// administration route. Product codes fold into their ingredient. Vancomycin
// is the protocol's one split identity: its oral and parenteral forms are
// tracked as distinct drugs.
func IdentityFor(lookup DrugLookup, drugCode, routeCode string) (string, terminology.DrugClass, bool) {
	ref, ok := lookup.Drug(drugCode)
	if !ok {
		return "", "", false
	}
	ident := ref.Ingredient
	if ref.Ingredient == "vancomycin" {
		if terminology.RouteClassOf(routeCode) == terminology.RouteOral {
			ident = "vancomycin/oral"
		} else {
			ident = "vancomycin/parenteral"
		}
	}
	return ident, ref.Class, true
}

// Accumulate folds administrations into a day set anchored at the admission
// instant. Same-drug same-day duplicates merge into one entry regardless of
// dose count; unmapped drug codes are skipped.
func Accumulate(lookup DrugLookup, anchor time.Time, admins []Administration) *DaySet {
	s := &DaySet{
		anchor: anchor,
		drugs:  make(map[string]map[int]*dayEntry),
		class:  make(map[string]terminology.DrugClass),
	}
	for _, a := range admins {
		ident, class, ok := IdentityFor(lookup, a.DrugCode, a.RouteCode)
		if !ok {
			continue
		}
		day := timeline.DayIndex(anchor, a.GivenAt)
		byDay, ok := s.drugs[ident]
		if !ok {
			byDay = make(map[int]*dayEntry)
			s.drugs[ident] = byDay
			s.class[ident] = class
		}
		e, ok := byDay[day]
		if !ok {
			e = &dayEntry{routes: make(map[terminology.RouteClass]bool)}
			byDay[day] = e
		}
		e.routes[terminology.RouteClassOf(a.RouteCode)] = true
	}
	return s
}

// Identities returns the drug identities present in the set, sorted.
func (s *DaySet) Identities() []string {
	out := make([]string, 0, len(s.drugs))
	for ident := range s.drugs {
		out = append(out, ident)
	}
	sort.Strings(out)
	return out
}

// Class returns the drug class of an identity in the set.
func (s *DaySet) Class(identity string) (terminology.DrugClass, bool) {
	c, ok := s.class[identity]
	return c, ok
}

// Present reports whether the drug was administered on the given day.
func (s *DaySet) Present(identity string, day int) bool {
	byDay, ok := s.drugs[identity]
	if !ok {
		return false
	}
	_, ok = byDay[day]
	return ok
}

// HasRoute reports whether the drug was given via the route class that day.
func (s *DaySet) HasRoute(identity string, day int, rc terminology.RouteClass) bool {
	byDay, ok := s.drugs[identity]
	if !ok {
		return false
	}
	e, ok := byDay[day]
	return ok && e.routes[rc]
}

// Days returns the sorted calendar days on which the drug was administered.
func (s *DaySet) Days(identity string) []int {
	byDay, ok := s.drugs[identity]
	if !ok {
		return nil
	}
	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// DaysOfTherapy returns the administered-day count per identity, the AU
// option's days-of-therapy measure.
func (s *DaySet) DaysOfTherapy() map[string]int {
	out := make(map[string]int, len(s.drugs))
	for ident, byDay := range s.drugs {
		out[ident] = len(byDay)
	}
	return out
}

// RouteDaysOfTherapy returns administered-day counts per identity split by
// route class.
func (s *DaySet) RouteDaysOfTherapy() map[string]map[terminology.RouteClass]int {
	out := make(map[string]map[terminology.RouteClass]int, len(s.drugs))
	for ident, byDay := range s.drugs {
		per := make(map[terminology.RouteClass]int)
		for _, e := range byDay {
			for rc := range e.routes {
				per[rc]++
			}
		}
		out[ident] = per
	}
	return out
}
