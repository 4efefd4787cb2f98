package scenario

import (
	"fmt"

	"github.com/clinfix/clinfix/internal/domain/protocol"
	"github.com/clinfix/clinfix/internal/domain/timeline"
)

// ValidationError names the scenario field that made evaluation impossible.
// Missing inputs fail fast; they are never silently defaulted.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid scenario: %s: %s", e.Field, e.Msg)
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// Validate checks that the scenario carries every event its declared protocol
// needs.
func (s Scenario) Validate() error {
	if _, err := protocol.Parse(string(s.Protocol)); err != nil {
		return invalid("protocol", err.Error())
	}
	if s.Admitted.IsZero() {
		return invalid("admitted", "anchor admission timestamp is required")
	}
	if s.Discharged.IsZero() {
		return invalid("discharged", "encounter end timestamp is required")
	}
	if s.Discharged.Before(s.Admitted) {
		return invalid("discharged", "encounter ends before it begins")
	}

	switch s.Protocol {
	case protocol.Hypoglycemia:
		if !s.hasKind(timeline.KindLabResult) {
			return invalid("events", "hypoglycemia scenarios require at least one glucose lab result")
		}
	case protocol.AUR:
		if !s.hasKind(timeline.KindSpecimen) && !s.hasKind(timeline.KindMedication) {
			return invalid("events", "aur scenarios require a specimen or a medication administration")
		}
	case protocol.HOB:
		if !s.hasKind(timeline.KindSpecimen) {
			return invalid("events", "hob scenarios require at least one blood-culture specimen")
		}
	case protocol.Sepsis:
		if !s.hasKind(timeline.KindSpecimen) && !s.hasPrincipalDx() {
			return invalid("events", "sepsis scenarios require a culture specimen or a principal infection diagnosis")
		}
	}
	if s.Sex != "" && s.Sex != "male" && s.Sex != "female" {
		return invalid("sex", "must be male or female")
	}
	return nil
}

func (s Scenario) hasKind(kind timeline.EventKind) bool {
	for _, e := range s.Events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func (s Scenario) hasPrincipalDx() bool {
	for _, e := range s.Events {
		if e.Kind == timeline.KindCondition && e.Principal {
			return true
		}
	}
	return false
}
