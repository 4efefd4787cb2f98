// Package protocol bundles the per-protocol configuration consumed by the
// shared evaluation engine. Thresholds, window radii, day boundaries, and
// exception toggles live here so the engine packages carry no
// protocol-specific branches.
package protocol

import (
	"fmt"
	"time"

	"github.com/clinfix/clinfix/internal/domain/antimicrobial"
	"github.com/clinfix/clinfix/internal/domain/dedup"
	"github.com/clinfix/clinfix/internal/domain/onset"
	"github.com/clinfix/clinfix/internal/domain/organdys"
	"github.com/clinfix/clinfix/internal/domain/terminology"
)

// Name selects one of the four surveillance protocols.
type Name string

const (
	Hypoglycemia Name = "hypoglycemia"
	AUR          Name = "aur"
	HOB          Name = "hob"
	Sepsis       Name = "sepsis"
)

// Parse validates a protocol selector string.
func Parse(s string) (Name, error) {
	switch Name(s) {
	case Hypoglycemia, AUR, HOB, Sepsis:
		return Name(s), nil
	}
	return "", fmt.Errorf("unknown protocol %q", s)
}

// HypoglycemiaConfig carries the glycemic-control measure parameters.
type HypoglycemiaConfig struct {
	SevereBelow   float64 // strict <, severe band
	ModerateBelow float64 // strict <, moderate band lower edge is SevereBelow
	MildBelow     float64 // strict <, mild band lower edge is ModerateBelow

	MedAssociationWindow time.Duration // antidiabetic given within this window prior
	PreAdmissionGrace    time.Duration // antidiabetic ending this close before admission still associates
	RepeatBGWindow       time.Duration // repeat glucose this soon after the low can void it
	RepeatBGAbove        float64       // strict >, voiding repeat threshold
	ResolutionAt         float64       // ≥, post-event resolution check

	GlucoseSet      string
	AntidiabeticSet string

	// Encounters with class EMER are still evaluated. The upstream measure's
	// location value set admits ED-only encounters into the initial
	// population; that behavior is documented and reproduced as-is.
	IncludeEDOnly bool
}

// DefaultHypoglycemia returns the published measure parameters.
func DefaultHypoglycemia() HypoglycemiaConfig {
	return HypoglycemiaConfig{
		SevereBelow:          40,
		ModerateBelow:        54,
		MildBelow:            71,
		MedAssociationWindow: 24 * time.Hour,
		PreAdmissionGrace:    time.Hour,
		RepeatBGWindow:       5 * time.Minute,
		RepeatBGAbove:        80,
		ResolutionAt:         70,
		GlucoseSet:           terminology.SetGlucoseLabs,
		AntidiabeticSet:      terminology.SetAntidiabetics,
		IncludeEDOnly:        true,
	}
}

// AURConfig carries the antimicrobial use and resistance parameters.
type AURConfig struct {
	AR dedup.ARConfig
}

// DefaultAUR returns the standard AUR parameters.
func DefaultAUR() AURConfig {
	return AURConfig{AR: dedup.DefaultARConfig()}
}

// HOBConfig carries the hospital-onset bacteremia parameters.
type HOBConfig struct {
	HospitalOnsetMinDay     int // first day of hospital onset, normally 4
	CommensalMinTherapyDays int // cumulative targeted-antimicrobial gate

	CommensalSet    string
	BloodCultureSet string
	HighRiskSet     string // non-preventable conditions for the non-measure flag
}

// DefaultHOB returns the standard bacteremia parameters.
func DefaultHOB() HOBConfig {
	return HOBConfig{
		HospitalOnsetMinDay:     4,
		CommensalMinTherapyDays: 4,
		CommensalSet:            terminology.SetSkinCommensals,
		BloodCultureSet:         terminology.SetBloodCultures,
		HighRiskSet:             terminology.SetHighRiskNonPreventable,
	}
}

// SepsisConfig carries the adult sepsis event parameters.
type SepsisConfig struct {
	QAD     antimicrobial.Config
	Organ   organdys.Config
	Onset   onset.Config
	RETDays int
}

// DefaultSepsis returns the adult sepsis event parameters.
func DefaultSepsis() SepsisConfig {
	return SepsisConfig{
		QAD:     antimicrobial.DefaultConfig(),
		Organ:   organdys.DefaultConfig(),
		Onset:   onset.DefaultConfig(),
		RETDays: 7,
	}
}

// Set is the full protocol configuration bundle the orchestrator consumes.
type Set struct {
	Hypoglycemia HypoglycemiaConfig
	AUR          AURConfig
	HOB          HOBConfig
	Sepsis       SepsisConfig
}

// Defaults returns the published parameters for all four protocols.
func Defaults() Set {
	return Set{
		Hypoglycemia: DefaultHypoglycemia(),
		AUR:          DefaultAUR(),
		HOB:          DefaultHOB(),
		Sepsis:       DefaultSepsis(),
	}
}
