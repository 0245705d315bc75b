package analyze

import (
	"github.com/harmonia-mir/harmonia/analyze/harmony"
	"github.com/harmonia-mir/harmonia/analyze/parts"
	"github.com/harmonia-mir/harmonia/analyze/segment"
	"github.com/harmonia-mir/harmonia/analyze/validate"
)

// Result status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the complete outcome of one analysis run. Typed failures
// keep the same shape with Status "error" and the message in Error; a
// failed precision gate additionally retains every computed analysis.
type Result struct {
	Status           string                         `json:"status"`
	PrecisionScore   float64                        `json:"precision_score"`
	ValidationPassed bool                           `json:"validation_passed"`
	IndividualParts  map[string]*parts.PartAnalysis `json:"individual_parts,omitempty"`
	GlobalStructure  *harmony.GlobalHarmony         `json:"global_harmonic_structure,omitempty"`
	Modal            *harmony.ModalAnalysis         `json:"modal_analysis,omitempty"`
	Functional       *FunctionalAnalysis            `json:"functional_analysis,omitempty"`
	Segments         []segment.Segment              `json:"temporal_segments,omitempty"`
	CrossValidation  *validate.CrossValidation      `json:"cross_validation,omitempty"`
	Error            string                         `json:"error,omitempty"`
}

// FunctionalAnalysis is the extension point for functional-harmony
// interpretation. Modal material rarely supports functional labeling,
// so the assessment stays "modal" with empty chord and cadence lists.
type FunctionalAnalysis struct {
	Mode                 string   `json:"mode"`
	CharacteristicChords []string `json:"characteristic_chords"`
	Cadences             []string `json:"cadences"`
	FunctionalAssessment string   `json:"functional_assessment"`
}

func newFunctionalAnalysis(modal *harmony.ModalAnalysis) *FunctionalAnalysis {
	return &FunctionalAnalysis{
		Mode:                 modal.Mode,
		CharacteristicChords: []string{},
		Cadences:             []string{},
		FunctionalAssessment: "modal",
	}
}

func errorResult(err error) *Result {
	return &Result{
		Status: StatusError,
		Error:  err.Error(),
	}
}
