package validate

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/harmonia-mir/harmonia/analyze/config"
	"github.com/harmonia-mir/harmonia/analyze/harmony"
	"github.com/harmonia-mir/harmonia/analyze/parts"
	"github.com/harmonia-mir/harmonia/logging"
	"github.com/harmonia-mir/harmonia/theory"
)

// timingVarianceScale maps start-time variance onto the [0,1] accuracy
// score: accuracy = max(0, 1 - variance/scale)
const timingVarianceScale = 0.1

// unvalidatedCoherence is the modal coherence assumed when the modal
// result was not bass validated
const unvalidatedCoherence = 0.6

// CrossValidation aggregates the independent agreement scores. A nil
// sub-score means the check was not computable for this score.
type CrossValidation struct {
	HarmonicMatch        *float64 `json:"harmonic_match,omitempty"`
	TimingAccuracy       *float64 `json:"timing_accuracy,omitempty"`
	BassFundamentalMatch *float64 `json:"bass_fundamental_match,omitempty"`
	ModalCoherence       *float64 `json:"modal_coherence,omitempty"`
	OverallPrecision     float64  `json:"overall_precision"`
	ValidationPassed     bool     `json:"validation_passed"`
}

// Validator scores agreement between independently derived analyses
type Validator struct {
	precisionThreshold float64
	logger             logging.Logger
}

// NewValidator creates a cross-validator. A nil config uses defaults.
func NewValidator(cfg *config.AnalysisConfig) *Validator {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}
	return &Validator{
		precisionThreshold: cfg.PrecisionThreshold,
		logger: logging.WithFields(logging.Fields{
			"component": "cross_validator",
		}),
	}
}

// Validate combines the four agreement checks into one precision score.
// Sub-scores that cannot be computed stay absent and do not dilute the
// mean. The pass flag is inclusive at the threshold.
func (v *Validator) Validate(analyses []*parts.PartAnalysis, bass []parts.Fundamental,
	global *harmony.GlobalHarmony, modal *harmony.ModalAnalysis) *CrossValidation {

	cv := &CrossValidation{
		HarmonicMatch:        harmonicMatch(analyses),
		TimingAccuracy:       timingAccuracy(analyses),
		BassFundamentalMatch: bassFundamentalMatch(bass, global),
		ModalCoherence:       modalCoherence(modal),
	}

	var present []float64
	for _, sub := range []*float64{cv.HarmonicMatch, cv.TimingAccuracy, cv.BassFundamentalMatch, cv.ModalCoherence} {
		if sub != nil {
			present = append(present, *sub)
		}
	}
	if len(present) > 0 {
		cv.OverallPrecision = stat.Mean(present, nil)
	}
	cv.ValidationPassed = cv.OverallPrecision >= v.precisionThreshold

	v.logger.Debug("cross-validation complete", logging.Fields{
		"overall_precision": cv.OverallPrecision,
		"passed":            cv.ValidationPassed,
		"sub_scores":        len(present),
	})
	return cv
}

// harmonicMatch compares the root progressions of the first two guitar
// parts position by position. Absent unless two guitar parts with
// chords exist.
func harmonicMatch(analyses []*parts.PartAnalysis) *float64 {
	var guitars []*parts.PartAnalysis
	for _, pa := range analyses {
		if pa.Instrument == parts.RoleGuitar {
			guitars = append(guitars, pa)
		}
	}
	if len(guitars) < 2 {
		return nil
	}

	first, second := guitars[0].Chords, guitars[1].Chords
	compared := len(first)
	if len(second) < compared {
		compared = len(second)
	}
	if compared == 0 {
		return nil
	}

	matches := 0
	for i := 0; i < compared; i++ {
		if first[i].Root == second[i].Root {
			matches++
		}
	}
	return float64Ptr(float64(matches) / float64(compared))
}

// timingAccuracy maps the variance of every event start across all
// parts onto [0,1]. Fewer than two timestamps score a perfect 1.0.
func timingAccuracy(analyses []*parts.PartAnalysis) *float64 {
	var starts []float64
	for _, pa := range analyses {
		for _, n := range pa.Notes {
			starts = append(starts, n.Start)
		}
		for _, c := range pa.Chords {
			starts = append(starts, c.Start)
		}
	}
	if len(starts) < 2 {
		return float64Ptr(1.0)
	}

	variance := stat.Variance(starts, nil)
	return float64Ptr(math.Max(0, 1-variance/timingVarianceScale))
}

// bassFundamentalMatch tests each bass fundamental against the root of
// the time-nearest global chord. Absent without a bass line or global
// chords.
func bassFundamentalMatch(bass []parts.Fundamental, global *harmony.GlobalHarmony) *float64 {
	if len(bass) == 0 || global == nil || len(global.Chords) == 0 {
		return nil
	}

	matches := 0
	for _, f := range bass {
		nearest := global.Chords[0]
		bestDist := math.Abs(nearest.Start - f.Start)
		for _, c := range global.Chords[1:] {
			if d := math.Abs(c.Start - f.Start); d < bestDist {
				nearest, bestDist = c, d
			}
		}
		if theory.PitchClass(nearest.Root) == f.PitchClass() {
			matches++
		}
	}
	return float64Ptr(float64(matches) / float64(len(bass)))
}

// modalCoherence is the validated modal confidence, or a fixed fallback
// when the modal result was not bass validated
func modalCoherence(modal *harmony.ModalAnalysis) *float64 {
	if modal == nil {
		return nil
	}
	if modal.BassValidated {
		return float64Ptr(modal.Confidence)
	}
	return float64Ptr(unvalidatedCoherence)
}

func float64Ptr(v float64) *float64 {
	return &v
}
