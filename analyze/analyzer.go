package analyze

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/harmonia-mir/harmonia/analyze/config"
	"github.com/harmonia-mir/harmonia/analyze/harmony"
	"github.com/harmonia-mir/harmonia/analyze/parts"
	"github.com/harmonia-mir/harmonia/analyze/segment"
	"github.com/harmonia-mir/harmonia/analyze/validate"
	"github.com/harmonia-mir/harmonia/logging"
	"github.com/harmonia-mir/harmonia/score"
)

// HarmonicAnalyzer runs the full pipeline over a parsed score:
// classify parts, analyze each part in isolation, synthesize the
// global harmonic structure, detect the modal center against the bass
// line, cross-validate the independent analyses, and segment the
// timeline.
type HarmonicAnalyzer struct {
	cfg          *config.AnalysisConfig
	partAnalyzer *parts.Analyzer
	synth        *harmony.Synthesizer
	detector     *harmony.Detector
	validator    *validate.Validator
	segmenter    *segment.Segmenter
	logger       logging.Logger
}

// NewHarmonicAnalyzer wires all pipeline stages from one shared
// configuration. A nil config uses defaults.
func NewHarmonicAnalyzer(cfg *config.AnalysisConfig) *HarmonicAnalyzer {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}
	return &HarmonicAnalyzer{
		cfg:          cfg,
		partAnalyzer: parts.NewAnalyzer(cfg),
		synth:        harmony.NewSynthesizer(),
		detector:     harmony.NewDetector(cfg),
		validator:    validate.NewValidator(cfg),
		segmenter:    segment.NewSegmenter(cfg),
		logger: logging.WithFields(logging.Fields{
			"component": "harmonic_analyzer",
		}),
	}
}

// AnalyzeScore analyzes sc end to end. Per-part analyses fan out on an
// errgroup, one goroutine per part writing only its own result slot;
// every later stage consumes the joined results. The returned Result
// always describes the outcome, including typed failures: err is
// non-nil for a structural rejection, a cancelled context, or a failed
// precision gate, and the Result mirrors it as a status "error"
// envelope. A failed gate still attaches all computed analyses.
func (a *HarmonicAnalyzer) AnalyzeScore(ctx context.Context, sc *score.Score) (*Result, error) {
	if err := score.Validate(sc); err != nil {
		return errorResult(err), err
	}

	roles := make([]parts.Role, len(sc.Parts))
	for i := range sc.Parts {
		roles[i] = parts.Classify(sc.Parts[i])
	}
	keys := parts.RoleKeys(roles)

	analyses := make([]*parts.PartAnalysis, len(sc.Parts))
	g, gctx := errgroup.WithContext(ctx)
	for i := range sc.Parts {
		i := i // capture
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			analyses[i] = a.partAnalyzer.AnalyzePart(sc.Parts[i], roles[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errorResult(err), err
	}

	individual := make(map[string]*parts.PartAnalysis, len(analyses))
	for i, pa := range analyses {
		if _, taken := individual[keys[i]]; taken {
			a.warn(&PartialDataWarning{
				Reason: fmt.Sprintf("multiple %s parts, keeping the last", keys[i]),
			})
		}
		individual[keys[i]] = pa
		if pa.ValidationStatus == parts.StatusRequiresReview {
			a.warn(&PartialDataWarning{
				Reason: fmt.Sprintf("%s analysis requires review (confidence %.2f)", keys[i], pa.Confidence),
			})
		}
	}

	bassLine := bassFundamentals(analyses)
	if bassLine == nil {
		a.warn(&PartialDataWarning{
			Reason: "no bass part, modal validation precision is reduced",
		})
	}
	global := a.synth.Synthesize(analyses)
	modal := a.detector.Detect(global, bassLine)
	cross := a.validator.Validate(analyses, bassLine, global, modal)
	segments := a.segmenter.Segment(sc, global, modal, cross)

	result := &Result{
		Status:           StatusSuccess,
		PrecisionScore:   cross.OverallPrecision,
		ValidationPassed: cross.ValidationPassed,
		IndividualParts:  individual,
		GlobalStructure:  global,
		Modal:            modal,
		Functional:       newFunctionalAnalysis(modal),
		Segments:         segments,
		CrossValidation:  cross,
	}

	if a.cfg.CrossValidationRequired && !cross.ValidationPassed {
		gateErr := &PrecisionError{
			Score:     cross.OverallPrecision,
			Threshold: a.cfg.PrecisionThreshold,
		}
		result.Status = StatusError
		result.Error = gateErr.Error()
		result.PrecisionScore = 0
		a.logger.Warn("precision gate rejected analysis", logging.Fields{
			"precision": gateErr.Score,
			"threshold": gateErr.Threshold,
		})
		return result, gateErr
	}

	a.logger.Info("analysis complete", logging.Fields{
		"parts":             len(individual),
		"key_center":        modal.KeyCenter,
		"mode":              modal.Mode,
		"precision":         cross.OverallPrecision,
		"validation_passed": cross.ValidationPassed,
		"segments":          len(segments),
	})
	return result, nil
}

// bassFundamentals extracts the fundamental line from the last
// classified bass part, matching the part that wins the result map
// slot on collisions. Scores without a bass part return nil.
func bassFundamentals(analyses []*parts.PartAnalysis) []parts.Fundamental {
	var bassPart *parts.PartAnalysis
	for _, pa := range analyses {
		if pa.Instrument == parts.RoleBass {
			bassPart = pa
		}
	}
	if bassPart == nil {
		return nil
	}
	return parts.Fundamentals(bassPart.Notes, bassPart.Chords)
}

func (a *HarmonicAnalyzer) warn(w *PartialDataWarning) {
	a.logger.Warn(w.Error())
}
