package segment

import (
	"math"

	"github.com/harmonia-mir/harmonia/analyze/config"
	"github.com/harmonia-mir/harmonia/analyze/harmony"
	"github.com/harmonia-mir/harmonia/analyze/validate"
	"github.com/harmonia-mir/harmonia/logging"
	"github.com/harmonia-mir/harmonia/score"
	"github.com/harmonia-mir/harmonia/theory"
)

const beatsPerMeasure = 4.0

// BassValidation summarizes how the segment's modal assignment was
// validated against the bass line
type BassValidation struct {
	Validated    bool    `json:"validated"`
	Correlation  float64 `json:"correlation"`
	BassWeighted bool    `json:"bass_weighted"`
}

// Validation is the segment-local re-validation block, independent of
// the global acceptance gate
type Validation struct {
	Precision       float64 `json:"precision"`
	BassValidation  float64 `json:"bass_validation"`
	TimingPrecision float64 `json:"timing_precision"`
}

// Segment describes one fixed-length analysis window
type Segment struct {
	StartTime        float64        `json:"start_time"`
	EndTime          float64        `json:"end_time"`
	StartMeasure     int            `json:"start_measure"`
	EndMeasure       int            `json:"end_measure"`
	KeyCenter        string         `json:"key_center"`
	Mode             string         `json:"mode"`
	Confidence       float64        `json:"confidence"`
	PrecisionScore   float64        `json:"precision_score"`
	ChordProgression []string       `json:"chord_progression"`
	HarmonicTension  float64        `json:"harmonic_tension"`
	BassValidation   BassValidation `json:"bass_validation"`
	CrossValidation  Validation     `json:"cross_validation"`
}

// Segmenter slices the analyzed score into overlapping windows
type Segmenter struct {
	windowSize float64
	hopSize    float64
	logger     logging.Logger
}

// NewSegmenter creates a segmenter. A nil config uses defaults.
func NewSegmenter(cfg *config.AnalysisConfig) *Segmenter {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}
	return &Segmenter{
		windowSize: cfg.WindowSize,
		hopSize:    cfg.HopSize,
		logger: logging.WithFields(logging.Fields{
			"component": "segmenter",
		}),
	}
}

// Segment windows the merged timeline, reusing the globally validated
// modal result per window. Iteration stops with the first window whose
// end reaches the score's duration, so ends never exceed it.
func (s *Segmenter) Segment(sc *score.Score, global *harmony.GlobalHarmony,
	modal *harmony.ModalAnalysis, cross *validate.CrossValidation) []Segment {

	duration := sc.End()
	if duration <= 0 {
		return nil
	}

	tempo := sc.Tempo
	if tempo <= 0 {
		tempo = score.DefaultTempo
	}
	secondsPerBeat := 60 / tempo

	timing := 1.0
	if cross.TimingAccuracy != nil {
		timing = *cross.TimingAccuracy
	}
	local := Validation{
		Precision:       cross.OverallPrecision,
		BassValidation:  modal.BassCorrelation,
		TimingPrecision: timing,
	}
	bassBlock := BassValidation{
		Validated:    modal.BassValidated,
		Correlation:  modal.BassCorrelation,
		BassWeighted: modal.BassWeightedAnalysis,
	}

	var segments []Segment
	for start := 0.0; start < duration; start += s.hopSize {
		end := math.Min(start+s.windowSize, duration)
		segments = append(segments, Segment{
			StartTime:        start * secondsPerBeat,
			EndTime:          end * secondsPerBeat,
			StartMeasure:     measureNumber(start),
			EndMeasure:       measureNumber(end),
			KeyCenter:        modal.KeyCenter,
			Mode:             modal.Mode,
			Confidence:       modal.Confidence,
			PrecisionScore:   cross.OverallPrecision,
			ChordProgression: progressionIn(global.Chords, start, end),
			HarmonicTension:  tensionIn(global.Chords, start, end),
			BassValidation:   bassBlock,
			CrossValidation:  local,
		})
		if end >= duration {
			break
		}
	}

	s.logger.Debug("score segmented", logging.Fields{
		"segments":    len(segments),
		"window_size": s.windowSize,
		"hop_size":    s.hopSize,
		"duration":    duration,
	})
	return segments
}

// measureNumber converts a beat position to a 1-based measure number in
// common time
func measureNumber(beat float64) int {
	return int(beat/beatsPerMeasure) + 1
}

// progressionIn collects the symbols of chords starting in [start, end)
func progressionIn(chords []score.ChordEvent, start, end float64) []string {
	symbols := []string{}
	for _, c := range chords {
		if c.Start >= start && c.Start < end {
			symbols = append(symbols, c.Symbol)
		}
	}
	return symbols
}

// tensionIn averages the per-quality tension weights of chords starting
// in [start, end); an empty window is fully relaxed
func tensionIn(chords []score.ChordEvent, start, end float64) float64 {
	total, count := 0.0, 0
	for _, c := range chords {
		if c.Start >= start && c.Start < end {
			total += theory.TensionWeight(c.Quality)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
