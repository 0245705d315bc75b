package harmony

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/harmonia-mir/harmonia/analyze/config"
	"github.com/harmonia-mir/harmonia/analyze/parts"
	"github.com/harmonia-mir/harmonia/logging"
	"github.com/harmonia-mir/harmonia/theory"
)

// noBassConfidence is the fixed confidence of a modal result that could
// not be validated against a bass part
const noBassConfidence = 0.5

// maxCandidates caps the ranked candidate list carried in the result
const maxCandidates = 5

// ModalCandidate is one scored (center, mode) hypothesis
type ModalCandidate struct {
	Center          int     `json:"center"`
	KeyCenter       string  `json:"key_center"`
	Mode            string  `json:"mode"`
	Confidence      float64 `json:"confidence"`
	BassCorrelation float64 `json:"bass_correlation"`
}

// ModalAnalysis is the validated modal description of the score
type ModalAnalysis struct {
	KeyCenter            string           `json:"key_center"`
	Center               int              `json:"center"`
	Mode                 string           `json:"mode"`
	Confidence           float64          `json:"validation_confidence"`
	BassValidated        bool             `json:"bass_validated"`
	BassCorrelation      float64          `json:"bass_correlation"`
	BassWeightedAnalysis bool             `json:"bass_weighted_analysis"`
	Candidates           []ModalCandidate `json:"candidates"`
}

// Detector finds the modal center of a synthesized harmonic structure,
// weighting candidates against the bass fundamental line
type Detector struct {
	bassValidationWeight float64
	logger               logging.Logger
}

// NewDetector creates a modal detector. A nil config uses defaults.
func NewDetector(cfg *config.AnalysisConfig) *Detector {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}
	return &Detector{
		bassValidationWeight: cfg.BassValidationWeight,
		logger: logging.WithFields(logging.Fields{
			"component": "modal_detector",
		}),
	}
}

// Detect runs modal detection in three steps: correlate the global
// pitch-class histogram against every (center, mode) rotation, pick the
// candidate the bass line explains best, and gate that choice on the
// bass validation weight. Without a bass line the best histogram match
// is returned unvalidated at fixed confidence.
func (d *Detector) Detect(global *GlobalHarmony, bass []parts.Fundamental) *ModalAnalysis {
	hist := pitchClassHistogram(global)
	candidates := rankCandidates(hist)

	if len(bass) == 0 {
		d.logger.Warn("no bass part, modal result is unvalidated", logging.Fields{
			"key_center": candidates[0].KeyCenter,
			"mode":       candidates[0].Mode,
		})
		best := candidates[0]
		return &ModalAnalysis{
			KeyCenter:  best.KeyCenter,
			Center:     best.Center,
			Mode:       best.Mode,
			Confidence: noBassConfidence,
			Candidates: topCandidates(candidates),
		}
	}

	pcs := make([]int, len(bass))
	for i, f := range bass {
		pcs[i] = f.PitchClass()
	}

	for i := range candidates {
		candidates[i].BassCorrelation = bassExplanation(pcs, candidates[i].Center, candidates[i].Mode)
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.BassCorrelation > best.BassCorrelation {
			best = c
		}
	}

	if best.BassCorrelation >= d.bassValidationWeight {
		d.logger.Debug("modal center validated by bass", logging.Fields{
			"key_center":       best.KeyCenter,
			"mode":             best.Mode,
			"bass_correlation": best.BassCorrelation,
		})
		return &ModalAnalysis{
			KeyCenter:       best.KeyCenter,
			Center:          best.Center,
			Mode:            best.Mode,
			Confidence:      best.BassCorrelation,
			BassValidated:   true,
			BassCorrelation: best.BassCorrelation,
			Candidates:      topCandidates(candidates),
		}
	}

	// the bass disagrees with every histogram candidate: rebuild the
	// estimate from the bass line alone
	center, mode, confidence := bassWeightedDetection(pcs)
	d.logger.Debug("bass-weighted modal re-analysis", logging.Fields{
		"key_center": theory.PitchClassName(center),
		"mode":       mode,
		"confidence": confidence,
	})
	return &ModalAnalysis{
		KeyCenter:            theory.PitchClassName(center),
		Center:               center,
		Mode:                 mode,
		Confidence:           confidence,
		BassValidated:        true,
		BassCorrelation:      bassExplanation(pcs, center, mode),
		BassWeightedAnalysis: true,
		Candidates:           topCandidates(candidates),
	}
}

// pitchClassHistogram builds the duration-weighted, normalized
// pitch-class distribution of the merged timeline
func pitchClassHistogram(global *GlobalHarmony) []float64 {
	hist := make([]float64, 12)
	for _, c := range global.Chords {
		hist[theory.PitchClass(c.Root)] += c.Duration
	}
	for _, n := range global.Notes {
		hist[theory.PitchClass(n.MIDI)] += n.Duration
	}
	if sum := floats.Sum(hist); sum > 0 {
		floats.Scale(1/sum, hist)
	}
	return hist
}

// rankCandidates scores every (center, mode) rotation against the
// histogram by Pearson correlation, ranked best first
func rankCandidates(hist []float64) []ModalCandidate {
	candidates := make([]ModalCandidate, 0, len(theory.ModeNames)*12)
	for _, mode := range theory.ModeNames {
		profile, _ := theory.ModalProfile(mode)
		for center := 0; center < 12; center++ {
			rotated := theory.RotateProfile(profile, center)
			candidates = append(candidates, ModalCandidate{
				Center:     center,
				KeyCenter:  theory.PitchClassName(center),
				Mode:       mode,
				Confidence: clamp01(stat.Correlation(hist, rotated, nil)),
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates
}

// bassExplanation scores how well a (center, mode) candidate explains
// the bass line: the mean profile weight at each bass pitch class
// relative to the center, normalized by the profile peak.
func bassExplanation(pcs []int, center int, mode string) float64 {
	profile, ok := theory.ModalProfile(mode)
	if !ok || len(pcs) == 0 {
		return 0
	}
	peak := theory.ProfileMax(profile)
	if peak <= 0 {
		return 0
	}
	total := 0.0
	for _, pc := range pcs {
		total += profile[theory.PitchClass(pc-center)] / peak
	}
	return total / float64(len(pcs))
}

// bassWeightedDetection re-derives the modal estimate from the bass
// pitch classes alone
func bassWeightedDetection(pcs []int) (int, string, float64) {
	hist := make([]float64, 12)
	for _, pc := range pcs {
		hist[theory.PitchClass(pc)]++
	}
	if sum := floats.Sum(hist); sum > 0 {
		floats.Scale(1/sum, hist)
	}

	bestCenter, bestMode, bestScore := 0, theory.ModeNames[0], math.Inf(-1)
	for _, mode := range theory.ModeNames {
		profile, _ := theory.ModalProfile(mode)
		for center := 0; center < 12; center++ {
			r := stat.Correlation(hist, theory.RotateProfile(profile, center), nil)
			if math.IsNaN(r) {
				continue
			}
			if r > bestScore {
				bestCenter, bestMode, bestScore = center, mode, r
			}
		}
	}
	return bestCenter, bestMode, clamp01(bestScore)
}

func topCandidates(candidates []ModalCandidate) []ModalCandidate {
	if len(candidates) <= maxCandidates {
		return candidates
	}
	return candidates[:maxCandidates]
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
