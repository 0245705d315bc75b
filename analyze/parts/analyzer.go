package parts

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/harmonia-mir/harmonia/analyze/config"
	"github.com/harmonia-mir/harmonia/logging"
	"github.com/harmonia-mir/harmonia/score"
	"github.com/harmonia-mir/harmonia/theory"
)

// default tunings, high string first
var (
	defaultGuitarTuning = []string{"E4", "B3", "G3", "D3", "A2", "E2"}
	defaultBassTuning   = []string{"G2", "D2", "A1", "E1"}
)

// validation status values for a part analysis
const (
	StatusValidated      = "validated"
	StatusRequiresReview = "requires_review"
)

// event counts at which the confidence components saturate
const (
	noteSaturation  = 50.0
	chordSaturation = 20.0
)

// PartAnalysis is the per-instrument harmonic description of one part.
// It is created once per analysis run and never mutated afterwards.
type PartAnalysis struct {
	Instrument       Role           `json:"instrument"`
	Tuning           []string       `json:"tuning,omitempty"`
	Harmonic         map[string]any `json:"harmonic_analysis"`
	Confidence       float64        `json:"confidence"`
	ValidationStatus string         `json:"validation_status"`
	NoteCount        int            `json:"note_count"`
	ChordCount       int            `json:"chord_count"`

	// enriched events feed the synthesizer and validators; they are not
	// part of the serialized record
	Notes  []score.NoteEvent  `json:"-"`
	Chords []score.ChordEvent `json:"-"`
}

// Analyzer performs per-part harmonic analysis
type Analyzer struct {
	minConfidence float64
	logger        logging.Logger
}

// NewAnalyzer creates a part analyzer. A nil config uses defaults.
func NewAnalyzer(cfg *config.AnalysisConfig) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}
	return &Analyzer{
		minConfidence: cfg.MinConfidence,
		logger: logging.WithFields(logging.Fields{
			"component": "part_analyzer",
		}),
	}
}

// AnalyzePart derives the harmonic description of one classified part:
// tuning, enriched chord events, the instrument-specific harmonic
// profile, and a confidence score.
func (a *Analyzer) AnalyzePart(p score.Part, role Role) *PartAnalysis {
	tuning := p.Tuning
	if len(tuning) == 0 {
		tuning = defaultTuning(role)
	}

	notes := make([]score.NoteEvent, len(p.Notes))
	copy(notes, p.Notes)
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Start < notes[j].Start
	})

	chords := enrichChords(p.Chords, role)

	harmonic := harmonicProfile(role, notes, chords)
	confidence := analysisConfidence(len(notes), len(chords), harmonic)

	status := StatusValidated
	if confidence < a.minConfidence {
		status = StatusRequiresReview
	}

	a.logger.Debug("part analyzed", logging.Fields{
		"part":       p.Name,
		"instrument": string(role),
		"notes":      len(notes),
		"chords":     len(chords),
		"confidence": confidence,
		"status":     status,
	})

	return &PartAnalysis{
		Instrument:       role,
		Tuning:           tuning,
		Harmonic:         harmonic,
		Confidence:       confidence,
		ValidationStatus: status,
		NoteCount:        len(notes),
		ChordCount:       len(chords),
		Notes:            notes,
		Chords:           chords,
	}
}

func defaultTuning(role Role) []string {
	switch role {
	case RoleGuitar:
		return defaultGuitarTuning
	case RoleBass:
		return defaultBassTuning
	}
	return nil
}

// enrichChords fills the derived chord fields on copies of the input
// events, leaving the score untouched. Bass parts report every
// simultaneity as a fundamental rooted on its lowest pitch; the interval
// rules in theory decide everything else.
func enrichChords(chords []score.ChordEvent, role Role) []score.ChordEvent {
	enriched := make([]score.ChordEvent, len(chords))
	copy(enriched, chords)
	sort.SliceStable(enriched, func(i, j int) bool {
		return enriched[i].Start < enriched[j].Start
	})

	for i := range enriched {
		c := &enriched[i]
		root, quality := theory.IdentifyQuality(c.MIDIs)
		if role == RoleBass {
			quality = theory.QualityFundamental
		}
		c.Root = root
		c.Quality = quality
		c.Symbol = theory.ChordSymbol(root, quality)
		c.Voicing = theory.ClassifyVoicing(len(c.MIDIs), quality)
		c.Inversion = theory.Inversion(lowestPitchClass(c.MIDIs), root, quality)
	}
	return enriched
}

func lowestPitchClass(midis []int) int {
	if len(midis) == 0 {
		return 0
	}
	lowest := midis[0]
	for _, m := range midis[1:] {
		if m < lowest {
			lowest = m
		}
	}
	return theory.PitchClass(lowest)
}

// analysisConfidence blends event coverage with harmonic completeness:
// the mean of a note-count component, a chord-count component, and the
// fraction of harmonic profile entries that could be computed.
func analysisConfidence(noteCount, chordCount int, harmonic map[string]any) float64 {
	components := []float64{
		math.Min(1, float64(noteCount)/noteSaturation),
		math.Min(1, float64(chordCount)/chordSaturation),
		computedFraction(harmonic),
	}
	return stat.Mean(components, nil)
}

// computedFraction reports how much of the harmonic profile holds real
// values rather than nil placeholders
func computedFraction(harmonic map[string]any) float64 {
	if len(harmonic) == 0 {
		return 0
	}
	computed := 0
	for _, v := range harmonic {
		if v != nil {
			computed++
		}
	}
	return float64(computed) / float64(len(harmonic))
}
