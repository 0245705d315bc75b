package harmony

import (
	"math"
	"sort"

	"github.com/harmonia-mir/harmonia/analyze/parts"
	"github.com/harmonia-mir/harmonia/logging"
	"github.com/harmonia-mir/harmonia/score"
)

// TimelineEntry is one chord occurrence on the global harmonic timeline
type TimelineEntry struct {
	Time   float64 `json:"time"`
	Symbol string  `json:"chord_symbol"`
	Root   int     `json:"root"`
}

// GlobalHarmony is the merged harmonic view across all parts
type GlobalHarmony struct {
	TotalChords        int             `json:"total_chords"`
	TotalNotes         int             `json:"total_notes"`
	HarmonicDensity    float64         `json:"harmonic_density"`
	HarmonicComplexity float64         `json:"harmonic_complexity"`
	Timeline           []TimelineEntry `json:"timeline"`

	// merged event lists feed the modal detector and cross-validator
	Chords []score.ChordEvent `json:"-"`
	Notes  []score.NoteEvent  `json:"-"`
}

// Synthesizer merges per-part analyses into one global harmonic
// structure
type Synthesizer struct {
	logger logging.Logger
}

// NewSynthesizer creates a harmonic synthesizer
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{
		logger: logging.WithFields(logging.Fields{
			"component": "harmonic_synthesizer",
		}),
	}
}

// Synthesize concatenates every part's events into one timeline sorted
// stably by start time. Ties keep per-part insertion order with guitar
// parts first, then bass, then everything else.
func (s *Synthesizer) Synthesize(analyses []*parts.PartAnalysis) *GlobalHarmony {
	ordered := make([]*parts.PartAnalysis, len(analyses))
	copy(ordered, analyses)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rolePriority(ordered[i].Instrument) < rolePriority(ordered[j].Instrument)
	})

	var chords []score.ChordEvent
	var notes []score.NoteEvent
	for _, pa := range ordered {
		chords = append(chords, pa.Chords...)
		notes = append(notes, pa.Notes...)
	}
	sort.SliceStable(chords, func(i, j int) bool {
		return chords[i].Start < chords[j].Start
	})
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Start < notes[j].Start
	})

	distinct := make(map[string]struct{})
	timeline := make([]TimelineEntry, len(chords))
	for i, c := range chords {
		distinct[string(c.Quality)] = struct{}{}
		timeline[i] = TimelineEntry{Time: c.Start, Symbol: c.Symbol, Root: c.Root}
	}

	global := &GlobalHarmony{
		TotalChords:        len(chords),
		TotalNotes:         len(notes),
		HarmonicDensity:    float64(len(chords)) / math.Max(1, float64(len(notes))),
		HarmonicComplexity: float64(len(distinct)) / math.Max(1, float64(len(chords))),
		Timeline:           timeline,
		Chords:             chords,
		Notes:              notes,
	}

	s.logger.Debug("harmonic structure synthesized", logging.Fields{
		"parts":      len(analyses),
		"chords":     global.TotalChords,
		"notes":      global.TotalNotes,
		"density":    global.HarmonicDensity,
		"complexity": global.HarmonicComplexity,
	})
	return global
}

// rolePriority orders parts for tie-breaking on the merged timeline
func rolePriority(r parts.Role) int {
	switch r {
	case parts.RoleGuitar:
		return 0
	case parts.RoleBass:
		return 1
	}
	return 2
}
