package score

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/harmonia-mir/harmonia/theory"
)

// DefaultVelocity is assumed when a loader has no velocity information
const DefaultVelocity = 64

// DefaultTempo in BPM, applied when a score carries no tempo marking
const DefaultTempo = 120.0

// NoteEvent is a single pitched event with timing in quarter-note beats
type NoteEvent struct {
	Pitch    string  `json:"pitch"`    // Name with octave, e.g. "D4"
	MIDI     int     `json:"midi"`     // MIDI note number (0-127)
	Start    float64 `json:"start"`    // Onset in beats
	Duration float64 `json:"duration"` // Length in beats
	Velocity int     `json:"velocity"` // MIDI velocity (0-127)
}

// ChordEvent is a simultaneous group of pitches. Root, quality, symbol,
// inversion and voicing are derived during analysis; loaders leave them
// zero.
type ChordEvent struct {
	Pitches   []string            `json:"pitches"`
	MIDIs     []int               `json:"midis"`
	Start     float64             `json:"start"`
	Duration  float64             `json:"duration"`
	Root      int                 `json:"root"`
	Quality   theory.ChordQuality `json:"quality,omitempty"`
	Symbol    string              `json:"symbol,omitempty"`
	Inversion int                 `json:"inversion"`
	Voicing   theory.Voicing      `json:"voicing,omitempty"`
}

// Part is one instrumental staff: declared name, string tuning (empty
// for non-stringed instruments) and its ordered events
type Part struct {
	Name   string       `json:"name"`
	Tuning []string     `json:"tuning,omitempty"`
	Notes  []NoteEvent  `json:"notes"`
	Chords []ChordEvent `json:"chords"`
}

// EventCount returns the number of note-bearing events in the part.
// Chords count: every chord carries at least one pitch.
func (p *Part) EventCount() int {
	return len(p.Notes) + len(p.Chords)
}

// MeanMIDI returns the mean MIDI pitch over all note and chord pitches,
// or 0 when the part is empty
func (p *Part) MeanMIDI() float64 {
	pitches := make([]float64, 0, len(p.Notes)+len(p.Chords))
	for _, n := range p.Notes {
		pitches = append(pitches, float64(n.MIDI))
	}
	for _, c := range p.Chords {
		for _, m := range c.MIDIs {
			pitches = append(pitches, float64(m))
		}
	}
	if len(pitches) == 0 {
		return 0
	}
	return stat.Mean(pitches, nil)
}

// End returns the latest event end time in the part, in beats
func (p *Part) End() float64 {
	end := 0.0
	for _, n := range p.Notes {
		if t := n.Start + n.Duration; t > end {
			end = t
		}
	}
	for _, c := range p.Chords {
		if t := c.Start + c.Duration; t > end {
			end = t
		}
	}
	return end
}

// Score is the normalized in-memory representation of a symbolic score.
// Immutable once loaded; owned by a single analysis run.
type Score struct {
	Title         string  `json:"title,omitempty"`
	Parts         []Part  `json:"parts"`
	Duration      float64 `json:"duration"` // Total length in beats
	Tempo         float64 `json:"tempo"`
	TimeSignature [2]int  `json:"time_signature"`
	KeyHint       string  `json:"key_hint,omitempty"`
}

// End returns the score duration, falling back to the latest event end
// across all parts when a loader left Duration unset
func (s *Score) End() float64 {
	if s.Duration > 0 {
		return s.Duration
	}
	end := 0.0
	for i := range s.Parts {
		if t := s.Parts[i].End(); t > end {
			end = t
		}
	}
	return end
}

// StructuralError reports a score that does not meet the minimum
// structure required for analysis
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return e.Reason
}

// Validate enforces the structural minimum: at least two instrumental
// parts, and no part without note events
func Validate(s *Score) error {
	if s == nil {
		return &StructuralError{Reason: "score is nil"}
	}
	if len(s.Parts) < 2 {
		return &StructuralError{
			Reason: fmt.Sprintf("score must contain at least 2 instrumental parts, got %d", len(s.Parts)),
		}
	}
	for i := range s.Parts {
		if s.Parts[i].EventCount() == 0 {
			name := s.Parts[i].Name
			if name == "" {
				name = fmt.Sprintf("part %d", i+1)
			}
			return &StructuralError{
				Reason: fmt.Sprintf("%s has no note events", name),
			}
		}
	}
	return nil
}
