package parts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-mir/harmonia/score"
	"github.com/harmonia-mir/harmonia/theory"
)

func TestAnalyzePartGuitar(t *testing.T) {
	t.Parallel()

	part := score.Part{
		Name:  "Rhythm Guitar",
		Notes: notesAt(64),
		Chords: []score.ChordEvent{
			{MIDIs: []int{62, 69}, Start: 0, Duration: 2},
			{MIDIs: []int{57, 60, 64}, Start: 2, Duration: 2},
		},
	}

	analysis := NewAnalyzer(nil).AnalyzePart(part, RoleGuitar)

	assert.Equal(t, RoleGuitar, analysis.Instrument)
	assert.Equal(t, []string{"E4", "B3", "G3", "D3", "A2", "E2"}, analysis.Tuning,
		"missing tuning falls back to standard guitar")
	assert.Equal(t, 1, analysis.NoteCount)
	assert.Equal(t, 2, analysis.ChordCount)

	require.Len(t, analysis.Chords, 2)
	power := analysis.Chords[0]
	assert.Equal(t, theory.QualityPower, power.Quality)
	assert.Equal(t, "D5", power.Symbol)
	assert.Equal(t, 2, power.Root)
	assert.Equal(t, theory.VoicingPower, power.Voicing)
	assert.Equal(t, 0, power.Inversion)

	am := analysis.Chords[1]
	assert.Equal(t, theory.QualityMinor, am.Quality)
	assert.Equal(t, "Am", am.Symbol)

	assert.InDelta(t, 0.5, analysis.Harmonic["power_chord_ratio"], 1e-9)
	assert.Equal(t, map[string]int{"power_chord": 1, "triad": 1},
		analysis.Harmonic["voicing_distribution"])
	assert.Equal(t, map[string]int{"power": 1, "minor": 1},
		analysis.Harmonic["chord_types"])

	rhythm, ok := analysis.Harmonic["harmonic_rhythm"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "slow", rhythm["classification"])
	assert.InDelta(t, 2.0, rhythm["mean_chord_duration"], 1e-9)
	assert.InDelta(t, 2.0, rhythm["changes_per_measure"], 1e-9)

	// sparse part: coverage components stay low
	assert.Equal(t, StatusRequiresReview, analysis.ValidationStatus)
	assert.Greater(t, analysis.Confidence, 0.0)
	assert.Less(t, analysis.Confidence, 0.8)
}

func TestAnalyzePartGuitarNoChords(t *testing.T) {
	t.Parallel()

	part := score.Part{Name: "Guitar", Notes: notesAt(64, 67)}
	analysis := NewAnalyzer(nil).AnalyzePart(part, RoleGuitar)

	assert.InDelta(t, 0.0, analysis.Harmonic["power_chord_ratio"], 1e-9)
	assert.Nil(t, analysis.Harmonic["harmonic_rhythm"])
}

func TestAnalyzePartBass(t *testing.T) {
	t.Parallel()

	part := score.Part{
		Name:   "Bass",
		Tuning: []string{"G2", "D2", "A1", "E1"},
		Notes: []score.NoteEvent{
			{MIDI: 28, Start: 0, Duration: 1},
			{MIDI: 33, Start: 1, Duration: 1},
		},
		Chords: []score.ChordEvent{
			{MIDIs: []int{38, 45}, Start: 2, Duration: 1},
		},
	}

	analysis := NewAnalyzer(nil).AnalyzePart(part, RoleBass)

	assert.Equal(t, []string{"G2", "D2", "A1", "E1"}, analysis.Tuning)

	require.Len(t, analysis.Chords, 1)
	assert.Equal(t, theory.QualityFundamental, analysis.Chords[0].Quality)
	assert.Equal(t, 2, analysis.Chords[0].Root, "fundamental roots on the lowest pitch")
	assert.Equal(t, "D", analysis.Chords[0].Symbol)

	assert.Equal(t, []string{"E1", "A1", "D2"}, analysis.Harmonic["fundamental_sequence"])
	assert.Equal(t, "leaping", analysis.Harmonic["movement"])
	assert.InDelta(t, 10.0, analysis.Harmonic["total_movement"], 1e-9)
}

func TestAnalyzePartDrums(t *testing.T) {
	t.Parallel()

	part := score.Part{Name: "Drum", Notes: notesAt(36, 38, 36, 38)}
	analysis := NewAnalyzer(nil).AnalyzePart(part, RoleDrums)

	assert.Empty(t, analysis.Tuning)
	assert.Equal(t, 4, analysis.Harmonic["rhythmic_density"])
	assert.InDelta(t, 0.8, analysis.Harmonic["groove_stability"], 1e-9)
	assert.Equal(t, "steady", analysis.Harmonic["tempo_stability"])
}

func TestAnalyzePartGeneric(t *testing.T) {
	t.Parallel()

	part := score.Part{
		Name:   "Synth",
		Notes:  notesAt(55, 57),
		Chords: []score.ChordEvent{{MIDIs: []int{55, 62}, Start: 0, Duration: 1}},
	}
	analysis := NewAnalyzer(nil).AnalyzePart(part, RoleUnknown)

	assert.Equal(t, 2, analysis.Harmonic["note_count"])
	assert.Equal(t, 1, analysis.Harmonic["chord_count"])
	assert.InDelta(t, 0.5, analysis.Harmonic["density"], 1e-9)
}

func TestAnalyzePartConfidenceSaturates(t *testing.T) {
	t.Parallel()

	part := score.Part{Name: "Guitar"}
	for i := 0; i < 60; i++ {
		part.Notes = append(part.Notes, score.NoteEvent{MIDI: 60, Start: float64(i), Duration: 1})
	}
	for i := 0; i < 25; i++ {
		part.Chords = append(part.Chords, score.ChordEvent{
			MIDIs: []int{48, 55}, Start: float64(i), Duration: 1,
		})
	}

	analysis := NewAnalyzer(nil).AnalyzePart(part, RoleGuitar)

	assert.InDelta(t, 1.0, analysis.Confidence, 1e-9)
	assert.Equal(t, StatusValidated, analysis.ValidationStatus)
}

func TestAnalyzePartLeavesScoreUntouched(t *testing.T) {
	t.Parallel()

	part := score.Part{
		Name:   "Guitar",
		Chords: []score.ChordEvent{{MIDIs: []int{62, 69}, Start: 0, Duration: 1}},
	}
	_ = NewAnalyzer(nil).AnalyzePart(part, RoleGuitar)

	assert.Equal(t, theory.ChordQuality(""), part.Chords[0].Quality,
		"enrichment works on copies")
	assert.Empty(t, part.Chords[0].Symbol)
}

func TestFundamentals(t *testing.T) {
	t.Parallel()

	line := Fundamentals(
		[]score.NoteEvent{{MIDI: 33, Start: 2, Duration: 1}},
		[]score.ChordEvent{{MIDIs: []int{40, 28, 35}, Start: 0, Duration: 1}},
	)

	require.Len(t, line, 2)
	assert.Equal(t, 28, line[0].MIDI, "chord contributes its lowest pitch")
	assert.InDelta(t, 0.0, line[0].Start, 1e-9)
	assert.Equal(t, 33, line[1].MIDI)
	assert.Equal(t, 4, line[0].PitchClass())
}
