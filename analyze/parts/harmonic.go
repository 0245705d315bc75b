package parts

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/harmonia-mir/harmonia/score"
	"github.com/harmonia-mir/harmonia/theory"
)

const beatsPerMeasure = 4.0

// Fundamental is one occurrence of a bass fundamental: the lowest pitch
// sounding at a given start time
type Fundamental struct {
	Start float64
	MIDI  int
}

// PitchClass returns the fundamental's pitch class 0-11
func (f Fundamental) PitchClass() int {
	return theory.PitchClass(f.MIDI)
}

// Fundamentals extracts the ordered fundamental line from a part's
// events: note pitches as-is, the lowest pitch of each chord
func Fundamentals(notes []score.NoteEvent, chords []score.ChordEvent) []Fundamental {
	line := make([]Fundamental, 0, len(notes)+len(chords))
	for _, n := range notes {
		line = append(line, Fundamental{Start: n.Start, MIDI: n.MIDI})
	}
	for _, c := range chords {
		if len(c.MIDIs) == 0 {
			continue
		}
		lowest := c.MIDIs[0]
		for _, m := range c.MIDIs[1:] {
			if m < lowest {
				lowest = m
			}
		}
		line = append(line, Fundamental{Start: c.Start, MIDI: lowest})
	}
	sort.SliceStable(line, func(i, j int) bool {
		return line[i].Start < line[j].Start
	})
	return line
}

// harmonicProfile builds the instrument-specific harmonic dictionary.
// Entries that cannot be computed from the available events are present
// but nil, which lowers the part's confidence.
func harmonicProfile(role Role, notes []score.NoteEvent, chords []score.ChordEvent) map[string]any {
	switch role {
	case RoleGuitar:
		return guitarHarmonic(chords)
	case RoleBass:
		return bassHarmonic(notes, chords)
	case RoleDrums:
		return drumsHarmonic(notes, chords)
	}
	return genericHarmonic(notes, chords)
}

// guitarHarmonic profiles chord usage: how much of the playing is power
// chords, which voicings and qualities appear, and how fast the harmony
// moves
func guitarHarmonic(chords []score.ChordEvent) map[string]any {
	harmonic := map[string]any{
		"power_chord_ratio":    0.0,
		"voicing_distribution": voicingDistribution(chords),
		"chord_types":          chordTypes(chords),
		"harmonic_rhythm":      nil,
	}
	if len(chords) == 0 {
		return harmonic
	}

	power := 0
	for _, c := range chords {
		if c.Quality == theory.QualityPower {
			power++
		}
	}
	harmonic["power_chord_ratio"] = float64(power) / float64(len(chords))
	harmonic["harmonic_rhythm"] = harmonicRhythm(chords)
	return harmonic
}

// harmonicRhythm classifies how quickly the harmony moves from the mean
// chord duration, in beats
func harmonicRhythm(chords []score.ChordEvent) map[string]any {
	durations := make([]float64, len(chords))
	for i, c := range chords {
		durations[i] = c.Duration
	}
	mean := stat.Mean(durations, nil)

	class := "slow"
	switch {
	case mean < 1:
		class = "fast"
	case mean < 2:
		class = "moderate"
	}

	changes := 0.0
	if mean > 0 {
		changes = beatsPerMeasure / mean
	}

	return map[string]any{
		"mean_chord_duration": mean,
		"classification":      class,
		"changes_per_measure": changes,
	}
}

// bassHarmonic profiles the fundamental line and its melodic movement
func bassHarmonic(notes []score.NoteEvent, chords []score.ChordEvent) map[string]any {
	fundamentals := Fundamentals(notes, chords)

	sequence := make([]string, len(fundamentals))
	for i, f := range fundamentals {
		sequence[i] = theory.NoteName(f.MIDI)
	}

	harmonic := map[string]any{
		"fundamental_sequence": sequence,
		"movement":             nil,
		"total_movement":       0.0,
	}
	if len(fundamentals) < 2 {
		return harmonic
	}

	deltas := make([]float64, len(fundamentals)-1)
	for i := 1; i < len(fundamentals); i++ {
		deltas[i-1] = math.Abs(float64(fundamentals[i].MIDI - fundamentals[i-1].MIDI))
	}
	harmonic["movement"] = movementClass(stat.Mean(deltas, nil))
	harmonic["total_movement"] = floats.Sum(deltas)
	return harmonic
}

// movementClass buckets a bass line by its mean interval, in semitones
func movementClass(meanInterval float64) string {
	switch {
	case meanInterval <= 2:
		return "stepwise"
	case meanInterval <= 7:
		return "leaping"
	}
	return "wide"
}

// drumsHarmonic is intentionally thin: groove and tempo stability are
// fixed placeholder scores, not measurements
func drumsHarmonic(notes []score.NoteEvent, chords []score.ChordEvent) map[string]any {
	return map[string]any{
		"rhythmic_density": len(notes) + len(chords),
		"groove_stability": 0.8,
		"tempo_stability":  "steady",
	}
}

// genericHarmonic covers vocals and unclassified parts with bare event
// statistics; density mirrors the global chords-per-note ratio
func genericHarmonic(notes []score.NoteEvent, chords []score.ChordEvent) map[string]any {
	return map[string]any{
		"note_count":  len(notes),
		"chord_count": len(chords),
		"density":     float64(len(chords)) / math.Max(1, float64(len(notes))),
	}
}

func voicingDistribution(chords []score.ChordEvent) map[string]int {
	dist := make(map[string]int)
	for _, c := range chords {
		dist[string(c.Voicing)]++
	}
	return dist
}

func chordTypes(chords []score.ChordEvent) map[string]int {
	types := make(map[string]int)
	for _, c := range chords {
		types[string(c.Quality)]++
	}
	return types
}
