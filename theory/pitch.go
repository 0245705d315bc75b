package theory

import (
	"fmt"
	"strconv"
	"strings"
)

// pitchClassNames maps pitch class (0=C .. 11=B) to note names, sharps only
var pitchClassNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// letterSemitones maps note letters to their semitone offset from C
var letterSemitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// PitchClass returns the pitch class (0-11) of a MIDI note number
func PitchClass(midi int) int {
	return ((midi % 12) + 12) % 12
}

// PitchClassName returns the note name for a pitch class (0=C, 1=C#, ..., 11=B)
func PitchClassName(pc int) string {
	return pitchClassNames[((pc%12)+12)%12]
}

// NoteName returns the name+octave for a MIDI note number (60 -> "C4")
func NoteName(midi int) string {
	octave := midi/12 - 1
	return fmt.Sprintf("%s%d", pitchClassNames[PitchClass(midi)], octave)
}

// ParseNote parses a note name with octave ("D4", "Bb2", "A-1") into a
// MIDI note number. Accidentals: '#' raises, 'b' lowers.
func ParseNote(name string) (int, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, fmt.Errorf("empty note name")
	}

	letter := s[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	semitone, ok := letterSemitones[letter]
	if !ok {
		return 0, fmt.Errorf("invalid note letter %q in %q", s[0], name)
	}

	rest := s[1:]
	for len(rest) > 0 {
		if rest[0] == '#' {
			semitone++
		} else if rest[0] == 'b' {
			semitone--
		} else {
			break
		}
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in note %q: %w", name, err)
	}

	midi := (octave+1)*12 + semitone
	if midi < 0 || midi > 127 {
		return 0, fmt.Errorf("note %q outside MIDI range: %d", name, midi)
	}
	return midi, nil
}

// IntervalFromRoot returns the interval in semitones (0-11) of a pitch
// class above a root pitch class
func IntervalFromRoot(pc, root int) int {
	return ((pc-root)%12 + 12) % 12
}
