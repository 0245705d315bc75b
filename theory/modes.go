package theory

import "gonum.org/v1/gonum/floats"

// ModeNames lists every modal profile in scoring order. Iteration over
// profiles always follows this order so candidate ranking stays
// deterministic across runs.
var ModeNames = []string{
	"ionian",
	"dorian",
	"phrygian",
	"lydian",
	"mixolydian",
	"natural_minor",
	"locrian",
	"harmonic_minor",
	"melodic_minor",
	"phrygian_dominant",
	"double_harmonic",
	"hungarian_minor",
}

// modalProfiles holds the twelve pitch-class weight vectors, indexed by
// scale degree relative to the tonic. Scale tones carry the weight;
// the tonic is always the maximum. Loaded once, never mutated.
var modalProfiles = map[string][]float64{
	"ionian":            {6.5, 1.5, 3.5, 1.5, 4.5, 4.0, 1.5, 5.0, 1.5, 3.5, 1.5, 3.0},
	"dorian":            {6.5, 1.5, 3.5, 4.0, 1.5, 4.0, 1.5, 5.0, 1.5, 4.5, 3.5, 1.5},
	"phrygian":          {6.5, 4.0, 1.5, 4.0, 1.5, 4.0, 1.5, 5.0, 3.5, 1.5, 3.5, 1.5},
	"lydian":            {6.5, 1.5, 3.5, 1.5, 4.5, 1.5, 4.0, 5.0, 1.5, 3.5, 1.5, 3.0},
	"mixolydian":        {6.5, 1.5, 3.5, 1.5, 4.5, 4.0, 1.5, 5.0, 1.5, 3.5, 3.5, 1.5},
	"natural_minor":     {7.0, 2.0, 3.5, 5.5, 2.0, 5.0, 2.0, 4.5, 4.0, 2.5, 3.5, 2.5},
	"locrian":           {6.0, 4.0, 1.5, 4.0, 1.5, 4.0, 3.5, 1.5, 3.5, 1.5, 3.5, 1.5},
	"harmonic_minor":    {7.0, 1.5, 3.5, 4.5, 1.5, 4.0, 1.5, 5.0, 4.0, 1.5, 1.5, 4.0},
	"melodic_minor":     {7.0, 1.5, 3.5, 4.5, 1.5, 4.0, 1.5, 5.0, 1.5, 3.5, 1.5, 4.0},
	"phrygian_dominant": {7.0, 4.5, 1.5, 1.5, 4.5, 4.0, 1.5, 5.0, 3.5, 1.5, 3.0, 1.5},
	"double_harmonic":   {7.0, 4.5, 1.5, 1.5, 4.5, 4.0, 1.5, 5.0, 3.5, 1.5, 1.5, 4.0},
	"hungarian_minor":   {7.0, 1.5, 3.5, 4.5, 1.5, 1.5, 4.0, 5.0, 4.0, 1.5, 1.5, 4.0},
}

// ModalProfile returns the weight vector for a mode name
func ModalProfile(mode string) ([]float64, bool) {
	p, ok := modalProfiles[mode]
	return p, ok
}

// ProfileMax returns the maximum weight of a profile
func ProfileMax(profile []float64) float64 {
	if len(profile) == 0 {
		return 0
	}
	return floats.Max(profile)
}

// RotateProfile shifts a profile so its tonic weight lands on the given
// center pitch class: rotated[center] == profile[0]
func RotateProfile(profile []float64, center int) []float64 {
	n := len(profile)
	rotated := make([]float64, n)
	for i := range profile {
		rotated[i] = profile[((i-center)%n+n)%n]
	}
	return rotated
}
