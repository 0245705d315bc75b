package theory

import "sort"

// ChordQuality represents the quality/type of a chord
type ChordQuality string

const (
	QualityPower       ChordQuality = "power"
	QualityMajor       ChordQuality = "major"
	QualityMinor       ChordQuality = "minor"
	QualityDiminished  ChordQuality = "diminished"
	QualityAugmented   ChordQuality = "augmented"
	QualityFundamental ChordQuality = "fundamental"
	QualityUnknown     ChordQuality = "unknown"
)

// Voicing classifies a chord by its pitch count and construction
type Voicing string

const (
	VoicingPower    Voicing = "power_chord"
	VoicingTriad    Voicing = "triad"
	VoicingSeventh  Voicing = "seventh_chord"
	VoicingExtended Voicing = "extended_chord"
)

// PerfectFifth is the defining interval of a power chord, in semitones
const PerfectFifth = 7

// qualityIntervals holds the canonical interval sets checked by
// IdentifyQuality, in rule order: minor before major, diminished before
// augmented
var qualityIntervals = []struct {
	quality   ChordQuality
	intervals []int
}{
	{QualityMinor, []int{3, 7}},
	{QualityMajor, []int{4, 7}},
	{QualityDiminished, []int{6}},
	{QualityAugmented, []int{8}},
}

// tensionWeights maps chord quality to a fixed harmonic tension estimate
var tensionWeights = map[ChordQuality]float64{
	QualityPower:      0.3,
	QualityMajor:      0.4,
	QualityMinor:      0.7,
	QualityDiminished: 0.7,
}

// TensionWeight returns the tension estimate for a chord quality.
// Qualities without a dedicated entry score 0.5.
func TensionWeight(q ChordQuality) float64 {
	if w, ok := tensionWeights[q]; ok {
		return w
	}
	return 0.5
}

// IdentifyQuality derives root pitch class and quality from the MIDI
// pitches of a chord. The lowest pitch is the root. Exactly two pitches
// a perfect fifth apart (mod 12, measured upward from the lower pitch)
// form a power chord; otherwise the interval set from the root decides.
func IdentifyQuality(midis []int) (root int, quality ChordQuality) {
	if len(midis) == 0 {
		return 0, QualityUnknown
	}

	sorted := make([]int, len(midis))
	copy(sorted, midis)
	sort.Ints(sorted)

	root = PitchClass(sorted[0])
	if len(sorted) == 1 {
		return root, QualityUnknown
	}

	if len(sorted) == 2 {
		if IntervalFromRoot(PitchClass(sorted[1]), root) == PerfectFifth {
			return root, QualityPower
		}
	}

	intervals := intervalSet(sorted, root)
	for _, rule := range qualityIntervals {
		matched := true
		for _, iv := range rule.intervals {
			if !intervals[iv] {
				matched = false
				break
			}
		}
		if matched {
			return root, rule.quality
		}
	}

	return root, QualityUnknown
}

// intervalSet collects the distinct intervals above root present in the
// given pitches
func intervalSet(midis []int, root int) map[int]bool {
	set := make(map[int]bool, len(midis))
	for _, m := range midis {
		set[IntervalFromRoot(PitchClass(m), root)] = true
	}
	return set
}

// ChordSymbol builds the display symbol for a root pitch class and
// quality ("D5", "Dm", "Ddim")
func ChordSymbol(root int, quality ChordQuality) string {
	name := PitchClassName(root)
	switch quality {
	case QualityPower:
		return name + "5"
	case QualityMinor:
		return name + "m"
	case QualityDiminished:
		return name + "dim"
	case QualityAugmented:
		return name + "aug"
	default:
		return name
	}
}

// ClassifyVoicing buckets a chord by pitch count. Two-pitch chords are
// power voicings only when the quality agrees.
func ClassifyVoicing(pitchCount int, quality ChordQuality) Voicing {
	switch {
	case pitchCount == 2 && quality == QualityPower:
		return VoicingPower
	case pitchCount <= 3:
		return VoicingTriad
	case pitchCount == 4:
		return VoicingSeventh
	default:
		return VoicingExtended
	}
}

// Inversion returns the index of the bass interval within the quality's
// canonical chord tones. Root-position chords return 0.
func Inversion(bassPC, root int, quality ChordQuality) int {
	bassInterval := IntervalFromRoot(bassPC, root)
	if bassInterval == 0 {
		return 0
	}
	for _, rule := range qualityIntervals {
		if rule.quality != quality {
			continue
		}
		for i, iv := range rule.intervals {
			if iv == bassInterval {
				return i + 1
			}
		}
	}
	return 0
}
