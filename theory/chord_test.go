package theory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifyQuality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		midis       []int
		wantRoot    int
		wantQuality ChordQuality
	}{
		{name: "power chord D5", midis: []int{62, 69}, wantRoot: 2, wantQuality: QualityPower},
		{name: "power chord E5 low", midis: []int{40, 47}, wantRoot: 4, wantQuality: QualityPower},
		{name: "power chord compound fifth", midis: []int{62, 81}, wantRoot: 2, wantQuality: QualityPower},
		{name: "inverted fifth is not power", midis: []int{45, 50}, wantRoot: 9, wantQuality: QualityUnknown},
		{name: "minor triad Am", midis: []int{45, 48, 52}, wantRoot: 9, wantQuality: QualityMinor},
		{name: "major triad C", midis: []int{48, 52, 55}, wantRoot: 0, wantQuality: QualityMajor},
		{name: "diminished triad", midis: []int{48, 51, 54}, wantRoot: 0, wantQuality: QualityDiminished},
		{name: "augmented triad", midis: []int{48, 52, 56}, wantRoot: 0, wantQuality: QualityAugmented},
		{name: "minor beats major when both thirds present", midis: []int{48, 51, 52, 55}, wantRoot: 0, wantQuality: QualityMinor},
		{name: "single note", midis: []int{60}, wantRoot: 0, wantQuality: QualityUnknown},
		{name: "empty", midis: nil, wantRoot: 0, wantQuality: QualityUnknown},
		{name: "major seventh keeps major rule", midis: []int{48, 52, 55, 59}, wantRoot: 0, wantQuality: QualityMajor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root, quality := IdentifyQuality(tt.midis)
			assert.Equal(t, tt.wantRoot, root)
			assert.Equal(t, tt.wantQuality, quality)
		})
	}
}

func TestChordSymbol(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		root    int
		quality ChordQuality
		want    string
	}{
		{name: "D power", root: 2, quality: QualityPower, want: "D5"},
		{name: "A minor", root: 9, quality: QualityMinor, want: "Am"},
		{name: "C major", root: 0, quality: QualityMajor, want: "C"},
		{name: "B diminished", root: 11, quality: QualityDiminished, want: "Bdim"},
		{name: "F augmented", root: 5, quality: QualityAugmented, want: "Faug"},
		{name: "G fundamental", root: 7, quality: QualityFundamental, want: "G"},
		{name: "sharp root", root: 6, quality: QualityPower, want: "F#5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ChordSymbol(tt.root, tt.quality))
		})
	}
}

func TestPowerChordSymbolFromPitches(t *testing.T) {
	t.Parallel()

	// D4 + A4 must identify as a power chord with symbol D5
	root, quality := IdentifyQuality([]int{62, 69})
	assert.Equal(t, QualityPower, quality)
	assert.Equal(t, "D5", ChordSymbol(root, quality))
}

func TestTensionWeight(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.3, TensionWeight(QualityPower), 1e-12)
	assert.InDelta(t, 0.4, TensionWeight(QualityMajor), 1e-12)
	assert.InDelta(t, 0.7, TensionWeight(QualityMinor), 1e-12)
	assert.InDelta(t, 0.7, TensionWeight(QualityDiminished), 1e-12)
	assert.InDelta(t, 0.5, TensionWeight(QualityAugmented), 1e-12)
	assert.InDelta(t, 0.5, TensionWeight(QualityFundamental), 1e-12)
	assert.InDelta(t, 0.5, TensionWeight(QualityUnknown), 1e-12)
}

func TestClassifyVoicing(t *testing.T) {
	t.Parallel()

	assert.Equal(t, VoicingPower, ClassifyVoicing(2, QualityPower))
	assert.Equal(t, VoicingTriad, ClassifyVoicing(2, QualityUnknown))
	assert.Equal(t, VoicingTriad, ClassifyVoicing(3, QualityMajor))
	assert.Equal(t, VoicingSeventh, ClassifyVoicing(4, QualityMinor))
	assert.Equal(t, VoicingExtended, ClassifyVoicing(5, QualityMajor))
	assert.Equal(t, VoicingExtended, ClassifyVoicing(6, QualityUnknown))
}
