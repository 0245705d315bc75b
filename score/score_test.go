package score

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := &Score{
		Parts: []Part{
			{Name: "Guitar", Notes: []NoteEvent{{Pitch: "E2", MIDI: 40, Start: 0, Duration: 1}}},
			{Name: "Bass", Notes: []NoteEvent{{Pitch: "E1", MIDI: 28, Start: 0, Duration: 1}}},
		},
	}

	tests := []struct {
		name       string
		score      *Score
		wantErr    bool
		wantReason string
	}{
		{name: "two parts with events", score: valid},
		{name: "nil score", score: nil, wantErr: true, wantReason: "score is nil"},
		{
			name:       "single part",
			score:      &Score{Parts: []Part{{Name: "Guitar", Notes: []NoteEvent{{MIDI: 40, Duration: 1}}}}},
			wantErr:    true,
			wantReason: "score must contain at least 2 instrumental parts, got 1",
		},
		{
			name: "empty part",
			score: &Score{Parts: []Part{
				{Name: "Guitar", Notes: []NoteEvent{{MIDI: 40, Duration: 1}}},
				{Name: "Bass"},
			}},
			wantErr:    true,
			wantReason: "Bass has no note events",
		},
		{
			name: "unnamed empty part",
			score: &Score{Parts: []Part{
				{Name: "Guitar", Notes: []NoteEvent{{MIDI: 40, Duration: 1}}},
				{},
			}},
			wantErr:    true,
			wantReason: "part 2 has no note events",
		},
		{
			name: "chord-only part passes",
			score: &Score{Parts: []Part{
				{Name: "Guitar", Chords: []ChordEvent{{MIDIs: []int{40, 47}, Duration: 1}}},
				{Name: "Bass", Notes: []NoteEvent{{MIDI: 28, Duration: 1}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tt.score)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var structural *StructuralError
			require.True(t, errors.As(err, &structural))
			assert.Equal(t, tt.wantReason, structural.Reason)
		})
	}
}

func TestPartMeanMIDI(t *testing.T) {
	t.Parallel()

	p := &Part{
		Notes: []NoteEvent{{MIDI: 40}, {MIDI: 44}},
		Chords: []ChordEvent{
			{MIDIs: []int{48, 52}},
		},
	}
	assert.InDelta(t, 46.0, p.MeanMIDI(), 1e-9)

	empty := &Part{}
	assert.Zero(t, empty.MeanMIDI())
}

func TestScoreEnd(t *testing.T) {
	t.Parallel()

	s := &Score{
		Parts: []Part{
			{Notes: []NoteEvent{{Start: 0, Duration: 2}, {Start: 6, Duration: 1.5}}},
			{Chords: []ChordEvent{{Start: 4, Duration: 2}}},
		},
	}
	assert.InDelta(t, 7.5, s.End(), 1e-9)

	s.Duration = 16
	assert.InDelta(t, 16.0, s.End(), 1e-9)
}

func TestPartEventCount(t *testing.T) {
	t.Parallel()

	p := &Part{
		Notes:  []NoteEvent{{MIDI: 40}},
		Chords: []ChordEvent{{MIDIs: []int{40, 47}}},
	}
	assert.Equal(t, 2, p.EventCount())
}
