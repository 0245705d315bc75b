package notation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tabXML = `<?xml version="1.0" encoding="UTF-8"?>
<Score>
  <info>
    <name>Test Song</name>
    <artist>Nobody</artist>
  </info>
  <BarIndex>
    <Bar id="1" tempo="140" jam_set="0">
      <time_sign numerator="4" duration="4"/>
    </Bar>
    <Bar id="2" jam_set="0"/>
  </BarIndex>
  <Tracks>
    <Track name="Lead Guitar" id="1">
      <Strings>
        <String id="1" tuning="64"/>
        <String id="2" tuning="59"/>
        <String id="3" tuning="55"/>
        <String id="4" tuning="50"/>
        <String id="5" tuning="45"/>
        <String id="6" tuning="40"/>
      </Strings>
      <Bars>
        <Bar id="1">
          <Beat duration="4" dyn="mf">
            <Note fret="0" string="1"/>
          </Beat>
          <Beat duration="4" dyn="f">
            <Note fret="0" string="4"/>
            <Note fret="2" string="3"/>
          </Beat>
          <Beat duration="2" dyn="mf"/>
        </Bar>
        <Bar id="2">
          <Beat duration="1" dyn="mf">
            <Note fret="3" string="2"/>
          </Beat>
        </Bar>
      </Bars>
    </Track>
    <Track name="Bass" id="2">
      <Strings>
        <String id="1" tuning="43"/>
        <String id="2" tuning="38"/>
        <String id="3" tuning="33"/>
        <String id="4" tuning="28"/>
      </Strings>
      <Bars>
        <Bar id="1">
          <Beat duration="4" dyn="mf">
            <Note fret="0" string="4"/>
          </Beat>
        </Bar>
      </Bars>
    </Track>
  </Tracks>
</Score>`

func TestParseXML(t *testing.T) {
	t.Parallel()

	s, err := ParseXML(strings.NewReader(tabXML))
	require.NoError(t, err)

	assert.Equal(t, "Test Song", s.Title)
	assert.InDelta(t, 140.0, s.Tempo, 1e-9)
	assert.Equal(t, [2]int{4, 4}, s.TimeSignature)
	require.Len(t, s.Parts, 2)

	guitar := s.Parts[0]
	assert.Equal(t, "Lead Guitar", guitar.Name)
	assert.Equal(t, []string{"E4", "B3", "G3", "D3", "A2", "E2"}, guitar.Tuning)

	// open high E string, quarter note at beat 0
	require.Len(t, guitar.Notes, 2)
	assert.Equal(t, "E4", guitar.Notes[0].Pitch)
	assert.Equal(t, 64, guitar.Notes[0].MIDI)
	assert.InDelta(t, 0.0, guitar.Notes[0].Start, 1e-9)
	assert.InDelta(t, 1.0, guitar.Notes[0].Duration, 1e-9)
	assert.Equal(t, 64, guitar.Notes[0].Velocity)

	// two fretted notes in one beat become a chord: D3 open + A3
	require.Len(t, guitar.Chords, 1)
	chord := guitar.Chords[0]
	assert.ElementsMatch(t, []int{50, 57}, chord.MIDIs)
	assert.InDelta(t, 1.0, chord.Start, 1e-9)
	assert.InDelta(t, 1.0, chord.Duration, 1e-9)

	// bar 2 starts after four beats; the half-note rest in bar 1 only
	// advances the cursor
	assert.Equal(t, "D4", guitar.Notes[1].Pitch)
	assert.InDelta(t, 4.0, guitar.Notes[1].Start, 1e-9)
	assert.InDelta(t, 4.0, guitar.Notes[1].Duration, 1e-9)

	bass := s.Parts[1]
	assert.Equal(t, "Bass", bass.Name)
	assert.Equal(t, []string{"G2", "D2", "A1", "E1"}, bass.Tuning)
	require.Len(t, bass.Notes, 1)
	assert.Equal(t, "E1", bass.Notes[0].Pitch)
	assert.Equal(t, 28, bass.Notes[0].MIDI)

	assert.InDelta(t, 8.0, s.Duration, 1e-9)
}

func TestParseXMLDynamicVelocity(t *testing.T) {
	t.Parallel()

	const dynXML = `<Score>
  <BarIndex><Bar id="1" tempo="120"/></BarIndex>
  <Tracks>
    <Track name="G">
      <Strings><String id="1" tuning="64"/></Strings>
      <Bars>
        <Bar id="1">
          <Beat duration="4" dyn="pp"><Note fret="0" string="1"/></Beat>
          <Beat duration="4" dyn="ff"><Note fret="1" string="1"/></Beat>
          <Beat duration="4"><Note fret="2" string="1"/></Beat>
        </Bar>
      </Bars>
    </Track>
  </Tracks>
</Score>`

	s, err := ParseXML(strings.NewReader(dynXML))
	require.NoError(t, err)
	require.Len(t, s.Parts, 1)
	require.Len(t, s.Parts[0].Notes, 3)
	assert.Equal(t, 32, s.Parts[0].Notes[0].Velocity)
	assert.Equal(t, 96, s.Parts[0].Notes[1].Velocity)
	assert.Equal(t, 64, s.Parts[0].Notes[2].Velocity, "missing dynamic falls back to mf")
}

func TestParseXMLPercussionTrack(t *testing.T) {
	t.Parallel()

	const drumXML = `<Score>
  <BarIndex><Bar id="1" tempo="120"/></BarIndex>
  <Tracks>
    <Track name="Drum">
      <Strings>
        <String id="1" tuning="0"/>
        <String id="2" tuning="0"/>
      </Strings>
      <Bars>
        <Bar id="1">
          <Beat duration="8" dyn="mf"><Note fret="36" string="1"/></Beat>
          <Beat duration="8" dyn="mf"><Note fret="38" string="2"/></Beat>
        </Bar>
      </Bars>
    </Track>
  </Tracks>
</Score>`

	s, err := ParseXML(strings.NewReader(drumXML))
	require.NoError(t, err)
	require.Len(t, s.Parts, 1)

	drums := s.Parts[0]
	assert.Empty(t, drums.Tuning, "all-zero tunings mark a percussion track")
	require.Len(t, drums.Notes, 2)
	assert.Equal(t, 36, drums.Notes[0].MIDI, "tuning 0 passes the fret through as MIDI")
	assert.InDelta(t, 0.5, drums.Notes[0].Duration, 1e-9)
	assert.InDelta(t, 0.5, drums.Notes[1].Start, 1e-9)
}

func TestParseXMLErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "not xml", input: "this is not xml"},
		{
			name: "undefined string",
			input: `<Score><BarIndex/><Tracks><Track name="G">
  <Strings><String id="1" tuning="64"/></Strings>
  <Bars><Bar id="1"><Beat duration="4"><Note fret="0" string="9"/></Beat></Bar></Bars>
</Track></Tracks></Score>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseXML(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
