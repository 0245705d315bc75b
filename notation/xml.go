package notation

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	"github.com/harmonia-mir/harmonia/score"
	"github.com/harmonia-mir/harmonia/theory"
)

// ToneLib-style tab XML. Tunings are MIDI note numbers per string, one
// track per instrument, bars of beats, notes addressed by fret+string.
type xmlScore struct {
	XMLName  xml.Name    `xml:"Score"`
	Info     xmlInfo     `xml:"info"`
	BarIndex xmlBarIndex `xml:"BarIndex"`
	Tracks   xmlTracks   `xml:"Tracks"`
}

type xmlInfo struct {
	Name   string `xml:"name"`
	Artist string `xml:"artist"`
}

type xmlBarIndex struct {
	Bars []xmlIndexBar `xml:"Bar"`
}

type xmlIndexBar struct {
	ID       int          `xml:"id,attr"`
	Tempo    int          `xml:"tempo,attr"`
	TimeSign *xmlTimeSign `xml:"time_sign"`
}

type xmlTimeSign struct {
	Numerator int `xml:"numerator,attr"`
	Duration  int `xml:"duration,attr"`
}

type xmlTracks struct {
	Tracks []xmlTrack `xml:"Track"`
}

type xmlTrack struct {
	Name    string       `xml:"name,attr"`
	Strings xmlStrings   `xml:"Strings"`
	Bars    xmlTrackBars `xml:"Bars"`
}

type xmlStrings struct {
	Strings []xmlString `xml:"String"`
}

type xmlString struct {
	ID     int `xml:"id,attr"`
	Tuning int `xml:"tuning,attr"`
}

type xmlTrackBars struct {
	Bars []xmlTrackBar `xml:"Bar"`
}

type xmlTrackBar struct {
	ID    int       `xml:"id,attr"`
	Beats []xmlBeat `xml:"Beat"`
}

type xmlBeat struct {
	Duration int       `xml:"duration,attr"`
	Dotted   int       `xml:"dotted,attr"`
	Dyn      string    `xml:"dyn,attr"`
	Notes    []xmlNote `xml:"Note"`
}

type xmlNote struct {
	Fret   int `xml:"fret,attr"`
	String int `xml:"string,attr"`
}

// dynVelocities maps dynamic markings to MIDI velocities
var dynVelocities = map[string]int{
	"pp": 32,
	"p":  48,
	"mp": 56,
	"mf": 64,
	"f":  80,
	"ff": 96,
}

// ParseXML parses a ToneLib-style tab XML document into a normalized
// score
func ParseXML(r io.Reader) (*score.Score, error) {
	var doc xmlScore
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding score xml: %w", err)
	}

	tempo := 0.0
	timeSig := [2]int{4, 4}
	for _, bar := range doc.BarIndex.Bars {
		if tempo == 0 && bar.Tempo > 0 {
			tempo = float64(bar.Tempo)
		}
		if bar.TimeSign != nil && bar.TimeSign.Numerator > 0 && bar.TimeSign.Duration > 0 {
			timeSig = [2]int{bar.TimeSign.Numerator, bar.TimeSign.Duration}
		}
	}
	if tempo == 0 {
		tempo = score.DefaultTempo
	}
	beatsPerBar := float64(timeSig[0]) * 4.0 / float64(timeSig[1])

	parts := make([]score.Part, 0, len(doc.Tracks.Tracks))
	for ti := range doc.Tracks.Tracks {
		part, err := buildXMLPart(&doc.Tracks.Tracks[ti], beatsPerBar)
		if err != nil {
			return nil, fmt.Errorf("track %q: %w", doc.Tracks.Tracks[ti].Name, err)
		}
		parts = append(parts, part)
	}

	s := &score.Score{
		Title:         doc.Info.Name,
		Parts:         parts,
		Tempo:         tempo,
		TimeSignature: timeSig,
	}
	s.Duration = s.End()
	return s, nil
}

func buildXMLPart(track *xmlTrack, beatsPerBar float64) (score.Part, error) {
	tunings, tuningNames := trackTuning(track)
	part := score.Part{Name: track.Name, Tuning: tuningNames}

	bars := make([]xmlTrackBar, len(track.Bars.Bars))
	copy(bars, track.Bars.Bars)
	sort.Slice(bars, func(i, j int) bool { return bars[i].ID < bars[j].ID })

	for _, bar := range bars {
		cursor := float64(bar.ID-1) * beatsPerBar
		for _, beat := range bar.Beats {
			duration := beatDuration(beat)

			switch len(beat.Notes) {
			case 0:
				// rest
			case 1:
				midi, err := noteMIDI(beat.Notes[0], tunings)
				if err != nil {
					return score.Part{}, fmt.Errorf("bar %d: %w", bar.ID, err)
				}
				part.Notes = append(part.Notes, score.NoteEvent{
					Pitch:    theory.NoteName(midi),
					MIDI:     midi,
					Start:    cursor,
					Duration: duration,
					Velocity: dynVelocity(beat.Dyn),
				})
			default:
				chord := score.ChordEvent{Start: cursor, Duration: duration}
				for _, n := range beat.Notes {
					midi, err := noteMIDI(n, tunings)
					if err != nil {
						return score.Part{}, fmt.Errorf("bar %d: %w", bar.ID, err)
					}
					chord.Pitches = append(chord.Pitches, theory.NoteName(midi))
					chord.MIDIs = append(chord.MIDIs, midi)
				}
				part.Chords = append(part.Chords, chord)
			}
			cursor += duration
		}
	}

	return part, nil
}

// trackTuning returns string tunings indexed by string ID plus their
// note names, high string first. Percussion tracks declare tuning 0 on
// every string and get no tuning names.
func trackTuning(track *xmlTrack) (map[int]int, []string) {
	tunings := make(map[int]int, len(track.Strings.Strings))
	allZero := true
	ids := make([]int, 0, len(track.Strings.Strings))
	for _, s := range track.Strings.Strings {
		tunings[s.ID] = s.Tuning
		ids = append(ids, s.ID)
		if s.Tuning != 0 {
			allZero = false
		}
	}
	if allZero || len(ids) == 0 {
		return tunings, nil
	}

	sort.Ints(ids)
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, theory.NoteName(tunings[id]))
	}
	return tunings, names
}

// beatDuration converts a ToneLib duration code (1=whole .. 8=eighth)
// to quarter-note beats
func beatDuration(beat xmlBeat) float64 {
	d := beat.Duration
	if d <= 0 {
		d = 4
	}
	duration := 4.0 / float64(d)
	if beat.Dotted != 0 {
		duration *= 1.5
	}
	return duration
}

func noteMIDI(n xmlNote, tunings map[int]int) (int, error) {
	tuning, ok := tunings[n.String]
	if !ok {
		return 0, fmt.Errorf("note references undefined string %d", n.String)
	}
	midi := tuning + n.Fret
	if midi < 0 || midi > 127 {
		return 0, fmt.Errorf("string %d fret %d outside MIDI range", n.String, n.Fret)
	}
	return midi, nil
}

func dynVelocity(dyn string) int {
	if v, ok := dynVelocities[dyn]; ok {
		return v
	}
	return score.DefaultVelocity
}
