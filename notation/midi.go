package notation

import (
	"fmt"
	"io"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/harmonia-mir/harmonia/score"
	"github.com/harmonia-mir/harmonia/theory"
)

// noteSpan is a matched note-on/note-off pair in absolute ticks
type noteSpan struct {
	key       uint8
	velocity  uint8
	startTick int64
	endTick   int64
}

// minEventBeats keeps zero-length spans (note-off on the onset tick)
// from producing zero-duration events
const minEventBeats = 0.125

// ParseSMF parses a Standard MIDI File into a normalized score. One
// part per note-bearing track; notes sharing an onset tick fold into a
// single chord event.
func ParseSMF(r io.Reader) (*score.Score, error) {
	mf, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("reading smf: %w", err)
	}

	ticksPerQuarter := 480.0
	if tf, ok := mf.TimeFormat.(smf.MetricTicks); ok && int(tf) > 0 {
		ticksPerQuarter = float64(int(tf))
	}

	tempo := 0.0
	timeSig := [2]int{4, 4}
	title := ""
	var parts []score.Part

	for i, track := range mf.Tracks {
		var absTicks int64
		trackName := ""
		pending := make(map[uint8]noteSpan)
		var spans []noteSpan

		for _, event := range track {
			absTicks += int64(event.Delta)
			msg := event.Message

			var (
				channel, key, velocity uint8
				name                   string
				bpm                    float64
				num, denom             uint8
			)
			switch {
			case msg.GetMetaTrackName(&name):
				if trackName == "" {
					trackName = name
				}
				if title == "" {
					title = name
				}
			case msg.GetMetaTempo(&bpm):
				if tempo == 0 && bpm > 0 {
					tempo = bpm
				}
			case msg.GetMetaMeter(&num, &denom):
				if num > 0 && denom > 0 {
					timeSig = [2]int{int(num), int(denom)}
				}
			case msg.GetNoteOn(&channel, &key, &velocity):
				if velocity == 0 {
					// running-status note-off
					spans = closeSpan(pending, spans, key, absTicks)
					continue
				}
				pending[key] = noteSpan{key: key, velocity: velocity, startTick: absTicks}
			case msg.GetNoteOff(&channel, &key, &velocity):
				spans = closeSpan(pending, spans, key, absTicks)
			}
		}

		// close anything still sounding at end of track
		for key := range pending {
			spans = closeSpan(pending, spans, key, absTicks)
		}

		if len(spans) == 0 {
			continue
		}
		if trackName == "" {
			trackName = fmt.Sprintf("track %d", i+1)
		}
		parts = append(parts, buildPart(trackName, spans, ticksPerQuarter))
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("smf contains no note events")
	}
	if tempo == 0 {
		tempo = score.DefaultTempo
	}

	s := &score.Score{
		Title:         title,
		Parts:         parts,
		Tempo:         tempo,
		TimeSignature: timeSig,
	}
	s.Duration = s.End()
	return s, nil
}

func closeSpan(pending map[uint8]noteSpan, spans []noteSpan, key uint8, endTick int64) []noteSpan {
	span, ok := pending[key]
	if !ok {
		return spans
	}
	delete(pending, key)
	span.endTick = endTick
	return append(spans, span)
}

// buildPart converts a track's note spans into note and chord events.
// Spans are grouped by onset tick; groups of two or more pitches
// become chords.
func buildPart(name string, spans []noteSpan, ticksPerQuarter float64) score.Part {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].startTick != spans[j].startTick {
			return spans[i].startTick < spans[j].startTick
		}
		return spans[i].key < spans[j].key
	})

	part := score.Part{Name: name}

	for i := 0; i < len(spans); {
		j := i + 1
		for j < len(spans) && spans[j].startTick == spans[i].startTick {
			j++
		}
		group := spans[i:j]

		start := float64(group[0].startTick) / ticksPerQuarter
		endTick := group[0].endTick
		for _, sp := range group {
			if sp.endTick > endTick {
				endTick = sp.endTick
			}
		}
		duration := float64(endTick-group[0].startTick) / ticksPerQuarter
		if duration < minEventBeats {
			duration = minEventBeats
		}

		if len(group) == 1 {
			sp := group[0]
			part.Notes = append(part.Notes, score.NoteEvent{
				Pitch:    theory.NoteName(int(sp.key)),
				MIDI:     int(sp.key),
				Start:    start,
				Duration: duration,
				Velocity: int(sp.velocity),
			})
		} else {
			chord := score.ChordEvent{
				Start:    start,
				Duration: duration,
			}
			for _, sp := range group {
				chord.Pitches = append(chord.Pitches, theory.NoteName(int(sp.key)))
				chord.MIDIs = append(chord.MIDIs, int(sp.key))
			}
			part.Chords = append(part.Chords, chord)
		}
		i = j
	}

	return part
}
