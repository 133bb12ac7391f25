package ultrastar

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	gmOboe uint8 = 68 // melodic stand-in instrument for vocal lines

	// Exported files use a fixed tempo and resolution; note times are
	// already resolved to seconds, so the tick grid is arbitrary.
	exportBPM             = 120.0
	exportTicksPerQuarter = 480

	exportVelocity uint8 = 100
)

// midiEvent pairs an smf message with an absolute tick time, so events
// can be sorted before delta encoding.
type midiEvent struct {
	tick    uint32
	message smf.Message
}

// ExportMIDI writes the song's vocal tracks as a General MIDI (SMF1)
// file: one MIDI track per vocal track, with a lyric meta event per
// syllable. Sleep notes are gaps and produce no events.
func ExportMIDI(s *Song, w io.Writer) error {
	var tracks []*VocalTrack
	for _, name := range s.GetVocalTrackNames() {
		if t := s.VocalTracks[name]; len(t.Notes) > 0 {
			tracks = append(tracks, t)
		}
	}
	if len(tracks) == 0 {
		return fmt.Errorf("no vocal notes to export")
	}

	out := smf.NewSMF1()
	out.TimeFormat = smf.MetricTicks(exportTicksPerQuarter)

	tempo := smf.Track{}
	tempo = append(tempo, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName(s.Str()))})
	tempo = append(tempo, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTempo(exportBPM))})
	tempo = append(tempo, smf.Event{Delta: 0, Message: smf.EOT})
	out.Add(tempo)

	channel := uint8(0)
	for _, t := range tracks {
		out.Add(vocalMidiTrack(t, channel))
		channel++
		if channel == 9 { // GM percussion channel
			channel++
		}
	}

	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

func secondsToTicks(seconds float64) uint32 {
	return uint32(math.Round(seconds * exportBPM / 60.0 * exportTicksPerQuarter))
}

// midiKey maps an UltraStar pitch (scale degrees around middle C) to a
// MIDI key number.
func midiKey(pitch int) uint8 {
	key := 60 + pitch
	if key < 0 {
		key = 0
	}
	if key > 127 {
		key = 127
	}
	return uint8(key)
}

func vocalMidiTrack(t *VocalTrack, channel uint8) smf.Track {
	var events []midiEvent
	for _, n := range t.Notes {
		if n.Type == NoteSleep {
			continue
		}
		begin := secondsToTicks(n.Begin)
		end := secondsToTicks(n.End)
		if end <= begin {
			end = begin + 1
		}
		key := midiKey(n.Note)
		if n.Syllable != "" {
			events = append(events, midiEvent{begin, smf.Message(smf.MetaLyric(n.Syllable))})
		}
		events = append(events, midiEvent{begin, smf.Message(midi.NoteOn(channel, key, exportVelocity))})
		events = append(events, midiEvent{end, smf.Message(midi.NoteOff(channel, key))})
	}

	// Stable sort keeps lyric before note-on and a note's off before
	// the next note's on when ticks collide.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].tick < events[j].tick
	})

	track := smf.Track{}
	track = append(track, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName(t.Name))})
	track = append(track, smf.Event{Delta: 0, Message: smf.Message(midi.ProgramChange(channel, gmOboe))})
	var last uint32
	for _, ev := range events {
		track = append(track, smf.Event{Delta: ev.tick - last, Message: ev.message})
		last = ev.tick
	}
	track = append(track, smf.Event{Delta: 0, Message: smf.EOT})
	return track
}
