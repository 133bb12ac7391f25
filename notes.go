package ultrastar

import (
	"math"
	"strings"
)

// NoteType identifies the kind of a note event. The values are the
// single-byte type codes used on UltraStar TXT note lines.
type NoteType byte

const (
	NoteNormal    NoteType = ':'
	NoteFreestyle NoteType = 'F'
	NoteGolden    NoteType = '*'
	NoteSleep     NoteType = '-' // rest/gap marker between phrases
)

// Track names shared across the song ecosystem. The TXT dialect only
// produces the lead vocal track, but other dialects use the rest.
const (
	TrackGuitar       = "Guitar"
	TrackGuitarCoop   = "Coop guitar"
	TrackGuitarRhythm = "Rhythm guitar"
	TrackBass         = "Bass"
	TrackDrums        = "Drums"
	TrackLeadVocal    = "Vocals"
	TrackHarmonic1    = "Harmonic 1"
	TrackHarmonic2    = "Harmonic 2"
	TrackHarmonic3    = "Harmonic 3"
)

// Note represents a single musical/lyrical event on a vocal track.
// Begin and End are in seconds. Note and NotePrev are pitch values;
// the TXT format has no slide notes, so NotePrev always equals Note.
type Note struct {
	Type      NoteType `json:"type"`
	Begin     float64  `json:"begin"`
	End       float64  `json:"end"`
	Note      int      `json:"note"`
	NotePrev  int      `json:"notePrev"`
	Syllable  string   `json:"syllable,omitempty"`
	LineBreak bool     `json:"lineBreak,omitempty"` // a visual line ends at this note
}

// VocalTrack is a named, chronologically ordered sequence of notes.
// NoteMin/NoteMax track the pitch range for display scaling.
type VocalTrack struct {
	Name    string `json:"name"`
	Notes   []Note `json:"notes"`
	NoteMin int    `json:"noteMin"`
	NoteMax int    `json:"noteMax"`
}

// NewVocalTrack returns an empty track with the pitch range reset so
// that the first real note initializes both bounds.
func NewVocalTrack(name string) *VocalTrack {
	return &VocalTrack{Name: name, NoteMin: math.MaxInt32, NoteMax: math.MinInt32}
}

// Lyrics joins the track's syllables into display text, one line per
// phrase (phrases end at notes carrying the LineBreak flag).
func (t *VocalTrack) Lyrics() string {
	var sb strings.Builder
	for _, n := range t.Notes {
		if n.Type == NoteSleep {
			continue
		}
		sb.WriteString(n.Syllable)
		if n.LineBreak {
			sb.WriteByte('\n')
		}
	}
	return strings.TrimSpace(sb.String())
}
