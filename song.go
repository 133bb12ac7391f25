package ultrastar

import (
	"fmt"
	"math"
	"os"
	"sort"
)

// LoadStatus tracks how much of a song file has been parsed. It only
// advances, except that DropNotes takes a FULL song back to HEADER.
type LoadStatus int

const (
	LoadNone LoadStatus = iota
	LoadHeader
	LoadFull
)

// PlayStatus classifies a playback position relative to note timing.
type PlayStatus int

const (
	StatusNormal PlayStatus = iota
	StatusInstrumentalBreak
	StatusFinished
)

// A gap of more than this many seconds before the next note counts as
// an instrumental break.
const instrumentalBreakGap = 4.0

// SongSection is a named navigation marker within a song.
type SongSection struct {
	Name  string  `json:"name"`
	Begin float64 `json:"begin"`
}

// Song is the aggregate a parser populates: metadata, timing offsets
// and one or more named vocal tracks. A Song owns all of its tracks;
// parsers borrow it for the duration of a single parse call.
type Song struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`

	LoadStatus LoadStatus `json:"loadStatus"`

	Title    string `json:"title,omitempty"`
	Artist   string `json:"artist,omitempty"`
	Genre    string `json:"genre,omitempty"`
	Edition  string `json:"edition,omitempty"`
	Creator  string `json:"creator,omitempty"`
	Language string `json:"language,omitempty"`
	Year     string `json:"year,omitempty"`

	Cover      string            `json:"cover,omitempty"`
	Background string            `json:"background,omitempty"`
	Video      string            `json:"video,omitempty"`
	Music      map[string]string `json:"music,omitempty"` // music files keyed by stem ("background", "vocals", ...)

	Start        float64 `json:"start"`
	VideoGap     float64 `json:"videoGap"`
	PreviewStart float64 `json:"previewStart"`

	// Sort/search keys derived from title and artist, rebuilt by
	// CollateUpdate whenever either changes.
	CollateByTitle      string `json:"-"`
	CollateByTitleOnly  string `json:"-"`
	CollateByArtist     string `json:"-"`
	CollateByArtistOnly string `json:"-"`

	// Auxiliary timing sequences populated by other dialects.
	Stops [][2]float64 `json:"stops,omitempty"`
	Beats []float64    `json:"beats,omitempty"`

	// Sections is kept sorted by Begin; use AddSection to insert.
	Sections []SongSection `json:"songsections,omitempty"`

	VocalTracks map[string]*VocalTrack `json:"vocalTracks,omitempty"`

	HasBRE       bool `json:"hasBRE,omitempty"`
	B0rkedTracks bool `json:"b0rkedTracks,omitempty"` // sticky: recovered malformed input was seen

	dummy VocalTrack
}

// NewSong returns an empty song identified by its directory path and
// filename. No parsing is done; call Reload to populate it.
func NewSong(path, filename string) *Song {
	return &Song{
		Path:        path,
		Filename:    filename,
		Music:       make(map[string]string),
		VocalTracks: make(map[string]*VocalTrack),
		dummy:       *NewVocalTrack(TrackLeadVocal),
	}
}

// Reload re-parses the song file, replacing all current content. With
// full set, the note body is parsed as well; otherwise only the header
// metadata is read.
func (s *Song) Reload(full bool) error {
	f, err := os.Open(s.Path + s.Filename)
	if err != nil {
		return fmt.Errorf("error opening song file: %w", err)
	}
	defer f.Close()
	*s = *NewSong(s.Path, s.Filename)
	if full {
		return ParseSong(f, s)
	}
	return ParseHeader(f, s)
}

// DropNotes clears the note sequences of all tracks to reclaim memory
// but keeps the track names, so listing code can still tell which
// tracks the song has.
func (s *Song) DropNotes() {
	for _, t := range s.VocalTracks {
		t.Notes = nil
		t.NoteMin, t.NoteMax = math.MaxInt32, math.MinInt32
	}
	if s.LoadStatus == LoadFull {
		s.LoadStatus = LoadHeader
	}
}

// InsertVocalTrack adds or replaces the track under the given name.
func (s *Song) InsertVocalTrack(name string, track *VocalTrack) {
	s.VocalTracks[name] = track
}

// GetVocalTrack looks a track up by name, falling back to the lead
// vocal track, then to the first track by name, then to a per-song
// empty dummy. Use IsDummyTrack to tell the dummy from a real track.
func (s *Song) GetVocalTrack(name string) *VocalTrack {
	if t, ok := s.VocalTracks[name]; ok {
		return t
	}
	if t, ok := s.VocalTracks[TrackLeadVocal]; ok {
		return t
	}
	if names := s.GetVocalTrackNames(); len(names) > 0 {
		return s.VocalTracks[names[0]]
	}
	return &s.dummy
}

// IsDummyTrack reports whether track is the song's fallback sentinel
// rather than a parsed track.
func (s *Song) IsDummyTrack(track *VocalTrack) bool {
	return track == &s.dummy
}

// GetVocalTrackNames returns the track names in a stable (sorted)
// order.
func (s *Song) GetVocalTrackNames() []string {
	names := make([]string, 0, len(s.VocalTracks))
	for name := range s.VocalTracks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasVocals reports whether any vocal track exists (a header-only
// parse inserts an empty placeholder for this purpose).
func (s *Song) HasVocals() bool {
	return len(s.VocalTracks) > 0
}

// CollateUpdate rebuilds the sort/search keys from title and artist.
// Must be called whenever either field is set directly; the parser
// calls it at the end of header parsing.
func (s *Song) CollateUpdate() {
	s.CollateByTitle = Collate(s.Title + " " + s.Artist + " " + s.Filename)
	s.CollateByTitleOnly = Collate(s.Title)
	s.CollateByArtist = Collate(s.Artist + " " + s.Title + " " + s.Filename)
	s.CollateByArtistOnly = Collate(s.Artist)
}

// Str returns the formatted song label.
func (s *Song) Str() string {
	return s.Title + "  by  " + s.Artist
}

// StrFull returns the full song information used by search functions.
func (s *Song) StrFull() string {
	return s.Title + "\n" + s.Artist + "\n" + s.Genre + "\n" + s.Edition + "\n" + s.Path
}

// Status classifies the playback position: FINISHED past the last
// note's end, INSTRUMENTAL_BREAK when the next note is still more than
// instrumentalBreakGap seconds away, NORMAL otherwise.
func (s *Song) Status(time float64) PlayStatus {
	notes := s.GetVocalTrack(TrackLeadVocal).Notes
	i := sort.Search(len(notes), func(i int) bool { return notes[i].End >= time })
	if i == len(notes) {
		return StatusFinished
	}
	if notes[i].Begin > time+instrumentalBreakGap {
		return StatusInstrumentalBreak
	}
	return StatusNormal
}

// AddSection inserts a navigation marker, keeping Sections sorted by
// begin time.
func (s *Song) AddSection(name string, begin float64) {
	i := sort.Search(len(s.Sections), func(i int) bool { return s.Sections[i].Begin > begin })
	s.Sections = append(s.Sections, SongSection{})
	copy(s.Sections[i+1:], s.Sections[i:])
	s.Sections[i] = SongSection{Name: name, Begin: begin}
}

// GetNextSection returns the first section beginning after pos.
func (s *Song) GetNextSection(pos float64) (SongSection, bool) {
	i := sort.Search(len(s.Sections), func(i int) bool { return s.Sections[i].Begin > pos })
	if i < len(s.Sections) {
		return s.Sections[i], true
	}
	return SongSection{}, false
}

// GetPrevSection returns the last section beginning before pos.
func (s *Song) GetPrevSection(pos float64) (SongSection, bool) {
	i := sort.Search(len(s.Sections), func(i int) bool { return s.Sections[i].Begin >= pos })
	if i > 0 {
		return s.Sections[i-1], true
	}
	return SongSection{}, false
}
