package ultrastar

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// CheckTXT reports whether the first bytes of a file look like the
// UltraStar TXT format: a header marker followed by an uppercase key.
func CheckTXT(data []byte) bool {
	return len(data) >= 2 && data[0] == '#' && data[1] >= 'A' && data[1] <= 'Z'
}

// Lines longer than this abort the parse. Real charts stay a few
// orders of magnitude below it.
const maxLineBytes = 1024 * 1024

// parser holds the state of a single parse invocation. It borrows the
// Song for the duration of one ParseHeader/ParseSong call only.
type parser struct {
	song    *Song
	scanner *bufio.Scanner
	lineno  int
	line    string

	timebase Timebase
	bpm      float64 // BPM captured from the header, registered at tick 0

	relative      bool
	relativeShift uint32
	prevTS        uint32
	prevTime      float64
}

func newParser(r io.Reader, s *Song) *parser {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &parser{song: s, scanner: sc}
}

// ParseHeader decodes only the #KEY:VALUE header section of a song
// file, populating the song's metadata. It is used for listing songs
// without paying for a full note parse.
func ParseHeader(r io.Reader, s *Song) error {
	p := newParser(r, s)
	if err := p.parseHeader(); err != nil {
		return err
	}
	if err := p.scanner.Err(); err != nil {
		return fmt.Errorf("error reading song file: %w", err)
	}
	if s.LoadStatus < LoadHeader {
		s.LoadStatus = LoadHeader
	}
	return nil
}

// ParseSong decodes the whole song file: the header section followed
// by the note stream. On success the song carries a fully populated
// lead vocal track and LoadStatus FULL.
func ParseSong(r io.Reader, s *Song) error {
	p := newParser(r, s)
	if err := p.parseHeader(); err != nil {
		return err
	}
	vocal := NewVocalTrack(TrackLeadVocal)
	// The header loop leaves the first body line in p.line.
	for {
		cont, err := p.parseNote(p.line, vocal)
		if err != nil {
			return err
		}
		if !cont || !p.getline() {
			break
		}
	}
	if err := p.scanner.Err(); err != nil {
		return fmt.Errorf("error reading song file: %w", err)
	}
	// Workaround for the terminating ": 1 0 0" line written by some
	// converters.
	if n := len(vocal.Notes); n > 0 {
		last := vocal.Notes[n-1]
		if last.Type != NoteSleep && last.Begin == last.End {
			vocal.Notes = vocal.Notes[:n-1]
		}
	}
	s.InsertVocalTrack(TrackLeadVocal, vocal)
	s.LoadStatus = LoadFull
	return nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Line: p.lineno, Message: fmt.Sprintf(format, args...)}
}

// getline advances to the next input line, stripping a UTF-8 BOM on
// the first line. On EOF the current line is cleared.
func (p *parser) getline() bool {
	if !p.scanner.Scan() {
		p.line = ""
		return false
	}
	p.lineno++
	line := p.scanner.Text()
	if p.lineno == 1 {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	p.line = line
	return true
}

func (p *parser) parseHeader() error {
	s := p.song
	for p.getline() {
		if p.lineno == 1 && !CheckTXT([]byte(p.line)) {
			return &ParseError{Line: 1, Message: "not an UltraStar TXT file", Silent: true}
		}
		ok, err := p.parseField(p.line)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	if s.Title == "" || s.Artist == "" {
		return p.errorf("required header fields missing")
	}
	if p.bpm != 0 {
		if err := p.timebase.AddBPM(0, p.bpm); err != nil {
			return p.errorf("invalid BPM header: %v", err)
		}
	}
	// Placeholder so listing code can tell the song has vocals before
	// a full parse.
	s.InsertVocalTrack(TrackLeadVocal, NewVocalTrack(TrackLeadVocal))
	s.CollateUpdate()
	return nil
}

// parseField decodes one header line. It returns false without
// consuming the line when the header section has ended.
func (p *parser) parseField(line string) (bool, error) {
	if line == "" || line == "\r" {
		return true, nil
	}
	if line[0] != '#' {
		return false, nil
	}
	line = strings.TrimSuffix(line, "\r")
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return false, p.errorf("invalid header line %q, expected #KEY:VALUE", line)
	}
	key := strings.TrimSpace(line[1:idx])
	value := strings.TrimSpace(line[idx+1:])
	if value == "" {
		// Some producers emit empty placeholder fields.
		return true, nil
	}
	s := p.song
	var err error
	switch key {
	case "TITLE":
		s.Title = strings.TrimLeft(value, " :")
	case "ARTIST":
		s.Artist = strings.TrimLeft(value, " ")
	case "EDITION":
		s.Edition = strings.TrimLeft(value, " ")
	case "GENRE":
		s.Genre = strings.TrimLeft(value, " ")
	case "CREATOR":
		s.Creator = strings.TrimLeft(value, " ")
	case "LANGUAGE":
		s.Language = strings.TrimLeft(value, " ")
	case "COVER":
		s.Cover = value
	case "VIDEO":
		s.Video = value
	case "BACKGROUND":
		s.Background = value
	case "MP3":
		s.Music["background"] = s.Path + value
	case "VOCALS":
		s.Music["vocals"] = s.Path + value
	case "START":
		s.Start, err = p.parseFloat(key, value)
	case "VIDEOGAP":
		s.VideoGap, err = p.parseFloat(key, value)
	case "PREVIEWSTART":
		s.PreviewStart, err = p.parseFloat(key, value)
	case "GAP":
		var gap float64
		gap, err = p.parseFloat(key, value)
		p.timebase.Gap = gap * 1e-3 // milliseconds in the file
	case "BPM":
		p.bpm, err = p.parseFloat(key, value)
	case "RELATIVE":
		p.relative, err = p.parseBool(key, value)
	default:
		// Unknown keys are ignored for forward compatibility.
	}
	return true, err
}

// parseFloat accepts the European decimal comma some charts use.
func (p *parser) parseFloat(key, value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64)
	if err != nil {
		return 0, p.errorf("invalid number %q for %s", value, key)
	}
	return f, nil
}

func (p *parser) parseBool(key, value string) (bool, error) {
	switch strings.ToLower(value) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	}
	return false, p.errorf("invalid boolean %q for %s", value, key)
}

// parseNote decodes one body line. It returns false when the track's
// end-of-stream sentinel is reached.
func (p *parser) parseNote(line string, vocal *VocalTrack) (bool, error) {
	if line == "" || line == "\r" {
		return true, nil
	}
	if line[0] == '#' {
		return false, p.errorf("key found in the middle of notes")
	}
	line = strings.TrimSuffix(line, "\r")
	switch line[0] {
	case 'E':
		return false, nil
	case 'B':
		ts, rest, ok := popUint(line[1:])
		bpm, _, ok2 := popFloat(rest)
		if !ok || !ok2 {
			return false, p.errorf("invalid BPM line format")
		}
		if err := p.timebase.AddBPM(ts, bpm); err != nil {
			return false, p.errorf("invalid BPM line: %v", err)
		}
		return true, nil
	case 'P':
		// Player assignment lines (multiplayer) are ignored.
		return true, nil
	}

	n := Note{Type: NoteType(line[0])}
	rest := line[1:]
	ts := p.prevTS
	switch n.Type {
	case NoteNormal, NoteFreestyle, NoteGolden:
		var length uint32
		var ok1, ok2, ok3 bool
		ts, rest, ok1 = popUint(rest)
		length, rest, ok2 = popUint(rest)
		n.Note, rest, ok3 = popInt(rest)
		if !ok1 || !ok2 || !ok3 {
			return false, p.errorf("invalid note line format")
		}
		n.NotePrev = n.Note // no slide notes in TXT
		if p.relative {
			ts += p.relativeShift
		}
		if len(rest) > 0 && rest[0] == ' ' {
			n.Syllable = rest[1:]
		}
		n.End = p.timebase.Time(ts + length)
	case NoteSleep:
		var end uint32
		if t, r, ok := popUint(rest); ok {
			ts = t
			if e, _, ok := popUint(r); ok {
				end = e
			} else {
				end = ts
			}
		} else {
			end = ts
		}
		if p.relative {
			// Each sleep re-anchors subsequent relative ticks.
			ts += p.relativeShift
			end += p.relativeShift
			p.relativeShift = end
		}
		n.End = p.timebase.Time(end)
	default:
		return false, p.errorf("unknown note type %q", line[0])
	}
	n.Begin = p.timebase.Time(ts)
	if p.relative && len(vocal.Notes) == 0 {
		p.relativeShift = ts
	}
	p.prevTS = ts

	if n.Begin < p.prevTime {
		// Overlapping notes (b0rked file). Too many real songs have
		// these to treat them as fatal.
		if len(vocal.Notes) == 0 {
			return false, p.errorf("the first note has negative timestamp")
		}
		p.song.B0rkedTracks = true
		prev := &vocal.Notes[len(vocal.Notes)-1]
		if prev.Type == NoteSleep {
			// Workaround for songs that use semi-random timestamps
			// for sleep.
			prev.End = prev.Begin
			if len(vocal.Notes) >= 2 && vocal.Notes[len(vocal.Notes)-2].End < n.Begin {
				prev.Begin, prev.End = n.Begin, n.Begin
			}
		}
		if prev.Begin <= n.Begin {
			// Make the previous note shorter.
			prev.End = n.Begin
		} else {
			// Nothing to do, warn and skip.
			log.Printf("warning: skipping overlapping note in %s%s", p.song.Path, p.song.Filename)
			return true, nil
		}
	}

	prevTime := p.prevTime
	p.prevTime = n.End
	if n.Type != NoteSleep && n.End > n.Begin {
		if n.Note < vocal.NoteMin {
			vocal.NoteMin = n.Note
		}
		if n.Note > vocal.NoteMax {
			vocal.NoteMax = n.Note
		}
	}
	if n.Type == NoteSleep {
		if len(vocal.Notes) == 0 {
			// A sleep before any note is meaningless.
			return true, nil
		}
		// Sleeps mark gaps, not intervals of their own.
		n.Begin, n.End = prevTime, prevTime
		vocal.Notes[len(vocal.Notes)-1].LineBreak = true
	}
	vocal.Notes = append(vocal.Notes, n)
	return true, nil
}

// popUint reads the next unsigned decimal token from s, returning the
// value, the remainder, and whether a token was found.
func popUint(s string) (uint32, string, bool) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	j := i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	if j == i {
		return 0, s, false
	}
	v, err := strconv.ParseUint(s[i:j], 10, 32)
	if err != nil {
		return 0, s, false
	}
	return uint32(v), s[j:], true
}

// popInt is popUint with an optional leading sign, for pitch values.
func popInt(s string) (int, string, bool) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	j := i
	if j < len(s) && (s[j] == '-' || s[j] == '+') {
		j++
	}
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	v, err := strconv.Atoi(s[i:j])
	if err != nil {
		return 0, s, false
	}
	return v, s[j:], true
}

// popFloat reads the next floating point token, tolerating a decimal
// comma.
func popFloat(s string) (float64, string, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, s, false
	}
	f, err := strconv.ParseFloat(strings.Replace(fields[0], ",", ".", 1), 64)
	if err != nil {
		return 0, s, false
	}
	rest := strings.TrimLeft(s, " \t")
	return f, rest[len(fields[0]):], true
}
