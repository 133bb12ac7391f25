package ultrastar

import "fmt"

// ParseError describes a failure while decoding a song file. Line is
// the 1-based input line the failure was detected on. Silent errors
// mean the file does not belong to this dialect and should be skipped
// without any user-visible complaint.
type ParseError struct {
	Line    int
	Message string
	Silent  bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
