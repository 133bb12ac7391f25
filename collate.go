package ultrastar

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	collateMu sync.Mutex
	collator  = collate.New(language.Und, collate.Loose)
	foldCaser = cases.Fold()
)

// Collate converts a string to its locale-insensitive sort key form.
// Keys compare bytewise; case, diacritics and leading punctuation do
// not affect the ordering.
func Collate(str string) string {
	collateMu.Lock()
	defer collateMu.Unlock()
	folded := foldCaser.String(str)
	folded = strings.TrimLeftFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	var buf collate.Buffer
	return string(collator.KeyFromString(&buf, folded))
}
