// Package verify compares freshly generated declarations with a stored copy.
package verify

import (
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Formatter reflows generated text. Both sides of a comparison go through
// the same Formatter.
type Formatter interface {
	Format(text string) (string, error)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(string) (string, error)

func (f FormatterFunc) Format(text string) (string, error) { return f(text) }

// Identity leaves text untouched.
var Identity = FormatterFunc(func(s string) (string, error) { return s, nil })

// Normalizer converts CRLF line endings to LF, strips trailing whitespace
// from every line and ends the text with exactly one newline.
var Normalizer = FormatterFunc(func(s string) (string, error) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n", nil
})

// Verify reports whether fresh and previous are byte-identical after
// formatting. There is no fuzzy matching.
func Verify(fresh, previous string, f Formatter) (bool, error) {
	if f == nil {
		f = Identity
	}
	a, err := f.Format(fresh)
	if err != nil {
		return false, err
	}
	b, err := f.Format(previous)
	if err != nil {
		return false, err
	}
	return a == b, nil
}

// Diff renders a line diff from previous to fresh, empty when they match.
func Diff(previous, fresh string) string {
	return cmp.Diff(strings.Split(previous, "\n"), strings.Split(fresh, "\n"))
}
