// Package naming turns catalog identifiers into declaration identifiers.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jinzhu/inflection"
)

// Policy is the naming part of the configuration. It is a plain value and
// is passed to every call that needs it.
type Policy struct {
	CamelCase       bool
	Singular        bool
	TypeOnlyImports bool
}

// EnumStyle renames runtime enum members. Member values are never renamed.
type EnumStyle string

const (
	StylePascal         EnumStyle = "pascal-case"
	StyleScreamingSnake EnumStyle = "screaming-snake-case"
)

// Words splits s on separators and case changes: "user_id" and "userId"
// both give ["user", "id"]; "HTTPServer" gives ["HTTP", "Server"].
func Words(s string) []string {
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 && unicode.IsUpper(r) {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// Pascal converts s to UpperCamelCase.
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(title(w))
	}
	return b.String()
}

// Camel converts s to lowerCamelCase.
func Camel(s string) string {
	words := Words(s)
	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(strings.ToLower(w))
			continue
		}
		b.WriteString(title(w))
	}
	return b.String()
}

// ScreamingSnake converts s to SCREAMING_SNAKE_CASE.
func ScreamingSnake(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w)
	}
	return strings.Join(words, "_")
}

// Singular singularizes the last word of s and keeps the rest, so
// "user_accounts" becomes "user_account". Uncountable and already singular
// words are returned unchanged.
func Singular(s string) string {
	i := strings.LastIndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	cut := 0
	if i >= 0 {
		_, size := utf8.DecodeRuneInString(s[i:])
		cut = i + size
	}
	head, last := s[:cut], s[cut:]
	if last == "" {
		return s
	}
	return head + inflection.Singular(last)
}

// IsIdentifier reports whether s can be used unquoted as a member name.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

func title(w string) string {
	r := []rune(strings.ToLower(w))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
