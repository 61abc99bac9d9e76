package retrieval

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var punctuationReplacer = strings.NewReplacer(
	"?", " ", ".", " ", ",", " ", "!", " ",
	";", " ", ":", " ", "(", " ", ")", " ",
)

// Normalize folds text into the form every matcher compares against:
// lowercase, combining marks removed after canonical decomposition,
// sentence punctuation replaced by spaces and whitespace collapsed.
// Letters without a decomposition, such as đ, are kept.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	lowered := strings.ToLower(text)

	// The chain keeps per-call state, so it is built for every call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		stripped = lowered
	}

	stripped = punctuationReplacer.Replace(stripped)
	return strings.Join(strings.Fields(stripped), " ")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
