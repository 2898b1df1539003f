package aggregate

import "strings"

// MinKeywordLength is the stop-word threshold: only tokens longer than this
// many bytes are counted as keywords.
const MinKeywordLength = 3

var punctuation = strings.NewReplacer(
	".", "",
	",", "",
	";", "",
	":", "",
	`"`, "",
	"“", "",
	"”", "",
)

// Keywords lowercases text, strips punctuation and returns the
// whitespace-separated tokens longer than minLength bytes, in order.
func Keywords(text string, minLength int) []string {
	var words []string

	for _, word := range strings.Fields(punctuation.Replace(strings.ToLower(text))) {
		if len(word) > minLength {
			words = append(words, word)
		}
	}

	return words
}
