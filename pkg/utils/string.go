package utils

import "strings"

// StringHelper provides string utility functions.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// NormalizeWhitespace replaces runs of whitespace, including non-breaking spaces, with a single space.
func (s *StringHelper) NormalizeWhitespace(str string) string {
	str = strings.ReplaceAll(str, "\u00a0", " ")

	return strings.Join(strings.Fields(str), " ")
}

// IsBlank reports whether str holds only whitespace.
func (s *StringHelper) IsBlank(str string) bool {
	return s.NormalizeWhitespace(str) == ""
}

// TruncateString truncates str to maxLength runes, appending an ellipsis when cut.
func (s *StringHelper) TruncateString(str string, maxLength int) string {
	runes := []rune(str)
	if maxLength <= 0 || len(runes) <= maxLength {
		return str
	}

	return string(runes[:maxLength]) + "..."
}
