package scan

import (
	"flint/internal/source"
)

// Line is one scanned source line. Derived from file content, never mutated.
type Line struct {
	// Index is the 1-based line number.
	Index uint32
	// Text is the line content without its terminator.
	Text string
	// Span covers the line's bytes in the file, terminator excluded.
	Span source.Span
	// IndentWidth is the number of leading space characters.
	IndentWidth int
	// IndentTabs is set when a tab occurs in the leading whitespace.
	IndentTabs bool
	// HasTrailingWhitespace is set when the line ends with spaces or tabs.
	HasTrailingWhitespace bool
	// Length is the content length in characters (runes), not bytes.
	Length int
	// Blank is set when the line contains only whitespace.
	Blank bool
}

// FirstWord returns the first whitespace-delimited token of the line.
func (l Line) FirstWord() string {
	text := l.Text
	i := 0
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	start := i
	for i < len(text) && text[i] != ' ' && text[i] != '\t' {
		i++
	}
	return text[start:i]
}

// Trimmed returns the line content without leading and trailing whitespace.
func (l Line) Trimmed() string {
	text := l.Text
	start := 0
	for start < len(text) && (text[start] == ' ' || text[start] == '\t') {
		start++
	}
	end := len(text)
	for end > start && (text[end-1] == ' ' || text[end-1] == '\t') {
		end--
	}
	return text[start:end]
}
