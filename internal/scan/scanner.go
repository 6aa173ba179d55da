package scan

import (
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"

	"flint/internal/source"
)

// Scanner converts normalized file content into a sequence of Line records.
// The sequence is lazy, finite and non-restartable: after Next reports false
// the scanner stays exhausted. Одно сканирование на файл, потребляется парсером.
type Scanner struct {
	file *source.File
	off  uint32
	line uint32
	done bool
}

// New creates a scanner over the given file. Content must already be
// normalized (UTF-8, \n terminators) by source.NormalizeText.
func New(file *source.File) *Scanner {
	return &Scanner{file: file}
}

// Next returns the next line record. ok is false once the file is exhausted.
func (s *Scanner) Next() (line Line, ok bool) {
	if s.done {
		return Line{}, false
	}
	limit, err := safecast.Conv[uint32](len(s.file.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	if s.off >= limit {
		s.done = true
		return Line{}, false
	}

	start := s.off
	for s.off < limit && s.file.Content[s.off] != '\n' {
		s.off++
	}
	end := s.off
	if s.off < limit {
		s.off++ // съедаем терминатор
	}

	s.line++
	text := string(s.file.Content[start:end])
	return s.makeLine(s.line, text, start, end), true
}

// HasFinalNewline reports whether the file's last line carries a terminator.
// An empty file counts as properly terminated.
func (s *Scanner) HasFinalNewline() bool {
	content := s.file.Content
	if len(content) == 0 {
		return true
	}
	return content[len(content)-1] == '\n'
}

// File returns the underlying source file.
func (s *Scanner) File() *source.File {
	return s.file
}

func (s *Scanner) makeLine(index uint32, text string, start, end uint32) Line {
	indent := 0
	indentTabs := false
	for i := 0; i < len(text); i++ {
		if text[i] == ' ' {
			indent++
			continue
		}
		if text[i] == '\t' {
			indentTabs = true
			i++
			// пропускаем остаток отступа, ширина дальше не осмысленна
			for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
				i++
			}
		}
		break
	}

	blank := true
	for i := 0; i < len(text); i++ {
		if text[i] != ' ' && text[i] != '\t' {
			blank = false
			break
		}
	}

	// Строка из одних пробелов — тоже хвостовой whitespace.
	trailing := false
	if len(text) > 0 {
		last := text[len(text)-1]
		trailing = last == ' ' || last == '\t'
	}

	return Line{
		Index:                 index,
		Text:                  text,
		Span:                  source.Span{File: s.file.ID, Start: start, End: end},
		IndentWidth:           indent,
		IndentTabs:            indentTabs,
		HasTrailingWhitespace: trailing,
		Length:                utf8.RuneCountInString(text),
		Blank:                 blank,
	}
}

// All drains the scanner into a slice. Convenience for the rule engine and
// tests; the scanner is exhausted afterwards.
func (s *Scanner) All() []Line {
	var out []Line
	for {
		line, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, line)
	}
}
