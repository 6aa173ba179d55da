package block

import (
	"flint/internal/scan"
)

// CodeLines returns the comment- and string-stripped text of every line,
// byte columns preserved. Lines that are entirely comment or string content
// come back blank, which lets rules skip them without false positives.
func CodeLines(lines []scan.Line) []string {
	out := make([]string, len(lines))
	var st sanitizeState
	for i, ln := range lines {
		out[i], st = sanitizeLine(ln.Text, st)
	}
	return out
}

// sanitizeState carries lexical state that crosses line boundaries:
// nested {- -} comments and triple-quoted multi-line strings.
type sanitizeState struct {
	commentDepth   int
	inTripleString bool
}

func (s sanitizeState) clean() bool {
	return s.commentDepth == 0 && !s.inTripleString
}

// sanitizeLine blanks out string literals, character literals and comments,
// replacing every hidden byte with a space so that byte columns survive.
// The structural pass then only ever sees real code tokens.
func sanitizeLine(text string, st sanitizeState) (string, sanitizeState) {
	out := []byte(text)
	i := 0

	blank := func(from, to int) {
		for j := from; j < to && j < len(out); j++ {
			out[j] = ' '
		}
	}

	for i < len(out) {
		switch {
		case st.commentDepth > 0:
			start := i
			for i < len(out) {
				if i+1 < len(out) && out[i] == '{' && out[i+1] == '-' {
					st.commentDepth++
					i += 2
					continue
				}
				if i+1 < len(out) && out[i] == '-' && out[i+1] == '}' {
					st.commentDepth--
					i += 2
					if st.commentDepth == 0 {
						break
					}
					continue
				}
				i++
			}
			blank(start, i)

		case st.inTripleString:
			start := i
			for i < len(out) {
				if out[i] == '\\' {
					i += 2
					continue
				}
				if i+2 < len(out) && out[i] == '"' && out[i+1] == '"' && out[i+2] == '"' {
					i += 3
					st.inTripleString = false
					break
				}
				i++
			}
			blank(start, i)

		case i+1 < len(out) && out[i] == '{' && out[i+1] == '-':
			st.commentDepth = 1
			i += 2
			// остаток обработает ветка commentDepth > 0
			blank(i-2, i)

		case i+1 < len(out) && out[i] == '-' && out[i+1] == '-':
			// line comment: до конца строки
			blank(i, len(out))
			i = len(out)

		case i+2 < len(out) && out[i] == '"' && out[i+1] == '"' && out[i+2] == '"':
			st.inTripleString = true
			blank(i, i+3)
			i += 3

		case out[i] == '"':
			start := i
			i++
			for i < len(out) {
				if out[i] == '\\' {
					i += 2
					continue
				}
				if out[i] == '"' {
					i++
					break
				}
				i++
			}
			blank(start, i)

		case out[i] == '\'':
			// символьный литерал 'c' или '\n'; апострофы в идентификаторах не трогаем
			if end, ok := charLiteralEnd(out, i); ok {
				blank(i, end)
				i = end
			} else {
				i++
			}

		default:
			i++
		}
	}

	return string(out), st
}

func charLiteralEnd(text []byte, start int) (int, bool) {
	i := start + 1
	if i >= len(text) {
		return 0, false
	}
	if text[i] == '\\' {
		i += 2
	} else {
		i++
	}
	// многобайтовые руны внутри литерала
	for i < len(text) && i-start < 8 && text[i] != '\'' {
		i++
	}
	if i < len(text) && text[i] == '\'' {
		return i + 1, true
	}
	return 0, false
}
