package rules

import (
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"

	"flint/internal/scan"
	"flint/internal/source"
)

func checkLineTooLong(ctx *Context) {
	limit := ctx.Config.MaxLineLength
	for _, ln := range ctx.Lines {
		if ln.Length <= limit {
			continue
		}
		// подсвечиваем хвост за пределами лимита
		span := ln.Span
		span.Start += runeOffset(ln.Text, limit)
		ctx.Report(span, fmt.Sprintf("line is %d characters, maximum is %d", ln.Length, limit))
	}
}

func checkTrailingWhitespace(ctx *Context) {
	for _, ln := range ctx.Lines {
		if !ln.HasTrailingWhitespace {
			continue
		}
		span := ln.Span
		span.Start = ln.Span.Start + trailingStart(ln.Text)
		ctx.Report(span, "trailing whitespace")
	}
}

func checkMissingFinalNewline(ctx *Context) {
	if !ctx.Config.RequireFinalNewline || ctx.HasFinalNewline {
		return
	}
	if len(ctx.Lines) == 0 {
		return
	}
	last := ctx.Lines[len(ctx.Lines)-1]
	span := source.Span{File: last.Span.File, Start: last.Span.End, End: last.Span.End}
	ctx.Report(span, "no newline at end of file")
}

func checkTabIndentation(ctx *Context) {
	for _, ln := range ctx.Lines {
		if !ln.IndentTabs {
			continue
		}
		span := ln.Span
		span.End = span.Start + leadingWhitespaceLen(ln.Text)
		ctx.Report(span, "indentation uses tabs, use spaces")
	}
}

// runeOffset returns the byte offset of the n-th rune of text.
func runeOffset(text string, n int) uint32 {
	off := 0
	for i := 0; i < n && off < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[off:])
		off += size
	}
	out, err := safecast.Conv[uint32](off)
	if err != nil {
		panic(fmt.Errorf("rune offset overflow: %w", err))
	}
	return out
}

func trailingStart(text string) uint32 {
	end := len(text)
	for end > 0 && (text[end-1] == ' ' || text[end-1] == '\t') {
		end--
	}
	out, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(fmt.Errorf("trailing offset overflow: %w", err))
	}
	return out
}

func leadingWhitespaceLen(text string) uint32 {
	i := 0
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	out, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("indent offset overflow: %w", err))
	}
	return out
}

// lineAt returns the scanned line with the given 1-based index, if present.
func lineAt(lines []scan.Line, index uint32) (scan.Line, bool) {
	i := int(index) - 1
	if i < 0 || i >= len(lines) {
		return scan.Line{}, false
	}
	return lines[i], true
}
