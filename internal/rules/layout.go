package rules

import (
	"fmt"
	"strings"

	"flint/internal/block"
	"flint/internal/scan"
)

func checkIndentation(ctx *Context) {
	width := ctx.Config.IndentWidth

	// строки: отступ должен быть кратен ширине
	for i, ln := range ctx.Lines {
		if ln.Blank || ln.IndentTabs {
			continue
		}
		if strings.TrimSpace(ctx.Code[i]) == "" {
			// внутренности комментариев и строк свободной формы
			continue
		}
		if ln.IndentWidth%width != 0 {
			span := ln.Span
			span.End = span.Start + leadingWhitespaceLen(ln.Text)
			ctx.Report(span, fmt.Sprintf("indent of %d is not a multiple of %d", ln.IndentWidth, width))
		}
	}

	// блоки: тело let и case ровно на шаг глубже заголовка
	for _, b := range ctx.Blocks.All() {
		if b.Kind != block.KindLet && b.Kind != block.KindCaseOf {
			continue
		}
		if b.EndLine <= b.StartLine {
			continue
		}
		body, ok := firstBodyLine(ctx, b)
		if !ok || body.IndentTabs {
			continue
		}
		want := b.HeaderIndent + width
		if body.IndentWidth != want {
			span := body.Span
			span.End = span.Start + leadingWhitespaceLen(body.Text)
			ctx.Report(span, fmt.Sprintf("%s body is indented %d columns, expected %d", b.Kind, body.IndentWidth, want))
		}
	}
}

// firstBodyLine finds the first code line strictly inside the block.
func firstBodyLine(ctx *Context, b *block.Block) (ln scan.Line, ok bool) {
	for idx := b.StartLine + 1; idx <= b.EndLine; idx++ {
		candidate, found := lineAt(ctx.Lines, idx)
		if !found {
			return scan.Line{}, false
		}
		if candidate.Blank {
			continue
		}
		if strings.TrimSpace(ctx.Code[idx-1]) == "" {
			// комментарий, не тело
			continue
		}
		return candidate, true
	}
	return scan.Line{}, false
}

func checkNewlineAfterEquals(ctx *Context) {
	for i, ln := range ctx.Lines {
		if ln.Blank || ln.IndentWidth != 0 || ln.IndentTabs {
			continue
		}
		code := ctx.Code[i]
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		switch firstDeclWord(trimmed) {
		case "module", "import", "port", "infix":
			// заголовкам модуля правило переноса не адресовано
			continue
		}
		eq := standaloneEquals(code)
		if eq < 0 {
			continue
		}
		// хвост смотрим по сырому тексту: строковый литерал после `=`
		// в sanitized-виде превращается в пробелы, но это всё ещё код
		if strings.TrimSpace(ln.Text[eq+1:]) == "" {
			continue
		}
		span := ln.Span
		span.Start = ln.Span.Start + uint32(eq)
		span.End = span.Start + 1
		ctx.Report(span, "break the line after `=` of a top-level declaration")
	}
}

// standaloneEquals returns the offset of the first `=` that is an assignment,
// not part of an operator like ==, <=, >=, /= or |=.
func standaloneEquals(code string) int {
	for i := 0; i < len(code); i++ {
		if code[i] != '=' {
			continue
		}
		if i > 0 && strings.IndexByte("=!<>/|&+-*^:", code[i-1]) >= 0 {
			continue
		}
		if i+1 < len(code) && code[i+1] == '=' {
			i++
			continue
		}
		return i
	}
	return -1
}

func firstDeclWord(trimmed string) string {
	end := 0
	for end < len(trimmed) && trimmed[end] != ' ' && trimmed[end] != '\t' {
		end++
	}
	return trimmed[:end]
}
