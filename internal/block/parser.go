package block

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"flint/internal/diag"
	"flint/internal/scan"
	"flint/internal/source"
)

// Parse builds the block forest for one file. It is a heuristic structural
// pass, not a full grammar: constructs it does not recognize stay opaque and
// produce no blocks. Unmatched opens are closed by recovery and reported as
// StructUnterminatedBlock through the reporter; parsing always continues.
func Parse(lines []scan.Line, fileID source.FileID, reporter diag.Reporter) *Forest {
	p := &parser{
		fileID:   fileID,
		reporter: reporter,
		forest:   &Forest{},
	}
	for _, ln := range lines {
		p.feed(ln)
	}
	p.finish()
	return p.forest
}

type parser struct {
	fileID   source.FileID
	reporter diag.Reporter
	forest   *Forest
	stack    []*Block
	state    sanitizeState
	// lastNonBlank is the last non-blank line seen, used as EndLine when a
	// block is closed by dedent.
	lastNonBlank uint32
}

func (p *parser) feed(ln scan.Line) {
	clean, next := sanitizeLine(ln.Text, p.state)
	p.state = next

	if strings.TrimSpace(clean) == "" {
		// пустые строки и строки-комментарии блоки не закрывают
		return
	}

	p.closeByDedent(ln, clean)
	p.collectCaseBranch(ln, clean)
	p.scanEvents(ln, clean)
	p.lastNonBlank = ln.Index
}

func (p *parser) finish() {
	// Незакрытые блоки на конце файла. Конструкции, которые закрываются
	// отступом (case, if, import), завершаются штатно; let и скобочные
	// блоки без закрывающего токена — это находка.
	for len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		switch top.Kind {
		case KindCaseOf, KindIfElse, KindImport:
			p.close(top, p.lastNonBlank, true)
		default:
			p.close(top, p.lastNonBlank, false)
		}
	}
}

// closeByDedent closes keyword blocks whose region ended before this line.
func (p *parser) closeByDedent(ln scan.Line, clean string) {
	first := firstWord(clean)
	for len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		if ln.Index <= top.StartLine {
			break
		}
		switch top.Kind {
		case KindCaseOf, KindImport:
			if ln.IndentWidth <= top.HeaderIndent {
				p.close(top, p.lastNonBlank, true)
				continue
			}
		case KindIfElse:
			// else/then на уровне заголовка принадлежат блоку
			if ln.IndentWidth <= top.HeaderIndent && first != "else" && first != "then" {
				p.close(top, p.lastNonBlank, true)
				continue
			}
		case KindLet:
			// дедент ниже заголовка без `in` — восстановление
			if ln.IndentWidth < top.HeaderIndent && first != "in" {
				p.close(top, p.lastNonBlank, false)
				continue
			}
		case KindRecord, KindList:
			if ln.IndentWidth < top.HeaderIndent {
				p.close(top, p.lastNonBlank, false)
				continue
			}
		}
		break
	}
}

// scanEvents walks the sanitized line left to right and reacts to opening
// and closing tokens in source order.
func (p *parser) scanEvents(ln scan.Line, clean string) {
	sawThen := false
	sawElse := false

	i := 0
	for i < len(clean) {
		c := clean[i]
		switch {
		case c == '{':
			p.open(KindRecord, ln, i, 1)
			i++
		case c == '}':
			p.closeBracket(KindRecord, ln, i)
			i++
		case c == '[':
			p.open(KindList, ln, i, 1)
			i++
		case c == ']':
			p.closeBracket(KindList, ln, i)
			i++
		case isWordByte(c):
			start := i
			for i < len(clean) && isWordByte(clean[i]) {
				i++
			}
			word := clean[start:i]
			switch word {
			case "let":
				p.open(KindLet, ln, start, len(word))
			case "case":
				p.open(KindCaseOf, ln, start, len(word))
			case "if":
				p.open(KindIfElse, ln, start, len(word))
			case "then":
				sawThen = true
			case "else":
				sawElse = true
			case "in":
				p.closeLet(ln)
			case "import":
				// импорт распознаём только в заголовочной позиции
				if start == ln.IndentWidth && ln.IndentWidth == 0 {
					p.open(KindImport, ln, start, len(word))
				}
			}
		default:
			i++
		}
	}

	// однострочный if a then b else c
	if sawThen && sawElse && len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		if top.Kind == KindIfElse && top.StartLine == ln.Index {
			p.close(top, ln.Index, true)
		}
	}
}

func (p *parser) open(kind Kind, ln scan.Line, col, tokenLen int) {
	colU, err := safecast.Conv[uint32](col)
	if err != nil {
		panic(fmt.Errorf("column overflow: %w", err))
	}
	b := &Block{
		Kind:         kind,
		StartLine:    ln.Index,
		EndLine:      ln.Index,
		HeaderIndent: ln.IndentWidth,
		Depth:        len(p.stack),
		Terminated:   true,
		OpenerFirst:  col == ln.IndentWidth,
		branchIndent: -1,
		OpenSpan: source.Span{
			File:  p.fileID,
			Start: ln.Span.Start + colU,
			End:   ln.Span.Start + colU + uint32(tokenLen),
		},
	}
	if len(p.stack) > 0 {
		parent := p.stack[len(p.stack)-1]
		b.Parent = parent
		parent.Children = append(parent.Children, b)
	} else {
		p.forest.Roots = append(p.forest.Roots, b)
	}
	p.forest.all = append(p.forest.all, b)
	p.stack = append(p.stack, b)
}

func (p *parser) close(b *Block, endLine uint32, terminated bool) {
	if endLine < b.StartLine {
		endLine = b.StartLine
	}
	b.EndLine = endLine
	b.Terminated = terminated
	p.stack = p.stack[:len(p.stack)-1]
	if !terminated {
		p.reportUnterminated(b)
	}
}

func (p *parser) closeBracket(kind Kind, ln scan.Line, col int) {
	if len(p.stack) == 0 {
		return
	}
	top := p.stack[len(p.stack)-1]
	if top.Kind != kind {
		// лишний закрывающий токен; эвристика его игнорирует
		return
	}
	top.CloseIndent = ln.IndentWidth
	top.CloseAlone = col == ln.IndentWidth
	colU, err := safecast.Conv[uint32](col)
	if err != nil {
		panic(fmt.Errorf("column overflow: %w", err))
	}
	top.CloseSpan = source.Span{
		File:  p.fileID,
		Start: ln.Span.Start + colU,
		End:   ln.Span.Start + colU + 1,
	}
	p.close(top, ln.Index, true)
}

// closeLet closes the nearest open let on an `in` keyword. Anything opened
// above it without a closer is recovered as unterminated.
func (p *parser) closeLet(ln scan.Line) {
	idx := -1
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].Kind == KindLet {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	for len(p.stack) > idx+1 {
		top := p.stack[len(p.stack)-1]
		switch top.Kind {
		case KindCaseOf, KindIfElse, KindImport:
			p.close(top, p.lastNonBlank, true)
		default:
			p.close(top, p.lastNonBlank, false)
		}
	}
	p.close(p.stack[idx], ln.Index, true)
}

// collectCaseBranch records `pattern -> …` branches of the innermost case.
func (p *parser) collectCaseBranch(ln scan.Line, clean string) {
	var c *Block
	for i := len(p.stack) - 1; i >= 0; i-- {
		b := p.stack[i]
		if b.Kind == KindCaseOf {
			c = b
			break
		}
		// многострочный вложенный блок экранирует ветки внешнего case
		if b.StartLine != ln.Index {
			return
		}
	}
	if c == nil || ln.Index <= c.StartLine || ln.IndentWidth <= c.HeaderIndent {
		return
	}

	arrow := arrowIndex(clean)
	if arrow < 0 {
		return
	}
	if c.branchIndent < 0 {
		c.branchIndent = ln.IndentWidth
	}
	if ln.IndentWidth != c.branchIndent {
		return
	}

	spaces := 0
	for j := arrow - 1; j >= 0 && clean[j] == ' '; j-- {
		spaces++
	}
	arrowU, err := safecast.Conv[uint32](arrow)
	if err != nil {
		panic(fmt.Errorf("arrow offset overflow: %w", err))
	}
	c.Branches = append(c.Branches, CaseBranch{
		Line:              ln.Index,
		Pattern:           strings.TrimSpace(clean[:arrow]),
		ArrowCol:          arrow + 1,
		SpacesBeforeArrow: spaces,
		ArrowSpan: source.Span{
			File:  p.fileID,
			Start: ln.Span.Start + arrowU,
			End:   ln.Span.Start + arrowU + 2,
		},
	})
}

func (p *parser) reportUnterminated(b *Block) {
	if p.reporter == nil {
		return
	}
	var msg string
	switch b.Kind {
	case KindLet:
		msg = "let block is missing its matching `in`"
	case KindRecord:
		msg = "record is missing its closing `}`"
	case KindList:
		msg = "list is missing its closing `]`"
	default:
		msg = b.Kind.String() + " block is never closed"
	}
	diag.ReportError(p.reporter, diag.StructUnterminatedBlock, b.OpenSpan, msg).
		WithNote(b.OpenSpan, "block opened here").
		Emit()
}

// arrowIndex returns the byte offset of the first `->` token, -1 when absent.
func arrowIndex(clean string) int {
	from := 0
	for {
		idx := strings.Index(clean[from:], "->")
		if idx < 0 {
			return -1
		}
		idx += from
		// `->` не должен быть хвостом оператора вроде `<->`
		if idx > 0 {
			prev := clean[idx-1]
			if prev != ' ' && prev != '\t' {
				from = idx + 2
				continue
			}
		}
		if idx+2 < len(clean) {
			nxt := clean[idx+2]
			if nxt != ' ' && nxt != '\t' {
				from = idx + 2
				continue
			}
		}
		return idx
	}
}

func firstWord(clean string) string {
	i := 0
	for i < len(clean) && (clean[i] == ' ' || clean[i] == '\t') {
		i++
	}
	start := i
	for i < len(clean) && isWordByte(clean[i]) {
		i++
	}
	return clean[start:i]
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '\''
}
