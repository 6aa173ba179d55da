package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"flint/internal/diag"
	"flint/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	gutterColor  = color.New(color.FgHiBlack)
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		printEntry(w, fs, opts, d.Severity, d.Code, d.Primary, d.Message)
		if opts.ShowNotes {
			for _, note := range d.Notes {
				printNote(w, fs, opts, note)
			}
		}
	}
}

func printEntry(w io.Writer, fs *source.FileSet, opts PrettyOpts, sev diag.Severity, code diag.Code, span source.Span, msg string) {
	file := fs.Get(span.File)
	start, end := fs.Resolve(span)
	path := formatPath(file, fs, opts.PathMode)

	label := sev.String()
	if opts.Color {
		label = severityColor(sev).Sprint(label)
	}
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, start.Line, start.Col, label, code.ID(), msg)

	if opts.ShowSource {
		printSource(w, file, opts, start, end)
	}
}

func printNote(w io.Writer, fs *source.FileSet, opts PrettyOpts, note diag.Note) {
	file := fs.Get(note.Span.File)
	start, _ := fs.Resolve(note.Span)
	path := formatPath(file, fs, opts.PathMode)
	label := "note"
	if opts.Color {
		label = infoColor.Sprint(label)
	}
	fmt.Fprintf(w, "  %s:%d:%d: %s: %s\n", path, start.Line, start.Col, label, note.Msg)
}

// printSource renders the offending line and a ^~~~ underline below it.
// Caret placement is display-width aware so that wide runes line up.
func printSource(w io.Writer, file *source.File, opts PrettyOpts, start, end source.LineCol) {
	text := file.GetLine(start.Line)
	if opts.Width > 0 {
		text = runewidth.Truncate(text, opts.Width, "…")
	}

	gutter := fmt.Sprintf("%5d | ", start.Line)
	if opts.Color {
		gutter = gutterColor.Sprint(gutter)
	}
	fmt.Fprintf(w, "%s%s\n", gutter, strings.ReplaceAll(text, "\t", " "))

	startCol := int(start.Col) - 1
	if startCol > len(text) {
		startCol = len(text)
	}
	pad := runewidth.StringWidth(text[:startCol])

	length := 1
	if end.Line == start.Line && end.Col > start.Col {
		endCol := int(end.Col) - 1
		if endCol > len(text) {
			endCol = len(text)
		}
		if endCol > startCol {
			length = runewidth.StringWidth(text[startCol:endCol])
		}
	}

	underline := "^"
	if length > 1 {
		underline += strings.Repeat("~", length-1)
	}
	if opts.Color {
		underline = warningColor.Sprint(underline)
	}
	fmt.Fprintf(w, "%s%s%s\n", strings.Repeat(" ", 8), strings.Repeat(" ", pad), underline)
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

func formatPath(file *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return file.FormatPath("absolute", "")
	case PathModeRelative:
		return file.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return file.FormatPath("basename", "")
	default:
		return file.FormatPath("auto", "")
	}
}
