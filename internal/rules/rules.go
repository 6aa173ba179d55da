package rules

import (
	"flint/internal/block"
	"flint/internal/config"
	"flint/internal/diag"
	"flint/internal/scan"
	"flint/internal/source"
)

// Revision is bumped whenever rule behaviour changes; cached results keyed
// on an older revision are invalidated.
const Revision = 1

// Rule describes one registered check. Checks are pure functions over the
// evaluation context: no rule observes another rule's output, so the set can
// run in any order (or in parallel) with identical results. Registration
// order is the deterministic tie-break for diagnostics on the same position.
type Rule struct {
	Code     diag.Code
	Name     string
	Severity diag.Severity
	Doc      string
	Check    func(*Context)
}

// Context is the read-only input shared by every rule of one file.
type Context struct {
	File   *source.File
	Lines  []scan.Line
	Code   []string // comment/string-stripped lines, same indices as Lines
	Blocks *block.Forest
	// HasFinalNewline reports whether the file's last line was terminated.
	HasFinalNewline bool
	Config          config.Config

	rule     Rule
	reporter diag.Reporter
}

// Report emits a diagnostic with the current rule's code and severity.
func (ctx *Context) Report(span source.Span, msg string) {
	ctx.reporter.Report(ctx.rule.Code, ctx.rule.Severity, span, msg, nil)
}

// All returns the registered rules in registration order.
func All() []Rule {
	return registry
}

var registry = []Rule{
	{
		Code:     diag.StyleLineTooLong,
		Name:     "LineTooLong",
		Severity: diag.SevWarning,
		Doc:      "line is longer than the configured maximum (characters, not bytes)",
		Check:    checkLineTooLong,
	},
	{
		Code:     diag.StyleTrailingWhitespace,
		Name:     "TrailingWhitespace",
		Severity: diag.SevWarning,
		Doc:      "line ends with spaces or tabs",
		Check:    checkTrailingWhitespace,
	},
	{
		Code:     diag.StyleMissingFinalNewline,
		Name:     "MissingFinalNewline",
		Severity: diag.SevWarning,
		Doc:      "last line of the file has no terminator",
		Check:    checkMissingFinalNewline,
	},
	{
		Code:     diag.StyleTabIndentation,
		Name:     "TabIndentation",
		Severity: diag.SevError,
		Doc:      "indentation contains tab characters",
		Check:    checkTabIndentation,
	},
	{
		Code:     diag.StyleIndentationMismatch,
		Name:     "IndentationMismatch",
		Severity: diag.SevError,
		Doc:      "indentation is not a multiple of the indent width, or a block body is not one step deeper than its header",
		Check:    checkIndentation,
	},
	{
		Code:     diag.StyleWildcardImport,
		Name:     "WildcardImportUsed",
		Severity: diag.SevWarning,
		Doc:      "import exposes everything via exposing (..)",
		Check:    checkWildcardImport,
	},
	{
		Code:     diag.StyleNewlineAfterEquals,
		Name:     "MissingNewlineAfterEquals",
		Severity: diag.SevWarning,
		Doc:      "top-level declaration continues on the = line instead of breaking",
		Check:    checkNewlineAfterEquals,
	},
	{
		Code:     diag.StyleCaseWithoutDefault,
		Name:     "CaseWithoutDefault",
		Severity: diag.SevError,
		Doc:      "case expression has no wildcard or binding catch-all branch",
		Check:    checkCaseWithoutDefault,
	},
	{
		Code:     diag.StyleRhythmicArrowAlignment,
		Name:     "RhythmicArrowAlignment",
		Severity: diag.SevWarning,
		Doc:      "case arrows are padded into a column instead of single-spaced",
		Check:    checkArrowAlignment,
	},
	{
		Code:     diag.StyleRecordBraceStyle,
		Name:     "RecordBraceStyle",
		Severity: diag.SevWarning,
		Doc:      "multi-line record braces are not in the house position",
		Check:    checkRecordBraceStyle,
	},
}

// Evaluate runs every registered rule over the file. The produced sequence
// is deterministic: identical input and config always yield an identical,
// identically-ordered diagnostic list.
func Evaluate(file *source.File, lines []scan.Line, blocks *block.Forest, hasFinalNewline bool, cfg config.Config, reporter diag.Reporter) {
	ctx := &Context{
		File:            file,
		Lines:           lines,
		Code:            block.CodeLines(lines),
		Blocks:          blocks,
		HasFinalNewline: hasFinalNewline,
		Config:          cfg,
		reporter:        reporter,
	}
	for _, rule := range registry {
		ctx.rule = rule
		rule.Check(ctx)
	}
}
