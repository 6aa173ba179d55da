package rules

import (
	"strings"
	"testing"

	"flint/internal/block"
	"flint/internal/config"
	"flint/internal/diag"
	"flint/internal/scan"
	"flint/internal/source"
)

// runPipeline прогоняет полный конвейер правил над виртуальным файлом.
func runPipeline(t *testing.T, content string, cfg config.Config) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("Main.elm", []byte(content))
	file := fs.Get(id)

	sc := scan.New(file)
	lines := sc.All()
	hasFinalNewline := sc.HasFinalNewline()

	bag := diag.NewBag(100)
	reporter := diag.BagReporter{Bag: bag}
	forest := block.Parse(lines, file.ID, reporter)
	Evaluate(file, lines, forest, hasFinalNewline, cfg, reporter)
	bag.Sort()
	return bag, fs
}

func countCode(bag *diag.Bag, code diag.Code) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func TestLineTooLong(t *testing.T) {
	content := strings.Repeat("a", 81) + "\n"
	bag, _ := runPipeline(t, content, config.Default())

	if bag.Len() != 1 {
		t.Fatalf("Expected exactly 1 diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.StyleLineTooLong {
		t.Errorf("Expected StyleLineTooLong, got %v", d.Code)
	}
	if d.Severity != diag.SevWarning {
		t.Errorf("Expected warning severity, got %v", d.Severity)
	}
	// подсвечен хвост за пределами лимита
	if d.Primary.Start != 80 || d.Primary.End != 81 {
		t.Errorf("Expected span [80,81), got [%d,%d)", d.Primary.Start, d.Primary.End)
	}
}

func TestLineTooLongCountsRunesNotBytes(t *testing.T) {
	// 80 двухбайтовых символов: 160 байт, но ровно 80 символов
	content := strings.Repeat("é", 80) + "\n"
	bag, _ := runPipeline(t, content, config.Default())

	if n := countCode(bag, diag.StyleLineTooLong); n != 0 {
		t.Errorf("Expected no LineTooLong for 80 runes, got %d", n)
	}
}

func TestTrailingWhitespace(t *testing.T) {
	bag, _ := runPipeline(t, "x =\n    1  \n", config.Default())

	if bag.Len() != 1 {
		t.Fatalf("Expected exactly 1 diagnostic, got %d", bag.Len())
	}
	if bag.Items()[0].Code != diag.StyleTrailingWhitespace {
		t.Errorf("Expected StyleTrailingWhitespace, got %v", bag.Items()[0].Code)
	}
}

func TestMissingFinalNewline(t *testing.T) {
	bag, _ := runPipeline(t, "x =\n    1", config.Default())

	if n := countCode(bag, diag.StyleMissingFinalNewline); n != 1 {
		t.Fatalf("Expected 1 MissingFinalNewline, got %d", n)
	}

	// с выключенной опцией молчит
	cfg := config.Default()
	cfg.RequireFinalNewline = false
	bag, _ = runPipeline(t, "x =\n    1", cfg)
	if n := countCode(bag, diag.StyleMissingFinalNewline); n != 0 {
		t.Errorf("Expected rule to be disabled, got %d", n)
	}
}

func TestTabIndentation(t *testing.T) {
	bag, _ := runPipeline(t, "f =\n\tx\n", config.Default())

	if bag.Len() != 1 {
		t.Fatalf("Expected exactly 1 diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.StyleTabIndentation {
		t.Errorf("Expected StyleTabIndentation, got %v", d.Code)
	}
	if d.Severity != diag.SevError {
		t.Errorf("Expected error severity, got %v", d.Severity)
	}
}

func TestIndentationNotMultiple(t *testing.T) {
	bag, _ := runPipeline(t, "f =\n   x\n", config.Default())

	if bag.Len() != 1 {
		t.Fatalf("Expected exactly 1 diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.StyleIndentationMismatch {
		t.Errorf("Expected StyleIndentationMismatch, got %v", d.Code)
	}
	if d.Severity != diag.SevError {
		t.Errorf("Expected error severity, got %v", d.Severity)
	}
}

func TestIndentationCustomWidth(t *testing.T) {
	cfg := config.Default()
	cfg.IndentWidth = 2

	// при ширине 2 отступ 4 корректен, отступ 3 — нет
	bag, _ := runPipeline(t, "f =\n    x\n", cfg)
	if n := countCode(bag, diag.StyleIndentationMismatch); n != 0 {
		t.Errorf("Expected 4 to be a multiple of 2, got %d mismatches", n)
	}

	bag, _ = runPipeline(t, "f =\n   x\n", cfg)
	if n := countCode(bag, diag.StyleIndentationMismatch); n != 1 {
		t.Errorf("Expected 3 to mismatch width 2, got %d", n)
	}
}

func TestLetBodyIndentStep(t *testing.T) {
	bag, _ := runPipeline(t, ""+
		"f =\n"+
		"    let\n"+
		"            x = 1\n"+
		"    in\n"+
		"    x\n", config.Default())

	if n := countCode(bag, diag.StyleIndentationMismatch); n != 1 {
		t.Fatalf("Expected 1 IndentationMismatch for deep let body, got %d", n)
	}
	d := bag.Items()[0]
	if !strings.Contains(d.Message, "let body") {
		t.Errorf("Expected let body message, got %q", d.Message)
	}
}

func TestWildcardImport(t *testing.T) {
	bag, _ := runPipeline(t, "import Dict exposing (..)\n", config.Default())

	if bag.Len() != 1 {
		t.Fatalf("Expected exactly 1 diagnostic, got %d", bag.Len())
	}
	if bag.Items()[0].Code != diag.StyleWildcardImport {
		t.Errorf("Expected StyleWildcardImport, got %v", bag.Items()[0].Code)
	}

	// явный список имён — без претензий
	bag, _ = runPipeline(t, "import Dict exposing (get, insert)\n", config.Default())
	if bag.Len() != 0 {
		t.Errorf("Expected clean explicit import, got %d diagnostics", bag.Len())
	}
}

func TestMissingNewlineAfterEquals(t *testing.T) {
	bag, _ := runPipeline(t, "answer = 42\n", config.Default())
	if n := countCode(bag, diag.StyleNewlineAfterEquals); n != 1 {
		t.Errorf("Expected warning for code after `=`, got %d", n)
	}

	// строковый литерал после `=` — тоже код
	bag, _ = runPipeline(t, "greeting = \"hello\"\n", config.Default())
	if n := countCode(bag, diag.StyleNewlineAfterEquals); n != 1 {
		t.Errorf("Expected warning for string after `=`, got %d", n)
	}

	// перенос после `=` — правильная форма
	bag, _ = runPipeline(t, "answer =\n    42\n", config.Default())
	if n := countCode(bag, diag.StyleNewlineAfterEquals); n != 0 {
		t.Errorf("Expected no warning after proper break, got %d", n)
	}

	// вложенные строки правило не трогает
	bag, _ = runPipeline(t, "f =\n    let\n        x = 1\n    in\n    x\n", config.Default())
	if n := countCode(bag, diag.StyleNewlineAfterEquals); n != 0 {
		t.Errorf("Expected nested `=` to be ignored, got %d", n)
	}

	// заголовки модуля исключены
	bag, _ = runPipeline(t, "module Main exposing (main)\n", config.Default())
	if n := countCode(bag, diag.StyleNewlineAfterEquals); n != 0 {
		t.Errorf("Expected module header to be ignored, got %d", n)
	}
}

func TestEqualsOperatorIsNotAssignment(t *testing.T) {
	// == в выражении не принимается за `=` объявления
	bag, _ := runPipeline(t, "isZero n =\n    n == 0\n", config.Default())
	if n := countCode(bag, diag.StyleNewlineAfterEquals); n != 0 {
		t.Errorf("Expected == to be skipped, got %d warnings", n)
	}
}

func TestCaseWithoutDefault(t *testing.T) {
	content := "" +
		"describe fruit =\n" +
		"    case fruit of\n" +
		"        Apple ->\n" +
		"            \"apple\"\n" +
		"\n" +
		"        Banana ->\n" +
		"            \"banana\"\n"
	bag, _ := runPipeline(t, content, config.Default())

	if bag.Len() != 1 {
		t.Fatalf("Expected exactly 1 diagnostic, got %d: %v", bag.Len(), bag.Items())
	}
	d := bag.Items()[0]
	if d.Code != diag.StyleCaseWithoutDefault {
		t.Errorf("Expected StyleCaseWithoutDefault, got %v", d.Code)
	}
	if d.Severity != diag.SevError {
		t.Errorf("Expected error severity, got %v", d.Severity)
	}
}

func TestCaseWithWildcardIsClean(t *testing.T) {
	content := "" +
		"describe fruit =\n" +
		"    case fruit of\n" +
		"        Apple ->\n" +
		"            \"apple\"\n" +
		"\n" +
		"        _ ->\n" +
		"            \"other\"\n"
	bag, _ := runPipeline(t, content, config.Default())

	if n := countCode(bag, diag.StyleCaseWithoutDefault); n != 0 {
		t.Errorf("Expected `_` branch to satisfy the rule, got %d", n)
	}
}

func TestCaseWithBindingIsClean(t *testing.T) {
	content := "" +
		"describe n =\n" +
		"    case n of\n" +
		"        Zero ->\n" +
		"            \"zero\"\n" +
		"\n" +
		"        other ->\n" +
		"            \"more\"\n"
	bag, _ := runPipeline(t, content, config.Default())

	if n := countCode(bag, diag.StyleCaseWithoutDefault); n != 0 {
		t.Errorf("Expected lowercase binding to satisfy the rule, got %d", n)
	}
}

func TestCaseRuleDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.RequireDefaultCase = false
	content := "" +
		"f x =\n" +
		"    case x of\n" +
		"        One -> 1\n"
	bag, _ := runPipeline(t, content, cfg)

	if n := countCode(bag, diag.StyleCaseWithoutDefault); n != 0 {
		t.Errorf("Expected rule to be disabled, got %d", n)
	}
}

func TestRhythmicArrowAlignment(t *testing.T) {
	content := "" +
		"label n =\n" +
		"    case n of\n" +
		"        One   -> \"one\"\n" +
		"        Two   -> \"two\"\n" +
		"        _     -> \"many\"\n"
	bag, _ := runPipeline(t, content, config.Default())

	if n := countCode(bag, diag.StyleRhythmicArrowAlignment); n != 3 {
		t.Fatalf("Expected 3 padded-arrow warnings, got %d", n)
	}
}

func TestSingleSpaceArrowsAreClean(t *testing.T) {
	content := "" +
		"label n =\n" +
		"    case n of\n" +
		"        One -> \"one\"\n" +
		"        _ -> \"many\"\n"
	bag, _ := runPipeline(t, content, config.Default())

	if n := countCode(bag, diag.StyleRhythmicArrowAlignment); n != 0 {
		t.Errorf("Expected single-spaced arrows to be clean, got %d", n)
	}
}

func TestRecordBraceStyle(t *testing.T) {
	// закрывающая скобка не на своей строке
	content := "" +
		"point =\n" +
		"    { x = 1\n" +
		"    , y = 2 }\n"
	bag, _ := runPipeline(t, content, config.Default())

	if n := countCode(bag, diag.StyleRecordBraceStyle); n != 1 {
		t.Fatalf("Expected 1 brace style warning, got %d", n)
	}

	// канонная многострочная запись
	content = "" +
		"point =\n" +
		"    { x = 1\n" +
		"    , y = 2\n" +
		"    }\n"
	bag, _ = runPipeline(t, content, config.Default())
	if n := countCode(bag, diag.StyleRecordBraceStyle); n != 0 {
		t.Errorf("Expected canonical record to be clean, got %d", n)
	}

	// однострочные записи оформляются свободно
	bag, _ = runPipeline(t, "p = { x = 1, y = 2 }\n", config.Default())
	if n := countCode(bag, diag.StyleRecordBraceStyle); n != 0 {
		t.Errorf("Expected single-line record to be clean, got %d", n)
	}
}

func TestEmptyFileIsClean(t *testing.T) {
	bag, _ := runPipeline(t, "", config.Default())
	if bag.Len() != 0 {
		t.Errorf("Expected empty file to produce nothing, got %d", bag.Len())
	}
}

func TestCleanFileProducesNothing(t *testing.T) {
	content := "" +
		"module Main exposing (greeting)\n" +
		"\n" +
		"\n" +
		"greeting : String\n" +
		"greeting =\n" +
		"    \"Hello, world!\"\n"
	bag, _ := runPipeline(t, content, config.Default())

	if bag.Len() != 0 {
		t.Errorf("Expected clean file to produce nothing, got %d: %v", bag.Len(), bag.Items())
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	content := "" +
		"import Dict exposing (..)\n" +
		"\n" +
		"f =   \n" +
		"   case x of\n" +
		"        One   -> 1\n"

	bag1, fs1 := runPipeline(t, content, config.Default())
	bag2, fs2 := runPipeline(t, content, config.Default())

	out1 := diag.FormatShortDiagnostics(bag1.Items(), fs1, true)
	out2 := diag.FormatShortDiagnostics(bag2.Items(), fs2, true)
	if out1 != out2 {
		t.Errorf("Expected identical runs, got:\n%s\n--\n%s", out1, out2)
	}
	if bag1.Len() == 0 {
		t.Error("Expected the fixture to produce diagnostics")
	}
}

func TestRegistryCodesAreUnique(t *testing.T) {
	seen := make(map[diag.Code]bool)
	for _, rule := range All() {
		if seen[rule.Code] {
			t.Errorf("Duplicate rule code %v", rule.Code)
		}
		seen[rule.Code] = true
		if rule.Name == "" || rule.Doc == "" || rule.Check == nil {
			t.Errorf("Rule %v is incompletely registered", rule.Code)
		}
	}
}
