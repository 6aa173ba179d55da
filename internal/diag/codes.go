package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Сканер строк
	ScanInfo Code = 1000

	// Структурный разбор (эвристический, без полной грамматики)
	StructInfo              Code = 2000
	StructUnterminatedBlock Code = 2001

	// Правила стиля
	StyleInfo                    Code = 3000
	StyleLineTooLong             Code = 3001
	StyleTrailingWhitespace      Code = 3002
	StyleMissingFinalNewline     Code = 3003
	StyleTabIndentation          Code = 3004
	StyleIndentationMismatch     Code = 3005
	StyleWildcardImport          Code = 3006
	StyleNewlineAfterEquals      Code = 3007
	StyleCaseWithoutDefault      Code = 3008
	StyleRhythmicArrowAlignment  Code = 3009
	StyleRecordBraceStyle        Code = 3010

	// Ввод-вывод
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
	IOEncodingError Code = 4002

	// Конфигурация
	ConfigInfo    Code = 5000
	ConfigInvalid Code = 5001
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown issue",

	ScanInfo: "scanner note",

	StructInfo:              "structure note",
	StructUnterminatedBlock: "block is not terminated before end of file",

	StyleInfo:                   "style note",
	StyleLineTooLong:            "line exceeds the maximum length",
	StyleTrailingWhitespace:     "line has trailing whitespace",
	StyleMissingFinalNewline:    "file does not end with a newline",
	StyleTabIndentation:         "indentation uses tab characters",
	StyleIndentationMismatch:    "indentation does not match the configured width",
	StyleWildcardImport:         "import exposes everything with (..)",
	StyleNewlineAfterEquals:     "top-level declaration body starts on the = line",
	StyleCaseWithoutDefault:     "case expression has no catch-all branch",
	StyleRhythmicArrowAlignment: "case arrows are padded into columns",
	StyleRecordBraceStyle:       "record braces are not in the expected position",

	IOInfo:          "io note",
	IOLoadFileError: "failed to load file",
	IOEncodingError: "file is not valid text",

	ConfigInfo:    "config note",
	ConfigInvalid: "configuration is invalid",
}

// ID returns a stable, band-prefixed identifier such as STY3001.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SCAN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("STR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("STY%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	}
	return "E0000"
}

// Title returns the short human description of the code.
func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
