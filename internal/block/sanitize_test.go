package block

import (
	"testing"

	"flint/internal/scan"
	"flint/internal/source"
)

func codeLinesOf(t *testing.T, content string) []string {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("T.elm", []byte(content))
	return CodeLines(scan.New(fs.Get(id)).All())
}

func TestSanitizePreservesColumns(t *testing.T) {
	clean := codeLinesOf(t, "x = \"hello\" + y\n")
	if len(clean[0]) != len("x = \"hello\" + y") {
		t.Fatalf("Expected byte length preserved, got %d", len(clean[0]))
	}
	if clean[0] != "x =         + y" {
		t.Errorf("Expected string blanked in place, got %q", clean[0])
	}
}

func TestSanitizeLineComment(t *testing.T) {
	clean := codeLinesOf(t, "x = 1 -- objection\n")
	if clean[0] != "x = 1             " {
		t.Errorf("Expected comment blanked, got %q", clean[0])
	}
}

func TestSanitizeNestedBlockComment(t *testing.T) {
	clean := codeLinesOf(t, ""+
		"a = 1 {- outer\n"+
		"   {- inner -}\n"+
		"   outer again -} + 2\n"+
		"b = 3\n")

	if clean[0] != "a = 1         " {
		t.Errorf("line 1: got %q", clean[0])
	}
	// вся строка внутри комментария
	if clean[1] != "              " {
		t.Errorf("line 2: got %q", clean[1])
	}
	if clean[2] != "                  + 2" {
		t.Errorf("line 3: got %q", clean[2])
	}
	if clean[3] != "b = 3" {
		t.Errorf("line 4: got %q", clean[3])
	}
}

func TestSanitizeTripleString(t *testing.T) {
	clean := codeLinesOf(t, ""+
		"s = \"\"\"\n"+
		"let case of {\n"+
		"\"\"\"\n"+
		"t = 1\n")

	if clean[0] != "s =    " {
		t.Errorf("line 1: got %q", clean[0])
	}
	if clean[1] != "             " {
		t.Errorf("line 2: got %q", clean[1])
	}
	if clean[2] != "   " {
		t.Errorf("line 3: got %q", clean[2])
	}
	if clean[3] != "t = 1" {
		t.Errorf("line 4: got %q", clean[3])
	}
}

func TestSanitizeCharLiteralAndPrime(t *testing.T) {
	clean := codeLinesOf(t, "c = 'x'\n")
	if clean[0] != "c =    " {
		t.Errorf("char literal: got %q", clean[0])
	}

	// апостроф в идентификаторе не считается началом литерала
	clean = codeLinesOf(t, "x' = f x\n")
	if clean[0] != "x' = f x" {
		t.Errorf("primed identifier: got %q", clean[0])
	}
}

func TestSanitizeEscapedQuote(t *testing.T) {
	clean := codeLinesOf(t, "s = \"a\\\"b\" + t\n")
	if clean[0] != "s =        + t" {
		t.Errorf("escaped quote: got %q", clean[0])
	}
}
