package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"flint/internal/config"
)

// newTestCheckCmd возвращает свежую команду с флагами check,
// чтобы состояние Changed не протекало между тестами.
func newTestCheckCmd(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "check"}
	registerCheckFlags(cmd)
	return cmd
}

func writeManifestFile(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, config.ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
}

func TestManifestStartDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Main.elm")
	if err := os.WriteFile(file, []byte("x =\n    1\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if got := manifestStartDir(nil); got != "." {
		t.Errorf("Expected \".\" for empty args, got %q", got)
	}
	if got := manifestStartDir([]string{dir}); got != dir {
		t.Errorf("Expected directory argument itself, got %q", got)
	}
	// для файла поиск стартует из его директории
	if got := manifestStartDir([]string{file}); got != dir {
		t.Errorf("Expected parent directory of the file, got %q", got)
	}
}

func TestResolveConfigFromManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifestFile(t, dir, "[style]\nmax_line_length = 100\n")

	cmd := newTestCheckCmd(t)
	cfg, err := resolveConfig(cmd, []string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxLineLength != 100 {
		t.Errorf("Expected manifest value 100, got %d", cfg.MaxLineLength)
	}
	// незатронутый ключ остаётся дефолтным
	if cfg.IndentWidth != config.Default().IndentWidth {
		t.Errorf("Expected default indent width, got %d", cfg.IndentWidth)
	}
}

func TestResolveConfigFlagOverridesManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifestFile(t, dir, "[style]\nmax_line_length = 100\nindent_width = 2\n")

	cmd := newTestCheckCmd(t)
	if err := cmd.Flags().Set("max-line-length", "90"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	cfg, err := resolveConfig(cmd, []string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxLineLength != 90 {
		t.Errorf("Expected flag to win over manifest, got %d", cfg.MaxLineLength)
	}
	// флаг не трогали, значение из манифеста остаётся
	if cfg.IndentWidth != 2 {
		t.Errorf("Expected manifest indent 2 to survive, got %d", cfg.IndentWidth)
	}
}

func TestResolveConfigNoConfig(t *testing.T) {
	dir := t.TempDir()
	writeManifestFile(t, dir, "[style]\nmax_line_length = 100\n")

	cmd := newTestCheckCmd(t)
	if err := cmd.Flags().Set("no-config", "true"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	cfg, err := resolveConfig(cmd, []string{dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != config.Default() {
		t.Errorf("Expected built-in defaults with --no-config, got %+v", cfg)
	}
}

func TestResolveConfigInvalidOverride(t *testing.T) {
	dir := t.TempDir()

	cmd := newTestCheckCmd(t)
	if err := cmd.Flags().Set("max-line-length", "-5"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	if _, err := resolveConfig(cmd, []string{dir}); err == nil {
		t.Fatal("Expected validation error for negative max-line-length")
	}
}

func TestValidateMaxDiagnostics(t *testing.T) {
	cases := []struct {
		n  int
		ok bool
	}{
		{100, true},
		{1, true},
		{math.MaxUint16, true},
		{0, false},
		{-1, false},
		{math.MaxUint16 + 1, false},
	}
	for _, tc := range cases {
		err := validateMaxDiagnostics(tc.n)
		if tc.ok && err != nil {
			t.Errorf("%d: unexpected error %v", tc.n, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%d: expected error", tc.n)
		}
	}
}
