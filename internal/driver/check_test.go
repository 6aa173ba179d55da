package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"flint/internal/config"
	"flint/internal/diag"
	"flint/internal/source"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func defaultOpts() CheckOptions {
	return CheckOptions{
		Config:         config.Default(),
		MaxDiagnostics: 100,
	}
}

func TestCheckFileClean(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Clean.elm", "greeting =\n    \"hello\"\n")

	fs := source.NewFileSet()
	result := CheckFile(fs, path, defaultOpts())

	if result.Skipped {
		t.Fatal("Did not expect the file to be skipped")
	}
	if result.Bag.Len() != 0 {
		t.Errorf("Expected clean file, got %d diagnostics", result.Bag.Len())
	}
}

func TestCheckFileWithIssues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Bad.elm", "x = 1  \n")

	fs := source.NewFileSet()
	result := CheckFile(fs, path, defaultOpts())

	if !result.Bag.HasWarnings() {
		t.Fatal("Expected warnings for trailing whitespace and code after `=`")
	}
	if result.Bag.HasErrors() {
		t.Error("Did not expect errors")
	}
}

func TestCheckFileMissing(t *testing.T) {
	fs := source.NewFileSet()
	result := CheckFile(fs, filepath.Join(t.TempDir(), "Nope.elm"), defaultOpts())

	if !result.Skipped {
		t.Fatal("Expected missing file to be skipped")
	}
	if got := result.Bag.Items()[0].Code; got != diag.IOLoadFileError {
		t.Errorf("Expected IOLoadFileError, got %v", got)
	}
	// placeholder должен резолвиться форматтерами без паники
	if fs.Len() != 1 {
		t.Errorf("Expected placeholder file in the set, got %d", fs.Len())
	}
}

func TestCheckFileBadEncoding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Binary.elm")
	if err := os.WriteFile(path, []byte{'a', 0xFF, 0x00}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := source.NewFileSet()
	result := CheckFile(fs, path, defaultOpts())

	if !result.Skipped {
		t.Fatal("Expected undecodable file to be skipped")
	}
	if got := result.Bag.Items()[0].Code; got != diag.IOEncodingError {
		t.Errorf("Expected IOEncodingError, got %v", got)
	}
}

func TestWarningPolicyOptions(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "W.elm", "x = 1  \n")

	opts := defaultOpts()
	opts.IgnoreWarnings = true
	result := CheckFile(source.NewFileSet(), path, opts)
	if result.Bag.Len() != 0 {
		t.Errorf("Expected warnings dropped, got %d", result.Bag.Len())
	}

	opts = defaultOpts()
	opts.WarningsAsErrors = true
	result = CheckFile(source.NewFileSet(), path, opts)
	if !result.Bag.HasErrors() {
		t.Error("Expected warnings promoted to errors")
	}
}

func TestListSourceFilesSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b/Z.elm", "x = 1\n")
	writeFile(t, dir, "a/A.elm", "x = 1\n")
	writeFile(t, dir, "README.md", "not elm\n")

	files, err := listSourceFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Expected 2 elm files, got %d: %v", len(files), files)
	}
	if !sort.StringsAreSorted(files) {
		t.Errorf("Expected sorted file list, got %v", files)
	}
}

func TestExpandPathsRejectsMissing(t *testing.T) {
	_, err := ExpandPaths([]string{filepath.Join(t.TempDir(), "ghost")})
	if err == nil {
		t.Fatal("Expected error for unreadable argument")
	}
}

func TestCheckPathsMixedResults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Clean.elm", "greeting =\n    \"hello\"\n")
	writeFile(t, dir, "Tab.elm", "f =\n\tx\n")

	fileSet, results, err := CheckPaths(context.Background(), []string{dir}, defaultOpts(), 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if fileSet.Len() != 2 {
		t.Errorf("Expected 2 loaded files, got %d", fileSet.Len())
	}

	total := MergeResults(results, 100)
	if !total.HasErrors() {
		t.Error("Expected tab indentation error in the merged bag")
	}

	// результаты в детерминированном порядке списка файлов
	if filepath.Base(results[0].Path) != "Clean.elm" || filepath.Base(results[1].Path) != "Tab.elm" {
		t.Errorf("Unexpected result order: %s, %s", results[0].Path, results[1].Path)
	}
	if results[0].Bag.Len() != 0 {
		t.Errorf("Expected Clean.elm to be clean, got %d", results[0].Bag.Len())
	}
}

func TestCheckPathsEmitsEvents(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.elm", "x =\n    1\n")
	writeFile(t, dir, "B.elm", "y =\n    2\n")

	var mu sync.Mutex
	var done int
	progress := ProgressFunc(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if ev.Kind == EventFileDone {
			done++
			if ev.Total != 2 {
				t.Errorf("Expected total 2, got %d", ev.Total)
			}
		}
	})

	_, _, err := CheckPaths(context.Background(), []string{dir}, defaultOpts(), 0, progress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done != 2 {
		t.Errorf("Expected 2 done events, got %d", done)
	}
}

func TestCheckPathsBadFileDoesNotAbort(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Good.elm", "x =\n    1\n")
	binary := filepath.Join(dir, "Bad.elm")
	if err := os.WriteFile(binary, []byte{0x00, 0xFF}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, results, err := CheckPaths(context.Background(), []string{dir}, defaultOpts(), 1, nil)
	if err != nil {
		t.Fatalf("Per-file failures must not abort the run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	var skipped, clean int
	for _, r := range results {
		if r.Skipped {
			skipped++
		} else if r.Bag.Len() == 0 {
			clean++
		}
	}
	if skipped != 1 || clean != 1 {
		t.Errorf("Expected 1 skipped and 1 clean, got %d/%d", skipped, clean)
	}
}

func TestCheckPathsCanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.elm", "x =\n    1\n")
	writeFile(t, dir, "B.elm", "y =\n    2\n")
	writeFile(t, dir, "C.elm", "z =\n    3\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, results, err := CheckPaths(ctx, []string{dir}, defaultOpts(), 1, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected a slot per file, got %d", len(results))
	}

	// брошенные слоты остаются пустыми, слияние их переживает
	total := MergeResults(results, 100)
	if total.Len() != 0 {
		t.Errorf("Expected no diagnostics from abandoned files, got %d", total.Len())
	}
}

func TestCheckDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.elm", "x =\n    1\n")
	writeFile(t, dir, "nested/B.elm", "y =\n    2\n")

	fileSet, results, err := CheckDir(context.Background(), dir, defaultOpts(), 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if fileSet.BaseDir() != dir {
		t.Errorf("Expected base dir %q, got %q", dir, fileSet.BaseDir())
	}
	for _, r := range results {
		if r.Bag.Len() != 0 {
			t.Errorf("%s: expected clean file, got %d diagnostics", r.Path, r.Bag.Len())
		}
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cache, err := OpenDiskCache("flint-test")
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}

	dir := t.TempDir()
	path := writeFile(t, dir, "C.elm", "x = 1  \n")

	opts := defaultOpts()
	opts.Cache = cache

	fs1 := source.NewFileSet()
	first := CheckFile(fs1, path, opts)
	if first.Cached {
		t.Fatal("First run must not be served from cache")
	}

	fs2 := source.NewFileSet()
	second := CheckFile(fs2, path, opts)
	if !second.Cached {
		t.Fatal("Second run with identical input must hit the cache")
	}
	if first.Bag.Len() != second.Bag.Len() {
		t.Errorf("Cached diagnostics differ: %d vs %d", first.Bag.Len(), second.Bag.Len())
	}

	// изменение конфигурации инвалидирует запись
	opts.Config.MaxLineLength = 120
	third := CheckFile(source.NewFileSet(), path, opts)
	if third.Cached {
		t.Error("Config change must invalidate the cache entry")
	}
}

func TestDiskCacheReplaysSpans(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cache, err := OpenDiskCache("flint-test")
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}

	dir := t.TempDir()
	path := writeFile(t, dir, "S.elm", "x = 1  \n")

	opts := defaultOpts()
	opts.Cache = cache

	first := CheckFile(source.NewFileSet(), path, opts)
	second := CheckFile(source.NewFileSet(), path, opts)
	if !second.Cached {
		t.Fatal("Expected cache hit")
	}

	for i, d := range second.Bag.Items() {
		orig := first.Bag.Items()[i]
		if d.Primary.Start != orig.Primary.Start || d.Primary.End != orig.Primary.End {
			t.Errorf("Span %d differs after replay: [%d,%d) vs [%d,%d)",
				i, d.Primary.Start, d.Primary.End, orig.Primary.Start, orig.Primary.End)
		}
		// спаны перепривязаны к файлу из текущего FileSet
		if d.Primary.File != second.FileID {
			t.Errorf("Expected span bound to current file ID %d, got %d", second.FileID, d.Primary.File)
		}
	}
}
