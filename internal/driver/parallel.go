package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"flint/internal/diag"
	"flint/internal/source"
)

// SourceExt is the file extension the checker looks for when walking
// directories. Explicit file arguments are checked regardless of extension.
const SourceExt = ".elm"

// listSourceFiles возвращает отсортированный список всех *.elm файлов в директории
func listSourceFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, SourceExt) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// ExpandPaths turns a mixed list of file and directory arguments into a
// deterministic, duplicate-free file list. A path that cannot be stat'ed is
// an invocation error: the caller should abort rather than report it as a
// per-file diagnostic.
func ExpandPaths(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		inDir, err := listSourceFiles(path)
		if err != nil {
			return nil, err
		}
		for _, f := range inDir {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

// CheckPaths проверяет все указанные файлы параллельно.
// Per-file failures (encoding, unreadable file discovered during the walk)
// become diagnostics in that file's bag; only invocation-level problems
// (bad arguments, cancellation) are returned as an error.
func CheckPaths(ctx context.Context, paths []string, opts CheckOptions, jobs int, progress ProgressFunc) (*source.FileSet, []CheckResult, error) {
	files, err := ExpandPaths(paths)
	if err != nil {
		return nil, nil, err
	}
	return checkFiles(ctx, files, baseDirFor(paths), opts, jobs, progress)
}

// CheckDir проверяет все *.elm файлы в директории параллельно.
func CheckDir(ctx context.Context, dir string, opts CheckOptions, jobs int, progress ProgressFunc) (*source.FileSet, []CheckResult, error) {
	files, err := listSourceFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	return checkFiles(ctx, files, dir, opts, jobs, progress)
}

func checkFiles(ctx context.Context, files []string, baseDir string, opts CheckOptions, jobs int, progress ProgressFunc) (*source.FileSet, []CheckResult, error) {
	fileSet := source.NewFileSetWithBase(baseDir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	// Предзагружаем все файлы последовательно: FileSet не потокобезопасен.
	// Ошибки загрузки сразу превращаются в готовые результаты с placeholder
	// файлом, воркеры их не трогают.
	fileIDs := make(map[string]source.FileID, len(files))
	failed := make(map[string]CheckResult)

	for _, path := range files {
		fileID, err := fileSet.Load(path)
		if err != nil {
			failed[path] = loadFailure(fileSet, path, err, opts)
			continue
		}
		fileIDs[path] = fileID
	}

	// Настраиваем параллелизм
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]CheckResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func(i int, path string) func() error {
			return func() error {
				// Проверка отмены
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				progress.emit(Event{Kind: EventFileStart, Path: path, Index: i, Total: len(files)})

				var result CheckResult
				if prepared, hadError := failed[path]; hadError {
					result = prepared
				} else {
					result = checkLoaded(fileSet, path, fileIDs[path], opts)
				}

				// Сохраняем результат (мьютекс не нужен — индекс i уникален)
				results[i] = result

				progress.emit(Event{
					Kind:     EventFileDone,
					Path:     path,
					Index:    i,
					Total:    len(files),
					Errors:   countSeverity(result.Bag, diag.SevError),
					Warnings: countSeverity(result.Bag, diag.SevWarning),
					Skipped:  result.Skipped,
					Cached:   result.Cached,
				})
				return nil
			}
		}(i, path))
	}

	// Ждём завершения всех горутин
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}

	return fileSet, results, nil
}

// MergeResults collects all per-file bags into one sorted bag for reporting.
func MergeResults(results []CheckResult, maxDiagnostics int) *diag.Bag {
	total := diag.NewBag(maxDiagnostics)
	for i := range results {
		if results[i].Bag != nil {
			total.Merge(results[i].Bag)
		}
	}
	total.Sort()
	return total
}

func countSeverity(bag *diag.Bag, sev diag.Severity) int {
	if bag == nil {
		return 0
	}
	n := 0
	for _, d := range bag.Items() {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// baseDirFor picks the base directory used for relative path display.
func baseDirFor(paths []string) string {
	if len(paths) == 1 {
		if info, err := os.Stat(paths[0]); err == nil && info.IsDir() {
			return paths[0]
		}
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
