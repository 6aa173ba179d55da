package driver

import (
	"errors"

	"flint/internal/block"
	"flint/internal/config"
	"flint/internal/diag"
	"flint/internal/observ"
	"flint/internal/rules"
	"flint/internal/scan"
	"flint/internal/source"
)

// CheckOptions configures one run of the pipeline.
type CheckOptions struct {
	Config           config.Config
	MaxDiagnostics   int
	IgnoreWarnings   bool
	WarningsAsErrors bool
	EnableTimings    bool
	// Cache is the optional persistent result cache; nil disables caching.
	Cache *DiskCache
}

// CheckResult is the outcome for one file.
type CheckResult struct {
	Path   string
	FileID source.FileID
	Bag    *diag.Bag
	// Skipped is set when the file could not be decoded or read; the bag
	// then carries the skipped-file notice instead of style findings.
	Skipped bool
	// Cached is set when the diagnostics were replayed from the disk cache.
	Cached bool
	Timing *observ.Report
}

// CheckFile loads a single file and runs the full pipeline on it.
// Per-file failures never return an error: they are reported through the
// result's bag so that one bad file cannot abort a run.
func CheckFile(fileSet *source.FileSet, path string, opts CheckOptions) CheckResult {
	fileID, err := fileSet.Load(path)
	if err != nil {
		return loadFailure(fileSet, path, err, opts)
	}
	return checkLoaded(fileSet, path, fileID, opts)
}

// loadFailure turns a read or decode error into a diagnostic on a
// placeholder file, so that formatters can still resolve the span.
func loadFailure(fileSet *source.FileSet, path string, err error, opts CheckOptions) CheckResult {
	fileID := fileSet.AddVirtual(path, nil)
	span := source.Span{File: fileID}
	bag := diag.NewBag(opts.MaxDiagnostics)
	var encErr *source.EncodingError
	if errors.As(err, &encErr) {
		bag.Add(diag.NewError(diag.IOEncodingError, span,
			"file skipped: "+encErr.Error()))
	} else {
		bag.Add(diag.NewError(diag.IOLoadFileError, span,
			"failed to load file: "+err.Error()))
	}
	return CheckResult{Path: path, FileID: fileID, Bag: bag, Skipped: true}
}

// checkLoaded runs scan → structure → rules over an already loaded file.
func checkLoaded(fileSet *source.FileSet, path string, fileID source.FileID, opts CheckOptions) CheckResult {
	file := fileSet.Get(fileID)

	if opts.Cache != nil {
		if bag, ok := opts.Cache.Lookup(file, opts.Config, opts.MaxDiagnostics); ok {
			finishBag(bag, opts)
			return CheckResult{Path: path, FileID: fileID, Bag: bag, Cached: true}
		}
	}

	timer := observ.NewTimer()
	bag := diag.NewBag(opts.MaxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}

	phase := timer.Begin("scan")
	sc := scan.New(file)
	lines := sc.All()
	hasFinalNewline := sc.HasFinalNewline()
	timer.End(phase, "")

	phase = timer.Begin("structure")
	forest := block.Parse(lines, file.ID, reporter)
	timer.End(phase, "")

	phase = timer.Begin("rules")
	rules.Evaluate(file, lines, forest, hasFinalNewline, opts.Config, reporter)
	timer.End(phase, "")

	if opts.Cache != nil {
		opts.Cache.Store(file, opts.Config, bag)
	}
	finishBag(bag, opts)

	result := CheckResult{Path: path, FileID: fileID, Bag: bag}
	if opts.EnableTimings {
		report := timer.Report()
		result.Timing = &report
	}
	return result
}

// finishBag applies the warning policy and fixes the deterministic order.
func finishBag(bag *diag.Bag, opts CheckOptions) {
	if opts.IgnoreWarnings {
		bag.DropWarnings()
	}
	if opts.WarningsAsErrors {
		bag.PromoteWarnings()
	}
	bag.Sort()
}
