package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"flint/internal/config"
	"flint/internal/diag"
	"flint/internal/diagfmt"
	"flint/internal/driver"
	"flint/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.elm|directory>...",
	Short: "Check Elm source files against the style rules",
	Long:  `Check runs every style rule over the given files or all *.elm files within the given directories`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	registerCheckFlags(checkCmd)
}

// registerCheckFlags registers the CLI flags used by runCheck: output
// format, rule thresholds, warning handling, concurrency, caching and the
// interactive progress UI.
func registerCheckFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "output format (pretty|json|sarif|short)")
	cmd.Flags().Int("max-line-length", 0, "maximum allowed line length (overrides flint.toml)")
	cmd.Flags().Int("indent-width", 0, "required indentation step (overrides flint.toml)")
	cmd.Flags().Bool("no-warnings", false, "report errors only, drop warnings")
	cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	cmd.Flags().Bool("cache", false, "enable persistent disk cache for per-file results")
	cmd.Flags().Bool("ui", false, "show interactive progress while checking")
	cmd.Flags().Bool("no-config", false, "ignore flint.toml, use built-in defaults")
}

// runCheck executes the "check" command: it resolves the effective
// configuration (flint.toml plus flag overrides), checks every requested
// path, formats the results in the chosen output format and returns the
// silent errStyleIssues sentinel when any error-severity diagnostics remain.
func runCheck(cmd *cobra.Command, args []string) error {
	// Получаем флаги
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if err := validateMaxDiagnostics(maxDiagnostics); err != nil {
		return err
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}

	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}

	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}

	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}

	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	enableCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}

	useUI, err := cmd.Flags().GetBool("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	opts := driver.CheckOptions{
		Config:           cfg,
		MaxDiagnostics:   maxDiagnostics,
		IgnoreWarnings:   noWarnings,
		WarningsAsErrors: warningsAsErrors,
		EnableTimings:    showTimings,
	}

	if enableCache {
		cache, err := driver.OpenDiskCache("flint")
		if err != nil {
			return fmt.Errorf("failed to open disk cache: %w", err)
		}
		opts.Cache = cache
	}

	fileSet, results, err := runPaths(cmd, args, opts, jobs, useUI)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	total := driver.MergeResults(results, maxDiagnostics)

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch format {
	case "pretty":
		prettyOpts := diagfmt.PrettyOpts{
			Color:      useColor,
			PathMode:   pathMode,
			ShowSource: true,
			ShowNotes:  withNotes,
		}
		diagfmt.Pretty(os.Stdout, total, fileSet, prettyOpts)
	case "short":
		output := diag.FormatShortDiagnostics(total.Items(), fileSet, withNotes)
		if output != "" {
			fmt.Fprintln(os.Stdout, output)
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		}
		if err := diagfmt.JSON(os.Stdout, total, fileSet, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	case "sarif":
		meta := diagfmt.SarifRunMeta{
			ToolName:    "flint",
			ToolVersion: version.Plain,
		}
		if err := diagfmt.Sarif(os.Stdout, total, fileSet, meta); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if showTimings {
		printTimings(os.Stderr, results)
	}
	if !quiet && format == "pretty" {
		printSummary(os.Stdout, results, total)
	}

	if total.HasErrors() {
		// Suppress cobra usage output on diagnostic errors
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return errStyleIssues
	}
	return nil
}

// resolveConfig loads flint.toml discovered upward from the first argument
// and applies explicit flag overrides on top.
func resolveConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Default()

	noConfig, err := cmd.Flags().GetBool("no-config")
	if err != nil {
		return cfg, fmt.Errorf("failed to get no-config flag: %w", err)
	}
	if !noConfig {
		manifest, found, err := config.LoadManifest(manifestStartDir(args))
		if err != nil {
			return cfg, err
		}
		if found {
			cfg = manifest.Config
		}
	}

	if cmd.Flags().Changed("max-line-length") {
		v, err := cmd.Flags().GetInt("max-line-length")
		if err != nil {
			return cfg, fmt.Errorf("failed to get max-line-length flag: %w", err)
		}
		cfg.MaxLineLength = v
	}
	if cmd.Flags().Changed("indent-width") {
		v, err := cmd.Flags().GetInt("indent-width")
		if err != nil {
			return cfg, fmt.Errorf("failed to get indent-width flag: %w", err)
		}
		cfg.IndentWidth = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validateMaxDiagnostics rejects limits the diagnostics bag cannot hold.
func validateMaxDiagnostics(n int) error {
	if n < 1 {
		return fmt.Errorf("max-diagnostics must be at least 1, got %d", n)
	}
	if n > math.MaxUint16 {
		return fmt.Errorf("max-diagnostics must not exceed %d, got %d", math.MaxUint16, n)
	}
	return nil
}

// manifestStartDir picks the directory the flint.toml search starts from.
func manifestStartDir(args []string) string {
	if len(args) == 0 {
		return "."
	}
	first := args[0]
	if info, err := os.Stat(first); err == nil && info.IsDir() {
		return first
	}
	return filepath.Dir(first)
}

func printTimings(w *os.File, results []driver.CheckResult) {
	for _, r := range results {
		if r.Timing == nil {
			continue
		}
		fmt.Fprintf(w, "%s: %.2f ms\n", r.Path, r.Timing.TotalMS)
		for _, p := range r.Timing.Phases {
			fmt.Fprintf(w, "  %-12s %7.2f ms\n", p.Name, p.DurationMS)
		}
	}
}

func printSummary(w *os.File, results []driver.CheckResult, total *diag.Bag) {
	errorCount := 0
	warningCount := 0
	for _, d := range total.Items() {
		switch d.Severity {
		case diag.SevError:
			errorCount++
		case diag.SevWarning:
			warningCount++
		}
	}
	if errorCount == 0 && warningCount == 0 {
		fmt.Fprintf(w, "checked %d file(s), no issues found\n", len(results))
		return
	}
	fmt.Fprintf(w, "checked %d file(s): %d error(s), %d warning(s)\n",
		len(results), errorCount, warningCount)
}
