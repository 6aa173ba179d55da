package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"flint/internal/driver"
	"flint/internal/source"
	"flint/internal/ui"
)

type checkOutcome struct {
	fileSet *source.FileSet
	results []driver.CheckResult
	err     error
}

// runPaths checks all requested paths, optionally rendering a live progress
// view while the workers run.
func runPaths(cmd *cobra.Command, args []string, opts driver.CheckOptions, jobs int, useUI bool) (*source.FileSet, []driver.CheckResult, error) {
	if !useUI || !isTerminal(os.Stdout) {
		return driver.CheckPaths(cmd.Context(), args, opts, jobs, nil)
	}

	files, err := driver.ExpandPaths(args)
	if err != nil {
		return nil, nil, err
	}

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		progress := driver.ProgressFunc(func(ev driver.Event) {
			events <- ev
		})
		fileSet, results, err := driver.CheckPaths(cmd.Context(), args, opts, jobs, progress)
		outcomeCh <- checkOutcome{fileSet: fileSet, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("flint check", files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}
