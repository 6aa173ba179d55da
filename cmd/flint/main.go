package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"flint/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "flint",
	Short: "Flint style checker for Elm source files",
	Long:  `Flint checks Elm source files against a set of layout and style rules`,
}

// errStyleIssues сигнализирует, что диагностики уже напечатаны и нужен
// код выхода 1. Любая другая ошибка означает сбой вызова (код 2).
var errStyleIssues = errors.New("style issues found")

// main initializes the CLI by setting the command version, registering
// subcommands and persistent flags, and then executes the root command.
// Exit codes: 0 clean, 1 style errors found, 2 invocation or I/O failure.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Добавляем команды
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errStyleIssues) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
