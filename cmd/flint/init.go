package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"flint/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a flint.toml with the default style configuration",
	Long: `Initialize a flint configuration by writing a flint.toml manifest with the
built-in defaults. If [path] is omitted, the manifest is created in the
current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// runInit writes the default flint.toml into the target directory.
// It refuses to overwrite an existing manifest.
func runInit(cmd *cobra.Command, args []string) error {
	// Resolve target directory
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	// Ensure directory exists
	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, config.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("configuration already exists: %s", manifestPath)
	}

	if err := os.WriteFile(manifestPath, []byte(config.DefaultManifest()), os.FileMode(0o600)); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(os.Stdout, "Initialized flint configuration in %s\n", rel)
	fmt.Fprintf(os.Stdout, "  - %s\n", config.ManifestName)
	return nil
}
