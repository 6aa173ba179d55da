package config

import (
	"crypto/sha256"
	"fmt"
)

// Config holds the process-wide rule settings. It is loaded once before any
// worker starts and is read-only for the remainder of the run.
type Config struct {
	// MaxLineLength is the maximum allowed line length in characters.
	MaxLineLength int
	// IndentWidth is the required indentation step in spaces.
	// The guide itself switched between 2 and 4 across revisions, so this
	// is a setting rather than a constant.
	IndentWidth int
	// RequireFinalNewline enables the missing-final-newline rule.
	RequireFinalNewline bool
	// RequireDefaultCase enables the case-without-default rule.
	RequireDefaultCase bool
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		MaxLineLength:       80,
		IndentWidth:         4,
		RequireFinalNewline: true,
		RequireDefaultCase:  true,
	}
}

// InvalidConfigError is fatal at startup: no files are processed and the
// process exits with the usage exit code.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// Validate checks the configuration for nonsense values.
func (c Config) Validate() error {
	if c.MaxLineLength <= 0 {
		return &InvalidConfigError{Reason: fmt.Sprintf("max line length must be positive, got %d", c.MaxLineLength)}
	}
	if c.IndentWidth <= 0 {
		return &InvalidConfigError{Reason: fmt.Sprintf("indent width must be positive, got %d", c.IndentWidth)}
	}
	if c.IndentWidth > 8 {
		return &InvalidConfigError{Reason: fmt.Sprintf("indent width %d is not a plausible style, maximum is 8", c.IndentWidth)}
	}
	return nil
}

// Hash returns a digest of the configuration, used to key cached results.
func (c Config) Hash() [32]byte {
	canon := fmt.Sprintf("v1|max=%d|indent=%d|newline=%t|default=%t",
		c.MaxLineLength, c.IndentWidth, c.RequireFinalNewline, c.RequireDefaultCase)
	return sha256.Sum256([]byte(canon))
}
