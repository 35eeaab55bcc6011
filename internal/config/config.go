// Package config holds runtime configuration: defaults, CLI flag parsing,
// environment/config-file layering, and validation.
package config

import (
	"errors"
	"fmt"
	"math"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// ErrMissingArgument is returned when the source or destination path is
// still empty after positional and flagged values have been merged.
var ErrMissingArgument = errors.New("missing argument")

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then overlaid by [Load] before being handed to the converter.
type Config struct {
	// Paths (positional args win over -i/-o).
	Input  string
	Output string

	// Clip selection.
	Start float64  // Default: 0.
	Stop  *float64 // Nil means "end of video".

	// GIF output.
	FPS   int     // Default: 10.
	Scale float64 // Default: 1.0.
	Loop  int     // Default: 0 (forever). -1 plays once.

	// Behavior flags.
	DryRun    bool
	CheckOnly bool // Run --check diagnostics and exit.

	// Display and logging.
	Verbose    bool
	ColorMode  ColorMode // Default: "auto".
	LogFile    string    // Optional log file path.
	ConfigFile string    // Optional viper config file.
}

// DefaultConfig returns a Config with the documented defaults. Used as the
// base before [Load] applies config file, environment and flag overrides.
func DefaultConfig() Config {
	return Config{
		Start:     0,
		FPS:       10,
		Scale:     1.0,
		Loop:      0,
		ColorMode: ColorAuto,
	}
}

// Validate checks enum fields and numeric bounds. When not in CheckOnly
// mode it also requires both paths; a missing path wraps ErrMissingArgument.
// Range checks against the video duration happen later, once the source is
// open.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.FPS <= 0 {
		return fmt.Errorf("fps must be a positive whole number (got %d)", c.FPS)
	}
	if !finite(c.Scale) || c.Scale <= 0 {
		return fmt.Errorf("scale must be greater than 0 (got %g)", c.Scale)
	}
	if c.Loop < -1 {
		return fmt.Errorf("loop must be -1 (play once), 0 (forever) or a positive count (got %d)", c.Loop)
	}
	if !finite(c.Start) {
		return fmt.Errorf("start must be a number of seconds (got %g)", c.Start)
	}
	if c.Stop != nil && !finite(*c.Stop) {
		return fmt.Errorf("stop must be a number of seconds (got %g)", *c.Stop)
	}

	if c.CheckOnly {
		return nil
	}
	_, _, err := ResolvePaths("", "", c.Input, c.Output)
	return err
}

// ResolvePaths merges positional and flagged source/destination values.
// A non-empty positional value wins over the flag value.
func ResolvePaths(posSource, posDest, flagSource, flagDest string) (source, dest string, err error) {
	source = firstNonEmpty(posSource, flagSource)
	dest = firstNonEmpty(posDest, flagDest)
	if source == "" {
		return "", "", fmt.Errorf("%w: need a video path (positional or -i/--input)", ErrMissingArgument)
	}
	if dest == "" {
		return "", "", fmt.Errorf("%w: need an output GIF path (positional or -o/--output)", ErrMissingArgument)
	}
	return source, dest, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
