// Package check provides system diagnostics (--check mode) and pre-run
// dependency validation (CheckDeps) for ffmpeg, ffprobe, the GIF encoder,
// and the palette filters the encoder relies on.
package check

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/backmassage/gifclip/internal/ffmpeg"
)

// Sentinel errors returned by CheckDeps when a required tool or capability
// is missing.
var (
	ErrFfmpegNotFound    = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound   = errors.New("ffprobe not found on PATH")
	ErrNoGIFEncoder      = errors.New("ffmpeg was built without the gif encoder")
	ErrNoPaletteFilters  = errors.New("ffmpeg is missing the palettegen/paletteuse filters")
	ErrTestEncodeFailed  = errors.New("GIF test encode failed")
	errCapabilityListing = errors.New("could not list ffmpeg capabilities")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// Process hooks, replaced in tests.
var (
	lookPath = exec.LookPath
	output   = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, name, args...).Output()
	}
	execute = ffmpeg.Execute
)

// RunCheck runs the interactive --check flow: prints the ffmpeg and ffprobe
// versions, the GIF encoder and palette filter availability, and the result
// of a one-second test encode. Every step runs even if an earlier one
// fails; the return value is false if any of them did.
func RunCheck(ctx context.Context, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkVersion(ctx, log, "ffmpeg")
	ok = checkVersion(ctx, log, "ffprobe") && ok
	if !ok {
		return false
	}

	if err := checkCapabilities(ctx); err != nil {
		log.Error("%v", err)
		ok = false
	} else {
		log.Success("gif encoder, palettegen and paletteuse available")
	}

	log.Info("Testing GIF encode...")
	if err := testEncode(ctx); err != nil {
		log.Error("%v", err)
		ok = false
	} else {
		log.Success("GIF encode works")
	}
	return ok
}

// checkVersion verifies name is on PATH and logs its version string.
func checkVersion(ctx context.Context, log Logger, name string) bool {
	if _, err := lookPath(name); err != nil {
		log.Error("%s not found", name)
		return false
	}
	out, err := output(ctx, name, "-version")
	if err != nil {
		log.Warn("%s found but -version failed: %v", name, err)
		return false
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("%s: %s", name, firstLine)
	return true
}

// CheckDeps is the pre-run validation: ffmpeg and ffprobe must be on PATH
// and ffmpeg must provide the gif encoder and both palette filters.
// Returns a sentinel error on failure.
func CheckDeps(ctx context.Context) error {
	if _, err := lookPath("ffmpeg"); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := lookPath("ffprobe"); err != nil {
		return ErrFfprobeNotFound
	}
	return checkCapabilities(ctx)
}

// --- internal helpers ---

func checkCapabilities(ctx context.Context) error {
	encoders, err := output(ctx, "ffmpeg", "-hide_banner", "-encoders")
	if err != nil {
		return errors.Join(errCapabilityListing, err)
	}
	if !hasEntry(string(encoders), "gif") {
		return ErrNoGIFEncoder
	}
	filters, err := output(ctx, "ffmpeg", "-hide_banner", "-filters")
	if err != nil {
		return errors.Join(errCapabilityListing, err)
	}
	if !hasEntry(string(filters), "palettegen") || !hasEntry(string(filters), "paletteuse") {
		return ErrNoPaletteFilters
	}
	return nil
}

// hasEntry reports whether an `ffmpeg -encoders` or `-filters` listing
// contains name. Both listings put a flags column first and the name second.
func hasEntry(listing, name string) bool {
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}

// testEncode renders one second of ffmpeg's test pattern through the same
// command builder the converter uses and discards the result.
func testEncode(ctx context.Context) error {
	args := ffmpeg.BuildGIF(ffmpeg.GIFJob{
		InputFormat: "lavfi",
		Input:       "testsrc=size=64x48:rate=10",
		Output:      os.DevNull,
		Duration:    1,
		FPS:         10,
		Width:       32,
		Height:      24,
	})
	res := execute(ctx, args, false)
	if res.Err != nil {
		msg := ffmpeg.LastLine(res.Stderr)
		if msg == "" {
			msg = res.Err.Error()
		}
		return errors.Join(ErrTestEncodeFailed, errors.New(msg))
	}
	return nil
}
