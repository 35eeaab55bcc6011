package ffmpeg

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"regexp"
	"strings"
)

// FailureKind classifies why an ffmpeg invocation failed.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureNotInstalled
	FailureInvalidInput
	FailureMissingDecoder
	FailureOutputDenied
	FailureDiskFull
	FailureInterrupted
)

// String returns the short label used in error messages.
func (k FailureKind) String() string {
	switch k {
	case FailureNotInstalled:
		return "ffmpeg not installed"
	case FailureInvalidInput:
		return "invalid or unsupported input"
	case FailureMissingDecoder:
		return "no decoder for input codec"
	case FailureOutputDenied:
		return "output not writable"
	case FailureDiskFull:
		return "no space left on device"
	case FailureInterrupted:
		return "interrupted"
	default:
		return "encoding failed"
	}
}

// Pre-compiled regexes for classifying ffmpeg stderr output. Checked in
// order by [Classify]; the first match wins.
var (
	reInvalidInput = regexp.MustCompile(
		`(?i)Invalid data found when processing input|moov atom not found|` +
			`could not find codec parameters|End of file|` +
			`does not contain any stream`)

	reMissingDecoder = regexp.MustCompile(
		`(?i)Decoder \(codec [^)]*\) not found|Unknown decoder|` +
			`Decoding requested, but no decoder found`)

	reOutputDenied = regexp.MustCompile(
		`(?i)Permission denied|Read-only file system|Is a directory`)

	reDiskFull = regexp.MustCompile(`(?i)No space left on device`)
)

// MatchInvalidInput reports whether stderr shows a demux/probe failure.
func MatchInvalidInput(stderr string) bool {
	return reInvalidInput.MatchString(stderr)
}

// MatchMissingDecoder reports whether stderr shows a missing decoder.
func MatchMissingDecoder(stderr string) bool {
	return reMissingDecoder.MatchString(stderr)
}

// MatchOutputDenied reports whether stderr shows the output could not be opened.
func MatchOutputDenied(stderr string) bool {
	return reOutputDenied.MatchString(stderr)
}

// MatchDiskFull reports whether stderr shows ENOSPC.
func MatchDiskFull(stderr string) bool {
	return reDiskFull.MatchString(stderr)
}

// Classify maps a failed ExecResult to a FailureKind. Process-level causes
// (missing binary, cancelled context) take precedence over stderr patterns.
func Classify(ctx context.Context, res ExecResult) FailureKind {
	if errors.Is(res.Err, exec.ErrNotFound) || errors.Is(res.Err, fs.ErrNotExist) {
		return FailureNotInstalled
	}
	if ctx != nil && ctx.Err() != nil {
		return FailureInterrupted
	}
	switch {
	case MatchDiskFull(res.Stderr):
		return FailureDiskFull
	case MatchOutputDenied(res.Stderr):
		return FailureOutputDenied
	case MatchMissingDecoder(res.Stderr):
		return FailureMissingDecoder
	case MatchInvalidInput(res.Stderr):
		return FailureInvalidInput
	}
	return FailureUnknown
}

// LastLine returns the last non-empty stderr line, which is where ffmpeg
// puts the fatal error. Progress lines use '\r' and are skipped.
func LastLine(stderr string) string {
	lines := strings.FieldsFunc(stderr, func(r rune) bool { return r == '\n' || r == '\r' })
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
