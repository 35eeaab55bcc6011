// Package media is the video engine boundary: it opens a source as a
// Session, derives Clip views (trim, scale) over it, and encodes a Clip to a
// GIF. Probing and encoding are delegated to ffprobe/ffmpeg through the
// Prober and Runner interfaces so tests can swap in fakes.
package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/backmassage/gifclip/internal/ffmpeg"
	"github.com/backmassage/gifclip/internal/probe"
)

// Prober inspects a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (*probe.ProbeResult, error)
}

// Runner executes a built ffmpeg argument slice.
type Runner interface {
	Run(ctx context.Context, args []string) ffmpeg.ExecResult
}

// Engine opens sessions. Prober and Runner must be set; [NewEngine] wires
// the real ffprobe/ffmpeg binaries.
type Engine struct {
	Prober       Prober
	Runner       Runner
	FFmpegBinary string // Default: "ffmpeg" from PATH.
	Verbose      bool   // ffmpeg -loglevel info.
	ShowStats    bool   // ffmpeg -stats progress lines.
}

// NewEngine returns an Engine backed by ffprobe and ffmpeg from PATH. In
// verbose mode ffmpeg's stderr is tee'd to the terminal.
func NewEngine(verbose bool) *Engine {
	return &Engine{
		Prober:    probe.Command{},
		Runner:    ffmpeg.Executor{Tee: verbose},
		Verbose:   verbose,
		ShowStats: verbose,
	}
}

// CheckSource returns nil when path exists and is not a directory. Failures
// wrap ErrFileNotFound or ErrInvalidArgument.
func CheckSource(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: input video file not found at %q", ErrFileNotFound, path)
		}
		return fmt.Errorf("%w: cannot access %q: %v", ErrInvalidArgument, path, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("%w: %q is a directory, not a video file", ErrInvalidArgument, path)
	}
	return nil
}

// Open checks that path exists, holds it open for the lifetime of the
// session, and probes it. Existence is checked before anything is opened,
// so a missing file never acquires a resource.
func (e *Engine) Open(ctx context.Context, path string) (*Session, error) {
	if err := CheckSource(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %v", ErrEncodingFailure, path, err)
	}

	info, err := e.Prober.Probe(ctx, path)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: cannot read video: %v", ErrEncodingFailure, err)
	}
	if info.PrimaryVideo == nil {
		f.Close()
		return nil, fmt.Errorf("%w: %q has no video stream", ErrEncodingFailure, path)
	}
	duration := info.Duration()
	if duration <= 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %q reports no duration", ErrEncodingFailure, path)
	}

	w, h := info.DisplaySize()
	return &Session{
		engine:   e,
		path:     path,
		file:     f,
		info:     info,
		duration: duration,
		width:    w,
		height:   h,
	}, nil
}
