// Package convert is the top-level orchestrator: it validates a Request,
// opens the source, validates the range, trims, optionally scales, encodes,
// and releases everything it acquired on every exit path.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/backmassage/gifclip/internal/display"
	"github.com/backmassage/gifclip/internal/ffmpeg"
	"github.com/backmassage/gifclip/internal/media"
)

// Opener opens a source video. *media.Engine is the production Opener.
type Opener interface {
	Open(ctx context.Context, path string) (*media.Session, error)
}

// Logger is the minimal logging interface needed by the converter.
// Defined here (rather than importing the logging package) so that convert
// stays testable with a recording logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// Outcome is the typed result of [Run].
type Outcome struct {
	State State   // StateDone or StateFailed.
	Trace []State // Every state entered, in order.
	Err   error   // Nil only when State is StateDone.

	Range       [2]float64 // Resolved start and stop.
	Width       int        // Output size.
	Height      int
	OutputBytes int64
	Command     []string // ffmpeg argv; set for dry runs.
}

// OK reports whether the run reached StateDone.
func (o *Outcome) OK() bool { return o.State == StateDone }

func (o *Outcome) enter(s State) {
	o.State = s
	o.Trace = append(o.Trace, s)
}

// Run converts one request and reports how far it got. It never panics:
// a panic from the engine is recovered and reported as ErrEncodingFailure.
// Every path ends with StateReleasing followed by StateDone or StateFailed.
func Run(ctx context.Context, req Request, opener Opener, log Logger) (out Outcome) {
	var rel releaser
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("%w: unexpected engine failure: %v", ErrEncodingFailure, r)
		}
		out.enter(StateReleasing)
		if err := rel.release(log, req.Verbose); err != nil {
			log.Warn("%v", err)
		}
		if out.Err != nil {
			out.enter(StateFailed)
			return
		}
		out.enter(StateDone)
	}()

	out.enter(StateStart)
	out.Err = out.convert(ctx, req, opener, log, &rel)
	return out
}

func (o *Outcome) convert(ctx context.Context, req Request, opener Opener, log Logger, rel *releaser) error {
	o.enter(StateValidatingInput)
	if err := req.validate(); err != nil {
		return err
	}
	if opener == nil {
		return fmt.Errorf("%w: no media engine", ErrInvalidArgument)
	}

	// --- Open ---
	o.enter(StateOpeningSource)
	log.Info("Loading video: %s", req.Source)
	session, err := opener.Open(ctx, req.Source)
	if err != nil {
		return err
	}
	rel.push("video session", session)
	if info := session.Info(); info != nil {
		log.Debug(req.Verbose, "Opened %s: %.2fs, %s @ %.4g fps", session.Path(), session.Duration(), info.Resolution(), info.FrameRate())
		if n := len(info.AudioStreams); n > 0 {
			log.Debug(req.Verbose, "Dropping %d audio stream(s); GIF has no audio", n)
		}
	}

	// --- Range ---
	o.enter(StateValidatingRange)
	start, stop, err := ValidateRange(session.Duration(), req.Start, req.Stop)
	if err != nil {
		return err
	}
	o.Range = [2]float64{start, stop}

	// --- Trim ---
	o.enter(StateTrimming)
	clip, err := session.Trim(start, stop)
	if err != nil {
		return err
	}
	rel.push("trimmed clip", clip)
	log.Info("Trimming %s", display.FormatRange(clip.Start(), clip.Stop()))

	// --- Scale ---
	if req.Scale != 1 {
		o.enter(StateScaling)
		scaled, err := clip.Scale(req.Scale)
		if err != nil {
			return err
		}
		rel.push("scaled clip", scaled)
		clip = scaled
		sw, sh := clip.Size()
		log.Debug(req.Verbose, "Scaled by %g to %s", req.Scale, display.FormatResolution(sw, sh))
	}
	o.Width, o.Height = clip.Size()

	// --- Encode ---
	o.enter(StateEncoding)
	opts := media.EncodeOptions{FPS: req.FPS, Loop: req.Loop}
	if req.DryRun {
		args, err := clip.Command(req.Dest, opts)
		if err != nil {
			return err
		}
		o.Command = args
		log.Info("[DRY] %s", ffmpeg.CommandLine(args))
		return nil
	}
	log.Info("Encoding GIF at %d fps: %s", req.FPS, req.Dest)
	if err := clip.Encode(ctx, req.Dest, opts); err != nil {
		return err
	}
	if fi, err := os.Stat(req.Dest); err == nil {
		o.OutputBytes = fi.Size()
	}
	return nil
}

// Convert runs one request and reports the result through log. It returns
// true only when the GIF was written (or, for a dry run, planned).
func Convert(ctx context.Context, req Request, opener Opener, log Logger) bool {
	out := Run(ctx, req, opener, log)
	log.Debug(req.Verbose, "States: %v", out.Trace)

	if !out.OK() {
		log.Error("%v", out.Err)
		return false
	}

	summary := fmt.Sprintf("%s, %s @ %d fps",
		display.FormatRange(out.Range[0], out.Range[1]),
		display.FormatResolution(out.Width, out.Height),
		req.FPS)
	if req.DryRun {
		log.Success("[DRY] Would write %s (%s)", filepath.Base(req.Dest), summary)
		return true
	}
	log.Success("Wrote %s: %s (%s)", req.Dest, display.FormatSize(out.OutputBytes), summary)
	return true
}
