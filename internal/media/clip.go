package media

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/backmassage/gifclip/internal/ffmpeg"
)

// Clip is a time-sliced and optionally resized view over a Session. It owns
// no engine resources; its lifetime ends with Close or with its session.
type Clip struct {
	session  *Session
	start    float64
	stop     float64
	width    int
	height   int
	released bool
}

// EncodeOptions controls GIF output.
type EncodeOptions struct {
	FPS  int
	Loop int // 0 = forever, -1 = once.
}

// Start returns the clip start in seconds.
func (c *Clip) Start() float64 { return c.start }

// Stop returns the clip end in seconds.
func (c *Clip) Stop() float64 { return c.stop }

// Duration returns Stop - Start.
func (c *Clip) Duration() float64 { return c.stop - c.start }

// Size returns the output width and height of the clip.
func (c *Clip) Size() (width, height int) { return c.width, c.height }

// Scaled reports whether the clip size differs from the source.
func (c *Clip) Scaled() bool {
	return c.width != c.session.width || c.height != c.session.height
}

// Scale returns a view resized by factor in both dimensions. A factor of
// exactly 1 returns c itself.
func (c *Clip) Scale(factor float64) (*Clip, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
		return nil, fmt.Errorf("%w: scale must be greater than 0 (got %g)", ErrInvalidArgument, factor)
	}
	if factor == 1 {
		return c, nil
	}
	scaled := &Clip{
		session: c.session,
		start:   c.start,
		stop:    c.stop,
		width:   scaleDim(c.width, factor),
		height:  scaleDim(c.height, factor),
	}
	c.session.clips = append(c.session.clips, scaled)
	return scaled, nil
}

func scaleDim(n int, factor float64) int {
	return max(1, int(math.Round(float64(n)*factor)))
}

// Command returns the ffmpeg argument slice Encode would run for dest,
// without running it.
func (c *Clip) Command(dest string, opts EncodeOptions) ([]string, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("%w: fps must be greater than 0 (got %d)", ErrInvalidArgument, opts.FPS)
	}
	if ffmpeg.RoundSeconds(c.Duration()) <= 0 {
		return nil, fmt.Errorf("%w: [%g, %g] is shorter than ffmpeg's one microsecond resolution", ErrInvalidRange, c.start, c.stop)
	}
	return ffmpeg.BuildGIF(c.job(dest, opts)), nil
}

// Encode writes the clip to dest as a GIF. ffmpeg writes to a temporary
// file next to dest which is renamed into place only on success, so a
// failed run never leaves a truncated dest behind.
func (c *Clip) Encode(ctx context.Context, dest string, opts EncodeOptions) error {
	if _, err := c.Command(dest, opts); err != nil {
		return err
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: cannot create output directory %q: %v", ErrEncodingFailure, dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".gifclip-*.gif")
	if err != nil {
		return fmt.Errorf("%w: cannot write to %q: %v", ErrEncodingFailure, dir, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	res := c.session.engine.Runner.Run(ctx, ffmpeg.BuildGIF(c.job(tmpPath, opts)))
	if res.Err != nil {
		msg := ffmpeg.LastLine(res.Stderr)
		if msg == "" {
			msg = res.Err.Error()
		}
		return fmt.Errorf("%w: %s: %s", ErrEncodingFailure, ffmpeg.Classify(ctx, res), msg)
	}

	fi, err := os.Stat(tmpPath)
	if err != nil || fi.Size() == 0 {
		return fmt.Errorf("%w: ffmpeg produced no output", ErrEncodingFailure)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodingFailure, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("%w: cannot move output into place: %v", ErrEncodingFailure, err)
	}
	committed = true
	return nil
}

// Close releases the view. Safe to call more than once and after the
// session has been closed.
func (c *Clip) Close() error {
	if c == nil || c.released {
		return nil
	}
	c.released = true
	c.session.forget(c)
	return nil
}

func (c *Clip) usable() error {
	if c == nil {
		return fmt.Errorf("%w: nil clip", ErrInvalidArgument)
	}
	if c.released || c.session.Closed() {
		return ErrSessionClosed
	}
	return nil
}

func (c *Clip) job(output string, opts EncodeOptions) ffmpeg.GIFJob {
	e := c.session.engine
	job := ffmpeg.GIFJob{
		Binary:    e.FFmpegBinary,
		Input:     c.session.path,
		Output:    output,
		Start:     c.start,
		Duration:  c.Duration(),
		FPS:       opts.FPS,
		Loop:      opts.Loop,
		Verbose:   e.Verbose,
		ShowStats: e.ShowStats,
	}
	if c.Scaled() {
		job.Width, job.Height = c.width, c.height
	}
	return job
}
