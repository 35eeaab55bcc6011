// Package mediatest provides in-process fakes for the media engine's
// Prober and Runner so the converter can be tested without ffmpeg.
package mediatest

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/backmassage/gifclip/internal/ffmpeg"
	"github.com/backmassage/gifclip/internal/probe"
)

// Video returns a probe result for a single-stream video of the given
// duration and size at 30 fps.
func Video(duration float64, width, height int) *probe.ProbeResult {
	return &probe.ProbeResult{
		Format: probe.FormatInfo{
			FormatName: "mov,mp4,m4a,3gp,3g2,mj2",
			Duration:   duration,
		},
		PrimaryVideo: &probe.VideoStream{
			Codec:        "h264",
			Width:        width,
			Height:       height,
			Duration:     duration,
			AvgFrameRate: "30/1",
		},
	}
}

// Prober returns Result (or Err) for every path and records the calls.
type Prober struct {
	Result *probe.ProbeResult
	Err    error
	Paths  []string
}

// Probe implements media.Prober.
func (p *Prober) Probe(_ context.Context, path string) (*probe.ProbeResult, error) {
	p.Paths = append(p.Paths, path)
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Result, nil
}

// Runner stands in for ffmpeg. On success it writes a real GIF to the
// output argument with one frame per 1/fps of the requested duration, at
// the scaled size when a scale filter is present (SourceWidth x
// SourceHeight otherwise).
type Runner struct {
	SourceWidth  int
	SourceHeight int

	Err    error  // Returned as the process error when set.
	Stderr string // Captured stderr returned with Err.
	Panic  any    // Panics with this value when set.

	Calls [][]string
}

// Run implements media.Runner.
func (r *Runner) Run(_ context.Context, args []string) ffmpeg.ExecResult {
	r.Calls = append(r.Calls, append([]string(nil), args...))
	if r.Panic != nil {
		panic(r.Panic)
	}
	if r.Err != nil {
		return ffmpeg.ExecResult{Stderr: r.Stderr, Err: r.Err}
	}
	if len(args) == 0 {
		return ffmpeg.ExecResult{Err: errors.New("no arguments")}
	}
	if err := r.writeGIF(args); err != nil {
		return ffmpeg.ExecResult{Stderr: err.Error() + "\n", Err: err}
	}
	return ffmpeg.ExecResult{}
}

// LastArgs returns the argument slice of the most recent call.
func (r *Runner) LastArgs() []string {
	if len(r.Calls) == 0 {
		return nil
	}
	return r.Calls[len(r.Calls)-1]
}

func (r *Runner) writeGIF(args []string) error {
	fps := 10
	duration := 1.0
	w, h := r.SourceWidth, r.SourceHeight
	for i, a := range args {
		switch {
		case a == "-t" && i+1 < len(args):
			duration, _ = strconv.ParseFloat(args[i+1], 64)
		case a == "-filter_complex" && i+1 < len(args):
			fps, w, h = parseGraph(args[i+1], fps, w, h)
		}
	}
	if w <= 0 || h <= 0 {
		w, h = 16, 16
	}

	frames := max(1, int(math.Round(duration*float64(fps))))
	delay := int(math.Round(100 / float64(fps)))
	palette := color.Palette{color.Black, color.White}
	anim := &gif.GIF{}
	for i := 0; i < frames; i++ {
		img := image.NewPaletted(image.Rect(0, 0, w, h), palette)
		img.SetColorIndex(i%w, 0, 1)
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, delay)
	}

	f, err := os.Create(args[len(args)-1])
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// parseGraph pulls fps=N and scale=W:H out of the filter graph.
func parseGraph(graph string, fps, w, h int) (int, int, int) {
	chain, _, _ := strings.Cut(graph, ";")
	chain = strings.TrimPrefix(chain, "[0:v]")
	for _, stage := range strings.Split(chain, ",") {
		if v, ok := strings.CutPrefix(stage, "fps="); ok {
			if n, err := strconv.Atoi(v); err == nil {
				fps = n
			}
		}
		if v, ok := strings.CutPrefix(stage, "scale="); ok {
			parts := strings.Split(v, ":")
			if len(parts) >= 2 {
				sw, err1 := strconv.Atoi(parts[0])
				sh, err2 := strconv.Atoi(parts[1])
				if err1 == nil && err2 == nil {
					w, h = sw, sh
				}
			}
		}
	}
	return fps, w, h
}
