package convert

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/backmassage/gifclip/internal/config"
)

// Request is one conversion job. It is built once from resolved inputs and
// passed by value; nothing downstream modifies it.
type Request struct {
	Source string
	Dest   string

	Start float64
	Stop  *float64 // Nil means "end of video".

	FPS   int
	Scale float64
	Loop  int

	DryRun  bool
	Verbose bool // Debug lines for each step.
}

// FromConfig builds a Request from a loaded, validated Config.
func FromConfig(cfg *config.Config) Request {
	req := Request{
		Source:  cfg.Input,
		Dest:    cfg.Output,
		Start:   cfg.Start,
		FPS:     cfg.FPS,
		Scale:   cfg.Scale,
		Loop:    cfg.Loop,
		DryRun:  cfg.DryRun,
		Verbose: cfg.Verbose,
	}
	if cfg.Stop != nil {
		stop := *cfg.Stop
		req.Stop = &stop
	}
	return req
}

// validate checks everything that can be checked without opening the
// source. Range checks need the duration and run later.
func (r Request) validate() error {
	if r.Source == "" {
		return fmt.Errorf("%w: source video path is empty", ErrMissingArgument)
	}
	if r.Dest == "" {
		return fmt.Errorf("%w: output GIF path is empty", ErrMissingArgument)
	}
	if r.FPS <= 0 {
		return fmt.Errorf("%w: fps must be greater than 0 (got %d)", ErrInvalidArgument, r.FPS)
	}
	if math.IsNaN(r.Scale) || math.IsInf(r.Scale, 0) || r.Scale <= 0 {
		return fmt.Errorf("%w: scale must be greater than 0 (got %g)", ErrInvalidArgument, r.Scale)
	}
	if r.Loop < -1 {
		return fmt.Errorf("%w: loop must be -1 or greater (got %d)", ErrInvalidArgument, r.Loop)
	}
	if samePath(r.Source, r.Dest) {
		return fmt.Errorf("%w: output %q would overwrite the source video", ErrInvalidArgument, r.Dest)
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
