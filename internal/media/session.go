package media

import (
	"fmt"
	"math"
	"os"

	"github.com/backmassage/gifclip/internal/probe"
)

// Session is an open source video. It owns the source file descriptor and
// every Clip derived from it. Not safe for concurrent use.
type Session struct {
	engine   *Engine
	path     string
	file     *os.File
	info     *probe.ProbeResult
	duration float64
	width    int
	height   int
	clips    []*Clip
	closed   bool
}

// Path returns the source path the session was opened with.
func (s *Session) Path() string { return s.path }

// Duration returns the source length in seconds.
func (s *Session) Duration() float64 { return s.duration }

// Size returns the display width and height of the source.
func (s *Session) Size() (width, height int) { return s.width, s.height }

// Info returns the probe result the session was opened with.
func (s *Session) Info() *probe.ProbeResult { return s.info }

// Closed reports whether Close has been called.
func (s *Session) Closed() bool { return s == nil || s.closed }

// Trim returns a view of [start, stop] seconds at the source resolution.
// Nothing is decoded here.
func (s *Session) Trim(start, stop float64) (*Clip, error) {
	if s.Closed() {
		return nil, ErrSessionClosed
	}
	if math.IsNaN(start) || math.IsNaN(stop) || start < 0 || stop <= start || stop > s.duration {
		return nil, fmt.Errorf("%w: [%.2f, %.2f] is outside 0..%.2f", ErrInvalidRange, start, stop, s.duration)
	}
	c := &Clip{
		session: s,
		start:   start,
		stop:    stop,
		width:   s.width,
		height:  s.height,
	}
	s.clips = append(s.clips, c)
	return c, nil
}

// Close releases every open clip and then the source descriptor. It is
// safe on a nil session and after a previous Close.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	for i := len(s.clips) - 1; i >= 0; i-- {
		s.clips[i].released = true
	}
	s.clips = nil

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// openClips reports how many derived clips have not been released.
func (s *Session) openClips() int { return len(s.clips) }

func (s *Session) forget(c *Clip) {
	for i, other := range s.clips {
		if other == c {
			s.clips = append(s.clips[:i], s.clips[i+1:]...)
			return
		}
	}
}
