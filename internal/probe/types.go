package probe

import (
	"math"
	"strconv"
	"strings"
)

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename       string
	NbStreams      int
	FormatName     string
	FormatLongName string
	Duration       float64
	Size           int64
	BitRate        int64
	Tags           map[string]string
}

// VideoStream holds the parsed properties of a single video stream.
type VideoStream struct {
	Index         int
	Codec         string
	PixFmt        string
	Width         int
	Height        int
	Duration      float64
	AvgFrameRate  string
	Rotation      int // Degrees from the display matrix or the legacy rotate tag.
	IsAttachedPic bool
}

// AudioStream holds the parsed properties of a single audio stream. GIF
// output never carries audio; these are reported for information only.
type AudioStream struct {
	Index    int
	Codec    string
	Channels int
}

// ProbeResult is the fully parsed output of a single ffprobe JSON call.
// PrimaryVideo is the first non-attached-pic video stream (nil if none).
type ProbeResult struct {
	Format       FormatInfo
	PrimaryVideo *VideoStream
	AudioStreams []AudioStream
}

// Duration returns the playable length in seconds: the container duration,
// falling back to the primary video stream's duration when the container
// does not report one.
func (p *ProbeResult) Duration() float64 {
	if p.Format.Duration > 0 {
		return p.Format.Duration
	}
	if p.PrimaryVideo != nil {
		return p.PrimaryVideo.Duration
	}
	return 0
}

// DisplaySize returns the width and height frames are shown at. ffmpeg
// auto-rotates on decode, so a ±90° rotation swaps the coded dimensions.
func (p *ProbeResult) DisplaySize() (width, height int) {
	if p.PrimaryVideo == nil {
		return 0, 0
	}
	v := p.PrimaryVideo
	switch normalizeRotation(v.Rotation) {
	case 90, 270:
		return v.Height, v.Width
	default:
		return v.Width, v.Height
	}
}

// Resolution returns "WxH" of the display size, or "unknown".
func (p *ProbeResult) Resolution() string {
	w, h := p.DisplaySize()
	if w <= 0 || h <= 0 {
		return "unknown"
	}
	return strconv.Itoa(w) + "x" + strconv.Itoa(h)
}

// FrameRate returns the primary stream's average frame rate in frames per
// second, or 0 when it is unknown.
func (p *ProbeResult) FrameRate() float64 {
	if p.PrimaryVideo == nil {
		return 0
	}
	return ParseRate(p.PrimaryVideo.AvgFrameRate)
}

// ParseRate converts ffprobe rationals ("30000/1001", "25/1", "25") to a
// float. Invalid or zero-denominator values yield 0.
func ParseRate(s string) float64 {
	s = strings.TrimSpace(s)
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	r := n / d
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

func normalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}
