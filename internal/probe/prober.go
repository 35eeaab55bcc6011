package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Command runs a specific ffprobe binary. The zero value uses "ffprobe"
// from PATH.
type Command struct {
	Binary string
}

// Probe runs a single ffprobe JSON call against path and returns the
// parsed result.
func (c Command) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	bin := c.Binary
	if bin == "" {
		bin = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(string(exitErr.Stderr)); msg != "" {
				return nil, fmt.Errorf("ffprobe %q: %s", path, lastLine(msg))
			}
		}
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	return ParseJSON(out)
}

// Probe runs the ffprobe found on PATH against path.
func Probe(ctx context.Context, path string) (*ProbeResult, error) {
	return Command{}.Probe(ctx, path)
}

// ParseJSON converts raw ffprobe JSON output into a ProbeResult.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*ProbeResult, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildResult(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename       string            `json:"filename"`
	NbStreams      int               `json:"nb_streams"`
	FormatName     string            `json:"format_name"`
	FormatLongName string            `json:"format_long_name"`
	Duration       string            `json:"duration"`
	Size           string            `json:"size"`
	BitRate        string            `json:"bit_rate"`
	Tags           map[string]string `json:"tags"`
}

type ffprobeStream struct {
	Index        int               `json:"index"`
	CodecName    string            `json:"codec_name"`
	CodecType    string            `json:"codec_type"`
	PixFmt       string            `json:"pix_fmt"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	Duration     string            `json:"duration"`
	AvgFrameRate string            `json:"avg_frame_rate"`
	Channels     int               `json:"channels"`
	Disposition  map[string]int    `json:"disposition"`
	Tags         map[string]string `json:"tags"`
	SideDataList []ffprobeSideData `json:"side_data_list"`
}

type ffprobeSideData struct {
	SideDataType string  `json:"side_data_type"`
	Rotation     float64 `json:"rotation"`
}

// --- Conversion from wire types to domain types ---

func buildResult(raw *ffprobeOutput) *ProbeResult {
	pr := &ProbeResult{
		Format: convertFormat(&raw.Format),
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		switch s.CodecType {
		case "video":
			vs := convertVideo(s)
			if !vs.IsAttachedPic && pr.PrimaryVideo == nil {
				pr.PrimaryVideo = &vs
			}
		case "audio":
			pr.AudioStreams = append(pr.AudioStreams, AudioStream{
				Index:    s.Index,
				Codec:    s.CodecName,
				Channels: s.Channels,
			})
		}
	}
	return pr
}

func convertFormat(f *ffprobeFormat) FormatInfo {
	return FormatInfo{
		Filename:       f.Filename,
		NbStreams:      f.NbStreams,
		FormatName:     f.FormatName,
		FormatLongName: f.FormatLongName,
		Duration:       parseFloat(f.Duration),
		Size:           parseInt64(f.Size),
		BitRate:        parseInt64(f.BitRate),
		Tags:           f.Tags,
	}
}

func convertVideo(s *ffprobeStream) VideoStream {
	return VideoStream{
		Index:         s.Index,
		Codec:         s.CodecName,
		PixFmt:        s.PixFmt,
		Width:         s.Width,
		Height:        s.Height,
		Duration:      parseFloat(s.Duration),
		AvgFrameRate:  s.AvgFrameRate,
		Rotation:      rotationOf(s),
		IsAttachedPic: s.Disposition["attached_pic"] == 1,
	}
}

// rotationOf prefers the display matrix side data (ffmpeg 5+) and falls
// back to the legacy "rotate" stream tag.
func rotationOf(s *ffprobeStream) int {
	for _, sd := range s.SideDataList {
		if sd.SideDataType == "Display Matrix" && sd.Rotation != 0 {
			return int(math.Round(sd.Rotation))
		}
	}
	if r, ok := s.Tags["rotate"]; ok {
		n, _ := strconv.Atoi(strings.TrimSpace(r))
		return n
	}
	return 0
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndex(s, "\n"); idx >= 0 {
		return strings.TrimSpace(s[idx+1:])
	}
	return s
}
