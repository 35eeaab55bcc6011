package ffmpeg

import (
	"math"
	"strconv"
	"strings"
)

// GIFJob is everything BuildGIF needs for one invocation. Width and Height
// are the target size; zero leaves the source size untouched.
type GIFJob struct {
	Binary      string // Default: "ffmpeg".
	InputFormat string // Optional demuxer forced before -i (e.g. "lavfi").
	Input       string
	Output      string // "-" writes to stdout.

	Start    float64 // Seek offset in seconds.
	Duration float64 // Length in seconds; zero means "to the end".

	FPS    int
	Width  int
	Height int
	Loop   int // 0 = forever, -1 = once, n = n extra loops.

	Verbose   bool
	ShowStats bool
}

// BuildGIF constructs the complete ffmpeg argument slice (argv[0] included).
//
// Seeking is done input-side (-ss/-t before -i) so only the requested range
// is decoded. The single-pass filter graph generates an optimal palette from
// the trimmed frames and applies it, which avoids the banding of the default
// 256-color GIF palette.
func BuildGIF(job GIFJob) []string {
	bin := job.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	args := make([]string, 0, 32)

	// --- Preamble ---
	args = append(args, bin, "-hide_banner", "-nostdin", "-y")

	// Loglevel: info when verbose, otherwise error.
	if job.Verbose {
		args = append(args, "-loglevel", "info")
	} else {
		args = append(args, "-loglevel", "error")
	}
	if job.Verbose || job.ShowStats {
		args = append(args, "-stats", "-stats_period", "1")
	}

	// --- Input range ---
	if job.Start > 0 {
		args = append(args, "-ss", FormatSeconds(job.Start))
	}
	if job.Duration > 0 {
		args = append(args, "-t", FormatSeconds(job.Duration))
	}
	if job.InputFormat != "" {
		args = append(args, "-f", job.InputFormat)
	}
	args = append(args, "-i", job.Input)

	// --- Filter graph ---
	args = append(args, "-filter_complex", FilterGraph(job.FPS, job.Width, job.Height))

	// --- Output ---
	args = append(args,
		"-an",
		"-loop", strconv.Itoa(job.Loop),
		"-f", "gif",
		job.Output,
	)
	return args
}

// FilterGraph returns the fps → scale → palettegen/paletteuse graph.
// The scale stage is omitted when width or height is zero.
func FilterGraph(fps, width, height int) string {
	chain := []string{"fps=" + strconv.Itoa(fps)}
	if width > 0 && height > 0 {
		chain = append(chain, "scale="+strconv.Itoa(width)+":"+strconv.Itoa(height)+":flags=lanczos")
	}
	chain = append(chain, "split[s0][s1]")

	return "[0:v]" + strings.Join(chain, ",") +
		";[s0]palettegen=stats_mode=diff[p]" +
		";[s1][p]paletteuse=dither=sierra2_4a"
}

// RoundSeconds rounds s to the microsecond, the resolution of ffmpeg's own
// time base (AV_TIME_BASE).
func RoundSeconds(s float64) float64 {
	return math.Round(s*1e6) / 1e6
}

// FormatSeconds renders s at microsecond precision in its shortest form
// ("2", "2.5", "9.9996").
func FormatSeconds(s float64) string {
	return strconv.FormatFloat(RoundSeconds(s), 'f', -1, 64)
}

// CommandLine joins args for display, quoting any argument that contains
// shell-significant characters. Used for dry runs and debug logging.
func CommandLine(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'$;[]|&<>()*?\\") {
			quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		} else {
			quoted[i] = a
		}
	}
	return strings.Join(quoted, " ")
}
