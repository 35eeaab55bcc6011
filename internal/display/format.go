package display

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatSize returns a human-readable IEC size (e.g. "1.5 KiB", "700 MiB").
// Negative sizes render as "0 B".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatRange renders a clip range with its length, e.g. "2.00s-5.00s (3.00s)".
func FormatRange(start, stop float64) string {
	return fmt.Sprintf("%.2fs-%.2fs (%.2fs)", start, stop, stop-start)
}

// FormatResolution renders "WxH", or "unknown" when either side is unset.
func FormatResolution(width, height int) string {
	if width <= 0 || height <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%dx%d", width, height)
}
