package convert

import (
	"fmt"
	"math"
)

// ValidateRange resolves the clip bounds against the source duration. A nil
// stop means the end of the video. The upper bound is inclusive, so
// stop == duration is accepted.
func ValidateRange(duration, start float64, stop *float64) (float64, float64, error) {
	end := duration
	if stop != nil {
		end = *stop
	}
	if math.IsNaN(start) || math.IsNaN(end) || start < 0 || end <= start || end > duration {
		return 0, 0, fmt.Errorf("%w: invalid start/stop times: video duration is %.2f seconds; ensure 0 <= start < stop <= duration",
			ErrInvalidRange, duration)
	}
	return start, end, nil
}
