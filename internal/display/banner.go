// Package display renders the startup banner and the human-readable pieces
// of the result summary.
package display

import (
	"fmt"
	"io"

	"github.com/backmassage/gifclip/internal/term"
)

// PrintBanner writes the ASCII art banner to w; magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, term.Paint(term.Magenta, `       _  __       _ _
  __ _(_)/ _| ___ | (_)_ __
 / _`+"`"+` | | |_ / __|| | | '_ \
| (_| | |  _| (__ | | | |_) |
 \__, |_|_|  \___||_|_| .__/
 |___/                |_|`))
}
