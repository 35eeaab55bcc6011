// Package probe provides ffprobe-based media inspection and typed result
// structures. A single JSON call per source yields everything the converter
// needs: duration, display resolution and frame rate of the primary video
// stream.
//
// [ParseJSON] is exported so the wire-to-domain conversion can be tested
// without an ffprobe binary.
package probe
