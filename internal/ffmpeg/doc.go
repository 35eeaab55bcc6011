// Package ffmpeg builds and executes the single ffmpeg invocation that turns
// a trimmed, optionally scaled video range into a GIF.
//
// Layout:
//   - builder.go: GIFJob and BuildGIF (argument skeleton + filter graph).
//   - executor.go: Execute (run, capture stderr, optional tee to os.Stderr).
//   - errors.go: stderr classification into FailureKind for error messages.
//
// There is no retry layer; a failed invocation is terminal for the run.
package ffmpeg
