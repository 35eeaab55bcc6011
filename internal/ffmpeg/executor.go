package ffmpeg

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
)

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Stderr string
	Err    error
}

// Executor runs built argument slices. When Tee is set, stderr is copied to
// os.Stderr in real time (progress stats); it is always captured for
// classification.
type Executor struct {
	Tee bool
}

// Run executes args[0] with args[1:].
func (e Executor) Run(ctx context.Context, args []string) ExecResult {
	return Execute(ctx, args, e.Tee)
}

// Execute runs one ffmpeg command line and captures its stderr.
func Execute(ctx context.Context, args []string, tee bool) ExecResult {
	if len(args) == 0 {
		return ExecResult{Err: exec.ErrNotFound}
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderrBuf bytes.Buffer
	if tee {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	return ExecResult{
		Stderr: stderrBuf.String(),
		Err:    err,
	}
}
