package media

import "errors"

// Sentinel errors raised by the engine. Callers test with errors.Is; every
// returned error wraps exactly one of these.
var (
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidRange    = errors.New("invalid range")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEncodingFailure = errors.New("encoding failure")
	ErrSessionClosed   = errors.New("video session already released")
)
