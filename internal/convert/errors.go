package convert

import (
	"github.com/backmassage/gifclip/internal/config"
	"github.com/backmassage/gifclip/internal/media"
)

// Failure taxonomy. Every error in an [Outcome] wraps exactly one of these;
// test with errors.Is.
var (
	ErrMissingArgument = config.ErrMissingArgument
	ErrFileNotFound    = media.ErrFileNotFound
	ErrInvalidRange    = media.ErrInvalidRange
	ErrInvalidArgument = media.ErrInvalidArgument
	ErrEncodingFailure = media.ErrEncodingFailure
	ErrSessionClosed   = media.ErrSessionClosed
)
