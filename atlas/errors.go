package atlas

import "errors"

// package errors
var (
	ErrAtlasResolutionExceeded = errors.New("atlas: entries do not fit under the maximum resolution")
	ErrInvalidItem             = errors.New("atlas: item has non-positive size")
	ErrMalformedDescriptor     = errors.New("atlas: malformed animation descriptor")
	ErrUnknownEntry            = errors.New("atlas: unknown entry")
	ErrNoFrames                = errors.New("atlas: animation has no frames")
)
