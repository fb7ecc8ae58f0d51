package messaging

import "errors"

var (
	ErrNotStarted  = errors.New("bus not started")
	ErrSequenceGap = errors.New("sequence gap")
)
