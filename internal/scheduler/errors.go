package scheduler

import "errors"

var (
	ErrInvalidRetention   = errors.New("scheduler: desired retention must be between 0 and 1 exclusive")
	ErrInvalidWeights     = errors.New("scheduler: weights out of bounds")
	ErrInvalidMaxInterval = errors.New("scheduler: maximum interval must be at least one day")
	ErrInvalidStep        = errors.New("scheduler: learning steps must be positive")
)
