package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrAlreadyRunning is returned by Start on a poller that was started before
	ErrAlreadyRunning = errors.New("scheduler is already running")
)
