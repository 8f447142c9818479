package sequencer

import "errors"

var (
	// ErrConfiguration is fatal to scheduling: bad tempo, pattern length,
	// look-ahead window or trigger. The loop does not start.
	ErrConfiguration = errors.New("configuration error")

	// ErrSinkUnavailable is returned by an output whose device is missing or
	// closed. Dispatch degrades to the remaining sinks.
	ErrSinkUnavailable = errors.New("sink unavailable")
)
