package engine

import "errors"

var (
	// ErrSearchAborted unwinds an iteration that hit the stop flag, the
	// deadline or the node limit. Search never returns it; the aborted
	// iteration is discarded instead.
	ErrSearchAborted = errors.New("search aborted")

	// ErrUnknownOption is returned by SetOption for a name the engine does not have.
	ErrUnknownOption = errors.New("unknown option")

	// ErrInvalidOption is returned by SetOption for a value outside the option's range.
	ErrInvalidOption = errors.New("invalid option value")
)
