package board

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPosition matches any *MalformedPositionError.
	ErrMalformedPosition = errors.New("malformed position")
	// ErrIllegalMove matches any *IllegalMoveError.
	ErrIllegalMove = errors.New("illegal move")
)

// MalformedPositionError reports a FEN string that cannot describe a position.
type MalformedPositionError struct {
	FEN    string
	Reason string
}

func (e *MalformedPositionError) Error() string {
	return fmt.Sprintf("malformed position %q: %s", e.FEN, e.Reason)
}

func (e *MalformedPositionError) Is(target error) bool { return target == ErrMalformedPosition }

// IllegalMoveError reports move text that matches no legal move.
type IllegalMoveError struct {
	Move string
	FEN  string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %q in %s", e.Move, e.FEN)
}

func (e *IllegalMoveError) Is(target error) bool { return target == ErrIllegalMove }
