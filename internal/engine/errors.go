package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNoOpportunity means prices are aligned or the trade would not pay for its gas.
	ErrNoOpportunity = errors.New("no arbitrage")
	// ErrInsufficientBalance means the usable amount is at or below dust.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// ReadError is a failed chain read. The iteration is skipped.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

func readErr(op string, err error) error {
	return &ReadError{Op: op, Err: err}
}
