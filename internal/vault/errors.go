package vault

import "errors"

// Error definitions for zero-tolerance error handling. Every engine error is
// value-level and terminal for the operation: callers must treat any error as
// "operation did not happen". The engine is pure, so retrying with identical
// inputs reproduces the same error.
var (
	ErrUnknownPoolType           = errors.New("pool type is not registered")
	ErrUnknownHookType           = errors.New("hook type is not registered")
	ErrInvariantRatioOutOfBounds = errors.New("invariant ratio is outside the pool's supported range")
	ErrHookRejected              = errors.New("hook rejected the operation")
	ErrSlippageExceeded          = errors.New("result violates caller-supplied bounds")
	ErrInvalidInput              = errors.New("input is invalid")
)
