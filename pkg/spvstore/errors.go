package spvstore

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Store operations.
//
// Callers should use [errors.Is] to classify errors. Per spec.md §7, errors
// fall into two categories: fatal (the caller cannot proceed with this file;
// everything below except a Get/Contains miss, which is not an error at
// all) and operational.
var (
	// ErrFileLocked indicates another process already holds the store file open.
	ErrFileLocked = errors.New("spvstore: file locked by another process")

	// ErrBadMagic indicates the file is not a recognizable store file.
	ErrBadMagic = errors.New("spvstore: bad magic")

	// ErrCapacityMismatch indicates the on-disk capacity differs from the
	// requested capacity and growth was not requested (or not possible).
	// Wraps [CapacityMismatchError] for the concrete values.
	ErrCapacityMismatch = errors.New("spvstore: capacity mismatch")

	// ErrShrinkNotAllowed indicates the caller requested a smaller capacity
	// than the file already has. Shrinking is always fatal.
	ErrShrinkNotAllowed = errors.New("spvstore: shrink not allowed")

	// ErrCorrupt indicates an invariant violation discovered on open, e.g. a
	// cursor or capacity field out of range.
	ErrCorrupt = errors.New("spvstore: corrupt")

	// ErrClosed indicates the Store has already been closed.
	ErrClosed = errors.New("spvstore: closed")

	// ErrWorkOverflowV1 indicates a chain work value does not fit the
	// 12-byte V1 record field; the caller must use V2.
	ErrWorkOverflowV1 = errors.New("spvstore: chain work exceeds V1 capacity (2^96-1)")

	// ErrInvalidInput indicates a programming error: bad capacity, nil
	// chain work, etc.
	ErrInvalidInput = errors.New("spvstore: invalid input")
)

// CapacityMismatchError carries the requested and on-disk capacity values
// for [ErrCapacityMismatch].
type CapacityMismatchError struct {
	Requested uint64
	Actual    uint64
}

func (e *CapacityMismatchError) Error() string {
	return fmt.Sprintf("spvstore: capacity mismatch: requested %d, file has %d", e.Requested, e.Actual)
}

func (e *CapacityMismatchError) Unwrap() error {
	return ErrCapacityMismatch
}
