package domain

import "errors"

var (
	// ErrNotFound: the referenced order does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrInvalidStatus: requested value outside the enumerated status set.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrIllegalTransition: requested status unreachable from the current
	// one per the state graph. Never retried.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrConflict: a concurrent writer won the compare-and-set race.
	// The caller may retry with freshly read state.
	ErrConflict = errors.New("concurrent status update conflict")
)
