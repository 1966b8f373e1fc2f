package query

import (
	"errors"
	"fmt"
)

// ErrorCode categorises query misuse.
type ErrorCode string

const (
	// CodeKeyWithOrderByKey: EqualTo was given a key while ordering by key.
	CodeKeyWithOrderByKey ErrorCode = "KEY_WITH_ORDER_BY_KEY"

	// CodeOrderAlreadySet: a second OrderBy call on the same query.
	CodeOrderAlreadySet ErrorCode = "ORDER_ALREADY_SET"

	// CodeLimitAlreadySet: a second limit on the same query.
	CodeLimitAlreadySet ErrorCode = "LIMIT_ALREADY_SET"

	// CodeInvalidLimit: a limit below zero.
	CodeInvalidLimit ErrorCode = "INVALID_LIMIT"
)

// Error is a deterministic query misuse error.
// Compare with errors.Is against the Err* values; the code decides equality.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	// ErrKeyWithOrderByKey is returned when EqualTo carries a key under key ordering.
	ErrKeyWithOrderByKey = &Error{Code: CodeKeyWithOrderByKey, Message: "equalTo cannot take a key argument when ordering by key"}

	// ErrOrderAlreadySet is returned when an ordering is chosen twice.
	ErrOrderAlreadySet = &Error{Code: CodeOrderAlreadySet, Message: "query ordering was already set"}

	// ErrLimitAlreadySet is returned when a limit is chosen twice.
	ErrLimitAlreadySet = &Error{Code: CodeLimitAlreadySet, Message: "query limit was already set"}

	// ErrInvalidLimit is returned for negative limits.
	ErrInvalidLimit = &Error{Code: CodeInvalidLimit, Message: "limit must not be negative"}
)

// IsQueryError reports whether err is, or wraps, a query misuse error.
func IsQueryError(err error) bool {
	var qe *Error
	return errors.As(err, &qe)
}
