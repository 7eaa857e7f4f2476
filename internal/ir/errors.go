package ir

import (
	"errors"
	"fmt"
)

// Error represents a failure detected while building or running a join.
//
// Construction-time errors (arity, references, types, malformed stages,
// invalid arguments) are returned synchronously by pipeline append and join
// compilation. SourceReadFailure is the only execution-time code; it is
// delivered as the terminal element of a lazy sequence.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Stage is the 0-based stage index the error refers to, or -1.
	Stage int

	// Table names the table involved, if any.
	Table string

	// Err is the underlying cause (row source error, parse error).
	Err error
}

// ErrorCode categorizes errors.
type ErrorCode string

const (
	// ErrCodeArityMismatch indicates the number of table identifiers does not
	// equal the number of stages plus one.
	ErrCodeArityMismatch ErrorCode = "ARITY_MISMATCH"

	// ErrCodeUnresolvedTableReference indicates a link references a table
	// (or column) not introduced by an earlier stage.
	ErrCodeUnresolvedTableReference ErrorCode = "UNRESOLVED_TABLE_REFERENCE"

	// ErrCodeIncompatibleComparison indicates the two column types of a link
	// do not support its operator.
	ErrCodeIncompatibleComparison ErrorCode = "INCOMPATIBLE_COMPARISON"

	// ErrCodeMalformedStage indicates a structurally invalid stage.
	ErrCodeMalformedStage ErrorCode = "MALFORMED_STAGE"

	// ErrCodeInvalidArgument indicates a bad pipeline operand.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeSourceReadFailure indicates a row source failed mid-stream.
	ErrCodeSourceReadFailure ErrorCode = "SOURCE_READ_FAILURE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.Stage >= 0 && e.Table != "":
		msg = fmt.Sprintf("%s (stage=%d, table=%s)", msg, e.Stage, e.Table)
	case e.Stage >= 0:
		msg = fmt.Sprintf("%s (stage=%d)", msg, e.Stage)
	case e.Table != "":
		msg = fmt.Sprintf("%s (table=%s)", msg, e.Table)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates an Error with no stage or table context.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Stage: -1}
}

// StageErrorf creates an Error attributed to a stage and table.
func StageErrorf(code ErrorCode, stage int, table, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Stage: stage, Table: table}
}

// NewSourceReadFailure wraps a row source error.
func NewSourceReadFailure(table string, err error) *Error {
	return &Error{
		Code:    ErrCodeSourceReadFailure,
		Message: "row source failed while being read",
		Stage:   -1,
		Table:   table,
		Err:     err,
	}
}

// CodeOf extracts the ErrorCode from err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err (or anything it wraps) is an *Error with code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsSourceReadFailure returns true if the error is a row source failure.
func IsSourceReadFailure(err error) bool {
	return IsCode(err, ErrCodeSourceReadFailure)
}

// IsConstructionError returns true for any error reported before a row is
// touched (everything except SourceReadFailure).
func IsConstructionError(err error) bool {
	code := CodeOf(err)
	return code != "" && code != ErrCodeSourceReadFailure
}
