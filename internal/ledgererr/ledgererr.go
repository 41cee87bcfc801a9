// Package ledgererr defines the error taxonomy shared by the ledger packages.
//
// Every failure surfaced to callers carries a Kind (validation, state,
// reference, storage) and a reason Code. Callers branch on the Kind to pick a
// transport status and on the Code when they need the exact reason.
package ledgererr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by who can fix it.
type Kind int

const (
	// KindUnknown is reported for errors that did not originate in this package.
	KindUnknown Kind = iota
	// KindValidation means the request itself is malformed.
	KindValidation
	// KindState means the request is well formed but the ledger forbids it now.
	KindState
	// KindReference means an id points to nothing, or to something outside the group.
	KindReference
	// KindStorage means the ledger store failed.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindReference:
		return "reference"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Code is the specific reason for a failure.
type Code string

const (
	EmptyTitle         Code = "EmptyTitle"
	EmptyName          Code = "EmptyName"
	NonPositiveAmount  Code = "NonPositiveAmount"
	AmountPrecision    Code = "AmountPrecision"
	InvalidAmount      Code = "InvalidAmount"
	InvalidStrategy    Code = "InvalidStrategy"
	InvalidRequest     Code = "InvalidRequest"
	NoMembers          Code = "NoMembers"
	MissingParticipant Code = "MissingParticipant"
	UnknownParticipant Code = "UnknownParticipant"
	NegativePercentage Code = "NegativePercentage"
	PercentageSum      Code = "PercentageSum"
	NegativeAmount     Code = "NegativeAmount"
	AmountMismatch     Code = "AmountMismatch"

	NotInDebt         Code = "NotInDebt"
	AmountExceedsDebt Code = "AmountExceedsDebt"
	NothingToSettle   Code = "NothingToSettle"
	AlreadyMember     Code = "AlreadyMember"
	NotAMember        Code = "NotAMember"
	RemovalDenied     Code = "RemovalDenied"
	LedgerChanged     Code = "LedgerChanged"
	LockBusy          Code = "LockBusy"

	InvalidReference Code = "InvalidReference"
	NotFound         Code = "NotFound"

	StorageFailure Code = "StorageFailure"
)

// Error is a ledger failure with a kind, a reason code and an optional field.
type Error struct {
	Kind    Kind
	Code    Code
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Code.
// This lets callers write errors.Is(err, ledgererr.New(ledgererr.KindState, ledgererr.NotInDebt, "", "")).
// CodeOf is usually more convenient.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates an Error.
func New(kind Kind, code Code, field, message string) *Error {
	return &Error{Kind: kind, Code: code, Field: field, Message: message}
}

// Validation creates a KindValidation error.
func Validation(code Code, field, format string, args ...any) *Error {
	return New(KindValidation, code, field, fmt.Sprintf(format, args...))
}

// State creates a KindState error.
func State(code Code, format string, args ...any) *Error {
	return New(KindState, code, "", fmt.Sprintf(format, args...))
}

// Reference creates a KindReference error.
func Reference(code Code, field, format string, args ...any) *Error {
	return New(KindReference, code, field, fmt.Sprintf(format, args...))
}

// Storage wraps a store failure.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Code: StorageFailure, Message: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the Code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
