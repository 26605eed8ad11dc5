package service

import (
	"errors"
	"fmt"

	"shareit/internal/database"
)

// Kind classifies failures for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindInvalidArgument:
		return "invalid_argument"
	}
	return "internal"
}

// Error is a failure the caller is allowed to see.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrItemUnavailable   = &Error{Kind: KindInvalidArgument, Message: "item is not available for booking"}
	ErrInvalidInterval   = &Error{Kind: KindInvalidArgument, Message: "booking start must be before its end"}
	ErrStartInPast       = &Error{Kind: KindInvalidArgument, Message: "booking start must not be in the past"}
	ErrOverlap           = &Error{Kind: KindInvalidArgument, Message: "item is already booked for this period"}
	ErrNotItemOwner      = &Error{Kind: KindForbidden, Message: "user is not the owner of the item"}
	ErrBookingAccess     = &Error{Kind: KindForbidden, Message: "only the booker or the item owner can view this booking"}
	ErrCommentNotAllowed = &Error{Kind: KindInvalidArgument, Message: "only users who finished an approved booking of the item can comment"}
	ErrUnknownState      = &Error{Kind: KindInvalidArgument, Message: "unknown booking state"}
	ErrAlreadyDecided    = &Error{Kind: KindInvalidArgument, Message: "booking has already been approved or rejected"}
	ErrConcurrentUpdate  = &Error{Kind: KindConflict, Message: "booking was changed by another request, retry"}
	ErrDuplicateEmail    = &Error{Kind: KindConflict, Message: "email is already registered"}
)

// KindOf returns KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func unknownState(value string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: "Unknown state: " + value, cause: ErrUnknownState}
}

func notFound(entity string, id int64) *Error {
	return newError(KindNotFound, "%s with id=%d not found", entity, id)
}

func invalidArgument(format string, args ...any) *Error {
	return newError(KindInvalidArgument, format, args...)
}

// lookup turns a repository miss into a NotFound error and wraps everything else.
func lookup(err error, entity string, id int64) error {
	if errors.Is(err, database.ErrNotFound) {
		return notFound(entity, id)
	}
	return fmt.Errorf("%s %d: %w", entity, id, err)
}
