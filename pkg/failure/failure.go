// Package failure defines the typed error taxonomy shared by the catalog
// client, the cache store and the repository.
//
// Every error that crosses the repository boundary is a *Error carrying a
// Kind. Sentinel values exist for each kind so callers can match with
// errors.Is regardless of message or wrapped cause:
//
//	if errors.Is(err, failure.ErrTimeout) { ... }
package failure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	KindNetworkUnavailable Kind = "network_unavailable"
	KindTimeout            Kind = "timeout"
	KindServerError        Kind = "server_error"
	KindNotFound           Kind = "not_found"
	KindCorruptCacheData   Kind = "corrupt_cache_data"
	KindStorageIOError     Kind = "storage_io_error"
	KindNoCachedData       Kind = "no_cached_data"
	KindNoMatchingRecords  Kind = "no_matching_records"
	KindNotFoundAnywhere   Kind = "not_found_anywhere"
	KindInvalidReference   Kind = "invalid_reference"
	KindInvalidArgument    Kind = "invalid_argument"
	KindCanceled           Kind = "canceled"
	KindUnknown            Kind = "unknown"
)

// Error is a classified failure.
type Error struct {
	Kind     Kind
	Message  string
	Status   int // upstream HTTP status, set for KindServerError
	Internal error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", msg, e.Internal)
	}
	return msg
}

// Unwrap exposes the internal error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) || e == nil || other == nil {
		return false
	}
	return e.Kind == other.Kind
}

// WithInternal returns a copy of the error with an attached cause.
func (e *Error) WithInternal(err error) *Error {
	if e == nil {
		return nil
	}
	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithMessage returns a copy of the error with a different message.
func (e *Error) WithMessage(msg string) *Error {
	if e == nil {
		return nil
	}
	cpy := *e
	cpy.Message = msg
	return &cpy
}

// HTTPStatus maps the kind to the status code the API answers with.
func (e *Error) HTTPStatus() int {
	if e == nil {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindInvalidArgument, KindInvalidReference:
		return http.StatusBadRequest
	case KindNotFound, KindNotFoundAnywhere, KindNoCachedData, KindNoMatchingRecords:
		return http.StatusNotFound
	case KindNetworkUnavailable, KindServerError:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindCanceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrNetworkUnavailable = &Error{Kind: KindNetworkUnavailable, Message: "catalog service unreachable"}
	ErrTimeout            = &Error{Kind: KindTimeout, Message: "catalog request timed out"}
	ErrServerError        = &Error{Kind: KindServerError, Message: "catalog service error"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "record not found upstream"}
	ErrCorruptCacheData   = &Error{Kind: KindCorruptCacheData, Message: "cached row cannot be decoded"}
	ErrStorageIO          = &Error{Kind: KindStorageIOError, Message: "cache storage failure"}
	ErrNoCachedData       = &Error{Kind: KindNoCachedData, Message: "no cached data available"}
	ErrNoMatchingRecords  = &Error{Kind: KindNoMatchingRecords, Message: "no cached record matches the filter"}
	ErrNotFoundAnywhere   = &Error{Kind: KindNotFoundAnywhere, Message: "record not found upstream or in cache"}
	ErrInvalidReference   = &Error{Kind: KindInvalidReference, Message: "invalid record reference"}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument, Message: "invalid argument"}
	ErrCanceled           = &Error{Kind: KindCanceled, Message: "operation canceled"}
)

// New builds an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err under kind, keeping it as the internal cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Internal: err}
}

// ServerError builds a KindServerError carrying the upstream status.
func ServerError(status int, message string) *Error {
	return &Error{Kind: KindServerError, Message: message, Status: status}
}

// From converts any error into an *Error. Unclassified errors become
// KindCanceled/KindTimeout for context errors and KindUnknown otherwise.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}

	switch {
	case errors.Is(err, context.Canceled):
		return ErrCanceled.WithInternal(err)
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout.WithInternal(err)
	}
	return &Error{Kind: KindUnknown, Message: "unexpected failure", Internal: err}
}

// KindOf returns the kind of err, or the empty kind for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
