package repository

import (
	"github.com/goliatone/go-catalog-cache/pkg/failure"
)

// Result is the outcome of a repository operation: either a value or a
// classified failure, never both.
type Result[T any] struct {
	value T
	err   *failure.Error
}

// Success wraps v.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure wraps err, classifying it when it is not already a *failure.Error.
func Failure[T any](err error) Result[T] {
	fe := failure.From(err)
	if fe == nil {
		fe = failure.New(failure.KindUnknown, "failure without cause")
	}
	return Result[T]{err: fe}
}

func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// Value returns the success value, or the zero value on failure.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the failure, or nil on success.
func (r Result[T]) Err() *failure.Error {
	return r.err
}

// Kind returns the failure kind, or "" on success.
func (r Result[T]) Kind() failure.Kind {
	if r.err == nil {
		return ""
	}
	return r.err.Kind
}

// Unwrap converts the result to the usual (value, error) pair.
func (r Result[T]) Unwrap() (T, error) {
	if r.err == nil {
		return r.value, nil
	}
	return r.value, r.err
}
