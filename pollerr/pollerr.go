// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pollerr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidPoll   = errors.New("invalid poll")
	ErrInvalidOption = errors.New("invalid option")
	ErrPollNotFound  = errors.New("poll not found")
	ErrStorage       = errors.New("storage failure")
)

// Kind classifies an error into one of the request-level failure kinds
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidPoll
	KindInvalidOption
	KindPollNotFound
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindInvalidPoll:
		return "InvalidPoll"
	case KindInvalidOption:
		return "InvalidOption"
	case KindPollNotFound:
		return "PollNotFound"
	case KindStorage:
		return "StorageFailure"
	default:
		return "Unknown"
	}
}

// StorageError wraps a persistence failure with the operation that failed
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is makes every StorageError match ErrStorage
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Storage wraps err as a StorageError. Returns nil for a nil err.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// InvalidPoll returns an ErrInvalidPoll carrying the reason
func InvalidPoll(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidPoll, reason)
}

// InvalidOption returns an ErrInvalidOption for index against count options
func InvalidOption(index, count int) error {
	return fmt.Errorf("%w: index %d not in [0, %d)", ErrInvalidOption, index, count)
}

// KindOf reports the kind of err
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidPoll):
		return KindInvalidPoll
	case errors.Is(err, ErrInvalidOption):
		return KindInvalidOption
	case errors.Is(err, ErrPollNotFound):
		return KindPollNotFound
	case errors.Is(err, ErrStorage):
		return KindStorage
	default:
		return KindUnknown
	}
}

// Message returns the text sent to the originating client in an error event.
// Storage and unknown failures never leak internal detail.
func Message(err error) string {
	switch KindOf(err) {
	case KindInvalidPoll, KindInvalidOption:
		return err.Error()
	case KindPollNotFound:
		return "Poll not found"
	default:
		return "Request failed. Please try again."
	}
}

// HTTPStatus maps err to a response status code
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidPoll, KindInvalidOption:
		return http.StatusBadRequest
	case KindPollNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
