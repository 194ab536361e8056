package models

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable means the provider request itself failed.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrMissingData means the provider answered but has nothing for the ticker.
	ErrMissingData = errors.New("missing data")
	// ErrInvalidRequest means caller input was rejected before any network call.
	ErrInvalidRequest = errors.New("invalid request")
	ErrToolNotFound   = errors.New("tool not found")
	// ErrCompletionFailed wraps failures of the chat completion engine.
	ErrCompletionFailed = errors.New("completion failed")
)

// DataKind names the kind of upstream data a request was about.
type DataKind string

const (
	KindQuote        DataKind = "quote"
	KindFundamentals DataKind = "fundamental"
	KindEarnings     DataKind = "earnings"
	KindNews         DataKind = "news sentiment"
)

type DataUnavailableError struct {
	Kind   DataKind
	Ticker string
	Reason string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	msg := fmt.Sprintf("Unable to retrieve %s data for %s", e.Kind, e.Ticker)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

func (e *DataUnavailableError) Is(target error) bool { return target == ErrDataUnavailable }

type MissingDataError struct {
	Kind   DataKind
	Ticker string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("No %s data found for %s", e.Kind, e.Ticker)
}

func (e *MissingDataError) Is(target error) bool { return target == ErrMissingData }

// InvalidRequestf builds an error that matches ErrInvalidRequest.
func InvalidRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
