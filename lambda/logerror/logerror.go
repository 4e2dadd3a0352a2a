// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package logerror

// This package defines the error types surfaced by a log export run.
// Separate package for namespacing

import (
	"errors"
	"fmt"
)

// ErrorType classifies a failure. Fatal types abort the run, the others are
// isolated to the stream or file they concern.
type ErrorType string

const (
	NoStreamsFound         ErrorType = "Logs.NoStreamsFound"         // log group has no streams
	StreamDiscoveryFailure ErrorType = "Logs.StreamDiscoveryFailure" // listing streams failed or returned garbage
	InvalidTimeRange       ErrorType = "Logs.InvalidTimeRange"       // end before start
	InvalidConfig          ErrorType = "Logs.InvalidConfig"
	EventFetchFailure      ErrorType = "Logs.EventFetchFailure" // one stream could not be read
	WriteFailure           ErrorType = "Logs.WriteFailure"      // one csv file could not be written
	Unknown                ErrorType = "Unknown"
)

var fatalErrorTypes = map[ErrorType]bool{
	NoStreamsFound:         true,
	StreamDiscoveryFailure: true,
	InvalidTimeRange:       true,
	InvalidConfig:          true,
}

// Fatal reports whether errors of this type abort the whole run.
func (t ErrorType) Fatal() bool {
	return fatalErrorTypes[t]
}

// Error carries an ErrorType, the stream or file it concerns, and the underlying cause.
type Error struct {
	Type    ErrorType
	Subject string
	Err     error
}

var (
	ErrNoStreamsFound         = &Error{Type: NoStreamsFound}
	ErrStreamDiscoveryFailure = &Error{Type: StreamDiscoveryFailure}
	ErrInvalidTimeRange       = &Error{Type: InvalidTimeRange}
	ErrInvalidConfig          = &Error{Type: InvalidConfig}
	ErrEventFetchFailure      = &Error{Type: EventFetchFailure}
	ErrWriteFailure           = &Error{Type: WriteFailure}
)

func New(t ErrorType, subject string, err error) *Error {
	return &Error{Type: t, Subject: subject, Err: err}
}

func (e *Error) Error() string {
	msg := string(e.Type)
	if e.Subject != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Subject)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same type, so errors.Is(err, ErrNoStreamsFound) works
// regardless of subject or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Type == e.Type
}

// GetType returns the ErrorType carried anywhere in err's chain, or Unknown.
func GetType(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return Unknown
}

// IsFatal reports whether err must abort the run. Errors without a type are fatal.
func IsFatal(err error) bool {
	t := GetType(err)
	return t == Unknown || t.Fatal()
}
