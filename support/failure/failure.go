// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package failure defines the error taxonomy shared by the codec, storage and
// dispatch layers.
//
// Each error type unwraps to a sentinel, so callers can test a class of
// failure with errors.Is regardless of the concrete detail attached to it:
//
//	- ErrFormat: a payload is malformed for a recognized format.
//	- ErrLookup: a format token is not registered for loading or saving.
//	- ErrNotFound: a path or container member does not exist.
//	- ErrTransportClosed: the downstream consumer of an output went away.
package failure

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/pkg/errors"
)

var (
	// ErrFormat is the sentinel for malformed payloads.
	ErrFormat = errors.New("format error")
	// ErrLookup is the sentinel for unregistered format tokens.
	ErrLookup = errors.New("lookup error")
	// ErrNotFound is the sentinel for missing paths and members.
	ErrNotFound = errors.New("not found")
	// ErrTransportClosed is the sentinel for vanished consumers.
	ErrTransportClosed = errors.New("transport closed")
)

// FormatError reports a malformed or unsupported payload in a recognized
// format.
type FormatError struct {
	// Format is the format token or record name being decoded, if known.
	Format string
	// Message describes the problem.
	Message string
	// Err is the underlying error, if any.
	Err error
}

func (e *FormatError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if e.Format != "" {
		return e.Format + ": " + msg
	}
	return msg
}

// Unwrap returns the underlying error, or ErrFormat.
func (e *FormatError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrFormat
}

// Is reports whether target is ErrFormat, so that FormatErrors wrapping an
// I/O error still classify as format errors.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// LookupError reports that no loader or saver is registered for a token.
type LookupError struct {
	// Operation is "load" or "save".
	Operation string
	// Format is the rejected format token.
	Format string
}

func (e *LookupError) Error() string {
	if e.Operation == "save" {
		return "cannot save to format `" + e.Format + "`"
	}
	return "cannot load from format `" + e.Format + "`"
}

// Unwrap returns ErrLookup.
func (e *LookupError) Unwrap() error { return ErrLookup }

// NotFoundError reports a missing path or container member.
type NotFoundError struct {
	// Name is the missing path or member name.
	Name string
	// Err is the underlying error, if any.
	Err error
}

func (e *NotFoundError) Error() string { return "not found: " + e.Name }

// Unwrap returns the underlying error, or ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// TransportClosedError reports that the consumer of an output stream is gone,
// e.g. a pipe whose reader exited early.
type TransportClosedError struct {
	// Name is the stream being written.
	Name string
	// Err is the underlying error.
	Err error
}

func (e *TransportClosedError) Error() string {
	return "transport closed while writing " + e.Name
}

// Unwrap returns the underlying error, or ErrTransportClosed.
func (e *TransportClosedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrTransportClosed
}

// Is reports whether target is ErrTransportClosed.
func (e *TransportClosedError) Is(target error) bool { return target == ErrTransportClosed }

// Format returns a FormatError for format with a formatted message.
func Format(format, msg string, args ...interface{}) error {
	return &FormatError{
		Format:  format,
		Message: fmt.Sprintf(msg, args...),
	}
}

// WrapFormat wraps err as a FormatError for format. If err is nil, WrapFormat
// returns nil.
func WrapFormat(err error, format, msg string) error {
	if err == nil {
		return nil
	}
	return &FormatError{Format: format, Message: msg, Err: err}
}

// NotFound returns a NotFoundError for name.
func NotFound(name string, err error) error { return &NotFoundError{Name: name, Err: err} }

// IsFormat reports whether err is a format error.
func IsFormat(err error) bool { return errors.Is(err, ErrFormat) }

// IsLookup reports whether err is a lookup error.
func IsLookup(err error) bool { return errors.Is(err, ErrLookup) }

// IsNotFound reports whether err is a not-found error. Missing files reported
// by the os package also qualify.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, os.ErrNotExist)
}

// IsTransportClosed reports whether err indicates that the consumer of an
// output went away: a TransportClosedError, a broken pipe, or a closed pipe.
func IsTransportClosed(err error) bool {
	return errors.Is(err, ErrTransportClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrClosedPipe)
}
