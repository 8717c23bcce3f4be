// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package errors implements an error type that classifies failures of
// credential verification and content digesting into interpretable
// kinds. Callers use the kind to tell a configuration fault (a
// malformed credential record, an unsupported scheme) from an
// operational one (a failing stream, an external authentication
// service that broke protocol). Errors can be chained, attributing
// one error to another.
//
// Note that an authentication denial is never an error: verification
// returns a negative outcome with a nil error.
package errors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/grailbio/credcheck/log"
)

// Separator defines the separation string inserted between
// chained errors in error messages.
var Separator = ":\n\t"

// Kind defines the type of error. Kinds are semantically
// meaningful, and may be interpreted by the receiver of an error.
type Kind int

const (
	// Other indicates an unknown error.
	Other Kind = iota
	// Canceled indicates a context cancellation.
	Canceled
	// NotExist indicates a nonexistent resource.
	NotExist
	// Invalid indicates that the caller supplied invalid parameters.
	Invalid
	// Integrity indicates that content no longer matches its recorded digest.
	Integrity
	// MalformedRecord indicates a credential record whose stored secret
	// cannot be parsed for its scheme.
	MalformedRecord
	// UnsupportedScheme indicates a credential scheme (or a salted hash
	// variant) that is not available.
	UnsupportedScheme
	// ExternalAuth indicates that a session with the external
	// authentication service failed or violated the conversation
	// protocol.
	ExternalAuth
	// IO indicates a stream read, open, or close failure.
	IO
	// BufferOverflow indicates a violated output capacity. It is a
	// programming error and is raised by panicking, not returned.
	BufferOverflow

	maxKind
)

var kinds = map[Kind]string{
	Other:             "unknown error",
	Canceled:          "operation was canceled",
	NotExist:          "resource does not exist",
	Invalid:           "invalid argument",
	Integrity:         "integrity error",
	MalformedRecord:   "malformed credential record",
	UnsupportedScheme: "unsupported credential scheme",
	ExternalAuth:      "external authentication failed",
	IO:                "i/o error",
	BufferOverflow:    "buffer overflow",
}

// String returns a human-readable explanation of the error kind k.
func (k Kind) String() string {
	return kinds[k]
}

// Error is the standard error type, carrying a kind (error code),
// message (error message), and potentially an underlying error.
// Errors should be constructed by errors.E, which interprets
// arguments according to a set of rules.
type Error struct {
	// Kind is the error's type.
	Kind Kind
	// Message is an optional error message associated with this error.
	Message string
	// Err is the error that caused this error, if any.
	// Errors can form chains through Err: the full chain is printed
	// by Error().
	Err error
}

// E constructs a new error from the provided arguments. It is meant
// as a convenient way to construct, annotate, and wrap errors.
//
// Arguments are interpreted according to their types:
//
//	- Kind: sets the Error's kind
//	- string: sets the Error's message; multiple strings are
//	  separated by a single space
//	- *Error: copies the error and sets the error's cause
//	- error: sets the Error's cause
//
// If an unrecognized argument type is encountered, an error with
// kind Invalid is returned.
//
// If a kind is not provided, but an underlying error is, E
// classifies the underlying error: os.IsNotExist errors have kind
// NotExist and context.Canceled has kind Canceled. If the underlying
// error is another *Error, the returned error inherits its kind.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("no args")
	}
	e := new(Error)
	var msg strings.Builder
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case string:
			if msg.Len() > 0 {
				msg.WriteString(" ")
			}
			msg.WriteString(arg)
		case *Error:
			copy := *arg
			if len(args) == 1 {
				return &copy
			}
			e.Err = &copy
		case error:
			e.Err = arg
		default:
			_, file, line, _ := runtime.Caller(1)
			log.Error.Printf("errors.E: bad call (type %T) from %s:%d: %v", arg, file, line, arg)
			return &Error{
				Kind:    Invalid,
				Message: fmt.Sprintf("unknown type %T, value %v in error call", arg, arg),
			}
		}
	}
	e.Message = msg.String()
	if e.Err == nil {
		return e
	}
	switch prev := e.Err.(type) {
	case *Error:
		if prev.Kind == e.Kind || e.Kind == Other {
			e.Kind = prev.Kind
			prev.Kind = Other
		}
	default:
		if e.Kind != Other {
			break
		}
		if os.IsNotExist(e.Err) {
			e.Kind = NotExist
		} else if e.Err == context.Canceled {
			e.Kind = Canceled
		}
	}
	return e
}

// Recover recovers any error into an *Error. If the passed-in Error is already
// an error, it is simply returned; otherwise it is wrapped in an error.
func Recover(err error) *Error {
	if err == nil {
		return nil
	}
	if err, ok := err.(*Error); ok {
		return err
	}
	return E(err).(*Error)
}

// Error returns a human readable string describing this error.
// It uses the separator defined by errors.Separator.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b bytes.Buffer
	if e.Message != "" {
		b.WriteString(e.Message)
	}
	if e.Kind != Other {
		pad(&b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Err == nil {
		return b.String()
	}
	if err, ok := e.Err.(*Error); ok {
		pad(&b, Separator)
		b.WriteString(err.Error())
	} else {
		pad(&b, ": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the error's cause so that the standard library's
// errors.Is and errors.As can traverse the chain.
func (e *Error) Unwrap() error { return e.Err }

// Is tells whether an error has a specified kind, except for the
// indeterminate kind Other. In the case an error has kind Other, the
// chain is traversed until a non-Other error is encountered.
func Is(kind Kind, err error) bool {
	if err == nil {
		return false
	}
	return is(kind, Recover(err))
}

func is(kind Kind, e *Error) bool {
	if e.Kind != Other {
		return e.Kind == kind
	}
	if e.Err != nil {
		if e2, ok := e.Err.(*Error); ok {
			return is(kind, e2)
		}
	}
	return false
}

// Match tells whether every nonempty field in err1
// matches the corresponding fields in err2. The comparison
// recurses on chained errors. Match is designed to aid in
// testing errors.
func Match(err1, err2 error) bool {
	var (
		e1 = Recover(err1)
		e2 = Recover(err2)
	)
	if e1.Kind != Other && e1.Kind != e2.Kind {
		return false
	}
	if e1.Message != "" && e1.Message != e2.Message {
		return false
	}
	if e1.Err != nil {
		if e2.Err == nil {
			return false
		}
		switch e1.Err.(type) {
		case *Error:
			return Match(e1.Err, e2.Err)
		default:
			return e1.Err.Error() == e2.Err.Error()
		}
	}
	return true
}

// New is synonymous with errors.New, and is provided here so that
// users need only import one errors package.
func New(msg string) error {
	return errors.New(msg)
}

func pad(b *bytes.Buffer, s string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(s)
}
