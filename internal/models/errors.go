package models

import (
	"errors"
	"fmt"
)

// Error kinds shared by repositories, services and handlers
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("authentication error")
	ErrForbidden    = errors.New("authorization error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrStorage      = errors.New("storage error")
)

// Error is a user-facing message tagged with one of the error kinds
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is and errors.As
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Errorf creates an error of the given kind with a formatted message
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags err with a kind and a message
func Wrap(kind error, err error, msg string) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Message returns the user-facing part of err. Causes wrapped with Wrap are omitted.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Msg
	}
	return err.Error()
}
