package webnovel

import (
	"errors"
	"fmt"
	"strings"
)

// Application error codes.
const (
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
	ENETWORK  = "network"
	EPARSE    = "parse"
	EDATABASE = "database"
)

// ReasonCanceled marks an ENETWORK error caused by the caller stopping a
// download rather than by a failing request.
const ReasonCanceled = "canceled"

// Error represents an application-specific error. Code is one of the
// constants above; Fields names the offending inputs of an EINVALID error.
type Error struct {
	Code    string
	Message string
	Fields  []string
	Reason  string
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("webnovel error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// InvalidFields returns an EINVALID error naming every missing or malformed field.
func InvalidFields(fields []string, format string, args ...any) *Error {
	e := Errorf(EINVALID, format, args...)
	e.Fields = append([]string(nil), fields...)
	return e
}

// Canceled returns the error reported when a download is stopped by its caller.
func Canceled(format string, args ...any) *Error {
	e := Errorf(ENETWORK, format, args...)
	e.Reason = ReasonCanceled
	return e
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		if len(e.Fields) > 0 {
			return e.Message + " (" + strings.Join(e.Fields, ", ") + ")"
		}
		return e.Message
	}
	return "Internal error."
}

// ErrorFields returns the fields named by an EINVALID error.
func ErrorFields(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// IsCanceled reports whether err records a caller-initiated cancellation.
func IsCanceled(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ENETWORK && e.Reason == ReasonCanceled
}
