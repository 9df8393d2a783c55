package property

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a property model failure
type ErrorType int

const (
	// ErrTypeMalformedValue indicates a wire string failed its kind-specific shape check
	ErrTypeMalformedValue ErrorType = iota
	// ErrTypeUnknownProperty indicates the device declares no property for the status code
	ErrTypeUnknownProperty
	// ErrTypeNotSettable indicates a mutation on a property with set=false
	ErrTypeNotSettable
	// ErrTypePropertyNotPresent indicates no current value exists for the status code
	ErrTypePropertyNotPresent
	// ErrTypeInvalidFieldValue indicates a composite state field was given an out-of-domain value
	ErrTypeInvalidFieldValue
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeMalformedValue:
		return "Malformed Value"
	case ErrTypeUnknownProperty:
		return "Unknown Property"
	case ErrTypeNotSettable:
		return "Not Settable"
	case ErrTypePropertyNotPresent:
		return "Property Not Present"
	case ErrTypeInvalidFieldValue:
		return "Invalid Field Value"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned by every operation in this package and by the packages
// layered on top of it (state, device).
type Error struct {
	Type    ErrorType  // Category of error
	Code    StatusCode // Status code involved (if any)
	Field   string     // Composite state field involved (if any)
	Message string     // Human-readable message
	Err     error      // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	subject := ""
	switch {
	case e.Code != "" && e.Field != "":
		subject = fmt.Sprintf(" [%s.%s]", e.Code, e.Field)
	case e.Code != "":
		subject = fmt.Sprintf(" [%s]", e.Code)
	case e.Field != "":
		subject = fmt.Sprintf(" [%s]", e.Field)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s%s: %s (caused by: %v)", e.Type, subject, e.Message, e.Err)
	}
	return fmt.Sprintf("%s%s: %s", e.Type, subject, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewMalformedValueError creates a MalformedValue error
func NewMalformedValueError(code StatusCode, message string, err error) *Error {
	return &Error{Type: ErrTypeMalformedValue, Code: code, Message: message, Err: err}
}

// NewUnknownPropertyError creates an UnknownProperty error
func NewUnknownPropertyError(code StatusCode) *Error {
	return &Error{
		Type:    ErrTypeUnknownProperty,
		Code:    code,
		Message: "property does not exist on this device",
	}
}

// NewNotSettableError creates a NotSettable error
func NewNotSettableError(code StatusCode, name string) *Error {
	msg := "property is not settable"
	if name != "" {
		msg = fmt.Sprintf("property %s is not settable", name)
	}
	return &Error{Type: ErrTypeNotSettable, Code: code, Message: msg}
}

// NewPropertyNotPresentError creates a PropertyNotPresent error
func NewPropertyNotPresentError(code StatusCode) *Error {
	return &Error{
		Type:    ErrTypePropertyNotPresent,
		Code:    code,
		Message: "no current value for property",
	}
}

// NewInvalidFieldValueError creates an InvalidFieldValue error
func NewInvalidFieldValueError(field string, message string) *Error {
	return &Error{Type: ErrTypeInvalidFieldValue, Field: field, Message: message}
}

func hasType(err error, t ErrorType) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Type == t
	}
	return false
}

// IsMalformedValue checks if an error is a MalformedValue error
func IsMalformedValue(err error) bool {
	return hasType(err, ErrTypeMalformedValue)
}

// IsUnknownProperty checks if an error is an UnknownProperty error
func IsUnknownProperty(err error) bool {
	return hasType(err, ErrTypeUnknownProperty)
}

// IsNotSettable checks if an error is a NotSettable error
func IsNotSettable(err error) bool {
	return hasType(err, ErrTypeNotSettable)
}

// IsPropertyNotPresent checks if an error is a PropertyNotPresent error
func IsPropertyNotPresent(err error) bool {
	return hasType(err, ErrTypePropertyNotPresent)
}

// IsInvalidFieldValue checks if an error is an InvalidFieldValue error
func IsInvalidFieldValue(err error) bool {
	return hasType(err, ErrTypeInvalidFieldValue)
}
