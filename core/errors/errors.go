// Package errors provides the error families shared by the study engine:
// lookup failures, input validation, parse failures, I/O, and the
// not-ready state reported while the module library is still loading.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a module or entry was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates user input that failed to parse or validate
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotReady indicates the module library has not been published yet
	ErrNotReady = errors.New("library not ready")
	// ErrInternal indicates an internal inconsistency in loaded data
	ErrInternal = errors.New("internal error")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// NotFoundError represents a missing module or entry.
type NotFoundError struct {
	Resource string // e.g. "module", "bible", "entry"
	ID       string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// LookupError reports a module that exists but cannot serve the request,
// such as a dictionary asked for its canon.
type LookupError struct {
	Module string
	Want   string
	Reason string
}

func (e *LookupError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("module %s is not a %s: %s", e.Module, e.Want, e.Reason)
	}
	return fmt.Sprintf("module %s is not a %s", e.Module, e.Want)
}

func (e *LookupError) Unwrap() error {
	return ErrInternal
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// NotReadyError is returned by every entry point until the library snapshot
// has been published.
type NotReadyError struct {
	Since string // human readable loading duration, optional
}

func (e *NotReadyError) Error() string {
	if e.Since != "" {
		return fmt.Sprintf("library not ready (loading for %s)", e.Since)
	}
	return "library not ready"
}

func (e *NotReadyError) Unwrap() error {
	return ErrNotReady
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a module file that could not be decoded.
type ParseError struct {
	Format  string // "JSON", "OSIS", "XHTML", "notebook"
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

// Unwrap exposes both the cause and ErrInvalidInput, so a parse failure
// always classifies as bad input.
func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string
	Reason  string
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// NewLookup creates a LookupError
func NewLookup(module, want, reason string) *LookupError {
	return &LookupError{Module: module, Want: want, Reason: reason}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{Format: format, Path: path, Message: message}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{Feature: feature, Reason: reason}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join wraps errors.Join for convenience
func Join(errs ...error) error {
	return errors.Join(errs...)
}
