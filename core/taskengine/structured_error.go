package taskengine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a node or a run did not succeed
type ErrorKind string

const (
	// Run level, fatal before any node executes
	PreconditionFailed ErrorKind = "PreconditionFailed"
	// Node is skipped
	ValidationFailed ErrorKind = "ValidationFailed"
	// A port returned an error
	ExternalCallFailed ErrorKind = "ExternalCallFailed"
	// Unknown node type (skipped) or unknown function name (failed)
	UnsupportedOperation ErrorKind = "UnsupportedOperation"

	InvalidParameters   ErrorKind = "InvalidParameters"
	InvalidJSON         ErrorKind = "InvalidJSON"
	InvalidAddress      ErrorKind = "InvalidAddress"
	DataNotFound        ErrorKind = "DataNotFound"
	UnsupportedFunction ErrorKind = "UnsupportedFunction"
	// Chain changed mid-run, aborts the remaining nodes
	NetworkMismatch ErrorKind = "NetworkMismatch"
)

// StructuredError provides consistent error handling with error kinds
type StructuredError struct {
	Kind    ErrorKind
	Message string
	Details map[string]interface{}

	err error
}

// Error implements the error interface
func (e *StructuredError) Error() string {
	return e.Message
}

func (e *StructuredError) Unwrap() error {
	return e.err
}

// GetKind returns the error kind
func (e *StructuredError) GetKind() ErrorKind {
	return e.Kind
}

// GetDetails returns additional error details
func (e *StructuredError) GetDetails() map[string]interface{} {
	return e.Details
}

// NewStructuredError creates a new structured error
func NewStructuredError(kind ErrorKind, message string, details ...map[string]interface{}) *StructuredError {
	var detailsMap map[string]interface{}
	if len(details) > 0 {
		detailsMap = details[0]
	}

	return &StructuredError{
		Kind:    kind,
		Message: message,
		Details: detailsMap,
	}
}

// WrapStructuredError attaches a kind to an underlying error, keeping it
// reachable through errors.Is and errors.As
func WrapStructuredError(kind ErrorKind, err error, format string, args ...any) *StructuredError {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &StructuredError{
		Kind:    kind,
		Message: msg,
		err:     err,
	}
}

// NewMissingRequiredFieldError creates an error for missing required fields
func NewMissingRequiredFieldError(fieldName string) *StructuredError {
	return NewStructuredError(
		ValidationFailed,
		fmt.Sprintf("%s is required", fieldName),
		map[string]interface{}{"field": fieldName},
	)
}

// NewInvalidAddressError creates an error for invalid blockchain addresses
func NewInvalidAddressError(address string) *StructuredError {
	return NewStructuredError(
		InvalidAddress,
		fmt.Sprintf("invalid address: %s", address),
		map[string]interface{}{"address": address},
	)
}

func NewPortNotConfiguredError(port string) *StructuredError {
	return NewStructuredError(
		ExternalCallFailed,
		fmt.Sprintf("%s: %s", PortNotConfiguredError, port),
		map[string]interface{}{"port": port},
	)
}

// IsStructuredError checks if an error is a structured error and returns it
func IsStructuredError(err error) (*StructuredError, bool) {
	var structErr *StructuredError
	if errors.As(err, &structErr) {
		return structErr, true
	}
	return nil, false
}

// KindOf extracts the error kind. Chain mismatches are always
// NetworkMismatch; unclassified errors come from a port.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrChainMismatch) {
		return NetworkMismatch
	}
	if structErr, ok := IsStructuredError(err); ok {
		return structErr.GetKind()
	}
	return ExternalCallFailed
}
