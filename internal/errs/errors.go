// Package errs provides the unified error type used across all of typegen.
//
// Every stage (catalog readers, normalizer, config, verifier, output storage)
// wraps its native errors into *errs.Error before returning them to callers.
// The CLI boundary uses the Is* predicates to decide how to report a failure
// and which exit code to use, without importing driver-specific packages.
//
// Usage:
//
//	// In a driver, wrap native errors:
//	return errs.Wrap(errs.ErrKindTimeout, "query timed out", pgErr)
//
//	// At the boundary, check the error class:
//	if errs.IsCatalog(err) {
//	    log.Errorf("could not read the database catalog: %v", err)
//	}
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // no rows, no object, no bucket
	ErrKindConnectionFailed         // cannot reach the backend
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindQueryFailed              // SQL or storage operation error
	ErrKindInvalidInput             // bad arguments from the caller
	ErrKindPermissionDenied         // access denied / auth failure

	ErrKindInvalidConfig        // configuration value failed validation
	ErrKindUnresolvedEnum       // column references an enum missing from the catalog
	ErrKindVerificationMismatch // generated output differs from the stored copy
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindInvalidConfig:
		return "invalid_config"
	case ErrKindUnresolvedEnum:
		return "unresolved_enum_reference"
	case ErrKindVerificationMismatch:
		return "verification_mismatch"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all typegen subsystems.
type Error struct {
	Kind    ErrKind
	Message string
	// Path locates the offending configuration field (e.g. ["overrides", "columns"]).
	// Only set for ErrKindInvalidConfig.
	Path  []string
	Cause error // original driver-level error, preserved for logging
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Path) > 0 {
		msg = strings.Join(e.Path, ".") + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Config creates an invalid-configuration error located at path.
func Config(msg string, path ...string) *Error {
	return &Error{Kind: ErrKindInvalidConfig, Message: msg, Path: path}
}

// UnresolvedEnum reports a column whose enum type is absent from the catalog.
func UnresolvedEnum(column, enum string) *Error {
	return &Error{
		Kind:    ErrKindUnresolvedEnum,
		Message: fmt.Sprintf("column %s references unknown enum %s", column, enum),
	}
}

// Mismatch reports that freshly generated output differs from the stored copy at location.
func Mismatch(location string) *Error {
	return &Error{
		Kind:    ErrKindVerificationMismatch,
		Message: fmt.Sprintf("generated types are not up to date with %s", location),
	}
}

// --- Predicates ---

// IsNotFound reports whether err represents a "not found" result.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a connectivity or auth failure.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsQueryFailed reports whether err is a backend operation failure.
func IsQueryFailed(err error) bool {
	return KindOf(err) == ErrKindQueryFailed
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// IsCatalog reports whether err came from talking to the database catalog
// (connectivity, timeouts, failed queries, missing objects, permissions).
func IsCatalog(err error) bool {
	switch KindOf(err) {
	case ErrKindConnectionFailed, ErrKindTimeout, ErrKindQueryFailed,
		ErrKindNotFound, ErrKindPermissionDenied:
		return true
	}
	return false
}

// IsConfig reports whether err is a configuration validation failure.
func IsConfig(err error) bool {
	return KindOf(err) == ErrKindInvalidConfig
}

// IsUnresolvedEnum reports whether err is an unresolved enum reference.
func IsUnresolvedEnum(err error) bool {
	return KindOf(err) == ErrKindUnresolvedEnum
}

// IsVerificationMismatch reports whether err signals drift detected in verify mode.
func IsVerificationMismatch(err error) bool {
	return KindOf(err) == ErrKindVerificationMismatch
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}

// PathOf returns the configuration path carried by err, if any.
func PathOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Path
	}
	return nil
}
