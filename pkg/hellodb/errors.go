package hellodb

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	_, err := resolver.Resolve(ctx, ref)
//	if errors.Is(err, hellodb.ErrSecretResolution) {
//	    // Handle a parameter store failure
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSecretResolution indicates a secret could not be read from the store.
	ErrSecretResolution = errors.New("secret resolution failed")

	// ErrDatabase indicates the database could not be reached or queried.
	ErrDatabase = errors.New("database operation failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// SecretErrorKind classifies parameter store failures.
type SecretErrorKind int

const (
	SecretNotFound SecretErrorKind = iota
	SecretAccessDenied
	SecretInvalidKey
	SecretOther
)

// String returns a human-readable representation of the SecretErrorKind.
func (k SecretErrorKind) String() string {
	switch k {
	case SecretNotFound:
		return "NotFound"
	case SecretAccessDenied:
		return "AccessDenied"
	case SecretInvalidKey:
		return "InvalidKey"
	case SecretOther:
		return "Other"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// SecretError is returned by SecretResolver implementations.
// Error() is the user-facing text and is surfaced as-is by the greeting flow.
type SecretError struct {
	Kind SecretErrorKind
	Name string
	Err  error
}

// NewSecretError builds a SecretError for the named secret.
func NewSecretError(kind SecretErrorKind, name string, err error) *SecretError {
	return &SecretError{Kind: kind, Name: name, Err: err}
}

func (e *SecretError) Error() string {
	switch e.Kind {
	case SecretNotFound:
		return fmt.Sprintf("Secret '%s' does not exist", e.Name)
	case SecretAccessDenied:
		return fmt.Sprintf("Access denied to secret '%s'", e.Name)
	case SecretInvalidKey:
		return fmt.Sprintf("Invalid KMS key for secret '%s'", e.Name)
	}
	if e.Name == "" {
		if e.Err != nil {
			return e.Err.Error()
		}
		return "secret resolution failed"
	}
	if e.Err == nil {
		return fmt.Sprintf("Failed to retrieve secret '%s'", e.Name)
	}
	return fmt.Sprintf("Failed to retrieve secret '%s': %s", e.Name, e.Err.Error())
}

// Unwrap exposes the underlying store error.
func (e *SecretError) Unwrap() error {
	return e.Err
}

// Is makes every SecretError match ErrSecretResolution.
func (e *SecretError) Is(target error) bool {
	return target == ErrSecretResolution
}

// DatabaseFailureKind classifies database failures into friendly categories.
type DatabaseFailureKind int

const (
	DatabaseUnreachable DatabaseFailureKind = iota
	DatabaseAuthFailed
	DatabaseMissingObject
	DatabaseOther
)

// String returns a human-readable representation of the DatabaseFailureKind.
func (k DatabaseFailureKind) String() string {
	switch k {
	case DatabaseUnreachable:
		return "Unreachable"
	case DatabaseAuthFailed:
		return "AuthFailed"
	case DatabaseMissingObject:
		return "MissingObject"
	case DatabaseOther:
		return "Other"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// DatabaseFailure is a classified connect or query error.
// Error() returns the friendly description shown to end users.
type DatabaseFailure struct {
	Kind DatabaseFailureKind
	Err  error
}

func (e *DatabaseFailure) Error() string {
	switch e.Kind {
	case DatabaseUnreachable:
		return MessageUnreachable
	case DatabaseAuthFailed:
		return MessageAuthFailed
	case DatabaseMissingObject:
		return MessageMissingObject
	}
	if e.Err == nil {
		return strings.TrimSuffix(messageOtherPrefix, ": ")
	}
	return messageOtherPrefix + e.Err.Error()
}

// Unwrap exposes the raw driver error.
func (e *DatabaseFailure) Unwrap() error {
	return e.Err
}

// Is makes every DatabaseFailure match ErrDatabase.
func (e *DatabaseFailure) Is(target error) bool {
	return target == ErrDatabase
}

// Result converts the failure into a GreetingResult.
func (e *DatabaseFailure) Result() GreetingResult {
	return Failure(e.Error())
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrDatabase):
		return ExitConnectionError
	case errors.Is(err, ErrSecretResolution):
		return ExitGeneralError
	}

	if isUsageError(err.Error()) {
		return ExitUsageError
	}

	return ExitGeneralError
}

// isUsageError recognises the plain-text errors cobra and pflag return
// for bad arguments and flags.
func isUsageError(msg string) bool {
	for _, prefix := range []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"required flag",
		"invalid argument",
	} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return strings.HasPrefix(msg, "accepts ") && strings.Contains(msg, "arg(s)")
}
