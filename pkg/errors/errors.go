// Package errors provides structured error handling for walletbridge.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes for CLI surfaces.
const (
	ExitSuccess  = 0 // Successful execution
	ExitGeneral  = 1 // General/unknown error
	ExitInput    = 2 // Invalid input
	ExitRejected = 3 // User rejected the request
	ExitNotFound = 4 // Resource not found
	ExitState    = 5 // Operation invalid in the current session state
)

// BridgeError is the structured error type for walletbridge.
// Every error crossing the public boundary is a BridgeError; raw provider
// and collaborator errors are carried only as the Cause.
type BridgeError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *BridgeError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *BridgeError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for BridgeError.
func (e *BridgeError) Is(target error) bool {
	var t *BridgeError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &BridgeError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &BridgeError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	// Session-state errors.
	ErrNotConnected = &BridgeError{
		Code:     "NOT_CONNECTED",
		Message:  "no wallet is connected",
		ExitCode: ExitState,
	}

	ErrWalletNotReady = &BridgeError{
		Code:     "WALLET_NOT_READY",
		Message:  "wallet is not installed or loadable",
		ExitCode: ExitState,
	}

	ErrAccountMissing = &BridgeError{
		Code:     "ACCOUNT_MISSING",
		Message:  "no account is bound to the session",
		ExitCode: ExitState,
	}

	ErrWalletNotFound = &BridgeError{
		Code:     "WALLET_NOT_FOUND",
		Message:  "wallet not found in registry",
		ExitCode: ExitNotFound,
	}

	// Connection lifecycle errors.
	ErrConnectionRejected = &BridgeError{
		Code:     "CONNECTION_REJECTED",
		Message:  "connection request rejected by user",
		ExitCode: ExitRejected,
	}

	ErrConnectionFailed = &BridgeError{
		Code:     "CONNECTION_FAILED",
		Message:  "wallet connection failed",
		ExitCode: ExitGeneral,
	}

	ErrDisconnectionFailed = &BridgeError{
		Code:     "DISCONNECTION_FAILED",
		Message:  "wallet disconnection failed",
		ExitCode: ExitGeneral,
	}

	// Capability errors.
	ErrUnsupportedMethod = &BridgeError{
		Code:     "UNSUPPORTED_METHOD",
		Message:  "wallet does not support this method",
		ExitCode: ExitState,
	}

	// Signing and submission errors.
	ErrSignFailed = &BridgeError{
		Code:     "SIGN_FAILED",
		Message:  "transaction signing failed",
		ExitCode: ExitGeneral,
	}

	ErrSignAndSubmitFailed = &BridgeError{
		Code:     "SIGN_AND_SUBMIT_FAILED",
		Message:  "transaction signing and submission failed",
		ExitCode: ExitGeneral,
	}

	ErrSubmitFailed = &BridgeError{
		Code:     "SUBMIT_FAILED",
		Message:  "transaction submission failed",
		ExitCode: ExitGeneral,
	}

	ErrSignMessageFailed = &BridgeError{
		Code:     "SIGN_MESSAGE_FAILED",
		Message:  "message signing failed",
		ExitCode: ExitGeneral,
	}

	// Network and account change errors.
	ErrNetworkChangeRejected = &BridgeError{
		Code:     "NETWORK_CHANGE_REJECTED",
		Message:  "network change rejected by user",
		ExitCode: ExitRejected,
	}

	ErrNetworkChangeUnsupported = &BridgeError{
		Code:     "NETWORK_CHANGE_UNSUPPORTED",
		Message:  "wallet does not support changing networks",
		ExitCode: ExitState,
	}

	ErrAccountChangeFailed = &BridgeError{
		Code:     "ACCOUNT_CHANGE_FAILED",
		Message:  "account change subscription failed",
		ExitCode: ExitGeneral,
	}

	ErrNetworkChangeFailed = &BridgeError{
		Code:     "NETWORK_CHANGE_FAILED",
		Message:  "network change subscription failed",
		ExitCode: ExitGeneral,
	}

	// Transaction safety errors.
	ErrMaliciousTransaction = &BridgeError{
		Code:     "MALICIOUS_TRANSACTION",
		Message:  "transaction targets a known malicious entry function",
		ExitCode: ExitInput,
	}

	ErrUnsupportedScheme = &BridgeError{
		Code:     "UNSUPPORTED_SIGNATURE_SCHEME",
		Message:  "signed transaction uses an unsupported signature scheme",
		ExitCode: ExitInput,
	}

	ErrDecodeFailed = &BridgeError{
		Code:     "DECODE_FAILED",
		Message:  "failed to decode signed transaction bytes",
		ExitCode: ExitInput,
	}
)

// New creates a new BridgeError with the given code and message.
func New(code, message string) *BridgeError {
	return &BridgeError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var be *BridgeError
	if errors.As(err, &be) {
		return &BridgeError{
			Code:       be.Code,
			Message:    fmt.Sprintf("%s: %s", msg, be.Message),
			Details:    be.Details,
			Suggestion: be.Suggestion,
			Cause:      err,
			ExitCode:   be.ExitCode,
		}
	}

	return &BridgeError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// Normalize converts an arbitrary error into the given sentinel, preserving
// the original as the cause. A nil err returns nil. An err that already
// carries the sentinel's code is returned unchanged so double normalization
// does not stack messages.
func Normalize(sentinel *BridgeError, err error) error {
	if err == nil {
		return nil
	}

	var be *BridgeError
	if errors.As(err, &be) && be.Code == sentinel.Code {
		return err
	}

	return &BridgeError{
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		Cause:    err,
		ExitCode: sentinel.ExitCode,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var be *BridgeError
	if errors.As(err, &be) {
		return &BridgeError{
			Code:       be.Code,
			Message:    be.Message,
			Details:    details,
			Suggestion: be.Suggestion,
			Cause:      be.Cause,
			ExitCode:   be.ExitCode,
		}
	}

	return &BridgeError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var be *BridgeError
	if errors.As(err, &be) {
		return &BridgeError{
			Code:       be.Code,
			Message:    be.Message,
			Details:    be.Details,
			Suggestion: suggestion,
			Cause:      be.Cause,
			ExitCode:   be.ExitCode,
		}
	}

	return &BridgeError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var be *BridgeError
	if errors.As(err, &be) {
		return be.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var be *BridgeError
	if errors.As(err, &be) {
		return be.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
