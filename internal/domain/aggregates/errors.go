package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode standardizes aggregate failure semantics across the ledger.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeNotFound           ErrorCode = "not_found"
	CodeConflict           ErrorCode = "conflict"
	CodeInvariantViolation ErrorCode = "invariant_violation"
	CodePreconditionFailed ErrorCode = "precondition_failed"
	CodeRetryable          ErrorCode = "retryable"
	CodeInternal           ErrorCode = "internal"

	// Transfer marketplace codes.
	CodeNotAvailable           ErrorCode = "not_available"
	CodeAlreadyListed          ErrorCode = "already_listed"
	CodeInsufficientFunds      ErrorCode = "insufficient_funds"
	CodeSelfPurchase           ErrorCode = "self_purchase"
	CodePriceMismatch          ErrorCode = "price_mismatch"
	CodePlayerNotOwned         ErrorCode = "player_not_owned"
	CodeInvalidTransition      ErrorCode = "invalid_transition"
	CodeConcurrentModification ErrorCode = "concurrent_modification"
	CodeInfrastructureFailure  ErrorCode = "infrastructure_failure"
)

// User-facing messages for marketplace failures.
const (
	MsgNotAvailable      = "Player is not available for transfer."
	MsgAlreadyListed     = "Player is already listed for transfer."
	MsgInsufficientFunds = "Insufficient funds for transfer."
	MsgSelfPurchase      = "Cannot purchase your own player."
	MsgPriceMismatch     = "Transfer fee does not match asking price."
	MsgPlayerNotOwned    = "Player not found or does not belong to your team."
)

// Error is the canonical aggregate error wrapper.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an aggregate error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with aggregate error semantics.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// IsCode checks whether err (or wrapped err) carries the given aggregate code.
func IsCode(err error, code ErrorCode) bool {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return false
	}
	return aggErr.Code == code
}

// CodeOf extracts the outermost aggregate error code when available.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

// MessageOf returns the message of the outermost aggregate error, or "".
func MessageOf(err error) string {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Message
}

// IsDomainRejection reports whether err is a business-rule rejection that a
// caller can act on, as opposed to an infrastructure failure.
func IsDomainRejection(err error) bool {
	switch CodeOf(err) {
	case CodeNotAvailable, CodeAlreadyListed, CodeInsufficientFunds, CodeSelfPurchase,
		CodePriceMismatch, CodePlayerNotOwned, CodeValidation, CodeNotFound, CodeInvalidTransition:
		return true
	default:
		return false
	}
}
