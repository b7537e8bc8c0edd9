package utils

import (
	"errors"
	"net/http"
)

// ErrorKind is the coarse classification every failing operation maps to.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindConflict      ErrorKind = "conflict"
	KindNotFound      ErrorKind = "not_found"
	KindAuthorization ErrorKind = "authorization"
)

// Stable machine-readable codes surfaced alongside the kind.
const (
	CodeInvalidDateRange      = "invalid_date_range"
	CodeInvalidPayload        = "invalid_payload"
	CodeAmountMismatch        = "amount_mismatch"
	CodeMissingProof          = "missing_proof"
	CodeInvalidTransition     = "invalid_transition"
	CodeCapacityExceeded      = "capacity_exceeded"
	CodeInvalidCapacityChange = "invalid_capacity_change"
	CodeOverlappingRequest    = "overlapping_request"
	CodeRoomUnavailable       = "room_unavailable"
	CodePaymentNotVerified    = "payment_not_verified"
	CodeAssignmentNotApproved = "assignment_not_approved"
	CodeActivationConflict    = "activation_conflict"
	CodeDuplicatePayment      = "duplicate_payment"
	CodeDuplicateEntry        = "duplicate_entry"
	CodeNotFound              = "not_found"
	CodeForbidden             = "forbidden"
)

// AppError carries a kind + stable code so callers can branch without
// string matching the message.
type AppError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func ValidationError(code, message string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: message}
}

func ConflictError(code, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

func NotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: CodeNotFound, Message: message}
}

func AuthorizationError(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Code: CodeForbidden, Message: message}
}

// AsAppError unwraps err to an *AppError if one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
