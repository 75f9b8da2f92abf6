package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so Clone'd values still compare equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors. The event/enrollment workflow uses a closed set of kinds;
// none of them are retryable.
var (
	ErrInvalidCredentials     = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrEmailTaken             = New("EMAIL_TAKEN", http.StatusConflict, "email already registered")
	ErrNotFound               = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrNotAuthorized          = New("NOT_AUTHORIZED", http.StatusForbidden, "actor does not own this resource")
	ErrUnauthorized           = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation             = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal               = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrInvalidStateTransition = New("INVALID_STATE_TRANSITION", http.StatusConflict, "event status does not permit this transition")
	ErrEventNotOpen           = New("EVENT_NOT_OPEN", http.StatusConflict, "event is not open for enrollment")
	ErrEventNotRunning        = New("EVENT_NOT_RUNNING", http.StatusConflict, "event is not in progress")
	ErrCapacityExceeded       = New("CAPACITY_EXCEEDED", http.StatusConflict, "event has no remaining vacancies")
	ErrAlreadyEnrolled        = New("ALREADY_ENROLLED", http.StatusConflict, "participant already enrolled in event")
	ErrInvalidEnrollmentState = New("INVALID_ENROLLMENT_STATE", http.StatusConflict, "enrollment is not pending")
	ErrEnrollmentNotApproved  = New("ENROLLMENT_NOT_APPROVED", http.StatusConflict, "enrollment is not approved")
	ErrAlreadyCheckedIn       = New("ALREADY_CHECKED_IN", http.StatusConflict, "enrollment already checked in")
	ErrNotEligible            = New("NOT_ELIGIBLE", http.StatusPreconditionFailed, "event not finished or attendance not recorded")
	ErrDuplicateReview        = New("DUPLICATE_REVIEW", http.StatusConflict, "participant already reviewed this event")
	ErrInvalidRating          = New("INVALID_RATING", http.StatusBadRequest, "rating must be an integer between 1 and 5")
	ErrFriendshipExists       = New("FRIENDSHIP_EXISTS", http.StatusConflict, "friendship request already exists for this event")
	ErrInvalidFriendshipState = New("INVALID_FRIENDSHIP_STATE", http.StatusConflict, "friendship request is not pending")
	ErrNotFriends             = New("NOT_FRIENDS", http.StatusForbidden, "messages can only be exchanged between friends")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
