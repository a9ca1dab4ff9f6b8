package domain

import (
	"errors"
	"fmt"
)

// Kind groups error codes into the categories callers branch on.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidInput Kind = "invalid_input"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindTransient    Kind = "transient"
	KindAuth         Kind = "auth"
	KindInternal     Kind = "internal"
)

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Kind    Kind   `json:"-"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// KindOf reports the category of err. Errors that are not AppErrors are internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf returns the AppError code carried by err, or INTERNAL_ERROR.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "INTERNAL_ERROR"
}

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Kind: KindNotFound, Status: 404}
}

// ErrOddsNotFound is returned when a match has no active price for an outcome.
func ErrOddsNotFound(matchID int64, outcome Outcome) *AppError {
	return &AppError{Code: "ODDS_NOT_FOUND", Message: fmt.Sprintf("no active odds for %s on match %d", outcome, matchID), Kind: KindNotFound, Status: 404}
}

func ErrConflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Kind: KindConflict, Status: 409}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Kind: KindInvalidInput, Status: 400}
}

func ErrInvalidState(msg string) *AppError {
	return &AppError{Code: "INVALID_STATE", Message: msg, Kind: KindInvalidState, Status: 422}
}

// ErrMatchNotStarted is returned when settling a match that is still scheduled.
func ErrMatchNotStarted(matchID int64) *AppError {
	return &AppError{Code: "MATCH_NOT_STARTED", Message: fmt.Sprintf("match %d has not been played", matchID), Kind: KindInvalidState, Status: 422}
}

// ErrMissingResult is returned when settling a match without both goal counts.
func ErrMissingResult(matchID int64) *AppError {
	return &AppError{Code: "MISSING_RESULT", Message: fmt.Sprintf("match %d has no recorded result", matchID), Kind: KindInvalidState, Status: 422}
}

func ErrBettingClosed(msg string) *AppError {
	return &AppError{Code: "BETTING_CLOSED", Message: msg, Kind: KindInvalidState, Status: 422}
}

func ErrUnavailable(msg string, cause error) *AppError {
	return &AppError{Code: "UNAVAILABLE", Message: msg, Kind: KindTransient, Status: 503, Cause: cause}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Kind: KindAuth, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Kind: KindAuth, Status: 403}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: "RATE_LIMITED", Message: msg, Kind: KindAuth, Status: 429}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Kind: KindInternal, Status: 500, Cause: cause}
}
