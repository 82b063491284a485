package merek

import (
	"errors"
	"fmt"
)

type OutcomeKind int

// Every step ends in exactly one of these kinds.
const (
	OUTCOME_SUCCESS OutcomeKind = iota
	OUTCOME_AUTHENTICATION_FAILED
	OUTCOME_SESSION_EXPIRED
	OUTCOME_VALIDATION_FAILED
	OUTCOME_UPSTREAM_ERROR
)

func (k OutcomeKind) String() string {
	switch k {
	case OUTCOME_SUCCESS:
		return "success"
	case OUTCOME_AUTHENTICATION_FAILED:
		return "authentication_failed"
	case OUTCOME_SESSION_EXPIRED:
		return "session_expired"
	case OUTCOME_VALIDATION_FAILED:
		return "validation_failed"
	case OUTCOME_UPSTREAM_ERROR:
		return "upstream_error"
	}
	return fmt.Sprintf("outcome(%d)", int(k))
}

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrSessionExpired       = errors.New("session expired")
	ErrValidationFailed     = errors.New("validation failed")
	ErrUpstream             = errors.New("upstream error")
)

// Stable messages handed to callers, details of what went wrong only go to telemetry.
const (
	messageLoginFailed       = "Login failed. Invalid username, password, or CAPTCHA."
	messageSessionExpired    = "The portal session has expired, please log in again."
	messageUpstream          = "The portal returned an unexpected response."
	messageUnreadablePage    = "The portal page could not be read, the session may not be logged in."
	messageRecognitionFailed = "The CAPTCHA could not be recognized, fetch a new challenge and try again."
)

// Outcome is the result of a workflow step. Value is only meaningful when Kind is
// OUTCOME_SUCCESS, Message is only set when it is not. Session is always the session
// to use for the next step.
type Outcome[T any] struct {
	Kind    OutcomeKind
	Value   T
	Message string
	Session Session
}

func (o Outcome[T]) Ok() bool {
	return o.Kind == OUTCOME_SUCCESS
}

// Err converts a failed outcome into an error wrapping one of the Err* sentinels,
// it returns nil on success.
func (o Outcome[T]) Err() error {
	var sentinel error
	switch o.Kind {
	case OUTCOME_SUCCESS:
		return nil
	case OUTCOME_AUTHENTICATION_FAILED:
		sentinel = ErrAuthenticationFailed
	case OUTCOME_SESSION_EXPIRED:
		sentinel = ErrSessionExpired
	case OUTCOME_VALIDATION_FAILED:
		sentinel = ErrValidationFailed
	default:
		sentinel = ErrUpstream
	}
	return fmt.Errorf("%w: %s", sentinel, o.Message)
}

// ParseError means the html the portal returned did not have the structure we
// expected, either the markup changed or we were shown a different page (ex. the
// login page instead of the edit page).
type ParseError struct {
	Page    string
	Missing string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: could not find %s", e.Page, e.Missing)
}

// stepError carries the outcome kind a failed step should end in alongside
// the cause that only telemetry gets to see.
type stepError struct {
	kind    OutcomeKind
	message string
	cause   error
}

func (e *stepError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.kind, e.message)
	}
	return fmt.Sprintf("%s: %s: %s", e.kind, e.message, e.cause)
}

func (e *stepError) Unwrap() error {
	return e.cause
}

func authenticationFailed(message string) error {
	return &stepError{kind: OUTCOME_AUTHENTICATION_FAILED, message: message}
}

func sessionExpired(cause error) error {
	return &stepError{kind: OUTCOME_SESSION_EXPIRED, message: messageSessionExpired, cause: cause}
}

func validationFailed(message string) error {
	return &stepError{kind: OUTCOME_VALIDATION_FAILED, message: message}
}

func upstreamError(cause error) error {
	message := messageUpstream
	var parseErr *ParseError
	if errors.As(cause, &parseErr) {
		message = messageUnreadablePage
	}
	if errors.Is(cause, ErrRecognitionFailed) {
		message = messageRecognitionFailed
	}
	return &stepError{kind: OUTCOME_UPSTREAM_ERROR, message: message, cause: cause}
}

// toOutcome turns the result of a step into an Outcome. A session is only carried
// over with its token when the step succeeded or never reached the portal.
func toOutcome[T any](next Session, value T, err error) Outcome[T] {
	if err == nil {
		return Outcome[T]{Kind: OUTCOME_SUCCESS, Value: value, Session: next}
	}

	var serr *stepError
	if !errors.As(err, &serr) {
		serr = upstreamError(err).(*stepError)
	}
	if serr.kind != OUTCOME_VALIDATION_FAILED {
		next = next.WithoutToken()
	}
	return Outcome[T]{Kind: serr.kind, Message: serr.message, Session: next}
}
