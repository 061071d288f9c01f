package domain

import (
	"errors"
	"net/http"
	"strconv"
)

// Kind classifies an Error for the HTTP boundary.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindBusiness        Kind = "business"
	KindRateLimited     Kind = "rate_limited"
	KindUnavailable     Kind = "unavailable"
	KindUpstream        Kind = "upstream"
	KindInternal        Kind = "internal"
)

var kindStatus = map[Kind]int{
	KindValidation:      http.StatusBadRequest,
	KindUnauthenticated: http.StatusUnauthorized,
	KindForbidden:       http.StatusForbidden,
	KindNotFound:        http.StatusNotFound,
	KindConflict:        http.StatusConflict,
	KindBusiness:        http.StatusBadRequest,
	KindRateLimited:     http.StatusTooManyRequests,
	KindUnavailable:     http.StatusServiceUnavailable,
	KindUpstream:        http.StatusServiceUnavailable,
	KindInternal:        http.StatusInternalServerError,
}

// Error is the single error type crossing service boundaries.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Field   string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches sentinel errors by kind and message so that wrapped copies
// produced by With still compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// With returns a copy of e carrying cause.
func (e *Error) With(cause error) *Error {
	cp := *e
	cp.Cause = cause
	return &cp
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Status: kindStatus[kind], Message: msg}
}

func Validation(field, msg string) *Error {
	e := newError(KindValidation, msg)
	e.Field = field
	return e
}

func Unauthenticated(msg string) *Error { return newError(KindUnauthenticated, msg) }
func Forbidden(msg string) *Error       { return newError(KindForbidden, msg) }
func NotFound(msg string) *Error        { return newError(KindNotFound, msg) }
func Conflict(msg string) *Error        { return newError(KindConflict, msg) }
func Business(msg string) *Error        { return newError(KindBusiness, msg) }
func RateLimited(msg string) *Error     { return newError(KindRateLimited, msg) }
func Unavailable(msg string) *Error     { return newError(KindUnavailable, msg) }

func Internal(cause error) *Error {
	e := newError(KindInternal, "internal server error")
	e.Cause = cause
	return e
}

// upstreamStatus is implemented by provider errors that know the HTTP
// status returned by the model provider.
type upstreamStatus interface {
	UpstreamStatus() int
}

// Upstream wraps a model provider failure. The provider status, when
// known, is echoed in the message.
func Upstream(cause error) *Error {
	e := newError(KindUpstream, "upstream model unavailable")
	e.Cause = cause
	var us upstreamStatus
	if errors.As(cause, &us) && us.UpstreamStatus() > 0 {
		e.Message = "upstream model unavailable (status " + strconv.Itoa(us.UpstreamStatus()) + ")"
	}
	return e
}

// UpstreamStatusOf returns the provider status carried by err, or 0.
func UpstreamStatusOf(err error) int {
	var us upstreamStatus
	if errors.As(err, &us) {
		return us.UpstreamStatus()
	}
	return 0
}

// AsError converts any error into a *Error, defaulting to internal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

var (
	ErrUserNotFound        = NotFound("user not found")
	ErrChatNotFound        = NotFound("chat not found")
	ErrMessageNotFound     = NotFound("message not found")
	ErrModelNotFound       = NotFound("model not found")
	ErrEmailTaken          = Conflict("email already registered")
	ErrModelNameTaken      = Conflict("model name already exists")
	ErrInvalidCredentials  = Unauthenticated("invalid email or password")
	ErrWrongPassword       = Unauthenticated("current password is incorrect")
	ErrTokenMissing        = Unauthenticated("authorization token missing")
	ErrTokenInvalid        = Unauthenticated("invalid token")
	ErrTokenExpired        = Unauthenticated("token expired")
	ErrAdminOnly           = Forbidden("admin role required")
	ErrInsufficientCredits = Business("insufficient credits")
	ErrNoEnabledModel      = Unavailable("no enabled model configured")
	ErrTooManyRequests     = RateLimited("too many requests")
)
