// Package apperr defines the abstract error kinds the service raises
// and maps them to HTTP status codes at the transport boundary, so
// handlers stop repeating fiber.NewError(status, msg) per call site.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind is one of the abstract error categories the service raises.
type Kind int

const (
	// KindValidation covers a missing/malformed payload or a violated
	// local constraint.
	KindValidation Kind = iota
	// KindAuthorization covers a caller lacking the membership or
	// counterparty role required for a mutation.
	KindAuthorization
	// KindNotFound covers a missing or invisible target entity.
	KindNotFound
	// KindConflict covers a uniqueness or state-precondition violation.
	KindConflict
	// KindTransient covers a data-store or upstream failure that may
	// succeed on retry.
	KindTransient
	// KindInternal covers invariant violations never exposed in detail.
	KindInternal
)

// Error is the concrete error type every service in this module
// returns for expected failure paths.
type Error struct {
	Kind    Kind
	Message string
	Details string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error of the given kind that carries cause as context
// without exposing it directly (callers of Error() still see cause's
// text, but HTTP responses built from this type never do — see FiberHandler).
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func Authorization(format string, args ...any) *Error {
	return New(KindAuthorization, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func Transient(cause error) *Error {
	return Wrap(KindTransient, "temporarily unavailable", cause)
}

func Internal(cause error) *Error {
	return Wrap(KindInternal, "internal error", cause)
}

// As extracts an *Error from err, if any is present in its chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// statusFor maps a Kind to its HTTP status code.
func statusFor(k Kind) int {
	switch k {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindAuthorization:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindTransient:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// FiberHandler is installed as fiber.Config{ErrorHandler: ...} so every
// handler can simply `return err` and have it translated consistently.
func FiberHandler(c *fiber.Ctx, err error) error {
	if e, ok := As(err); ok {
		msg := e.Message
		if e.Kind == KindInternal {
			msg = "internal error"
		}
		body := fiber.Map{"error": msg}
		if e.Details != "" {
			body["details"] = e.Details
		}
		return c.Status(statusFor(e.Kind)).JSON(body)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
