package middleware

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowblog/internal/domain"
	"flowblog/internal/pkg/logger"
	"flowblog/internal/service/auth"
	"flowblog/internal/service/user"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorHandler returns the fiber ErrorHandler. Internal errors are logged
// with their trace id and never echoed to the client.
func NewErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	log = logger.OrNop(log)

	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"
		errorCode := "INTERNAL_ERROR"
		traceID := uuid.New().String()[:8]

		var e *fiber.Error
		if errors.As(MapError(err), &e) {
			code = e.Code
			message = e.Message
			errorCode = codeFor(code)
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("trace_id", traceID),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(ErrorResponse{
			Code:    errorCode,
			Message: message,
			TraceID: traceID,
		})
	}
}

// MapError translates domain and service errors to HTTP errors. Unknown
// errors are returned unchanged.
func MapError(err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, validationMessage(ve))
	}

	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrPostNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return NotFound(err.Error())

	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, auth.ErrEmailNotVerified),
		errors.Is(err, auth.ErrAccountDisabled):
		return Forbidden(err.Error())

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return Unauthorized(err.Error())

	case errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, auth.ErrUsernameExists),
		errors.Is(err, domain.ErrPostNotPublished):
		return Conflict(err.Error())

	case errors.Is(err, domain.ErrInvalidParent),
		errors.Is(err, domain.ErrInvalidInterval),
		errors.Is(err, domain.ErrInvalidReadProgress),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrVerificationTokenExpired),
		errors.Is(err, user.ErrCannotModifySelf):
		return BadRequest(err.Error())

	case errors.Is(err, domain.ErrProfaneContent):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, domain.ErrFilterNotReady),
		errors.Is(err, domain.ErrStorageUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}

	return err
}

func codeFor(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	case fiber.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		if status >= fiber.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return "ERROR"
	}
}

func NewError(code int, message string) *fiber.Error {
	return fiber.NewError(code, message)
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

func Forbidden(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusForbidden, message)
}

func NotFound(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusNotFound, message)
}

func Conflict(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusConflict, message)
}
