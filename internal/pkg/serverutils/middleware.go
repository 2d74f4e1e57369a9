package serverutils

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"doc-assistant-be/internal/errs"
	"doc-assistant-be/pkg/llm"
)

// SessionHeader carries the client-generated per-tab session identifier.
const SessionHeader = "X-Session-ID"

var validate = validator.New()

// ValidateRequest checks struct `validate:` tags and maps violations to a
// caller-input error.
func ValidateRequest(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return errs.ErrValidation.WithDetail("%s", err.Error())
	}
	return nil
}

// SessionID extracts the session identifier header.
func SessionID(ctx *fiber.Ctx) (string, error) {
	id := ctx.Get(SessionHeader)
	if id == "" {
		return "", errs.ErrMissingSession
	}
	return id, nil
}

// ErrorHandlerMiddleware maps typed application and provider errors onto
// HTTP responses. Statuses below 500 tell the client its input was invalid;
// 500+ means the system or an upstream provider failed.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := errs.As(err); ok {
			return ctx.Status(appErr.HTTPStatus).JSON(ErrorResponse{Message: appErr.Message})
		}

		if pe, ok := llm.AsProviderError(err); ok {
			status := http.StatusBadGateway
			switch pe.Kind {
			case llm.ErrAuth:
				status = http.StatusUnauthorized
			case llm.ErrRateLimit:
				status = http.StatusTooManyRequests
			}
			return ctx.Status(status).JSON(ErrorResponse{Message: pe.Error()})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse{Message: fiberErr.Message})
		}

		return ctx.Status(http.StatusInternalServerError).JSON(ErrorResponse{Message: "internal server error"})
	}
}
