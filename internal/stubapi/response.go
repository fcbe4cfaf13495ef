// Package stubapi is a local development backend that implements the
// storefront HTTP contract consumed by the SDK. Persistence is in-memory;
// Redis, Elasticsearch and RabbitMQ are optional providers.
package stubapi

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// ContractError is an application error rendered in the storefront envelope:
// {ok:false, error:"<code>"} with the given HTTP status.
type ContractError struct {
	HTTPStatus int
	Code       string
}

func (e *ContractError) Error() string { return e.Code }

func NewContractError(status int, code string) *ContractError {
	return &ContractError{HTTPStatus: status, Code: code}
}

func BadRequest(code string) error {
	return NewContractError(http.StatusBadRequest, code)
}

func NotFound(code string) error {
	return NewContractError(http.StatusNotFound, code)
}

func Unauthorized() error {
	return NewContractError(http.StatusUnauthorized, "unauthorized")
}

func Internal(code string) error {
	return NewContractError(http.StatusInternalServerError, code)
}

// ErrorHandler renders every error in the {ok,error} envelope the SDK
// expects; the response body is always JSON.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ce *ContractError
		if errors.As(err, &ce) {
			return c.Status(ce.HTTPStatus).JSON(fiber.Map{"ok": false, "error": ce.Code})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := "api_error"
			if fe.Code == http.StatusUnauthorized {
				code = "unauthorized"
			} else if fe.Code == http.StatusNotFound {
				code = "not_found"
			}
			return c.Status(fe.Code).JSON(fiber.Map{"ok": false, "error": code})
		}

		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "internal_error"})
	}
}

// OK sends a 200 with the ok discriminator merged into the payload.
func OK(c *fiber.Ctx, payload fiber.Map) error {
	if payload == nil {
		payload = fiber.Map{}
	}
	payload["ok"] = true
	return c.Status(http.StatusOK).JSON(payload)
}
