package api

import (
	"errors"
	"log"

	"github.com/example/eshop-backend/domain/apperr"
	"github.com/gofiber/fiber/v2"
)

var statusByKind = map[error]int{
	apperr.ErrNotFound:           fiber.StatusNotFound,
	apperr.ErrInvalidReference:   fiber.StatusBadRequest,
	apperr.ErrInvalidIdentifier:  fiber.StatusBadRequest,
	apperr.ErrInvalidAsset:       fiber.StatusBadRequest,
	apperr.ErrMissingAsset:       fiber.StatusBadRequest,
	apperr.ErrInvalidArgument:    fiber.StatusBadRequest,
	apperr.ErrInvalidCredentials: fiber.StatusUnauthorized,
	apperr.ErrUnauthorized:       fiber.StatusUnauthorized,
	apperr.ErrForbidden:          fiber.StatusForbidden,
	apperr.ErrConflict:           fiber.StatusConflict,
	apperr.ErrUnavailable:        fiber.StatusServiceUnavailable,
}

// writeError maps a failure to its status code and the error envelope.
// Unclassified and persistence failures are logged and hidden.
func writeError(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		log.Printf("[api] Internal error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   apperr.ErrPersistence.Error(),
			Message: "An internal error occurred",
		})
	}

	return c.Status(status).JSON(ErrorResponse{
		Error:   kind.Error(),
		Message: apperr.Message(err),
	})
}

// customErrorHandler handles errors returned by handlers and Fiber itself.
func customErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "server_error"
		switch {
		case fe.Code == fiber.StatusNotFound:
			code = apperr.ErrNotFound.Error()
		case fe.Code == fiber.StatusRequestEntityTooLarge:
			code = apperr.ErrInvalidAsset.Error()
		case fe.Code < fiber.StatusInternalServerError:
			code = apperr.ErrInvalidArgument.Error()
		}
		return c.Status(fe.Code).JSON(ErrorResponse{Error: code, Message: fe.Message})
	}
	return writeError(c, err)
}
