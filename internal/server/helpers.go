package server

import (
	"errors"

	"grimoire/internal/models"

	"github.com/gofiber/fiber/v2"
)

// MessageResponse is the body of operations that return no entity.
type MessageResponse struct {
	Message string `json:"message"`
}

// RequestResponse wraps a single request.
type RequestResponse struct {
	Message string         `json:"message"`
	Data    models.Request `json:"data"`
}

// RequestListResponse wraps a list of requests.
type RequestListResponse struct {
	Message string           `json:"message"`
	Data    []models.Request `json:"data"`
}

// AssignmentListResponse wraps grimorios with their bound requests.
type AssignmentListResponse struct {
	Message string            `json:"message"`
	Data    []models.Grimorio `json:"data"`
}

// statusFor maps an error to its HTTP status by AppError code.
func statusFor(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeInvalidAffinity, models.CodeInvalidStatus, models.CodeInvalidRequest:
		return fiber.StatusBadRequest
	case models.CodeSchema:
		return fiber.StatusUnprocessableEntity
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with the status its code maps to.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, statusFor(err), err)
}

// parseBody decodes the JSON body into dest, reporting malformed bodies as schema errors.
func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return models.NewSchemaError("Invalid request body")
	}
	return nil
}
