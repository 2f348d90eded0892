// Package models defines the persisted entities, domain enums and application errors.
package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidAffinity      = "INVALID_AFFINITY"
	CodeInvalidStatus        = "INVALID_STATUS"
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeSchema               = "SCHEMA_ERROR"
	CodeAssignmentImpossible = "ASSIGNMENT_IMPOSSIBLE"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeInternal             = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewInvalidAffinityError(value string) *AppError {
	return &AppError{
		Code:    CodeInvalidAffinity,
		Message: "Invalid affinity: " + value,
	}
}

func NewInvalidStatusError(value string) *AppError {
	return &AppError{
		Code:    CodeInvalidStatus,
		Message: "Invalid status",
		Err:     fmt.Errorf("unknown status %q", value),
	}
}

func NewInvalidRequestError() *AppError {
	return &AppError{
		Code:    CodeInvalidRequest,
		Message: "Invalid request data",
	}
}

func NewSchemaError(message string) *AppError {
	return &AppError{
		Code:    CodeSchema,
		Message: message,
	}
}

func NewAssignmentImpossibleError(err error) *AppError {
	return &AppError{
		Code:    CodeAssignmentImpossible,
		Message: "No grimorio can be assigned",
		Err:     err,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
