package server

import (
	"grimoire/internal/middleware"
	"grimoire/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ListRequests handles GET /solicitudes
// @Summary List requests
// @Tags requests
// @Produce json
// @Success 200 {object} RequestListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /solicitudes [get]
func (s *Server) ListRequests(c *fiber.Ctx) error {
	requests, err := s.requestService.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(RequestListResponse{Message: "Requests retrieved successfully", Data: requests})
}

// GetRequest handles GET /solicitud/:id
// @Summary Get a request
// @Tags requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} RequestResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /solicitud/{id} [get]
func (s *Server) GetRequest(c *fiber.Ctx) error {
	req, err := s.requestService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(RequestResponse{Message: "Request retrieved successfully", Data: *req})
}

// CreateRequest handles POST /solicitud
// @Summary Create a request
// @Description Requests with an invalid name or last name are stored as Rechazado.
// @Tags requests
// @Accept json
// @Produce json
// @Param request body validation.CreateInput true "Request payload"
// @Success 200 {object} RequestResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /solicitud [post]
func (s *Server) CreateRequest(c *fiber.Ctx) error {
	var in validation.CreateInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}

	req, err := s.requestService.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "request created",
		"request_id", req.ID, "status", string(req.Status))
	return c.JSON(RequestResponse{Message: "Request created successfully", Data: *req})
}

// UpdateRequest handles PUT /solicitud/:id
// @Summary Update a request
// @Description Only the fields present in the body are changed.
// @Tags requests
// @Accept json
// @Param id path string true "Request ID"
// @Param request body validation.UpdateInput true "Fields to change"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /solicitud/{id} [put]
func (s *Server) UpdateRequest(c *fiber.Ctx) error {
	var in validation.UpdateInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}

	if _, err := s.requestService.Update(c.UserContext(), c.Params("id"), in); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateRequestStatus handles PATCH /solicitud/:id/estatus
// @Summary Change the status of a request
// @Description Approving a request without a grimorio draws one by weight.
// @Tags requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param request body validation.StatusInput true "Target status"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /solicitud/{id}/estatus [patch]
func (s *Server) UpdateRequestStatus(c *fiber.Ctx) error {
	var in validation.StatusInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	if err := in.Validate(); err != nil {
		return respondError(c, err)
	}

	if _, err := s.requestService.UpdateStatus(c.UserContext(), c.Params("id"), in.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Request status updated successfully"})
}

// DeleteRequest handles DELETE /solicitud/:id
// @Summary Delete a request
// @Tags requests
// @Param id path string true "Request ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /solicitud/{id} [delete]
func (s *Server) DeleteRequest(c *fiber.Ctx) error {
	if err := s.requestService.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
