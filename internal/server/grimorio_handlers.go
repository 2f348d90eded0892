package server

import (
	"github.com/gofiber/fiber/v2"
)

// CreateGrimoriosFixtures handles GET /create-grimorios-fixtures
// @Summary Seed the grimorio catalog
// @Description Inserts the catalog only when no grimorio exists.
// @Tags grimorios
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /create-grimorios-fixtures [get]
func (s *Server) CreateGrimoriosFixtures(c *fiber.Ctx) error {
	if _, err := s.grimorioService.SeedGrimorios(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Grimorios fixtures created successfully"})
}

// ListGrimoireAssignments handles GET /asignaciones
// @Summary List grimorio assignments
// @Description Every grimorio with the requests bound to it.
// @Tags grimorios
// @Produce json
// @Success 200 {object} AssignmentListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /asignaciones [get]
func (s *Server) ListGrimoireAssignments(c *fiber.Ctx) error {
	grimorios, err := s.requestService.ListAssignments(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(AssignmentListResponse{Message: "Assignments retrieved successfully", Data: grimorios})
}
