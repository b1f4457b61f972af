package server

import (
	"analytics/internal/service"

	"github.com/gofiber/fiber/v2"
)

type trackViewRequest struct {
	ProfileOwnerID uint   `json:"profile_owner_id" validate:"required,gt=0"`
	UserName       string `json:"user_name" validate:"max=255"`
}

// TrackView godoc
// @Summary Record a profile view
// @Description Stores the view with the caller's IP and, when it resolves, its location.
// @Tags views
// @Accept json
// @Produce json
// @Param request body trackViewRequest true "View"
// @Success 200 {object} models.ProfileView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /track-view [post]
func (s *Server) TrackView(c *fiber.Ctx) error {
	var req trackViewRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	view, err := s.viewService.RecordView(c.UserContext(), service.RecordViewInput{
		ProfileOwnerID: req.ProfileOwnerID,
		ViewerName:     req.UserName,
		IPAddress:      clientIP(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}
