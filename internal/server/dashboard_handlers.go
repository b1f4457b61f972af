package server

import (
	"analytics/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetRecentViews godoc
// @Summary Recent profile views
// @Tags dashboard
// @Produce json
// @Param user_id query int true "Profile owner ID"
// @Param limit query int false "Max results (1-50)" default(5)
// @Success 200 {array} models.ProfileView
// @Failure 400 {object} models.ErrorResponse
// @Router /dashboard/views [get]
func (s *Server) GetRecentViews(c *fiber.Ctx) error {
	ownerID, err := s.queryID(c, "user_id")
	if err != nil {
		return nil
	}
	limit, err := s.queryLimit(c, service.DefaultViewsLimit)
	if err != nil {
		return nil
	}

	views, err := s.viewService.RecentViews(c.UserContext(), ownerID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(views)
}

// GetRecentActivities godoc
// @Summary Recent comments and likes on the owner's posts
// @Tags dashboard
// @Produce json
// @Param user_id query int true "Profile owner ID"
// @Param limit query int false "Max results (1-50)" default(8)
// @Success 200 {array} models.Activity
// @Failure 400 {object} models.ErrorResponse
// @Router /dashboard/activities [get]
func (s *Server) GetRecentActivities(c *fiber.Ctx) error {
	ownerID, err := s.queryID(c, "user_id")
	if err != nil {
		return nil
	}
	limit, err := s.queryLimit(c, service.DefaultActivitiesLimit)
	if err != nil {
		return nil
	}

	activities, err := s.activityService.RecentActivities(c.UserContext(), ownerID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(activities)
}
