package server

import (
	"strconv"
	"strings"

	"analytics/internal/service"

	"github.com/gofiber/fiber/v2"
)

type likeRequest struct {
	PostID   uint   `json:"post_id" validate:"required,gt=0"`
	UserName string `json:"user_name" validate:"max=255"`
}

// CreateLike godoc
// @Summary Like a post
// @Description Idempotent: liking twice returns the id of the existing like.
// @Tags likes
// @Accept json
// @Produce json
// @Param request body likeRequest true "Like"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /likes [post]
func (s *Server) CreateLike(c *fiber.Ctx) error {
	var req likeRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	like, err := s.likeService.AddLike(c.UserContext(), service.AddLikeInput{
		PostID:   req.PostID,
		UserName: req.UserName,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "id": like.ID})
}

// GetLikeCount godoc
// @Summary Count likes on a post
// @Tags likes
// @Produce json
// @Param post_id query int true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /likes/count [get]
func (s *Server) GetLikeCount(c *fiber.Ctx) error {
	postID, err := s.queryID(c, "post_id")
	if err != nil {
		return nil
	}

	count, err := s.likeService.CountLikes(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"post_id": postID, "likes": count})
}

// HasLiked godoc
// @Summary Check whether a user liked a post
// @Description Unknown or blank user names report false and are never created.
// @Tags likes
// @Produce json
// @Param post_id query int false "Post ID"
// @Param user_name query string false "User name"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} models.ErrorResponse
// @Router /likes/has-liked [get]
func (s *Server) HasLiked(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("post_id"))
	if raw == "" {
		return c.JSON(fiber.Map{"liked": false})
	}
	postID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		_ = badRequest(c, "post_id must be an integer")
		return nil
	}
	if postID <= 0 {
		return c.JSON(fiber.Map{"liked": false})
	}

	liked, err := s.likeService.HasLiked(c.UserContext(), uint(postID), c.Query("user_name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}
