package server

import (
	"analytics/internal/service"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	PostID   uint   `json:"post_id" validate:"required,gt=0"`
	UserName string `json:"user_name" validate:"max=255"`
	Text     string `json:"text" validate:"required"`
}

// CreateComment godoc
// @Summary Comment on a post
// @Description Creates the commenter on first use. A blank user_name posts as Anonymous.
// @Tags comments
// @Accept json
// @Produce json
// @Param request body commentRequest true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		PostID:   req.PostID,
		UserName: req.UserName,
		Text:     req.Text,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments godoc
// @Summary List comments on a post
// @Tags comments
// @Produce json
// @Param post_id query int true "Post ID"
// @Success 200 {array} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Router /comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.queryID(c, "post_id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}
