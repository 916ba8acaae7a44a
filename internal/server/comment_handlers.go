package server

import (
	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /posts/:id/comment/. Whatever happens to the
// submission, the browser lands back on the post's detail page: a valid
// comment is persisted first, an invalid one is dropped on the floor.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `form:"text" json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Redirect(postDetailPath(postID), fiber.StatusFound)
	}

	_, err = s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		UserID: s.currentUserID(c),
		PostID: postID,
		Text:   req.Text,
	})
	if err != nil {
		// A missing post is a real 404; a failed validation is not surfaced.
		if models.IsNotFound(err) {
			return s.handleError(c, err)
		}
		if !models.IsValidation(err) {
			return s.handleError(c, err)
		}
	}

	return c.Redirect(postDetailPath(postID), fiber.StatusFound)
}
