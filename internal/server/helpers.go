package server

import (
	"errors"
	"fmt"

	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts the :id route parameter as a positive uint. On failure it
// writes a 404 response (bad identifiers are indistinguishable from missing
// pages in this app) and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Page", c.Path()))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// viewer returns the authenticated user's ID, when one was resolved by the
// auth middleware.
func (s *Server) viewer(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("userID").(uint)
	return userID, ok
}

// currentUserID returns the authenticated user's ID on a protected route,
// where the auth middleware guarantees it is set.
func (s *Server) currentUserID(c *fiber.Ctx) uint {
	userID, _ := c.Locals("userID").(uint)
	return userID
}

// handleError writes the response appropriate to the error's classification.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "NOT_FOUND":
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		case "VALIDATION_ERROR":
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		case "UNAUTHORIZED":
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		case "FORBIDDEN":
			return models.RespondWithError(c, fiber.StatusForbidden, appErr)
		}
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}

// postDetailPath builds the canonical URL of a post's detail page.
func postDetailPath(postID uint) string {
	return fmt.Sprintf("/posts/%d/", postID)
}

// profilePath builds the canonical URL of a user's profile page.
func profilePath(username string) string {
	return fmt.Sprintf("/profile/%s/", username)
}
