package server

import (
	"quill/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// FollowFeed handles GET /follow/: posts by the authors the viewer follows,
// newest first. A viewer following nobody gets an empty page.
func (s *Server) FollowFeed(c *fiber.Ctx) error {
	userID := s.currentUserID(c)

	authorIDs, err := s.followRepo.AuthorIDs(c.Context(), userID)
	if err != nil {
		return s.handleError(c, err)
	}

	total, err := s.postRepo.CountByAuthors(c.Context(), authorIDs)
	if err != nil {
		return s.handleError(c, err)
	}
	page := pagination.New(pagination.ParseNumber(c.Query("page")), pagination.PostsPerPage, total)

	posts, err := s.postRepo.ListByAuthors(c.Context(), authorIDs, page.Limit(), page.Offset())
	if err != nil {
		return s.handleError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts": posts,
		"page":  page,
	})
}

const followFeedPath = "/follow/"

// ProfileFollow handles /profile/:username/follow/. Following yourself and
// following someone twice are both silent no-ops.
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	author, err := s.userRepo.GetByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return s.handleError(c, err)
	}

	userID := s.currentUserID(c)
	if author.ID != userID {
		if err := s.followRepo.GetOrCreate(c.Context(), userID, author.ID); err != nil {
			return s.handleError(c, err)
		}
	}

	return c.Redirect(followFeedPath, fiber.StatusFound)
}

// ProfileUnfollow handles /profile/:username/unfollow/. Unfollowing someone
// you don't follow is a 404.
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	author, err := s.userRepo.GetByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return s.handleError(c, err)
	}

	userID := s.currentUserID(c)
	if err := s.followRepo.Delete(c.Context(), userID, author.ID); err != nil {
		return s.handleError(c, err)
	}

	return c.Redirect(followFeedPath, fiber.StatusFound)
}
