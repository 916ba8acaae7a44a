package server

import (
	"encoding/json"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/pagination"
	"quill/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /. The rendered payload is cached per page number; posts
// created after the snapshot stay invisible here until the TTL expires or the
// cache is cleared explicitly.
func (s *Server) Index(c *fiber.Ctx) error {
	total, err := s.postRepo.CountAll(c.Context())
	if err != nil {
		return s.handleError(c, err)
	}
	page := pagination.New(pagination.ParseNumber(c.Query("page")), pagination.PostsPerPage, total)

	// Key on the clamped page number so out-of-range requests share the
	// nearest valid page's entry instead of minting keys of their own.
	key := cache.IndexKey(page.Number)
	if payload, ok := s.pageCache.Get(c.Context(), key); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(payload)
	}

	posts, err := s.postRepo.List(c.Context(), page.Limit(), page.Offset())
	if err != nil {
		return s.handleError(c, err)
	}

	payload, err := json.Marshal(fiber.Map{
		"posts": posts,
		"page":  page,
	})
	if err != nil {
		return s.handleError(c, err)
	}
	s.pageCache.Set(c.Context(), key, payload)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

// GroupPosts handles GET /group/:slug/
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	group, err := s.groupRepo.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return s.handleError(c, err)
	}

	total, err := s.postRepo.CountByGroup(c.Context(), group.ID)
	if err != nil {
		return s.handleError(c, err)
	}
	page := pagination.New(pagination.ParseNumber(c.Query("page")), pagination.PostsPerPage, total)

	posts, err := s.postRepo.ListByGroup(c.Context(), group.ID, page.Limit(), page.Offset())
	if err != nil {
		return s.handleError(c, err)
	}

	return c.JSON(fiber.Map{
		"group": group,
		"posts": posts,
		"page":  page,
	})
}

// Profile handles GET /profile/:username/
func (s *Server) Profile(c *fiber.Ctx) error {
	author, err := s.userRepo.GetByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return s.handleError(c, err)
	}

	total, err := s.postRepo.CountByAuthor(c.Context(), author.ID)
	if err != nil {
		return s.handleError(c, err)
	}
	page := pagination.New(pagination.ParseNumber(c.Query("page")), pagination.PostsPerPage, total)

	posts, err := s.postRepo.ListByAuthor(c.Context(), author.ID, page.Limit(), page.Offset())
	if err != nil {
		return s.handleError(c, err)
	}

	// The flag answers "does this author have any followers", regardless of
	// who is asking.
	following, err := s.followRepo.AuthorHasFollowers(c.Context(), author.ID)
	if err != nil {
		return s.handleError(c, err)
	}

	return c.JSON(fiber.Map{
		"author":      author,
		"posts":       posts,
		"page":        page,
		"posts_count": total,
		"following":   following,
	})
}

// PostDetail handles GET /posts/:id/
func (s *Server) PostDetail(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return s.handleError(c, err)
	}

	comments, err := s.commentRepo.ListByPost(c.Context(), postID)
	if err != nil {
		return s.handleError(c, err)
	}

	return c.JSON(fiber.Map{
		"post":     post,
		"comments": comments,
		"form":     fiber.Map{"text": ""},
	})
}

// PostCreateForm handles GET /create/
func (s *Server) PostCreateForm(c *fiber.Ctx) error {
	groups, err := s.groupRepo.List(c.Context())
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(fiber.Map{
		"form":    validation.PostForm{},
		"groups":  groups,
		"is_edit": false,
	})
}

// CreatePost handles POST /create/. Invalid submissions redisplay the form
// with field errors; valid ones land on the author's profile.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := s.currentUserID(c)

	var form validation.PostForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	errs := form.Validate()
	if form.GroupID != nil {
		if _, gerr := s.groupRepo.GetByID(c.Context(), *form.GroupID); gerr != nil {
			if models.IsNotFound(gerr) {
				errs["group"] = "Select a valid choice"
			} else {
				return s.handleError(c, gerr)
			}
		}
	}
	if len(errs) > 0 {
		return s.redisplayPostForm(c, form, errs, false)
	}

	imagePath, err := s.saveUploadedImage(c, "image")
	if err != nil {
		errs["image"] = err.Error()
		return s.redisplayPostForm(c, form, errs, false)
	}

	post := &models.Post{
		Text:     form.Text,
		AuthorID: &userID,
		GroupID:  form.GroupID,
		Image:    imagePath,
	}
	if err := s.postRepo.Create(c.Context(), post); err != nil {
		// Don't orphan the upload when the insert fails.
		s.removeUploadedImage(imagePath)
		return s.handleError(c, err)
	}

	author, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return s.handleError(c, err)
	}
	return c.Redirect(profilePath(author.Username), fiber.StatusFound)
}

// PostEditForm handles GET /posts/:id/edit/. Non-authors are sent to the
// post's detail page without explanation.
func (s *Server) PostEditForm(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return s.handleError(c, err)
	}

	userID := s.currentUserID(c)
	if post.AuthorID == nil || *post.AuthorID != userID {
		return c.Redirect(postDetailPath(postID), fiber.StatusFound)
	}

	groups, gerr := s.groupRepo.List(c.Context())
	if gerr != nil {
		return s.handleError(c, gerr)
	}
	return c.JSON(fiber.Map{
		"form": validation.PostForm{
			Text:    post.Text,
			GroupID: post.GroupID,
			Image:   post.Image,
		},
		"groups":  groups,
		"is_edit": true,
		"post":    post,
	})
}

// EditPost handles POST /posts/:id/edit/
func (s *Server) EditPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return s.handleError(c, err)
	}

	userID := s.currentUserID(c)
	if post.AuthorID == nil || *post.AuthorID != userID {
		return c.Redirect(postDetailPath(postID), fiber.StatusFound)
	}

	var form validation.PostForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	errs := form.Validate()
	if form.GroupID != nil {
		if _, gerr := s.groupRepo.GetByID(c.Context(), *form.GroupID); gerr != nil {
			if models.IsNotFound(gerr) {
				errs["group"] = "Select a valid choice"
			} else {
				return s.handleError(c, gerr)
			}
		}
	}
	if len(errs) > 0 {
		return s.redisplayPostForm(c, form, errs, true)
	}

	imagePath, uerr := s.saveUploadedImage(c, "image")
	if uerr != nil {
		errs["image"] = uerr.Error()
		return s.redisplayPostForm(c, form, errs, true)
	}

	post.Text = form.Text
	post.GroupID = form.GroupID
	if imagePath != "" {
		post.Image = imagePath
	}
	if err := s.postRepo.Update(c.Context(), post); err != nil {
		s.removeUploadedImage(imagePath)
		return s.handleError(c, err)
	}

	return c.Redirect(postDetailPath(postID), fiber.StatusFound)
}

// redisplayPostForm answers an invalid submission with the submitted values
// and field errors so the form can be rendered again. The response is a 200:
// a redisplayed form is a normal page, not an API failure.
func (s *Server) redisplayPostForm(c *fiber.Ctx, form validation.PostForm, errs validation.FieldErrors, isEdit bool) error {
	groups, err := s.groupRepo.List(c.Context())
	if err != nil {
		return s.handleError(c, err)
	}
	return c.JSON(fiber.Map{
		"form":    form,
		"errors":  errs,
		"groups":  groups,
		"is_edit": isEdit,
	})
}
