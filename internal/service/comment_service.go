// Package service holds domain logic that sits between handlers and
// repositories.
package service

import (
	"context"

	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	UserID uint
	PostID uint
	Text   string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// CreateComment attaches a comment to an existing post. The author and post
// bindings come from the input, never from the submitted form.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	form := validation.CommentForm{Text: in.Text}
	if errs := form.Validate(); len(errs) > 0 {
		return nil, models.NewValidationError(errs.Error())
	}

	comment := &models.Comment{
		Text:     in.Text,
		AuthorID: &in.UserID,
		PostID:   &in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// ListComments returns a post's comments in insertion order.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}
