package repository

import (
	"context"

	"quill/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow relationships.
type FollowRepository interface {
	// GetOrCreate establishes the follow idempotently: repeated calls, or a
	// call while another follow row exists for the same follower, are silent
	// no-ops at the data layer.
	GetOrCreate(ctx context.Context, userID, authorID uint) error
	// Delete removes the relationship, returning NotFound when none exists.
	Delete(ctx context.Context, userID, authorID uint) error
	// AuthorIDs returns the set of authors the user follows.
	AuthorIDs(ctx context.Context, userID uint) ([]uint, error)
	// AuthorHasFollowers reports whether anyone follows the author. Note this
	// is a by-author check, not a by-viewer one.
	AuthorHasFollowers(ctx context.Context, authorID uint) (bool, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) GetOrCreate(ctx context.Context, userID, authorID uint) error {
	// The unique index is on user_id alone, so the conflict target is the
	// follower column. ON CONFLICT DO NOTHING keeps the constraint from ever
	// surfacing as an error.
	follow := models.Follow{UserID: userID, AuthorID: authorID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&follow).Error
}

func (r *followRepository) Delete(ctx context.Context, userID, authorID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Follow", userID)
	}
	return nil
}

func (r *followRepository) AuthorIDs(ctx context.Context, userID uint) ([]uint, error) {
	var authorIDs []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ?", userID).
		Pluck("author_id", &authorIDs).Error
	return authorIDs, err
}

func (r *followRepository) AuthorHasFollowers(ctx context.Context, authorID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("author_id = ?", authorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
