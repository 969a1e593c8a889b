// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Review and
// Feedback models.
//
// The repository follows a "thin" approach: it performs persistence and simple
// query composition, leaving business rules to the services package.
//
// Error semantics:
//   - A duplicate review (same profile_version_id, reviewer_id) relies on the
//     database unique constraint and is returned as a raw DB error. The
//     service layer translates that into a domain error (ErrDuplicateReview).
//   - On other DB errors (connectivity, constraints, etc.), the raw gorm
//     error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rizzlab/go-review-backend/internal/domain"
)

// CreateReview inserts a review row together with its feedback. Both rows
// share the same creation instant. The caller must run this inside a
// transaction so a feedback failure rolls the review back: a review without
// feedback must never be observable.
func CreateReview(ctx context.Context, db *gorm.DB, r *domain.Review, fb *domain.Feedback) (*domain.Review, error) {
	now := time.Now().UTC()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = now
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	fb.ReviewID = r.ID
	fb.CreatedAt = now
	if err := db.WithContext(ctx).Create(fb).Error; err != nil {
		return nil, err
	}
	r.Feedback = fb
	return r, nil
}

// GetReview fetches a review with its feedback, or ErrNotFound.
func GetReview(ctx context.Context, db *gorm.DB, id string) (*domain.Review, error) {
	var r domain.Review
	err := db.WithContext(ctx).
		Preload("Feedback").
		Where("id = ?", id).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetReviewByReviewerAndVersion fetches the unique review reviewerID wrote
// for a profile version, with feedback. Used for idempotent replays.
func GetReviewByReviewerAndVersion(ctx context.Context, db *gorm.DB, reviewerID, profileVersionID string) (*domain.Review, error) {
	var r domain.Review
	err := db.WithContext(ctx).
		Preload("Feedback").
		Where("reviewer_id = ? AND profile_version_id = ?", reviewerID, profileVersionID).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// HasReviewed reports whether reviewerID has already reviewed the given
// profile version.
func HasReviewed(ctx context.Context, db *gorm.DB, reviewerID, profileVersionID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Review{}).
		Where("reviewer_id = ? AND profile_version_id = ?", reviewerID, profileVersionID).
		Count(&n).Error
	return n > 0, err
}

// ListReviewsReceived returns every review written against any of ownerID's
// profile versions, newest first, with feedback preloaded.
func ListReviewsReceived(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Review, error) {
	var out []domain.Review
	err := db.WithContext(ctx).
		Preload("Feedback").
		Joins("JOIN profile_versions pv ON pv.id = reviews.profile_version_id").
		Where("pv.user_id = ?", ownerID).
		Order("reviews.created_at DESC, reviews.id DESC").
		Find(&out).Error
	return out, err
}

// ListReviewsGiven returns every review authored by reviewerID, newest
// first, with feedback preloaded.
func ListReviewsGiven(ctx context.Context, db *gorm.DB, reviewerID string) ([]domain.Review, error) {
	var out []domain.Review
	err := db.WithContext(ctx).
		Preload("Feedback").
		Where("reviewer_id = ?", reviewerID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// ListReviewsForVersion returns all reviews of one profile version with
// feedback, oldest first (discovery order for aggregation and AI prompts).
func ListReviewsForVersion(ctx context.Context, db *gorm.DB, profileVersionID string) ([]domain.Review, error) {
	var out []domain.Review
	err := db.WithContext(ctx).
		Preload("Feedback").
		Where("profile_version_id = ?", profileVersionID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// MarkReviewRead flips the is_read flag, the only mutation a review ever
// sees. Returns ErrNotFound when no such review exists.
func MarkReviewRead(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.Review{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
