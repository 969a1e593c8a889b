// Package services – ReviewService
//
// This file implements the ReviewService, which governs how reviewers judge
// profile versions. It enforces business rules (rating scale, no self
// reviews, one review per reviewer and version) and persists the review and
// its feedback atomically: if the feedback insert fails the review must not
// survive. Service-level errors (ErrInvalidRating, ErrSelfReview,
// ErrDuplicateReview, ErrReviewNotFound, ErrForbiddenReview) are returned
// for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/rizzlab/go-review-backend/internal/domain"
	"github.com/rizzlab/go-review-backend/internal/repo"
)

// FeedbackInput carries the structured commentary submitted with a review.
type FeedbackInput struct {
	VibeCheck      string
	WhatWorks      string
	WhatDoesntWork string
	PhotoNotes     string
	BioNotes       string
	RedFlags       []string
	Suggestions    []string
}

// ReviewService implements the use-cases around reviews of profile versions.
// It is context-aware and opens its own transaction per submission.
type ReviewService struct {
	// DB is the database handle used for all review operations.
	DB *gorm.DB
}

// Submit records a rating and feedback for profileVersionID on behalf of
// reviewerID.
//
// Semantics and validation:
//   - rating must be within 0..100 inclusive; otherwise ErrInvalidRating.
//   - profileVersionID must exist; otherwise ErrProfileNotFound.
//   - The reviewer must not own the version; otherwise ErrSelfReview, and no
//     review or feedback row is created.
//   - A reviewer may review a version at most once; the composite unique
//     index makes the losing insert fail and it is surfaced as
//     ErrDuplicateReview. Two concurrent first reviews therefore resolve
//     deterministically without locks.
//   - The reviewer's own gender and intent are captured on the row at
//     submission time.
//
// Concurrency & atomicity: the existence/ownership checks and both inserts
// run inside one transaction, so a feedback failure rolls the review back.
func (s *ReviewService) Submit(ctx context.Context, reviewerID, profileVersionID string, rating int, fb FeedbackInput) (*domain.Review, error) {
	if rating < 0 || rating > 100 {
		return nil, ErrInvalidRating
	}

	var created *domain.Review
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := repo.GetProfileVersion(ctx, tx, profileVersionID)
		if err != nil {
			if isNotFound(err) {
				return ErrProfileNotFound
			}
			return err
		}
		if v.UserID == reviewerID {
			return ErrSelfReview
		}

		reviewer, err := repo.GetUser(ctx, tx, reviewerID)
		if err != nil {
			if isNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}

		r, err := repo.CreateReview(ctx, tx,
			&domain.Review{
				ProfileVersionID: profileVersionID,
				ReviewerID:       reviewerID,
				Rating:           rating,
				ReviewerGender:   reviewer.Gender,
				ReviewerIntent:   reviewer.DatingIntent,
			},
			&domain.Feedback{
				VibeCheck:      fb.VibeCheck,
				WhatWorks:      fb.WhatWorks,
				WhatDoesntWork: fb.WhatDoesntWork,
				PhotoNotes:     fb.PhotoNotes,
				BioNotes:       fb.BioNotes,
				RedFlags:       fb.RedFlags,
				Suggestions:    fb.Suggestions,
			})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
				return ErrDuplicateReview
			}
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// MarkRead flips a review's is_read flag. Only the owner of the reviewed
// profile version may mark a review read; anyone else gets
// ErrForbiddenReview.
func (s *ReviewService) MarkRead(ctx context.Context, userID, reviewID string) (*domain.Review, error) {
	r, err := repo.GetReview(ctx, s.DB, reviewID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	v, err := repo.GetProfileVersion(ctx, s.DB, r.ProfileVersionID)
	if err != nil {
		return nil, err
	}
	if v.UserID != userID {
		return nil, ErrForbiddenReview
	}
	if err := repo.MarkReviewRead(ctx, s.DB, reviewID); err != nil {
		return nil, err
	}
	r.IsRead = true
	return r, nil
}

// ListReceived returns the reviews written against the caller's versions,
// newest first, each with feedback, a reviewer summary, and the reviewed
// version id for grouping.
func (s *ReviewService) ListReceived(ctx context.Context, userID string) ([]ReceivedReview, error) {
	reviews, err := repo.ListReviewsReceived(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ReceivedReview, 0, len(reviews))
	for _, r := range reviews {
		entry := ReceivedReview{Review: r}
		if reviewer, err := repo.GetUser(ctx, s.DB, r.ReviewerID); err == nil {
			entry.Reviewer = PublicUserSummary{
				DisplayName: reviewer.DisplayName,
				Gender:      reviewer.Gender,
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// ListGiven returns the reviews the caller authored, newest first, each with
// feedback and a public summary of the reviewed profile.
func (s *ReviewService) ListGiven(ctx context.Context, reviewerID string) ([]GivenReview, error) {
	reviews, err := repo.ListReviewsGiven(ctx, s.DB, reviewerID)
	if err != nil {
		return nil, err
	}
	out := make([]GivenReview, 0, len(reviews))
	for _, r := range reviews {
		entry := GivenReview{Review: r}
		if v, err := repo.GetProfileVersion(ctx, s.DB, r.ProfileVersionID); err == nil {
			entry.Subject.Bio = v.Bio
			if len(v.Photos) > 0 {
				entry.Subject.PhotoURL = v.Photos[0].URL
			}
			if owner, err := repo.GetUser(ctx, s.DB, v.UserID); err == nil {
				entry.Subject.DisplayName = owner.DisplayName
				entry.Subject.Age = owner.Age
				entry.Subject.Gender = owner.Gender
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// PublicUserSummary is the reviewer-safe projection of an account.
type PublicUserSummary struct {
	DisplayName string `json:"display_name"`
	Age         *int   `json:"age,omitempty"`
	Gender      string `json:"gender,omitempty"`
}

// ReceivedReview is one review of the caller's profile with its author
// summary.
type ReceivedReview struct {
	Review   domain.Review     `json:"review"`
	Reviewer PublicUserSummary `json:"reviewer"`
}

// GivenReview is one review the caller authored with a summary of its
// subject.
type GivenReview struct {
	Review  domain.Review `json:"review"`
	Subject struct {
		DisplayName string `json:"display_name"`
		Age         *int   `json:"age,omitempty"`
		Gender      string `json:"gender,omitempty"`
		Bio         string `json:"bio"`
		PhotoURL    string `json:"photo_url,omitempty"`
	} `json:"subject"`
}

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way. It also checks gorm.ErrRecordNotFound for safety.
func isNotFound(err error) bool {
	if errors.Is(err, repo.ErrNotFound) {
		return true
	}
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "constraint failed: unique")
}
