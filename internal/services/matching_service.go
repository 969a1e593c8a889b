// Package services – MatchingService
//
// This file implements the discovery surface: which profile versions a
// reviewer may be shown next. Hard filters live in SQL (self exclusion, an
// attached preference, age bounds, already-reviewed anti-join); the gender
// set filter is applied here because the preference stores genders as a JSON
// array. An empty gender set means the owner accepts reviewers of any
// gender.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/rizzlab/go-review-backend/internal/domain"
	"github.com/rizzlab/go-review-backend/internal/repo"
)

// DefaultMatchPageSize is the maximum number of candidates returned per call.
const DefaultMatchPageSize = 10

// Match is one profile version the reviewer is eligible to review, together
// with the owner's stated preference and a public summary of the owner.
type Match struct {
	Version    domain.ProfileVersion    `json:"profile_version"`
	Preference domain.ReviewerPreference `json:"reviewer_preference"`
	Owner      PublicUserSummary        `json:"owner"`
}

// MatchingService computes review candidates for a reviewer.
type MatchingService struct {
	// DB is the database handle used for candidate queries.
	DB *gorm.DB

	// PageSize caps the number of matches returned. Zero means
	// DefaultMatchPageSize.
	PageSize int
}

// ListMatches returns up to PageSize profile versions reviewerID is eligible
// to review, most recently submitted first.
//
// Eligibility requires all of:
//   - the version is not owned by the reviewer;
//   - the version has a reviewer preference attached;
//   - the preference's gender set is empty or contains the reviewer's gender;
//   - the preference's age bounds, when set, admit the reviewer's age
//     (inclusive on both ends);
//   - the reviewer has not already reviewed the version.
//
// The reviewer must have recorded a gender and age before matching;
// otherwise ErrIncompleteReviewerProfile is returned.
func (s *MatchingService) ListMatches(ctx context.Context, reviewerID string) ([]Match, error) {
	reviewer, err := repo.GetUser(ctx, s.DB, reviewerID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if reviewer.Gender == "" || reviewer.Age == nil {
		return nil, ErrIncompleteReviewerProfile
	}

	candidates, err := repo.ListMatchCandidates(ctx, s.DB, reviewerID, *reviewer.Age)
	if err != nil {
		return nil, err
	}

	limit := s.PageSize
	if limit <= 0 {
		limit = DefaultMatchPageSize
	}

	matches := make([]Match, 0, limit)
	for _, c := range candidates {
		if !genderAccepted(c.Preference.Genders, reviewer.Gender) {
			continue
		}
		m := Match{Version: c.Version, Preference: c.Preference}
		if owner, err := repo.GetUser(ctx, s.DB, c.Version.UserID); err == nil {
			m.Owner = PublicUserSummary{
				DisplayName: owner.DisplayName,
				Age:         owner.Age,
				Gender:      owner.Gender,
			}
		}
		matches = append(matches, m)
		if len(matches) == limit {
			break
		}
	}
	return matches, nil
}

// genderAccepted reports whether a preference's gender set admits the
// reviewer. An empty set admits everyone.
func genderAccepted(set []string, gender string) bool {
	if len(set) == 0 {
		return true
	}
	for _, g := range set {
		if g == gender {
			return true
		}
	}
	return false
}
