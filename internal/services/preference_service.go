// Package services – PreferenceService
//
// This file implements PreferenceService, which owns the declared reviewer
// preferences attached to profile versions. A preference is per-version:
// exactly one row may exist for a version, and resubmitting replaces it. The
// "EVERYONE" audience is encoded as an empty gender set, which the matching
// engine treats as accept-all.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/rizzlab/go-review-backend/internal/domain"
	"github.com/rizzlab/go-review-backend/internal/repo"
)

// GenderEveryone is the sentinel audience value clients may send instead of
// a concrete gender; it encodes as an empty accepted-genders set.
const GenderEveryone = "EVERYONE"

// PreferenceInput is the declared filter a submitter wants applied to their
// reviewer audience.
type PreferenceInput struct {
	// Genders lists accepted reviewer genders. A single GenderEveryone entry
	// (or an empty list) encodes accept-all.
	Genders     []string
	Intent      string
	AgeMin      *int
	AgeMax      *int
	Description string
	TasteTags   []string
}

// validate enforces min <= max on a declared age range.
func (in *PreferenceInput) validate() error {
	if in.AgeMin != nil && in.AgeMax != nil && *in.AgeMin > *in.AgeMax {
		return ErrInvalidAgeRange
	}
	return nil
}

// toModel converts the input to its persistence shape, normalizing the
// EVERYONE encoding to an empty set.
func (in *PreferenceInput) toModel(userID, profileVersionID string) *domain.ReviewerPreference {
	genders := make([]string, 0, len(in.Genders))
	for _, g := range in.Genders {
		g = strings.ToUpper(strings.TrimSpace(g))
		if g == "" || g == GenderEveryone {
			genders = genders[:0]
			break
		}
		genders = append(genders, g)
	}
	return &domain.ReviewerPreference{
		UserID:           userID,
		ProfileVersionID: profileVersionID,
		Genders:          genders,
		Intent:           in.Intent,
		AgeMin:           in.AgeMin,
		AgeMax:           in.AgeMax,
		Description:      strings.TrimSpace(in.Description),
		TasteTags:        in.TasteTags,
	}
}

// PreferenceService implements preference upsert for a user's versions.
type PreferenceService struct {
	DB *gorm.DB
}

// Upsert validates and stores the preference for the given profile version.
// When profileVersionID is empty the caller's latest version is used; a user
// with no versions cannot declare preferences (ErrNoProfile).
//
// Errors:
//   - ErrInvalidAgeRange when min > max.
//   - ErrNoProfile when no target version exists.
//   - ErrForbiddenProfile when the version belongs to someone else.
func (s *PreferenceService) Upsert(ctx context.Context, userID, profileVersionID string, in PreferenceInput) (*domain.ReviewerPreference, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if profileVersionID == "" {
		latest, err := repo.LatestProfileVersion(ctx, s.DB, userID)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrNoProfile
			}
			return nil, err
		}
		profileVersionID = latest.ID
	} else {
		v, err := repo.GetProfileVersion(ctx, s.DB, profileVersionID)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrProfileNotFound
			}
			return nil, err
		}
		if v.UserID != userID {
			return nil, ErrForbiddenProfile
		}
	}

	return repo.UpsertPreference(ctx, s.DB, in.toModel(userID, profileVersionID))
}
