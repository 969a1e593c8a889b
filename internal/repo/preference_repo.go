// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ReviewerPreference model.
//
// A version has at most one preference (unique index on profile_version_id);
// UpsertPreference replaces the existing row in place so the constraint is
// never violated by a resubmission.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rizzlab/go-review-backend/internal/domain"
)

// GetPreferenceByVersion fetches the preference declared for a profile
// version, or ErrNotFound when the submitter never declared one.
func GetPreferenceByVersion(ctx context.Context, db *gorm.DB, profileVersionID string) (*domain.ReviewerPreference, error) {
	var p domain.ReviewerPreference
	err := db.WithContext(ctx).
		Where("profile_version_id = ?", profileVersionID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertPreference creates the preference row for pref.ProfileVersionID or,
// when one already exists, overwrites its declared filters while keeping the
// original row identity. Returns the stored row.
func UpsertPreference(ctx context.Context, db *gorm.DB, pref *domain.ReviewerPreference) (*domain.ReviewerPreference, error) {
	var existing domain.ReviewerPreference
	err := db.WithContext(ctx).
		Where("profile_version_id = ?", pref.ProfileVersionID).
		First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]any{
			"genders":     pref.Genders,
			"intent":      pref.Intent,
			"age_min":     pref.AgeMin,
			"age_max":     pref.AgeMax,
			"description": pref.Description,
			"taste_tags":  pref.TasteTags,
		}
		if uerr := db.WithContext(ctx).Model(&existing).Updates(updates).Error; uerr != nil {
			return nil, uerr
		}
		return GetPreferenceByVersion(ctx, db, pref.ProfileVersionID)
	case errors.Is(err, gorm.ErrRecordNotFound):
		if pref.ID == "" {
			pref.ID = uuid.NewString()
		}
		pref.CreatedAt = time.Now().UTC()
		if cerr := db.WithContext(ctx).Create(pref).Error; cerr != nil {
			return nil, cerr
		}
		return pref, nil
	default:
		return nil, err
	}
}
