// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ProfileVersion and Photo models.
//
// Versions are append-only: there are create and read helpers but no update
// or delete. Photos are always written alongside their version inside the
// caller's transaction.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rizzlab/go-review-backend/internal/domain"
)

// CreateProfileVersion inserts a new immutable version with its photos.
// Photo positions follow slice order. The caller is expected to run this
// inside a transaction together with the owner-row update.
func CreateProfileVersion(ctx context.Context, db *gorm.DB, v *domain.ProfileVersion) (*domain.ProfileVersion, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.CreatedAt = time.Now().UTC()
	for i := range v.Photos {
		if v.Photos[i].ID == "" {
			v.Photos[i].ID = uuid.NewString()
		}
		v.Photos[i].ProfileVersionID = v.ID
		v.Photos[i].Position = i
		v.Photos[i].CreatedAt = v.CreatedAt
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

// GetProfileVersion fetches a single version with its photos ordered by
// position, or ErrNotFound if missing.
func GetProfileVersion(ctx context.Context, db *gorm.DB, id string) (*domain.ProfileVersion, error) {
	var v domain.ProfileVersion
	err := db.WithContext(ctx).
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Where("id = ?", id).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// LatestProfileVersion returns the most recently created version owned by
// userID, with photos, or ErrNotFound when the user has never submitted one.
func LatestProfileVersion(ctx context.Context, db *gorm.DB, userID string) (*domain.ProfileVersion, error) {
	var v domain.ProfileVersion
	err := db.WithContext(ctx).
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListProfileVersions returns all versions owned by userID, most recent
// first with an ID tie-break for determinism, photos included. It returns an
// empty slice if the user has no versions.
func ListProfileVersions(ctx context.Context, db *gorm.DB, userID string) ([]domain.ProfileVersion, error) {
	var out []domain.ProfileVersion
	err := db.WithContext(ctx).
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// MatchCandidate pairs a candidate version with the preference that made it
// matchable, as produced by ListMatchCandidates.
type MatchCandidate struct {
	Version    domain.ProfileVersion
	Preference domain.ReviewerPreference
}

// ListMatchCandidates is the explicit query shape behind the matching
// engine. It returns, most-recent-first (ID tie-break), every profile version
// that:
//
//   - is not owned by reviewerID,
//   - has a declared ReviewerPreference (inner join; versions without one are
//     unmatchable by policy),
//   - whose declared age bounds admit reviewerAge (absent bound = unbounded,
//     boundary inclusive),
//   - and that reviewerID has not already reviewed (NOT EXISTS anti-join).
//
// Gender-set membership is filtered by the caller: the accepted genders are
// stored as a JSON array, and membership is a set operation the service
// performs in memory on this pre-filtered candidate list.
func ListMatchCandidates(ctx context.Context, db *gorm.DB, reviewerID string, reviewerAge int) ([]MatchCandidate, error) {
	var versions []domain.ProfileVersion
	err := db.WithContext(ctx).
		Preload("Photos", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Joins("JOIN reviewer_preferences rp ON rp.profile_version_id = profile_versions.id AND rp.deleted_at IS NULL").
		Where("profile_versions.user_id <> ?", reviewerID).
		Where("(rp.age_min IS NULL OR rp.age_min <= ?)", reviewerAge).
		Where("(rp.age_max IS NULL OR rp.age_max >= ?)", reviewerAge).
		Where(`NOT EXISTS (
			SELECT 1 FROM reviews r
			WHERE r.profile_version_id = profile_versions.id
			  AND r.reviewer_id = ?
			  AND r.deleted_at IS NULL
		)`, reviewerID).
		Order("profile_versions.created_at DESC, profile_versions.id DESC").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return []MatchCandidate{}, nil
	}

	ids := make([]string, 0, len(versions))
	for _, v := range versions {
		ids = append(ids, v.ID)
	}
	var prefs []domain.ReviewerPreference
	if err := db.WithContext(ctx).Where("profile_version_id IN ?", ids).Find(&prefs).Error; err != nil {
		return nil, err
	}
	byVersion := make(map[string]domain.ReviewerPreference, len(prefs))
	for _, p := range prefs {
		byVersion[p.ProfileVersionID] = p
	}

	out := make([]MatchCandidate, 0, len(versions))
	for _, v := range versions {
		p, ok := byVersion[v.ID]
		if !ok {
			continue
		}
		out = append(out, MatchCandidate{Version: v, Preference: p})
	}
	return out, nil
}
