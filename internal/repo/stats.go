// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate queries behind the
// aggregation engine: per-version rating summaries and the time-windowed
// grouping the leaderboard ranks. Each function is context-aware and safe to
// call from services or handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rizzlab/go-review-backend/internal/domain"
)

// VersionRatingStats holds the aggregate review numbers for one profile
// version. Sum is kept (instead of a pre-divided mean) so the service layer
// owns the rounding rule in exactly one place.
type VersionRatingStats struct {
	ProfileVersionID string
	ReviewCount      int64
	RatingSum        int64
}

// VersionStats returns the count and rating sum over every review of one
// profile version. A version with no reviews yields a zero-valued row, not
// an error.
func VersionStats(ctx context.Context, db *gorm.DB, profileVersionID string) (VersionRatingStats, error) {
	stats := VersionRatingStats{ProfileVersionID: profileVersionID}
	row := struct {
		N   int64
		Sum *int64
	}{}
	err := db.WithContext(ctx).
		Model(&domain.Review{}).
		Select("COUNT(*) AS n, SUM(rating) AS sum").
		Where("profile_version_id = ?", profileVersionID).
		Scan(&row).Error
	if err != nil {
		return stats, err
	}
	stats.ReviewCount = row.N
	if row.Sum != nil {
		stats.RatingSum = *row.Sum
	}
	return stats, nil
}

// WindowedVersionStats groups reviews created at or after the cutoff by
// profile version. Versions with zero in-window reviews do not appear at
// all: the window filter runs before averaging, never after, so historical
// ratings cannot leak into a windowed ranking. Rows come back ordered by
// first in-window review, with the version id breaking timestamp ties, so a
// stable downstream sort stays deterministic.
func WindowedVersionStats(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]VersionRatingStats, error) {
	var rows []struct {
		ProfileVersionID string
		N                int64
		Sum              int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Review{}).
		Select("profile_version_id, COUNT(*) AS n, SUM(rating) AS sum").
		Where("created_at >= ?", cutoff).
		Group("profile_version_id").
		Order("MIN(created_at) ASC, profile_version_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]VersionRatingStats, 0, len(rows))
	for _, r := range rows {
		out = append(out, VersionRatingStats{
			ProfileVersionID: r.ProfileVersionID,
			ReviewCount:      r.N,
			RatingSum:        r.Sum,
		})
	}
	return out, nil
}
