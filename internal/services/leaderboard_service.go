// Package services – LeaderboardService
//
// This file ranks profile versions by the average rating they earned inside
// a trailing time window. Filtering happens before averaging: a review
// outside the window contributes neither to the average nor to the count.
// Averages are rounded to one decimal place only at presentation time.
package services

import (
	"context"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/rizzlab/go-review-backend/internal/repo"
)

// Defaults for the leaderboard window and length.
const (
	DefaultLeaderboardWindow = 7 * 24 * time.Hour
	DefaultLeaderboardSize   = 5
)

// LeaderboardEntry is one ranked profile in the public leaderboard
// projection. It exposes only owner-approved public fields.
type LeaderboardEntry struct {
	ProfileVersionID string   `json:"profile_version_id"`
	DisplayName      string   `json:"display_name"`
	Age              *int     `json:"age,omitempty"`
	Bio              string   `json:"bio"`
	Hobbies          []string `json:"hobbies,omitempty"`
	PhotoURL         string   `json:"photo_url,omitempty"`
	AverageScore     float64  `json:"average_score"`
	ReviewCount      int64    `json:"review_count"`
}

// LeaderboardService computes the top-rated profiles over a trailing window.
type LeaderboardService struct {
	// DB is the database handle used for aggregation queries.
	DB *gorm.DB

	// Window is the trailing period considered. Zero means
	// DefaultLeaderboardWindow.
	Window time.Duration

	// Size caps the number of entries returned. Zero means
	// DefaultLeaderboardSize.
	Size int
}

// Top returns up to Size entries ranked by windowed average rating,
// descending. Ties break deterministically on earliest first review inside
// the window, then on profile version id. Versions with no reviews inside
// the window are absent, never shown with a zero average.
func (s *LeaderboardService) Top(ctx context.Context, now time.Time) ([]LeaderboardEntry, error) {
	window := s.Window
	if window <= 0 {
		window = DefaultLeaderboardWindow
	}
	size := s.Size
	if size <= 0 {
		size = DefaultLeaderboardSize
	}

	stats, err := repo.WindowedVersionStats(ctx, s.DB, now.Add(-window))
	if err != nil {
		return nil, err
	}

	// Stats arrive in discovery order (earliest review first); a stable
	// sort on average therefore yields the documented tie-break.
	sort.SliceStable(stats, func(i, j int) bool {
		ai := float64(stats[i].RatingSum) / float64(stats[i].ReviewCount)
		aj := float64(stats[j].RatingSum) / float64(stats[j].ReviewCount)
		return ai > aj
	})
	if len(stats) > size {
		stats = stats[:size]
	}

	out := make([]LeaderboardEntry, 0, len(stats))
	for _, st := range stats {
		entry := LeaderboardEntry{
			ProfileVersionID: st.ProfileVersionID,
			AverageScore:     RoundedAverage(st.RatingSum, st.ReviewCount),
			ReviewCount:      st.ReviewCount,
		}
		v, err := repo.GetProfileVersion(ctx, s.DB, st.ProfileVersionID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		entry.Bio = v.Bio
		entry.Hobbies = v.Hobbies
		if len(v.Photos) > 0 {
			entry.PhotoURL = v.Photos[0].URL
		}
		if owner, err := repo.GetUser(ctx, s.DB, v.UserID); err == nil {
			entry.DisplayName = owner.DisplayName
			entry.Age = owner.Age
		}
		out = append(out, entry)
	}
	return out, nil
}

// RoundedAverage divides sum by count and rounds half away from zero to one
// decimal place. A zero count yields 0.
func RoundedAverage(sum, count int64) float64 {
	if count == 0 {
		return 0
	}
	avg := float64(sum) / float64(count)
	return math.Round(avg*10) / 10
}
