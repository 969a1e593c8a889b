// Package services – ProfileService
//
// This file implements ProfileService, the application-level component that
// owns profile version submission and retrieval. A submission uploads photos
// to object storage first, then persists the version, the owner's refreshed
// attributes, and any inline reviewer preference in a single transaction.
// When the transaction fails after photos were already stored, a best-effort
// compensating delete runs against object storage and is logged if it fails:
// an orphaned object is acceptable garbage, a half-written version is not.
//
// Observability: submission is OpenTelemetry-instrumented; spans carry the
// owner id and photo count.
package services

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rizzlab/go-review-backend/internal/domain"
	"github.com/rizzlab/go-review-backend/internal/repo"
	"github.com/rizzlab/go-review-backend/internal/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ProfileSubmission carries everything a user sends when creating a new
// profile version. Preference is optional; when present it is upserted for
// the new version inside the same transaction.
type ProfileSubmission struct {
	Bio         string
	Prompts     []domain.Prompt
	Hobbies     []string
	PickupLines []string

	// Refreshed owner attributes.
	Name   string
	Age    *int
	Gender string
	Intent string

	Photos     []*multipart.FileHeader
	Preference *PreferenceInput
}

// ProfileService coordinates photo storage and version persistence.
type ProfileService struct {
	DB     *gorm.DB
	Photos storage.PhotoStore

	// MaxPhotos caps photos per version; zero falls back to 6.
	MaxPhotos int
	// MaxPhotoBytes caps each upload; zero falls back to 5 MiB.
	MaxPhotoBytes int64
	// NameLocale selects the caser used to tidy display names.
	NameLocale language.Tag
}

// Submit validates the payload, stores the photos, and creates the new
// immutable version. On success the owner's latest_profile_id points at the
// created version and its refreshed attributes are visible to matching.
//
// Errors:
//   - ErrTooManyPhotos / ErrPhotoTooLarge for upload-cap violations.
//   - ErrInvalidAgeRange when an inline preference declares min > max.
//   - ErrUpstreamUnavailable when object storage rejects an upload.
//   - The underlying DB error for unexpected failures.
func (s *ProfileService) Submit(ctx context.Context, userID string, sub ProfileSubmission) (*domain.ProfileVersion, error) {
	tr := otel.Tracer("services/ProfileService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("photo.count", len(sub.Photos)),
		),
	)
	defer span.End()

	maxPhotos := s.MaxPhotos
	if maxPhotos <= 0 {
		maxPhotos = 6
	}
	maxBytes := s.MaxPhotoBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	if len(sub.Photos) > maxPhotos {
		return nil, ErrTooManyPhotos
	}
	for _, fh := range sub.Photos {
		if fh.Size > maxBytes {
			return nil, ErrPhotoTooLarge
		}
	}
	if sub.Preference != nil {
		if err := sub.Preference.validate(); err != nil {
			return nil, err
		}
	}

	// Stage photos in object storage before touching the database.
	uploaded := make([]storage.UploadResult, 0, len(sub.Photos))
	for _, fh := range sub.Photos {
		res, err := s.Photos.Put(ctx, fh, "profiles")
		if err != nil {
			s.discardUploads(ctx, uploaded)
			return nil, ErrUpstreamUnavailable
		}
		uploaded = append(uploaded, *res)
	}

	photos := make([]domain.Photo, 0, len(uploaded))
	for _, u := range uploaded {
		photos = append(photos, domain.Photo{URL: u.URL, StorageKey: u.Key})
	}

	var created *domain.ProfileVersion
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := repo.CreateProfileVersion(ctx, tx, &domain.ProfileVersion{
			UserID:      userID,
			Bio:         strings.TrimSpace(sub.Bio),
			Prompts:     sub.Prompts,
			Hobbies:     sub.Hobbies,
			PickupLines: sub.PickupLines,
			Photos:      photos,
		})
		if err != nil {
			return err
		}
		created = v

		name := s.tidyName(sub.Name)
		if err := repo.UpdateUserProfile(ctx, tx, userID, name, sub.Age, sub.Gender, sub.Intent, &v.ID); err != nil {
			return err
		}

		if sub.Preference != nil {
			pref := sub.Preference.toModel(userID, v.ID)
			if _, err := repo.UpsertPreference(ctx, tx, pref); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Compensating delete outside the transaction; the saga is best-effort.
		s.discardUploads(ctx, uploaded)
		return nil, err
	}

	return created, nil
}

// History returns the caller's versions most-recent-first, each annotated
// with its lifetime average rating and review count.
func (s *ProfileService) History(ctx context.Context, userID string) ([]VersionWithStats, error) {
	versions, err := repo.ListProfileVersions(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	out := make([]VersionWithStats, 0, len(versions))
	for _, v := range versions {
		stats, err := repo.VersionStats(ctx, s.DB, v.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, VersionWithStats{
			Version:      v,
			AverageScore: RoundedAverage(stats.RatingSum, stats.ReviewCount),
			ReviewCount:  stats.ReviewCount,
		})
	}
	return out, nil
}

// Get fetches a single version. Only the owner may read a version through
// this path; others receive ErrForbiddenProfile.
func (s *ProfileService) Get(ctx context.Context, userID, versionID string) (*domain.ProfileVersion, error) {
	v, err := repo.GetProfileVersion(ctx, s.DB, versionID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if v.UserID != userID {
		return nil, ErrForbiddenProfile
	}
	return v, nil
}

// VersionWithStats pairs a version with its aggregated rating numbers for
// the history view.
type VersionWithStats struct {
	Version      domain.ProfileVersion `json:"version"`
	AverageScore float64               `json:"average_score"`
	ReviewCount  int64                 `json:"review_count"`
}

// discardUploads deletes already-stored objects after a failed submission.
// Failures are logged and otherwise ignored.
func (s *ProfileService) discardUploads(ctx context.Context, uploaded []storage.UploadResult) {
	for _, u := range uploaded {
		if err := s.Photos.Delete(ctx, u.Key); err != nil {
			log.Warn().Err(err).Str("key", u.Key).Msg("orphaned photo cleanup failed")
		}
	}
}

// tidyName trims and collapses whitespace, and title-cases names submitted
// in a single case (all lower or all upper).
func (s *ProfileService) tidyName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	if name == strings.ToLower(name) || name == strings.ToUpper(name) {
		loc := s.NameLocale
		if loc == language.Und {
			loc = language.English
		}
		return cases.Title(loc).String(strings.ToLower(name))
	}
	return name
}
