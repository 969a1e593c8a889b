// Package services defines the business logic for accounts, profile
// versions, reviewer preferences, reviews, matching, and aggregation. This
// file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

// Account-related errors.
var (
	// ErrEmailTaken is returned when signup is attempted with an email that
	// already belongs to an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login when the email is unknown or
	// the password does not match. The two cases are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// Profile-related errors.
var (
	// ErrProfileNotFound indicates that the requested profile version does
	// not exist.
	ErrProfileNotFound = errors.New("profile version not found")

	// ErrForbiddenProfile is returned when a user attempts to read a profile
	// version they do not own.
	ErrForbiddenProfile = errors.New("cannot view this profile version")

	// ErrTooManyPhotos is returned when a submission carries more photos than
	// the configured cap.
	ErrTooManyPhotos = errors.New("too many photos")

	// ErrPhotoTooLarge is returned when an uploaded photo exceeds the
	// per-file size limit.
	ErrPhotoTooLarge = errors.New("photo exceeds the size limit")

	// ErrNoProfile is returned when an operation needs the caller's latest
	// profile version and none has ever been submitted.
	ErrNoProfile = errors.New("no profile version submitted yet")
)

// Preference-related errors.
var (
	// ErrInvalidAgeRange is returned when a declared age range has min > max.
	ErrInvalidAgeRange = errors.New("age range minimum exceeds maximum")
)

// Review-related errors.
var (
	// ErrInvalidRating is returned when a rating falls outside the 0-100
	// inclusive scale.
	ErrInvalidRating = errors.New("rating must be between 0 and 100")

	// ErrSelfReview is returned when a reviewer attempts to review their own
	// profile version.
	ErrSelfReview = errors.New("cannot review your own profile")

	// ErrDuplicateReview is returned when a reviewer attempts to review a
	// profile version they have already reviewed.
	ErrDuplicateReview = errors.New("review already exists")

	// ErrReviewNotFound indicates that the requested review does not exist
	// or is not accessible to the current user.
	ErrReviewNotFound = errors.New("review not found")

	// ErrForbiddenReview is returned when a user attempts an action on a
	// review that only the reviewed profile's owner may perform.
	ErrForbiddenReview = errors.New("cannot modify this review")

	// ErrIncompleteReviewerProfile is returned by the matching engine when
	// the requesting reviewer has not populated their own gender and age.
	ErrIncompleteReviewerProfile = errors.New("complete your own profile first (gender and age required)")
)

// Collaborator errors.
var (
	// ErrUpstreamUnavailable is returned when an external collaborator
	// (object storage or the text-generation service) fails or produces
	// output the service cannot use.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)
