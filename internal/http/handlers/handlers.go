// Package handlers provides HTTP handler implementations for the public API.
//
// This file wires the handler set to its application services. Handlers are
// transport-thin: they validate input, call application services, and
// translate results (including sentinel errors) into HTTP responses.
package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rizzlab/go-review-backend/internal/domain"
	"github.com/rizzlab/go-review-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// AuthService defines account registration and login operations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AuthService interface {
	// Signup registers a new account and returns it with a signed token.
	Signup(ctx context.Context, email, password, name string, age *int, gender, intent string) (*domain.User, string, error)
	// Login verifies credentials and returns the account with a signed token.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
}

// ProfileService defines profile version submission and retrieval.
type ProfileService interface {
	// Submit stores a new immutable profile version with its photos.
	Submit(ctx context.Context, userID string, sub services.ProfileSubmission) (*domain.ProfileVersion, error)
	// History lists the caller's versions, newest first, with rating stats.
	History(ctx context.Context, userID string) ([]services.VersionWithStats, error)
	// Get returns one of the caller's versions by id.
	Get(ctx context.Context, userID, versionID string) (*domain.ProfileVersion, error)
}

// PreferenceService defines reviewer preference management.
type PreferenceService interface {
	// Upsert replaces the preference attached to a version. An empty
	// versionID targets the caller's latest version.
	Upsert(ctx context.Context, userID, profileVersionID string, in services.PreferenceInput) (*domain.ReviewerPreference, error)
}

// MatchingService defines review candidate discovery.
type MatchingService interface {
	// ListMatches returns profile versions the caller may review next.
	ListMatches(ctx context.Context, reviewerID string) ([]services.Match, error)
}

// ReviewService defines review submission and retrieval.
type ReviewService interface {
	// Submit records a rating and feedback for a profile version.
	Submit(ctx context.Context, reviewerID, profileVersionID string, rating int, fb services.FeedbackInput) (*domain.Review, error)
	// MarkRead flips a review's read flag for the reviewed profile's owner.
	MarkRead(ctx context.Context, userID, reviewID string) (*domain.Review, error)
	// ListReceived lists reviews written against the caller's versions.
	ListReceived(ctx context.Context, userID string) ([]services.ReceivedReview, error)
	// ListGiven lists reviews the caller authored.
	ListGiven(ctx context.Context, reviewerID string) ([]services.GivenReview, error)
}

// LeaderboardService defines the public ranking computation.
type LeaderboardService interface {
	// Top returns the highest-rated profiles over the trailing window.
	Top(ctx context.Context, now time.Time) ([]services.LeaderboardEntry, error)
}

// AIService defines the Chad profile analysis.
type AIService interface {
	// Analyze runs the caller's latest profile through the AI coach.
	Analyze(ctx context.Context, userID string) (*services.ChadResult, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for auth, profiles, preferences,
// matching, reviews, the leaderboard, and AI analysis. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	authSvc    AuthService
	profileSvc ProfileService
	prefSvc    PreferenceService
	matchSvc   MatchingService
	reviewSvc  ReviewService
	boardSvc   LeaderboardService
	aiSvc      AIService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(
	authSvc AuthService,
	profileSvc ProfileService,
	prefSvc PreferenceService,
	matchSvc MatchingService,
	reviewSvc ReviewService,
	boardSvc LeaderboardService,
	aiSvc AIService,
) *Handlers {
	return &Handlers{
		authSvc:    authSvc,
		profileSvc: profileSvc,
		prefSvc:    prefSvc,
		matchSvc:   matchSvc,
		reviewSvc:  reviewSvc,
		boardSvc:   boardSvc,
		aiSvc:      aiSvc,
	}
}

// userID extracts the authenticated user id from Gin context (set by the
// auth middleware). If absent, it falls back to "X-User-ID" header (tests
// use it). It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return ""
}
