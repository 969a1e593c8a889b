// Review HTTP handlers.
//
// This file exposes:
//   - GET   /matches             (profiles the caller may review next)
//   - POST  /reviews             (submit a review, idempotency-aware)
//   - GET   /reviews/received    (reviews of the caller's profiles)
//   - GET   /reviews/given       (reviews the caller authored)
//   - PATCH /reviews/{id}/read   (mark a received review read)
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rizzlab/go-review-backend/internal/http/middleware"
	"github.com/rizzlab/go-review-backend/internal/repo"
	"github.com/rizzlab/go-review-backend/internal/services"
	"github.com/rizzlab/go-review-backend/internal/utils"
)

//
// DTOs
//

// SubmitReviewRequest is the JSON payload for reviewing a profile version.
type SubmitReviewRequest struct {
	ProfileVersionID string `json:"profile_version_id" binding:"required" format:"uuid"`
	Rating           *int   `json:"rating" binding:"required"`

	Feedback struct {
		VibeCheck      string   `json:"vibe_check,omitempty"`
		WhatWorks      string   `json:"what_works,omitempty"`
		WhatDoesntWork string   `json:"what_doesnt_work,omitempty"`
		PhotoNotes     string   `json:"photo_notes,omitempty"`
		BioNotes       string   `json:"bio_notes,omitempty"`
		RedFlags       []string `json:"red_flags,omitempty"`
		Suggestions    []string `json:"suggestions,omitempty"`
	} `json:"feedback"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ReceivedReviewsResponse wraps a page of received reviews.
type ReceivedReviewsResponse struct {
	Reviews    []services.ReceivedReview `json:"reviews"`
	Pagination Pagination                `json:"pagination"`
}

// GivenReviewsResponse wraps a page of authored reviews.
type GivenReviewsResponse struct {
	Reviews    []services.GivenReview `json:"reviews"`
	Pagination Pagination             `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// pageWindow slices one page out of items and builds its metadata.
func pageWindow[T any](items []T, page, pageSize int) ([]T, Pagination) {
	total := int64(len(items))
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	start := (page - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Handlers
//

// ListMatches godoc
// @ID          listMatches
// @Summary     List review candidates
// @Description Returns up to 10 profile versions the caller is eligible to review, honoring each owner's declared reviewer preference.
// @Tags        Matching
// @Produce     json
//
// @Success     200  {array}   services.Match
// @Failure     400  {object}  handlers.ErrorResponse  "Reviewer profile incomplete"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /matches [get]
func (h *Handlers) ListMatches(c *gin.Context) {
	matches, err := h.matchSvc.ListMatches(c.Request.Context(), userID(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrIncompleteReviewerProfile):
			fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "set your gender and age before requesting matches")
		case errors.Is(err, services.ErrUserNotFound):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "unknown account")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not compute matches")
		}
		return
	}
	ok(c, http.StatusOK, matches)
}

// SubmitReview godoc
// @ID          submitReview
// @Summary     Submit a review
// @Description Records a 0-100 rating with structured feedback for a profile version. Each reviewer may review a version once; self-reviews are rejected. Supports the Idempotency-Key header for safe retries.
// @Tags        Reviews
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"
// @Param       body             body    handlers.SubmitReviewRequest  true  "Review payload"
//
// @Success     201  {object}  domain.Review
// @Success     200  {object}  domain.Review  "Replayed prior submission"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request or invalid rating"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Self review"
// @Failure     404  {object}  handlers.ErrorResponse  "Version not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Already reviewed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /reviews [post]
func (h *Handlers) SubmitReview(c *gin.Context) {
	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Rating == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid review payload")
		return
	}
	if _, err := uuid.Parse(req.ProfileVersionID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "profile version id must be a UUID")
		return
	}

	uid := userID(c)

	// Serve a stored replay when the idempotency middleware flagged one.
	if middleware.IsReplay(c) {
		if svc, okCast := h.reviewSvc.(*services.ReviewService); okCast {
			if r, err := repo.GetReviewByReviewerAndVersion(c.Request.Context(), svc.DB, uid, req.ProfileVersionID); err == nil {
				ok(c, http.StatusOK, r)
				return
			}
		}
	}

	fb := services.FeedbackInput{
		VibeCheck:      req.Feedback.VibeCheck,
		WhatWorks:      req.Feedback.WhatWorks,
		WhatDoesntWork: req.Feedback.WhatDoesntWork,
		PhotoNotes:     req.Feedback.PhotoNotes,
		BioNotes:       req.Feedback.BioNotes,
		RedFlags:       req.Feedback.RedFlags,
		Suggestions:    req.Feedback.Suggestions,
	}

	r, err := h.reviewSvc.Submit(c.Request.Context(), uid, req.ProfileVersionID, *req.Rating, fb)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRating):
			fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "rating must be between 0 and 100")
		case errors.Is(err, services.ErrSelfReview):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "you cannot review your own profile")
		case errors.Is(err, services.ErrProfileNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "profile version not found")
		case errors.Is(err, services.ErrDuplicateReview):
			fail(c, http.StatusConflict, ErrCodeConflict, "you already reviewed this profile version")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not submit review")
		}
		return
	}

	// Record the idempotency key so retries replay instead of conflicting.
	if key, present := middleware.GetIdempotencyKey(c); present {
		if svc, okCast := h.reviewSvc.(*services.ReviewService); okCast {
			_, _ = repo.CreateIdempotency(c.Request.Context(), svc.DB, uid, c.FullPath(), key, r.ID, http.StatusCreated, 24*time.Hour)
		}
	}

	ok(c, http.StatusCreated, r)
}

// ListReceivedReviews godoc
// @ID          listReceivedReviews
// @Summary     List reviews of own profiles
// @Description Returns reviews written against the caller's profile versions, newest first, with feedback and reviewer summaries.
// @Tags        Reviews
// @Produce     json
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ReceivedReviewsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /reviews/received [get]
func (h *Handlers) ListReceivedReviews(c *gin.Context) {
	reviews, err := h.reviewSvc.ListReceived(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list received reviews")
		return
	}
	page, pageSize := clampPagination(c)
	windowed, meta := pageWindow(reviews, page, pageSize)
	ok(c, http.StatusOK, ReceivedReviewsResponse{Reviews: windowed, Pagination: meta})
}

// ListGivenReviews godoc
// @ID          listGivenReviews
// @Summary     List reviews the caller authored
// @Description Returns the caller's reviews of other profiles, newest first, with feedback and subject summaries.
// @Tags        Reviews
// @Produce     json
//
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.GivenReviewsResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /reviews/given [get]
func (h *Handlers) ListGivenReviews(c *gin.Context) {
	reviews, err := h.reviewSvc.ListGiven(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list given reviews")
		return
	}
	page, pageSize := clampPagination(c)
	windowed, meta := pageWindow(reviews, page, pageSize)
	ok(c, http.StatusOK, GivenReviewsResponse{Reviews: windowed, Pagination: meta})
}

// MarkReviewRead godoc
// @ID          markReviewRead
// @Summary     Mark a received review read
// @Description Flips the read flag on a review of one of the caller's profile versions.
// @Tags        Reviews
// @Produce     json
//
// @Param       id  path  string  true  "Review ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Review
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the reviewed profile's owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Review not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /reviews/{id}/read [patch]
func (h *Handlers) MarkReviewRead(c *gin.Context) {
	reviewID := c.Param("id")
	if _, err := uuid.Parse(reviewID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "review id must be a UUID")
		return
	}

	r, err := h.reviewSvc.MarkRead(c.Request.Context(), userID(c), reviewID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReviewNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "review not found")
		case errors.Is(err, services.ErrForbiddenReview):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "review does not belong to one of your profiles")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not mark review read")
		}
		return
	}
	ok(c, http.StatusOK, r)
}
