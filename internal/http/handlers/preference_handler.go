// Reviewer preference HTTP handlers.
//
// This file exposes:
//   - PUT /preferences  (replace the preference on a profile version)
//
// A preference belongs to exactly one profile version; resubmitting for the
// same version replaces the stored row. Omitting profile_version_id targets
// the caller's latest version.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rizzlab/go-review-backend/internal/services"
)

// preferencePayload is the wire shape of a reviewer preference. It is shared
// by the standalone endpoint and the inline "preference" form field on
// profile submission.
type preferencePayload struct {
	Genders     []string `json:"genders" example:"FEMALE"`
	Intent      string   `json:"intent,omitempty" example:"LONG_TERM"`
	AgeMin      *int     `json:"age_min,omitempty" example:"21"`
	AgeMax      *int     `json:"age_max,omitempty" example:"35"`
	Description string   `json:"description,omitempty"`
	TasteTags   []string `json:"taste_tags,omitempty"`
}

func (p preferencePayload) toInput() services.PreferenceInput {
	return services.PreferenceInput{
		Genders:     p.Genders,
		Intent:      p.Intent,
		AgeMin:      p.AgeMin,
		AgeMax:      p.AgeMax,
		Description: p.Description,
		TasteTags:   p.TasteTags,
	}
}

// UpsertPreferenceRequest is the JSON payload for setting a preference.
type UpsertPreferenceRequest struct {
	// ProfileVersionID targets a specific owned version; empty means the
	// caller's latest version.
	ProfileVersionID string `json:"profile_version_id,omitempty" format:"uuid"`
	preferencePayload
}

// UpsertPreference godoc
// @ID          upsertPreference
// @Summary     Set the reviewer preference for a profile version
// @Description Replaces the declared reviewer audience on one of the caller's profile versions. An empty gender set (or a single "EVERYONE") accepts reviewers of any gender.
// @Tags        Preferences
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.UpsertPreferenceRequest  true  "Preference payload"
//
// @Success     200  {object}  domain.ReviewerPreference
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Version not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /preferences [put]
func (h *Handlers) UpsertPreference(c *gin.Context) {
	var req UpsertPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid preference payload")
		return
	}

	pref, err := h.prefSvc.Upsert(c.Request.Context(), userID(c), req.ProfileVersionID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAgeRange):
			fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "age range is invalid")
		case errors.Is(err, services.ErrNoProfile):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no profile version to attach the preference to")
		case errors.Is(err, services.ErrProfileNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "profile version not found")
		case errors.Is(err, services.ErrForbiddenProfile):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "profile version belongs to another user")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not save preference")
		}
		return
	}
	ok(c, http.StatusOK, pref)
}
