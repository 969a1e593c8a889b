// Profile HTTP handlers.
//
// This file exposes the profile version endpoints:
//   - POST /profile                 (submit a new version, multipart)
//   - GET  /profile/history         (list own versions with rating stats)
//   - GET  /profile/{id}            (fetch one own version)
//
// Submission is a multipart form: scalar fields arrive as form values, list
// fields (prompts, hobbies, pickupLines, preference) as JSON-encoded strings
// the way browser FormData sends them, and photos as file parts under the
// "photos" field.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rizzlab/go-review-backend/internal/services"
)

// SubmitProfile godoc
// @ID          submitProfile
// @Summary     Submit a new profile version
// @Description Creates an immutable profile version with up to 6 photos and optionally an inline reviewer preference. Earlier versions and their reviews are untouched.
// @Tags        Profiles
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       bio          formData  string  false  "Bio text"
// @Param       name         formData  string  true   "Display name"
// @Param       age          formData  int     false  "Age"
// @Param       gender       formData  string  false  "Gender (MALE|FEMALE|NON_BINARY|OTHER)"
// @Param       datingIntent formData  string  false  "Dating intent (LONG_TERM|CASUAL|FRIENDSHIP|UNSURE)"
// @Param       prompts      formData  string  false  "JSON array of {question, answer}"
// @Param       hobbies      formData  string  false  "JSON array of strings"
// @Param       pickupLines  formData  string  false  "JSON array of strings"
// @Param       preference   formData  string  false  "JSON reviewer preference"
// @Param       photos       formData  file    false  "Photo files (max 6, 5MB each)"
//
// @Success     201  {object}  domain.ProfileVersion
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     413  {object}  handlers.ErrorResponse  "Photo too large"
// @Failure     502  {object}  handlers.ErrorResponse  "Photo storage unavailable"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /profile [post]
func (h *Handlers) SubmitProfile(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "expected multipart form")
		return
	}

	sub := services.ProfileSubmission{
		Bio:    c.PostForm("bio"),
		Name:   strings.TrimSpace(c.PostForm("name")),
		Gender: strings.ToUpper(strings.TrimSpace(c.PostForm("gender"))),
		Intent: strings.ToUpper(strings.TrimSpace(c.PostForm("datingIntent"))),
		Photos: form.File["photos"],
	}
	if raw := c.PostForm("age"); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "age must be an integer")
			return
		}
		sub.Age = &age
	}
	if raw := c.PostForm("prompts"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sub.Prompts); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "prompts must be a JSON array of {question, answer}")
			return
		}
	}
	if raw := c.PostForm("hobbies"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sub.Hobbies); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "hobbies must be a JSON array of strings")
			return
		}
	}
	if raw := c.PostForm("pickupLines"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sub.PickupLines); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "pickupLines must be a JSON array of strings")
			return
		}
	}
	if raw := c.PostForm("preference"); raw != "" {
		var pref preferencePayload
		if err := json.Unmarshal([]byte(raw), &pref); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "preference must be a JSON object")
			return
		}
		in := pref.toInput()
		sub.Preference = &in
	}
	if sub.Name == "" {
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "name is required")
		return
	}

	v, err := h.profileSvc.Submit(c.Request.Context(), userID(c), sub)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTooManyPhotos):
			fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "too many photos")
		case errors.Is(err, services.ErrPhotoTooLarge):
			fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "photo exceeds the size limit")
		case errors.Is(err, services.ErrInvalidAgeRange):
			fail(c, http.StatusBadRequest, ErrCodeValidationFailed, "preference age range is invalid")
		case errors.Is(err, services.ErrUpstreamUnavailable):
			fail(c, http.StatusBadGateway, ErrCodeUpstreamUnavailable, "photo storage is unavailable")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not create profile version")
		}
		return
	}
	ok(c, http.StatusCreated, v)
}

// ProfileHistory godoc
// @ID          profileHistory
// @Summary     List own profile versions
// @Description Returns the caller's profile versions, newest first, each with its all-time average rating and review count.
// @Tags        Profiles
// @Produce     json
//
// @Success     200  {array}   services.VersionWithStats
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /profile/history [get]
func (h *Handlers) ProfileHistory(c *gin.Context) {
	versions, err := h.profileSvc.History(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not list profile history")
		return
	}
	ok(c, http.StatusOK, versions)
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Fetch one own profile version
// @Description Returns one of the caller's profile versions by id, including photos.
// @Tags        Profiles
// @Produce     json
//
// @Param       id  path  string  true  "Profile version ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.ProfileVersion
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Version not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /profile/{id} [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	versionID := c.Param("id")
	if _, err := uuid.Parse(versionID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "profile version id must be a UUID")
		return
	}

	v, err := h.profileSvc.Get(c.Request.Context(), userID(c), versionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProfileNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "profile version not found")
		case errors.Is(err, services.ErrForbiddenProfile):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "profile version belongs to another user")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not fetch profile version")
		}
		return
	}
	ok(c, http.StatusOK, v)
}
