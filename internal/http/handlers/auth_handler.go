// Auth HTTP handlers.
//
// This file exposes the account endpoints:
//   - POST /auth/signup  (register)
//   - POST /auth/login   (authenticate)
//
// Both return the public account projection together with a signed bearer
// token. Invalid credentials never reveal whether the email exists.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rizzlab/go-review-backend/internal/domain"
	"github.com/rizzlab/go-review-backend/internal/services"
)

//
// DTOs
//

// SignupRequest is the JSON payload for registering an account.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email" example:"king@rizzlab.io"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Name     string `json:"name" binding:"required,min=1,max=120" example:"Alex"`
	Age      *int   `json:"age,omitempty" binding:"omitempty,min=18,max=120" example:"27"`
	Gender   string `json:"gender,omitempty" example:"MALE"`
	Intent   string `json:"dating_intent,omitempty" example:"LONG_TERM"`
}

// LoginRequest is the JSON payload for authenticating.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"king@rizzlab.io"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse pairs the account with its freshly issued token.
type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

//
// Handlers
//

// Signup godoc
// @ID          signup
// @Summary     Register a new account
// @Description Creates an account and returns it with a signed bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SignupRequest  true  "Signup payload"
//
// @Success     201  {object}  handlers.AuthResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/signup [post]
func (h *Handlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid signup payload")
		return
	}

	user, token, err := h.authSvc.Signup(c.Request.Context(),
		strings.TrimSpace(req.Email), req.Password, strings.TrimSpace(req.Name),
		req.Age, strings.ToUpper(req.Gender), strings.ToUpper(req.Intent))
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			fail(c, http.StatusConflict, ErrCodeConflict, "email already registered")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not create account")
		return
	}
	ok(c, http.StatusCreated, AuthResponse{Token: token, User: *user})
}

// Login godoc
// @ID          login
// @Summary     Authenticate
// @Description Verifies credentials and returns the account with a signed bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Login payload"
//
// @Success     200  {object}  handlers.AuthResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid login payload")
		return
	}

	user, token, err := h.authSvc.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid email or password")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not authenticate")
		return
	}
	ok(c, http.StatusOK, AuthResponse{Token: token, User: *user})
}
