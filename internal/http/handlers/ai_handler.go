// AI HTTP handler.
//
// Exposes GET /ai/chad: an AI coach analysis of the caller's latest profile
// version and its community reviews. Model failures never leak raw provider
// errors to the client.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rizzlab/go-review-backend/internal/services"
)

// ChadAnalysis godoc
// @ID          chadAnalysis
// @Summary     AI profile analysis
// @Description Runs the caller's latest profile version and its reviews through the "Chad" AI coach and returns a structured verdict.
// @Tags        AI
// @Produce     json
//
// @Success     200  {object}  services.ChadResult
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "No profile yet"
// @Failure     502  {object}  handlers.ErrorResponse  "AI upstream unavailable"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /ai/chad [get]
func (h *Handlers) ChadAnalysis(c *gin.Context) {
	res, err := h.aiSvc.Analyze(c.Request.Context(), userID(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoProfile):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no profile found, submit a profile first")
		case errors.Is(err, services.ErrUpstreamUnavailable):
			fail(c, http.StatusBadGateway, ErrCodeUpstreamUnavailable, "Chad is busy hitting the gym, try again later")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not analyze profile")
		}
		return
	}
	ok(c, http.StatusOK, res)
}
