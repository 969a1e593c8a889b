// Leaderboard HTTP handler.
//
// Exposes GET /leaderboard: the top-rated profiles over the trailing window.
// The endpoint is public; the payload is an aggregate projection and never
// includes emails or storage keys.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Leaderboard godoc
// @ID          leaderboard
// @Summary     Top-rated profiles
// @Description Returns the five highest-rated profile versions over the trailing seven days, ranked by windowed average rating.
// @Tags        Leaderboard
// @Produce     json
//
// @Success     200  {array}   services.LeaderboardEntry
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /leaderboard [get]
func (h *Handlers) Leaderboard(c *gin.Context) {
	entries, err := h.boardSvc.Top(c.Request.Context(), time.Now().UTC())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not compute leaderboard")
		return
	}
	ok(c, http.StatusOK, entries)
}
