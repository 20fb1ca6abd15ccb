// Package handler contains the Gin handlers behind every route: HTML pages
// rendered server-side and the small JSON surface the exam page calls.
package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edumaster/edumaster-web/internal/edumaster"
	"github.com/edumaster/edumaster-web/internal/middleware"
	"github.com/edumaster/edumaster-web/internal/response"
	"github.com/edumaster/edumaster-web/internal/session"
)

// pageData merges the fields every template expects with page-specific ones.
func pageData(c *gin.Context, title string, fields gin.H) gin.H {
	data := gin.H{
		"Title":  title,
		"Auth":   middleware.GetAuth(c),
		"Error":  nil,
		"Notice": nil,
	}
	for k, v := range fields {
		data[k] = v
	}
	return data
}

func setSessionCookie(c *gin.Context, sessionID string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, sessionID, int(ttl.Seconds()), "/", "", secure, true)
}

func clearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", secure, true)
}

// safeNext keeps post-login redirects on this origin.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/dashboard"
}

// renderAPIError turns a remote API failure into an HTML response. A
// rejected token ends the browser session on the spot; everything else
// renders the error page with the message UserMessage picked.
func renderAPIError(c *gin.Context, sessions *session.Manager, secure bool, err error) {
	if errors.Is(err, edumaster.ErrSessionExpired) {
		auth := middleware.GetAuth(c)
		sessions.Logout(c.Request.Context(), auth.SessionID)
		clearSessionCookie(c, secure)
		c.Redirect(http.StatusFound, "/login?expired=1")
		c.Abort()
		return
	}
	c.HTML(apiErrorStatus(err), "error.html", pageData(c, "خطأ", gin.H{
		"Message": edumaster.UserMessage(err),
	}))
}

// jsonAPIError is the JSON twin of renderAPIError, for fetch() callers.
func jsonAPIError(c *gin.Context, err error) {
	if errors.Is(err, edumaster.ErrSessionExpired) {
		response.Fail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
		return
	}
	var apiErr *edumaster.APIError
	if errors.As(err, &apiErr) && apiErr.Status == 0 {
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrUpstreamUnreachable, edumaster.UserMessage(err))
		return
	}
	response.FailWithMessage(c, apiErrorStatus(err), response.ErrUpstream, edumaster.UserMessage(err))
}

func apiErrorStatus(err error) int {
	var apiErr *edumaster.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == 0 {
			return http.StatusBadGateway
		}
		return apiErr.Status
	}
	return http.StatusInternalServerError
}
