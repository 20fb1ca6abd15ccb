// Package middleware wires the per-request auth state: every request first
// resolves its browser session, then route guards act on the result.
package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/edumaster/edumaster-web/internal/response"
	"github.com/edumaster/edumaster-web/internal/session"
)

const (
	// SessionCookie is the browser session cookie name.
	SessionCookie = "edumaster_session"

	// ContextKeyAuth is the Gin context key for the resolved auth state.
	ContextKeyAuth = "auth"
)

// LoadSession resolves the auth state for every request before any handler
// runs. It never aborts: an anonymous state is set when no valid session
// exists, so handlers always observe a fully resolved state.
func LoadSession(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, _ := c.Cookie(SessionCookie)
		state := mgr.Restore(c.Request.Context(), sessionID)
		c.Set(ContextKeyAuth, state)
		c.Next()
	}
}

// RequireAuth guards HTML pages: anonymous requests are redirected to the
// login page, carrying the original URL so login can return them there.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetAuth(c).IsAuthenticated() {
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, "/login?next="+next)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuthAPI guards JSON endpoints: anonymous requests get 401 instead
// of a redirect.
func RequireAuthAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetAuth(c).IsAuthenticated() {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrLoginRequired)
			return
		}
		c.Next()
	}
}

// RequireAdmin guards admin screens. The remote API re-checks every
// privileged call; this only keeps the screens out of sight.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetAuth(c).IsAdmin() {
			response.AbortFail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin guards admin-account management.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetAuth(c).IsSuperAdmin() {
			response.AbortFail(c, http.StatusForbidden, response.ErrSuperAdminAccess)
			return
		}
		c.Next()
	}
}

// GetAuth retrieves the resolved auth state from the Gin context.
// Never nil; requests outside LoadSession resolve as anonymous.
func GetAuth(c *gin.Context) *session.State {
	val, exists := c.Get(ContextKeyAuth)
	if !exists {
		return &session.State{}
	}
	state, ok := val.(*session.State)
	if !ok || state == nil {
		return &session.State{}
	}
	return state
}
