package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
)

const sessionCookieName = "storefront_session"

// Session assigns every visitor an opaque anonymous session id via cookie.
// One cart engine exists per session id; the cookie is not an identity and
// carries no claims, so it needs no signing.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &ctxutil.RequestData{}

		if raw, err := c.Cookie(sessionCookieName); err == nil {
			if id, parseErr := uuid.Parse(strings.TrimSpace(raw)); parseErr == nil && id != uuid.Nil {
				rd.SessionID = id
			}
		}
		if rd.SessionID == uuid.Nil {
			rd.SessionID = uuid.New()
			rd.NewSession = true
			c.SetCookie(sessionCookieName, rd.SessionID.String(), int((30 * 24 * 60 * 60)), "/", "", false, true)
		}

		ctx := ctxutil.WithRequestData(c.Request.Context(), rd)
		c.Request = c.Request.WithContext(ctx)
		c.Set("session_id", rd.SessionID.String())
		c.Next()
	}
}

// RequireSession rejects requests that somehow lack a session (the Session
// middleware always sets one, so this guards ordering mistakes).
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil || rd.SessionID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
			return
		}
		c.Next()
	}
}
