package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/session"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	principalKey    = "principal"
	requestIDHeader = "X-Request-ID"
)

// SessionPrincipal resolves the session's user id to a principal and stores
// it on the gin context. It never rejects a request.
func SessionPrincipal(sm *scs.SessionManager, auth services.AuthService, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
			c.Request.Header.Set(requestIDHeader, requestID)
		}
		c.Header(requestIDHeader, requestID)
		ctx := services.WithRequestContext(c.Request.Context(), requestID, c.ClientIP(), c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)

		p, err := auth.CurrentPrincipal(ctx, session.UserID(ctx, sm))
		if err != nil {
			logger.LogError(err, "Failed to resolve session principal", "path", c.Request.URL.Path)
			p = services.Principal{}
		}

		c.Set(principalKey, p)
		if !p.IsAnonymous() {
			c.Set("user_id", p.UserID)
			c.Set("user_role", string(p.Role))
		}
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) services.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(services.Principal); ok {
			return p
		}
	}
	return services.Principal{}
}

// RequireAuth admits signed-in users.
func RequireAuth() gin.HandlerFunc {
	return requirePolicy(services.Authenticated)
}

// RequireAdmin admits signed-in admins.
func RequireAdmin() gin.HandlerFunc {
	return requirePolicy(services.AdminOnly)
}

func requirePolicy(policy services.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := services.Authorize(currentPrincipal(c), policy)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, services.ErrUnauthorized):
			if wantsHTML(c.Request) {
				c.Redirect(http.StatusFound, "/auth/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Access denied"})
		}
	}
}

// wantsHTML reports a browser navigation.
func wantsHTML(r *http.Request) bool {
	return r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html")
}

// safeNext accepts only same-site relative paths as a post-login target.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
