package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/scan-registration/internal/models"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
	"github.com/noah-isme/scan-registration/pkg/response"
	"github.com/noah-isme/scan-registration/pkg/sessioncookie"
)

// ContextSessionKey is the gin context key storing the operator session.
const ContextSessionKey = "currentSession"

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/login"

// SessionResolver resolves a cookie token to a live session.
type SessionResolver interface {
	RequireSession(ctx context.Context, token string) (*models.Session, error)
}

// RequireSession lets a request through only with a live operator session.
// Pages are redirected to the login form, JSON routes get a 401 envelope.
func RequireSession(resolver SessionResolver, policy sessioncookie.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := sessioncookie.Read(c.Request)
		session, err := resolver.RequireSession(c.Request.Context(), token)
		if err == nil {
			c.Set(ContextSessionKey, session)
			c.Next()
			return
		}

		unauthorized := errors.Is(err, appErrors.ErrUnauthorized)
		if unauthorized && token != "" {
			sessioncookie.Clear(c.Writer, c.Request, policy)
		}
		if WantsJSON(c) {
			response.AbortError(c, err)
			return
		}
		if unauthorized {
			_ = c.Error(err)
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}
		appErr := appErrors.FromError(err)
		_ = c.Error(err)
		c.String(appErr.Status, appErr.Message)
		c.Abort()
	}
}

// SessionFromContext returns the session set by RequireSession.
func SessionFromContext(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, ok := value.(*models.Session)
	if !ok {
		return nil
	}
	return session
}

// WantsJSON reports whether the request targets the JSON API.
func WantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
