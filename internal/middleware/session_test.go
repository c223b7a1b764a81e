package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scan-registration/internal/models"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
	"github.com/noah-isme/scan-registration/pkg/sessioncookie"
)

type stubResolver struct {
	session *models.Session
	err     error
	token   string
}

func (s *stubResolver) RequireSession(ctx context.Context, token string) (*models.Session, error) {
	s.token = token
	return s.session, s.err
}

func newSessionRouter(resolver SessionResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireSession(resolver, sessioncookie.Policy{}))
	handler := func(c *gin.Context) {
		c.String(http.StatusOK, SessionFromContext(c).Username)
	}
	r.GET("/students", handler)
	r.GET("/api/students", handler)
	return r
}

func TestRequireSessionPassesLiveSession(t *testing.T) {
	resolver := &stubResolver{session: &models.Session{ID: "s1", Username: "admin"}}
	r := newSessionRouter(resolver)

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.AddCookie(&http.Cookie{Name: sessioncookie.Name, Value: "tok"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())
	assert.Equal(t, "tok", resolver.token)
}

func TestRequireSessionRedirectsPages(t *testing.T) {
	r := newSessionRouter(&stubResolver{err: appErrors.Clone(appErrors.ErrUnauthorized, "login required")})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
}

func TestRequireSessionRejectsAPIWith401(t *testing.T) {
	r := newSessionRouter(&stubResolver{err: appErrors.Clone(appErrors.ErrUnauthorized, "session expired")})

	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	req.AddCookie(&http.Cookie{Name: sessioncookie.Name, Value: "stale"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"UNAUTHORIZED"`)
	require.NotEmpty(t, rec.Result().Cookies())
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestRequireSessionStoreDown(t *testing.T) {
	r := newSessionRouter(&stubResolver{err: appErrors.Unavailable(errors.New("dial tcp"), "session store unavailable")})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/students", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
