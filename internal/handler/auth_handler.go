package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/scan-registration/internal/models"
	"github.com/noah-isme/scan-registration/internal/web"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
	"github.com/noah-isme/scan-registration/pkg/flash"
	"github.com/noah-isme/scan-registration/pkg/sessioncookie"
)

type authenticator interface {
	Authenticate(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error)
	EndSession(ctx context.Context, token string, meta models.SessionMeta) error
}

// AuthHandler serves the login form and logout.
type AuthHandler struct {
	service authenticator
	policy  sessioncookie.Policy
	logger  *zap.Logger
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authenticator, policy sessioncookie.Policy, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{service: svc, policy: policy, logger: logger}
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	renderPage(c, http.StatusOK, web.PageLogin, web.Page{Title: "Login"})
}

// Login godoc
// @Summary Operator login
// @Description Checks the admin credentials, sets the session cookie and redirects to the scanning page
// @Tags Authentication
// @Accept x-www-form-urlencoded
// @Produce html
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 303 {string} string "redirect to /"
// @Failure 401 {string} string "login form with error"
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	page := web.Page{Title: "Login"}
	if err := c.ShouldBind(&req); err != nil {
		renderPageError(c, web.PageLogin, page, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	page.Form = map[string]string{"username": req.Username}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Authenticate(c.Request.Context(), req)
	if err != nil {
		renderPageError(c, web.PageLogin, page, err)
		return
	}

	sessioncookie.Write(c.Writer, c.Request, res.Token, h.policy)
	h.logger.Info("operator logged in", zap.String("username", res.Session.Username), zap.String("session_id", res.Session.ID))
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout ends the session and returns to the login form.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := sessioncookie.Read(c.Request)
	meta := models.SessionMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if err := h.service.EndSession(c.Request.Context(), token, meta); err != nil {
		h.logger.Warn("end session failed", zap.Error(err))
	}
	sessioncookie.Clear(c.Writer, c.Request, h.policy)
	flash.Write(c.Writer, flash.Notice{Kind: flash.KindInfo, Message: "You have been logged out."})
	c.Redirect(http.StatusSeeOther, "/login")
}
