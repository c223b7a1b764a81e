package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/scan-registration/internal/models"
	"github.com/noah-isme/scan-registration/pkg/config"
	appErrors "github.com/noah-isme/scan-registration/pkg/errors"
)

type sessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuthConfig defines configuration for the operator login flow.
type AuthConfig struct {
	Admin        config.AdminCredentials
	Secret       string
	SessionTTL   time.Duration
	Issuer       string
	StoreTimeout time.Duration
}

// AuthService checks the configured admin credentials and manages operator sessions.
type AuthService struct {
	sessions  sessionStore
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance. audit may be nil.
func NewAuthService(sessions sessionStore, audit auditRecorder, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 12 * time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "scan-registration"
	}
	return &AuthService{
		sessions:  sessions,
		audit:     audit,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Authenticate verifies the submitted credentials and opens a session.
func (s *AuthService) Authenticate(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "username and password are required")
	}
	if !s.credentialsMatch(req.Username, req.Password) {
		s.logger.Warn("login rejected", zap.String("username", req.Username), zap.String("ip", req.IP))
		return nil, appErrors.ErrInvalidCredentials
	}

	loginAt := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		Username:  s.config.Admin.Username,
		LoginAt:   loginAt,
		ExpiresAt: loginAt.Add(s.config.SessionTTL),
		IP:        req.IP,
		UserAgent: req.UserAgent,
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.config.StoreTimeout)
	err := s.sessions.Save(storeCtx, session)
	cancel()
	if err != nil {
		s.logger.Error("session save failed", zap.Error(err))
		return nil, appErrors.Unavailable(err, "session store unavailable")
	}

	token, err := s.signToken(session)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session")
	}

	s.recordAudit(ctx, models.AuditActionLogin, session, models.SessionMeta{IP: req.IP, UserAgent: req.UserAgent})

	return &models.LoginResult{Session: session, Token: token}, nil
}

// RequireSession resolves a session cookie token to its live session.
func (s *AuthService) RequireSession(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "login required")
	}
	claims, err := s.parseToken(token, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid session")
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.config.StoreTimeout)
	session, err := s.sessions.Get(storeCtx, claims.ID)
	cancel()
	if err != nil {
		if errors.Is(err, appErrors.ErrRecordNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
		}
		s.logger.Error("session lookup failed", zap.Error(err))
		return nil, appErrors.Unavailable(err, "session store unavailable")
	}
	if session.Expired(s.now()) || session.Username != claims.Username {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
	}
	return session, nil
}

// EndSession discards the session behind token. Ending a missing or
// unreadable session is a no-op.
func (s *AuthService) EndSession(ctx context.Context, token string, meta models.SessionMeta) error {
	if token == "" {
		return nil
	}
	claims, err := s.parseToken(token, false)
	if err != nil || claims.ID == "" {
		return nil
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.config.StoreTimeout)
	err = s.sessions.Delete(storeCtx, claims.ID)
	cancel()
	if err != nil {
		s.logger.Error("session delete failed", zap.String("session_id", claims.ID), zap.Error(err))
		return appErrors.Unavailable(err, "session store unavailable")
	}

	s.recordAudit(ctx, models.AuditActionLogout, &models.Session{ID: claims.ID, Username: claims.Username}, meta)
	return nil
}

func (s *AuthService) credentialsMatch(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.config.Admin.Username)) == 1
	var passOK bool
	if s.config.Admin.PasswordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(s.config.Admin.PasswordHash), []byte(password)) == nil
	} else {
		passOK = s.config.Admin.Password != "" &&
			subtle.ConstantTimeCompare([]byte(password), []byte(s.config.Admin.Password)) == 1
	}
	return userOK && passOK
}

func (s *AuthService) signToken(session *models.Session) (string, error) {
	claims := &models.SessionClaims{
		Username: session.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Issuer:    s.config.Issuer,
			Subject:   session.Username,
			IssuedAt:  jwt.NewNumericDate(session.LoginAt),
			NotBefore: jwt.NewNumericDate(session.LoginAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *AuthService) parseToken(raw string, validateClaims bool) (*models.SessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if !validateClaims {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	token, err := jwt.ParseWithClaims(raw, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, fmt.Errorf("invalid session claims")
	}
	return claims, nil
}

func (s *AuthService) recordAudit(ctx context.Context, action string, session *models.Session, meta models.SessionMeta) {
	if s.audit == nil {
		return
	}
	storeCtx, cancel := withStoreTimeout(ctx, s.config.StoreTimeout)
	defer cancel()
	if err := s.audit.CreateAuditLog(storeCtx, &models.AuditLog{
		Action:    action,
		Username:  session.Username,
		SessionID: session.ID,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		CreatedAt: s.now(),
	}); err != nil {
		s.logger.Warn("failed to record session audit log", zap.String("action", action), zap.Error(err))
	}
}
