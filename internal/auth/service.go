package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/gabrielmoneiro/mariadoce/pkg/auth"
	"github.com/gabrielmoneiro/mariadoce/pkg/config"
	"github.com/gabrielmoneiro/mariadoce/pkg/db/models"
	pkgerrors "github.com/gabrielmoneiro/mariadoce/pkg/errors"
	"github.com/gabrielmoneiro/mariadoce/pkg/logger"
	"github.com/gabrielmoneiro/mariadoce/pkg/security"
)

// One message for every credential failure so callers cannot probe which
// emails exist.
const invalidCredentialsMessage = "invalid credentials"

// Service authenticates back-office admins.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

// LoginRequest carries the admin credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Token       string     `json:"token"`
	ExpiresAt   time.Time  `json:"expires_at"`
	AdminID     uuid.UUID  `json:"admin_id"`
	Email       string     `json:"email"`
	DisplayName *string    `json:"display_name,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type service struct {
	repo        Repository
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService wires the admin auth service.
func NewService(repo Repository, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("admin repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        repo,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		logg:        logg,
		now:         time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin")
	}
	if !admin.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	ok, err := security.VerifyPassword(req.Password, admin.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := s.now()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		AdminID: admin.ID,
		Email:   admin.Email,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	previousLogin := admin.LastLoginAt
	if err := s.repo.UpdateLastLogin(ctx, admin.ID, now); err != nil {
		// Login still succeeds; the timestamp is informational.
		s.logg.Warn(ctx, fmt.Sprintf("could not record last login for %s: %v", admin.Email, err))
	}

	ctx = s.logg.WithAdminID(ctx, admin.ID.String())
	s.logg.Info(ctx, "admin logged in")

	return &LoginResponse{
		Token:       token,
		ExpiresAt:   now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		AdminID:     admin.ID,
		Email:       admin.Email,
		DisplayName: admin.DisplayName,
		LastLoginAt: previousLogin,
	}, nil
}

// EnsureAdmin creates the bootstrap admin account when the table is empty.
// Subsequent runs are no-ops, so a stale env password never overwrites a
// rotated one.
func (s *service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count admins")
	}
	if count > 0 {
		return nil
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash bootstrap password")
	}

	admin := &models.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bootstrap admin")
	}

	s.logg.Info(ctx, fmt.Sprintf("bootstrap admin %s created", email))
	return nil
}
