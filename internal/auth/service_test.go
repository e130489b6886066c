package auth

import (
	"context"
	"io"
	"strings"
	"testing"
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

var testJWTCfg = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "mariadoce-test",
	ExpirationMinutes: 60,
}

// Low-cost argon parameters keep the test fast.
var testPasswordCfg = config.PasswordConfig{
	ArgonMemoryKB:    8192,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type stubAdminRepo struct {
	admins    map[string]*models.AdminUser
	lastLogin map[uuid.UUID]time.Time
}

func newStubAdminRepo() *stubAdminRepo {
	return &stubAdminRepo{
		admins:    map[string]*models.AdminUser{},
		lastLogin: map[uuid.UUID]time.Time{},
	}
}

func (r *stubAdminRepo) FindByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	admin, ok := r.admins[strings.ToLower(email)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return admin, nil
}

func (r *stubAdminRepo) Create(_ context.Context, admin *models.AdminUser) error {
	r.admins[strings.ToLower(admin.Email)] = admin
	return nil
}

func (r *stubAdminRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.admins)), nil
}

func (r *stubAdminRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.lastLogin[id] = at
	return nil
}

func newTestAuthService(repo Repository) *service {
	return &service{
		repo:        repo,
		jwtCfg:      testJWTCfg,
		passwordCfg: testPasswordCfg,
		logg:        logger.New(logger.Options{ServiceName: "auth-test", Output: io.Discard}),
		now:         time.Now,
	}
}

func seedAdmin(t *testing.T, repo *stubAdminRepo, email, password string) *models.AdminUser {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordCfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := &models.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	repo.admins[strings.ToLower(email)] = admin
	return admin
}

func TestLoginIssuesToken(t *testing.T) {
	repo := newStubAdminRepo()
	admin := seedAdmin(t, repo, "gabi@mariadoce.com.br", "correct horse")
	svc := newTestAuthService(repo)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Gabi@MariaDoce.com.br",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AdminID != admin.ID {
		t.Fatalf("unexpected admin id %s", resp.AdminID)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTCfg, resp.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Email != admin.Email {
		t.Fatalf("claims do not match admin: %+v", claims)
	}

	if _, ok := repo.lastLogin[admin.ID]; !ok {
		t.Fatalf("last login must be recorded")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newStubAdminRepo()
	seedAdmin(t, repo, "gabi@mariadoce.com.br", "correct horse")
	svc := newTestAuthService(repo)

	// Wrong password and unknown email answer identically.
	_, err := svc.Login(context.Background(), LoginRequest{Email: "gabi@mariadoce.com.br", Password: "wrong"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("wrong password must be unauthorized, got %v", err)
	}
	wrongPassMsg := pkgerrors.As(err).Message()

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@mariadoce.com.br", Password: "correct horse"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("unknown email must be unauthorized, got %v", err)
	}
	if pkgerrors.As(err).Message() != wrongPassMsg {
		t.Fatalf("credential failures must be indistinguishable")
	}
}

func TestLoginRejectsInactiveAdmin(t *testing.T) {
	repo := newStubAdminRepo()
	admin := seedAdmin(t, repo, "gabi@mariadoce.com.br", "correct horse")
	admin.IsActive = false
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "gabi@mariadoce.com.br", Password: "correct horse"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("inactive admin must be unauthorized, got %v", err)
	}
}

func TestEnsureAdminSeedsOnce(t *testing.T) {
	repo := newStubAdminRepo()
	svc := newTestAuthService(repo)

	if err := svc.EnsureAdmin(context.Background(), "gabi@mariadoce.com.br", "initial"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if len(repo.admins) != 1 {
		t.Fatalf("expected one admin, got %d", len(repo.admins))
	}

	// A second call with different credentials must not touch the table.
	if err := svc.EnsureAdmin(context.Background(), "other@mariadoce.com.br", "changed"); err != nil {
		t.Fatalf("ensure admin again: %v", err)
	}
	if len(repo.admins) != 1 {
		t.Fatalf("seed must be idempotent, got %d admins", len(repo.admins))
	}

	if _, err := svc.Login(context.Background(), LoginRequest{Email: "gabi@mariadoce.com.br", Password: "initial"}); err != nil {
		t.Fatalf("seeded admin must be able to log in: %v", err)
	}
}

func TestEnsureAdminSkipsBlankConfig(t *testing.T) {
	repo := newStubAdminRepo()
	svc := newTestAuthService(repo)

	if err := svc.EnsureAdmin(context.Background(), "", ""); err != nil {
		t.Fatalf("blank bootstrap config must be a no-op: %v", err)
	}
	if len(repo.admins) != 0 {
		t.Fatalf("no admin may be created without config")
	}
}
