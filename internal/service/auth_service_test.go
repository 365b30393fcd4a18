package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/labops/labops-api/internal/models"
	"github.com/labops/labops-api/pkg/config"
	appErrors "github.com/labops/labops-api/pkg/errors"
)

type userRepoStub struct {
	users   map[string]*models.User
	tokens  map[string]*models.RefreshToken
	revoked []string
}

func newUserRepoStub(users ...*models.User) *userRepoStub {
	s := &userRepoStub{users: map[string]*models.User{}, tokens: map[string]*models.RefreshToken{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (s *userRepoStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.tokens[token.Token] = token
	return nil
}

func (s *userRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := s.tokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	s.revoked = append(s.revoked, id)
	for _, t := range s.tokens {
		if t.ID == id {
			t.Revoked = true
			t.RevokedAt = &revokedAt
		}
	}
	return nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Expiration:        time.Hour,
		RefreshExpiration: 24 * time.Hour,
	}
}

func TestAuthServiceLogin(t *testing.T) {
	repo := newUserRepoStub(&models.User{
		ID: "u1", Email: "ops@lab.test",
		PasswordHash: hashPassword(t, "s3cret"),
		FullName:     "Ops Admin", Role: models.RoleAdmin, Active: true,
	})
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@lab.test", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "u1", resp.User.ID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	repo := newUserRepoStub(&models.User{
		ID: "u1", Email: "ops@lab.test",
		PasswordHash: hashPassword(t, "s3cret"), Active: true,
	})
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@lab.test", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@lab.test", Password: "s3cret"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginRejectsInactiveAccount(t *testing.T) {
	repo := newUserRepoStub(&models.User{
		ID: "u1", Email: "ops@lab.test",
		PasswordHash: hashPassword(t, "s3cret"), Active: false,
	})
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@lab.test", Password: "s3cret"})
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)
}

func TestAuthServiceRefreshRotates(t *testing.T) {
	repo := newUserRepoStub(&models.User{
		ID: "u1", Email: "ops@lab.test",
		PasswordHash: hashPassword(t, "s3cret"), Active: true,
	})
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@lab.test", Password: "s3cret"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old token was revoked during rotation and cannot be replayed.
	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	repo := newUserRepoStub()
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	other := NewAuthService(repo, config.JWTConfig{Secret: "other-secret", Expiration: time.Hour}, nil, zap.NewNop())
	repo.users["u1"] = &models.User{ID: "u1", Email: "ops@lab.test", Active: true, PasswordHash: hashPassword(t, "pw")}
	login, err := other.Login(context.Background(), models.LoginRequest{Email: "ops@lab.test", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(login.AccessToken)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceLogoutIdempotent(t *testing.T) {
	repo := newUserRepoStub(&models.User{
		ID: "u1", Email: "ops@lab.test",
		PasswordHash: hashPassword(t, "s3cret"), Active: true,
	})
	svc := NewAuthService(repo, testJWTConfig(), nil, zap.NewNop())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@lab.test", Password: "s3cret"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken))
	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken))
	require.NoError(t, svc.Logout(context.Background(), "unknown"))
}
