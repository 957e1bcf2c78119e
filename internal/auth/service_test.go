package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tollnet/interop-backoffice/internal/operators"
	pkgauth "github.com/tollnet/interop-backoffice/pkg/auth"
	"github.com/tollnet/interop-backoffice/pkg/config"
	"github.com/tollnet/interop-backoffice/pkg/db/models"
	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
	"github.com/tollnet/interop-backoffice/pkg/security"
)

type fakeOperatorRepo struct {
	byUsername map[string]*models.Operator
}

func (f *fakeOperatorRepo) WithTx(tx *gorm.DB) operators.Repository { return f }

func (f *fakeOperatorRepo) List(_ context.Context) ([]models.Operator, error) { return nil, nil }

func (f *fakeOperatorRepo) FindByID(_ context.Context, _ string) (*models.Operator, error) {
	return nil, nil
}

func (f *fakeOperatorRepo) FindByUsername(_ context.Context, username string) (*models.Operator, error) {
	return f.byUsername[username], nil
}

func (f *fakeOperatorRepo) Upsert(_ context.Context, _ *models.Operator) error { return nil }

type fakeSessions struct {
	registered map[string]string
	revoked    []string
}

func (f *fakeSessions) Register(_ context.Context, accessID, operatorID string) error {
	if f.registered == nil {
		f.registered = map[string]string{}
	}
	f.registered[accessID] = operatorID
	return nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "tollnet-test", ExpirationMinutes: 120}
}

func newAuthService(t *testing.T) (Service, *fakeSessions) {
	t.Helper()

	hash, err := security.HashPassword("freepasses4all", config.PasswordConfig{
		Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32,
	})
	require.NoError(t, err)

	repo := &fakeOperatorRepo{byUsername: map[string]*models.Operator{
		"nao-console": {ID: "NAO", Name: "Nea Odos", Username: "nao-console", PasswordHash: hash},
	}}
	sessions := &fakeSessions{}
	svc, err := NewService(repo, sessions, testJWTConfig())
	require.NoError(t, err)
	return svc, sessions
}

func TestLoginIssuesTokenAndSession(t *testing.T) {
	svc, sessions := newAuthService(t)

	res, err := svc.Login(context.Background(), "nao-console", "freepasses4all")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, "NAO", claims.OperatorID)

	// The token's JTI is registered as the live session.
	assert.Equal(t, "NAO", sessions.registered[claims.ID])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, sessions := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "nao-console", "wrong")
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())

	_, err = svc.Login(ctx, "ghost", "freepasses4all")
	appErr = pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())

	assert.Empty(t, sessions.registered)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, sessions := newAuthService(t)

	require.NoError(t, svc.Logout(context.Background(), "some-jti"))
	assert.Equal(t, []string{"some-jti"}, sessions.revoked)
}
