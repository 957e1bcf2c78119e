package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tollnet/interop-backoffice/internal/operators"
	pkgauth "github.com/tollnet/interop-backoffice/pkg/auth"
	"github.com/tollnet/interop-backoffice/pkg/config"
	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
	"github.com/tollnet/interop-backoffice/pkg/security"
)

// SessionRegistry tracks live access tokens so logout can revoke them before
// expiry. Satisfied by session.Manager.
type SessionRegistry interface {
	Register(ctx context.Context, accessID, operatorID string) error
	Revoke(ctx context.Context, accessID string) error
}

// Service authenticates operator consoles. The settlement core never touches
// credentials; it only sees the operator code the middleware resolves.
type Service interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, accessID string) error
}

type LoginResult struct {
	Token string `json:"token"`
}

type service struct {
	repo     operators.Repository
	sessions SessionRegistry
	jwtCfg   config.JWTConfig
	now      func() time.Time
}

// NewService wires login/logout against the operator store and the session
// registry.
func NewService(repo operators.Repository, sessions SessionRegistry, jwtCfg config.JWTConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("operator repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session registry required")
	}
	return &service{
		repo:     repo,
		sessions: sessions,
		jwtCfg:   jwtCfg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	operator, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading operator")
	}
	if operator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(password, operator.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	jti := uuid.NewString()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		OperatorID: operator.ID,
		Username:   operator.Username,
		Admin:      operator.Admin,
		JTI:        jti,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	if err := s.sessions.Register(ctx, jti, operator.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "registering session")
	}

	return &LoginResult{Token: token}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if accessID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}
