package operators

import (
	"context"
	"fmt"
	"strings"

	"github.com/tollnet/interop-backoffice/pkg/config"
	"github.com/tollnet/interop-backoffice/pkg/db/models"
	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
	"github.com/tollnet/interop-backoffice/pkg/security"
)

// Account is the outward view of an operator, credentials excluded.
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
}

// Service provisions and lists operator accounts.
type Service interface {
	List(ctx context.Context) ([]Account, error)
	Upsert(ctx context.Context, id, name, username, password string, admin bool) (*Account, error)
	EnsureAdmin(ctx context.Context) error
}

type service struct {
	repo        Repository
	passwordCfg config.PasswordConfig
	adminCfg    config.AdminConfig
}

// NewService wires operator provisioning.
func NewService(repo Repository, passwordCfg config.PasswordConfig, adminCfg config.AdminConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("operator repository required")
	}
	return &service{
		repo:        repo,
		passwordCfg: passwordCfg,
		adminCfg:    adminCfg,
	}, nil
}

func (s *service) List(ctx context.Context) ([]Account, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing operators")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.NoContent("no operators registered")
	}

	accounts := make([]Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, accountOf(&row))
	}
	return accounts, nil
}

// Upsert creates or refreshes an operator account. An empty password keeps
// the stored hash for existing accounts and is rejected for new ones.
func (s *service) Upsert(ctx context.Context, id, name, username, password string, admin bool) (*Account, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	username = strings.TrimSpace(username)
	if id == "" || username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator code and username are required")
	}
	if name == "" {
		name = id
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading operator")
	}

	var hash string
	switch {
	case password != "":
		hash, err = security.HashPassword(password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
		}
	case existing != nil:
		hash = existing.PasswordHash
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required for a new operator")
	}

	operator := &models.Operator{
		ID:           id,
		Name:         name,
		Username:     username,
		PasswordHash: hash,
		Admin:        admin,
	}
	if err := s.repo.Upsert(ctx, operator); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving operator")
	}

	account := accountOf(operator)
	return &account, nil
}

// EnsureAdmin bootstraps the configured admin account at startup. A missing
// admin password is only an error when the account does not exist yet.
func (s *service) EnsureAdmin(ctx context.Context) error {
	existing, err := s.repo.FindByUsername(ctx, s.adminCfg.Username)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading admin account")
	}
	if existing != nil {
		return nil
	}
	if s.adminCfg.Password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "admin password not configured")
	}

	_, err = s.Upsert(ctx, "ADMIN", "Administrator", s.adminCfg.Username, s.adminCfg.Password, true)
	return err
}

func accountOf(operator *models.Operator) Account {
	return Account{
		ID:       operator.ID,
		Name:     operator.Name,
		Username: operator.Username,
		Admin:    operator.Admin,
	}
}
