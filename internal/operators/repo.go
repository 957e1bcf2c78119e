package operators

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tollnet/interop-backoffice/pkg/db/models"
)

// Repository persists operator accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Operator, error)
	FindByID(ctx context.Context, id string) (*models.Operator, error)
	FindByUsername(ctx context.Context, username string) (*models.Operator, error)
	Upsert(ctx context.Context, operator *models.Operator) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an operator repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context) ([]models.Operator, error) {
	var rows []models.Operator
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Operator, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *repository) FindByUsername(ctx context.Context, username string) (*models.Operator, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *repository) findOne(ctx context.Context, query string, arg string) (*models.Operator, error) {
	var operator models.Operator
	err := r.db.WithContext(ctx).
		Where(query, arg).
		First(&operator).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &operator, nil
}

// Upsert inserts the operator or, when the code is already taken, refreshes
// its mutable fields. The code itself is immutable.
func (r *repository) Upsert(ctx context.Context, operator *models.Operator) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "username", "password_hash", "admin"}),
		}).
		Create(operator).Error
}
