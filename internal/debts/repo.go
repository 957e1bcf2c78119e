package debts

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tollnet/interop-backoffice/pkg/db/models"
)

// PairTotal is a grouped sum of debt amounts keyed by the counterparty
// operator.
type PairTotal struct {
	OperatorID string
	Total      decimal.Decimal
}

// Repository persists debt rows and runs the two conditional flag
// transitions. The transitions report rows affected so callers can tell a
// no-op apart from a real state change.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, debt *models.Debt) error
	MarkSettled(ctx context.Context, debtorID, creditorID string) (int64, error)
	MarkVerified(ctx context.Context, debtorID, creditorID string) (int64, error)
	UnsettledTotals(ctx context.Context, debtorID string) ([]PairTotal, error)
	UnverifiedTotals(ctx context.Context, creditorID string) ([]PairTotal, error)
	ListByPair(ctx context.Context, debtorID, creditorID string, from, to time.Time) ([]models.Debt, error)
	OperatorIDs(ctx context.Context) ([]string, error)
	Months(ctx context.Context, from, to string) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a debt repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, debt *models.Debt) error {
	return r.db.WithContext(ctx).Create(debt).Error
}

// MarkSettled flips open rows for the ordered pair to settled. The flag
// predicate makes concurrent calls race-safe: exactly one caller observes a
// nonzero row count.
func (r *repository) MarkSettled(ctx context.Context, debtorID, creditorID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Debt{}).
		Where("debtor_id = ? AND creditor_id = ? AND settled = ? AND verified = ?", debtorID, creditorID, false, false).
		Update("settled", true)
	return res.RowsAffected, res.Error
}

func (r *repository) MarkVerified(ctx context.Context, debtorID, creditorID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Debt{}).
		Where("debtor_id = ? AND creditor_id = ? AND settled = ? AND verified = ?", debtorID, creditorID, true, false).
		Update("verified", true)
	return res.RowsAffected, res.Error
}

func (r *repository) UnsettledTotals(ctx context.Context, debtorID string) ([]PairTotal, error) {
	var rows []PairTotal
	err := r.db.WithContext(ctx).
		Model(&models.Debt{}).
		Select("creditor_id AS operator_id, SUM(amount) AS total").
		Where("debtor_id = ? AND settled = ?", debtorID, false).
		Group("creditor_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UnverifiedTotals(ctx context.Context, creditorID string) ([]PairTotal, error) {
	var rows []PairTotal
	err := r.db.WithContext(ctx).
		Model(&models.Debt{}).
		Select("debtor_id AS operator_id, SUM(amount) AS total").
		Where("creditor_id = ? AND settled = ? AND verified = ?", creditorID, true, false).
		Group("debtor_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByPair(ctx context.Context, debtorID, creditorID string, from, to time.Time) ([]models.Debt, error) {
	var rows []models.Debt
	err := r.db.WithContext(ctx).
		Where("debtor_id = ? AND creditor_id = ?", debtorID, creditorID).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) OperatorIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Operator{}).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Months returns calendar months in [from, to], both "YYYY-MM", newest first.
func (r *repository) Months(ctx context.Context, from, to string) ([]string, error) {
	var months []string
	err := r.db.WithContext(ctx).
		Model(&models.CalendarMonth{}).
		Where("month >= ? AND month <= ?", from, to).
		Order("month DESC").
		Pluck("month", &months).Error
	if err != nil {
		return nil, err
	}
	return months, nil
}
