package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tollnet/interop-backoffice/pkg/db/models"
)

// PassFact is one crossing at the reporting operator's stations, denormalized
// with the station and road attributes the projections group by.
type PassFact struct {
	Timestamp   time.Time
	StationID   string
	StationName string
	RoadName    string
	Charge      decimal.Decimal
}

// Repository reads the raw facts behind the dashboard projections. Grouping
// and month-bucketing happen in the service so the queries stay portable
// across SQL dialects.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	PassFacts(ctx context.Context, operatorID string, from, to time.Time) ([]PassFact, error)
	PassFactsByRoad(ctx context.Context, operatorID, roadName string, from, to time.Time) ([]PassFact, error)
	DebtFacts(ctx context.Context, debtorID string, from, to time.Time) ([]models.Debt, error)
	UnsettledByCreditor(ctx context.Context, debtorID string, from, to time.Time) ([]models.Debt, error)
	RoadNames(ctx context.Context, operatorID string) ([]string, error)
	Months(ctx context.Context, from, to string) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reporting repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) passFactQuery(ctx context.Context, operatorID string, from, to time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.TollPass{}).
		Select("toll_passes.timestamp AS timestamp, toll_stations.id AS station_id, toll_stations.name AS station_name, roads.name AS road_name, toll_passes.charge AS charge").
		Joins("JOIN toll_stations ON toll_stations.id = toll_passes.station_id").
		Joins("JOIN roads ON roads.id = toll_stations.road_id").
		Where("toll_stations.operator_id = ?", operatorID).
		Where("toll_passes.timestamp >= ? AND toll_passes.timestamp < ?", from, to).
		Order("toll_passes.timestamp ASC, toll_passes.id ASC")
}

func (r *repository) PassFacts(ctx context.Context, operatorID string, from, to time.Time) ([]PassFact, error) {
	var rows []PassFact
	if err := r.passFactQuery(ctx, operatorID, from, to).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) PassFactsByRoad(ctx context.Context, operatorID, roadName string, from, to time.Time) ([]PassFact, error) {
	var rows []PassFact
	err := r.passFactQuery(ctx, operatorID, from, to).
		Where("roads.name = ?", roadName).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) DebtFacts(ctx context.Context, debtorID string, from, to time.Time) ([]models.Debt, error) {
	var rows []models.Debt
	err := r.db.WithContext(ctx).
		Where("debtor_id = ?", debtorID).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UnsettledByCreditor(ctx context.Context, debtorID string, from, to time.Time) ([]models.Debt, error) {
	var rows []models.Debt
	err := r.db.WithContext(ctx).
		Where("debtor_id = ? AND settled = ?", debtorID, false).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) RoadNames(ctx context.Context, operatorID string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.TollStation{}).
		Distinct("roads.name").
		Joins("JOIN roads ON roads.id = toll_stations.road_id").
		Where("toll_stations.operator_id = ?", operatorID).
		Order("roads.name ASC").
		Pluck("roads.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
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
