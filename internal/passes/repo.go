package passes

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tollnet/interop-backoffice/pkg/db/models"
)

// Repository reads toll passes and their stations. All range predicates are
// half-open [from, to): callers hand in the exclusive upper bound so that an
// inclusive calendar day covers its full 24 hours.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	StationByID(ctx context.Context, stationID string) (*models.TollStation, error)
	ListByStation(ctx context.Context, stationID string, from, to time.Time) ([]models.TollPass, error)
	ListByOperatorPair(ctx context.Context, stationOpID, tagOpID string, from, to time.Time) ([]models.TollPass, error)
	ListVisitors(ctx context.Context, stationOpID string, from, to time.Time) ([]models.TollPass, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a pass repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) StationByID(ctx context.Context, stationID string) (*models.TollStation, error) {
	var station models.TollStation
	err := r.db.WithContext(ctx).
		Preload("Operator").
		Where("id = ?", stationID).
		First(&station).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &station, nil
}

func (r *repository) ListByStation(ctx context.Context, stationID string, from, to time.Time) ([]models.TollPass, error) {
	var rows []models.TollPass
	err := r.db.WithContext(ctx).
		Where("station_id = ? AND timestamp >= ? AND timestamp < ?", stationID, from, to).
		Order("timestamp ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByOperatorPair(ctx context.Context, stationOpID, tagOpID string, from, to time.Time) ([]models.TollPass, error) {
	var rows []models.TollPass
	err := r.db.WithContext(ctx).
		Joins("JOIN toll_stations ON toll_stations.id = toll_passes.station_id").
		Where("toll_stations.operator_id = ? AND toll_passes.tag_operator_id = ?", stationOpID, tagOpID).
		Where("toll_passes.timestamp >= ? AND toll_passes.timestamp < ?", from, to).
		Order("toll_passes.timestamp ASC, toll_passes.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListVisitors(ctx context.Context, stationOpID string, from, to time.Time) ([]models.TollPass, error) {
	var rows []models.TollPass
	err := r.db.WithContext(ctx).
		Joins("JOIN toll_stations ON toll_stations.id = toll_passes.station_id").
		Where("toll_stations.operator_id = ? AND toll_passes.tag_operator_id <> ?", stationOpID, stationOpID).
		Where("toll_passes.timestamp >= ? AND toll_passes.timestamp < ?", from, to).
		Order("toll_passes.timestamp ASC, toll_passes.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
