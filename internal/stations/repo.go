package stations

import (
	"context"

	"gorm.io/gorm"

	"github.com/tollnet/interop-backoffice/pkg/db/models"
)

// Counts is the healthcheck snapshot of ledger volume.
type Counts struct {
	Stations int64
	Tags     int64
	Passes   int64
}

// Repository owns the bulk station/pass lifecycle. Batch methods are meant to
// run inside a transaction via WithTx.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	RoadIDsByName(ctx context.Context) (map[string]uint, error)
	OperatorIDs(ctx context.Context) (map[string]struct{}, error)
	StationIDs(ctx context.Context) (map[string]struct{}, error)
	CountPasses(ctx context.Context) (int64, error)
	DeleteAllStations(ctx context.Context) error
	DeleteAllPasses(ctx context.Context) error
	InsertStations(ctx context.Context, stations []models.TollStation) error
	InsertPasses(ctx context.Context, passes []models.TollPass) error
	LedgerCounts(ctx context.Context) (Counts, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a station repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) RoadIDsByName(ctx context.Context) (map[string]uint, error) {
	var roads []models.Road
	if err := r.db.WithContext(ctx).Find(&roads).Error; err != nil {
		return nil, err
	}
	byName := make(map[string]uint, len(roads))
	for _, road := range roads {
		byName[road.Name] = road.ID
	}
	return byName, nil
}

func (r *repository) OperatorIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Operator{}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *repository) StationIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.TollStation{}).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *repository) CountPasses(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.TollPass{}).Count(&n).Error
	return n, err
}

func (r *repository) DeleteAllStations(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&models.TollStation{}).Error
}

// DeleteAllPasses empties the pass ledger and restarts the ID numbering so a
// fresh import starts from 1.
func (r *repository) DeleteAllPasses(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.TollPass{}).Error; err != nil {
		return err
	}
	switch r.db.Dialector.Name() {
	case "postgres":
		return r.db.WithContext(ctx).Exec("ALTER SEQUENCE toll_passes_id_seq RESTART WITH 1").Error
	case "sqlite":
		return r.db.WithContext(ctx).Exec("DELETE FROM sqlite_sequence WHERE name = 'toll_passes'").Error
	}
	return nil
}

func (r *repository) InsertStations(ctx context.Context, stations []models.TollStation) error {
	if len(stations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(stations, 200).Error
}

func (r *repository) InsertPasses(ctx context.Context, passes []models.TollPass) error {
	if len(passes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(passes, 500).Error
}

func (r *repository) LedgerCounts(ctx context.Context) (Counts, error) {
	var counts Counts
	if err := r.db.WithContext(ctx).Model(&models.TollStation{}).Count(&counts.Stations).Error; err != nil {
		return counts, err
	}
	if err := r.db.WithContext(ctx).Model(&models.TollPass{}).Distinct("tag_ref").Count(&counts.Tags).Error; err != nil {
		return counts, err
	}
	if err := r.db.WithContext(ctx).Model(&models.TollPass{}).Count(&counts.Passes).Error; err != nil {
		return counts, err
	}
	return counts, nil
}
