package stations

import (
	"context"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/tollnet/interop-backoffice/pkg/db/models"
	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
)

const stampLayout = "2006-01-02 15:04"

// TxRunner runs fn inside one transaction. Satisfied by db.Client.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Pinger reports store liveness. Satisfied by db.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service owns the bulk station/pass lifecycle: all-or-nothing manifest
// reloads, pass ingestion and the admin healthcheck.
type Service interface {
	ResetStations(ctx context.Context, manifest io.Reader) (*ResetResult, error)
	ResetPasses(ctx context.Context) (*ResetResult, error)
	AddPasses(ctx context.Context, manifest io.Reader) (*ResetResult, error)
	HealthCheck(ctx context.Context) (*HealthResult, error)
}

type ResetResult struct {
	RequestTimestamp string `json:"requestTimestamp"`
	RowsAffected     int    `json:"rowsAffected"`
}

type HealthResult struct {
	Status           string `json:"status"`
	RequestTimestamp string `json:"requestTimestamp"`
	NStations        int64  `json:"n_stations"`
	NTags            int64  `json:"n_tags"`
	NPasses          int64  `json:"n_passes"`
}

type service struct {
	repo   Repository
	tx     TxRunner
	pinger Pinger
	now    func() time.Time
}

// NewService wires the lifecycle service. The TxRunner carries the
// all-or-nothing guarantee for reloads.
func NewService(repo Repository, tx TxRunner, pinger Pinger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("station repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if pinger == nil {
		return nil, fmt.Errorf("store pinger required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		pinger: pinger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// ResetStations replaces the station table from a manifest. The zero-pass
// check and the destructive reload share one transaction so a concurrent
// pass insert cannot slip between them.
func (s *service) ResetStations(ctx context.Context, manifest io.Reader) (*ResetResult, error) {
	records, err := ParseStationManifest(manifest)
	if err != nil {
		return nil, err
	}

	var inserted int
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		nPasses, err := repo.CountPasses(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting passes")
		}
		if nPasses > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "toll passes must be reset before reloading stations")
		}

		roads, err := repo.RoadIDsByName(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading roads")
		}
		operators, err := repo.OperatorIDs(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading operators")
		}

		stations := make([]models.TollStation, 0, len(records))
		for _, rec := range records {
			roadID, ok := roads[rec.RoadName]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeReferenceNotFound,
					fmt.Sprintf("unknown road %q", rec.RoadName))
			}
			if _, ok := operators[rec.OperatorID]; !ok {
				return pkgerrors.New(pkgerrors.CodeReferenceNotFound,
					fmt.Sprintf("unknown operator %q", rec.OperatorID))
			}
			stations = append(stations, models.TollStation{
				ID:            rec.StationID,
				Latitude:      rec.Latitude,
				Longitude:     rec.Longitude,
				Name:          rec.Name,
				Locality:      rec.Locality,
				RoadID:        roadID,
				PricingMethod: rec.PricingMethod,
				OperatorID:    rec.OperatorID,
				Price1:        rec.Prices[0],
				Price2:        rec.Prices[1],
				Price3:        rec.Prices[2],
				Price4:        rec.Prices[3],
			})
		}

		if err := repo.DeleteAllStations(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing stations")
		}
		if err := repo.InsertStations(ctx, stations); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "inserting stations")
		}
		inserted = len(stations)
		return nil
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resetting stations")
	}

	return &ResetResult{
		RequestTimestamp: s.now().Format(stampLayout),
		RowsAffected:     inserted,
	}, nil
}

func (s *service) ResetPasses(ctx context.Context) (*ResetResult, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteAllPasses(ctx)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resetting passes")
	}

	return &ResetResult{
		RequestTimestamp: s.now().Format(stampLayout),
	}, nil
}

// AddPasses ingests a pass manifest all-or-nothing. Every referenced station
// must already exist.
func (s *service) AddPasses(ctx context.Context, manifest io.Reader) (*ResetResult, error) {
	records, err := ParsePassManifest(manifest)
	if err != nil {
		return nil, err
	}

	var inserted int
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		stations, err := repo.StationIDs(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading stations")
		}

		passes := make([]models.TollPass, 0, len(records))
		for _, rec := range records {
			if _, ok := stations[rec.StationID]; !ok {
				return pkgerrors.New(pkgerrors.CodeReferenceNotFound,
					fmt.Sprintf("unknown station %q", rec.StationID))
			}
			passes = append(passes, models.TollPass{
				Timestamp:     rec.Timestamp,
				StationID:     rec.StationID,
				TagOperatorID: rec.TagOperatorID,
				TagRef:        rec.TagRef,
				Charge:        rec.Charge,
			})
		}

		if err := repo.InsertPasses(ctx, passes); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "inserting passes")
		}
		inserted = len(passes)
		return nil
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding passes")
	}

	return &ResetResult{
		RequestTimestamp: s.now().Format(stampLayout),
		RowsAffected:     inserted,
	}, nil
}

func (s *service) HealthCheck(ctx context.Context) (*HealthResult, error) {
	if err := s.pinger.Ping(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable")
	}

	counts, err := s.repo.LedgerCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting ledger rows")
	}

	return &HealthResult{
		Status:           "OK",
		RequestTimestamp: s.now().Format(stampLayout),
		NStations:        counts.Stations,
		NTags:            counts.Tags,
		NPasses:          counts.Passes,
	}, nil
}
