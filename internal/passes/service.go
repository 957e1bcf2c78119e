package passes

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
	"github.com/tollnet/interop-backoffice/pkg/money"
)

const (
	stampLayout = "2006-01-02 15:04"
	dateLayout  = "2006-01-02"
)

// Service exposes the settlement aggregator's four read-only query shapes.
// Date ranges are inclusive calendar days.
type Service interface {
	StationPasses(ctx context.Context, stationID string, from, to time.Time) (*StationPassesResult, error)
	PassAnalysis(ctx context.Context, stationOpID, tagOpID string, from, to time.Time) (*PassAnalysisResult, error)
	PassesCost(ctx context.Context, tollOpID, tagOpID string, from, to time.Time) (*PassesCostResult, error)
	ChargesBy(ctx context.Context, tollOpID string, from, to time.Time) (*ChargesByResult, error)
}

// StationPass is one crossing in a station-level listing, annotated with its
// home/visitor classification.
type StationPass struct {
	PassIndex   int      `json:"passIndex"`
	PassID      uint64   `json:"passID"`
	Timestamp   string   `json:"timestamp"`
	TagID       string   `json:"tagID"`
	TagProvider string   `json:"tagProvider"`
	PassType    PassType `json:"passType"`
	PassCharge  float64  `json:"passCharge"`
}

type StationPassesResult struct {
	StationID        string        `json:"stationID"`
	StationOperator  string        `json:"stationOperator"`
	RequestTimestamp string        `json:"requestTimestamp"`
	PeriodFrom       string        `json:"periodFrom"`
	PeriodTo         string        `json:"periodTo"`
	NPasses          int           `json:"nPasses"`
	PassList         []StationPass `json:"passList"`
}

// AnalysisPass is one crossing in an operator-pair listing. No home/visitor
// label: the pair predicate already fixes both legs.
type AnalysisPass struct {
	PassIndex  int     `json:"passIndex"`
	PassID     uint64  `json:"passID"`
	StationID  string  `json:"stationID"`
	Timestamp  string  `json:"timestamp"`
	TagID      string  `json:"tagID"`
	PassCharge float64 `json:"passCharge"`
}

type PassAnalysisResult struct {
	StationOpID      string         `json:"stationOpID"`
	TagOpID          string         `json:"tagOpID"`
	RequestTimestamp string         `json:"requestTimestamp"`
	PeriodFrom       string         `json:"periodFrom"`
	PeriodTo         string         `json:"periodTo"`
	NPasses          int            `json:"nPasses"`
	PassList         []AnalysisPass `json:"passList"`
}

type PassesCostResult struct {
	TollOpID         string  `json:"tollOpID"`
	TagOpID          string  `json:"tagOpID"`
	RequestTimestamp string  `json:"requestTimestamp"`
	PeriodFrom       string  `json:"periodFrom"`
	PeriodTo         string  `json:"periodTo"`
	NPasses          int     `json:"nPasses"`
	PassesCost       float64 `json:"passesCost"`
}

// VisitingOperatorCharges aggregates one visiting operator's traffic at the
// home operator's stations.
type VisitingOperatorCharges struct {
	VisitingOpID string  `json:"visitingOpID"`
	NPasses      int     `json:"nPasses"`
	PassesCost   float64 `json:"passesCost"`
}

type ChargesByResult struct {
	TollOpID         string                    `json:"tollOpID"`
	RequestTimestamp string                    `json:"requestTimestamp"`
	PeriodFrom       string                    `json:"periodFrom"`
	PeriodTo         string                    `json:"periodTo"`
	VOpList          []VisitingOperatorCharges `json:"vOpList"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the aggregator with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pass repository required")
	}
	return &service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// rangeBounds converts inclusive calendar days into the repository's
// half-open window.
func rangeBounds(from, to time.Time) (time.Time, time.Time) {
	return from, to.AddDate(0, 0, 1)
}

func (s *service) StationPasses(ctx context.Context, stationID string, from, to time.Time) (*StationPassesResult, error) {
	station, err := s.repo.StationByID(ctx, stationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading toll station")
	}
	if station == nil {
		return nil, pkgerrors.NoContent("no data found for the specified parameters")
	}

	lo, hi := rangeBounds(from, to)
	rows, err := s.repo.ListByStation(ctx, stationID, lo, hi)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing station passes")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.NoContent("no data found for the specified parameters")
	}

	list := make([]StationPass, 0, len(rows))
	for i, row := range rows {
		list = append(list, StationPass{
			PassIndex:   i + 1,
			PassID:      row.ID,
			Timestamp:   row.Timestamp.Format(stampLayout),
			TagID:       row.TagRef,
			TagProvider: row.TagOperatorID,
			PassType:    Classify(row.TagOperatorID, station.OperatorID),
			PassCharge:  money.Rounded1(row.Charge),
		})
	}

	operatorName := station.OperatorID
	if station.Operator != nil {
		operatorName = station.Operator.Name
	}

	return &StationPassesResult{
		StationID:        station.ID,
		StationOperator:  operatorName,
		RequestTimestamp: s.now().Format(stampLayout),
		PeriodFrom:       from.Format(dateLayout),
		PeriodTo:         to.Format(dateLayout),
		NPasses:          len(list),
		PassList:         list,
	}, nil
}

func (s *service) PassAnalysis(ctx context.Context, stationOpID, tagOpID string, from, to time.Time) (*PassAnalysisResult, error) {
	lo, hi := rangeBounds(from, to)
	rows, err := s.repo.ListByOperatorPair(ctx, stationOpID, tagOpID, lo, hi)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing operator pair passes")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.NoContent("no data found for the specified parameters")
	}

	list := make([]AnalysisPass, 0, len(rows))
	for i, row := range rows {
		list = append(list, AnalysisPass{
			PassIndex:  i + 1,
			PassID:     row.ID,
			StationID:  row.StationID,
			Timestamp:  row.Timestamp.Format(stampLayout),
			TagID:      row.TagRef,
			PassCharge: money.Rounded1(row.Charge),
		})
	}

	return &PassAnalysisResult{
		StationOpID:      stationOpID,
		TagOpID:          tagOpID,
		RequestTimestamp: s.now().Format(stampLayout),
		PeriodFrom:       from.Format(dateLayout),
		PeriodTo:         to.Format(dateLayout),
		NPasses:          len(list),
		PassList:         list,
	}, nil
}

func (s *service) PassesCost(ctx context.Context, tollOpID, tagOpID string, from, to time.Time) (*PassesCostResult, error) {
	lo, hi := rangeBounds(from, to)
	rows, err := s.repo.ListByOperatorPair(ctx, tollOpID, tagOpID, lo, hi)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing operator pair passes")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.NoContent("no data found for the specified parameters")
	}

	// Full-precision sum first; the single rounding happens at the end.
	charges := make([]decimal.Decimal, 0, len(rows))
	for _, row := range rows {
		charges = append(charges, row.Charge)
	}
	total := money.Sum(charges...)

	return &PassesCostResult{
		TollOpID:         tollOpID,
		TagOpID:          tagOpID,
		RequestTimestamp: s.now().Format(stampLayout),
		PeriodFrom:       from.Format(dateLayout),
		PeriodTo:         to.Format(dateLayout),
		NPasses:          len(rows),
		PassesCost:       money.Rounded1(total),
	}, nil
}

func (s *service) ChargesBy(ctx context.Context, tollOpID string, from, to time.Time) (*ChargesByResult, error) {
	lo, hi := rangeBounds(from, to)
	rows, err := s.repo.ListVisitors(ctx, tollOpID, lo, hi)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing visitor passes")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.NoContent("no data found for the specified parameters")
	}

	counts := map[string]int{}
	totals := map[string]decimal.Decimal{}
	order := []string{}
	for _, row := range rows {
		if _, seen := counts[row.TagOperatorID]; !seen {
			order = append(order, row.TagOperatorID)
		}
		counts[row.TagOperatorID]++
		totals[row.TagOperatorID] = totals[row.TagOperatorID].Add(row.Charge)
	}
	sort.Strings(order)

	list := make([]VisitingOperatorCharges, 0, len(order))
	for _, op := range order {
		list = append(list, VisitingOperatorCharges{
			VisitingOpID: op,
			NPasses:      counts[op],
			PassesCost:   money.Rounded1(totals[op]),
		})
	}

	return &ChargesByResult{
		TollOpID:         tollOpID,
		RequestTimestamp: s.now().Format(stampLayout),
		PeriodFrom:       from.Format(dateLayout),
		PeriodTo:         to.Format(dateLayout),
		VOpList:          list,
	}, nil
}
