package reports

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
	monthLayout = "2006-01"
)

// popularStationsLimit caps the "most popular booths" report.
const popularStationsLimit = 5

// Service produces the dashboard projections: monthly gap-filled series,
// per-road distributions, and the top-booth leaderboard. Every aggregate is
// recomputed from stored rows on each call.
type Service interface {
	TrafficVariation(ctx context.Context, operatorID string, from, to time.Time) (*TrafficSeriesResult, error)
	TrafficVariationPerRoad(ctx context.Context, operatorID, roadName string, from, to time.Time) (*TrafficSeriesResult, error)
	Roads(ctx context.Context, operatorID string) (*RoadsResult, error)
	TrafficDistribution(ctx context.Context, operatorID string, from, to time.Time) (*TrafficDistributionResult, error)
	RevenueDistribution(ctx context.Context, operatorID string, from, to time.Time) (*RevenueDistributionResult, error)
	PopularStations(ctx context.Context, operatorID string, from, to time.Time) (*PopularStationsResult, error)
	DebtChart(ctx context.Context, operatorID string, from, to time.Time) (*AmountSeriesResult, error)
	OwedAmounts(ctx context.Context, operatorID string, from, to time.Time) (*OwedAmountsResult, error)
}

// CountPoint is one month in a gap-filled traffic series. A quiet month
// serializes with an explicit zero, never an absent field.
type CountPoint struct {
	Month   string `json:"month"`
	NPasses int    `json:"nPasses"`
}

// AmountPoint is one month in a gap-filled money series.
type AmountPoint struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type TrafficSeriesResult struct {
	OpID             string       `json:"opID"`
	Road             string       `json:"road,omitempty"`
	RequestTimestamp string       `json:"requestTimestamp"`
	PeriodFrom       string       `json:"periodFrom"`
	PeriodTo         string       `json:"periodTo"`
	Series           []CountPoint `json:"series"`
}

type AmountSeriesResult struct {
	OpID             string        `json:"opID"`
	RequestTimestamp string        `json:"requestTimestamp"`
	PeriodFrom       string        `json:"periodFrom"`
	PeriodTo         string        `json:"periodTo"`
	Series           []AmountPoint `json:"series"`
}

type RoadsResult struct {
	OpID             string   `json:"opID"`
	RequestTimestamp string   `json:"requestTimestamp"`
	Roads            []string `json:"roads"`
}

type RoadCount struct {
	Road    string `json:"road"`
	NPasses int    `json:"nPasses"`
}

type TrafficDistributionResult struct {
	OpID             string      `json:"opID"`
	RequestTimestamp string      `json:"requestTimestamp"`
	PeriodFrom       string      `json:"periodFrom"`
	PeriodTo         string      `json:"periodTo"`
	Rows             []RoadCount `json:"rows"`
}

// RoadRevenue keeps the pass count alongside the money figure; a road with
// traffic but zero-charge passes still shows amount 0.
type RoadRevenue struct {
	Road    string  `json:"road"`
	NPasses int     `json:"nPasses"`
	Amount  float64 `json:"amount"`
}

type RevenueDistributionResult struct {
	OpID             string        `json:"opID"`
	RequestTimestamp string        `json:"requestTimestamp"`
	PeriodFrom       string        `json:"periodFrom"`
	PeriodTo         string        `json:"periodTo"`
	Rows             []RoadRevenue `json:"rows"`
}

type StationCount struct {
	StationID string `json:"stationID"`
	Name      string `json:"name"`
	NPasses   int    `json:"nPasses"`
}

type PopularStationsResult struct {
	OpID             string         `json:"opID"`
	RequestTimestamp string         `json:"requestTimestamp"`
	PeriodFrom       string         `json:"periodFrom"`
	PeriodTo         string         `json:"periodTo"`
	Stations         []StationCount `json:"stations"`
}

type CreditorAmount struct {
	CreditorID string  `json:"creditorID"`
	Amount     float64 `json:"amount"`
}

type OwedAmountsResult struct {
	OpID             string           `json:"opID"`
	RequestTimestamp string           `json:"requestTimestamp"`
	PeriodFrom       string           `json:"periodFrom"`
	PeriodTo         string           `json:"periodTo"`
	Creditors        []CreditorAmount `json:"creditors"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the reporting projector with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("report repository required")
	}
	return &service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// monthWindow widens inclusive calendar days to whole months: the series
// covers the month of `from` through the month of `to`, and the fact window
// is the matching half-open day range.
func monthWindow(from, to time.Time) (lo, hi time.Time, fromMonth, toMonth string) {
	lo = time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	firstOfTo := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	hi = firstOfTo.AddDate(0, 1, 0)
	return lo, hi, lo.Format(monthLayout), firstOfTo.Format(monthLayout)
}

func (s *service) monthBins(ctx context.Context, fromMonth, toMonth string) ([]string, error) {
	bins, err := s.repo.Months(ctx, fromMonth, toMonth)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading calendar months")
	}
	if len(bins) == 0 {
		return nil, pkgerrors.NoContent("no calendar months in the requested window")
	}
	return bins, nil
}

func (s *service) countSeries(ctx context.Context, fromMonth, toMonth string, counts map[string]int) ([]CountPoint, error) {
	bins, err := s.monthBins(ctx, fromMonth, toMonth)
	if err != nil {
		return nil, err
	}
	series := make([]CountPoint, 0, len(bins))
	for _, m := range bins {
		series = append(series, CountPoint{Month: m, NPasses: counts[m]})
	}
	return series, nil
}

func (s *service) amountSeries(ctx context.Context, fromMonth, toMonth string, amounts map[string]decimal.Decimal) ([]AmountPoint, error) {
	bins, err := s.monthBins(ctx, fromMonth, toMonth)
	if err != nil {
		return nil, err
	}
	series := make([]AmountPoint, 0, len(bins))
	for _, m := range bins {
		series = append(series, AmountPoint{Month: m, Amount: money.Rounded1(amounts[m])})
	}
	return series, nil
}

func (s *service) TrafficVariation(ctx context.Context, operatorID string, from, to time.Time) (*TrafficSeriesResult, error) {
	lo, hi, fromMonth, toMonth := monthWindow(from, to)
	facts, err := s.repo.PassFacts(ctx, operatorID, lo, hi)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading pass facts")
	}
	return s.trafficSeries(ctx, operatorID, "", facts, fromMonth, toMonth)
}

func (s *service) TrafficVariationPerRoad(ctx context.Context, operatorID, roadName string, from, to time.Time) (*TrafficSeriesResult, error) {
	lo, hi, fromMonth, toMonth := monthWindow(from, to)
	facts, err := s.repo.PassFactsByRoad(ctx, operatorID, roadName, lo, hi)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading pass facts")
	}
	return s.trafficSeries(ctx, operatorID, roadName, facts, fromMonth, toMonth)
}

func (s *service) trafficSeries(ctx context.Context, operatorID, roadName string, facts []PassFact, fromMonth, toMonth string) (*TrafficSeriesResult, error) {
	counts := map[string]int{}
	for _, f := range facts {
		counts[f.Timestamp.Format(monthLayout)]++
	}

	series, err := s.countSeries(ctx, fromMonth, toMonth, counts)
	if err != nil {
		return nil, err
	}

	return &TrafficSeriesResult{
		OpID:             operatorID,
		Road:             roadName,
		RequestTimestamp: s.now().Format(stampLayout),
		PeriodFrom:       fromMonth,
		PeriodTo:         toMonth,
		Series:           series,
	}, nil
}

func (s *service) Roads(ctx context.Context, operatorID string) (*RoadsResult, error) {
	names, err := s.repo.RoadNames(ctx, operatorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing roads")
	}
	if len(names) == 0 {
		return nil, pkgerrors.NoContent("no roads for the specified operator")
	}

	return &RoadsResult{
		OpID:             operatorID,
		RequestTimestamp: s.now().Format(stampLayout),
		Roads:            names,
	}, nil
}

func (s *service) TrafficDistribution(ctx context.Context, operatorID string, from, to time.Time) (*TrafficDistributionResult, error) {
	facts, err := s.loadDistributionFacts(ctx, operatorID, from, to)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	order := []string{}
	for _, f := range facts {
		if _, seen := counts[f.RoadName]; !seen {
			order = append(order, f.RoadName)
		}
		counts[f.RoadName]++
	}
	sort.Strings(order)

	rows := make([]RoadCount, 0, len(order))
	for _, road := range order {
		rows = append(rows, RoadCount{Road: road, NPasses: counts[road]})
	}
	return &TrafficDistributionResult{
		OpID:             operatorID,
		RequestTimestamp: s.now().Format(stampLayout),
		PeriodFrom:       from.Format(dateLayout),
		PeriodTo:         to.Format(dateLayout),
		Rows:             rows,
	}, nil
}

func (s *service) RevenueDistribution(ctx context.Context, operatorID string, from, to time.Time) (*RevenueDistributionResult, error) {
	facts, err := s.loadDistributionFacts(ctx, operatorID, from, to)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	totals := map[string]decimal.Decimal{}
	order := []string{}
	for _, f := range facts {
		if _, seen := counts[f.RoadName]; !seen {
			order = append(order, f.RoadName)
		}
		counts[f.RoadName]++
		totals[f.RoadName] = totals[f.RoadName].Add(f.Charge)
	}
	sort.Strings(order)

	rows := make([]RoadRevenue, 0, len(order))
	for _, road := range order {
		rows = append(rows, RoadRevenue{
			Road:    road,
			NPasses: counts[road],
			Amount:  money.Rounded1(totals[road]),
		})
	}
	return &RevenueDistributionResult{
		OpID:             operatorID,
		RequestTimestamp: s.now().Format(stampLayout),
		PeriodFrom:       from.Format(dateLayout),
		PeriodTo:         to.Format(dateLayout),
		Rows:             rows,
	}, nil
}

// loadDistributionFacts applies the empty-result policy shared by the
// distribution reports: zero matching rows is NoContent, not an empty list.
func (s *service) loadDistributionFacts(ctx context.Context, operatorID string, from, to time.Time) ([]PassFact, error) {
	facts, err := s.repo.PassFacts(ctx, operatorID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading pass facts")
	}
	if len(facts) == 0 {
		return nil, pkgerrors.NoContent("no data found for the specified parameters")
	}
	return facts, nil
}

// PopularStations returns the five busiest booths, ties broken by station ID
// ascending so the leaderboard is deterministic.
func (s *service) PopularStations(ctx context.Context, operatorID string, from, to time.Time) (*PopularStationsResult, error) {
	facts, err := s.loadDistributionFacts(ctx, operatorID, from, to)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	names := map[string]string{}
	for _, f := range facts {
		counts[f.StationID]++
		names[f.StationID] = f.StationName
	}

	stations := make([]StationCount, 0, len(counts))
	for id, n := range counts {
		stations = append(stations, StationCount{StationID: id, Name: names[id], NPasses: n})
	}
	sort.Slice(stations, func(i, j int) bool {
		if stations[i].NPasses != stations[j].NPasses {
			return stations[i].NPasses > stations[j].NPasses
		}
		return stations[i].StationID < stations[j].StationID
	})
	if len(stations) > popularStationsLimit {
		stations = stations[:popularStationsLimit]
	}

	return &PopularStationsResult{
		OpID:             operatorID,
		RequestTimestamp: s.now().Format(stampLayout),
		PeriodFrom:       from.Format(dateLayout),
		PeriodTo:         to.Format(dateLayout),
		Stations:         stations,
	}, nil
}

func (s *service) DebtChart(ctx context.Context, operatorID string, from, to time.Time) (*AmountSeriesResult, error) {
	lo, hi, fromMonth, toMonth := monthWindow(from, to)
	facts, err := s.repo.DebtFacts(ctx, operatorID, lo, hi)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading debt facts")
	}

	amounts := map[string]decimal.Decimal{}
	for _, d := range facts {
		key := d.CreatedAt.Format(monthLayout)
		amounts[key] = amounts[key].Add(d.Amount)
	}

	series, err := s.amountSeries(ctx, fromMonth, toMonth, amounts)
	if err != nil {
		return nil, err
	}

	return &AmountSeriesResult{
		OpID:             operatorID,
		RequestTimestamp: s.now().Format(stampLayout),
		PeriodFrom:       fromMonth,
		PeriodTo:         toMonth,
		Series:           series,
	}, nil
}

func (s *service) OwedAmounts(ctx context.Context, operatorID string, from, to time.Time) (*OwedAmountsResult, error) {
	rows, err := s.repo.UnsettledByCreditor(ctx, operatorID, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading unsettled debts")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.NoContent("no data found for the specified parameters")
	}

	totals := map[string]decimal.Decimal{}
	order := []string{}
	for _, d := range rows {
		if _, seen := totals[d.CreditorID]; !seen {
			order = append(order, d.CreditorID)
		}
		totals[d.CreditorID] = totals[d.CreditorID].Add(d.Amount)
	}
	sort.Strings(order)

	creditors := make([]CreditorAmount, 0, len(order))
	for _, id := range order {
		creditors = append(creditors, CreditorAmount{
			CreditorID: id,
			Amount:     money.Rounded1(totals[id]),
		})
	}

	return &OwedAmountsResult{
		OpID:             operatorID,
		RequestTimestamp: s.now().Format(stampLayout),
		PeriodFrom:       from.Format(dateLayout),
		PeriodTo:         to.Format(dateLayout),
		Creditors:        creditors,
	}, nil
}
