package stations

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
)

// StationRecord is one parsed row of a station manifest.
type StationRecord struct {
	OperatorID    string
	StationID     string
	Name          string
	PricingMethod string
	Locality      string
	RoadName      string
	Latitude      float64
	Longitude     float64
	Prices        [4]decimal.Decimal
}

// PassRecord is one parsed row of a pass ingest file.
type PassRecord struct {
	Timestamp     time.Time
	StationID     string
	TagOperatorID string
	TagRef        string
	Charge        decimal.Decimal
}

const (
	stationManifestColumns = 12
	passManifestColumns    = 5
)

// passTimestampLayouts are tried in order; ingest files arrive in either the
// ISO-style form or the legacy short-year form.
var passTimestampLayouts = []string{
	"2006-01-02 15:04",
	"01-02-06 15:04",
}

// ParseStationManifest reads a station CSV of the form
// OpID,TollID,Name,PM,Locality,Road,Lat,Lng,Price1,Price2,Price3,Price4.
// A header row is detected and skipped. Any malformed row fails the whole
// manifest.
func ParseStationManifest(r io.Reader) ([]StationRecord, error) {
	rows, err := readRows(r, stationManifestColumns)
	if err != nil {
		return nil, err
	}

	records := make([]StationRecord, 0, len(rows))
	for i, row := range rows {
		lat, err := strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
		if err != nil {
			return nil, rowErr(i, "invalid latitude %q", row[6])
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(row[7]), 64)
		if err != nil {
			return nil, rowErr(i, "invalid longitude %q", row[7])
		}

		rec := StationRecord{
			OperatorID:    strings.TrimSpace(row[0]),
			StationID:     strings.TrimSpace(row[1]),
			Name:          strings.TrimSpace(row[2]),
			PricingMethod: strings.TrimSpace(row[3]),
			Locality:      strings.TrimSpace(row[4]),
			RoadName:      strings.TrimSpace(row[5]),
			Latitude:      lat,
			Longitude:     lng,
		}
		if rec.OperatorID == "" || rec.StationID == "" || rec.RoadName == "" {
			return nil, rowErr(i, "operator, station and road are required")
		}
		for p := 0; p < 4; p++ {
			price, err := decimal.NewFromString(strings.TrimSpace(row[8+p]))
			if err != nil {
				return nil, rowErr(i, "invalid price %q", row[8+p])
			}
			rec.Prices[p] = price
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "station manifest is empty")
	}
	return records, nil
}

// ParsePassManifest reads a pass ingest CSV of the form
// timestamp,tollID,tagHomeID,tagRef,charge.
func ParsePassManifest(r io.Reader) ([]PassRecord, error) {
	rows, err := readRows(r, passManifestColumns)
	if err != nil {
		return nil, err
	}

	records := make([]PassRecord, 0, len(rows))
	for i, row := range rows {
		ts, err := parsePassTimestamp(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, rowErr(i, "invalid timestamp %q", row[0])
		}
		charge, err := decimal.NewFromString(strings.TrimSpace(row[4]))
		if err != nil {
			return nil, rowErr(i, "invalid charge %q", row[4])
		}

		rec := PassRecord{
			Timestamp:     ts,
			StationID:     strings.TrimSpace(row[1]),
			TagOperatorID: strings.TrimSpace(row[2]),
			TagRef:        strings.TrimSpace(row[3]),
			Charge:        charge,
		}
		if rec.StationID == "" || rec.TagOperatorID == "" || rec.TagRef == "" {
			return nil, rowErr(i, "station, tag operator and tag ref are required")
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pass manifest is empty")
	}
	return records, nil
}

func readRows(r io.Reader, columns int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = columns
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed manifest")
	}
	if len(rows) > 0 && looksLikeHeader(rows[0]) {
		rows = rows[1:]
	}
	return rows, nil
}

// looksLikeHeader treats a first row where no cell parses as a number as
// column names.
func looksLikeHeader(row []string) bool {
	for _, cell := range row {
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			return false
		}
	}
	return true
}

func parsePassTimestamp(value string) (time.Time, error) {
	for _, layout := range passTimestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func rowErr(index int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("manifest row %d: %s", index+1, msg))
}
