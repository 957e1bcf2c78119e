package responses

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
)

type samplePass struct {
	PassIndex int     `json:"passIndex"`
	PassID    uint64  `json:"passID"`
	Charge    float64 `json:"passCharge"`
}

type sampleResult struct {
	StationID        string       `json:"stationID"`
	RequestTimestamp string       `json:"requestTimestamp"`
	NPasses          int          `json:"nPasses"`
	PassList         []samplePass `json:"passList"`
	Road             string       `json:"road,omitempty"`
}

func sample() sampleResult {
	return sampleResult{
		StationID:        "NAO01",
		RequestTimestamp: "2022-03-15 09:30",
		NPasses:          2,
		PassList: []samplePass{
			{PassIndex: 1, PassID: 10, Charge: 2.8},
			{PassIndex: 2, PassID: 11, Charge: 2.9},
		},
	}
}

func TestWriteResultJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/tollStationPasses/NAO01/20220101/20220103", nil)

	WriteResult(rec, req, sample())

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var decoded sampleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, sample(), decoded)
}

func TestWriteResultCSV(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/x?format=csv", nil)

	WriteResult(rec, req, sample())

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// The omitempty Road field is zero and dropped, matching the JSON form.
	assert.Equal(t, []string{"stationID", "requestTimestamp", "nPasses", "passList"}, rows[0])
	assert.Equal(t, "NAO01", rows[1][0])
	assert.Equal(t, "2", rows[1][2])

	// The nested list survives as an embedded JSON cell.
	var list []samplePass
	require.NoError(t, json.Unmarshal([]byte(rows[1][3]), &list))
	require.Len(t, list, 2)
	assert.Equal(t, uint64(11), list[1].PassID)
}

func TestWriteErrorNoContent(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(context.Background(), nil, rec, pkgerrors.NoContent("nothing matched"))

	assert.Equal(t, 204, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestWriteErrorValidation(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeValidation, "invalid date format"))

	assert.Equal(t, 400, rec.Code)

	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, string(pkgerrors.CodeValidation), envelope.Error.Code)
	assert.Equal(t, "invalid date format", envelope.Error.Message)
}

func TestWriteErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeInternal, "pq: duplicate key"))

	assert.Equal(t, 500, rec.Code)
	assert.NotContains(t, rec.Body.String(), "duplicate key")
}
