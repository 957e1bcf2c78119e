package stations

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
)

const stationManifest = `OpID,TollID,Name,PM,Locality,Road,Lat,Lng,Price1,Price2,Price3,Price4
NAO,NAO01,Afidnes,ETC,Afidnes,Attiki Odos,38.2549,23.8347,1.25,1.70,2.40,3.40
EG,EG05,Malgara,MTC,Malgara,Egnatia,40.6042,22.7179,0.90,1.20,1.80,2.50
`

func TestParseStationManifest(t *testing.T) {
	records, err := ParseStationManifest(strings.NewReader(stationManifest))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "NAO", first.OperatorID)
	assert.Equal(t, "NAO01", first.StationID)
	assert.Equal(t, "Attiki Odos", first.RoadName)
	assert.InDelta(t, 38.2549, first.Latitude, 1e-9)
	assert.Equal(t, "1.25", first.Prices[0].String())
	assert.Equal(t, "3.4", first.Prices[3].String())
}

func TestParseStationManifestRejectsBadRow(t *testing.T) {
	bad := "NAO,NAO01,Afidnes,ETC,Afidnes,Attiki Odos,not-a-number,23.8,1,1,1,1\n"

	_, err := ParseStationManifest(strings.NewReader(bad))
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestParseStationManifestRejectsEmpty(t *testing.T) {
	_, err := ParseStationManifest(strings.NewReader("OpID,TollID,Name,PM,Locality,Road,Lat,Lng,Price1,Price2,Price3,Price4\n"))
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestParsePassManifest(t *testing.T) {
	manifest := `timestamp,tollID,tagHomeID,tagRef,charge
2022-01-02 08:15,NAO01,GE,GETAG7,2.85
01-03-22 09:30,NAO01,NAO,NAOTAG1,2.80
`
	records, err := ParsePassManifest(strings.NewReader(manifest))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, time.Date(2022, 1, 2, 8, 15, 0, 0, time.UTC), records[0].Timestamp)
	assert.Equal(t, "GETAG7", records[0].TagRef)
	assert.Equal(t, "2.85", records[0].Charge.String())

	// Legacy short-year form.
	assert.Equal(t, time.Date(2022, 1, 3, 9, 30, 0, 0, time.UTC), records[1].Timestamp)
}

func TestParsePassManifestRejectsUnknownTimestamp(t *testing.T) {
	_, err := ParsePassManifest(strings.NewReader("yesterday,NAO01,GE,GETAG7,2.85\n"))
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}
