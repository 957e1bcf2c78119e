package passes

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tollnet/interop-backoffice/pkg/db/models"
)

func setupPassesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	operators := `
CREATE TABLE IF NOT EXISTS operators (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  admin INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	roads := `
CREATE TABLE IF NOT EXISTS roads (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);`
	stations := `
CREATE TABLE IF NOT EXISTS toll_stations (
  id TEXT PRIMARY KEY,
  latitude REAL NOT NULL,
  longitude REAL NOT NULL,
  name TEXT NOT NULL,
  locality TEXT,
  road_id INTEGER NOT NULL,
  pricing_method TEXT,
  operator_id TEXT NOT NULL,
  price1 NUMERIC,
  price2 NUMERIC,
  price3 NUMERIC,
  price4 NUMERIC
);`
	tollPasses := `
CREATE TABLE IF NOT EXISTS toll_passes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  timestamp DATETIME NOT NULL,
  station_id TEXT NOT NULL,
  tag_operator_id TEXT NOT NULL,
  tag_ref TEXT NOT NULL,
  charge NUMERIC NOT NULL
);`
	require.NoError(t, db.Exec(operators).Error)
	require.NoError(t, db.Exec(roads).Error)
	require.NoError(t, db.Exec(stations).Error)
	require.NoError(t, db.Exec(tollPasses).Error)
	return db
}

func newOperator(t *testing.T, db *gorm.DB, id, name string) *models.Operator {
	t.Helper()

	op := &models.Operator{
		ID:           id,
		Name:         name,
		Username:     id,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(op).Error)
	return op
}

func newStation(t *testing.T, db *gorm.DB, id, operatorID string) *models.TollStation {
	t.Helper()

	road := &models.Road{Name: "Road " + id}
	require.NoError(t, db.Create(road).Error)

	station := &models.TollStation{
		ID:         id,
		Name:       "Station " + id,
		RoadID:     road.ID,
		OperatorID: operatorID,
		Price1:     decimal.RequireFromString("2.00"),
	}
	require.NoError(t, db.Create(station).Error)
	return station
}

func newPass(t *testing.T, db *gorm.DB, stationID, tagOpID string, ts time.Time, charge string) *models.TollPass {
	t.Helper()

	pass := &models.TollPass{
		Timestamp:     ts,
		StationID:     stationID,
		TagOperatorID: tagOpID,
		TagRef:        tagOpID + "TAG",
		Charge:        decimal.RequireFromString(charge),
	}
	require.NoError(t, db.Create(pass).Error)
	return pass
}

func TestRepositoryStationByID(t *testing.T) {
	db := setupPassesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newOperator(t, db, "NAO", "Nea Odos")
	newStation(t, db, "NAO01", "NAO")

	station, err := repo.StationByID(ctx, "NAO01")
	require.NoError(t, err)
	require.NotNil(t, station)
	assert.Equal(t, "NAO", station.OperatorID)
	require.NotNil(t, station.Operator)
	assert.Equal(t, "Nea Odos", station.Operator.Name)

	missing, err := repo.StationByID(ctx, "XX99")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepositoryListByStation_windowAndOrder(t *testing.T) {
	db := setupPassesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newOperator(t, db, "NAO", "Nea Odos")
	newStation(t, db, "NAO01", "NAO")

	inWindow := newPass(t, db, "NAO01", "GE", time.Date(2022, 1, 2, 10, 0, 0, 0, time.UTC), "2.85")
	earlier := newPass(t, db, "NAO01", "NAO", time.Date(2022, 1, 2, 8, 0, 0, 0, time.UTC), "2.80")
	newPass(t, db, "NAO01", "OO", time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC), "2.85") // at the exclusive bound
	newPass(t, db, "NAO01", "GE", time.Date(2021, 12, 31, 23, 59, 0, 0, time.UTC), "2.85")

	rows, err := repo.ListByStation(ctx, "NAO01",
		time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, earlier.ID, rows[0].ID)
	assert.Equal(t, inWindow.ID, rows[1].ID)
}

func TestRepositoryListByOperatorPair(t *testing.T) {
	db := setupPassesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newOperator(t, db, "NAO", "Nea Odos")
	newOperator(t, db, "GE", "Gefyra")
	newStation(t, db, "NAO01", "NAO")
	newStation(t, db, "GE02", "GE")

	match := newPass(t, db, "NAO01", "GE", time.Date(2022, 1, 2, 10, 0, 0, 0, time.UTC), "2.85")
	newPass(t, db, "NAO01", "NAO", time.Date(2022, 1, 2, 11, 0, 0, 0, time.UTC), "2.80") // wrong tag operator
	newPass(t, db, "GE02", "GE", time.Date(2022, 1, 2, 12, 0, 0, 0, time.UTC), "1.90")   // wrong station operator

	rows, err := repo.ListByOperatorPair(ctx, "NAO", "GE",
		time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, match.ID, rows[0].ID)
}

func TestRepositoryListVisitors(t *testing.T) {
	db := setupPassesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newOperator(t, db, "NAO", "Nea Odos")
	newStation(t, db, "NAO01", "NAO")

	visitor1 := newPass(t, db, "NAO01", "GE", time.Date(2022, 1, 2, 10, 0, 0, 0, time.UTC), "2.85")
	visitor2 := newPass(t, db, "NAO01", "OO", time.Date(2022, 1, 2, 11, 0, 0, 0, time.UTC), "2.85")
	newPass(t, db, "NAO01", "NAO", time.Date(2022, 1, 2, 12, 0, 0, 0, time.UTC), "2.80") // home traffic excluded

	rows, err := repo.ListVisitors(ctx, "NAO",
		time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, visitor1.ID, rows[0].ID)
	assert.Equal(t, visitor2.ID, rows[1].ID)
}
