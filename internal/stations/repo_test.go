package stations

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

func setupStationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	tollPasses := `
CREATE TABLE IF NOT EXISTS toll_passes (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  timestamp DATETIME NOT NULL,
  station_id TEXT NOT NULL,
  tag_operator_id TEXT NOT NULL,
  tag_ref TEXT NOT NULL,
  charge NUMERIC NOT NULL
);`
	require.NoError(t, db.Exec(tollPasses).Error)
	return db
}

func ledgerPass(station, tagOp, tagRef string) models.TollPass {
	return models.TollPass{
		Timestamp:     time.Date(2022, 1, 2, 8, 0, 0, 0, time.UTC),
		StationID:     station,
		TagOperatorID: tagOp,
		TagRef:        tagRef,
		Charge:        decimal.RequireFromString("2.80"),
	}
}

func TestDeleteAllPassesRestartsNumbering(t *testing.T) {
	db := setupStationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.InsertPasses(ctx, []models.TollPass{
		ledgerPass("NAO01", "GE", "GETAG7"),
		ledgerPass("NAO01", "NAO", "NAOTAG1"),
	}))
	require.NoError(t, repo.DeleteAllPasses(ctx))

	n, err := repo.CountPasses(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// A reload after the wipe starts numbering over from 1.
	require.NoError(t, repo.InsertPasses(ctx, []models.TollPass{
		ledgerPass("NAO01", "EG", "EGTAG3"),
	}))
	var first models.TollPass
	require.NoError(t, db.First(&first).Error)
	assert.Equal(t, uint64(1), first.ID)
}
