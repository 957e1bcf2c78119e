package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TollPass records one vehicle crossing. Rows are immutable once inserted
// except via bulk reset. The home/visitor label is derived at read time from
// the tag operator and the station's owning operator, never stored.
type TollPass struct {
	ID            uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	Timestamp     time.Time       `gorm:"column:timestamp;not null;index"`
	StationID     string          `gorm:"column:station_id;not null;index"`
	Station       *TollStation    `gorm:"foreignKey:StationID"`
	TagOperatorID string          `gorm:"column:tag_operator_id;not null;index"`
	TagRef        string          `gorm:"column:tag_ref;not null"`
	Charge        decimal.Decimal `gorm:"column:charge;type:numeric;not null"`
}

func (TollPass) TableName() string { return "toll_passes" }
