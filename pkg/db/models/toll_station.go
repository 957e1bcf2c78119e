package models

import "github.com/shopspring/decimal"

// TollStation is a physical toll booth. The owning operator determines the
// home/visitor classification of every pass recorded at the station.
type TollStation struct {
	ID            string          `gorm:"column:id;primaryKey"`
	Latitude      float64         `gorm:"column:latitude;not null"`
	Longitude     float64         `gorm:"column:longitude;not null"`
	Name          string          `gorm:"column:name;not null"`
	Locality      string          `gorm:"column:locality"`
	RoadID        uint            `gorm:"column:road_id;not null;index"`
	Road          *Road           `gorm:"foreignKey:RoadID"`
	PricingMethod string          `gorm:"column:pricing_method"`
	OperatorID    string          `gorm:"column:operator_id;not null;index"`
	Operator      *Operator       `gorm:"foreignKey:OperatorID"`
	Price1        decimal.Decimal `gorm:"column:price1;type:numeric"`
	Price2        decimal.Decimal `gorm:"column:price2;type:numeric"`
	Price3        decimal.Decimal `gorm:"column:price3;type:numeric"`
	Price4        decimal.Decimal `gorm:"column:price4;type:numeric"`
}

func (TollStation) TableName() string { return "toll_stations" }
