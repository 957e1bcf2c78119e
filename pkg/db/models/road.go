package models

// Road is static reference data; stations cannot reference a road that does
// not exist.
type Road struct {
	ID   uint   `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;not null;unique"`
}

func (Road) TableName() string { return "roads" }
