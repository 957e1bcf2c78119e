package models

// CalendarMonth is a canonical month enumeration ("YYYY-MM") used to left-join
// sparse pass/debt facts so reporting series never silently omit quiet months.
// Seeded by migration; not user data.
type CalendarMonth struct {
	Month string `gorm:"column:month;primaryKey"`
}

func (CalendarMonth) TableName() string { return "calendar_months" }
