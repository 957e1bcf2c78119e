package models

import "time"

// Operator is a toll-road operating company. The short code doubles as the
// primary key; once toll passes reference it the identity is immutable.
type Operator struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Username     string    `gorm:"column:username;not null;unique"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Admin        bool      `gorm:"column:admin;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Operator) TableName() string { return "operators" }
