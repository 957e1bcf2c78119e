package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Debt is a directional amount owed between two operators for one accrual
// event. Aggregate balances are always a SUM over matching rows; there is no
// mutable running balance. The only legal mutations are the forward-only flag
// transitions settled=false->true and verified=false->true, and verified may
// never be true while settled is false.
type Debt struct {
	ID         uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	DebtorID   string          `gorm:"column:debtor_id;not null;index"`
	CreditorID string          `gorm:"column:creditor_id;not null;index"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;not null"`
	Settled    bool            `gorm:"column:settled;not null;default:false"`
	Verified   bool            `gorm:"column:verified;not null;default:false"`
}

func (Debt) TableName() string { return "debts" }
