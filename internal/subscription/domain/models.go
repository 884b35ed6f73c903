package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Subscription is one billing-plan instance for an account. Cycle identity
// is (account_id, cycle_start); webhook replays land on the same row.
type Subscription struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID          snowflake.ID `gorm:"not null;uniqueIndex:ux_subscriptions_account_cycle,priority:1" json:"account_id"`
	PlanID             string       `gorm:"type:text;not null" json:"plan_id"`
	MonthlyCreditLimit int64        `gorm:"not null" json:"monthly_credit_limit"`
	CycleStart         time.Time    `gorm:"not null;uniqueIndex:ux_subscriptions_account_cycle,priority:2" json:"cycle_start"`
	CycleEnd           time.Time    `gorm:"not null" json:"cycle_end"`
	Active             bool         `gorm:"not null;default:false" json:"active"`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// CreditBalance is the single authoritative remaining-credits row per
// account. Cycle rollover overwrites it in place; unused credits are
// forfeited by design.
type CreditBalance struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID        snowflake.ID `gorm:"not null;uniqueIndex:ux_credit_balances_account" json:"account_id"`
	CycleStart       time.Time    `gorm:"not null" json:"cycle_start"`
	CreditsRemaining int64        `gorm:"not null" json:"credits_remaining"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CreditBalance) TableName() string { return "credit_balances" }
