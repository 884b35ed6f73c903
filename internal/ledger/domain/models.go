// Package domain contains the append-only usage audit log and the ledger
// service contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// UsageRecord is one immutable debit entry. Rows are only ever inserted,
// inside the same transaction that decrements the balance.
type UsageRecord struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	AccountID    snowflake.ID      `gorm:"not null;index:ix_usage_records_account" json:"account_id"`
	FeatureType  string            `gorm:"type:text;not null" json:"feature_type"`
	CreditsSpent int64             `gorm:"not null" json:"credits_spent"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"timestamp"`
}

// TableName sets the database table name.
func (UsageRecord) TableName() string { return "usage_records" }
