package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// UpsertCycle inserts or updates the subscription row keyed on
	// (account_id, cycle_start).
	UpsertCycle(ctx context.Context, db *gorm.DB, sub *Subscription) error
	// ResetBalance overwrites the account's balance row with the full
	// allotment for the given cycle, creating it on first sight.
	ResetBalance(ctx context.Context, db *gorm.DB, balance *CreditBalance) error
	FindActive(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (*Subscription, error)
	FindBalance(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (*CreditBalance, error)
}
