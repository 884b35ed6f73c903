package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/tvorai/creditgate/internal/subscription/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertCycle(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}, {Name: "cycle_start"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_id",
			"monthly_credit_limit",
			"cycle_end",
			"active",
			"updated_at",
		}),
	}).Create(sub).Error
}

func (r *repo) ResetBalance(ctx context.Context, db *gorm.DB, balance *domain.CreditBalance) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cycle_start",
			"credits_remaining",
			"updated_at",
		}),
	}).Create(balance).Error
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT id, account_id, plan_id, monthly_credit_limit, cycle_start, cycle_end, active, created_at, updated_at
		 FROM subscriptions
		 WHERE account_id = ? AND active = ?
		 ORDER BY cycle_start DESC
		 LIMIT 1`,
		accountID,
		true,
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}

func (r *repo) FindBalance(ctx context.Context, db *gorm.DB, accountID snowflake.ID) (*domain.CreditBalance, error) {
	var balance domain.CreditBalance
	err := db.WithContext(ctx).Raw(
		`SELECT id, account_id, cycle_start, credits_remaining, updated_at
		 FROM credit_balances
		 WHERE account_id = ?`,
		accountID,
	).Scan(&balance).Error
	if err != nil {
		return nil, err
	}
	if balance.ID == 0 {
		return nil, nil
	}
	return &balance, nil
}
