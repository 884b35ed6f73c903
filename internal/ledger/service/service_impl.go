package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tvorai/creditgate/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
	}
}

// lockedBalance mirrors the credit_balances columns read under lock.
type lockedBalance struct {
	ID               snowflake.ID
	AccountID        snowflake.ID
	CreditsRemaining int64
}

func (s *Service) Consume(ctx context.Context, req domain.ConsumeRequest) (domain.ConsumeResult, error) {
	if req.Cost < 0 {
		return domain.ConsumeResult{}, domain.ErrInvalidCost
	}

	var result domain.ConsumeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The authoritative sufficiency check happens on the locked row.
		// Any earlier read is a fast path only: another transaction may
		// have committed a debit since.
		balance, err := s.lockBalance(ctx, tx, req.AccountID)
		if err != nil {
			return fmt.Errorf("%w: lock balance: %v", domain.ErrTransactionFailed, err)
		}
		if balance == nil {
			return domain.ErrBalanceMissing
		}
		if balance.CreditsRemaining < req.Cost {
			return domain.ErrInsufficientCredits
		}

		newBalance := balance.CreditsRemaining - req.Cost
		now := time.Now().UTC()

		res := tx.Exec(
			`UPDATE credit_balances SET credits_remaining = ?, updated_at = ? WHERE id = ?`,
			newBalance,
			now,
			balance.ID,
		)
		if res.Error != nil {
			return fmt.Errorf("%w: update balance: %v", domain.ErrTransactionFailed, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: balance row vanished under lock", domain.ErrTransactionFailed)
		}

		record := domain.UsageRecord{
			ID:           s.genID.Generate(),
			AccountID:    req.AccountID,
			FeatureType:  req.FeatureType,
			CreditsSpent: req.Cost,
			Metadata:     req.Metadata,
			CreatedAt:    now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("%w: insert usage record: %v", domain.ErrTransactionFailed, err)
		}

		result = domain.ConsumeResult{
			Charged:          req.Cost,
			CreditsRemaining: newBalance,
		}
		return nil
	})
	if err != nil {
		return domain.ConsumeResult{}, err
	}

	s.log.Info("credits debited",
		zap.String("account_id", req.AccountID.String()),
		zap.String("feature_type", req.FeatureType),
		zap.Int64("charged", result.Charged),
		zap.Int64("credits_remaining", result.CreditsRemaining),
	)
	return result, nil
}

// lockBalance reads the account's balance row with select-for-update
// semantics. SQLite has no row locks; its single-writer transactions
// serialize the debit path on their own.
func (s *Service) lockBalance(ctx context.Context, tx *gorm.DB, accountID snowflake.ID) (*lockedBalance, error) {
	query := `SELECT id, account_id, credits_remaining FROM credit_balances WHERE account_id = ?`
	if tx.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var balance lockedBalance
	if err := tx.WithContext(ctx).Raw(query, accountID).Scan(&balance).Error; err != nil {
		return nil, err
	}
	if balance.ID == 0 {
		return nil, nil
	}
	return &balance, nil
}

func (s *Service) Recent(ctx context.Context, accountID snowflake.ID, limit int) ([]domain.UsageRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var records []domain.UsageRecord
	err := s.db.WithContext(ctx).
		Model(&domain.UsageRecord{}).
		Where("account_id = ?", accountID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
