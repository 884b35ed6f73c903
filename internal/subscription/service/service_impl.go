package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/tvorai/creditgate/internal/account/domain"
	"github.com/tvorai/creditgate/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	AccountSvc accountdomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	accountSvc accountdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("subscription.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		accountSvc: p.AccountSvc,
	}
}

func (s *Service) Sync(ctx context.Context, req domain.SyncRequest) error {
	if req.ExternalUserID <= 0 {
		return accountdomain.ErrInvalidExternalID
	}
	if strings.TrimSpace(req.PlanID) == "" {
		return domain.ErrInvalidPlan
	}
	if req.MonthlyCreditLimit <= 0 {
		return domain.ErrInvalidCreditLimit
	}
	if req.CycleStart.IsZero() || req.CycleEnd.IsZero() || !req.CycleEnd.After(req.CycleStart) {
		return domain.ErrInvalidCycle
	}

	account, err := s.accountSvc.Upsert(ctx, req.ExternalUserID, req.Email)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	sub := domain.Subscription{
		ID:                 s.genID.Generate(),
		AccountID:          account.ID,
		PlanID:             strings.TrimSpace(req.PlanID),
		MonthlyCreditLimit: req.MonthlyCreditLimit,
		CycleStart:         req.CycleStart.UTC(),
		CycleEnd:           req.CycleEnd.UTC(),
		Active:             req.Active,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	balance := domain.CreditBalance{
		ID:               s.genID.Generate(),
		AccountID:        account.ID,
		CycleStart:       req.CycleStart.UTC(),
		CreditsRemaining: req.MonthlyCreditLimit,
		UpdatedAt:        now,
	}

	// One transaction so a half-applied webhook can never leave a new cycle
	// without its balance. The balance write is a full overwrite: credits
	// left in the previous cycle do not roll over.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpsertCycle(ctx, tx, &sub); err != nil {
			return err
		}
		return s.repo.ResetBalance(ctx, tx, &balance)
	})
	if err != nil {
		return err
	}

	s.log.Info("subscription cycle synced",
		zap.String("account_id", account.ID.String()),
		zap.String("plan_id", sub.PlanID),
		zap.Int64("monthly_credit_limit", sub.MonthlyCreditLimit),
		zap.Time("cycle_start", sub.CycleStart),
		zap.Bool("active", sub.Active),
	)
	return nil
}

func (s *Service) ActiveWithBalance(ctx context.Context, accountID snowflake.ID) (domain.Overview, error) {
	sub, err := s.repo.FindActive(ctx, s.db, accountID)
	if err != nil {
		return domain.Overview{}, err
	}
	if sub == nil {
		return domain.Overview{}, domain.ErrNoActiveSubscription
	}

	balance, err := s.repo.FindBalance(ctx, s.db, accountID)
	if err != nil {
		return domain.Overview{}, err
	}

	return domain.Overview{Subscription: sub, Balance: balance}, nil
}
