package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tvorai/creditgate/internal/account/domain"
	"github.com/tvorai/creditgate/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("account.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) FindByExternalID(ctx context.Context, externalID int64) (*domain.Account, error) {
	if externalID <= 0 {
		return nil, domain.ErrInvalidExternalID
	}
	account, err := s.repo.FindByExternalID(ctx, s.db, externalID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

func (s *Service) Upsert(ctx context.Context, externalID int64, email string) (*domain.Account, error) {
	if externalID <= 0 {
		return nil, domain.ErrInvalidExternalID
	}
	email = strings.TrimSpace(email)

	existing, err := s.repo.FindByExternalID(ctx, s.db, externalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if email != "" && email != existing.Email {
			if err := s.repo.UpdateEmail(ctx, s.db, existing.ID, email); err != nil {
				return nil, err
			}
			existing.Email = email
		}
		return existing, nil
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:             s.genID.Generate(),
		ExternalUserID: externalID,
		Email:          email,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, s.db, &account); err != nil {
		// Two concurrent first-sight webhooks race on the unique index;
		// the loser re-reads the winner's row.
		if db.IsDuplicateKeyErr(err) {
			return s.repo.FindByExternalID(ctx, s.db, externalID)
		}
		return nil, err
	}

	s.log.Info("account created",
		zap.Int64("external_user_id", externalID),
		zap.String("account_id", account.ID.String()),
	)
	return &account, nil
}
