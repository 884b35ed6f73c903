package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tvorai/creditgate/internal/account/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, account *domain.Account) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO accounts (id, external_user_id, email, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		account.ID,
		account.ExternalUserID,
		account.Email,
		account.CreatedAt,
		account.UpdatedAt,
	).Error
}

func (r *repo) FindByExternalID(ctx context.Context, db *gorm.DB, externalID int64) (*domain.Account, error) {
	var account domain.Account
	err := db.WithContext(ctx).Raw(
		`SELECT id, external_user_id, email, created_at, updated_at
		 FROM accounts WHERE external_user_id = ?`,
		externalID,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == 0 {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Account, error) {
	var account domain.Account
	err := db.WithContext(ctx).Raw(
		`SELECT id, external_user_id, email, created_at, updated_at
		 FROM accounts WHERE id = ?`,
		id,
	).Scan(&account).Error
	if err != nil {
		return nil, err
	}
	if account.ID == 0 {
		return nil, nil
	}
	return &account, nil
}

func (r *repo) UpdateEmail(ctx context.Context, db *gorm.DB, id snowflake.ID, email string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE accounts SET email = ?, updated_at = ? WHERE id = ?`,
		email,
		time.Now().UTC(),
		id,
	).Error
}
