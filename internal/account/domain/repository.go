package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *Account) error
	FindByExternalID(ctx context.Context, db *gorm.DB, externalID int64) (*Account, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Account, error)
	UpdateEmail(ctx context.Context, db *gorm.DB, id snowflake.ID, email string) error
}
