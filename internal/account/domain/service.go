package domain

import (
	"context"
	"errors"
)

// Service exposes lookup and the single mutation path (webhook / login
// exchange) for accounts. Consumption never creates accounts.
type Service interface {
	FindByExternalID(ctx context.Context, externalID int64) (*Account, error)
	// Upsert creates the account on first sight and syncs the email on
	// subsequent calls. Email sync is best-effort.
	Upsert(ctx context.Context, externalID int64, email string) (*Account, error)
}

var (
	ErrNotFound          = errors.New("account_not_found")
	ErrInvalidExternalID = errors.New("invalid_external_id")
)
