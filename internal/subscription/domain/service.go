package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// SyncRequest carries one subscription-update webhook event.
type SyncRequest struct {
	ExternalUserID     int64
	Email              string
	PlanID             string
	MonthlyCreditLimit int64
	CycleStart         time.Time
	CycleEnd           time.Time
	Active             bool
}

// Overview is the active subscription joined with its current balance.
// Balance is nil when the subscription exists but no balance row was ever
// written: a data-integrity state the caller must surface, not default.
type Overview struct {
	Subscription *Subscription
	Balance      *CreditBalance
}

type Service interface {
	// Sync applies a webhook event: upserts the account, the subscription
	// cycle and resets the balance to the full allotment. Idempotent under
	// replay of an identical payload.
	Sync(ctx context.Context, req SyncRequest) error
	// ActiveWithBalance returns the most recent active subscription and the
	// current balance row for the account.
	ActiveWithBalance(ctx context.Context, accountID snowflake.ID) (Overview, error)
}

var (
	ErrInvalidPlan          = errors.New("invalid_plan")
	ErrInvalidCreditLimit   = errors.New("invalid_credit_limit")
	ErrInvalidCycle         = errors.New("invalid_cycle")
	ErrNoActiveSubscription = errors.New("no_active_subscription")
	ErrNoBalanceRecord      = errors.New("no_balance_record")
)
