package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ConsumeRequest is one resolved debit against an account's balance.
type ConsumeRequest struct {
	AccountID   snowflake.ID
	FeatureType string
	Cost        int64
	Metadata    datatypes.JSONMap
}

// ConsumeResult reports the committed debit.
type ConsumeResult struct {
	Charged          int64
	CreditsRemaining int64
}

// Service is the atomic debit-and-log operation. Consume provides no
// idempotency key: a retried call is a fresh debit, so callers must not
// retry blindly after a timeout.
//
// The debit and the downstream provider invocation are deliberately two
// independent operations (charge-then-invoke). A provider failure after a
// committed debit is not refunded here.
type Service interface {
	// Consume atomically verifies sufficiency under a row lock, decrements
	// the balance and appends a usage record. On any error nothing is
	// committed.
	Consume(ctx context.Context, req ConsumeRequest) (ConsumeResult, error)
	// Recent returns the account's newest usage records, newest first.
	Recent(ctx context.Context, accountID snowflake.ID, limit int) ([]UsageRecord, error)
}

var (
	ErrInsufficientCredits = errors.New("insufficient_credits")
	ErrBalanceMissing      = errors.New("balance_missing")
	ErrInvalidCost         = errors.New("invalid_cost")
	// ErrTransactionFailed wraps infrastructure faults (lock timeouts,
	// connection loss) after business checks passed. Rollback is complete,
	// so the caller may retry.
	ErrTransactionFailed = errors.New("transaction_failed")
)
