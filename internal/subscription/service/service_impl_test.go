package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	accountdomain "github.com/tvorai/creditgate/internal/account/domain"
	accountrepository "github.com/tvorai/creditgate/internal/account/repository"
	accountservice "github.com/tvorai/creditgate/internal/account/service"
	"github.com/tvorai/creditgate/internal/subscription/domain"
	"github.com/tvorai/creditgate/internal/subscription/repository"
)

func setupSync(t *testing.T) (domain.Service, accountdomain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(
		&accountdomain.Account{},
		&domain.Subscription{},
		&domain.CreditBalance{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	accountSvc := accountservice.New(accountservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  accountrepository.Provide(),
	})
	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Repo:       repository.Provide(),
		AccountSvc: accountSvc,
	})
	return svc, accountSvc, db
}

func validSync(externalID int64) domain.SyncRequest {
	cycleStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return domain.SyncRequest{
		ExternalUserID:     externalID,
		Email:              "user@example.com",
		PlanID:             "pro_monthly",
		MonthlyCreditLimit: 1000,
		CycleStart:         cycleStart,
		CycleEnd:           cycleStart.AddDate(0, 1, 0),
		Active:             true,
	}
}

func TestSyncCreatesAccountCycleAndBalance(t *testing.T) {
	svc, accountSvc, db := setupSync(t)
	ctx := context.Background()

	require.NoError(t, svc.Sync(ctx, validSync(101)))

	account, err := accountSvc.FindByExternalID(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", account.Email)

	overview, err := svc.ActiveWithBalance(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "pro_monthly", overview.Subscription.PlanID)
	assert.Equal(t, int64(1000), overview.Subscription.MonthlyCreditLimit)
	require.NotNil(t, overview.Balance)
	assert.Equal(t, int64(1000), overview.Balance.CreditsRemaining)

	var subCount, balCount int64
	require.NoError(t, db.Model(&domain.Subscription{}).Count(&subCount).Error)
	require.NoError(t, db.Model(&domain.CreditBalance{}).Count(&balCount).Error)
	assert.Equal(t, int64(1), subCount)
	assert.Equal(t, int64(1), balCount)
}

func TestSyncReplayIsIdempotent(t *testing.T) {
	svc, accountSvc, db := setupSync(t)
	ctx := context.Background()

	req := validSync(102)
	require.NoError(t, svc.Sync(ctx, req))
	require.NoError(t, svc.Sync(ctx, req))

	account, err := accountSvc.FindByExternalID(ctx, 102)
	require.NoError(t, err)

	overview, err := svc.ActiveWithBalance(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, overview.Balance)
	assert.Equal(t, int64(1000), overview.Balance.CreditsRemaining)

	var subCount, balCount int64
	require.NoError(t, db.Model(&domain.Subscription{}).Count(&subCount).Error)
	require.NoError(t, db.Model(&domain.CreditBalance{}).Count(&balCount).Error)
	assert.Equal(t, int64(1), subCount, "replay must land on the same cycle row")
	assert.Equal(t, int64(1), balCount, "replay must not duplicate the balance row")
}

func TestSyncReplayResetsMidCycleUsage(t *testing.T) {
	svc, accountSvc, db := setupSync(t)
	ctx := context.Background()

	req := validSync(103)
	require.NoError(t, svc.Sync(ctx, req))

	account, err := accountSvc.FindByExternalID(ctx, 103)
	require.NoError(t, err)

	// Simulate a mid-cycle debit, then replay the same webhook. The reset
	// overwrites the balance back to the full allotment: unused credits are
	// forfeited, and so is mid-cycle spend. Documented behavior, not a bug.
	require.NoError(t, db.Exec(
		`UPDATE credit_balances SET credits_remaining = 700 WHERE account_id = ?`, account.ID,
	).Error)

	require.NoError(t, svc.Sync(ctx, req))

	overview, err := svc.ActiveWithBalance(ctx, account.ID)
	require.NoError(t, err)
	require.NotNil(t, overview.Balance)
	assert.Equal(t, int64(1000), overview.Balance.CreditsRemaining)
}

func TestSyncNewCycleOverwritesBalance(t *testing.T) {
	svc, accountSvc, db := setupSync(t)
	ctx := context.Background()

	first := validSync(104)
	require.NoError(t, svc.Sync(ctx, first))

	second := first
	second.CycleStart = first.CycleStart.AddDate(0, 1, 0)
	second.CycleEnd = first.CycleEnd.AddDate(0, 1, 0)
	second.MonthlyCreditLimit = 500
	require.NoError(t, svc.Sync(ctx, second))

	account, err := accountSvc.FindByExternalID(ctx, 104)
	require.NoError(t, err)

	overview, err := svc.ActiveWithBalance(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), overview.Subscription.MonthlyCreditLimit)
	require.NotNil(t, overview.Balance)
	assert.Equal(t, int64(500), overview.Balance.CreditsRemaining)
	assert.True(t, second.CycleStart.Equal(overview.Balance.CycleStart),
		"balance must follow the newest cycle")

	// Two cycles, still a single authoritative balance row.
	var subCount, balCount int64
	require.NoError(t, db.Model(&domain.Subscription{}).Count(&subCount).Error)
	require.NoError(t, db.Model(&domain.CreditBalance{}).Count(&balCount).Error)
	assert.Equal(t, int64(2), subCount)
	assert.Equal(t, int64(1), balCount)
}

func TestSyncValidation(t *testing.T) {
	svc, _, _ := setupSync(t)
	ctx := context.Background()

	req := validSync(105)
	req.ExternalUserID = 0
	assert.ErrorIs(t, svc.Sync(ctx, req), accountdomain.ErrInvalidExternalID)

	req = validSync(105)
	req.PlanID = "  "
	assert.ErrorIs(t, svc.Sync(ctx, req), domain.ErrInvalidPlan)

	req = validSync(105)
	req.MonthlyCreditLimit = 0
	assert.ErrorIs(t, svc.Sync(ctx, req), domain.ErrInvalidCreditLimit)

	req = validSync(105)
	req.CycleEnd = req.CycleStart.AddDate(0, 0, -1)
	assert.ErrorIs(t, svc.Sync(ctx, req), domain.ErrInvalidCycle)
}

func TestActiveWithBalanceNoSubscription(t *testing.T) {
	svc, _, _ := setupSync(t)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	_, err = svc.ActiveWithBalance(context.Background(), node.Generate())
	assert.ErrorIs(t, err, domain.ErrNoActiveSubscription)
}
