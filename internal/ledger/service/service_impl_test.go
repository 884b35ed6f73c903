package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tvorai/creditgate/internal/ledger/domain"
	subscriptiondomain "github.com/tvorai/creditgate/internal/subscription/domain"
)

func setupLedger(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error

	require.NoError(t, db.AutoMigrate(
		&subscriptiondomain.CreditBalance{},
		&domain.UsageRecord{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{DB: db, Log: zap.NewNop(), GenID: node})
	return svc, db, node
}

func seedBalance(t *testing.T, db *gorm.DB, node *snowflake.Node, accountID snowflake.ID, credits int64) {
	t.Helper()
	balance := subscriptiondomain.CreditBalance{
		ID:               node.Generate(),
		AccountID:        accountID,
		CycleStart:       time.Now().UTC().AddDate(0, 0, -1),
		CreditsRemaining: credits,
		UpdatedAt:        time.Now().UTC(),
	}
	require.NoError(t, db.Create(&balance).Error)
}

func currentBalance(t *testing.T, db *gorm.DB, accountID snowflake.ID) int64 {
	t.Helper()
	var remaining int64
	require.NoError(t, db.Raw(
		`SELECT credits_remaining FROM credit_balances WHERE account_id = ?`, accountID,
	).Scan(&remaining).Error)
	return remaining
}

func countUsageRecords(t *testing.T, db *gorm.DB, accountID snowflake.ID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&domain.UsageRecord{}).
		Where("account_id = ?", accountID).Count(&count).Error)
	return count
}

func TestConsumeSequentialUntilInsufficient(t *testing.T) {
	svc, db, node := setupLedger(t)
	accountID := node.Generate()
	seedBalance(t, db, node, accountID, 15)

	ctx := context.Background()

	first, err := svc.Consume(ctx, domain.ConsumeRequest{
		AccountID:   accountID,
		FeatureType: "test_feature",
		Cost:        10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), first.Charged)
	assert.Equal(t, int64(5), first.CreditsRemaining)

	_, err = svc.Consume(ctx, domain.ConsumeRequest{
		AccountID:   accountID,
		FeatureType: "test_feature",
		Cost:        10,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)

	assert.Equal(t, int64(5), currentBalance(t, db, accountID))
	assert.Equal(t, int64(1), countUsageRecords(t, db, accountID))
}

func TestConsumeBalanceMissing(t *testing.T) {
	svc, db, node := setupLedger(t)
	accountID := node.Generate()

	_, err := svc.Consume(context.Background(), domain.ConsumeRequest{
		AccountID:   accountID,
		FeatureType: "test_feature",
		Cost:        10,
	})
	assert.ErrorIs(t, err, domain.ErrBalanceMissing)
	assert.Equal(t, int64(0), countUsageRecords(t, db, accountID))
}

func TestConsumeFailureLeavesNoTrace(t *testing.T) {
	svc, db, node := setupLedger(t)
	accountID := node.Generate()
	seedBalance(t, db, node, accountID, 7)

	ctx := context.Background()

	_, err := svc.Consume(ctx, domain.ConsumeRequest{
		AccountID:   accountID,
		FeatureType: "test_feature",
		Cost:        10,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)

	_, err = svc.Consume(ctx, domain.ConsumeRequest{
		AccountID:   accountID,
		FeatureType: "test_feature",
		Cost:        -1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCost)

	assert.Equal(t, int64(7), currentBalance(t, db, accountID))
	assert.Equal(t, int64(0), countUsageRecords(t, db, accountID))
}

func TestConsumeZeroCostRecordsUsage(t *testing.T) {
	svc, db, node := setupLedger(t)
	accountID := node.Generate()
	seedBalance(t, db, node, accountID, 5)

	result, err := svc.Consume(context.Background(), domain.ConsumeRequest{
		AccountID:   accountID,
		FeatureType: "gemini_chat",
		Cost:        0,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Charged)
	assert.Equal(t, int64(5), result.CreditsRemaining)
	assert.Equal(t, int64(1), countUsageRecords(t, db, accountID))
}

func TestConsumeConcurrentNoOverdraft(t *testing.T) {
	svc, db, node := setupLedger(t)
	accountID := node.Generate()
	seedBalance(t, db, node, accountID, 100)

	const workers = 20
	const cost = 10

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Consume(context.Background(), domain.ConsumeRequest{
				AccountID:   accountID,
				FeatureType: "test_feature",
				Cost:        cost,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInsufficientCredits)
	}

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, int64(0), currentBalance(t, db, accountID))
	assert.Equal(t, int64(10), countUsageRecords(t, db, accountID))
}

func TestRecentNewestFirstWithLimit(t *testing.T) {
	svc, db, node := setupLedger(t)
	accountID := node.Generate()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		record := domain.UsageRecord{
			ID:           node.Generate(),
			AccountID:    accountID,
			FeatureType:  fmt.Sprintf("feature_%d", i),
			CreditsSpent: int64(i + 1),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&record).Error)
	}

	records, err := svc.Recent(context.Background(), accountID, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "feature_4", records[0].FeatureType)
	assert.Equal(t, "feature_3", records[1].FeatureType)
	assert.Equal(t, "feature_2", records[2].FeatureType)
}
