package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	accountdomain "github.com/tvorai/creditgate/internal/account/domain"
	"github.com/tvorai/creditgate/internal/config"
	ledgerdomain "github.com/tvorai/creditgate/internal/ledger/domain"
	subscriptiondomain "github.com/tvorai/creditgate/internal/subscription/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Versioned SQL migrations are written for Postgres. The sqlite
		// and mysql dialects are for local development and tests, where
		// schema drift does not matter and AutoMigrate is enough.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&accountdomain.Account{},
				&subscriptiondomain.Subscription{},
				&subscriptiondomain.CreditBalance{},
				&ledgerdomain.UsageRecord{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
