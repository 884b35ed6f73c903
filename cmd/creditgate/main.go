package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/tvorai/creditgate/internal/account"
	"github.com/tvorai/creditgate/internal/auth"
	"github.com/tvorai/creditgate/internal/config"
	"github.com/tvorai/creditgate/internal/ledger"
	"github.com/tvorai/creditgate/internal/migration"
	"github.com/tvorai/creditgate/internal/observability"
	"github.com/tvorai/creditgate/internal/pricing"
	"github.com/tvorai/creditgate/internal/providers"
	"github.com/tvorai/creditgate/internal/server"
	"github.com/tvorai/creditgate/internal/subscription"
	"github.com/tvorai/creditgate/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		// Functional domains
		pricing.Module,
		account.Module,
		subscription.Module,
		ledger.Module,
		auth.Module,
		providers.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
