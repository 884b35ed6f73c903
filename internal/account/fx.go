package account

import (
	"github.com/tvorai/creditgate/internal/account/repository"
	"github.com/tvorai/creditgate/internal/account/service"
	"go.uber.org/fx"
)

var Module = fx.Module("account.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
