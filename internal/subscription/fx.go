package subscription

import (
	"github.com/tvorai/creditgate/internal/subscription/repository"
	"github.com/tvorai/creditgate/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
