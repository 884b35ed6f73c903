package pricing

import "go.uber.org/fx"

var Module = fx.Module("pricing",
	fx.Provide(func() Table { return Default }),
)
