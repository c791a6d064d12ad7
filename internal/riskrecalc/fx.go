package riskrecalc

import "go.uber.org/fx"

var Module = fx.Module("riskrecalc",
	fx.Provide(NewJob),
)
