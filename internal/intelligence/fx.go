package intelligence

import "go.uber.org/fx"

var Module = fx.Module("intelligence",
	fx.Provide(New),
)
