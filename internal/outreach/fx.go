package outreach

import (
	"go.uber.org/fx"
)

var Module = fx.Module("outreach",
	fx.Provide(New),
)
