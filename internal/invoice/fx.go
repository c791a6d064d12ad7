package invoice

import (
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice",
	fx.Provide(repository.Provide),
)
