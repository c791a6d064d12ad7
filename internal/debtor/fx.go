package debtor

import (
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/repository"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor/service"
	"go.uber.org/fx"
)

var Module = fx.Module("debtor.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
