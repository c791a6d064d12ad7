package engagement

import (
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/engagement/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("engagement",
	fx.Provide(repository.Provide),
)
