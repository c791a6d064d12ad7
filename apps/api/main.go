package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/clock"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/config"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/observability"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/server"
	"github.com/sharad-pixel/smart-due-reminders-sub006/pkg/db"
	"go.uber.org/fx"
)

// API-only deployment. The recalculation loop runs in the scheduler app;
// migrations are applied by the monolith or a release step.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

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
