package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/clock"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/config"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/migration"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/observability"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/scheduler"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/server"
	"github.com/sharad-pixel/smart-due-reminders-sub006/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP surface plus the daily recalculation loop
		server.Module,
		scheduler.Module,
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
