package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/clock"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/config"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/debtor"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/invoice"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/observability"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/riskrecalc"
	"github.com/sharad-pixel/smart-due-reminders-sub006/internal/scheduler"
	"github.com/sharad-pixel/smart-due-reminders-sub006/pkg/db"
	"go.uber.org/fx"
)

// Scheduler-only deployment: runs the daily risk recalculation loop
// without serving HTTP.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		debtor.Module,
		invoice.Module,
		riskrecalc.Module,
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
