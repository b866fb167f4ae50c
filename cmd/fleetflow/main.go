package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/fleetflow/fleetflow/internal/analytics"
	"github.com/fleetflow/fleetflow/internal/automation"
	"github.com/fleetflow/fleetflow/internal/clock"
	"github.com/fleetflow/fleetflow/internal/config"
	"github.com/fleetflow/fleetflow/internal/dispatch"
	"github.com/fleetflow/fleetflow/internal/event"
	"github.com/fleetflow/fleetflow/internal/fleet"
	"github.com/fleetflow/fleetflow/internal/migration"
	"github.com/fleetflow/fleetflow/internal/notification"
	"github.com/fleetflow/fleetflow/internal/observability"
	"github.com/fleetflow/fleetflow/internal/realtime"
	"github.com/fleetflow/fleetflow/internal/scheduler"
	"github.com/fleetflow/fleetflow/internal/server"
	"github.com/fleetflow/fleetflow/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		realtime.Module,
		notification.Module,
		fleet.Module,
		analytics.Module,
		event.Module,
		automation.Module,
		dispatch.Module,
		scheduler.Module,

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server) {
			s.RegisterRoutes()
		}),
		fx.Invoke(server.RunHTTP),
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
