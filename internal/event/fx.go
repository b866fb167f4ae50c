package event

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("event",
	fx.Provide(New),
	fx.Invoke(runBus),
)

// runBus starts the dispatch worker after every subscriber had its
// chance to register, and drains it on shutdown.
func runBus(lc fx.Lifecycle, bus *Bus) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			bus.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			bus.Stop()
			return nil
		},
	})
}
