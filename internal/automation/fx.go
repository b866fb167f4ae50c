package automation

import (
	"github.com/fleetflow/fleetflow/internal/event"
	"go.uber.org/fx"
)

var Module = fx.Module("automation",
	fx.Provide(New),
	fx.Invoke(func(h *Handlers, bus *event.Bus) {
		h.Register(bus)
	}),
)
