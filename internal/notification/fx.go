package notification

import (
	"github.com/fleetflow/fleetflow/internal/notification/domain"
	"github.com/fleetflow/fleetflow/internal/notification/service"
	"github.com/fleetflow/fleetflow/internal/realtime"
	"go.uber.org/fx"
)

var Module = fx.Module("notification",
	fx.Provide(
		func(hub *realtime.Hub) domain.Broadcaster { return hub },
		service.New,
	),
)
