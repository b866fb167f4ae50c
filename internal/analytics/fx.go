package analytics

import (
	"github.com/fleetflow/fleetflow/internal/analytics/repository"
	"github.com/fleetflow/fleetflow/internal/analytics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("analytics",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
