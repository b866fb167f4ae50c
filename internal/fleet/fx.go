package fleet

import (
	"github.com/fleetflow/fleetflow/internal/fleet/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("fleet",
	fx.Provide(repository.Provide),
)
