package recurring

import (
	"go.uber.org/fx"

	"github.com/wrenchworks/torqbill/internal/recurring/service"
)

var Module = fx.Module("recurring.service",
	fx.Provide(service.NewService),
)
