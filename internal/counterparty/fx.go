package counterparty

import (
	"go.uber.org/fx"

	"github.com/wrenchworks/torqbill/internal/counterparty/service"
)

var Module = fx.Module("counterparty.service",
	fx.Provide(service.NewService),
)
