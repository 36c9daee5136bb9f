package audit

import (
	"go.uber.org/fx"

	"github.com/wrenchworks/torqbill/internal/audit/repository"
	"github.com/wrenchworks/torqbill/internal/audit/service"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
