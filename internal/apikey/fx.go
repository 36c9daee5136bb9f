package apikey

import (
	"go.uber.org/fx"

	"github.com/wrenchworks/torqbill/internal/apikey/repository"
	"github.com/wrenchworks/torqbill/internal/apikey/service"
)

var Module = fx.Module("apikey.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
