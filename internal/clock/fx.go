package clock

import "go.uber.org/fx"

func provideSystemClock() Clock { return SystemClock{} }

var Module = fx.Module("clock",
	fx.Provide(provideSystemClock),
)
