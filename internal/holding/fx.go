package holding

import (
	"github.com/arklabs/arkloyalty/internal/holding/service"
	"go.uber.org/fx"
)

var Module = fx.Module("holding.service",
	fx.Provide(service.New),
)
