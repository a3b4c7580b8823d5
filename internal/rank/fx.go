package rank

import (
	"github.com/arklabs/arkloyalty/internal/rank/repository"
	"github.com/arklabs/arkloyalty/internal/rank/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rank.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
